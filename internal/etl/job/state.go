// Package job assembles the warehouse build as one linear batch job:
// extract, build, export and load, each a tasklet step.
package job

import (
	"github.com/tigerroll/gridwatch/internal/domain/entity"
	"github.com/tigerroll/gridwatch/internal/warehouse"
)

// Step names, in execution order.
const (
	StepExtract = "extractStep"
	StepBuild   = "buildStep"
	StepExport  = "exportStep"
	StepLoad    = "loadStep"
)

// State carries data between the steps of one run. Steps run sequentially, so it needs no lock.
type State struct {
	Readings []entity.Reading
	Tables   *warehouse.Tables
	Dropped  int
}

// NewState returns an empty State.
func NewState() *State {
	return &State{}
}
