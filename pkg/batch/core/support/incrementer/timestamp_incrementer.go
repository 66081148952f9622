// Package incrementer provides job parameter incrementers.
package incrementer

import (
	"fmt"
	"strconv"
	"time"

	port "github.com/tigerroll/gridwatch/pkg/batch/core/application/port"
	model "github.com/tigerroll/gridwatch/pkg/batch/core/domain/model"
	logger "github.com/tigerroll/gridwatch/pkg/batch/support/util/logger"
)

// DefaultTimestampParameter is the parameter name stamped on each warehouse build.
const DefaultTimestampParameter = "run.timestamp"

// TimestampIncrementer stamps the current Unix milliseconds onto job parameters.
type TimestampIncrementer struct {
	name string
	now  func() time.Time
}

// NewTimestampIncrementer creates a TimestampIncrementer writing the parameter name.
// An empty name falls back to DefaultTimestampParameter.
func NewTimestampIncrementer(name string) *TimestampIncrementer {
	if name == "" {
		name = DefaultTimestampParameter
	}
	return &TimestampIncrementer{name: name, now: time.Now}
}

// GetNext returns a copy of params with the timestamp parameter set or replaced.
func (i *TimestampIncrementer) GetNext(params model.JobParameters) model.JobParameters {
	next := model.NewJobParameters()
	for k, v := range params.Params {
		next.Put(k, v)
	}
	ts := i.now().UnixMilli()
	next.Put(i.name, strconv.FormatInt(ts, 10))
	logger.Debugf("JobParametersIncrementer: setting '%s' to %d.", i.name, ts)
	return next
}

// String returns the string representation of TimestampIncrementer.
func (i *TimestampIncrementer) String() string {
	return fmt.Sprintf("TimestampIncrementer[name=%s]", i.name)
}

var _ port.JobParametersIncrementer = (*TimestampIncrementer)(nil)
