// Package entity holds the gridwatch star schema: the normalized Reading produced from the
// raw extract, the two dimensions and the fact table, with their persisted column sets.
package entity

import (
	"database/sql"
	"time"
)

// Table names under the warehouse schema.
const (
	TableDatetime   = "dim_datetime"
	TableEnergyFlow = "dim_energy_output_and_flow"
	TableFact       = "fct_gridwatch"
)

// Tables lists the warehouse tables in load order.
var Tables = []string{TableDatetime, TableEnergyFlow, TableFact}

// EnergyFlow is one snapshot's measurement vector, using the canonical analytical names.
// A blank source cell is an invalid (NULL) measure. The struct is comparable, so it can key a map.
type EnergyFlow struct {
	Demand           sql.NullFloat64 `gorm:"column:demand"`
	Frequency        sql.NullFloat64 `gorm:"column:frequency"`
	Coal             sql.NullFloat64 `gorm:"column:coal"`
	Nuclear          sql.NullFloat64 `gorm:"column:nuclear"`
	CCGT             sql.NullFloat64 `gorm:"column:ccgt"`
	Wind             sql.NullFloat64 `gorm:"column:wind"`
	Pumped           sql.NullFloat64 `gorm:"column:pumped"`
	Hydro            sql.NullFloat64 `gorm:"column:hydro"`
	Biomass          sql.NullFloat64 `gorm:"column:biomass"`
	Oil              sql.NullFloat64 `gorm:"column:oil"`
	Solar            sql.NullFloat64 `gorm:"column:solar"`
	OCGT             sql.NullFloat64 `gorm:"column:ocgt"`
	FrenchICT        sql.NullFloat64 `gorm:"column:french_ict"`
	DutchICT         sql.NullFloat64 `gorm:"column:dutch_ict"`
	IrishICT         sql.NullFloat64 `gorm:"column:irish_ict"`
	EWICT            sql.NullFloat64 `gorm:"column:ew_ict"`
	Nemo             sql.NullFloat64 `gorm:"column:nemo"`
	FrenchICT2       sql.NullFloat64 `gorm:"column:french_ict_2"`
	FrenchICTIntelec sql.NullFloat64 `gorm:"column:french_ict_intelec"`
	NorwayICT        sql.NullFloat64 `gorm:"column:norway_ict"`
	VKLICT           sql.NullFloat64 `gorm:"column:vkl_ict"`
	Other            sql.NullFloat64 `gorm:"column:other"`
	NorthSouth       sql.NullFloat64 `gorm:"column:north_south"`
	ScotlandEngland  sql.NullFloat64 `gorm:"column:scotland_england"`
}

// Measure returns a valid measure holding v.
func Measure(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: true}
}

// Measures returns pointers to every measure, in EnergyFlowMeasureNames order.
func (f *EnergyFlow) Measures() []*sql.NullFloat64 {
	return []*sql.NullFloat64{
		&f.Demand,
		&f.Frequency,
		&f.Coal,
		&f.Nuclear,
		&f.CCGT,
		&f.Wind,
		&f.Pumped,
		&f.Hydro,
		&f.Biomass,
		&f.Oil,
		&f.Solar,
		&f.OCGT,
		&f.FrenchICT,
		&f.DutchICT,
		&f.IrishICT,
		&f.EWICT,
		&f.Nemo,
		&f.FrenchICT2,
		&f.FrenchICTIntelec,
		&f.NorwayICT,
		&f.VKLICT,
		&f.Other,
		&f.NorthSouth,
		&f.ScotlandEngland,
	}
}

// Reading is one normalized raw record.
type Reading struct {
	// ID is the source record identifier.
	ID int64
	// Timestamp is naive: UTC location, source wall clock.
	Timestamp time.Time
	Flow      EnergyFlow
}

// DimDatetime is one row of dim_datetime.
type DimDatetime struct {
	DatetimeID int64     `gorm:"column:datetime_id"`
	Timestamp  time.Time `gorm:"column:timestamp"`
	Year       int       `gorm:"column:year"`
	Month      int       `gorm:"column:month"`
	Day        int       `gorm:"column:day"`
	Hour       int       `gorm:"column:hour"`
	// DayOfWeek counts from Monday=0.
	DayOfWeek int `gorm:"column:day_of_week"`
	// Week is the ISO week number.
	Week int `gorm:"column:week"`
}

// NewDimDatetime derives every calendar field from ts.
func NewDimDatetime(id int64, ts time.Time) DimDatetime {
	_, week := ts.ISOWeek()
	return DimDatetime{
		DatetimeID: id,
		Timestamp:  ts,
		Year:       ts.Year(),
		Month:      int(ts.Month()),
		Day:        ts.Day(),
		Hour:       ts.Hour(),
		DayOfWeek:  (int(ts.Weekday()) + 6) % 7,
		Week:       week,
	}
}

// DimEnergyFlow is one row of dim_energy_output_and_flow.
type DimEnergyFlow struct {
	EnergyID int64 `gorm:"column:energy_id"`
	EnergyFlow
}

// NewDimEnergyFlow builds the dimension row for a source id and its measurements.
func NewDimEnergyFlow(id int64, f EnergyFlow) DimEnergyFlow {
	return DimEnergyFlow{EnergyID: id, EnergyFlow: f}
}

// FactGridwatch is one row of fct_gridwatch.
type FactGridwatch struct {
	FactID     int64 `gorm:"column:fact_id" parquet:"name=fact_id, type=INT64"`
	DatetimeID int64 `gorm:"column:datetime_id" parquet:"name=datetime_id, type=INT64"`
	EnergyID   int64 `gorm:"column:energy_id" parquet:"name=energy_id, type=INT64"`
}
