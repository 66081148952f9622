package entity

import (
	"database/sql"
	"time"
)

// DatetimeParquetRow is the Parquet encoding of DimDatetime. The timestamp is stored as
// milliseconds since the epoch with the TIMESTAMP_MILLIS annotation.
type DatetimeParquetRow struct {
	DatetimeID int64 `parquet:"name=datetime_id, type=INT64"`
	Timestamp  int64 `parquet:"name=timestamp, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
	Year       int32 `parquet:"name=year, type=INT32"`
	Month      int32 `parquet:"name=month, type=INT32"`
	Day        int32 `parquet:"name=day, type=INT32"`
	Hour       int32 `parquet:"name=hour, type=INT32"`
	DayOfWeek  int32 `parquet:"name=day_of_week, type=INT32"`
	Week       int32 `parquet:"name=week, type=INT32"`
}

// ToParquet converts the row for export.
func (d DimDatetime) ToParquet() DatetimeParquetRow {
	return DatetimeParquetRow{
		DatetimeID: d.DatetimeID,
		Timestamp:  d.Timestamp.UnixMilli(),
		Year:       int32(d.Year),
		Month:      int32(d.Month),
		Day:        int32(d.Day),
		Hour:       int32(d.Hour),
		DayOfWeek:  int32(d.DayOfWeek),
		Week:       int32(d.Week),
	}
}

// DimDatetime converts an exported row back, with the timestamp in UTC.
func (r DatetimeParquetRow) DimDatetime() DimDatetime {
	return DimDatetime{
		DatetimeID: r.DatetimeID,
		Timestamp:  time.UnixMilli(r.Timestamp).UTC(),
		Year:       int(r.Year),
		Month:      int(r.Month),
		Day:        int(r.Day),
		Hour:       int(r.Hour),
		DayOfWeek:  int(r.DayOfWeek),
		Week:       int(r.Week),
	}
}

// EnergyFlowParquetRow is the Parquet encoding of DimEnergyFlow. Measures are OPTIONAL
// columns, so a NULL measure survives the export.
type EnergyFlowParquetRow struct {
	EnergyID         int64    `parquet:"name=energy_id, type=INT64"`
	Demand           *float64 `parquet:"name=demand, type=DOUBLE, repetitiontype=OPTIONAL"`
	Frequency        *float64 `parquet:"name=frequency, type=DOUBLE, repetitiontype=OPTIONAL"`
	Coal             *float64 `parquet:"name=coal, type=DOUBLE, repetitiontype=OPTIONAL"`
	Nuclear          *float64 `parquet:"name=nuclear, type=DOUBLE, repetitiontype=OPTIONAL"`
	CCGT             *float64 `parquet:"name=ccgt, type=DOUBLE, repetitiontype=OPTIONAL"`
	Wind             *float64 `parquet:"name=wind, type=DOUBLE, repetitiontype=OPTIONAL"`
	Pumped           *float64 `parquet:"name=pumped, type=DOUBLE, repetitiontype=OPTIONAL"`
	Hydro            *float64 `parquet:"name=hydro, type=DOUBLE, repetitiontype=OPTIONAL"`
	Biomass          *float64 `parquet:"name=biomass, type=DOUBLE, repetitiontype=OPTIONAL"`
	Oil              *float64 `parquet:"name=oil, type=DOUBLE, repetitiontype=OPTIONAL"`
	Solar            *float64 `parquet:"name=solar, type=DOUBLE, repetitiontype=OPTIONAL"`
	OCGT             *float64 `parquet:"name=ocgt, type=DOUBLE, repetitiontype=OPTIONAL"`
	FrenchICT        *float64 `parquet:"name=french_ict, type=DOUBLE, repetitiontype=OPTIONAL"`
	DutchICT         *float64 `parquet:"name=dutch_ict, type=DOUBLE, repetitiontype=OPTIONAL"`
	IrishICT         *float64 `parquet:"name=irish_ict, type=DOUBLE, repetitiontype=OPTIONAL"`
	EWICT            *float64 `parquet:"name=ew_ict, type=DOUBLE, repetitiontype=OPTIONAL"`
	Nemo             *float64 `parquet:"name=nemo, type=DOUBLE, repetitiontype=OPTIONAL"`
	FrenchICT2       *float64 `parquet:"name=french_ict_2, type=DOUBLE, repetitiontype=OPTIONAL"`
	FrenchICTIntelec *float64 `parquet:"name=french_ict_intelec, type=DOUBLE, repetitiontype=OPTIONAL"`
	NorwayICT        *float64 `parquet:"name=norway_ict, type=DOUBLE, repetitiontype=OPTIONAL"`
	VKLICT           *float64 `parquet:"name=vkl_ict, type=DOUBLE, repetitiontype=OPTIONAL"`
	Other            *float64 `parquet:"name=other, type=DOUBLE, repetitiontype=OPTIONAL"`
	NorthSouth       *float64 `parquet:"name=north_south, type=DOUBLE, repetitiontype=OPTIONAL"`
	ScotlandEngland  *float64 `parquet:"name=scotland_england, type=DOUBLE, repetitiontype=OPTIONAL"`
}

func (r *EnergyFlowParquetRow) measures() []**float64 {
	return []**float64{
		&r.Demand,
		&r.Frequency,
		&r.Coal,
		&r.Nuclear,
		&r.CCGT,
		&r.Wind,
		&r.Pumped,
		&r.Hydro,
		&r.Biomass,
		&r.Oil,
		&r.Solar,
		&r.OCGT,
		&r.FrenchICT,
		&r.DutchICT,
		&r.IrishICT,
		&r.EWICT,
		&r.Nemo,
		&r.FrenchICT2,
		&r.FrenchICTIntelec,
		&r.NorwayICT,
		&r.VKLICT,
		&r.Other,
		&r.NorthSouth,
		&r.ScotlandEngland,
	}
}

// ToParquet converts the row for export.
func (d DimEnergyFlow) ToParquet() EnergyFlowParquetRow {
	row := EnergyFlowParquetRow{EnergyID: d.EnergyID}
	dst := row.measures()
	for i, m := range d.Measures() {
		if m.Valid {
			v := m.Float64
			*dst[i] = &v
		}
	}
	return row
}

// DimEnergyFlow converts an exported row back. A missing value becomes a NULL measure.
func (r EnergyFlowParquetRow) DimEnergyFlow() DimEnergyFlow {
	d := DimEnergyFlow{EnergyID: r.EnergyID}
	dst := d.Measures()
	for i, v := range r.measures() {
		if *v != nil {
			*dst[i] = sql.NullFloat64{Float64: **v, Valid: true}
		}
	}
	return d
}
