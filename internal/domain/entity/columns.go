package entity

import "github.com/tigerroll/gridwatch/pkg/batch/adapter/database"

// DatetimeColumns is the persisted column set of dim_datetime, in declaration order.
var DatetimeColumns = []database.Column{
	{Name: "datetime_id", Kind: database.KindInteger},
	{Name: "timestamp", Kind: database.KindTimestamp},
	{Name: "year", Kind: database.KindInteger},
	{Name: "month", Kind: database.KindInteger},
	{Name: "day", Kind: database.KindInteger},
	{Name: "hour", Kind: database.KindInteger},
	{Name: "day_of_week", Kind: database.KindInteger},
	{Name: "week", Kind: database.KindInteger},
}

// EnergyFlowMeasureNames lists the measurement columns of dim_energy_output_and_flow.
var EnergyFlowMeasureNames = []string{
	"demand", "frequency",
	"coal", "nuclear", "ccgt", "wind", "pumped", "hydro", "biomass", "oil", "solar", "ocgt",
	"french_ict", "dutch_ict", "irish_ict", "ew_ict", "nemo",
	"french_ict_2", "french_ict_intelec", "norway_ict", "vkl_ict",
	"other", "north_south", "scotland_england",
}

// EnergyFlowColumns is the persisted column set of dim_energy_output_and_flow.
var EnergyFlowColumns = func() []database.Column {
	cols := []database.Column{{Name: "energy_id", Kind: database.KindInteger}}
	for _, name := range EnergyFlowMeasureNames {
		cols = append(cols, database.Column{Name: name, Kind: database.KindFloat})
	}
	return cols
}()

// FactColumns is the persisted column set of fct_gridwatch.
var FactColumns = []database.Column{
	{Name: "fact_id", Kind: database.KindInteger},
	{Name: "datetime_id", Kind: database.KindInteger},
	{Name: "energy_id", Kind: database.KindInteger},
}

// ColumnsOf returns the column set of a warehouse table.
func ColumnsOf(table string) ([]database.Column, bool) {
	switch table {
	case TableDatetime:
		return DatetimeColumns, true
	case TableEnergyFlow:
		return EnergyFlowColumns, true
	case TableFact:
		return FactColumns, true
	default:
		return nil, false
	}
}
