package query

import "fmt"

// Group classifies a measurement series.
type Group string

const (
	GroupDemand         Group = "demand"
	GroupSource         Group = "source"
	GroupInterconnector Group = "interconnector"
)

// Series describes one measurement column of dim_energy_output_and_flow.
type Series struct {
	// Name is the selector accepted by the API.
	Name string `json:"name"`
	// Column is the source column in dim_energy_output_and_flow.
	Column string `json:"column"`
	// Alias is the output column name in report tables.
	Alias string `json:"alias"`
	Group Group  `json:"group"`
	Title string `json:"title"`
}

var registry = []Series{
	{Name: "demand", Column: "demand", Alias: "demand", Group: GroupDemand, Title: "Electricity demand"},

	{Name: "coal", Column: "coal", Alias: "coal", Group: GroupSource, Title: "Coal"},
	{Name: "nuclear", Column: "nuclear", Alias: "nuclear", Group: GroupSource, Title: "Nuclear"},
	{Name: "ccgt", Column: "ccgt", Alias: "ccgt", Group: GroupSource, Title: "Combined cycle gas turbines"},
	{Name: "wind", Column: "wind", Alias: "wind", Group: GroupSource, Title: "Wind"},
	{Name: "pumped", Column: "pumped", Alias: "pumped", Group: GroupSource, Title: "Pumped storage"},
	{Name: "hydro", Column: "hydro", Alias: "hydro", Group: GroupSource, Title: "Hydro"},
	{Name: "biomass", Column: "biomass", Alias: "biomass", Group: GroupSource, Title: "Biomass"},
	{Name: "oil", Column: "oil", Alias: "oil", Group: GroupSource, Title: "Oil"},
	{Name: "solar", Column: "solar", Alias: "solar", Group: GroupSource, Title: "Solar"},
	{Name: "ocgt", Column: "ocgt", Alias: "ocgt", Group: GroupSource, Title: "Open cycle gas turbines"},

	{Name: "french_ict", Column: "french_ict", Alias: "french_ict", Group: GroupInterconnector, Title: "French Interconnector"},
	{Name: "dutch_ict", Column: "dutch_ict", Alias: "dutch_ict", Group: GroupInterconnector, Title: "Dutch Interconnector (BritNed)"},
	{Name: "irish_ict", Column: "irish_ict", Alias: "irish_ict", Group: GroupInterconnector, Title: "Irish Interconnector (Moyle)"},
	{Name: "ew_ict", Column: "ew_ict", Alias: "ew_ict", Group: GroupInterconnector, Title: "Irish Interconnector (East-West)"},
	{Name: "nemo", Column: "nemo", Alias: "nemo", Group: GroupInterconnector, Title: "NEMO Interconnector"},
	{Name: "french_ict_2", Column: "french_ict_2", Alias: "french_ict_2", Group: GroupInterconnector, Title: "French Interconnector 2"},
	{Name: "french_ict_intelec", Column: "french_ict_intelec", Alias: "french_ict_intelec", Group: GroupInterconnector, Title: "French Interconnector (INTELEC)"},
	{Name: "norway_ict", Column: "norway_ict", Alias: "norway_ict", Group: GroupInterconnector, Title: "Norway Interconnector"},
	{Name: "vkl_ict", Column: "vkl_ict", Alias: "vkl_ict", Group: GroupInterconnector, Title: "Viking Interconnector"},
}

// LookupSeries returns the series registered under name, restricted to group.
func LookupSeries(name string, group Group) (Series, error) {
	for _, s := range registry {
		if s.Name == name && s.Group == group {
			return s, nil
		}
	}
	return Series{}, fmt.Errorf("%w: '%s' is not a %s series", ErrUnknownSeries, name, group)
}

// SeriesInGroup returns the registered series of group, in registry order.
func SeriesInGroup(group Group) []Series {
	var out []Series
	for _, s := range registry {
		if s.Group == group {
			out = append(out, s)
		}
	}
	return out
}

// Sources returns the ten generation sources.
func Sources() []Series { return SeriesInGroup(GroupSource) }

// Interconnectors returns the interconnector selectors.
func Interconnectors() []Series { return SeriesInGroup(GroupInterconnector) }

func demandSeries() Series {
	s, _ := LookupSeries("demand", GroupDemand)
	return s
}
