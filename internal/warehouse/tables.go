package warehouse

import "github.com/tigerroll/gridwatch/internal/domain/entity"

// Tables is one complete build of the star schema.
type Tables struct {
	Datetimes   []entity.DimDatetime
	EnergyFlows []entity.DimEnergyFlow
	Facts       []entity.FactGridwatch
}

// RowCounts returns the number of rows per table name.
func (t *Tables) RowCounts() map[string]int {
	return map[string]int{
		entity.TableDatetime:   len(t.Datetimes),
		entity.TableEnergyFlow: len(t.EnergyFlows),
		entity.TableFact:       len(t.Facts),
	}
}
