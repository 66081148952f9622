package etl

import "github.com/tigerroll/gridwatch/internal/domain/entity"

// BuildFacts joins each reading against both dimensions and returns one fact per match,
// with fact_id set to the reading's position in the input. Readings without a match in
// either dimension are skipped and counted in dropped.
func BuildFacts(readings []entity.Reading, datetimes []entity.DimDatetime, flows []entity.DimEnergyFlow) (facts []entity.FactGridwatch, dropped int) {
	datetimeIDs := make(map[int64]int64, len(datetimes))
	for _, d := range datetimes {
		datetimeIDs[d.Timestamp.UnixNano()] = d.DatetimeID
	}
	energyIDs := make(map[int64]struct{}, len(flows))
	for _, f := range flows {
		energyIDs[f.EnergyID] = struct{}{}
	}

	facts = make([]entity.FactGridwatch, 0, len(readings))
	for i, r := range readings {
		datetimeID, ok := datetimeIDs[r.Timestamp.UnixNano()]
		if !ok {
			dropped++
			continue
		}
		if _, ok := energyIDs[r.ID]; !ok {
			dropped++
			continue
		}
		facts = append(facts, entity.FactGridwatch{
			FactID:     int64(i),
			DatetimeID: datetimeID,
			EnergyID:   r.ID,
		})
	}
	return facts, dropped
}
