package etl

import (
	"github.com/tigerroll/gridwatch/internal/domain/entity"
	"github.com/tigerroll/gridwatch/pkg/batch/support/util/exception"
)

const dimensionModule = "dimension"

// BuildDatetimeDimension returns one row per distinct timestamp, keyed densely from 0 in
// first-occurrence order.
func BuildDatetimeDimension(readings []entity.Reading) []entity.DimDatetime {
	seen := make(map[int64]struct{}, len(readings))
	rows := make([]entity.DimDatetime, 0)
	for _, r := range readings {
		key := r.Timestamp.UnixNano()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		rows = append(rows, entity.NewDimDatetime(int64(len(rows)), r.Timestamp))
	}
	return rows
}

// BuildEnergyFlowDimension keys each reading's measurements by its source id and drops
// exact duplicate rows.
func BuildEnergyFlowDimension(readings []entity.Reading) ([]entity.DimEnergyFlow, error) {
	rows := make([]entity.DimEnergyFlow, len(readings))
	for i, r := range readings {
		rows[i] = entity.NewDimEnergyFlow(r.ID, r.Flow)
	}
	return DedupEnergyFlow(rows)
}

// DedupEnergyFlow drops exact duplicate rows, keeping first occurrences in order.
// Two rows sharing an energy_id with different measurements fail with ErrConflictingID.
// Applying it to its own output returns the input unchanged.
func DedupEnergyFlow(rows []entity.DimEnergyFlow) ([]entity.DimEnergyFlow, error) {
	seen := make(map[entity.DimEnergyFlow]struct{}, len(rows))
	byID := make(map[int64]entity.DimEnergyFlow, len(rows))
	out := make([]entity.DimEnergyFlow, 0, len(rows))
	for _, row := range rows {
		if _, ok := seen[row]; ok {
			continue
		}
		if prev, ok := byID[row.EnergyID]; ok && prev != row {
			return nil, exception.NewBatchErrorf(dimensionModule, "source id %d appears with two different measurement vectors", row.EnergyID, ErrConflictingID)
		}
		seen[row] = struct{}{}
		byID[row.EnergyID] = row
		out = append(out, row)
	}
	return out, nil
}
