package persistence

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/orcalabs/kyogre-go/internal/domain/benchmark"
	"github.com/orcalabs/kyogre-go/internal/domain/shared"
)

// BenchmarkRepositoryGORM implements common.BenchmarkRepository.
type BenchmarkRepositoryGORM struct {
	db *gorm.DB
}

func NewBenchmarkRepository(db *gorm.DB) *BenchmarkRepositoryGORM {
	return &BenchmarkRepositoryGORM{db: db}
}

func (r *BenchmarkRepositoryGORM) Upsert(ctx context.Context, outputs []benchmark.Output) error {
	if len(outputs) == 0 {
		return nil
	}
	models := make([]TripBenchmarkOutputModel, len(outputs))
	for i, o := range outputs {
		models[i] = TripBenchmarkOutputModel{
			TripID:      uint64(o.TripID),
			BenchmarkID: string(o.BenchmarkID),
			Value:       o.Value,
			Unrealistic: o.Unrealistic,
		}
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "trip_id"}, {Name: "benchmark_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "unrealistic"}),
	}).Create(&models).Error
	if err != nil {
		return shared.NewDatabaseTransientError("failed to upsert benchmark outputs", err)
	}
	return nil
}

// Average evaluates the gear-group filter server-side, keeping the
// trip_benchmark_outputs rows whose trip has at least one haul in the
// given gear groups, then reduces to the mean over unrealistic=false rows
// (spec §4.5 Aggregates). filters.VesselLengthGroup is not applied: rows
// are averaged regardless of the vessel's length group.
func (r *BenchmarkRepositoryGORM) Average(ctx context.Context, id benchmark.ID, filters benchmark.Filters) (float64, int, error) {
	query := r.db.WithContext(ctx).Model(&TripBenchmarkOutputModel{}).
		Where("trip_benchmark_outputs.benchmark_id = ? AND trip_benchmark_outputs.unrealistic = false", string(id))

	if len(filters.GearGroups) > 0 {
		tripsWithGear := r.db.Model(&HaulModel{}).Select("trip_id").Where("gear_group IN ?", filters.GearGroups)
		query = query.Where("trip_benchmark_outputs.trip_id IN (?)", tripsWithGear)
	}

	var result struct {
		Avg   float64
		Count int
	}
	err := query.Select("AVG(trip_benchmark_outputs.value) AS avg, COUNT(*) AS count").Scan(&result).Error
	if err != nil {
		return 0, 0, shared.NewDatabaseTransientError("failed to average benchmark", err)
	}
	return result.Avg, result.Count, nil
}
