package persistence

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/orcalabs/kyogre-go/internal/domain/fuel"
	"github.com/orcalabs/kyogre-go/internal/domain/shared"
	"github.com/orcalabs/kyogre-go/internal/domain/vessel"
)

// FuelEstimateRepositoryGORM implements common.FuelEstimateRepository.
type FuelEstimateRepositoryGORM struct {
	db *gorm.DB
}

func NewFuelEstimateRepository(db *gorm.DB) *FuelEstimateRepositoryGORM {
	return &FuelEstimateRepositoryGORM{db: db}
}

// Upsert writes one row per (vessel_id, date), overwriting the estimate
// and resetting status to Processed on conflict (spec §3 FuelEstimate
// "upserted exactly once per vessel-day run").
func (r *FuelEstimateRepositoryGORM) Upsert(ctx context.Context, estimates []fuel.Estimate) error {
	if len(estimates) == 0 {
		return nil
	}
	models := make([]FuelEstimateModel, len(estimates))
	for i, e := range estimates {
		models[i] = FuelEstimateModel{
			VesselID:        int64(e.VesselID),
			Date:            e.Date,
			EstimateLiters:  e.EstimateLiters,
			NumAisPositions: e.NumAisPositions,
			NumVmsPositions: e.NumVmsPositions,
			Status:          string(e.Status),
		}
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "vessel_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"estimate_liter", "num_ais_positions", "num_vms_positions", "status"}),
	}).Create(&models).Error
	if err != nil {
		return shared.NewDatabaseTransientError("failed to upsert fuel estimates", err)
	}
	return nil
}

func (r *FuelEstimateRepositoryGORM) ListByVesselAndRange(ctx context.Context, id vessel.ID, start, end time.Time) ([]fuel.Estimate, error) {
	var rows []FuelEstimateModel
	err := r.db.WithContext(ctx).
		Where("vessel_id = ? AND date >= ? AND date <= ?", int64(id), start, end).
		Order("date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, shared.NewDatabaseTransientError("failed to list fuel estimates", err)
	}
	estimates := make([]fuel.Estimate, len(rows))
	for i, row := range rows {
		estimates[i] = fuel.Estimate{
			VesselID:        id,
			Date:            row.Date,
			EstimateLiters:  row.EstimateLiters,
			NumAisPositions: row.NumAisPositions,
			NumVmsPositions: row.NumVmsPositions,
			Status:          fuel.Status(row.Status),
		}
	}
	return estimates, nil
}

// MarkUnprocessed resets one vessel-day's status, triggering
// re-estimation on the next fuel pass (spec §4.4 Invalidation).
func (r *FuelEstimateRepositoryGORM) MarkUnprocessed(ctx context.Context, id vessel.ID, day time.Time) error {
	err := r.db.WithContext(ctx).Model(&FuelEstimateModel{}).
		Where("vessel_id = ? AND date = ?", int64(id), day).
		Update("status", string(fuel.StatusUnprocessed)).Error
	if err != nil {
		return shared.NewDatabaseTransientError("failed to mark fuel estimate unprocessed", err)
	}
	return nil
}

// FuelMeasurementRepositoryGORM implements common.FuelMeasurementRepository.
type FuelMeasurementRepositoryGORM struct {
	db *gorm.DB
}

func NewFuelMeasurementRepository(db *gorm.DB) *FuelMeasurementRepositoryGORM {
	return &FuelMeasurementRepositoryGORM{db: db}
}

func (r *FuelMeasurementRepositoryGORM) ListByCallSignOrdered(ctx context.Context, callSign string) ([]fuel.Measurement, error) {
	var rows []FuelMeasurementModel
	err := r.db.WithContext(ctx).
		Where("call_sign = ?", callSign).
		Order("timestamp ASC").
		Find(&rows).Error
	if err != nil {
		return nil, shared.NewDatabaseTransientError("failed to list fuel measurements", err)
	}
	measurements := make([]fuel.Measurement, len(rows))
	for i, row := range rows {
		measurements[i] = fuel.Measurement{
			ID:              row.ID,
			UserID:          row.UserID,
			CallSign:        row.CallSign,
			Timestamp:       row.Timestamp,
			FuelLiters:      row.FuelLiters,
			FuelAfterLiters: row.FuelAfterLiters,
		}
	}
	return measurements, nil
}

func (r *FuelMeasurementRepositoryGORM) Save(ctx context.Context, m fuel.Measurement) error {
	model := FuelMeasurementModel{
		UserID:          m.UserID,
		CallSign:        m.CallSign,
		Timestamp:       m.Timestamp,
		FuelLiters:      m.FuelLiters,
		FuelAfterLiters: m.FuelAfterLiters,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return shared.NewDatabaseTransientError("failed to save fuel measurement", err)
	}
	return nil
}
