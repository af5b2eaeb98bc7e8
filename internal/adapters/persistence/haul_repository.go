package persistence

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"github.com/orcalabs/kyogre-go/internal/application/common"
	"github.com/orcalabs/kyogre-go/internal/domain/haul"
	"github.com/orcalabs/kyogre-go/internal/domain/shared"
	"github.com/orcalabs/kyogre-go/internal/domain/trip"
	"github.com/orcalabs/kyogre-go/internal/domain/vessel"
)

// HaulRepositoryGORM implements common.HaulRepository.
type HaulRepositoryGORM struct {
	db *gorm.DB
}

func NewHaulRepository(db *gorm.DB) *HaulRepositoryGORM {
	return &HaulRepositoryGORM{db: db}
}

// ListByVesselAndPeriod lists hauls owned by a vessel directly (spec §3
// Haul carries its own vessel_id independent of trip assignment).
func (r *HaulRepositoryGORM) ListByVesselAndPeriod(ctx context.Context, id vessel.ID, start, end time.Time) ([]haul.Haul, error) {
	var rows []HaulModel
	err := r.db.WithContext(ctx).
		Where("vessel_id = ? AND start_ts >= ? AND stop_ts <= ?", int64(id), start, end).
		Order("start_ts ASC").
		Find(&rows).Error
	if err != nil {
		return nil, shared.NewDatabaseTransientError("failed to list hauls", err)
	}

	hauls := make([]haul.Haul, len(rows))
	for i, row := range rows {
		hauls[i] = rowToHaul(row)
	}
	return hauls, nil
}

// rowToHaul maps a persisted row to the domain shape shared by every read
// path that lists hauls.
func rowToHaul(row HaulModel) haul.Haul {
	h := haul.Haul{
		HaulID:            row.HaulID,
		VesselID:          vessel.ID(row.VesselID),
		StartTimestamp:    row.StartTimestamp,
		StopTimestamp:     row.StopTimestamp,
		GearGroup:         row.GearGroup,
		SpeciesGroup:      row.SpeciesGroup,
		TotalLivingWeight: row.TotalLivingWeight,
		HasWeather:        row.WeatherJSON != nil,
		HasOceanClimate:   row.OceanClimateJSON != nil,
	}
	if row.CatchLat != nil && row.CatchLon != nil {
		h.CatchLocation = &shared.Point{Lat: *row.CatchLat, Lon: *row.CatchLon}
	}
	return h
}

func (r *HaulRepositoryGORM) AssignToTrip(ctx context.Context, haulID uint64, tripID trip.ID) error {
	err := r.db.WithContext(ctx).Model(&HaulModel{}).
		Where("haul_id = ?", haulID).
		Update("trip_id", uint64(tripID)).Error
	if err != nil {
		return shared.NewDatabaseTransientError("failed to assign haul to trip", err)
	}
	return nil
}

// ListMissingEnrichment returns hauls in the window that still lack a
// weather or ocean-climate reading (spec §3 Haul, §4.7).
func (r *HaulRepositoryGORM) ListMissingEnrichment(ctx context.Context, id vessel.ID, start, end time.Time) ([]haul.Haul, error) {
	var rows []HaulModel
	err := r.db.WithContext(ctx).
		Where("vessel_id = ? AND start_ts >= ? AND stop_ts <= ? AND (weather IS NULL OR ocean_climate IS NULL)",
			int64(id), start, end).
		Order("start_ts ASC").
		Find(&rows).Error
	if err != nil {
		return nil, shared.NewDatabaseTransientError("failed to list hauls missing enrichment", err)
	}

	hauls := make([]haul.Haul, len(rows))
	for i, row := range rows {
		hauls[i] = rowToHaul(row)
	}
	return hauls, nil
}

// SaveEnrichment persists the weather/ocean-climate readings obtained from
// the OceanClimateClient collaborator onto a haul row (spec §4.7).
func (r *HaulRepositoryGORM) SaveEnrichment(ctx context.Context, haulID uint64, weather *common.WeatherReading, oceanClimate *common.OceanClimateReading) error {
	updates := map[string]interface{}{}
	if weather != nil {
		b, err := json.Marshal(weather)
		if err != nil {
			return shared.NewValidationError("weather", "failed to encode")
		}
		updates["weather"] = string(b)
	}
	if oceanClimate != nil {
		b, err := json.Marshal(oceanClimate)
		if err != nil {
			return shared.NewValidationError("ocean_climate", "failed to encode")
		}
		updates["ocean_climate"] = string(b)
	}
	if len(updates) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Model(&HaulModel{}).Where("haul_id = ?", haulID).Updates(updates).Error
	if err != nil {
		return shared.NewDatabaseTransientError("failed to save haul enrichment", err)
	}
	return nil
}
