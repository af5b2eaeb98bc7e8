package persistence

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/orcalabs/kyogre-go/internal/domain/landing"
	"github.com/orcalabs/kyogre-go/internal/domain/shared"
	"github.com/orcalabs/kyogre-go/internal/domain/vessel"
)

// LandingRepositoryGORM implements common.LandingRepository.
type LandingRepositoryGORM struct {
	db *gorm.DB
}

func NewLandingRepository(db *gorm.DB) *LandingRepositoryGORM {
	return &LandingRepositoryGORM{db: db}
}

func (r *LandingRepositoryGORM) ListByVesselAndPeriod(ctx context.Context, id vessel.ID, start, end time.Time) ([]landing.Landing, error) {
	var rows []LandingModel
	err := r.db.WithContext(ctx).
		Where("vessel_id = ? AND landing_timestamp >= ? AND landing_timestamp <= ?", int64(id), start, end).
		Order("landing_timestamp ASC").
		Find(&rows).Error
	if err != nil {
		return nil, shared.NewDatabaseTransientError("failed to list landings", err)
	}
	landings := make([]landing.Landing, len(rows))
	for i, row := range rows {
		landings[i] = landing.Landing{
			LandingID:         row.LandingID,
			VesselID:          id,
			LandingTimestamp:  row.LandingTimestamp,
			TotalLivingWeight: row.TotalLivingWeight,
			PriceForFisher:    row.PriceForFisher,
		}
	}
	return landings, nil
}
