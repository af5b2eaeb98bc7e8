package persistence

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/orcalabs/kyogre-go/internal/domain/position"
	"github.com/orcalabs/kyogre-go/internal/domain/shared"
	"github.com/orcalabs/kyogre-go/internal/domain/trip"
	"github.com/orcalabs/kyogre-go/internal/domain/vessel"
)

// PositionRepositoryGORM implements common.PositionRepository.
type PositionRepositoryGORM struct {
	db *gorm.DB
}

func NewPositionRepository(db *gorm.DB) *PositionRepositoryGORM {
	return &PositionRepositoryGORM{db: db}
}

func (r *PositionRepositoryGORM) ListByVesselAndPeriod(ctx context.Context, id vessel.ID, start, end time.Time) ([]position.AisVmsPosition, []position.AisVmsPosition, error) {
	var rows []AisVmsPositionModel
	err := r.db.WithContext(ctx).
		Where("vessel_id = ? AND timestamp >= ? AND timestamp <= ?", int64(id), start, end).
		Order("timestamp ASC").
		Find(&rows).Error
	if err != nil {
		return nil, nil, shared.NewDatabaseTransientError("failed to list positions", err)
	}

	var ais, vms []position.AisVmsPosition
	for _, row := range rows {
		p := position.AisVmsPosition{
			Point:            shared.Point{Lat: row.Lat, Lon: row.Lon},
			Timestamp:        row.Timestamp,
			Course:           row.Course,
			SpeedOverGround:  row.SpeedOverGround,
			NavStatus:        row.NavStatus,
			Heading:          row.Heading,
			DistanceToShoreM: row.DistanceToShoreM,
			PositionType:     position.Type(row.PositionType),
		}
		if p.PositionType == position.TypeAis {
			ais = append(ais, p)
		} else {
			vms = append(vms, p)
		}
	}
	return ais, vms, nil
}

// SavePositions persists freshly ingested raw AIS/VMS positions, the
// insert spec §4.4 Invalidation reacts to (marking the day's fuel
// estimate Unprocessed, and resetting later trips when the position is
// an out-of-order VMS arrival).
func (r *PositionRepositoryGORM) SavePositions(ctx context.Context, id vessel.ID, positions []position.AisVmsPosition) error {
	if len(positions) == 0 {
		return nil
	}

	rows := make([]AisVmsPositionModel, len(positions))
	for i, p := range positions {
		rows[i] = AisVmsPositionModel{
			VesselID:         int64(id),
			Timestamp:        p.Timestamp,
			Lat:              p.Point.Lat,
			Lon:              p.Point.Lon,
			Course:           p.Course,
			SpeedOverGround:  p.SpeedOverGround,
			Heading:          p.Heading,
			NavStatus:        p.NavStatus,
			DistanceToShoreM: p.DistanceToShoreM,
			PositionType:     string(p.PositionType),
		}
	}
	if err := r.db.WithContext(ctx).CreateInBatches(rows, 100).Error; err != nil {
		return shared.NewDatabaseTransientError("failed to save positions", err)
	}
	return nil
}

// SaveLayerOutput persists a trip's final position layer output: the
// scalar track_coverage, the retained trip_positions (with any PrunedBy
// tag), and the pruned_trip_positions audit rows, replacing any prior
// output for the trip in one transaction (spec §3 Ownership, §4.3).
func (r *PositionRepositoryGORM) SaveLayerOutput(ctx context.Context, tripID trip.ID, output position.TripPositionLayerOutput) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("trip_id = ?", uint64(tripID)).Delete(&TripPositionModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("trip_id = ?", uint64(tripID)).Delete(&PrunedTripPositionModel{}).Error; err != nil {
			return err
		}

		layerModel := TripLayerOutputModel{TripID: uint64(tripID), TrackCoverage: output.TrackCoverage}
		if err := tx.Save(&layerModel).Error; err != nil {
			return err
		}

		if len(output.TripPositions) > 0 {
			retained := make([]TripPositionModel, len(output.TripPositions))
			for i := range output.TripPositions {
				retained[i] = TripPositionModel{TripID: uint64(tripID)}
				if reason := output.TripPositions[i].PrunedBy; reason != nil {
					v := string(*reason)
					retained[i].PrunedBy = &v
				}
			}
			if err := tx.CreateInBatches(retained, 100).Error; err != nil {
				return err
			}
		}

		if len(output.PrunedPositions) > 0 {
			pruned := make([]PrunedTripPositionModel, len(output.PrunedPositions))
			for i, p := range output.PrunedPositions {
				pruned[i] = PrunedTripPositionModel{
					TripID:    uint64(tripID),
					TripLayer: string(p.TripLayer),
				}
			}
			if err := tx.CreateInBatches(pruned, 100).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// LatestProcessedVms returns the timestamp of the most recent VMS
// position already ingested for a vessel, the watermark the scrape stage
// resumes from (spec §4.6 Resumability).
func (r *PositionRepositoryGORM) LatestProcessedVms(ctx context.Context, id vessel.ID) (*time.Time, error) {
	var row AisVmsPositionModel
	err := r.db.WithContext(ctx).
		Where("vessel_id = ? AND position_type = ?", int64(id), string(position.TypeVms)).
		Order("timestamp DESC").
		Limit(1).
		First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, shared.NewDatabaseTransientError("failed to load latest vms position", err)
	}
	return &row.Timestamp, nil
}
