package persistence

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/orcalabs/kyogre-go/internal/domain/shared"
	"github.com/orcalabs/kyogre-go/internal/domain/trip"
	"github.com/orcalabs/kyogre-go/internal/domain/vessel"
)

// TripRepositoryGORM implements common.TripRepository using GORM.
type TripRepositoryGORM struct {
	db *gorm.DB
}

func NewTripRepository(db *gorm.DB) *TripRepositoryGORM {
	return &TripRepositoryGORM{db: db}
}

func (r *TripRepositoryGORM) FindByVessel(ctx context.Context, id vessel.ID) ([]trip.Trip, error) {
	var rows []TripModel
	if err := r.db.WithContext(ctx).Where("vessel_id = ?", int64(id)).Order("period_start ASC").Find(&rows).Error; err != nil {
		return nil, shared.NewDatabaseTransientError("failed to list trips", err)
	}
	trips := make([]trip.Trip, len(rows))
	for i, row := range rows {
		trips[i] = toDomainTrip(row)
	}
	return trips, nil
}

func (r *TripRepositoryGORM) FindByID(ctx context.Context, id trip.ID) (*trip.Trip, error) {
	var row TripModel
	if err := r.db.WithContext(ctx).Where("trip_id = ?", uint64(id)).First(&row).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, shared.NewDatabaseTransientError("failed to load trip", err)
	}
	t := toDomainTrip(row)
	return &t, nil
}

// Insert persists newly assembled trips inside a transaction, per spec §5
// "trip-insert + event-link ... either all succeed or all roll back".
func (r *TripRepositoryGORM) Insert(ctx context.Context, newTrips []trip.NewTrip) ([]trip.Trip, error) {
	if len(newTrips) == 0 {
		return nil, nil
	}

	models := make([]TripModel, len(newTrips))
	for i, nt := range newTrips {
		models[i] = fromDomainNewTrip(nt)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range models {
			if err := tx.Create(&models[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, shared.NewDatabaseTransientError("failed to insert trips", err)
	}

	trips := make([]trip.Trip, len(models))
	for i, m := range models {
		trips[i] = toDomainTrip(m)
	}
	return trips, nil
}

// DeleteCascade removes superseded trips; the foreign-key ON DELETE
// CASCADE constraints on trip_positions/trip_layer_outputs/
// trip_benchmark_outputs carry out the downstream-artefact cascade (spec
// §4.1 Conflict contract).
func (r *TripRepositoryGORM) DeleteCascade(ctx context.Context, ids []trip.ID) error {
	if len(ids) == 0 {
		return nil
	}
	raw := make([]uint64, len(ids))
	for i, id := range ids {
		raw[i] = uint64(id)
	}
	if err := r.db.WithContext(ctx).Where("trip_id IN ?", raw).Delete(&TripModel{}).Error; err != nil {
		return shared.NewDatabaseTransientError("failed to delete superseded trips", err)
	}
	return nil
}

func (r *TripRepositoryGORM) UpdatePrecision(ctx context.Context, id trip.ID, precision shared.Period) error {
	updates := map[string]interface{}{
		"period_precision_start": precision.Start,
		"period_precision_end":   precision.End,
	}
	if err := r.db.WithContext(ctx).Model(&TripModel{}).Where("trip_id = ?", uint64(id)).Updates(updates).Error; err != nil {
		return shared.NewDatabaseTransientError("failed to update trip precision", err)
	}
	return nil
}

func (r *TripRepositoryGORM) SetStatus(ctx context.Context, id trip.ID, status trip.ProcessingStatus) error {
	if err := r.db.WithContext(ctx).Model(&TripModel{}).Where("trip_id = ?", uint64(id)).Update("status", string(status)).Error; err != nil {
		return shared.NewDatabaseTransientError("failed to update trip status", err)
	}
	return nil
}

// ResetStatusAfter marks every trip whose period.end is after the given
// instant Unprocessed, per spec §4.4 Invalidation "resets all trips whose
// period.end > new.timestamp to status Unprocessed".
func (r *TripRepositoryGORM) ResetStatusAfter(ctx context.Context, vesselID vessel.ID, after time.Time) error {
	err := r.db.WithContext(ctx).Model(&TripModel{}).
		Where("vessel_id = ? AND period_end > ?", int64(vesselID), after).
		Update("status", string(trip.StatusUnprocessed)).Error
	if err != nil {
		return shared.NewDatabaseTransientError("failed to reset trip status", err)
	}
	return nil
}

func toDomainTrip(m TripModel) trip.Trip {
	startBound := shared.Bound(m.PeriodStartBound)
	endBound := shared.Bound(m.PeriodEndBound)

	t := trip.Trip{
		TripID:   trip.ID(m.TripID),
		VesselID: vessel.ID(m.VesselID),
		Period: shared.Period{
			Start:      m.PeriodStart,
			End:        m.PeriodEnd,
			StartBound: startBound,
			EndBound:   endBound,
		},
		LandingCoverage: shared.Period{
			Start:      m.LandingCoverageStart,
			StartBound: startBound,
		},
		AssemblerID:        vessel.AssemblerID(m.AssemblerID),
		FirstArrival:       m.FirstArrival,
		StartVesselEventID: m.StartVesselEventID,
		EndVesselEventID:   m.EndVesselEventID,
		Status:             trip.ProcessingStatus(m.Status),
	}
	if m.StartPortID != nil {
		t.StartPort = &trip.Port{ID: *m.StartPortID}
	}
	if m.EndPortID != nil {
		t.EndPort = &trip.Port{ID: *m.EndPortID}
	}
	if m.LandingCoverageEnd != nil {
		t.LandingCoverage.End = *m.LandingCoverageEnd
		t.LandingCoverage.EndBound = shared.Bound(m.LandingCoverageEndBound)
	} else {
		t.OpenLandingCoverage = &shared.OpenEndedPeriod{Start: m.LandingCoverageStart, StartBound: startBound}
	}
	if m.PeriodPrecisionStart != nil && m.PeriodPrecisionEnd != nil {
		precision := shared.Period{Start: *m.PeriodPrecisionStart, End: *m.PeriodPrecisionEnd, StartBound: startBound, EndBound: endBound}
		t.PeriodPrecision = &precision
	}
	return t
}

func fromDomainNewTrip(nt trip.NewTrip) TripModel {
	m := TripModel{
		VesselID:             int64(nt.VesselID),
		PeriodStart:          nt.Period.Start,
		PeriodEnd:            nt.Period.End,
		PeriodStartBound:     int(nt.Period.StartBound),
		PeriodEndBound:       int(nt.Period.EndBound),
		LandingCoverageStart: nt.LandingCoverage.Start,
		AssemblerID:          string(nt.AssemblerID),
		StartVesselEventID:   nt.StartVesselEventID,
		EndVesselEventID:     nt.EndVesselEventID,
		Status:               "Unprocessed",
	}
	if nt.StartPort != nil {
		m.StartPortID = &nt.StartPort.ID
	}
	if nt.EndPort != nil {
		m.EndPortID = &nt.EndPort.ID
	}
	if nt.OpenLandingCoverage != nil {
		m.LandingCoverageStart = nt.OpenLandingCoverage.Start
		m.PeriodStartBound = int(nt.OpenLandingCoverage.StartBound)
	} else {
		end := nt.LandingCoverage.End
		m.LandingCoverageEnd = &end
		m.LandingCoverageEndBound = int(nt.LandingCoverage.EndBound)
	}
	return m
}
