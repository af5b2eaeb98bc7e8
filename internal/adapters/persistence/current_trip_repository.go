package persistence

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/orcalabs/kyogre-go/internal/domain/assembler"
	"github.com/orcalabs/kyogre-go/internal/domain/facility"
	"github.com/orcalabs/kyogre-go/internal/domain/haul"
	"github.com/orcalabs/kyogre-go/internal/domain/shared"
	"github.com/orcalabs/kyogre-go/internal/domain/vessel"
)

// CurrentTripRepositoryGORM implements common.CurrentTripRepository by
// re-running the Ers strategy over events since the vessel's last closed
// trip, rather than persisting a separate "current trip" row (spec §4.7).
type CurrentTripRepositoryGORM struct {
	db *gorm.DB
}

func NewCurrentTripRepository(db *gorm.DB) *CurrentTripRepositoryGORM {
	return &CurrentTripRepositoryGORM{db: db}
}

// nowFunc is overridden in tests; production always uses time.Now.
var nowFunc = time.Now

func (r *CurrentTripRepositoryGORM) GetCurrent(ctx context.Context, id vessel.ID, hasFishingFacilityPermission bool) (*assembler.CurrentTrip, error) {
	var lastEnd time.Time
	var lastTrip TripModel
	err := r.db.WithContext(ctx).Where("vessel_id = ?", int64(id)).Order("period_end DESC").Limit(1).First(&lastTrip).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		lastEnd = time.Time{}
	case err != nil:
		return nil, shared.NewDatabaseTransientError("failed to load last closed trip", err)
	default:
		lastEnd = lastTrip.PeriodEnd
	}

	var eventRows []VesselEventModel
	err = r.db.WithContext(ctx).
		Where("vessel_id = ? AND report_timestamp >= ? AND (event_type = ? OR event_type = ?)", int64(id), lastEnd, "ErsDep", "ErsPor").
		Order("report_timestamp ASC").
		Find(&eventRows).Error
	if err != nil {
		return nil, shared.NewDatabaseTransientError("failed to load events for current trip", err)
	}

	events := make([]vessel.Event, len(eventRows))
	for i, row := range eventRows {
		events[i] = vessel.Event{
			EventID:            row.EventID,
			VesselID:           id,
			ReportTimestamp:    row.ReportTimestamp,
			EventType:          vessel.EventType(row.EventType),
			PortID:             row.PortID,
			EstimatedTimestamp: row.EstimatedTimestamp,
			RelevantYear:       row.RelevantYear,
			MessageNumber:      row.MessageNumber,
		}
	}

	result, err := (assembler.ErsStrategy{}).Assemble(id, events)
	if err != nil {
		return nil, err
	}
	if result.Current == nil {
		return nil, nil
	}

	hauls, err := r.liveHaulsSince(ctx, id, result.Current.Period.Start)
	if err != nil {
		return nil, err
	}
	result.Current.Hauls = hauls

	// Facility enrichment on the current trip's prefix is gated by the
	// caller's fishing-facility permission (spec §4.7); the contract omits
	// it silently for callers without the permission rather than erroring.
	if hasFishingFacilityPermission {
		facilities, err := r.deployedFacilitiesSince(ctx, id, result.Current.Period.Start)
		if err != nil {
			return nil, err
		}
		result.Current.FishingFacilityEvents = facilities
	}

	return result.Current, nil
}

// liveHaulsSince loads the hauls inside the current trip's open prefix.
// They may still lack a trip_id, since the trip they belong to has not
// been closed and persisted yet.
func (r *CurrentTripRepositoryGORM) liveHaulsSince(ctx context.Context, id vessel.ID, since time.Time) ([]haul.Haul, error) {
	var rows []HaulModel
	err := r.db.WithContext(ctx).
		Where("vessel_id = ? AND start_ts >= ?", int64(id), since).
		Order("start_ts ASC").
		Find(&rows).Error
	if err != nil {
		return nil, shared.NewDatabaseTransientError("failed to load live hauls for current trip", err)
	}

	hauls := make([]haul.Haul, len(rows))
	for i, row := range rows {
		hauls[i] = rowToHaul(row)
	}
	return hauls, nil
}

// deployedFacilitiesSince loads gear still relevant to the current trip's
// prefix: anything set up before now that was either never removed, or
// removed no earlier than the prefix started.
func (r *CurrentTripRepositoryGORM) deployedFacilitiesSince(ctx context.Context, id vessel.ID, since time.Time) ([]facility.Event, error) {
	var rows []FishingFacilityModel
	err := r.db.WithContext(ctx).
		Where("vessel_id = ? AND setup_timestamp <= ? AND (removed_timestamp IS NULL OR removed_timestamp >= ?)",
			int64(id), nowFunc().UTC(), since).
		Order("setup_timestamp ASC").
		Find(&rows).Error
	if err != nil {
		return nil, shared.NewDatabaseTransientError("failed to load fishing facility events for current trip", err)
	}

	events := make([]facility.Event, len(rows))
	for i, row := range rows {
		events[i] = facility.Event{
			ToolID:           row.ToolID,
			VesselID:         id,
			ToolType:         facility.ToolType(row.ToolType),
			ToolCount:        row.ToolCount,
			SetupTimestamp:   row.SetupTimestamp,
			RemovedTimestamp: row.RemovedTimestamp,
		}
	}
	return events, nil
}
