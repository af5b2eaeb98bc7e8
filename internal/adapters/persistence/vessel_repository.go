package persistence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/orcalabs/kyogre-go/internal/domain/shared"
	"github.com/orcalabs/kyogre-go/internal/domain/vessel"
)

// VesselRepositoryGORM implements common.VesselRepository using GORM.
type VesselRepositoryGORM struct {
	db *gorm.DB
}

func NewVesselRepository(db *gorm.DB) *VesselRepositoryGORM {
	return &VesselRepositoryGORM{db: db}
}

func (r *VesselRepositoryGORM) FindByID(ctx context.Context, id vessel.ID) (*vessel.Vessel, error) {
	var model VesselModel
	if err := r.db.WithContext(ctx).Where("id = ?", int64(id)).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, shared.NewMissingValueError(fmt.Sprintf("vessel %d not found", id))
		}
		return nil, shared.NewDatabaseTransientError("failed to load vessel", err)
	}

	var engineModels []VesselEngineModel
	if err := r.db.WithContext(ctx).Where("vessel_id = ?", int64(id)).Find(&engineModels).Error; err != nil {
		return nil, shared.NewDatabaseTransientError("failed to load vessel engines", err)
	}

	return toDomainVessel(model, engineModels), nil
}

func (r *VesselRepositoryGORM) ListAll(ctx context.Context) ([]*vessel.Vessel, error) {
	var models []VesselModel
	if err := r.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, shared.NewDatabaseTransientError("failed to list vessels", err)
	}

	var engineModels []VesselEngineModel
	if err := r.db.WithContext(ctx).Find(&engineModels).Error; err != nil {
		return nil, shared.NewDatabaseTransientError("failed to list vessel engines", err)
	}
	enginesByVessel := make(map[int64][]VesselEngineModel)
	for _, e := range engineModels {
		enginesByVessel[e.VesselID] = append(enginesByVessel[e.VesselID], e)
	}

	vessels := make([]*vessel.Vessel, 0, len(models))
	for _, m := range models {
		vessels = append(vessels, toDomainVessel(m, enginesByVessel[m.ID]))
	}
	return vessels, nil
}

func (r *VesselRepositoryGORM) Save(ctx context.Context, v *vessel.Vessel) error {
	model := fromDomainVessel(v)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return shared.NewDatabaseTransientError("failed to save vessel", err)
	}
	return nil
}

func toDomainVessel(m VesselModel, engineModels []VesselEngineModel) *vessel.Vessel {
	engines := make([]vessel.Engine, len(engineModels))
	for i, e := range engineModels {
		engines[i] = vessel.Engine{PowerKW: e.PowerKW, SFC: e.Sfc}
	}
	return &vessel.Vessel{
		ID:                      vessel.ID(m.ID),
		CallSign:                m.CallSign,
		Mmsi:                    m.Mmsi,
		Engines:                 engines,
		ServiceSpeedKnots:       m.ServiceSpeedKnots,
		EngineBuildingYear:      m.EngineBuildingYear,
		DegreeOfElectrification: m.DegreeOfElectrification,
		MaxCargoWeightKg:        m.MaxCargoWeightKg,
		PreferredAssembler:      vessel.AssemblerID(m.PreferredAssembler),
	}
}

func fromDomainVessel(v *vessel.Vessel) *VesselModel {
	return &VesselModel{
		ID:                      int64(v.ID),
		CallSign:                v.CallSign,
		Mmsi:                    v.Mmsi,
		ServiceSpeedKnots:       v.ServiceSpeedKnots,
		EngineBuildingYear:      v.EngineBuildingYear,
		DegreeOfElectrification: v.DegreeOfElectrification,
		MaxCargoWeightKg:        v.MaxCargoWeightKg,
		PreferredAssembler:      string(v.PreferredAssembler),
	}
}

// VesselEventRepositoryGORM implements common.VesselEventRepository.
type VesselEventRepositoryGORM struct {
	db *gorm.DB
}

func NewVesselEventRepository(db *gorm.DB) *VesselEventRepositoryGORM {
	return &VesselEventRepositoryGORM{db: db}
}

func (r *VesselEventRepositoryGORM) ListByVesselSince(ctx context.Context, id vessel.ID, since time.Time) ([]vessel.Event, error) {
	var rows []VesselEventModel
	if err := r.db.WithContext(ctx).
		Where("vessel_id = ? AND report_timestamp >= ?", int64(id), since).
		Order("report_timestamp ASC").
		Find(&rows).Error; err != nil {
		return nil, shared.NewDatabaseTransientError("failed to list vessel events", err)
	}

	events := make([]vessel.Event, len(rows))
	for i, row := range rows {
		events[i] = vessel.Event{
			EventID:             row.EventID,
			VesselID:            id,
			ReportTimestamp:     row.ReportTimestamp,
			OccurrenceTimestamp: row.OccurrenceTimestamp,
			EventType:           vessel.EventType(row.EventType),
			TripID:              row.TripID,
			PortID:              row.PortID,
			EstimatedTimestamp:  row.EstimatedTimestamp,
			RelevantYear:        row.RelevantYear,
			MessageNumber:       row.MessageNumber,
		}
	}
	return events, nil
}

func (r *VesselEventRepositoryGORM) Save(ctx context.Context, events []vessel.Event) error {
	if len(events) == 0 {
		return nil
	}
	models := make([]VesselEventModel, len(events))
	for i, e := range events {
		models[i] = VesselEventModel{
			EventID:             e.EventID,
			VesselID:            int64(e.VesselID),
			ReportTimestamp:     e.ReportTimestamp,
			OccurrenceTimestamp: e.OccurrenceTimestamp,
			EventType:           string(e.EventType),
			TripID:              e.TripID,
			PortID:              e.PortID,
			EstimatedTimestamp:  e.EstimatedTimestamp,
			RelevantYear:        e.RelevantYear,
			MessageNumber:       e.MessageNumber,
		}
	}
	if err := r.db.WithContext(ctx).CreateInBatches(models, 100).Error; err != nil {
		return shared.NewDatabaseTransientError("failed to save vessel events", err)
	}
	return nil
}
