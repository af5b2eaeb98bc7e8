package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/orcalabs/kyogre-go/internal/domain/assembler"
	"github.com/orcalabs/kyogre-go/internal/domain/shared"
	"github.com/orcalabs/kyogre-go/internal/domain/vessel"
)

// ConflictRepositoryGORM implements common.ConflictRepository, the queue
// that drives reassembly (spec §4.1 Conflict contract).
type ConflictRepositoryGORM struct {
	db *gorm.DB
}

func NewConflictRepository(db *gorm.DB) *ConflictRepositoryGORM {
	return &ConflictRepositoryGORM{db: db}
}

func (r *ConflictRepositoryGORM) Enqueue(ctx context.Context, c assembler.Conflict) error {
	model := ConflictModel{
		VesselID:  int64(c.VesselID),
		Timestamp: c.Timestamp.Start,
		Resolved:  false,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return shared.NewDatabaseTransientError("failed to enqueue conflict", err)
	}
	return nil
}

func (r *ConflictRepositoryGORM) NextPending(ctx context.Context, limit int) ([]assembler.Conflict, error) {
	var rows []ConflictModel
	err := r.db.WithContext(ctx).
		Where("resolved = false").
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, shared.NewDatabaseTransientError("failed to list pending conflicts", err)
	}

	conflicts := make([]assembler.Conflict, len(rows))
	for i, row := range rows {
		conflicts[i] = assembler.Conflict{
			VesselID: vessel.ID(row.VesselID),
			Timestamp: shared.Period{
				Start:      row.Timestamp,
				End:        row.Timestamp,
				StartBound: shared.Inclusive,
				EndBound:   shared.Inclusive,
			},
		}
	}
	return conflicts, nil
}

func (r *ConflictRepositoryGORM) Resolve(ctx context.Context, c assembler.Conflict) error {
	err := r.db.WithContext(ctx).Model(&ConflictModel{}).
		Where("vessel_id = ? AND timestamp = ? AND resolved = false", int64(c.VesselID), c.Timestamp.Start).
		Update("resolved", true).Error
	if err != nil {
		return shared.NewDatabaseTransientError("failed to resolve conflict", err)
	}
	return nil
}
