package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/orcalabs/kyogre-go/internal/domain/pipeline"
)

// PipelineRunRepositoryGORM persists pipeline.Run state, replacing the
// teacher's ContainerRepositoryGORM for the engine's own run bookkeeping.
type PipelineRunRepositoryGORM struct {
	db *gorm.DB
}

func NewPipelineRunRepository(db *gorm.DB) *PipelineRunRepositoryGORM {
	return &PipelineRunRepositoryGORM{db: db}
}

func (r *PipelineRunRepositoryGORM) Add(ctx context.Context, id string, state pipeline.State) error {
	model := &PipelineRunModel{ID: id, State: string(state), Status: "PENDING"}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to insert pipeline run: %w", err)
	}
	return nil
}

func (r *PipelineRunRepositoryGORM) UpdateStatus(ctx context.Context, id string, status string, vesselsTotal, vesselsDone, vesselsFailed, restartCount int, lastError string) error {
	updates := map[string]interface{}{
		"status":         status,
		"vessels_total":  vesselsTotal,
		"vessels_done":   vesselsDone,
		"vessels_failed": vesselsFailed,
		"restart_count":  restartCount,
		"last_error":     lastError,
	}
	result := r.db.WithContext(ctx).Model(&PipelineRunModel{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update pipeline run: %w", result.Error)
	}
	return nil
}

// TransitionLogRepositoryGORM persists the scheduler's resumability log,
// replacing the teacher's ContainerLogRepositoryGORM.
type TransitionLogRepositoryGORM struct {
	db *gorm.DB
}

func NewTransitionLogRepository(db *gorm.DB) *TransitionLogRepositoryGORM {
	return &TransitionLogRepositoryGORM{db: db}
}

func (r *TransitionLogRepositoryGORM) Append(ctx context.Context, t pipeline.Transition) error {
	model := &PipelineTransitionModel{
		Timestamp: t.Timestamp,
		FromState: string(t.From),
		ToState:   string(t.To),
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to append transition: %w", err)
	}
	return nil
}

func (r *TransitionLogRepositoryGORM) Recent(ctx context.Context, maxLookback int) ([]pipeline.Transition, error) {
	if maxLookback <= 0 {
		maxLookback = pipeline.DefaultMaxLookback
	}

	var rows []PipelineTransitionModel
	if err := r.db.WithContext(ctx).Order("id DESC").Limit(maxLookback).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load transitions: %w", err)
	}

	transitions := make([]pipeline.Transition, len(rows))
	for i, row := range rows {
		transitions[len(rows)-1-i] = pipeline.Transition{
			Timestamp: row.Timestamp,
			From:      pipeline.State(row.FromState),
			To:        pipeline.State(row.ToState),
		}
	}
	return transitions, nil
}
