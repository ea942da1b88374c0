package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/unionhub/unionhub-api/internal/domain/election"
	"github.com/unionhub/unionhub-api/internal/logger"
)

// PostgresElectionRepository implements ElectionRepository using GORM
type PostgresElectionRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewPostgresElectionRepository creates a new PostgreSQL election repository
func NewPostgresElectionRepository(db *gorm.DB) *PostgresElectionRepository {
	return &PostgresElectionRepository{
		db:  db,
		log: logger.Repository("election"),
	}
}

func (r *PostgresElectionRepository) Create(ctx context.Context, e *election.Election) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		r.log.Error("failed to create election", "error", err, "name", e.Name)
		return fmt.Errorf("failed to create election: %w", err)
	}
	r.log.Info("election created", "election_id", e.ID, "positions", len(e.Positions))
	return nil
}

func (r *PostgresElectionRepository) GetByID(ctx context.Context, id uuid.UUID) (*election.Election, error) {
	var e election.Election
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("election not found", "election_id", id)
			return nil, fmt.Errorf("election %s: %w", id, ErrNotFound)
		}
		r.log.Error("failed to retrieve election", "election_id", id, "error", err)
		return nil, err
	}
	return &e, nil
}

func (r *PostgresElectionRepository) UpdateStage(ctx context.Context, id uuid.UUID, stage election.Stage) error {
	res := r.db.WithContext(ctx).Model(&election.Election{}).Where("id = ?", id).Update("stage", stage)
	if res.Error != nil {
		r.log.Error("failed to update election stage", "election_id", id, "stage", stage, "error", res.Error)
		return fmt.Errorf("failed to update election stage: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("election %s: %w", id, ErrNotFound)
	}
	r.log.Info("election stage updated", "election_id", id, "stage", stage)
	return nil
}
