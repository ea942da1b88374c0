package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/unionhub/unionhub-api/internal/domain/election"
	"github.com/unionhub/unionhub-api/internal/logger"
)

// PostgresElectionResultRepository implements ElectionResultRepository using GORM
type PostgresElectionResultRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewPostgresElectionResultRepository creates a new PostgreSQL election result repository
func NewPostgresElectionResultRepository(db *gorm.DB) *PostgresElectionResultRepository {
	return &PostgresElectionResultRepository{
		db:  db,
		log: logger.Repository("election_result"),
	}
}

func (r *PostgresElectionResultRepository) Publish(ctx context.Context, result *election.Result) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// closing first makes concurrent publishers race on the row lock; the loser sees no row
		res := tx.Model(&election.Election{}).
			Where("id = ?", result.ElectionID).
			Where("stage <> ?", election.StageResults).
			Update("stage", election.StageResults)
		if res.Error != nil {
			return fmt.Errorf("failed to close election: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&election.Election{}).Where("id = ?", result.ElectionID).Count(&count).Error; err != nil {
				return fmt.Errorf("failed to look up election: %w", err)
			}
			if count == 0 {
				return fmt.Errorf("election %s: %w", result.ElectionID, ErrNotFound)
			}
			return fmt.Errorf("%w: election %s already has published results", election.ErrInvalidTransition, result.ElectionID)
		}

		upsert := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "election_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"positions", "total_nominations", "distinct_nominators", "distinct_nominees", "published_at", "updated_at",
			}),
		})
		if err := upsert.Create(result).Error; err != nil {
			return fmt.Errorf("failed to store election result: %w", err)
		}
		return nil
	})
	if err != nil {
		r.log.Error("failed to publish election result", "election_id", result.ElectionID, "error", err)
		return err
	}

	r.log.Info("election result published", "election_id", result.ElectionID, "positions", len(result.Positions))
	return nil
}

func (r *PostgresElectionResultRepository) GetByElectionID(ctx context.Context, electionID uuid.UUID) (*election.Result, error) {
	var result election.Result
	if err := r.db.WithContext(ctx).Where("election_id = ?", electionID).First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("result for election %s: %w", electionID, ErrNotFound)
		}
		r.log.Error("failed to retrieve election result", "election_id", electionID, "error", err)
		return nil, err
	}
	return &result, nil
}
