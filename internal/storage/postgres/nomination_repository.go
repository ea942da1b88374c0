package postgres

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/unionhub/unionhub-api/internal/domain/election"
	"github.com/unionhub/unionhub-api/internal/logger"
)

// PostgresNominationRepository implements NominationRepository using GORM
type PostgresNominationRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewPostgresNominationRepository creates a new PostgreSQL nomination repository
func NewPostgresNominationRepository(db *gorm.DB) *PostgresNominationRepository {
	return &PostgresNominationRepository{
		db:  db,
		log: logger.Repository("nomination"),
	}
}

func (r *PostgresNominationRepository) Create(ctx context.Context, n *election.Nomination) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		r.log.Error("failed to create nomination", "election_id", n.ElectionID, "error", err)
		return fmt.Errorf("failed to create nomination: %w", err)
	}
	r.log.Debug("nomination created", "nomination_id", n.ID, "election_id", n.ElectionID, "position", n.Position)
	return nil
}

// ListByElection returns every nomination row, repeats included, oldest first
func (r *PostgresNominationRepository) ListByElection(ctx context.Context, electionID uuid.UUID) ([]election.Nomination, error) {
	var noms []election.Nomination
	err := r.db.WithContext(ctx).
		Where("election_id = ?", electionID).
		Order("created_at ASC, id ASC").
		Find(&noms).Error
	if err != nil {
		r.log.Error("failed to list nominations", "election_id", electionID, "error", err)
		return nil, fmt.Errorf("failed to list nominations: %w", err)
	}
	r.log.Debug("nominations listed", "election_id", electionID, "count", len(noms))
	return noms, nil
}
