package postgres

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/unionhub/unionhub-api/internal/domain/biblestudy"
	"github.com/unionhub/unionhub-api/internal/logger"
)

// PostgresRegistrationRepository implements RegistrationRepository using GORM
type PostgresRegistrationRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewPostgresRegistrationRepository creates a new PostgreSQL registration repository
func NewPostgresRegistrationRepository(db *gorm.DB) *PostgresRegistrationRepository {
	return &PostgresRegistrationRepository{
		db:  db,
		log: logger.Repository("registration"),
	}
}

func (r *PostgresRegistrationRepository) Create(ctx context.Context, reg *biblestudy.Registration) error {
	if err := r.db.WithContext(ctx).Create(reg).Error; err != nil {
		r.log.Error("failed to create registration", "error", err, "session_id", reg.SessionID)
		return fmt.Errorf("failed to create registration: %w", err)
	}
	r.log.Debug("registration created", "registration_id", reg.ID, "session_id", reg.SessionID)
	return nil
}

func (r *PostgresRegistrationRepository) ListApproved(ctx context.Context, sessionID, locationID uuid.UUID) ([]*biblestudy.Registration, error) {
	var regs []*biblestudy.Registration
	err := approved(r.db.WithContext(ctx), sessionID, locationID).
		Order("created_at ASC, id ASC").
		Find(&regs).Error
	if err != nil {
		r.log.Error("failed to list approved registrations", "session_id", sessionID, "location_id", locationID, "error", err)
		return nil, fmt.Errorf("failed to list approved registrations: %w", err)
	}
	return regs, nil
}

func (r *PostgresRegistrationRepository) AssignGroups(ctx context.Context, sessionID, locationID uuid.UUID, assign AssignFunc) ([]*biblestudy.Registration, error) {
	var assigned []*biblestudy.Registration

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var regs []*biblestudy.Registration
		err := approved(tx, sessionID, locationID).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Order("created_at ASC, id ASC").
			Find(&regs).Error
		if err != nil {
			return fmt.Errorf("failed to lock registrations: %w", err)
		}

		ids := make([]uuid.UUID, len(regs))
		for i, reg := range regs {
			ids[i] = reg.ID
		}
		groups, err := assign(ids)
		if err != nil {
			return err
		}

		for _, reg := range regs {
			group, ok := groups[reg.ID]
			if !ok {
				return fmt.Errorf("registration %s was not assigned a group", reg.ID)
			}
			if err := tx.Model(&biblestudy.Registration{}).
				Where("id = ?", reg.ID).
				Update("group_number", group).Error; err != nil {
				return fmt.Errorf("failed to store group for %s: %w", reg.ID, err)
			}
			reg.GroupNumber = &group
		}

		assigned = regs
		return nil
	})
	if err != nil {
		r.log.Error("group assignment failed", "session_id", sessionID, "location_id", locationID, "error", err)
		return nil, err
	}

	r.log.Info("groups assigned", "session_id", sessionID, "location_id", locationID, "registrations", len(assigned))
	return assigned, nil
}

func (r *PostgresRegistrationRepository) ListGroups(ctx context.Context, sessionID, locationID uuid.UUID) ([]*biblestudy.Registration, error) {
	var regs []*biblestudy.Registration
	err := approved(r.db.WithContext(ctx), sessionID, locationID).
		Where("group_number IS NOT NULL").
		Order("group_number ASC, created_at ASC, id ASC").
		Find(&regs).Error
	if err != nil {
		r.log.Error("failed to list groups", "session_id", sessionID, "location_id", locationID, "error", err)
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return regs, nil
}

func approved(db *gorm.DB, sessionID, locationID uuid.UUID) *gorm.DB {
	return db.Where("session_id = ? AND location_id = ? AND status = ?", sessionID, locationID, biblestudy.StatusApproved)
}
