package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/unionhub/unionhub-api/internal/domain/biblestudy"
	"github.com/unionhub/unionhub-api/internal/domain/election"
)

// ErrNotFound is returned when a lookup matches no row
var ErrNotFound = errors.New("record not found")

// AssignFunc maps ordered registration ids to group numbers
type AssignFunc func(ids []uuid.UUID) (map[uuid.UUID]int, error)

// RegistrationRepository reads and writes Bible-study registrations
type RegistrationRepository interface {
	Create(ctx context.Context, r *biblestudy.Registration) error
	ListApproved(ctx context.Context, sessionID, locationID uuid.UUID) ([]*biblestudy.Registration, error)
	// AssignGroups locks the approved registrations of a session and location,
	// passes their ids to assign in (created_at, id) order and stores the result
	AssignGroups(ctx context.Context, sessionID, locationID uuid.UUID, assign AssignFunc) ([]*biblestudy.Registration, error)
	ListGroups(ctx context.Context, sessionID, locationID uuid.UUID) ([]*biblestudy.Registration, error)
}

// ElectionRepository reads and writes elections
type ElectionRepository interface {
	Create(ctx context.Context, e *election.Election) error
	GetByID(ctx context.Context, id uuid.UUID) (*election.Election, error)
	UpdateStage(ctx context.Context, id uuid.UUID, stage election.Stage) error
}

// NominationRepository reads and writes nominations
type NominationRepository interface {
	Create(ctx context.Context, n *election.Nomination) error
	ListByElection(ctx context.Context, electionID uuid.UUID) ([]election.Nomination, error)
}

// ElectionResultRepository stores published tallies
type ElectionResultRepository interface {
	// Publish stores result and moves its election to the results stage atomically.
	// An election that is already in results yields election.ErrInvalidTransition.
	Publish(ctx context.Context, result *election.Result) error
	GetByElectionID(ctx context.Context, electionID uuid.UUID) (*election.Result, error)
}
