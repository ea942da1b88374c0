package services

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/unionhub/unionhub-api/internal/domain/election"
	"github.com/unionhub/unionhub-api/internal/domain/notification"
	"github.com/unionhub/unionhub-api/internal/logger"
	"github.com/unionhub/unionhub-api/internal/storage/postgres"
)

// ElectionService tallies nominations and publishes election results
type ElectionService struct {
	elections   postgres.ElectionRepository
	nominations postgres.NominationRepository
	results     postgres.ElectionResultRepository
	publisher   Publisher
	now         func() time.Time
	log         *log.Logger
}

// NewElectionService creates the service. publisher may be nil.
func NewElectionService(elections postgres.ElectionRepository, nominations postgres.NominationRepository, results postgres.ElectionResultRepository, publisher Publisher) *ElectionService {
	return &ElectionService{
		elections:   elections,
		nominations: nominations,
		results:     results,
		publisher:   publisher,
		now:         time.Now,
		log:         logger.Service("election"),
	}
}

// TallyReport is an election together with its current tally
type TallyReport struct {
	Election *election.Election       `json:"election"`
	Tally    *election.Tally          `json:"tally"`
	Ordered  []election.PositionTally `json:"ordered"`
	// Ignored counts nominations for unlisted positions
	Ignored int `json:"ignored_nominations"`
}

// Tally computes the current standings without storing them. Nominations for
// positions the election does not list are left out of the rankings but still
// count toward the totals.
func (s *ElectionService) Tally(ctx context.Context, electionID uuid.UUID) (*TallyReport, error) {
	e, err := s.elections.GetByID(ctx, electionID)
	if err != nil {
		return nil, err
	}

	noms, err := s.nominations.ListByElection(ctx, electionID)
	if err != nil {
		return nil, err
	}

	counted := noms[:0:0]
	for _, n := range noms {
		if e.AcceptsPosition(n.Position) {
			counted = append(counted, n)
		}
	}

	// rankings skip unlisted positions; the totals keep counting every raw row
	tally := election.TallyNominations(counted)
	raw := election.TallyNominations(noms)
	tally.TotalNominations = raw.TotalNominations
	tally.DistinctNominators = raw.DistinctNominators
	tally.DistinctNominees = raw.DistinctNominees
	s.log.Debug("Tallied nominations",
		"election_id", electionID,
		"nominations", len(noms),
		"ignored", len(noms)-len(counted),
		"positions", len(tally.Positions))

	return &TallyReport{
		Election: e,
		Tally:    tally,
		Ordered:  tally.Ordered(),
		Ignored:  len(noms) - len(counted),
	}, nil
}

// PublishResults stores the tally, closes the election and announces it
func (s *ElectionService) PublishResults(ctx context.Context, electionID uuid.UUID) (*election.Result, error) {
	report, err := s.Tally(ctx, electionID)
	if err != nil {
		return nil, err
	}

	e := report.Election
	if !e.CanTransitionTo(election.StageResults) {
		return nil, fmt.Errorf("%w: election is already in %s", election.ErrInvalidTransition, e.Stage)
	}

	result := election.NewResult(e.ID, report.Tally, s.now().UTC())
	if err := s.results.Publish(ctx, result); err != nil {
		return nil, err
	}

	s.log.Info("Published election results",
		"election_id", e.ID,
		"positions", len(result.Positions),
		"total_nominations", result.TotalNominations)

	announce(ctx, s.publisher, s.log, notification.AnnouncementPayload{
		ID:      e.ID.String(),
		Title:   "Election results published",
		Message: fmt.Sprintf("Results for %s are now available", e.Name),
	})
	return result, nil
}

// GetResults returns the published result of an election
func (s *ElectionService) GetResults(ctx context.Context, electionID uuid.UUID) (*election.Result, error) {
	return s.results.GetByElectionID(ctx, electionID)
}

// Nominate records a nomination while the election accepts them
func (s *ElectionService) Nominate(ctx context.Context, n *election.Nomination) error {
	e, err := s.elections.GetByID(ctx, n.ElectionID)
	if err != nil {
		return err
	}
	if err := n.Validate(e); err != nil {
		return err
	}
	return s.nominations.Create(ctx, n)
}
