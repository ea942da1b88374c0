package services

import (
	"context"
	"fmt"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/unionhub/unionhub-api/internal/domain/biblestudy"
	"github.com/unionhub/unionhub-api/internal/domain/notification"
	"github.com/unionhub/unionhub-api/internal/logger"
	"github.com/unionhub/unionhub-api/internal/storage/postgres"
)

// Group is one numbered Bible-study group and its members in registration order
type Group struct {
	Number  int                        `json:"group_number"`
	Members []*biblestudy.Registration `json:"members"`
}

// AssignGroupsRequest selects the registrants to partition. Zero values fall
// back to the service defaults.
type AssignGroupsRequest struct {
	SessionID  uuid.UUID
	LocationID uuid.UUID
	GroupSize  int
	Strategy   string
}

// BibleStudyService assigns approved registrants to discussion groups
type BibleStudyService struct {
	registrations postgres.RegistrationRepository
	publisher     Publisher
	defaultSize   int
	strategy      biblestudy.Strategy
	log           *log.Logger
}

// NewBibleStudyService creates the service. publisher may be nil.
func NewBibleStudyService(registrations postgres.RegistrationRepository, publisher Publisher, defaultSize int, strategy biblestudy.Strategy) *BibleStudyService {
	if strategy == "" {
		strategy = biblestudy.StrategyBalanced
	}
	return &BibleStudyService{
		registrations: registrations,
		publisher:     publisher,
		defaultSize:   defaultSize,
		strategy:      strategy,
		log:           logger.Service("bible_study"),
	}
}

// AssignGroups partitions the approved registrants of a session and location
// and stores their group numbers
func (s *BibleStudyService) AssignGroups(ctx context.Context, req AssignGroupsRequest) ([]Group, error) {
	size := req.GroupSize
	if size == 0 {
		size = s.defaultSize
	}
	strategy := s.strategy
	if req.Strategy != "" {
		parsed, err := biblestudy.ParseStrategy(req.Strategy)
		if err != nil {
			return nil, err
		}
		strategy = parsed
	}

	regs, err := s.registrations.AssignGroups(ctx, req.SessionID, req.LocationID, func(ids []uuid.UUID) (map[uuid.UUID]int, error) {
		return biblestudy.Assign(ids, size, strategy)
	})
	if err != nil {
		return nil, err
	}

	groups := groupRegistrations(regs)
	s.log.Info("Assigned Bible study groups",
		"session_id", req.SessionID,
		"location_id", req.LocationID,
		"registrations", len(regs),
		"groups", len(groups),
		"group_size", size,
		"strategy", strategy)

	if len(groups) > 0 {
		announce(ctx, s.publisher, s.log, notification.AnnouncementPayload{
			ID:      req.SessionID.String(),
			Title:   "Bible study groups assigned",
			Message: fmt.Sprintf("%d members have been placed in %d groups", len(regs), len(groups)),
		})
	}
	return groups, nil
}

// ListGroups returns the stored groups of a session and location
func (s *BibleStudyService) ListGroups(ctx context.Context, sessionID, locationID uuid.UUID) ([]Group, error) {
	regs, err := s.registrations.ListGroups(ctx, sessionID, locationID)
	if err != nil {
		return nil, err
	}
	return groupRegistrations(regs), nil
}

// groupRegistrations buckets registrations by group number, keeping their
// relative order inside each group
func groupRegistrations(regs []*biblestudy.Registration) []Group {
	index := make(map[int]int)
	var groups []Group
	for _, reg := range regs {
		if reg.GroupNumber == nil {
			continue
		}
		n := *reg.GroupNumber
		i, ok := index[n]
		if !ok {
			i = len(groups)
			index[n] = i
			groups = append(groups, Group{Number: n})
		}
		groups[i].Members = append(groups[i].Members, reg)
	}
	slices.SortFunc(groups, func(a, b Group) int { return a.Number - b.Number })
	return groups
}
