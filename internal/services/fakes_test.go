package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/unionhub/unionhub-api/internal/domain/biblestudy"
	"github.com/unionhub/unionhub-api/internal/domain/election"
	"github.com/unionhub/unionhub-api/internal/domain/notification"
	"github.com/unionhub/unionhub-api/internal/storage/postgres"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []notification.DomainEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, source string, ev notification.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if source != "server" {
		return fmt.Errorf("unexpected source %q", source)
	}
	p.events = append(p.events, ev)
	return p.err
}

type fakeRegistrations struct {
	regs []*biblestudy.Registration
}

func newRegistrations(n int) *fakeRegistrations {
	base := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	f := &fakeRegistrations{}
	for i := range n {
		r := biblestudy.NewRegistration(uuid.New(), uuid.New(), uuid.New())
		r.Status = biblestudy.StatusApproved
		r.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		f.regs = append(f.regs, r)
	}
	return f
}

func (f *fakeRegistrations) Create(_ context.Context, r *biblestudy.Registration) error {
	f.regs = append(f.regs, r)
	return nil
}

func (f *fakeRegistrations) ListApproved(context.Context, uuid.UUID, uuid.UUID) ([]*biblestudy.Registration, error) {
	return f.regs, nil
}

func (f *fakeRegistrations) AssignGroups(_ context.Context, _, _ uuid.UUID, assign postgres.AssignFunc) ([]*biblestudy.Registration, error) {
	ids := make([]uuid.UUID, len(f.regs))
	for i, r := range f.regs {
		ids[i] = r.ID
	}
	groups, err := assign(ids)
	if err != nil {
		return nil, err
	}
	for _, r := range f.regs {
		g := groups[r.ID]
		r.GroupNumber = &g
	}
	return f.regs, nil
}

func (f *fakeRegistrations) ListGroups(context.Context, uuid.UUID, uuid.UUID) ([]*biblestudy.Registration, error) {
	var out []*biblestudy.Registration
	for _, r := range f.regs {
		if r.GroupNumber != nil {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeElections struct {
	byID map[uuid.UUID]*election.Election
}

func (f *fakeElections) Create(_ context.Context, e *election.Election) error {
	f.byID[e.ID] = e
	return nil
}

func (f *fakeElections) GetByID(_ context.Context, id uuid.UUID) (*election.Election, error) {
	e, ok := f.byID[id]
	if !ok {
		return nil, postgres.ErrNotFound
	}
	return e, nil
}

func (f *fakeElections) UpdateStage(_ context.Context, id uuid.UUID, stage election.Stage) error {
	e, ok := f.byID[id]
	if !ok {
		return postgres.ErrNotFound
	}
	e.Stage = stage
	return nil
}

type fakeNominations struct {
	rows []election.Nomination
}

func (f *fakeNominations) Create(_ context.Context, n *election.Nomination) error {
	f.rows = append(f.rows, *n)
	return nil
}

func (f *fakeNominations) ListByElection(_ context.Context, id uuid.UUID) ([]election.Nomination, error) {
	var out []election.Nomination
	for _, n := range f.rows {
		if n.ElectionID == id {
			out = append(out, n)
		}
	}
	return out, nil
}

type fakeResults struct {
	elections *fakeElections
	stored    map[uuid.UUID]*election.Result
	closedBy  func(*election.Election)
}

func (f *fakeResults) Publish(ctx context.Context, r *election.Result) error {
	e, ok := f.elections.byID[r.ElectionID]
	if !ok {
		return postgres.ErrNotFound
	}
	if f.closedBy != nil {
		// another publisher closed the election after the caller read it
		f.closedBy(e)
	}
	if e.Stage == election.StageResults {
		return fmt.Errorf("%w: already published", election.ErrInvalidTransition)
	}
	e.Stage = election.StageResults
	f.stored[r.ElectionID] = r
	return nil
}

func (f *fakeResults) GetByElectionID(_ context.Context, id uuid.UUID) (*election.Result, error) {
	r, ok := f.stored[id]
	if !ok {
		return nil, postgres.ErrNotFound
	}
	return r, nil
}
