package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unionhub/unionhub-api/internal/domain/biblestudy"
	"github.com/unionhub/unionhub-api/internal/domain/notification"
)

func memberCounts(groups []Group) []int {
	var out []int
	for _, g := range groups {
		out = append(out, len(g.Members))
	}
	return out
}

func TestAssignGroupsUsesDefaultsAndAnnounces(t *testing.T) {
	repo := newRegistrations(10)
	pub := &fakePublisher{}
	svc := NewBibleStudyService(repo, pub, 4, "")

	groups, err := svc.AssignGroups(context.Background(), AssignGroupsRequest{SessionID: uuid.New(), LocationID: uuid.New()})
	require.NoError(t, err)

	assert.Equal(t, []int{4, 3, 3}, memberCounts(groups))
	assert.Equal(t, 1, groups[0].Number)
	assert.Equal(t, repo.regs[0].ID, groups[0].Members[0].ID)
	assert.Equal(t, repo.regs[4].ID, groups[1].Members[0].ID)

	require.Len(t, pub.events, 1)
	assert.Equal(t, notification.KindAnnouncement, pub.events[0].Kind)
}

func TestAssignGroupsRequestOverrides(t *testing.T) {
	repo := newRegistrations(10)
	svc := NewBibleStudyService(repo, nil, 8, biblestudy.StrategyBalanced)

	groups, err := svc.AssignGroups(context.Background(), AssignGroupsRequest{GroupSize: 4, Strategy: "sequential"})
	require.NoError(t, err)
	assert.Equal(t, []int{4, 4, 2}, memberCounts(groups))

	_, err = svc.AssignGroups(context.Background(), AssignGroupsRequest{GroupSize: 4, Strategy: "lottery"})
	assert.ErrorIs(t, err, biblestudy.ErrInvalidConfiguration)

	_, err = svc.AssignGroups(context.Background(), AssignGroupsRequest{GroupSize: -2})
	assert.ErrorIs(t, err, biblestudy.ErrInvalidConfiguration)
}

func TestAssignGroupsWithoutRegistrantsIsQuiet(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewBibleStudyService(newRegistrations(0), pub, 4, "")

	groups, err := svc.AssignGroups(context.Background(), AssignGroupsRequest{})
	require.NoError(t, err)
	assert.Empty(t, groups)
	assert.Empty(t, pub.events)
}

func TestAssignGroupsIgnoresPublishFailure(t *testing.T) {
	pub := &fakePublisher{err: errors.New("hub stopped")}
	svc := NewBibleStudyService(newRegistrations(3), pub, 2, "")

	groups, err := svc.AssignGroups(context.Background(), AssignGroupsRequest{})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, memberCounts(groups))
}

func TestListGroups(t *testing.T) {
	repo := newRegistrations(5)
	svc := NewBibleStudyService(repo, nil, 2, biblestudy.StrategyRoundRobin)

	_, err := svc.AssignGroups(context.Background(), AssignGroupsRequest{})
	require.NoError(t, err)

	groups, err := svc.ListGroups(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2, 1}, memberCounts(groups))
	assert.Equal(t, repo.regs[1].ID, groups[1].Members[0].ID)
	assert.Equal(t, repo.regs[3].ID, groups[0].Members[1].ID)
}
