package election

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func at(seconds int) time.Time {
	return epoch.Add(time.Duration(seconds) * time.Second)
}

func nominate(nominee, nominator uuid.UUID, position string, seconds int) Nomination {
	return Nomination{
		ID:          uuid.New(),
		NomineeID:   nominee,
		NominatorID: nominator,
		Position:    position,
		CreatedAt:   at(seconds),
	}
}

func TestTallyRanksByCountBeforeTime(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	x, y, z := uuid.New(), uuid.New(), uuid.New()

	tally := TallyNominations([]Nomination{
		nominate(a, x, "Chair", 1),
		nominate(a, y, "Chair", 2),
		nominate(b, z, "Chair", 0),
	})

	chair := tally.Positions["Chair"]
	require.Len(t, chair, 2)
	assert.Equal(t, a, chair[0].NomineeID)
	assert.Equal(t, 2, chair[0].VoteCount)
	assert.Equal(t, at(1), chair[0].FirstNominatedAt)
	assert.Equal(t, 1, chair[0].Rank)
	assert.Equal(t, b, chair[1].NomineeID)
	assert.Equal(t, 1, chair[1].VoteCount)
	assert.Equal(t, 2, chair[1].Rank)

	assert.Equal(t, 3, tally.TotalNominations)
	assert.Equal(t, 3, tally.DistinctNominators)
	assert.Equal(t, 2, tally.DistinctNominees)
}

func TestTallyDeduplicatesRepeatedNominations(t *testing.T) {
	a, x := uuid.New(), uuid.New()

	tally := TallyNominations([]Nomination{
		nominate(a, x, "Secretary", 5),
		nominate(a, x, "Secretary", 3),
	})

	sec := tally.Positions["Secretary"]
	require.Len(t, sec, 1)
	assert.Equal(t, 1, sec[0].VoteCount)
	assert.Equal(t, at(3), sec[0].FirstNominatedAt, "earliest row wins regardless of input order")
	assert.Equal(t, 2, tally.TotalNominations, "raw rows are not deduplicated")
	assert.Equal(t, 1, tally.DistinctNominators)
}

func TestTallyTiesGoToEarliestNomination(t *testing.T) {
	early, late := uuid.New(), uuid.New()
	x, y := uuid.New(), uuid.New()

	tally := TallyNominations([]Nomination{
		nominate(late, x, "Treasurer", 20),
		nominate(late, y, "Treasurer", 21),
		nominate(early, y, "Treasurer", 22),
		nominate(early, x, "Treasurer", 10),
	})

	got := tally.Positions["Treasurer"]
	require.Len(t, got, 2)
	assert.Equal(t, early, got[0].NomineeID)
	assert.Equal(t, late, got[1].NomineeID)
	assert.Equal(t, got[0].VoteCount, got[1].VoteCount)
}

func TestTallyFinalTieBreakIsNomineeID(t *testing.T) {
	lo := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	hi := uuid.MustParse("00000000-0000-0000-0000-000000000002")
	x := uuid.New()

	tally := TallyNominations([]Nomination{
		nominate(hi, x, "Chair", 0),
		nominate(lo, x, "Chair", 0),
	})

	got := tally.Positions["Chair"]
	require.Len(t, got, 2)
	assert.Equal(t, lo, got[0].NomineeID)
	assert.Equal(t, hi, got[1].NomineeID)
}

func TestTallyPositionsAreIndependent(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	x, y := uuid.New(), uuid.New()

	tally := TallyNominations([]Nomination{
		nominate(a, x, "Chair", 0),
		nominate(a, x, "Secretary", 1),
		nominate(b, y, "Secretary", 2),
		nominate(b, x, "Secretary", 3),
	})

	assert.Equal(t, []string{"Chair", "Secretary"}, tally.PositionNames())
	chair, ok := tally.Leader("Chair")
	require.True(t, ok)
	assert.Equal(t, a, chair.NomineeID)
	secretary, ok := tally.Leader("Secretary")
	require.True(t, ok)
	assert.Equal(t, b, secretary.NomineeID)
	assert.Equal(t, 2, secretary.VoteCount)
	assert.Equal(t, 2, tally.DistinctNominees)

	ordered := tally.Ordered()
	require.Len(t, ordered, 2)
	assert.Equal(t, "Chair", ordered[0].Position)
	assert.Len(t, ordered[1].Nominees, 2)
}

func TestTallyEmpty(t *testing.T) {
	tally := TallyNominations(nil)

	assert.True(t, tally.Empty())
	assert.Empty(t, tally.Positions)
	assert.Zero(t, tally.TotalNominations)
	_, ok := tally.Leader("Chair")
	assert.False(t, ok)
}

func TestNewResultSnapshotsTally(t *testing.T) {
	id := uuid.New()
	tally := TallyNominations([]Nomination{nominate(uuid.New(), uuid.New(), "Chair", 0)})

	r := NewResult(id, tally, epoch)

	assert.Equal(t, id, r.ElectionID)
	assert.Equal(t, 1, r.TotalNominations)
	require.Len(t, r.Positions, 1)
	assert.Equal(t, epoch, r.PublishedAt)
}
