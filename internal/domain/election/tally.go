package election

import (
	"cmp"
	"slices"
	"time"

	"github.com/google/uuid"
)

// NomineeTally is one nominee's standing for a single position
type NomineeTally struct {
	NomineeID        uuid.UUID `json:"nominee_id"`
	VoteCount        int       `json:"vote_count"`
	FirstNominatedAt time.Time `json:"first_nominated_at"`
	Rank             int       `json:"rank"`
}

// PositionTally is the ranked nominee list for one position
type PositionTally struct {
	Position string         `json:"position"`
	Nominees []NomineeTally `json:"nominees"`
}

// Tally aggregates an election's nominations.
//
// DistinctNominees counts nominee ids across all positions. TotalNominations
// counts raw rows, including the repeats that per-position counts ignore.
type Tally struct {
	Positions          map[string][]NomineeTally `json:"positions"`
	TotalNominations   int                       `json:"total_nominations"`
	DistinctNominators int                       `json:"distinct_nominators"`
	DistinctNominees   int                       `json:"distinct_nominees"`
}

type tallyKey struct {
	position string
	nominee  uuid.UUID
}

type ballotKey struct {
	tallyKey
	nominator uuid.UUID
}

// TallyNominations ranks nominees per position. A nominator counts once per
// (nominee, position). Ties on votes go to the earliest nomination, then to
// the lower nominee id.
func TallyNominations(nominations []Nomination) *Tally {
	t := &Tally{
		Positions:        make(map[string][]NomineeTally),
		TotalNominations: len(nominations),
	}

	counts := make(map[tallyKey]*NomineeTally)
	ballots := make(map[ballotKey]struct{})
	nominators := make(map[uuid.UUID]struct{})
	nominees := make(map[uuid.UUID]struct{})

	for _, n := range nominations {
		key := tallyKey{position: n.Position, nominee: n.NomineeID}
		entry, ok := counts[key]
		if !ok {
			entry = &NomineeTally{NomineeID: n.NomineeID, FirstNominatedAt: n.CreatedAt}
			counts[key] = entry
		}
		if n.CreatedAt.Before(entry.FirstNominatedAt) {
			entry.FirstNominatedAt = n.CreatedAt
		}

		ballot := ballotKey{tallyKey: key, nominator: n.NominatorID}
		if _, dup := ballots[ballot]; !dup {
			ballots[ballot] = struct{}{}
			entry.VoteCount++
		}

		nominators[n.NominatorID] = struct{}{}
		nominees[n.NomineeID] = struct{}{}
	}

	for key, entry := range counts {
		t.Positions[key.position] = append(t.Positions[key.position], *entry)
	}
	for position, list := range t.Positions {
		slices.SortFunc(list, compareNominees)
		for i := range list {
			list[i].Rank = i + 1
		}
		t.Positions[position] = list
	}

	t.DistinctNominators = len(nominators)
	t.DistinctNominees = len(nominees)
	return t
}

func compareNominees(a, b NomineeTally) int {
	if c := cmp.Compare(b.VoteCount, a.VoteCount); c != 0 {
		return c
	}
	if c := a.FirstNominatedAt.Compare(b.FirstNominatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.NomineeID.String(), b.NomineeID.String())
}

// PositionNames returns the tallied positions in lexical order
func (t *Tally) PositionNames() []string {
	names := make([]string, 0, len(t.Positions))
	for name := range t.Positions {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Ordered returns every position's ranking in lexical position order
func (t *Tally) Ordered() []PositionTally {
	out := make([]PositionTally, 0, len(t.Positions))
	for _, name := range t.PositionNames() {
		out = append(out, PositionTally{Position: name, Nominees: t.Positions[name]})
	}
	return out
}

// Leader returns the top ranked nominee for position
func (t *Tally) Leader(position string) (NomineeTally, bool) {
	list := t.Positions[position]
	if len(list) == 0 {
		return NomineeTally{}, false
	}
	return list[0], true
}

// Empty reports whether no nominations were counted
func (t *Tally) Empty() bool {
	return len(t.Positions) == 0
}
