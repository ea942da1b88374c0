package biblestudy

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidConfiguration is returned for a group size below one or an unknown strategy
	ErrInvalidConfiguration = errors.New("invalid group assignment configuration")
	// ErrDuplicateRegistration is returned when the same id appears twice in the input
	ErrDuplicateRegistration = errors.New("duplicate registration in assignment input")
)

// Strategy selects how ordered registrants are spread over groups
type Strategy string

const (
	// StrategyBalanced fills contiguous blocks whose sizes differ by at most one.
	// The first N mod G groups take the extra member.
	StrategyBalanced Strategy = "balanced"
	// StrategyRoundRobin deals registrants to groups 1..G in turn
	StrategyRoundRobin Strategy = "round_robin"
	// StrategySequential fills each group to the target size before starting
	// the next, leaving any remainder in the last group
	StrategySequential Strategy = "sequential"
)

// Strategies lists every supported strategy
func Strategies() []Strategy {
	return []Strategy{StrategyBalanced, StrategyRoundRobin, StrategySequential}
}

// ParseStrategy accepts a strategy name; empty means balanced
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyBalanced:
		return StrategyBalanced, nil
	case StrategyRoundRobin, "round-robin", "roundrobin":
		return StrategyRoundRobin, nil
	case StrategySequential:
		return StrategySequential, nil
	default:
		return "", fmt.Errorf("%w: unknown strategy %q", ErrInvalidConfiguration, s)
	}
}

// GroupCount returns ceil(n/size), the number of groups n registrants need
func GroupCount(n, size int) int {
	if n <= 0 || size <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// AssignGroups partitions ids into balanced contiguous groups of about size members.
// Ten ids in groups of four come out as 4, 3 and 3. Use Assign with
// StrategySequential for fill-to-size rosters such as 4, 4 and 2.
func AssignGroups[ID comparable](ids []ID, size int) (map[ID]int, error) {
	return Assign(ids, size, StrategyBalanced)
}

// Assign maps every id to a group number in [1, GroupCount(len(ids), size)].
// The result depends only on the order of ids, the size and the strategy.
func Assign[ID comparable](ids []ID, size int, strategy Strategy) (map[ID]int, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: group size must be at least 1, got %d", ErrInvalidConfiguration, size)
	}

	seen := make(map[ID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: %v", ErrDuplicateRegistration, id)
		}
		seen[id] = struct{}{}
	}

	n := len(ids)
	groups := GroupCount(n, size)
	out := make(map[ID]int, n)
	if n == 0 {
		return out, nil
	}

	switch strategy {
	case StrategyBalanced, "":
		base, extra := n/groups, n%groups
		i := 0
		for g := 1; g <= groups; g++ {
			members := base
			if g <= extra {
				members++
			}
			for range members {
				out[ids[i]] = g
				i++
			}
		}
	case StrategyRoundRobin:
		for i, id := range ids {
			out[id] = i%groups + 1
		}
	case StrategySequential:
		for i, id := range ids {
			out[id] = i/size + 1
		}
	default:
		return nil, fmt.Errorf("%w: unknown strategy %q", ErrInvalidConfiguration, strategy)
	}
	return out, nil
}

// Rosters lists the members of each group in input order. Index 0 is group 1.
func Rosters[ID comparable](ids []ID, groups map[ID]int) [][]ID {
	count := 0
	for _, g := range groups {
		count = max(count, g)
	}
	out := make([][]ID, count)
	for _, id := range ids {
		g, ok := groups[id]
		if !ok || g < 1 {
			continue
		}
		out[g-1] = append(out[g-1], id)
	}
	return out
}
