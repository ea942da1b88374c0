package election

import (
	"database/sql/driver"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Election is a leadership election with a fixed list of positions
type Election struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	Name      string         `json:"name" gorm:"not null"`
	Positions pq.StringArray `json:"positions" gorm:"type:text[];not null;default:'{}'"`
	Stage     Stage          `json:"stage" gorm:"type:election_stage;not null;default:'nomination'"`
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Election) TableName() string {
	return "elections"
}

// BeforeCreate sets a UUID before creating the record
func (e *Election) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// NewElection creates an election open for nominations
func NewElection(name string, positions ...string) *Election {
	return &Election{
		ID:        uuid.New(),
		Name:      name,
		Positions: pq.StringArray(positions),
		Stage:     StageNomination,
		CreatedAt: time.Now(),
	}
}

// Validate checks if the election data is valid
func (e *Election) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if len(e.Positions) == 0 {
		return fmt.Errorf("at least one position is required")
	}
	for _, p := range e.Positions {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("position names cannot be empty")
		}
	}
	return nil
}

// AcceptsPosition reports whether nominations for position count.
// An election without positions accepts any.
func (e *Election) AcceptsPosition(position string) bool {
	return len(e.Positions) == 0 || slices.Contains(e.Positions, position)
}

// CanTransitionTo checks if the election can move to a new stage
func (e *Election) CanTransitionTo(next Stage) bool {
	transitions := map[Stage][]Stage{
		StageNomination: {StageVoting, StageResults},
		StageVoting:     {StageResults},
		StageResults:    {},
	}
	return slices.Contains(transitions[e.Stage], next)
}

// UpdateStage moves the election forward if the transition is allowed
func (e *Election) UpdateStage(next Stage) error {
	if !e.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, e.Stage, next)
	}
	e.Stage = next
	return nil
}

// Stage is the phase an election is in
type Stage byte

const (
	StageNomination Stage = iota
	StageVoting
	StageResults
)

func (s Stage) String() string {
	switch s {
	case StageNomination:
		return "nomination"
	case StageVoting:
		return "voting"
	case StageResults:
		return "results"
	default:
		return "unknown"
	}
}

// StageFromString converts a string to a Stage
func StageFromString(s string) (Stage, bool) {
	switch s {
	case "nomination":
		return StageNomination, true
	case "voting":
		return StageVoting, true
	case "results":
		return StageResults, true
	default:
		return StageNomination, false
	}
}

// MarshalJSON implements the json.Marshaler interface
func (s Stage) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (s *Stage) UnmarshalJSON(data []byte) error {
	str := strings.Trim(string(data), `"`)
	stage, ok := StageFromString(str)
	if !ok {
		return fmt.Errorf("invalid stage: %s", str)
	}
	*s = stage
	return nil
}

// Scan implements the sql.Scanner interface for database deserialization
func (s *Stage) Scan(value interface{}) error {
	var str string
	switch v := value.(type) {
	case nil:
		*s = StageNomination
		return nil
	case string:
		str = v
	case []byte:
		str = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Stage", value)
	}
	stage, ok := StageFromString(str)
	if !ok {
		return fmt.Errorf("invalid stage value: %s", str)
	}
	*s = stage
	return nil
}

// Value implements the driver.Valuer interface for database serialization
func (s Stage) Value() (driver.Value, error) {
	return s.String(), nil
}
