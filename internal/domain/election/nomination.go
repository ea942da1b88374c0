package election

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInvalidTransition = errors.New("invalid election stage transition")
	ErrNominationsClosed = errors.New("election is not accepting nominations")
	ErrUnknownPosition   = errors.New("position is not part of this election")
	ErrInvalidNomination = errors.New("invalid nomination")
)

// Nomination is one member putting another forward for a position
type Nomination struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	ElectionID  uuid.UUID `json:"election_id" gorm:"type:uuid;not null;index"`
	NomineeID   uuid.UUID `json:"nominee_id" gorm:"type:uuid;not null"`
	NominatorID uuid.UUID `json:"nominator_id" gorm:"type:uuid;not null"`
	Position    string    `json:"position" gorm:"not null"`
	Reason      string    `json:"reason,omitempty"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Nomination) TableName() string {
	return "nominations"
}

// BeforeCreate sets a UUID before creating the record
func (n *Nomination) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// Validate checks the nomination against its election
func (n *Nomination) Validate(e *Election) error {
	if n.NomineeID == uuid.Nil || n.NominatorID == uuid.Nil {
		return fmt.Errorf("%w: nominee_id and nominator_id are required", ErrInvalidNomination)
	}
	if strings.TrimSpace(n.Position) == "" {
		return fmt.Errorf("%w: position is required", ErrInvalidNomination)
	}
	if e.Stage != StageNomination {
		return ErrNominationsClosed
	}
	if !e.AcceptsPosition(n.Position) {
		return fmt.Errorf("%w: %s", ErrUnknownPosition, n.Position)
	}
	return nil
}
