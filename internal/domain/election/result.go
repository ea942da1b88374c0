package election

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Result is the published tally of an election
type Result struct {
	ID                 uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	ElectionID         uuid.UUID       `json:"election_id" gorm:"type:uuid;not null;uniqueIndex"`
	Positions          []PositionTally `json:"positions" gorm:"serializer:json;type:jsonb;not null"`
	TotalNominations   int             `json:"total_nominations" gorm:"not null;default:0"`
	DistinctNominators int             `json:"distinct_nominators" gorm:"not null;default:0"`
	DistinctNominees   int             `json:"distinct_nominees" gorm:"not null;default:0"`
	PublishedAt        time.Time       `json:"published_at" gorm:"not null"`
	UpdatedAt          time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Result) TableName() string {
	return "election_results"
}

// BeforeCreate sets a UUID before creating the record
func (r *Result) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// NewResult snapshots t for electionID
func NewResult(electionID uuid.UUID, t *Tally, publishedAt time.Time) *Result {
	return &Result{
		ID:                 uuid.New(),
		ElectionID:         electionID,
		Positions:          t.Ordered(),
		TotalNominations:   t.TotalNominations,
		DistinctNominators: t.DistinctNominators,
		DistinctNominees:   t.DistinctNominees,
		PublishedAt:        publishedAt,
	}
}
