package biblestudy

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Registration is one member's sign-up for a session at a location
type Registration struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	UserID      uuid.UUID `json:"user_id" gorm:"type:uuid;not null"`
	SessionID   uuid.UUID `json:"session_id" gorm:"type:uuid;not null;index:idx_registrations_session_location"`
	LocationID  uuid.UUID `json:"location_id" gorm:"type:uuid;not null;index:idx_registrations_session_location"`
	Status      Status    `json:"status" gorm:"type:registration_status;not null;default:'pending'"`
	GroupNumber *int      `json:"group_number,omitempty"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Registration) TableName() string {
	return "bible_study_registrations"
}

// BeforeCreate sets a UUID before creating the record
func (r *Registration) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// NewRegistration creates a pending registration
func NewRegistration(userID, sessionID, locationID uuid.UUID) *Registration {
	return &Registration{
		ID:         uuid.New(),
		UserID:     userID,
		SessionID:  sessionID,
		LocationID: locationID,
		Status:     StatusPending,
		CreatedAt:  time.Now(),
	}
}

// IsApproved reports whether the registration takes part in group assignment
func (r *Registration) IsApproved() bool {
	return r.Status == StatusApproved
}

// Status is the approval state of a registration
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Scan implements the sql.Scanner interface
func (s *Status) Scan(value interface{}) error {
	var str string
	switch v := value.(type) {
	case nil:
		*s = StatusPending
		return nil
	case string:
		str = v
	case []byte:
		str = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Status", value)
	}
	if !Status(str).Valid() {
		return fmt.Errorf("invalid registration status: %s", str)
	}
	*s = Status(str)
	return nil
}

// Value implements the driver.Valuer interface
func (s Status) Value() (driver.Value, error) {
	return string(s), nil
}
