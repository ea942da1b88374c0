package migrations

import "gorm.io/gorm"

var indexes = map[string]string{
	"idx_registrations_assignment": "bible_study_registrations(session_id, location_id, status, created_at, id)",
	"idx_registrations_user":       "bible_study_registrations(user_id)",
	"idx_elections_stage":          "elections(stage)",
	"idx_nominations_position":     "nominations(election_id, position)",
	"idx_nominations_nominee":      "nominations(nominee_id)",
	"idx_nominations_created_at":   "nominations(election_id, created_at)",
}

// migration003Up creates the lookup indexes used by assignment and tally queries
func migration003Up(db *gorm.DB) error {
	for name, target := range indexes {
		if err := db.Exec("CREATE INDEX IF NOT EXISTS " + name + " ON " + target).Error; err != nil {
			return err
		}
	}
	return nil
}

// migration003Down drops the lookup indexes
func migration003Down(db *gorm.DB) error {
	for name := range indexes {
		if err := db.Exec("DROP INDEX IF EXISTS " + name).Error; err != nil {
			return err
		}
	}
	return nil
}
