package migrations

import "gorm.io/gorm"

// migration004Up adds check constraints the models cannot express
func migration004Up(db *gorm.DB) error {
	constraints := []string{
		`ALTER TABLE bible_study_registrations
            ADD CONSTRAINT chk_registrations_group_number CHECK (group_number IS NULL OR group_number >= 1)`,
		`ALTER TABLE election_results
            ADD CONSTRAINT chk_results_counts CHECK (total_nominations >= 0 AND distinct_nominators >= 0 AND distinct_nominees >= 0)`,
		`ALTER TABLE election_results
            ADD CONSTRAINT fk_results_election FOREIGN KEY (election_id) REFERENCES elections(id) ON DELETE CASCADE`,
		`ALTER TABLE nominations
            ADD CONSTRAINT fk_nominations_election FOREIGN KEY (election_id) REFERENCES elections(id) ON DELETE CASCADE`,
	}
	for _, stmt := range constraints {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

// migration004Down drops the constraints added by migration004Up
func migration004Down(db *gorm.DB) error {
	drops := []string{
		"ALTER TABLE nominations DROP CONSTRAINT IF EXISTS fk_nominations_election",
		"ALTER TABLE election_results DROP CONSTRAINT IF EXISTS fk_results_election",
		"ALTER TABLE election_results DROP CONSTRAINT IF EXISTS chk_results_counts",
		"ALTER TABLE bible_study_registrations DROP CONSTRAINT IF EXISTS chk_registrations_group_number",
	}
	for _, stmt := range drops {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
