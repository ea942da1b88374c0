package migrations

import "gorm.io/gorm"

// migration001Up creates extensions and enum types
func migration001Up(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return err
	}

	types := []string{
		`DO $$ BEGIN
            CREATE TYPE registration_status AS ENUM ('pending', 'approved', 'rejected');
        EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
		`DO $$ BEGIN
            CREATE TYPE election_stage AS ENUM ('nomination', 'voting', 'results');
        EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	}
	for _, stmt := range types {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

// migration001Down drops the enum types; the uuid extension is left in place
func migration001Down(db *gorm.DB) error {
	for _, name := range []string{"election_stage", "registration_status"} {
		if err := db.Exec("DROP TYPE IF EXISTS " + name + " CASCADE").Error; err != nil {
			return err
		}
	}
	return nil
}
