package migrations

import (
	"github.com/unionhub/unionhub-api/internal/domain/biblestudy"
	"github.com/unionhub/unionhub-api/internal/domain/election"
)

// AllModels returns every model managed by the core tables migration
func AllModels() []any {
	return []any{
		&biblestudy.Registration{},
		&election.Election{},
		&election.Nomination{},
		&election.Result{},
	}
}

// coreTables lists the tables created by AllModels, dependents first
var coreTables = []string{
	"election_results",
	"nominations",
	"elections",
	"bible_study_registrations",
}
