package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"

	"github.com/unionhub/unionhub-api/internal/config"
	"github.com/unionhub/unionhub-api/internal/logger"
)

// Container owns the database connection and every repository built on it
type Container struct {
	db            *gorm.DB
	log           *log.Logger
	registrations RegistrationRepository
	elections     ElectionRepository
	nominations   NominationRepository
	results       ElectionResultRepository
}

// NewContainer connects, runs migrations and builds every repository
func NewContainer(cfg *config.Config) (*Container, error) {
	log := logger.Repository("postgres_container")

	db, err := Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := AutoMigrate(db); err != nil {
		_ = Close(db)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	c := NewContainerWithDB(db)
	if err := c.Health(context.Background()); err != nil {
		_ = Close(db)
		return nil, fmt.Errorf("container health check failed: %w", err)
	}

	log.Info("PostgreSQL repository container initialized")
	return c, nil
}

// NewContainerWithDB creates a container with an existing database connection
func NewContainerWithDB(db *gorm.DB) *Container {
	return &Container{
		db:            db,
		log:           logger.Repository("postgres_container"),
		registrations: NewPostgresRegistrationRepository(db),
		elections:     NewPostgresElectionRepository(db),
		nominations:   NewPostgresNominationRepository(db),
		results:       NewPostgresElectionResultRepository(db),
	}
}

// Registrations returns the Bible-study registration repository
func (c *Container) Registrations() RegistrationRepository {
	return c.registrations
}

// Elections returns the election repository
func (c *Container) Elections() ElectionRepository {
	return c.elections
}

// Nominations returns the nomination repository
func (c *Container) Nominations() NominationRepository {
	return c.nominations
}

// ElectionResults returns the published result repository
func (c *Container) ElectionResults() ElectionResultRepository {
	return c.results
}

// Health pings the database and checks that every core table is readable
func (c *Container) Health(ctx context.Context) error {
	if err := HealthCheck(c.db); err != nil {
		return err
	}

	for _, table := range []string{"bible_study_registrations", "elections", "nominations", "election_results"} {
		var count int64
		if err := c.db.WithContext(ctx).Table(table).Count(&count).Error; err != nil {
			c.log.Error("Repository health check failed", "table", table, "error", err)
			return fmt.Errorf("table %s health check failed: %w", table, err)
		}
	}

	metrics := GetDatabaseMetrics(c.db)
	c.log.Debug("Database connection metrics",
		"open_connections", metrics.OpenConnections,
		"in_use_connections", metrics.InUseConnections,
		"idle_connections", metrics.IdleConnections)
	return nil
}

// Metrics returns pool statistics for the status endpoint
func (c *Container) Metrics() *DatabaseMetrics {
	return GetDatabaseMetrics(c.db)
}

// DB returns the underlying connection
func (c *Container) DB() *gorm.DB {
	return c.db
}

// Close closes the database connection
func (c *Container) Close() error {
	if c.db == nil {
		return nil
	}
	err := Close(c.db)
	c.db = nil
	return err
}

// CloseWithTimeout closes the container, giving up after timeout
func (c *Container) CloseWithTimeout(timeout time.Duration) error {
	done := make(chan error, 1)
	go func() {
		done <- c.Close()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		c.log.Error("Container close operation timed out", "timeout", timeout)
		return fmt.Errorf("container close operation timed out after %v", timeout)
	}
}
