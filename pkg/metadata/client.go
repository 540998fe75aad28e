// Package metadata provides read-only access to the Postgres-backed
// campaign/note registry, plus the schema migrations it depends on.
package metadata

import (
	"context"
	stdsql "database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // register pgx driver for database/sql

	"github.com/codeready-toolchain/assistant-orchestrator/pkg/apperrors"
	"github.com/codeready-toolchain/assistant-orchestrator/pkg/models"
)

//go:embed migrations
var migrationsFS embed.FS

// Client is a thin, read-only repository over the campaigns/notes tables.
// Ingestion (out of scope here) owns all writes to these tables.
type Client struct {
	db *stdsql.DB
}

// DB returns the underlying connection pool for health checks.
func (c *Client) DB() *stdsql.DB {
	return c.db
}

// NewClientFromDB wraps an existing *sql.DB (useful for testing).
func NewClientFromDB(db *stdsql.DB) *Client {
	return &Client{db: db}
}

// NewClient opens a connection pool against cfg, applies pending migrations,
// and returns a ready-to-use Client.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := stdsql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(db, cfg.Database); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Client{db: db}, nil
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	return c.db.Close()
}

// GetCampaign looks up a campaign by UUID, returning apperrors.ErrCampaignNotFound
// (wrapped) when no row matches or the campaign has been soft-deleted.
func (c *Client) GetCampaign(ctx context.Context, campaignUUID uuid.UUID) (*models.Campaign, error) {
	const q = `
		SELECT id, graph_label, vector_collection, name, description, owner_id
		FROM campaigns
		WHERE id = $1 AND deleted_at IS NULL`

	row := c.db.QueryRowContext(ctx, q, campaignUUID)

	var campaign models.Campaign
	err := row.Scan(&campaign.ID, &campaign.GraphLabel, &campaign.VectorCollection, &campaign.Name, &campaign.Description, &campaign.OwnerID)
	if errors.Is(err, stdsql.ErrNoRows) {
		return nil, fmt.Errorf("campaign %s: %w", campaignUUID, apperrors.ErrCampaignNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying campaign %s: %w", campaignUUID, err)
	}
	return &campaign, nil
}

// IsNoteInCampaign reports whether noteUUID belongs to campaignUUID. It never
// returns an error for "not found" — a false result means exactly that.
func (c *Client) IsNoteInCampaign(ctx context.Context, campaignUUID, noteUUID uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM notes WHERE id = $1 AND campaign_id = $2)`

	var exists bool
	if err := c.db.QueryRowContext(ctx, q, noteUUID, campaignUUID).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking note %s in campaign %s: %w", noteUUID, campaignUUID, err)
	}
	return exists, nil
}

// runMigrations applies embedded migration files using golang-migrate.
func runMigrations(db *stdsql.DB, databaseName string) error {
	hasMigrations, err := hasEmbeddedMigrations()
	if err != nil {
		return fmt.Errorf("failed to check embedded migrations: %w", err)
	}
	if !hasMigrations {
		return fmt.Errorf("no embedded migration files found — binary may be built incorrectly")
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create postgres driver: %w", err)
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, databaseName, driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	// Close only the migration source driver — we must NOT call m.Close(),
	// since that also closes the database driver and the shared *sql.DB
	// passed in via postgres.WithInstance().
	if err := sourceDriver.Close(); err != nil {
		return fmt.Errorf("failed to close migration source: %w", err)
	}
	return nil
}

func hasEmbeddedMigrations() (bool, error) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read embedded migrations: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() && len(entry.Name()) > 4 && entry.Name()[len(entry.Name())-4:] == ".sql" {
			return true, nil
		}
	}
	return false, nil
}
