package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	logging "github.com/ipfs/go-log/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sorta/internal/membership"
	"sorta/internal/models"
)

var log = logging.Logger("repository")

var (
	ErrNotFound      = errors.New("record not found")
	ErrOwnerMismatch = errors.New("record belongs to another owner")
	ErrCascade       = errors.New("cascade delete failed")
)

// CascadeError is returned when removing the memberships of an entity fails
// before the entity itself is deleted. The entity is not deleted.
type CascadeError struct {
	Entity string
	ID     string
	Err    error
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("delete %s %s: removing memberships: %v", e.Entity, e.ID, e.Err)
}

func (e *CascadeError) Unwrap() error { return e.Err }

func (e *CascadeError) Is(target error) bool { return target == ErrCascade }

// Options tune how memberships are written.
type Options struct {
	Strategy     membership.Strategy
	Atomic       bool
	EnforceOwner bool
}

// DefaultOptions full replace inside a transaction with owner checks.
func DefaultOptions() Options {
	return Options{Strategy: membership.FullReplace, Atomic: true, EnforceOwner: true}
}

// Store wraps the gorm handle. Every component receives the same *Store.
type Store struct {
	DB   *gorm.DB
	opts Options
}

// OpenStore opens (and creates if needed) the SQLite database at dbPath and
// migrates every table.
func OpenStore(dbPath string, opts Options) (*Store, error) {
	log.Debug("OpenStore: opening SQLite database connection")

	if dbPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Errorf("OpenStore: failed to get home directory: %v", err)
			return nil, err
		}
		dbPath = filepath.Join(homeDir, ".sorta", "sorta.db")
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Errorf("OpenStore: failed to create directory %s: %v", dir, err)
		return nil, err
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Errorf("OpenStore: failed to open database: %v", err)
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Debugf("OpenStore: SQLite database opened successfully at %s", dbPath)
	return NewStore(db, opts), nil
}

// Migrate creates or updates all tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.PasswordReset{},
		&models.Wallet{},
		&models.Group{},
		&models.WalletGroupMember{},
		&models.Tag{},
		&models.WalletTagAssociation{},
		&models.Project{},
	); err != nil {
		log.Errorf("Migrate: auto migration failed: %v", err)
		return err
	}
	return nil
}

func NewStore(db *gorm.DB, opts Options) *Store {
	return &Store{DB: db, opts: opts}
}

func (s *Store) Options() Options { return s.opts }

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// withDB returns a Store bound to db, usually a transaction.
func (s *Store) withDB(db *gorm.DB) *Store {
	return &Store{DB: db, opts: s.opts}
}

// write runs fn in a transaction when the store is atomic, directly otherwise.
func (s *Store) write(ctx context.Context, fn func(*Store) error) error {
	if !s.opts.Atomic {
		return fn(s.withDB(s.DB.WithContext(ctx)))
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(s.withDB(tx))
	})
}

func notFound(err error, what, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
	}
	return err
}
