package store

import (
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/tarifflyapp/tariffly-server/internal/domain"
)

// Store wraps a Badger database instance. It is the keyed upsert gateway for
// denormalized records: row identity is always (item ID, shop domain) for
// product-scoped entities.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	// Generic entities
	Users           *Entity[domain.User]
	Classifications *Entity[domain.Classification]
	ESGScores       *Entity[domain.ESGScore]
	Subscriptions   *Entity[domain.Subscription]
}

// New creates a new Store instance with the given database path.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, &Error{Code: 500, Message: "failed to open database", Err: err}
	}

	store := &Store{
		db:     db,
		logger: logger,
	}

	// Initialize generic entities
	store.initUsers()
	store.initClassifications()
	store.initESGScores()
	store.initSubscriptions()

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}

	return store, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// initUsers initializes the Users entity on the store.
// Uses case-insensitive email indexing via normalizeEmail transformation.
func (s *Store) initUsers() {
	s.Users = NewEntity[domain.User](s, "user:").
		WithIndexTransform("email",
			func(u *domain.User) []string {
				return []string{normalizeEmail(u.Email)}
			},
			normalizeEmail, // Transform lookups to be case-insensitive
		)
}

// initClassifications initializes the Classifications entity.
// The product_shop index enforces one record per (product, shop) pair.
func (s *Store) initClassifications() {
	s.Classifications = NewEntity[domain.Classification](s, "cls:").
		WithIndex("product_shop", func(c *domain.Classification) []string {
			return []string{c.UpsertKey()}
		})
}

// initESGScores initializes the ESGScores entity, keyed like classifications.
func (s *Store) initESGScores() {
	s.ESGScores = NewEntity[domain.ESGScore](s, "esg:").
		WithIndex("product_shop", func(e *domain.ESGScore) []string {
			return []string{e.UpsertKey()}
		})
}

// initSubscriptions initializes the Subscriptions entity. One subscription
// per shop; remote lookups use the canonical numeric subscription ID.
func (s *Store) initSubscriptions() {
	s.Subscriptions = NewEntity[domain.Subscription](s, "sub:").
		WithIndex("shop", func(sub *domain.Subscription) []string {
			return []string{sub.ShopDomain}
		}).
		WithIndex("remote", func(sub *domain.Subscription) []string {
			if sub.RemoteID == "" {
				return nil
			}
			return []string{sub.RemoteID}
		})
}
