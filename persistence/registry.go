package persistence

import (
	"fmt"
	"sync"

	"github.com/authgate/authgate/domain"
	"gorm.io/gorm"
)

// DialectorOpener is an alias for a function that returns a gorm.Dialector for a given DSN.
type DialectorOpener = func(string) gorm.Dialector

var (
	registryMu sync.RWMutex
	openers    = make(map[string]DialectorOpener)
)

// Register adds a new database dialect to the registry.
func Register(name string, opener DialectorOpener) {
	registryMu.Lock()
	defer registryMu.Unlock()
	openers[name] = opener
}

// NewStorage opens the named database and returns the repository backed by
// it. TranslateError is always enabled so unique-constraint violations
// surface as oauth2.ErrDuplicate for the engine's generation-retry loop.
func NewStorage(name string, dsn string, autoMigrate bool) (domain.Storage, error) {
	registryMu.RLock()
	opener, ok := openers[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("persistence: unknown storage provider %q", name)
	}

	db, err := gorm.Open(opener(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	repo := NewRepository(db)
	if autoMigrate {
		if err := repo.AutoMigrate(); err != nil {
			return nil, err
		}
	}
	return repo, nil
}
