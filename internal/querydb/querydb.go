package querydb

import (
	"errors"
	"fmt"
	"time"

	"github.com/specialistvlad/gridexpr/internal/model"
)

// ErrNotFound is returned by Get when no model holds the key.
var ErrNotFound = errors.New("key not found")

// Source is anything that exposes model data, usually a *model.Model.
type Source interface {
	Data() model.Data
}

// QueryDB is the lookup the resolvers consume.
type QueryDB interface {
	HasKey(key string) bool
	Get(key string) (any, error)
	// Data returns the data of the primary model.
	Data() model.Data
}

// Cache is a QueryDB that can also store computed values.
type Cache interface {
	QueryDB
	Put(key string, value any, elapsed time.Duration)
}

// ModelDB searches a chain of models.
type ModelDB struct {
	models []Source
}

var _ QueryDB = (*ModelDB)(nil)

// NewModelDB returns a ModelDB over primary followed by others.
func NewModelDB(primary Source, others ...Source) *ModelDB {
	models := make([]Source, 0, 1+len(others))
	models = append(models, primary)
	models = append(models, others...)
	return &ModelDB{models: models}
}

func (db *ModelDB) lookup(key string) (any, bool) {
	for _, m := range db.models {
		if v, ok := m.Data()[key]; ok {
			return v, true
		}
	}
	return nil, false
}

func (db *ModelDB) HasKey(key string) bool {
	_, ok := db.lookup(key)
	return ok
}

func (db *ModelDB) Get(key string) (any, error) {
	if v, ok := db.lookup(key); ok {
		return v, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, key)
}

func (db *ModelDB) Data() model.Data { return db.models[0].Data() }
