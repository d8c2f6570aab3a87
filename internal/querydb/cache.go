package querydb

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/specialistvlad/gridexpr/internal/model"
)

// DefaultCacheSize is the number of computed values a CacheDB keeps.
const DefaultCacheSize = 4096

// ErrInvalidThreshold is returned for a negative or non-finite minimum
// elapsed time.
var ErrInvalidThreshold = errors.New("invalid min elapsed seconds")

// CacheDB is a ModelDB that remembers values which took at least
// MinElapsedSeconds to compute. Cached values shadow model data.
type CacheDB struct {
	*ModelDB
	cache      *lru.Cache[string, any]
	minElapsed atomic.Uint64 // math.Float64bits of the threshold in seconds
}

var _ Cache = (*CacheDB)(nil)

// NewCacheDB returns a CacheDB over primary followed by others, holding at
// most DefaultCacheSize values.
func NewCacheDB(primary Source, others ...Source) *CacheDB {
	db, err := NewCacheDBSize(DefaultCacheSize, primary, others...)
	if err != nil {
		panic(err)
	}
	return db
}

// NewCacheDBSize is NewCacheDB with an explicit cache size.
func NewCacheDBSize(size int, primary Source, others ...Source) (*CacheDB, error) {
	cache, err := lru.New[string, any](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}
	return &CacheDB{ModelDB: NewModelDB(primary, others...), cache: cache}, nil
}

func (db *CacheDB) HasKey(key string) bool {
	return db.cache.Contains(key) || db.ModelDB.HasKey(key)
}

func (db *CacheDB) Get(key string) (any, error) {
	if v, ok := db.cache.Get(key); ok {
		return v, nil
	}
	return db.ModelDB.Get(key)
}

// Data returns the primary model's data. Cached values are not included.
func (db *CacheDB) Data() model.Data { return db.ModelDB.Data() }

// Put caches value under key when elapsed reaches the threshold.
func (db *CacheDB) Put(key string, value any, elapsed time.Duration) {
	if elapsed.Seconds() < db.MinElapsedSeconds() {
		return
	}
	db.cache.Add(key, value)
}

// SetMinElapsedSeconds sets how long a computation must take before Put
// keeps its result.
func (db *CacheDB) SetMinElapsedSeconds(seconds float64) error {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return fmt.Errorf("%w: expected a non-negative number of seconds, got %v", ErrInvalidThreshold, seconds)
	}
	db.minElapsed.Store(math.Float64bits(seconds))
	return nil
}

func (db *CacheDB) MinElapsedSeconds() float64 {
	return math.Float64frombits(db.minElapsed.Load())
}

// Len reports the number of cached values.
func (db *CacheDB) Len() int { return db.cache.Len() }
