// Package sqlite stores time vectors and curves in a SQLite file and serves
// them through the loader interfaces. Reads go through an LRU cache so that
// a vector referenced by many expressions is only queried once.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/specialistvlad/gridexpr/internal/ctxlog"
	"github.com/specialistvlad/gridexpr/internal/loader"
	"github.com/specialistvlad/gridexpr/internal/timeindex"
	_ "modernc.org/sqlite"
)

// DefaultCacheSize is the number of vectors and curves kept in memory.
const DefaultCacheSize = 256

const (
	kindFixed = "fixed"
	kindList  = "list"
)

type vectorEntry struct {
	values []float64
	index  timeindex.TimeIndex
	meta   loader.VectorMetadata
}

type curveEntry struct {
	x, y []float64
	meta loader.CurveMetadata
}

type Store struct {
	id      string
	path    string
	db      *sql.DB
	vectors *lru.Cache[string, vectorEntry]
	curves  *lru.Cache[string, curveEntry]
}

var (
	_ loader.TimeVectorLoader = (*Store)(nil)
	_ loader.CurveLoader      = (*Store)(nil)
)

// Open opens or creates the database at path and applies the schema.
func Open(path string, cacheSize int) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite: path is required")
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	vectors, err := lru.New[string, vectorEntry](cacheSize)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	curves, err := lru.New[string, curveEntry](cacheSize)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	store := &Store{id: uuid.NewString(), path: path, db: db, vectors: vectors, curves: curves}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) ID() string   { return s.id }
func (s *Store) Path() string { return s.path }

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate() error {
	statements := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS time_vectors (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			start_time TEXT NOT NULL,
			period_seconds INTEGER NOT NULL,
			num_periods INTEGER NOT NULL,
			is_52_week_years INTEGER NOT NULL,
			extrapolate_first INTEGER NOT NULL,
			extrapolate_last INTEGER NOT NULL,
			unit TEXT NOT NULL,
			is_max_level INTEGER,
			is_zero_one_profile INTEGER,
			ref_start_year INTEGER,
			ref_num_years INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS time_vector_points (
			vector_id TEXT NOT NULL REFERENCES time_vectors(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			value REAL NOT NULL,
			PRIMARY KEY (vector_id, position)
		);`,
		`CREATE TABLE IF NOT EXISTS time_vector_boundaries (
			vector_id TEXT NOT NULL REFERENCES time_vectors(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			at TEXT NOT NULL,
			PRIMARY KEY (vector_id, position)
		);`,
		`CREATE TABLE IF NOT EXISTS curves (
			id TEXT PRIMARY KEY,
			x_unit TEXT NOT NULL,
			y_unit TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS curve_points (
			curve_id TEXT NOT NULL REFERENCES curves(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			x REAL NOT NULL,
			y REAL NOT NULL,
			PRIMARY KEY (curve_id, position)
		);`,
	}

	for _, statement := range statements {
		if _, err := s.db.Exec(statement); err != nil {
			return err
		}
	}
	return nil
}

// PutVector writes a vector, replacing any existing one with the same id.
// Fixed frequency and list indexes are supported.
func (s *Store) PutVector(ctx context.Context, id string, index timeindex.TimeIndex, values []float64, meta loader.VectorMetadata) (err error) {
	if index == nil {
		return fmt.Errorf("sqlite: vector %q has no time index", id)
	}
	if len(values) != index.NumPeriods() {
		return fmt.Errorf("sqlite: vector %q has %d values for %d periods", id, len(values), index.NumPeriods())
	}
	if (meta.IsMaxLevel == nil) == (meta.IsZeroOneProfile == nil) {
		return fmt.Errorf("sqlite: vector %q must be either a level or a profile", id)
	}

	kind := kindList
	var period time.Duration
	switch ti := index.(type) {
	case *timeindex.FixedFrequencyTimeIndex:
		kind, period = kindFixed, ti.PeriodDuration()
	case *timeindex.SinglePeriodTimeIndex:
		kind, period = kindFixed, ti.PeriodDuration()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{"time_vector_points", "time_vector_boundaries"} {
		if _, err = tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE vector_id = ?`, id); err != nil {
			return err
		}
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM time_vectors WHERE id = ?`, id); err != nil {
		return err
	}
	var refStart, refYears any
	if rp := meta.ReferencePeriod; rp != nil {
		refStart, refYears = rp.StartYear(), rp.NumYears()
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO time_vectors (
			id, kind, start_time, period_seconds, num_periods, is_52_week_years,
			extrapolate_first, extrapolate_last, unit, is_max_level, is_zero_one_profile,
			ref_start_year, ref_num_years
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, kind, index.StartTime().Format(time.RFC3339Nano), int64(period/time.Second), index.NumPeriods(),
		index.Is52WeekYears(), index.ExtrapolateFirstPoint(), index.ExtrapolateLastPoint(),
		meta.Unit, nullBool(meta.IsMaxLevel), nullBool(meta.IsZeroOneProfile), refStart, refYears,
	)
	if err != nil {
		return err
	}

	points, err := tx.PrepareContext(ctx, `INSERT INTO time_vector_points (vector_id, position, value) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer points.Close()
	for i, v := range values {
		if _, err = points.ExecContext(ctx, id, i, v); err != nil {
			return err
		}
	}

	if kind == kindList {
		bounds, perr := tx.PrepareContext(ctx, `INSERT INTO time_vector_boundaries (vector_id, position, at) VALUES (?, ?, ?)`)
		if perr != nil {
			err = perr
			return err
		}
		defer bounds.Close()
		for i, at := range index.DatetimeList() {
			if _, err = bounds.ExecContext(ctx, id, i, at.Format(time.RFC3339Nano)); err != nil {
				return err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return err
	}
	s.vectors.Remove(id)
	ctxlog.FromContext(ctx).Debug("Stored time vector.", "vector", id, "kind", kind, "periods", len(values))
	return nil
}

// PutCurve writes a curve, replacing any existing one with the same id.
func (s *Store) PutCurve(ctx context.Context, id string, x, y []float64, meta loader.CurveMetadata) (err error) {
	if len(x) != len(y) {
		return fmt.Errorf("sqlite: curve %q has %d x values and %d y values", id, len(x), len(y))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM curve_points WHERE curve_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM curves WHERE id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `INSERT INTO curves (id, x_unit, y_unit) VALUES (?, ?, ?)`, id, meta.XUnit, meta.YUnit); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO curve_points (curve_id, position, x, y) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i := range x {
		if _, err = stmt.ExecContext(ctx, id, i, x[i], y[i]); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return err
	}
	s.curves.Remove(id)
	return nil
}

func (s *Store) Values(ctx context.Context, id string) ([]float64, error) {
	v, err := s.vector(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(v.values))
	copy(out, v.values)
	return out, nil
}

func (s *Store) Index(ctx context.Context, id string) (timeindex.TimeIndex, error) {
	v, err := s.vector(ctx, id)
	if err != nil {
		return nil, err
	}
	return v.index, nil
}

func (s *Store) Metadata(ctx context.Context, id string) (loader.VectorMetadata, error) {
	v, err := s.vector(ctx, id)
	if err != nil {
		return loader.VectorMetadata{}, err
	}
	return v.meta, nil
}

func (s *Store) XAxis(ctx context.Context, id string) ([]float64, error) {
	c, err := s.curve(ctx, id)
	if err != nil {
		return nil, err
	}
	return append([]float64(nil), c.x...), nil
}

func (s *Store) YAxis(ctx context.Context, id string) ([]float64, error) {
	c, err := s.curve(ctx, id)
	if err != nil {
		return nil, err
	}
	return append([]float64(nil), c.y...), nil
}

func (s *Store) CurveMetadata(ctx context.Context, id string) (loader.CurveMetadata, error) {
	c, err := s.curve(ctx, id)
	if err != nil {
		return loader.CurveMetadata{}, err
	}
	return c.meta, nil
}

func (s *Store) vector(ctx context.Context, id string) (vectorEntry, error) {
	if v, ok := s.vectors.Get(id); ok {
		return v, nil
	}

	var (
		kind, start, unit          string
		periodSeconds              int64
		numPeriods                 int
		is52, extrapFirst, extrapLast bool
		isMax, isZeroOne           sql.NullBool
		refStart, refYears         sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT kind, start_time, period_seconds, num_periods, is_52_week_years,
			extrapolate_first, extrapolate_last, unit, is_max_level, is_zero_one_profile,
			ref_start_year, ref_num_years
		FROM time_vectors WHERE id = ?`, id,
	).Scan(&kind, &start, &periodSeconds, &numPeriods, &is52, &extrapFirst, &extrapLast, &unit,
		&isMax, &isZeroOne, &refStart, &refYears)
	if errors.Is(err, sql.ErrNoRows) {
		return vectorEntry{}, fmt.Errorf("%w: vector %q in %s", loader.ErrNotFound, id, s.path)
	}
	if err != nil {
		return vectorEntry{}, fmt.Errorf("sqlite: failed to read vector %q: %w", id, err)
	}

	startTime, err := time.Parse(time.RFC3339Nano, start)
	if err != nil {
		return vectorEntry{}, fmt.Errorf("sqlite: vector %q has invalid start time: %w", id, err)
	}

	var index timeindex.TimeIndex
	switch kind {
	case kindFixed:
		index, err = timeindex.NewFixedFrequencyTimeIndex(startTime, time.Duration(periodSeconds)*time.Second, numPeriods, is52, extrapFirst, extrapLast)
	case kindList:
		var bounds []time.Time
		bounds, err = s.boundaries(ctx, id)
		if err == nil {
			index, err = timeindex.NewListTimeIndex(bounds, is52, extrapFirst, extrapLast)
		}
	default:
		err = fmt.Errorf("unknown index kind %q", kind)
	}
	if err != nil {
		return vectorEntry{}, fmt.Errorf("sqlite: vector %q: %w", id, err)
	}

	values, err := s.floats(ctx, `SELECT value FROM time_vector_points WHERE vector_id = ? ORDER BY position`, id)
	if err != nil {
		return vectorEntry{}, fmt.Errorf("sqlite: failed to read values of vector %q: %w", id, err)
	}

	meta := loader.VectorMetadata{Unit: unit}
	if isMax.Valid {
		meta.IsMaxLevel = &isMax.Bool
	}
	if isZeroOne.Valid {
		meta.IsZeroOneProfile = &isZeroOne.Bool
	}
	if refStart.Valid && refYears.Valid {
		meta.ReferencePeriod, err = timeindex.NewReferencePeriod(int(refStart.Int64), int(refYears.Int64))
		if err != nil {
			return vectorEntry{}, fmt.Errorf("sqlite: vector %q: %w", id, err)
		}
	}

	entry := vectorEntry{values: values, index: index, meta: meta}
	s.vectors.Add(id, entry)
	ctxlog.FromContext(ctx).Debug("Loaded time vector.", "vector", id, "periods", len(values), "path", s.path)
	return entry, nil
}

func (s *Store) boundaries(ctx context.Context, id string) ([]time.Time, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT at FROM time_vector_boundaries WHERE vector_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var at string
		if err := rows.Scan(&at); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) curve(ctx context.Context, id string) (curveEntry, error) {
	if c, ok := s.curves.Get(id); ok {
		return c, nil
	}

	var meta loader.CurveMetadata
	err := s.db.QueryRowContext(ctx, `SELECT x_unit, y_unit FROM curves WHERE id = ?`, id).Scan(&meta.XUnit, &meta.YUnit)
	if errors.Is(err, sql.ErrNoRows) {
		return curveEntry{}, fmt.Errorf("%w: curve %q in %s", loader.ErrNotFound, id, s.path)
	}
	if err != nil {
		return curveEntry{}, fmt.Errorf("sqlite: failed to read curve %q: %w", id, err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT x, y FROM curve_points WHERE curve_id = ? ORDER BY position`, id)
	if err != nil {
		return curveEntry{}, err
	}
	defer rows.Close()

	entry := curveEntry{meta: meta}
	for rows.Next() {
		var x, y float64
		if err := rows.Scan(&x, &y); err != nil {
			return curveEntry{}, err
		}
		entry.x = append(entry.x, x)
		entry.y = append(entry.y, y)
	}
	if err := rows.Err(); err != nil {
		return curveEntry{}, err
	}

	s.curves.Add(id, entry)
	return entry, nil
}

func (s *Store) floats(ctx context.Context, query string, args ...any) ([]float64, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func nullBool(b *bool) any {
	if b == nil {
		return nil
	}
	return *b
}
