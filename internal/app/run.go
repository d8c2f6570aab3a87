package app

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/specialistvlad/gridexpr/internal/ctxlog"
	"github.com/specialistvlad/gridexpr/internal/curve"
	"github.com/specialistvlad/gridexpr/internal/expr"
	"github.com/specialistvlad/gridexpr/internal/loader"
	"github.com/specialistvlad/gridexpr/internal/model"
	"github.com/specialistvlad/gridexpr/internal/querydb"
	"github.com/specialistvlad/gridexpr/internal/resolve"
	"github.com/specialistvlad/gridexpr/internal/timeindex"
	"github.com/specialistvlad/gridexpr/internal/timevector"
)

// Run loads the model and evaluates the configured key, or prints a model
// summary when no key is configured.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	m, err := model.LoadRecursively(ctx, a.config.ModelPath)
	if err != nil {
		return fmt.Errorf("failed to load model: %w", err)
	}
	defer func() {
		if err := m.Close(); err != nil {
			a.logger.Error("Failed to release model resources", "error", err)
		}
	}()
	a.logger.Info("Model loaded successfully.", "keys_found", len(m.Data()))

	db := querydb.NewCacheDB(m)
	if err := db.SetMinElapsedSeconds(a.config.CacheMinElapsed); err != nil {
		return err
	}

	if a.config.Key == "" {
		a.logger.Warn("No key given, printing model summary.")
		return a.summary(m)
	}

	e, err := a.lookup(db)
	if err != nil {
		return err
	}
	switch a.config.Mode {
	case ModeProfile:
		err = a.profile(ctx, db, e)
	default:
		err = a.level(ctx, db, e)
	}
	if err != nil {
		return fmt.Errorf("failed to evaluate %q: %w", a.config.Key, err)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// lookup returns the configured key as an expression. Time vectors are
// wrapped in a leaf tagged after their polarity.
func (a *App) lookup(db querydb.QueryDB) (*expr.Expr, error) {
	value, err := db.Get(a.config.Key)
	if err != nil {
		return nil, err
	}
	switch v := value.(type) {
	case *expr.Expr:
		return v, nil
	case timevector.TimeVector:
		tags := expr.Tags{Level: true}
		if v.Polarity().IsProfile() {
			tags = expr.Tags{Profile: true}
		}
		return expr.NewVector(v, tags)
	case curve.Curve:
		return nil, fmt.Errorf("%q is a curve, which cannot be evaluated", a.config.Key)
	}
	return nil, fmt.Errorf("%q holds unsupported value %T", a.config.Key, value)
}

func (a *App) scenarioIndex() (*timeindex.FixedFrequencyTimeIndex, error) {
	if a.config.Weekly {
		return timeindex.WeeklyIndex(a.config.Year, 1, a.config.Is52WeekYears)
	}
	return timeindex.DailyIndex(a.config.Year, 1, a.config.Is52WeekYears)
}

func (a *App) level(ctx context.Context, db querydb.QueryDB, e *expr.Expr) error {
	scenDim, err := a.scenarioIndex()
	if err != nil {
		return err
	}
	v, err := resolve.GetLevelValue(ctx, e, db, a.config.Unit, timeindex.ModelYear(a.config.Year), scenDim, !a.config.AvgLevel)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.outW, strings.TrimSpace(fmt.Sprintf("%s = %s %s", a.config.Key, formatFloat(v), a.config.Unit)))
	return err
}

func (a *App) profile(ctx context.Context, db querydb.QueryDB, e *expr.Expr) error {
	scenDim, err := a.scenarioIndex()
	if err != nil {
		return err
	}
	vector, err := resolve.GetProfileVector(ctx, e, db, timeindex.ModelYear(a.config.Year), scenDim, !a.config.MeanOne, a.config.Float32)
	if err != nil {
		return err
	}

	values := make([]string, len(vector))
	for i, v := range vector {
		values[i] = formatFloat(v)
	}
	_, err = fmt.Fprintf(a.outW, "%s (%d periods of %s from %s)\n%s\n",
		a.config.Key, scenDim.NumPeriods(), scenDim.PeriodDuration(), scenDim.StartTime().Format("2006-01-02"),
		strings.Join(values, " "))
	return err
}

// summary prints what the model holds per concept and type, and how many
// distinct loaders back it.
func (a *App) summary(m *model.Model) error {
	counts := m.ContentCounts()
	for _, concept := range slices.Sorted(maps.Keys(counts)) {
		byType := counts[concept]
		parts := make([]string, 0, len(byType))
		for _, typeName := range slices.Sorted(maps.Keys(byType)) {
			parts = append(parts, fmt.Sprintf("%s=%d", typeName, byType[typeName]))
		}
		if len(parts) == 0 {
			parts = append(parts, "none")
		}
		if _, err := fmt.Fprintf(a.outW, "%s: %s\n", concept, strings.Join(parts, " ")); err != nil {
			return err
		}
	}

	loaders := loader.Set{}
	for _, v := range m.Data() {
		switch v := v.(type) {
		case *expr.Expr:
			v.AddLoaders(loaders)
		case timevector.TimeVector:
			loaders.Add(v.Loader())
		case curve.Curve:
			loaders.Add(v.Loader())
		}
	}
	_, err := fmt.Fprintf(a.outW, "loaders: %d\n", len(loaders))
	return err
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
