package feature

import (
	"log/slog"
	"time"

	"github.com/flowboard/aicore"
	"github.com/flowboard/aicore/internal/metrics"
	"github.com/flowboard/aicore/pkg/aierr"
)

// Result provenance. Callers see which path produced a value; the shape
// is identical either way.
const (
	SourceModel     = "model"
	SourceHeuristic = "heuristic"
)

// Deps are the collaborators shared by all feature adapters.
type Deps struct {
	AI     *aicore.Client
	Store  Store
	Logger *slog.Logger
	Clock  func() time.Time
}

func (d *Deps) now() time.Time {
	if d.Clock != nil {
		return d.Clock()
	}
	return time.Now()
}

func (d *Deps) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// recordFallback notes a heuristic substitution in the log and metrics.
func (d *Deps) recordFallback(feature string, err error) {
	kind := string(aierr.KindOf(err))
	metrics.FallbacksTotal.WithLabelValues(feature, kind).Inc()
	d.logger().Warn("serving heuristic fallback",
		"feature", feature,
		"reason", kind,
		"error", err.Error(),
	)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
