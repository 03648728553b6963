package metrics

import (
	"context"
	"time"

	rpcmetrics "github.com/filecoin-project/go-jsonrpc/metrics"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

// Distributions
var defaultMillisecondsDistribution = view.Distribution(
	0.01, 0.05, 0.1, 0.3, 0.6, 0.8, 1, 2, 3, 4, 5, 6, 8, // Very short intervals for fast operations
	10, 20, 30, 40, 50, 60, 70, 80, 90, 100, // 10 ms intervals up to 100 ms
	150, 200, 250, 300, 350, 400, 450, 500, // 50 ms intervals from 100 to 500 ms
	600, 700, 800, 900, 1000, // 100 ms intervals from 500 to 1000 ms
	2000, 3000, 4000, 5000, 6000, 8000, 10000, 13000, 16000, 20000, 25000, 30000, 40000, 50000, 65000, 80000, 100000,
)

// Tags
var (
	Version, _      = tag.NewKey("version")
	Commit, _       = tag.NewKey("commit")
	NodeType, _     = tag.NewKey("node_type")
	Endpoint, _     = tag.NewKey("endpoint")
	APIInterface, _ = tag.NewKey("api")
	Timelock, _     = tag.NewKey("timelock")
)

// Measures
var (
	Info               = stats.Int64("info", "Arbitrary counter to tag govexec info to", stats.UnitDimensionless)
	APIRequestDuration = stats.Float64("api/request_duration_ms", "Duration of API requests", stats.UnitMilliseconds)

	ProposalQueued   = stats.Int64("gov/queued", "Counter of proposals queued on a timelock", stats.UnitDimensionless)
	ProposalExecuted = stats.Int64("gov/executed", "Counter of proposals executed through a timelock", stats.UnitDimensionless)
	ProposalCanceled = stats.Int64("gov/canceled", "Counter of proposal cancellations unwound on a timelock", stats.UnitDimensionless)
	RegistrySize     = stats.Int64("gov/timelocks", "Current number of registered timelocks", stats.UnitDimensionless)
)

// Views
var (
	InfoView = &view.View{
		Name:        "info",
		Description: "Govexec node information",
		Measure:     Info,
		Aggregation: view.LastValue(),
		TagKeys:     []tag.Key{Version, Commit, NodeType},
	}
	APIRequestDurationView = &view.View{
		Measure:     APIRequestDuration,
		Aggregation: defaultMillisecondsDistribution,
		TagKeys:     []tag.Key{APIInterface, Endpoint},
	}
	ProposalQueuedView = &view.View{
		Measure:     ProposalQueued,
		Aggregation: view.Count(),
		TagKeys:     []tag.Key{Timelock},
	}
	ProposalExecutedView = &view.View{
		Measure:     ProposalExecuted,
		Aggregation: view.Count(),
		TagKeys:     []tag.Key{Timelock},
	}
	ProposalCanceledView = &view.View{
		Measure:     ProposalCanceled,
		Aggregation: view.Count(),
		TagKeys:     []tag.Key{Timelock},
	}
	RegistrySizeView = &view.View{
		Measure:     RegistrySize,
		Aggregation: view.LastValue(),
	}
)

var views = []*view.View{
	InfoView,
	APIRequestDurationView,
	ProposalQueuedView,
	ProposalExecutedView,
	ProposalCanceledView,
	RegistrySizeView,
}

// DefaultViews is an array of OpenCensus views for metric gathering purposes
var DefaultViews = func() []*view.View {
	return views
}()

// RegisterViews adds views to the default list without modifying this file.
func RegisterViews(v ...*view.View) {
	views = append(views, v...)
}

func init() {
	RegisterViews(rpcmetrics.DefaultViews...)
}

// SinceInMilliseconds returns the duration of time since the provide time as a float64.
func SinceInMilliseconds(startTime time.Time) float64 {
	return float64(time.Since(startTime).Milliseconds())
}

// Timer is a function stopwatch, calling it starts the timer,
// calling the returned function will record the duration.
func Timer(ctx context.Context, m *stats.Float64Measure) func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		stats.Record(ctx, m.M(SinceInMilliseconds(start)))
		return time.Since(start)
	}
}
