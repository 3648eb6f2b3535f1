package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Generation modes used as the "mode" label.
const (
	ModeSingle     = "single"
	ModeBulk       = "bulk"
	ModeSelect     = "select"
	ModeQuickStart = "quick_start"
)

var (
	GenerationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blockprompt_generations_total",
		Help: "Provider calls by generation mode and outcome.",
	}, []string{"mode", "outcome"})

	GenerationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "blockprompt_generation_duration_seconds",
		Help:    "Time spent waiting on the provider.",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
	}, []string{"mode"})

	PendingBlocks = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "blockprompt_pending_blocks",
		Help: "Blocks currently awaiting generated content across all sessions.",
	})

	TemplateFallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blockprompt_template_fallbacks_total",
		Help: "Template selections that fell back to the default template.",
	}, []string{"reason"})

	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "blockprompt_sessions_active",
		Help: "Editing sessions held in memory.",
	})
)
