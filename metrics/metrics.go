// Package metrics adapts metric collectors to the observations the bot makes.
package metrics

import "github.com/prometheus/client_golang/prometheus"

type Observer interface {
	Observe(val float64, labels ...string)

	// for now we will tightly couple to the prometheus collector type
	prometheus.Collector
}

type Metrics struct {
	// WebhookCount counts webhooks received, labeled by trigger.
	WebhookCount Observer
	// TokenMismatches counts webhooks carrying the wrong token.
	TokenMismatches Observer
	// CommandCount counts commands executed, labeled by kind.
	CommandCount Observer
	// RemoteFailures counts failed calls to the office or chat, labeled by
	// operation.
	RemoteFailures Observer
	// RefreshLatency observes the duration of directory refreshes, labeled
	// by outcome.
	RefreshLatency Observer
	// DirectorySize is the number of desks in the directory.
	DirectorySize Observer
}

func (m Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.WebhookCount,
		m.TokenMismatches,
		m.CommandCount,
		m.RemoteFailures,
		m.RefreshLatency,
		m.DirectorySize,
	}
}
