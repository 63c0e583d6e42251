// Package report turns session logs into the JSON documents served by the
// CLI and the HTTP API: overview, hidden costs, timeline and task estimates.
//
// Every call performs a fresh scan of the data directory; nothing is cached
// between calls.
package report

import (
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ritchiero/Budget-Agent/internal/aggregator"
	"github.com/ritchiero/Budget-Agent/internal/logger"
	"github.com/ritchiero/Budget-Agent/internal/parser"
	"github.com/ritchiero/Budget-Agent/internal/timewindow"
	"github.com/ritchiero/Budget-Agent/internal/usage"
)

// Analyzer runs analyses over one data directory
type Analyzer struct {
	DataDir string
	Window  timewindow.Policy
	Usage   usage.Options
	Since   time.Time
	Until   time.Time
}

// NewAnalyzer creates an Analyzer with the default window policy and
// cost derivation enabled
func NewAnalyzer(dataDir string) *Analyzer {
	return &Analyzer{
		DataDir: dataDir,
		Window:  timewindow.DefaultPolicy(),
		Usage:   usage.Options{DeriveMissingCost: true},
	}
}

func (a *Analyzer) entries() ([]aggregator.Entry, error) {
	messages, err := parser.LoadMessages(a.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	entries := aggregator.Collect(messages, a.aggregatorOptions())
	logger.Log.WithFields(logrus.Fields{
		"data_dir": a.DataDir,
		"messages": len(messages),
		"billable": len(entries),
	}).Debug("Collected billable entries")
	return entries, nil
}

func (a *Analyzer) aggregatorOptions() aggregator.Options {
	return aggregator.Options{Usage: a.Usage, Since: a.Since, Until: a.Until}
}

// Overview loads sessions and logs and builds the overview document
func (a *Analyzer) Overview() (*Overview, error) {
	sessions, err := parser.LoadSessions(a.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load sessions: %w", err)
	}
	entries, err := a.entries()
	if err != nil {
		return nil, err
	}
	return BuildOverview(sessions, entries), nil
}

// HiddenCosts builds the hidden-cost analysis document
func (a *Analyzer) HiddenCosts() (*HiddenCosts, error) {
	entries, err := a.entries()
	if err != nil {
		return nil, err
	}
	return BuildHiddenCosts(entries, a.Window), nil
}

// Timeline builds the cost timeline document
func (a *Analyzer) Timeline() (*Timeline, error) {
	entries, err := a.entries()
	if err != nil {
		return nil, err
	}
	return BuildTimeline(entries), nil
}

// Estimate pre-computes the cost of a described task on the given model
func (a *Analyzer) Estimate(task, targetModel string) (*Estimate, error) {
	entries, err := a.entries()
	if err != nil {
		return nil, err
	}
	return BuildEstimate(task, targetModel, entries), nil
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
