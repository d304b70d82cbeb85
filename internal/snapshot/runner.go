// Package snapshot visits the pages listed in the configuration and compares
// each one against its visual baseline.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/dskochubey/selenium-automation-bundle/internal/config"
	"github.com/dskochubey/selenium-automation-bundle/internal/page"
	"github.com/dskochubey/selenium-automation-bundle/internal/visual"
)

type Outcome struct {
	Name     string
	Key      string
	Result   *visual.Result
	Duration time.Duration
}

type Report struct {
	RunID    string
	Outcomes []Outcome
}

type Runner struct {
	session   *page.Session
	snapshots []config.AppConfigSnapshot
}

func NewRunner(session *page.Session) *Runner {
	return &Runner{
		session:   session,
		snapshots: session.Config.Snapshots,
	}
}

// Run processes the snapshots in order and stops at the first failure.
// The report holds every snapshot finished before the failure.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	report := &Report{RunID: r.session.Visual.RunID()}
	for i, s := range r.snapshots {
		log.Infof("Snapshot %d/%d: %s", i+1, len(r.snapshots), s.Name)
		key := s.Key
		if key == "" {
			key = s.Name
		}
		start := time.Now()
		res, err := r.runOne(ctx, s, key)
		if err != nil {
			return report, fmt.Errorf("snapshot %s: %w", s.Name, err)
		}
		report.Outcomes = append(report.Outcomes, Outcome{
			Name:     s.Name,
			Key:      key,
			Result:   res,
			Duration: time.Since(start),
		})
	}
	return report, nil
}

func (r *Runner) runOne(ctx context.Context, s config.AppConfigSnapshot, key string) (*visual.Result, error) {
	p := page.NewDynamic(r.session, s.Name, key, s.URL, s.Wait, s.WaitAll)

	if _, err := p.Open(ctx); err != nil {
		return nil, err
	}
	if _, err := p.WaitForPageToLoadElements(ctx); err != nil {
		return nil, err
	}
	if _, err := p.HideOwnElementsFromFile(ctx); err != nil {
		if !errors.Is(err, page.ErrNoHiddenElements) && !errors.Is(err, page.ErrNoHiddenElementsFile) {
			return nil, err
		}
		log.Debugf("Nothing to hide on %s: %v", s.Name, err)
	}
	return r.session.Visual.Match(ctx, r.session.Driver, key, s.Name)
}
