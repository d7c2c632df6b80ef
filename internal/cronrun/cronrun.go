// Package cronrun commits schedules for every auto-scheduling workspace on a
// cron schedule.
package cronrun

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/zulandar/calyard/internal/schedule"
)

// Parser accepts standard 5-field cron expressions (minute, hour, dom, month, dow).
var Parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Committer commits one workspace.
type Committer interface {
	Commit(ctx context.Context, workspaceID string, opts schedule.Options) (*schedule.Result, error)
}

// Lister returns the workspaces to run.
type Lister interface {
	AutoScheduleWorkspaces(ctx context.Context) ([]string, error)
}

// Runner fires Sweep on a cron schedule.
type Runner struct {
	committer Committer
	lister    Lister
	log       zerolog.Logger
	cron      *cron.Cron
}

// New builds a Runner for expr, evaluated in loc.
func New(expr string, loc *time.Location, c Committer, l Lister, log zerolog.Logger) (*Runner, error) {
	if loc == nil {
		loc = time.UTC
	}
	r := &Runner{
		committer: c,
		lister:    l,
		log:       log.With().Str("component", "cronrun").Logger(),
		cron:      cron.New(cron.WithLocation(loc), cron.WithParser(Parser)),
	}
	if _, err := r.cron.AddFunc(expr, func() { r.Sweep(context.Background()) }); err != nil {
		return nil, fmt.Errorf("cronrun: schedule %q: %w", expr, err)
	}
	return r, nil
}

// Run starts the schedule and blocks until ctx is cancelled and any sweep in
// flight has finished.
func (r *Runner) Run(ctx context.Context) {
	r.cron.Start()
	r.log.Info().Time("next", r.Next()).Msg("cron runner started")
	<-ctx.Done()
	<-r.cron.Stop().Done()
}

// Next is the next fire time, zero before Run.
func (r *Runner) Next() time.Time {
	entries := r.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// SweepResult counts the outcome of one sweep.
type SweepResult struct {
	Committed int
	Skipped   int
	Failed    int
}

// Sweep commits every listed workspace in turn. A workspace already being
// scheduled is skipped; other failures are logged and do not stop the sweep.
func (r *Runner) Sweep(ctx context.Context) SweepResult {
	var out SweepResult
	ids, err := r.lister.AutoScheduleWorkspaces(ctx)
	if err != nil {
		r.log.Error().Err(err).Msg("list workspaces")
		return out
	}
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		res, err := r.committer.Commit(ctx, id, schedule.Options{})
		switch {
		case errors.Is(err, schedule.ErrRunInProgress):
			out.Skipped++
			r.log.Info().Str("workspace", id).Msg("run in progress, skipping")
		case err != nil:
			out.Failed++
			r.log.Error().Err(err).Str("workspace", id).Msg("scheduled commit failed")
		default:
			out.Committed++
			r.log.Debug().Str("workspace", id).Str("status", string(res.Status)).Msg("scheduled commit")
		}
	}
	r.log.Info().Int("committed", out.Committed).Int("skipped", out.Skipped).Int("failed", out.Failed).Msg("sweep finished")
	return out
}
