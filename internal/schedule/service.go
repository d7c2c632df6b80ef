package schedule

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/zulandar/calyard/internal/config"
)

var (
	// ErrWorkspaceNotFound is returned when the workspace does not exist.
	ErrWorkspaceNotFound = errors.New("schedule: workspace not found")
	// ErrRunInProgress is returned when another commit holds the workspace lock.
	ErrRunInProgress = errors.New("schedule: run already in progress")
)

// Workspace is the tenant a run is scoped to.
type Workspace struct {
	ID       string
	Name     string
	Location *time.Location
}

// Snapshot is the schedulable state of a workspace at the start of a run.
type Snapshot struct {
	Habits []Habit
	Tasks  []Task
	Events []Event
}

// Store is the persistence collaborator used by Service.
type Store interface {
	Workspace(ctx context.Context, id string) (Workspace, error)
	Load(ctx context.Context, workspaceID string, w Window) (*Snapshot, error)
	ClaimRun(ctx context.Context, workspaceID, owner string, now time.Time) error
	ReleaseRun(ctx context.Context, workspaceID, owner string) error
	SaveRun(ctx context.Context, res *Result, at time.Time) error
}

// Options are the caller-supplied knobs of a run.
type Options struct {
	WindowDays int
	Force      bool
}

// Service runs previews and commits for workspaces.
type Service struct {
	store Store
	sink  Sink
	hours Hours
	cfg   config.SchedulingConfig
	log   zerolog.Logger
	now   func() time.Time
	owner string
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithClock overrides the run clock.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// WithOwner sets the lock owner recorded for commits.
func WithOwner(owner string) ServiceOption {
	return func(s *Service) { s.owner = owner }
}

// NewService wires a Service. sink receives committed plans.
func NewService(store Store, sink Sink, hours Hours, cfg config.SchedulingConfig, log zerolog.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		store: store,
		sink:  sink,
		hours: hours,
		cfg:   cfg,
		log:   log.With().Str("component", "schedule").Logger(),
		now:   time.Now,
	}
	if host, err := os.Hostname(); err == nil {
		s.owner = fmt.Sprintf("%s-%d", host, os.Getpid())
	} else {
		s.owner = fmt.Sprintf("calyard-%d", os.Getpid())
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Preview computes a schedule without persisting anything and returns it with
// the step trace.
func (s *Service) Preview(ctx context.Context, workspaceID string, opts Options) (*Result, error) {
	ws, err := s.store.Workspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	res, err := s.run(ctx, workspaceID, ws.Location, opts, true)
	if err != nil {
		return nil, err
	}
	res.State = StatePreview
	if err := (NullSink{}).Write(ctx, res.Plan()); err != nil {
		return nil, err
	}
	res.markPreview()
	res.State = StateDone
	s.log.Debug().Str("workspace", workspaceID).Int("events", len(res.Events)).Msg("preview computed")
	return res, nil
}

// Commit computes a schedule and applies it through the sink. Only one
// commit per workspace runs at a time.
func (s *Service) Commit(ctx context.Context, workspaceID string, opts Options) (*Result, error) {
	ws, err := s.store.Workspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if err := s.store.ClaimRun(ctx, workspaceID, s.owner, s.now()); err != nil {
		return nil, err
	}
	defer func() {
		if err := s.store.ReleaseRun(context.WithoutCancel(ctx), workspaceID, s.owner); err != nil {
			s.log.Warn().Err(err).Str("workspace", workspaceID).Msg("release run lock")
		}
	}()

	res, err := s.run(ctx, workspaceID, ws.Location, opts, false)
	if err != nil {
		return nil, err
	}

	res.State = StateCommit
	if err := s.sink.Write(ctx, res.Plan()); err != nil {
		res.State = StateFailed
		s.log.Error().Err(err).Str("workspace", workspaceID).Msg("commit failed")
		return res, fmt.Errorf("schedule: commit %s: %w", workspaceID, err)
	}
	res.State = StateDone

	if err := s.store.SaveRun(ctx, res, s.now()); err != nil {
		s.log.Warn().Err(err).Str("workspace", workspaceID).Msg("save run metadata")
	}
	s.log.Info().
		Str("workspace", workspaceID).
		Str("status", string(res.Status)).
		Int("events", res.Summary.EventsCreated).
		Int("bumped", res.Summary.BumpedHabits).
		Int("warnings", len(res.Warnings)).
		Msg("schedule committed")
	return res, nil
}

// run executes the pipeline for a workspace already resolved by the caller.
func (s *Service) run(ctx context.Context, workspaceID string, loc *time.Location, opts Options, trace bool) (*Result, error) {
	if loc == nil {
		loc = time.UTC
	}
	days := opts.WindowDays
	if days == 0 {
		days = s.cfg.WindowDays
	}
	now := s.now().In(loc)
	w := NewWindow(now, days, minutes(s.cfg.SlotMinutes))

	snap, err := s.store.Load(ctx, workspaceID, w)
	if err != nil {
		return nil, fmt.Errorf("schedule: load %s: %w", workspaceID, err)
	}
	return Run(Input{
		WorkspaceID:     workspaceID,
		Now:             now,
		WindowDays:      w.Days,
		Force:           opts.Force,
		Habits:          snap.Habits,
		Tasks:           snap.Tasks,
		Existing:        snap.Events,
		Hours:           s.hours,
		SlotMinutes:     s.cfg.SlotMinutes,
		MinSplitMinutes: s.cfg.MinSplitMinutes,
		MaxSplitMinutes: s.cfg.MaxSplitMinutes,
		Trace:           trace,
		Clock:           s.now,
	}), nil
}

func (r *Result) markPreview() {
	for _, list := range [][]Event{r.Events, r.HabitEvents, r.TaskEvents, r.Rescheduled} {
		for i := range list {
			list[i].Preview = true
		}
	}
}
