package schedule

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// State is a stage of a scheduling run.
type State string

const (
	StateIdle               State = "idle"
	StateLoadExistingEvents State = "load_existing_events"
	StatePlaceHabits        State = "place_habits"
	StatePlaceTasks         State = "place_tasks"
	StateRescheduleBumped   State = "reschedule_bumped"
	StateCommit             State = "commit"
	StatePreview            State = "preview"
	StateDone               State = "done"
	StateFailed             State = "failed"
)

// StepType classifies a preview trace step.
type StepType string

const (
	StepHabit      StepType = "habit"
	StepTask       StepType = "task"
	StepBump       StepType = "bump"
	StepReschedule StepType = "reschedule"
	StepInfo       StepType = "info"
)

// Step is one entry of the ordered preview trace.
type Step struct {
	Step        int       `json:"step"`
	Type        StepType  `json:"type"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	Event       *Event    `json:"event,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// HabitPlacement is a habit event produced by the current run.
type HabitPlacement struct {
	Event       Event
	Habit       Habit
	Rescheduled bool
	Bumped      bool
}

// TaskPlacement is a task block produced by the current run.
type TaskPlacement struct {
	Event Event
	Task  Task
}

// BumpRecord describes a habit event evicted by a task. RescheduledEventID is
// empty when the occurrence stayed displaced.
type BumpRecord struct {
	HabitID            string   `json:"habitId"`
	HabitName          string   `json:"habitName"`
	OccurrenceDate     string   `json:"occurrenceDate"`
	OriginalEventID    string   `json:"originalEventId"`
	Original           Interval `json:"original"`
	TaskID             string   `json:"taskId"`
	TaskName           string   `json:"taskName"`
	RescheduledEventID string   `json:"rescheduledEventId,omitempty"`
}

// RunContext carries the evolving state of one run through every stage.
type RunContext struct {
	WorkspaceID string
	Window      Window
	Avail       *Availability

	minSplit int
	maxSplit int

	state     State
	traceOn   bool
	clock     func() time.Time
	steps     []Step
	idSeq     int
	satisfied map[string]bool
	taskDone  map[string]int
	discard   []string

	habits      []*HabitPlacement
	habitByID   map[string]*HabitPlacement
	tasks       []*TaskPlacement
	bumps       []BumpRecord
	order       []string
	habitWarn   []string
	taskWarn    []string
	bumpWarn    []string
	existingCnt int
}

func newRunContext(in Input) *RunContext {
	slot := minutes(in.SlotMinutes)
	w := NewWindow(in.Now, in.WindowDays, slot)
	clock := in.Clock
	if clock == nil {
		clock = time.Now
	}
	minSplit, maxSplit := in.MinSplitMinutes, in.MaxSplitMinutes
	if minSplit <= 0 {
		minSplit = 30
	}
	if maxSplit <= 0 {
		maxSplit = 120
	}
	if maxSplit < minSplit {
		maxSplit = minSplit
	}
	return &RunContext{
		WorkspaceID: in.WorkspaceID,
		Window:      w,
		Avail:       NewAvailability(w, in.Hours),
		minSplit:    minSplit,
		maxSplit:    maxSplit,
		state:       StateIdle,
		traceOn:     in.Trace,
		clock:       clock,
		satisfied:   make(map[string]bool),
		taskDone:    make(map[string]int),
		habitByID:   make(map[string]*HabitPlacement),
	}
}

func (rc *RunContext) enter(s State) {
	rc.state = s
}

func (rc *RunContext) trace(t StepType, action, desc string, ev *Event) {
	if !rc.traceOn {
		return
	}
	var cp *Event
	if ev != nil {
		e := *ev
		e.Preview = true
		cp = &e
	}
	rc.steps = append(rc.steps, Step{
		Step:        len(rc.steps) + 1,
		Type:        t,
		Action:      action,
		Description: desc,
		Event:       cp,
		Timestamp:   rc.clock(),
	})
}

// newID derives a stable event id from the run inputs so identical inputs
// produce identical output.
func (rc *RunContext) newID(src SourceType, key string) string {
	rc.idSeq++
	name := fmt.Sprintf("calyard/%s/%d/%s/%s/%d", rc.WorkspaceID, rc.Window.Now.UnixNano(), src, key, rc.idSeq)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

func occurrenceKey(habitID, date string) string { return habitID + "|" + date }

func (rc *RunContext) addHabit(hp *HabitPlacement) {
	rc.habits = append(rc.habits, hp)
	rc.habitByID[hp.Event.ID] = hp
	rc.order = append(rc.order, hp.Event.ID)
	rc.satisfied[occurrenceKey(hp.Habit.ID, hp.Event.OccurrenceDate)] = true
}

func (rc *RunContext) addTask(tp *TaskPlacement) {
	rc.tasks = append(rc.tasks, tp)
	rc.order = append(rc.order, tp.Event.ID)
	rc.taskDone[tp.Task.ID] += tp.Event.ScheduledMinutes
}
