package api

import (
	"time"

	"github.com/zulandar/calyard/internal/schedule"
	"github.com/zulandar/calyard/internal/store"
)

type habitsSection struct {
	Events   []schedule.Event `json:"events"`
	Warnings []string         `json:"warnings"`
}

type tasksSection struct {
	Events       []schedule.Event      `json:"events"`
	BumpedHabits []schedule.BumpRecord `json:"bumpedHabits"`
	Warnings     []string              `json:"warnings"`
}

type runResponse struct {
	Success           bool             `json:"success"`
	Status            schedule.Status  `json:"status"`
	Message           string           `json:"message"`
	Summary           schedule.Summary `json:"summary"`
	Habits            habitsSection    `json:"habits"`
	Tasks             tasksSection     `json:"tasks"`
	RescheduledHabits []schedule.Event `json:"rescheduledHabits"`
	Warnings          []string         `json:"warnings"`
}

type previewResponse struct {
	runResponse
	Events []schedule.Event `json:"events"`
	Steps  []schedule.Step  `json:"steps"`
}

type statusResponse struct {
	LastScheduledAt  *time.Time       `json:"lastScheduledAt"`
	LastStatus       *string          `json:"lastStatus"`
	LastMessage      *string          `json:"lastMessage"`
	Statistics       schedule.Summary `json:"statistics"`
	SchedulableItems schedulableItems `json:"schedulableItems"`
}

type schedulableItems struct {
	ActiveHabits      int64 `json:"activeHabits"`
	AutoScheduleTasks int64 `json:"autoScheduleTasks"`
}

func newRunResponse(res *schedule.Result) runResponse {
	return runResponse{
		Success: true,
		Status:  res.Status,
		Message: res.Message,
		Summary: res.Summary,
		Habits: habitsSection{
			Events:   nonNil(res.HabitEvents),
			Warnings: nonNil(res.HabitWarnings),
		},
		Tasks: tasksSection{
			Events:       nonNil(res.TaskEvents),
			BumpedHabits: nonNil(res.Bumps),
			Warnings:     nonNil(res.TaskWarnings),
		},
		RescheduledHabits: nonNil(res.Rescheduled),
		Warnings:          nonNil(res.Warnings),
	}
}

func newPreviewResponse(res *schedule.Result) previewResponse {
	return previewResponse{
		runResponse: newRunResponse(res),
		Events:      nonNil(res.Events),
		Steps:       nonNil(res.Steps),
	}
}

func newStatusResponse(st *store.Status) statusResponse {
	resp := statusResponse{
		LastScheduledAt: st.LastScheduledAt,
		Statistics:      st.Statistics,
		SchedulableItems: schedulableItems{
			ActiveHabits:      st.ActiveHabits,
			AutoScheduleTasks: st.AutoScheduleTasks,
		},
	}
	if st.LastScheduledAt != nil {
		resp.LastStatus = &st.LastStatus
		resp.LastMessage = &st.LastMessage
	}
	return resp
}

// nonNil keeps empty lists as [] rather than null in JSON.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
