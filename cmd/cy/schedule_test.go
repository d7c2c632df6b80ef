package main

import (
	"strings"
	"testing"

	"github.com/zulandar/calyard/internal/config"
	"github.com/zulandar/calyard/internal/db"
	"github.com/zulandar/calyard/internal/models"
)

const testWS = "0b9f6b8e-3f4c-4d6a-9a59-2f0c1f6f5a01"

// setupWorkspace initializes the database and adds a workspace with one
// daily habit.
func setupWorkspace(t *testing.T) string {
	t.Helper()
	path := writeTestConfig(t, "")
	if out, err := runCmd(t, "db", "init", "--config", path); err != nil {
		t.Fatalf("db init: %v\n%s", err, out)
	}
	if out, err := runCmd(t, "workspace", "add", "--config", path, "--id", testWS, "--name", "Home", "--member", "user-1"); err != nil {
		t.Fatalf("workspace add: %v\n%s", err, out)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		t.Fatal(err)
	}
	habit := models.Habit{
		ID: "h1", WorkspaceID: testWS, Name: "Stretch", Priority: 3, DurationMinutes: 15,
		Frequency: "daily", CalendarHours: "personal", IsActive: true, AutoSchedule: true,
	}
	if err := gormDB.Create(&habit).Error; err != nil {
		t.Fatal(err)
	}
	sqlDB, _ := gormDB.DB()
	sqlDB.Close()
	return path
}

func TestDBInitCmd_SQLite(t *testing.T) {
	out, err := runCmd(t, "db", "init", "--config", writeTestConfig(t, ""))
	if err != nil {
		t.Fatalf("db init: %v", err)
	}
	if !strings.Contains(out, "Migrated 6 tables") {
		t.Errorf("output = %s, want migrated tables", out)
	}
}

func TestWorkspaceAdd_InvalidID(t *testing.T) {
	_, err := runCmd(t, "workspace", "add", "--config", writeTestConfig(t, ""), "--id", "nope", "--name", "x")
	if err == nil || !strings.Contains(err.Error(), "invalid workspace id") {
		t.Errorf("error = %v, want invalid workspace id", err)
	}
}

func TestSchedule_PreviewRunStatus(t *testing.T) {
	path := setupWorkspace(t)

	out, err := runCmd(t, "schedule", "status", "--config", path, "--workspace", testWS)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "never been scheduled") || !strings.Contains(out, "1 active habits") {
		t.Errorf("status output = %s", out)
	}

	out, err = runCmd(t, "schedule", "preview", "--config", path, "--workspace", testWS, "--window", "7")
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if !strings.Contains(out, "Stretch") || !strings.Contains(out, "Steps:") {
		t.Errorf("preview output = %s", out)
	}

	out, err = runCmd(t, "schedule", "status", "--config", path, "--workspace", testWS)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "never been scheduled") {
		t.Errorf("preview recorded a run: %s", out)
	}

	out, err = runCmd(t, "schedule", "run", "--config", path, "--workspace", testWS, "--window", "7")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "Stretch") {
		t.Errorf("run output = %s", out)
	}

	out, err = runCmd(t, "schedule", "run", "--config", path, "--workspace", testWS, "--window", "7")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !strings.Contains(out, "Scheduled 0 habit events") {
		t.Errorf("second run output = %s, want nothing new", out)
	}

	out, err = runCmd(t, "schedule", "status", "--config", path, "--workspace", testWS)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Last run:") {
		t.Errorf("status output = %s", out)
	}
}

func TestSchedule_UnknownWorkspace(t *testing.T) {
	path := setupWorkspace(t)
	_, err := runCmd(t, "schedule", "run", "--config", path, "--workspace", "5d3c8a7e-0000-4000-8000-000000000002")
	if err == nil || !strings.Contains(err.Error(), "workspace not found") {
		t.Errorf("error = %v, want workspace not found", err)
	}
}
