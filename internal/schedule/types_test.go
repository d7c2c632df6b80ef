package schedule

import (
	"encoding/json"
	"testing"
)

func TestSourceType_Text(t *testing.T) {
	for _, s := range []SourceType{SourceHabit, SourceTask} {
		b, err := s.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%d): %v", s, err)
		}
		var back SourceType
		if err := back.UnmarshalText(b); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", b, err)
		}
		if back != s {
			t.Errorf("round trip %v -> %v", s, back)
		}
	}
	if _, err := SourceType(0).MarshalText(); err == nil {
		t.Error("MarshalText(0) should fail")
	}
	if _, err := ParseSourceType("break"); err == nil {
		t.Error(`ParseSourceType("break") should fail`)
	}
}

func TestEvent_JSONOmitsManualSource(t *testing.T) {
	b, err := json.Marshal(Event{ID: "e1", Title: "Lunch", Start: at(2, 12, 0), End: at(2, 13, 0)})
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatal(err)
	}
	if _, ok := m["source_type"]; ok {
		t.Errorf("manual event JSON includes source_type: %s", b)
	}

	b, err = json.Marshal(Event{ID: "e2", Source: SourceTask})
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatal(err)
	}
	if m["source_type"] != "task" {
		t.Errorf("source_type = %v, want task", m["source_type"])
	}
}

func TestEvent_MinutesAndOngoing(t *testing.T) {
	e := Event{Start: at(2, 9, 0), End: at(2, 10, 30)}
	if e.Minutes() != 90 {
		t.Errorf("Minutes() = %d, want 90", e.Minutes())
	}
	e.ScheduledMinutes = 45
	if e.Minutes() != 45 {
		t.Errorf("Minutes() = %d, want scheduled 45", e.Minutes())
	}
	if !e.Ongoing(at(2, 9, 30)) {
		t.Error("expected ongoing at 09:30")
	}
	if e.Ongoing(at(2, 10, 30)) {
		t.Error("not ongoing at its end")
	}
}
