package schedule

import (
	"testing"
	"time"
)

func newTestAvailability(startHour, endHour int) *Availability {
	w := NewWindow(mon0600, 7, 15*time.Minute)
	return NewAvailability(w, hoursEveryDay(startHour, endHour))
}

func TestAvailability_NextFreeSlot_Empty(t *testing.T) {
	a := newTestAvailability(9, 17)
	slot, ok := a.NextFreeSlot(mon0600, time.Hour, Bounds{})
	if !ok {
		t.Fatal("expected a slot")
	}
	if !slot.Start.Equal(at(2, 9, 0)) || !slot.End.Equal(at(2, 10, 0)) {
		t.Errorf("slot = %v-%v, want Mon 09:00-10:00", slot.Start, slot.End)
	}
}

func TestAvailability_SkipsOccupied(t *testing.T) {
	a := newTestAvailability(9, 17)
	a.Occupy(Occupant{Interval: Interval{Start: at(2, 9, 0), End: at(2, 10, 7)}, Tag: "meeting"})

	slot, ok := a.NextFreeSlot(mon0600, 30*time.Minute, Bounds{})
	if !ok {
		t.Fatal("expected a slot")
	}
	if !slot.Start.Equal(at(2, 10, 15)) {
		t.Errorf("slot.Start = %v, want 10:15 (aligned after 10:07)", slot.Start)
	}
	if a.IsFree(Interval{Start: at(2, 9, 30), End: at(2, 9, 45)}) {
		t.Error("IsFree over occupied interval = true")
	}
	if !a.IsFree(Interval{Start: at(2, 11, 0), End: at(2, 12, 0)}) {
		t.Error("IsFree over empty interval = false")
	}
}

func TestAvailability_GapTooSmallMovesOn(t *testing.T) {
	a := newTestAvailability(9, 17)
	a.Occupy(Occupant{Interval: Interval{Start: at(2, 9, 30), End: at(2, 17, 0)}, Tag: "offsite"})

	slot, ok := a.NextFreeSlot(mon0600, time.Hour, Bounds{})
	if !ok {
		t.Fatal("expected a slot")
	}
	if !slot.Start.Equal(at(3, 9, 0)) {
		t.Errorf("slot.Start = %v, want Tue 09:00", slot.Start)
	}
}

func TestAvailability_NotAfterBound(t *testing.T) {
	a := newTestAvailability(9, 10)
	if _, ok := a.NextFreeSlot(mon0600, time.Hour, Bounds{NotAfter: at(2, 9, 30)}); ok {
		t.Error("slot found past the bound")
	}
	slot, ok := a.NextFreeSlot(mon0600, 30*time.Minute, Bounds{NotAfter: at(2, 9, 30)})
	if !ok || !slot.End.Equal(at(2, 9, 30)) {
		t.Errorf("slot = %v, %v; want 09:00-09:30", slot, ok)
	}
}

func TestAvailability_WindowEnd(t *testing.T) {
	a := newTestAvailability(9, 10)
	for d := 2; d <= 8; d++ {
		a.Occupy(Occupant{Interval: Interval{Start: at(d, 9, 0), End: at(d, 10, 0)}, Tag: "busy-" + string(rune('a'+d))})
	}
	if _, ok := a.NextFreeSlot(mon0600, 15*time.Minute, Bounds{}); ok {
		t.Error("slot found in a fully booked window")
	}
}

func TestAvailability_NeverBeforeWindowStart(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 5, 0, 0, time.UTC)
	a := NewAvailability(NewWindow(now, 7, 15*time.Minute), hoursEveryDay(9, 17))
	slot, ok := a.NextFreeSlot(at(2, 0, 0), 30*time.Minute, Bounds{})
	if !ok || !slot.Start.Equal(at(2, 9, 15)) {
		t.Errorf("slot = %v, %v; want 09:15", slot.Start, ok)
	}
}

func TestAvailability_VacateAndSpanningOccupant(t *testing.T) {
	a := newTestAvailability(0, 24)
	overnight := Occupant{Interval: Interval{Start: at(2, 22, 0), End: at(3, 2, 0)}, Tag: "flight"}
	a.Occupy(overnight)

	if a.IsFree(Interval{Start: at(3, 1, 0), End: at(3, 1, 30)}) {
		t.Error("second day of spanning occupant reported free")
	}
	if got := a.Occupants(at(2, 0, 0), at(4, 0, 0)); len(got) != 1 {
		t.Errorf("Occupants = %d entries, want 1 (deduplicated)", len(got))
	}

	o, ok := a.Vacate("flight")
	if !ok || o.Tag != "flight" {
		t.Fatalf("Vacate = %v, %v", o, ok)
	}
	if !a.IsFree(overnight.Interval) {
		t.Error("interval still busy after Vacate")
	}
	if _, ok := a.Vacate("flight"); ok {
		t.Error("second Vacate succeeded")
	}
}

func TestAvailability_OccupyIgnoresDuplicatesAndEmpty(t *testing.T) {
	a := newTestAvailability(9, 17)
	iv := Interval{Start: at(2, 9, 0), End: at(2, 10, 0)}
	a.Occupy(Occupant{Interval: iv, Tag: "x"})
	a.Occupy(Occupant{Interval: iv, Tag: "x"})
	a.Occupy(Occupant{Interval: Interval{Start: at(2, 11, 0), End: at(2, 11, 0)}, Tag: "empty"})

	if got := a.Occupants(at(2, 0, 0), at(3, 0, 0)); len(got) != 1 {
		t.Errorf("Occupants = %d, want 1", len(got))
	}
	if _, ok := a.Lookup("empty"); ok {
		t.Error("empty occupant was recorded")
	}
}

func TestAvailability_HourKinds(t *testing.T) {
	h := hoursEveryDay(18, 22)
	var work WeekHours
	work[time.Monday] = []Block{{Start: 9 * 60, End: 17 * 60}}
	h[HoursWork] = work
	a := NewAvailability(NewWindow(mon0600, 7, 15*time.Minute), h)

	slot, _ := a.NextFreeSlot(mon0600, time.Hour, Bounds{Hours: HoursWork})
	if !slot.Start.Equal(at(2, 9, 0)) {
		t.Errorf("work slot = %v, want Mon 09:00", slot.Start)
	}
	slot, _ = a.NextFreeSlot(mon0600, time.Hour, Bounds{Hours: HoursPersonal})
	if !slot.Start.Equal(at(2, 18, 0)) {
		t.Errorf("personal slot = %v, want Mon 18:00", slot.Start)
	}
	slot, ok := a.NextFreeSlot(at(2, 17, 0), time.Hour, Bounds{Hours: HoursWork})
	if ok {
		t.Errorf("work slot after Monday = %v, want none", slot.Start)
	}
}
