package busdate

import (
	"testing"
	"time"
)

func TestAtBeforeCutoff(t *testing.T) {
	// 05:59 on March 2nd still belongs to March 1st's event night
	now := time.Date(2025, 3, 2, 5, 59, 0, 0, time.Local)

	got := At(now, DefaultCutoffHour)
	if got != "2025-03-01" {
		t.Errorf("Expected business date 2025-03-01, got %s", got)
	}
}

func TestAtAtCutoff(t *testing.T) {
	// 06:00 sharp rolls over to the new date
	now := time.Date(2025, 3, 2, 6, 0, 0, 0, time.Local)

	got := At(now, DefaultCutoffHour)
	if got != "2025-03-02" {
		t.Errorf("Expected business date 2025-03-02, got %s", got)
	}
}

func TestAtAfternoon(t *testing.T) {
	now := time.Date(2025, 3, 2, 15, 30, 0, 0, time.Local)

	got := At(now, DefaultCutoffHour)
	if got != "2025-03-02" {
		t.Errorf("Expected business date 2025-03-02, got %s", got)
	}
}

func TestAtCrossesMonthBoundary(t *testing.T) {
	// 01:00 on April 1st is still March 31st's night
	now := time.Date(2025, 4, 1, 1, 0, 0, 0, time.Local)

	got := At(now, DefaultCutoffHour)
	if got != "2025-03-31" {
		t.Errorf("Expected business date 2025-03-31, got %s", got)
	}
}

func TestAtCustomCutoff(t *testing.T) {
	now := time.Date(2025, 3, 2, 7, 30, 0, 0, time.Local)

	if got := At(now, 8); got != "2025-03-01" {
		t.Errorf("Expected business date 2025-03-01 with cutoff 8, got %s", got)
	}
	if got := At(now, 7); got != "2025-03-02" {
		t.Errorf("Expected business date 2025-03-02 with cutoff 7, got %s", got)
	}
}

func TestAtMidnightCutoffNeverShifts(t *testing.T) {
	now := time.Date(2025, 3, 2, 0, 0, 0, 0, time.Local)

	if got := At(now, 0); got != "2025-03-02" {
		t.Errorf("Expected business date 2025-03-02 with cutoff 0, got %s", got)
	}
}
