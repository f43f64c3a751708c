package expiry

import (
	"testing"
	"time"
)

var now = time.Date(2026, 2, 5, 9, 30, 0, 0, time.UTC)

func at(d time.Duration) *time.Time {
	t := now.Add(d)
	return &t
}

func TestComputeStatusBoundaries(t *testing.T) {
	tests := []struct {
		name   string
		expiry *time.Time
		want   Status
	}{
		{"absent", nil, StatusNoDate},
		{"one millisecond ago", at(-time.Millisecond), StatusExpired},
		{"two days ago", at(-48 * time.Hour), StatusExpired},
		{"exactly now", at(0), StatusCritical},
		{"in twelve hours", at(12 * time.Hour), StatusCritical},
		{"in one day", at(24 * time.Hour), StatusCritical},
		{"in two days", at(48 * time.Hour), StatusWarning},
		{"in three days", at(72 * time.Hour), StatusWarning},
		{"in five days", at(5 * 24 * time.Hour), StatusCaution},
		{"in seven days", at(7 * 24 * time.Hour), StatusCaution},
		{"in eight days", at(8 * 24 * time.Hour), StatusGood},
		{"in thirty days", at(30 * 24 * time.Hour), StatusGood},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, days := ComputeStatus(tt.expiry, now)
			if got != tt.want {
				t.Errorf("status = %q, want %q", got, tt.want)
			}
			if tt.expiry == nil && days != nil {
				t.Errorf("days = %d, want nil", *days)
			}
			if tt.expiry != nil && days == nil {
				t.Error("days = nil, want a value")
			}
		})
	}
}

func TestDaysUntilRoundsUp(t *testing.T) {
	if got := DaysUntil(now.Add(time.Millisecond), now); got != 1 {
		t.Errorf("DaysUntil(+1ms) = %d, want 1", got)
	}
	if got := DaysUntil(now.Add(36*time.Hour), now); got != 2 {
		t.Errorf("DaysUntil(+36h) = %d, want 2", got)
	}
	if got := DaysUntil(now.Add(-36*time.Hour), now); got != -1 {
		t.Errorf("DaysUntil(-36h) = %d, want -1", got)
	}
}

func TestComputeStatusPastExpiryIsNegative(t *testing.T) {
	for _, d := range []time.Duration{-time.Millisecond, -12 * time.Hour} {
		status, days := ComputeStatus(at(d), now)
		if status != StatusExpired || days == nil || *days != -1 {
			t.Errorf("ComputeStatus(%v) = %q, %v; want expired, -1", d, status, days)
		}
	}
	if _, days := ComputeStatus(at(-36*time.Hour), now); *days != -1 {
		t.Errorf("days(-36h) = %d, want -1", *days)
	}
	if _, days := ComputeStatus(at(-50*time.Hour), now); *days != -2 {
		t.Errorf("days(-50h) = %d, want -2", *days)
	}
}

func TestWithin(t *testing.T) {
	if Within(nil, now, SoonDays) {
		t.Error("undated item should never be within a window")
	}
	if !Within(at(3*24*time.Hour), now, SoonDays) {
		t.Error("expiry exactly at the cutoff should be within")
	}
	if Within(at(3*24*time.Hour+time.Millisecond), now, SoonDays) {
		t.Error("expiry past the cutoff should not be within")
	}
	if !Within(at(-time.Hour), now, SoonDays) {
		t.Error("expired items are within every window")
	}
}

func TestSortUndatedLastAndStable(t *testing.T) {
	type row struct {
		name   string
		expiry *time.Time
	}
	rows := []row{
		{"undated-1", nil},
		{"late", at(5 * time.Hour)},
		{"early", at(time.Hour)},
		{"undated-2", nil},
		{"late-twin", at(5 * time.Hour)},
	}
	Sort(rows, func(r row) *time.Time { return r.expiry })

	want := []string{"early", "late", "late-twin", "undated-1", "undated-2"}
	for i, name := range want {
		if rows[i].name != name {
			t.Errorf("rows[%d] = %q, want %q", i, rows[i].name, name)
		}
	}
}
