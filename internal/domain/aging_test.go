package domain

import (
	"testing"
	"time"
)

func timePtr(t time.Time) *time.Time { return &t }

func int64Ptr(v int64) *int64 { return &v }

func TestAgingMinutesPriority(t *testing.T) {
	base := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	start := base
	end := base.Add(26 * time.Hour)
	updated := base.Add(30 * time.Hour)
	now := base.Add(48 * time.Hour)

	cases := []struct {
		name    string
		status  TicketStatus
		start   *time.Time
		end     *time.Time
		stored  *int64
		want    int64
		wantOK  bool
	}{
		{"stored value wins", TicketStatusDone, &start, &end, int64Ptr(500), 500, true},
		{"stored zero ignored", TicketStatusDone, &start, &end, int64Ptr(0), 26 * 60, true},
		{"terminal uses start to end", TicketStatusClosed, &start, &end, nil, 26 * 60, true},
		{"terminal missing end falls back to updated_at", TicketStatusRejected, &start, nil, nil, 30 * 60, true},
		{"in process is live against now", TicketStatusOnProcess, &start, nil, nil, 48 * 60, true},
		{"open has no aging", TicketStatusOpen, nil, nil, nil, 0, false},
		{"terminal without start has no aging", TicketStatusClosed, nil, nil, nil, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := AgingMinutes(tc.status, tc.start, tc.end, tc.stored, updated, now)
			if ok != tc.wantOK || got != tc.want {
				t.Fatalf("AgingMinutes() = (%d, %v), want (%d, %v)", got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestFormatAging(t *testing.T) {
	cases := []struct {
		minutes int64
		want    string
	}{
		{0, "0m"},
		{-5, "0m"},
		{59, "59m"},
		{60, "1h"},
		{61, "1h 1m"},
		{1440, "1d"},
		{1500, "1d 1h"},
		{1501, "1d 1h 1m"},
		{2890, "2d 10m"},
	}
	for _, tc := range cases {
		if got := FormatAging(tc.minutes); got != tc.want {
			t.Errorf("FormatAging(%d) = %q, want %q", tc.minutes, got, tc.want)
		}
	}
}

func TestAgingDays(t *testing.T) {
	if got := AgingDays(1439); got != 0 {
		t.Errorf("AgingDays(1439) = %d, want 0", got)
	}
	if got := AgingDays(1440); got != 1 {
		t.Errorf("AgingDays(1440) = %d, want 1", got)
	}
	if got := AgingDays(-10); got != 0 {
		t.Errorf("AgingDays(-10) = %d, want 0", got)
	}
}

func TestMinutesBetween(t *testing.T) {
	start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	if got := MinutesBetween(start, start.Add(90*time.Minute+30*time.Second)); got != 90 {
		t.Errorf("MinutesBetween() = %d, want 90", got)
	}
}
