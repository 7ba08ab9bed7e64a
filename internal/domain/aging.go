package domain

import (
	"fmt"
	"time"
)

const minutesPerDay = 24 * 60

// MinutesBetween returns whole elapsed minutes from start to end.
func MinutesBetween(start, end time.Time) int64 {
	return int64(end.Sub(start) / time.Minute)
}

// AgingMinutes derives the elapsed processing time of a ticket in minutes.
// Priority order, first match wins:
//  1. a stored duration > 0 is authoritative;
//  2. terminal tickets with a started clock use aging_start -> aging_end,
//     falling back to the last modification time when the end was never stamped;
//  3. in-process tickets report a live value against now;
//  4. otherwise the ticket never entered review and has no aging.
func AgingMinutes(status TicketStatus, start, end *time.Time, stored *int64, updatedAt, now time.Time) (int64, bool) {
	if stored != nil && *stored > 0 {
		return *stored, true
	}
	if status.Terminal() && start != nil {
		stop := updatedAt
		if end != nil {
			stop = *end
		}
		return MinutesBetween(*start, stop), true
	}
	if status == TicketStatusOnProcess && start != nil {
		return MinutesBetween(*start, now), true
	}
	return 0, false
}

// FormatAging renders minutes as "{days}d {hours}h {minutes}m", omitting
// zero-valued higher units. Minutes always show when everything else is zero.
func FormatAging(totalMinutes int64) string {
	if totalMinutes < 0 {
		totalMinutes = 0
	}
	days := totalMinutes / minutesPerDay
	hours := (totalMinutes % minutesPerDay) / 60
	minutes := totalMinutes % 60

	out := ""
	if days > 0 {
		out += fmt.Sprintf("%dd ", days)
	}
	if hours > 0 {
		out += fmt.Sprintf("%dh ", hours)
	}
	if minutes > 0 || out == "" {
		out += fmt.Sprintf("%dm ", minutes)
	}
	return out[:len(out)-1]
}

// AgingDays is the coarse list-view display derived from the same minute count.
func AgingDays(totalMinutes int64) int64 {
	if totalMinutes < 0 {
		return 0
	}
	return totalMinutes / minutesPerDay
}
