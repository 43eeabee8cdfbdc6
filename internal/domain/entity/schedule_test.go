package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextRunAfterDaily(t *testing.T) {
	s := &ZReportSchedule{TimeOfDay: "22:00", Frequency: ScheduleFrequencyDaily}

	ref := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	next, err := s.NextRunAfter(ref)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 29, 22, 0, 0, 0, time.UTC), next)

	// Past today's trigger time: roll to tomorrow.
	ref = time.Date(2026, 8, 29, 23, 0, 0, 0, time.UTC)
	next, err = s.NextRunAfter(ref)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 30, 22, 0, 0, 0, time.UTC), next)

	// Exactly at the trigger time counts as fired; next is tomorrow.
	ref = time.Date(2026, 8, 29, 22, 0, 0, 0, time.UTC)
	next, err = s.NextRunAfter(ref)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 30, 22, 0, 0, 0, time.UTC), next)
}

func TestNextRunAfterWeekly(t *testing.T) {
	s := &ZReportSchedule{
		TimeOfDay: "06:30",
		Frequency: ScheduleFrequencyWeekly,
		Weekday:   time.Monday,
	}

	// 2026-08-29 is a Saturday.
	ref := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	next, err := s.NextRunAfter(ref)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 31, 6, 30, 0, 0, time.UTC), next)
	assert.Equal(t, time.Monday, next.Weekday())
}

func TestNextRunAfterRejectsBadTime(t *testing.T) {
	s := &ZReportSchedule{TimeOfDay: "25:00", Frequency: ScheduleFrequencyDaily}
	_, err := s.NextRunAfter(time.Now())
	assert.Error(t, err)

	s.TimeOfDay = "not-a-time"
	_, err = s.NextRunAfter(time.Now())
	assert.Error(t, err)
}

func TestIsDue(t *testing.T) {
	now := time.Date(2026, 8, 29, 22, 5, 0, 0, time.UTC)
	lastWeek := time.Date(2026, 8, 22, 22, 0, 0, 0, time.UTC)

	s := &ZReportSchedule{
		TimeOfDay: "22:00",
		Frequency: ScheduleFrequencyDaily,
		Enabled:   true,
		CreatedAt: lastWeek,
	}
	assert.True(t, s.IsDue(now))

	// Already fired in this window.
	executed := time.Date(2026, 8, 29, 22, 1, 0, 0, time.UTC)
	s.LastExecutedAt = &executed
	assert.False(t, s.IsDue(now))

	// Fired yesterday: due again today.
	yesterday := time.Date(2026, 8, 28, 22, 1, 0, 0, time.UTC)
	s.LastExecutedAt = &yesterday
	assert.True(t, s.IsDue(now))

	s.Enabled = false
	assert.False(t, s.IsDue(now))
}
