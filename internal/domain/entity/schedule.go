package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Schedule frequencies
const (
	ScheduleFrequencyDaily  = "daily"
	ScheduleFrequencyWeekly = "weekly"
)

// ZReportSchedule defines an autonomous closing trigger for a terminal.
// Configuration is owned elsewhere; the trigger loop consumes it read-only
// apart from the execution bookkeeping columns.
type ZReportSchedule struct {
	ID             uuid.UUID     `gorm:"type:uuid;primary_key" json:"id"`
	StoreID        uuid.UUID     `gorm:"type:uuid;not null;index" json:"store_id"`
	TerminalID     string        `gorm:"size:32;not null" json:"terminal_id"`
	TimeOfDay      string        `gorm:"size:5;not null" json:"time_of_day"` // "HH:MM", store-local
	Frequency      string        `gorm:"size:16;not null;default:daily" json:"frequency"`
	Weekday        time.Weekday  `gorm:"default:0" json:"weekday"` // weekly only
	Enabled        bool          `gorm:"default:true;index" json:"enabled"`
	WarningLead    time.Duration `gorm:"default:0" json:"warning_lead"`
	LastExecutedAt *time.Time    `json:"last_executed_at,omitempty"`
	LastOutcome    string        `gorm:"size:32" json:"last_outcome,omitempty"`
	LastSkipReason string        `gorm:"type:text" json:"last_skip_reason,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new schedule
func (s *ZReportSchedule) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the ZReportSchedule model
func (ZReportSchedule) TableName() string {
	return "z_report_schedules"
}

// NextRunAfter computes the first trigger time strictly after the given
// reference. The reference is usually LastExecutedAt, or the loop start time
// for schedules that have never fired.
func (s *ZReportSchedule) NextRunAfter(ref time.Time) (time.Time, error) {
	var hh, mm int
	if _, err := fmt.Sscanf(s.TimeOfDay, "%d:%d", &hh, &mm); err != nil {
		return time.Time{}, fmt.Errorf("schedule %s: bad time_of_day %q: %w", s.ID, s.TimeOfDay, err)
	}
	if hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return time.Time{}, fmt.Errorf("schedule %s: time_of_day %q out of range", s.ID, s.TimeOfDay)
	}

	next := time.Date(ref.Year(), ref.Month(), ref.Day(), hh, mm, 0, 0, ref.Location())
	if !next.After(ref) {
		next = next.AddDate(0, 0, 1)
	}
	if s.Frequency == ScheduleFrequencyWeekly {
		for next.Weekday() != s.Weekday {
			next = next.AddDate(0, 0, 1)
		}
	}
	return next, nil
}

// IsDue reports whether the schedule should fire at the given instant.
func (s *ZReportSchedule) IsDue(now time.Time) bool {
	if !s.Enabled {
		return false
	}
	ref := s.CreatedAt
	if s.LastExecutedAt != nil {
		ref = *s.LastExecutedAt
	}
	next, err := s.NextRunAfter(ref)
	if err != nil {
		return false
	}
	return !next.After(now)
}
