package domain

import (
	"fmt"
	"time"
)

// Settings is the singleton dispatch configuration record.
//
// SenderEmail is owned by deployment configuration and is read-only through
// the settings API.
type Settings struct {
	ID                   string
	DailyEmailLimit      int
	EmailIntervalMinutes int
	SenderName           string
	SenderEmail          string
	UpdatedAt            time.Time
}

func (s *Settings) Validate() error {
	if s.DailyEmailLimit < 1 {
		return fmt.Errorf("%w: daily email limit must be positive", ErrValidation)
	}
	if s.EmailIntervalMinutes < 1 {
		return fmt.Errorf("%w: email interval must be at least one minute", ErrValidation)
	}
	return nil
}

// TickInterval is the minimum wall-clock spacing between dispatch ticks.
func (s *Settings) TickInterval() time.Duration {
	return time.Duration(s.EmailIntervalMinutes) * time.Minute
}
