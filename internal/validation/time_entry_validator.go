package validation

import (
	"tracksync/internal/domain"
	"tracksync/internal/errors"
)

// TimeEntryValidator checks Timer time entries before they are converted
// into Tracker entries. A failure here classifies the entry as invalid;
// it never aborts a reconciliation pass.
type TimeEntryValidator struct{}

// NewTimeEntryValidator creates a new TimeEntryValidator
func NewTimeEntryValidator() *TimeEntryValidator {
	return &TimeEntryValidator{}
}

// Validate checks that an entry carries everything a Tracker time entry
// needs: a task reference, a start time, and a convertible worked period.
func (v *TimeEntryValidator) Validate(entry domain.TimerTimeEntry) error {
	if entry.TaskID == "" {
		return errors.NewValidationError("time entry has no task id", nil).
			WithContext("entry_id", entry.ID)
	}
	if entry.Interval.Start.IsZero() {
		return errors.NewValidationError("time entry has no start time", nil).
			WithContext("entry_id", entry.ID)
	}
	if _, err := entry.Hours(); err != nil {
		return errors.NewValidationError("time entry has no usable duration", err).
			WithContext("entry_id", entry.ID)
	}
	return nil
}
