package models

import "fmt"

// Optional signal families.
const (
	SignalNews     = "news"
	SignalMonetary = "monetary"
	SignalCurrency = "currency"
)

// DataIntegrityError reports a malformed input series. It is fatal for the
// evaluation of the index that owns the series.
type DataIntegrityError struct {
	Series string
	Index  int // offending position, -1 when not tied to one element
	Reason string
}

func (e *DataIntegrityError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("data integrity: %s: %s", e.Series, e.Reason)
	}
	return fmt.Sprintf("data integrity: %s[%d]: %s", e.Series, e.Index, e.Reason)
}

// InsufficientHistoryError reports that one measure was skipped because the
// series is too short. It is never fatal.
type InsufficientHistoryError struct {
	Measure string `json:"measure"`
	Need    int    `json:"need"`
	Have    int    `json:"have"`
}

func (e InsufficientHistoryError) Error() string {
	return fmt.Sprintf("insufficient history for %s: need %d observations, have %d", e.Measure, e.Need, e.Have)
}

// MissingOptionalSignalError reports that an optional signal family (news,
// monetary, currency) could not be obtained and was defaulted to neutral.
type MissingOptionalSignalError struct {
	Signal string
	Err    error
}

func (e MissingOptionalSignalError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s signal unavailable", e.Signal)
	}
	return fmt.Sprintf("%s signal unavailable: %v", e.Signal, e.Err)
}

func (e MissingOptionalSignalError) Unwrap() error { return e.Err }
