package game

import "errors"

var (
	// ErrTooShort is returned when a submission is not longer than the minimum length.
	ErrTooShort = errors.New("input too short")
	// ErrAlreadyInFlight is returned when a classification is submitted while another is pending.
	ErrAlreadyInFlight = errors.New("classification already in flight")
	// ErrClassificationFailed wraps any classifier failure. It counts as a miss.
	ErrClassificationFailed = errors.New("classification failed")
	// ErrBurstOpen is returned when a burst is started twice.
	ErrBurstOpen = errors.New("burst already open")
	// ErrNoBurst is returned when ending a burst that was never started.
	ErrNoBurst = errors.New("no open burst")
)
