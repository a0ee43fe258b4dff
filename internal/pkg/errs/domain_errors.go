package errs

import "errors"

// Sentinel errors shared by the usecase layers. Grouped by the engine's
// taxonomy: validation, consistency, sync and decode.
var (
	// Validation errors (quota / schedule / party-size rejections).
	// Each carries the human-readable reason surfaced to the caller.
	ErrInsufficientAdvance = errors.New("insufficient advance notice")
	ErrExcessiveAdvance    = errors.New("too far in advance")
	ErrDateDisabled        = errors.New("date disabled")
	ErrOutsideSchedule     = errors.New("outside amenity schedule")
	ErrDailyCapExceeded    = errors.New("daily cap exceeded")
	ErrWeeklyCapExceeded   = errors.New("weekly cap exceeded")
	ErrMonthlyCapExceeded  = errors.New("monthly cap exceeded")
	ErrTimeConflict        = errors.New("time conflict")
	ErrGuestsNotAllowed    = errors.New("guests not allowed")
	ErrPartySizeExceeded   = errors.New("party size exceeded")
	ErrInvalidTransition   = errors.New("invalid status transition")

	// Consistency errors (one half of a dual write failed)
	ErrPartialWrite = errors.New("status change partially applied")

	// Sync errors (change-feed subscriptions)
	ErrSubscriptionDropped = errors.New("subscription dropped")

	// Decode errors (data quality)
	ErrUndecodableTime = errors.New("undecodable time of day")

	// Lookup / operation errors
	ErrReservationNotFound  = errors.New("reservation not found")
	ErrAmenityNotFound      = errors.New("amenity not found")
	ErrStoreOperationFailed = errors.New("store operation failed")
)
