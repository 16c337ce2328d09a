package service

import (
	errorvalues "github.com/limbo/studytrack/internal/error_values"
	"github.com/limbo/studytrack/pkg/entity"
)

// ValidateSequence checks that a check-in of type next may follow the
// check-ins already made today: one start, then any progress, then one end.
func ValidateSequence(today []entity.CheckIn, next entity.CheckInType) error {
	var started, ended bool
	for _, c := range today {
		switch c.Type {
		case entity.CheckInStart:
			started = true
		case entity.CheckInEnd:
			ended = true
		}
	}
	switch next {
	case entity.CheckInStart:
		if started {
			return errorvalues.ErrAlreadyStarted
		}
	case entity.CheckInProgress:
		if !started {
			return errorvalues.ErrStartRequired
		}
	case entity.CheckInEnd:
		if !started {
			return errorvalues.ErrStartRequired
		}
		if ended {
			return errorvalues.ErrAlreadyEnded
		}
	default:
		return errorvalues.ErrInvalidCheckIn
	}
	return nil
}
