package service

import (
	"time"

	"github.com/limbo/studytrack/pkg/entity"
)

// LocalClock reports the current time in Loc, which defines calendar days.
type LocalClock struct {
	Loc *time.Location
}

func (c LocalClock) Now() time.Time {
	if c.Loc == nil {
		return time.Now()
	}
	return time.Now().In(c.Loc)
}

// examDateFor picks the user's own exam date over the platform default.
func examDateFor(user *entity.User, def time.Time) time.Time {
	if user != nil && user.ExamDate != nil {
		return *user.ExamDate
	}
	return def
}
