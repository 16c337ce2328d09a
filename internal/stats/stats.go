// Package stats derives streaks and per-day aggregates from check-in history.
package stats

import (
	"sort"
	"time"

	"github.com/limbo/studytrack/pkg/calendar"
	"github.com/limbo/studytrack/pkg/entity"
)

type day struct {
	start time.Time
	stats *entity.DayStats
}

// Compute builds statistics over the given check-ins. Days are calendar days
// in now's location and TotalCheckIns counts distinct days. A day counts towards a streak if it has at least one
// check-in; the current streak is 0 when today has none.
func Compute(checkIns []entity.CheckIn, now time.Time) entity.CheckInStats {
	loc := now.Location()
	byKey := make(map[string]*day)
	var total float64
	for _, c := range checkIns {
		local := c.CreatedAt.In(loc)
		key := calendar.DayKey(local)
		d, ok := byKey[key]
		if !ok {
			d = &day{
				start: calendar.StartOfDay(local),
				stats: &entity.DayStats{Date: key, CheckIns: make([]entity.CheckIn, 0)},
			}
			byKey[key] = d
		}
		d.stats.CheckIns = append(d.stats.CheckIns, c)
		switch c.Type {
		case entity.CheckInStart:
			d.stats.HasStart = true
		case entity.CheckInProgress:
			d.stats.HasProgress = true
		case entity.CheckInEnd:
			d.stats.HasEnd = true
		}
		if c.StudyHours != nil {
			d.stats.TotalStudyHours += *c.StudyHours
			total += *c.StudyHours
		}
	}

	days := make([]*day, 0, len(byKey))
	for _, d := range byKey {
		d.stats.Complete = d.stats.HasStart && d.stats.HasEnd
		sort.SliceStable(d.stats.CheckIns, func(i, j int) bool {
			return d.stats.CheckIns[i].CreatedAt.Before(d.stats.CheckIns[j].CreatedAt)
		})
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].start.After(days[j].start) })

	res := entity.CheckInStats{
		TotalCheckIns:   len(days),
		TotalStudyHours: total,
		DailyStats:      make([]entity.DayStats, 0, len(days)),
	}
	for _, d := range days {
		res.DailyStats = append(res.DailyStats, *d.stats)
	}
	res.CurrentStreak = currentStreak(byKey, now)
	res.LongestStreak = longestStreak(days)
	return res
}

func currentStreak(byKey map[string]*day, now time.Time) int {
	streak := 0
	cursor := calendar.StartOfDay(now)
	for {
		if _, ok := byKey[calendar.DayKey(cursor)]; !ok {
			return streak
		}
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
}

// days must be sorted newest first.
func longestStreak(days []*day) int {
	longest, run := 0, 0
	for i, d := range days {
		if i > 0 && calendar.DayKey(d.start.AddDate(0, 0, 1)) == calendar.DayKey(days[i-1].start) {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
	}
	return longest
}

// Status summarizes today's check-ins for the sequencing view.
func Status(today []entity.CheckIn, now time.Time) entity.DailyStatus {
	st := entity.DailyStatus{
		Date:  calendar.DayKey(now),
		State: entity.DayStateNone,
	}
	for i := range today {
		c := today[i]
		switch c.Type {
		case entity.CheckInStart:
			st.Start = true
		case entity.CheckInProgress:
			st.Progress = true
		case entity.CheckInEnd:
			st.End = true
		}
		if st.LastCheckIn == nil || !c.CreatedAt.Before(st.LastCheckIn.CreatedAt) {
			st.LastCheckIn = &c
		}
	}
	switch {
	case st.Start && st.End:
		st.State = entity.DayStateComplete
	case len(today) > 0:
		st.State = entity.DayStatePartial
	}
	return st
}
