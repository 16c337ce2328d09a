// Package planner turns recent study history into suggested tasks.
package planner

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/limbo/studytrack/pkg/entity"
)

const (
	OtherSubject    = "other"
	defaultDuration = 60
	defaultMood     = 5
)

// checkInContent is the structured form of a check-in's content.
type checkInContent struct {
	Subject  *string  `json:"subject"`
	Duration *float64 `json:"duration"`
	Mood     *float64 `json:"mood"`
}

type subjectAcc struct {
	subject       string
	totalDuration float64
	effectiveness float64
	count         int
}

// AnalyzePatterns aggregates check-ins created at or after since into one
// pattern per subject. Check-ins whose content is not a JSON object are skipped.
func AnalyzePatterns(checkIns []entity.CheckIn, since time.Time) []entity.StudyPattern {
	sorted := make([]entity.CheckIn, len(checkIns))
	copy(sorted, checkIns)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	accs := make([]*subjectAcc, 0)
	bySubject := make(map[string]*subjectAcc)
	for _, c := range sorted {
		if c.CreatedAt.Before(since) {
			continue
		}
		content, ok := parseContent(c.Content)
		if !ok {
			continue
		}
		subject := OtherSubject
		if content.Subject != nil && strings.TrimSpace(*content.Subject) != "" {
			subject = strings.ToLower(strings.TrimSpace(*content.Subject))
		}
		duration := float64(defaultDuration)
		if content.Duration != nil && *content.Duration > 0 {
			duration = *content.Duration
		}
		// 0 counts as unset; the scale is 1-10
		mood := float64(defaultMood)
		if content.Mood != nil && *content.Mood != 0 {
			mood = math.Min(10, math.Max(1, *content.Mood))
		}

		acc, ok := bySubject[subject]
		if !ok {
			acc = &subjectAcc{subject: subject}
			bySubject[subject] = acc
			accs = append(accs, acc)
		}
		acc.totalDuration += duration
		acc.effectiveness += mood / 10
		acc.count++
	}

	patterns := make([]entity.StudyPattern, 0, len(accs))
	for _, acc := range accs {
		eff := acc.effectiveness / float64(acc.count)
		patterns = append(patterns, entity.StudyPattern{
			Subject:       acc.subject,
			Duration:      int(math.Round(acc.totalDuration / float64(acc.count))),
			Effectiveness: eff,
			Difficulty:    difficultyFor(eff),
		})
	}
	return patterns
}

func parseContent(raw string) (checkInContent, bool) {
	var content checkInContent
	if !strings.HasPrefix(strings.TrimSpace(raw), "{") {
		return content, false
	}
	if err := sonic.UnmarshalString(raw, &content); err != nil {
		return content, false
	}
	return content, true
}

func difficultyFor(effectiveness float64) string {
	switch {
	case effectiveness > 0.7:
		return entity.DifficultyHard
	case effectiveness > 0.5:
		return entity.DifficultyMedium
	}
	return entity.DifficultyEasy
}
