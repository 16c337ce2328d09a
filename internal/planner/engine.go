package planner

import (
	"math"
	"sort"
	"time"

	"github.com/limbo/studytrack/pkg/calendar"
	"github.com/limbo/studytrack/pkg/entity"
)

const minSuggestions = 3

const (
	bootstrapPriority = 3
	paddingPriority   = 2
)

type Engine struct {
	catalog *Catalog
}

func NewEngine(catalog *Catalog) *Engine {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Engine{catalog: catalog}
}

// DaysUntil is the number of started days left until exam, rounded up.
func DaysUntil(exam, now time.Time) int {
	return int(math.Ceil(exam.Sub(now).Hours() / 24))
}

// Suggest maps study patterns onto catalog templates. The result only
// depends on its arguments and is ordered by priority, highest first.
func (e *Engine) Suggest(patterns []entity.StudyPattern, examDate, now time.Time) []entity.TaskSuggestion {
	if len(patterns) == 0 {
		return e.bootstrap(now)
	}

	tomorrow := calendar.Tomorrow(now)
	priority := examPriority(DaysUntil(examDate, now))
	covered := make(map[string]bool)
	suggestions := make([]entity.TaskSuggestion, 0, minSuggestions)
	for _, p := range patterns {
		subject, ok := e.catalog.Lookup(p.Subject)
		if !ok {
			continue
		}
		covered[subject.Name] = true
		tmpl := subject.Templates[templateIndex(p.Effectiveness, len(subject.Templates))]
		suggestions = append(suggestions, entity.TaskSuggestion{
			Title:             tmpl.Title,
			Description:       tmpl.Description,
			Category:          subject.Name,
			EstimatedDuration: min(p.Duration+30, tmpl.Duration),
			Difficulty:        p.Difficulty,
			Priority:          priority,
			DueDate:           tomorrow,
		})
	}

	for _, subject := range e.catalog.Subjects {
		if len(suggestions) >= minSuggestions {
			break
		}
		if covered[subject.Name] {
			continue
		}
		suggestions = append(suggestions, fromTemplate(subject, paddingPriority, tomorrow))
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Priority > suggestions[j].Priority
	})
	return suggestions
}

func (e *Engine) bootstrap(now time.Time) []entity.TaskSuggestion {
	start := calendar.StartOfDay(now)
	subjects := e.catalog.BootstrapSubjects()
	res := make([]entity.TaskSuggestion, 0, len(subjects))
	for i, s := range subjects {
		res = append(res, fromTemplate(s, bootstrapPriority, start.AddDate(0, 0, i+1)))
	}
	return res
}

func fromTemplate(s Subject, priority int, due time.Time) entity.TaskSuggestion {
	tmpl := s.Templates[0]
	return entity.TaskSuggestion{
		Title:             tmpl.Title,
		Description:       tmpl.Description,
		Category:          s.Name,
		EstimatedDuration: tmpl.Duration,
		Difficulty:        entity.DifficultyMedium,
		Priority:          priority,
		DueDate:           due,
	}
}

func templateIndex(effectiveness float64, n int) int {
	switch {
	case effectiveness > 0.8:
		return min(2, n-1)
	case effectiveness > 0.6:
		return min(1, n-1)
	}
	return 0
}

func examPriority(daysUntilExam int) int {
	switch {
	case daysUntilExam < 30:
		return 5
	case daysUntilExam < 90:
		return 4
	}
	return 3
}
