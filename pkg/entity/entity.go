package entity

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	PasswordHash string     `json:"-"`
	ExamDate     *time.Time `json:"exam_date,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type CheckInType string

const (
	CheckInStart    CheckInType = "start"
	CheckInProgress CheckInType = "progress"
	CheckInEnd      CheckInType = "end"
)

func (t CheckInType) Valid() bool {
	switch t {
	case CheckInStart, CheckInProgress, CheckInEnd:
		return true
	}
	return false
}

type CheckIn struct {
	ID         uuid.UUID   `json:"id"`
	UserID     uuid.UUID   `json:"uid"`
	Type       CheckInType `json:"type"`
	Content    string      `json:"content"`
	Mood       *string     `json:"mood,omitempty"`
	StudyHours *float64    `json:"study_hours,omitempty"`
	Location   *string     `json:"location,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

// DayStats aggregates the check-ins of one calendar day.
type DayStats struct {
	Date            string    `json:"date"`
	HasStart        bool      `json:"has_start"`
	HasProgress     bool      `json:"has_progress"`
	HasEnd          bool      `json:"has_end"`
	Complete        bool      `json:"complete"`
	TotalStudyHours float64   `json:"total_study_hours"`
	CheckIns        []CheckIn `json:"check_ins"`
}

type CheckInStats struct {
	TotalCheckIns   int        `json:"total_check_ins"`
	TotalStudyHours float64    `json:"total_study_hours"`
	CurrentStreak   int        `json:"current_streak"`
	LongestStreak   int        `json:"longest_streak"`
	DailyStats      []DayStats `json:"daily_stats"`
}

// DailyStatus is the per-day view of a user's check-in sequence.
type DailyStatus struct {
	Date        string   `json:"date"`
	Start       bool     `json:"start"`
	Progress    bool     `json:"progress"`
	End         bool     `json:"end"`
	State       string   `json:"state"`
	LastCheckIn *CheckIn `json:"last_check_in"`
}

const (
	DayStateNone     = "none"
	DayStatePartial  = "partial"
	DayStateComplete = "complete"
)

type UserStats struct {
	TotalCheckIns      int     `json:"total_check_ins"`
	TotalStudyHours    float64 `json:"total_study_hours"`
	CurrentStreak      int     `json:"current_streak"`
	LongestStreak      int     `json:"longest_streak"`
	CompletedTasks     int     `json:"completed_tasks"`
	TotalTasks         int     `json:"total_tasks"`
	TaskCompletionRate int     `json:"task_completion_rate"`
}

type ExamCountdown struct {
	Days         int       `json:"days"`
	Hours        int       `json:"hours"`
	Minutes      int       `json:"minutes"`
	Seconds      int       `json:"seconds"`
	ExamDate     time.Time `json:"exam_date"`
	IsExamPassed bool      `json:"is_exam_passed"`
}

type StudyPattern struct {
	Subject       string  `json:"subject"`
	Duration      int     `json:"duration"`
	Effectiveness float64 `json:"effectiveness"`
	Difficulty    string  `json:"difficulty"`
}

type TaskSuggestion struct {
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	Category          string    `json:"category"`
	EstimatedDuration int       `json:"estimated_duration"`
	Difficulty        string    `json:"difficulty"`
	Priority          int       `json:"priority"`
	DueDate           time.Time `json:"due_date"`
}

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)
