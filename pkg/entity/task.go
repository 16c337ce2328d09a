package entity

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type TaskType string

const (
	TaskTypeCount    TaskType = "count"
	TaskTypeDuration TaskType = "duration"
	TaskTypeProgress TaskType = "progress"
)

func (t TaskType) Valid() bool {
	switch t {
	case TaskTypeCount, TaskTypeDuration, TaskTypeProgress:
		return true
	}
	return false
}

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPending, TaskInProgress, TaskCompleted:
		return true
	}
	return false
}

const DefaultTaskWeight = 5

// Tracker is the progress-tracking shape of a task. Exactly one
// implementation is attached to every task and it decides when the task is done.
type Tracker interface {
	Kind() TaskType
	// CompletionRate is the 0..100 progress of the task.
	CompletionRate() int
	Reached() bool
}

type CountTracker struct {
	TargetCount  int    `json:"target_count"`
	CurrentCount int    `json:"current_count"`
	DailyTarget  int    `json:"daily_target"`
	Unit         string `json:"unit"`
}

func (c *CountTracker) Kind() TaskType { return TaskTypeCount }

func (c *CountTracker) CompletionRate() int {
	return ratioRate(c.CurrentCount, c.TargetCount)
}

func (c *CountTracker) Reached() bool {
	return c.CurrentCount >= c.TargetCount
}

// DurationTracker values are minutes.
type DurationTracker struct {
	TargetDuration  int `json:"target_duration"`
	CurrentDuration int `json:"current_duration"`
	DailyDuration   int `json:"daily_duration"`
}

func (d *DurationTracker) Kind() TaskType { return TaskTypeDuration }

func (d *DurationTracker) CompletionRate() int {
	return ratioRate(d.CurrentDuration, d.TargetDuration)
}

func (d *DurationTracker) Reached() bool {
	return d.CurrentDuration >= d.TargetDuration
}

type ProgressTracker struct {
	Progress  int `json:"progress"`
	TotalDays int `json:"total_days"`
}

func (p *ProgressTracker) Kind() TaskType { return TaskTypeProgress }

func (p *ProgressTracker) CompletionRate() int {
	return ClampProgress(p.Progress)
}

func (p *ProgressTracker) Reached() bool {
	return p.Progress >= 100
}

func ClampProgress(v int) int {
	return min(100, max(0, v))
}

// Zero target is treated as 1.
func ratioRate(current, target int) int {
	if target <= 0 {
		target = 1
	}
	rate := int(math.Round(float64(current) / float64(target) * 100))
	return min(100, max(0, rate))
}

type Task struct {
	ID                uuid.UUID  `json:"id"`
	UserID            uuid.UUID  `json:"uid"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Category          string     `json:"category"`
	Difficulty        string     `json:"difficulty"`
	EstimatedDuration *int       `json:"estimated_duration,omitempty"`
	Priority          int        `json:"priority"`
	Weight            int        `json:"weight"`
	Status            TaskStatus `json:"status"`
	Tracking          Tracker    `json:"tracking"`
	IsCompleted       bool       `json:"is_completed"`
	IsGenerated       bool       `json:"is_generated"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	DueDate           *time.Time `json:"due_date,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func (t *Task) Type() TaskType {
	if t.Tracking == nil {
		return ""
	}
	return t.Tracking.Kind()
}

func (t *Task) CompletionRate() int {
	if t.Tracking == nil {
		return 0
	}
	return t.Tracking.CompletionRate()
}

func (t *Task) EffectiveWeight() int {
	if t.Weight <= 0 {
		return DefaultTaskWeight
	}
	return t.Weight
}

// SyncCompletion makes IsCompleted/CompletedAt follow the tracker.
// An already completed task keeps its original CompletedAt.
func (t *Task) SyncCompletion(now time.Time) {
	if t.Tracking != nil && t.Tracking.Reached() {
		t.IsCompleted = true
		if t.CompletedAt == nil {
			at := now
			t.CompletedAt = &at
		}
		return
	}
	t.IsCompleted = false
	t.CompletedAt = nil
}

// TaskView is a task with its derived completion rate, as returned by the API.
type TaskView struct {
	*Task
	Type           TaskType `json:"task_type"`
	CompletionRate int      `json:"completion_rate"`
}

func NewTaskView(t *Task) TaskView {
	return TaskView{
		Task:           t,
		Type:           t.Type(),
		CompletionRate: t.CompletionRate(),
	}
}

type TaskCompletion struct {
	TotalTasks     int     `json:"total_tasks"`
	CompletedTasks int     `json:"completed_tasks"`
	AverageRate    float64 `json:"average_rate"`
}

// WeightedCompletion averages per-task completion rates by weight.
// CompletedTasks is derived from the average, not counted from IsCompleted.
func WeightedCompletion(tasks []*Task) TaskCompletion {
	var weighted, totalWeight float64
	for _, t := range tasks {
		w := float64(t.EffectiveWeight())
		weighted += float64(t.CompletionRate()) * w
		totalWeight += w
	}
	res := TaskCompletion{TotalTasks: len(tasks)}
	if totalWeight > 0 {
		res.AverageRate = weighted / totalWeight
	}
	res.CompletedTasks = int(math.Round(res.AverageRate / 100 * float64(len(tasks))))
	return res
}
