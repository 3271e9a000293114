package models

// PomodoroPoint is one bucket of the pomodoro chart.
type PomodoroPoint struct {
	Date          string `json:"date"`
	TotalDuration int64  `json:"total_duration"`
	TotalBreaks   int64  `json:"total_breaks"`
}

func (p PomodoroPoint) BucketKey() string { return p.Date }

func (p PomodoroPoint) WithBucketKey(key string) PomodoroPoint {
	p.Date = key
	return p
}

// TaskPoint is one bucket of the task chart, keyed by task creation date.
type TaskPoint struct {
	Date        string `json:"date"`
	Count       int64  `json:"count"`
	Completed   int64  `json:"completed"`
	Incompleted int64  `json:"incompleted"`
}

func (p TaskPoint) BucketKey() string { return p.Date }

func (p TaskPoint) WithBucketKey(key string) TaskPoint {
	p.Date = key
	return p
}

type IssueSummary struct {
	Total          int `json:"total"`
	FullyCompleted int `json:"fully_completed"`
	Incompleted    int `json:"incompleted"`
	NoTask         int `json:"no_task"`
}

type TaskSummary struct {
	Total        int `json:"total"`
	Completed    int `json:"completed"`
	Incompleted  int `json:"incompleted"`
	WithSessions int `json:"with_sessions"`
}

type DurationCount struct {
	Five       int `json:"five"`
	Fifteen    int `json:"fifteen"`
	TwentyFive int `json:"twenty_five"`
	Fifty      int `json:"fifty"`
	Other      int `json:"other"`
}

type SessionSummary struct {
	Total         int           `json:"total"`
	DurationCount DurationCount `json:"duration_count"`
}

type AnalysisSummary struct {
	Issue   IssueSummary   `json:"issue"`
	Task    TaskSummary    `json:"task"`
	Session SessionSummary `json:"session"`
}
