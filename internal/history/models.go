package history

import "time"

// Status is the result of an attempt.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Attempt is one recorded target notification.
type Attempt struct {
	ID           int64
	RunID        string
	Job          string
	Index        int
	Protocol     string
	Identifier   string
	European     bool
	Status       Status
	ErrorKind    string
	ErrorMessage string
	StartedAt    time.Time
	Duration     time.Duration
}

// Run is one recorded dispatch.
type Run struct {
	RunID     string
	Job       string
	Mode      string
	StartedAt time.Time
	Duration  time.Duration
	Targets   int
	Failed    int
	Skipped   string
}

// Filter narrows attempt listings. Zero values match everything.
type Filter struct {
	RunID string
	Job   string
	// Limit caps the number of rows; zero or negative means no cap.
	Limit int
}
