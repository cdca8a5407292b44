package domain

import "time"

// BatchSummary describes one pass over a queue.
type BatchSummary struct {
	// RunID is a unique id for the pass.
	RunID string
	// Queue names the queue ("produtos", "categorias", "status").
	Queue string
	// StartedAt is when the pass began.
	StartedAt time.Time
	// EndedAt is when the pass finished.
	EndedAt time.Time
	// Groups is the number of credential groups processed.
	Groups int
	// Counts maps outcome codes to the number of records that reached them.
	Counts map[OutcomeCode]int
	// Error is set when the pass could not run at all (e.g. queue unreadable).
	Error string
}

// Queue names.
const (
	QueueProducts   = "produtos"
	QueueCategories = "categorias"
	QueueStatus     = "status"
)

// NewBatchSummary creates an empty summary for a queue.
func NewBatchSummary(runID, queue string) *BatchSummary {
	return &BatchSummary{
		RunID:     runID,
		Queue:     queue,
		StartedAt: time.Now(),
		Counts:    make(map[OutcomeCode]int),
	}
}

// Count records one outcome.
func (s *BatchSummary) Count(code OutcomeCode) {
	if s.Counts == nil {
		s.Counts = make(map[OutcomeCode]int)
	}
	s.Counts[code]++
}

// Total returns the number of records that reached a terminal outcome.
func (s *BatchSummary) Total() int {
	total := 0
	for _, n := range s.Counts {
		total += n
	}
	return total
}

// Failures returns the number of failed records.
func (s *BatchSummary) Failures() int {
	n := 0
	for code, c := range s.Counts {
		if code.IsFailure() {
			n += c
		}
	}
	return n
}

// Duration returns how long the pass took.
func (s *BatchSummary) Duration() time.Duration {
	if s.EndedAt.IsZero() {
		return 0
	}
	return s.EndedAt.Sub(s.StartedAt)
}

// RunControl is the operator's switch for the outer loop.
type RunControl struct {
	// StillOn keeps the loop going while true.
	StillOn bool
	// Interval is the pause between passes.
	Interval time.Duration
}

// DefaultRunInterval is used when TIMER is absent or invalid.
const DefaultRunInterval = 2 * time.Second
