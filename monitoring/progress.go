package monitoring

import (
	"encoding/json"
	"sync/atomic"
	"time"
)

// A ProgressBar counts the work items of a long run. It is updated from the
// simulation goroutine while the server reads it.
type ProgressBar struct {
	ID        string
	Name      string
	StartTime time.Time
	Total     uint64

	inProgress atomic.Uint64
	finished   atomic.Uint64
}

// InProgress returns the number of started but unfinished items.
func (b *ProgressBar) InProgress() uint64 {
	return b.inProgress.Load()
}

// Finished returns the number of finished items.
func (b *ProgressBar) Finished() uint64 {
	return b.finished.Load()
}

// IncrementInProgress marks items as started.
func (b *ProgressBar) IncrementInProgress(amount uint64) {
	b.inProgress.Add(amount)
}

// IncrementFinished marks items as finished without having started them.
func (b *ProgressBar) IncrementFinished(amount uint64) {
	b.finished.Add(amount)
}

// MoveInProgressToFinished marks started items as finished.
func (b *ProgressBar) MoveInProgressToFinished(amount uint64) {
	b.inProgress.Add(^(amount - 1))
	b.finished.Add(amount)
}

// MarshalJSON reports a snapshot of the bar.
func (b *ProgressBar) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID         string    `json:"id"`
		Name       string    `json:"name"`
		StartTime  time.Time `json:"start_time"`
		Total      uint64    `json:"total"`
		Finished   uint64    `json:"finished"`
		InProgress uint64    `json:"in_progress"`
	}{
		ID:         b.ID,
		Name:       b.Name,
		StartTime:  b.StartTime,
		Total:      b.Total,
		Finished:   b.Finished(),
		InProgress: b.InProgress(),
	})
}
