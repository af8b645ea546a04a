package testsupport

import (
	"context"
	"sync"
	"time"
)

// RecordingNotifier captures notification calls so tests can assert on them.
// The zero value is ready to use.
type RecordingNotifier struct {
	mu sync.Mutex

	Queued    []string
	Started   []string
	Delivered []string
	Reviewed  []string

	QueueStarts    []int
	QueueCompletes int
	Errors         []string
	Tests          int
}

func (r *RecordingNotifier) NotifyContractQueued(_ context.Context, reference, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Queued = append(r.Queued, reference)
	return nil
}

func (r *RecordingNotifier) NotifyGenerationStarted(_ context.Context, reference string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Started = append(r.Started, reference)
	return nil
}

func (r *RecordingNotifier) NotifyDocumentDelivered(_ context.Context, reference, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Delivered = append(r.Delivered, reference)
	return nil
}

func (r *RecordingNotifier) NotifyReviewRequired(_ context.Context, reference, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Reviewed = append(r.Reviewed, reference)
	return nil
}

func (r *RecordingNotifier) NotifyQueueStarted(_ context.Context, count int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.QueueStarts = append(r.QueueStarts, count)
	return nil
}

func (r *RecordingNotifier) NotifyQueueCompleted(_ context.Context, _, _ int, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.QueueCompletes++
	return nil
}

func (r *RecordingNotifier) NotifyError(_ context.Context, err error, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	message := "unknown"
	if err != nil {
		message = err.Error()
	}
	r.Errors = append(r.Errors, message)
	return nil
}

func (r *RecordingNotifier) TestNotification(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Tests++
	return nil
}

// DeliveredCount returns how many delivery notifications were recorded.
func (r *RecordingNotifier) DeliveredCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Delivered)
}

// QueueStartCounts returns a copy of the recorded queue start counts. Use the
// accessor instead of the field when the notifier is shared with a goroutine.
func (r *RecordingNotifier) QueueStartCounts() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.QueueStarts...)
}

// QueueCompleteCount returns how many queue completion notifications were
// recorded.
func (r *RecordingNotifier) QueueCompleteCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.QueueCompletes
}

// ReviewedRefs returns a copy of the references parked for review.
func (r *RecordingNotifier) ReviewedRefs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.Reviewed...)
}

// ErrorMessages returns a copy of the recorded error notification messages.
func (r *RecordingNotifier) ErrorMessages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.Errors...)
}
