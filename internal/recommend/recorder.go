package recommend

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/khanglvm/editorial-toolkit/internal/metrics"
	"github.com/khanglvm/editorial-toolkit/internal/storage"
)

const (
	// recordQueueSize is the buffer size of the shown-record queue.
	// If full, records are dropped (non-blocking).
	recordQueueSize = 256

	// batchFlushSize is the number of records that triggers an immediate flush.
	batchFlushSize = 10

	// flushInterval is how often pending records are written.
	flushInterval = 50 * time.Millisecond

	// writeTimeout bounds a single append to the activity log.
	writeTimeout = 5 * time.Second
)

// Recorder appends recommendation_shown records in the background so the
// write never delays a recommendation response. A late or dropped record
// only weakens rotation for one window.
type Recorder struct {
	log      ActivityLog
	queue    chan storage.ActivityEvent
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	logger   zerolog.Logger
	now      func() time.Time
}

// NewRecorder starts a recorder writing to log.
func NewRecorder(log ActivityLog, logger zerolog.Logger) *Recorder {
	r := &Recorder{
		log:      log,
		queue:    make(chan storage.ActivityEvent, recordQueueSize),
		stopChan: make(chan struct{}),
		logger:   logger.With().Str("component", "recorder").Logger(),
		now:      time.Now,
	}

	r.wg.Add(1)
	go r.process()

	return r
}

// RecordShown queues one shown record (non-blocking). The timestamp is
// taken now, not when the record is written.
func (r *Recorder) RecordShown(userID string, slugs []string) {
	if len(slugs) == 0 {
		return
	}

	event := storage.ActivityEvent{
		UserID:    userID,
		Type:      storage.ActivityRecommendationShown,
		Details:   storage.ActivityDetails{ToolSlugs: append([]string(nil), slugs...)},
		CreatedAt: r.now().UTC(),
	}

	select {
	case <-r.stopChan:
		metrics.ShownRecordsDropped.Inc()
		r.logger.Warn().Str("user_id", userID).Msg("recorder stopped, dropping shown record")
		return
	default:
	}

	select {
	case r.queue <- event:
	default:
		metrics.ShownRecordsDropped.Inc()
		r.logger.Warn().Str("user_id", userID).Msg("shown-record queue full, dropping record")
	}
}

// Stop flushes queued records and stops the background writer.
// It is safe to call more than once.
func (r *Recorder) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopChan)
		r.wg.Wait()
	})
}

// Pending returns the number of queued records.
func (r *Recorder) Pending() int {
	return len(r.queue)
}

// process runs in the background, batching and flushing records.
func (r *Recorder) process() {
	defer r.wg.Done()

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	batch := make([]storage.ActivityEvent, 0, batchFlushSize)

	for {
		select {
		case event := <-r.queue:
			batch = append(batch, event)
			if len(batch) >= batchFlushSize {
				r.flush(batch)
				batch = batch[:0]
			}

		case <-ticker.C:
			if len(batch) > 0 {
				r.flush(batch)
				batch = batch[:0]
			}

		case <-r.stopChan:
			// Drain whatever is still queued, then exit.
			for {
				select {
				case event := <-r.queue:
					batch = append(batch, event)
				default:
					r.flush(batch)
					return
				}
			}
		}
	}
}

// flush appends a batch of records to the activity log.
func (r *Recorder) flush(events []storage.ActivityEvent) {
	for _, event := range events {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := r.log.AppendActivity(ctx, event)
		cancel()

		if err != nil {
			metrics.ShownRecordsDropped.Inc()
			r.logger.Warn().Err(err).Str("user_id", event.UserID).Msg("failed to append shown record")
			continue
		}
		metrics.ShownRecordsWritten.Inc()
	}
}
