package recorder

import (
	"context"
	"sync"
	"time"

	"link-router/internal/domain"
	"link-router/internal/repository"
	"link-router/pkg/logger"
)

// Recorder persists click events asynchronously. Record never blocks and
// never fails from the caller's point of view: events flow through a
// buffered channel into a pool of workers, and each worker performs two
// independent durable writes (the click document and the link counter).
// A failed or dropped write is logged and forgotten — at-least-once on a
// good day, fire-and-forget always.
type Recorder struct {
	store   repository.Store
	logger  *logger.Logger
	events  chan domain.ClickEvent
	wg      sync.WaitGroup
	closeMu sync.Mutex
	closed  bool

	// writeTimeout bounds each durable write so a stalled store cannot pin
	// workers forever.
	writeTimeout time.Duration
}

// New creates a recorder and starts its worker pool.
func New(store repository.Store, log *logger.Logger, bufferSize, workerCount int) *Recorder {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	if workerCount <= 0 {
		workerCount = 1
	}

	r := &Recorder{
		store:        store,
		logger:       log,
		events:       make(chan domain.ClickEvent, bufferSize),
		writeTimeout: 5 * time.Second,
	}

	r.wg.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		go r.worker()
	}

	return r
}

// Record schedules the two durable writes for one click without waiting for
// them. When the buffer is full the event is dropped and counted as the
// accepted data-loss mode under store pressure.
func (r *Recorder) Record(event domain.ClickEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	r.closeMu.Lock()
	defer r.closeMu.Unlock()
	if r.closed {
		r.logger.Warn("Click dropped, recorder closed", "link_id", event.LinkID)
		return
	}

	select {
	case r.events <- event:
	default:
		r.logger.Warn("Click dropped, buffer full",
			"link_id", event.LinkID,
			"domain_id", event.DomainID,
		)
	}
}

// Close stops accepting events, drains the buffer and waits for the workers
// to finish their in-flight writes.
func (r *Recorder) Close() {
	r.closeMu.Lock()
	if r.closed {
		r.closeMu.Unlock()
		return
	}
	r.closed = true
	close(r.events)
	r.closeMu.Unlock()

	r.wg.Wait()
}

// worker drains the event channel until it is closed. Each event triggers
// two independent writes; a failure in one does not skip the other.
func (r *Recorder) worker() {
	defer r.wg.Done()

	for event := range r.events {
		r.persist(event)
	}
}

func (r *Recorder) persist(event domain.ClickEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), r.writeTimeout)
	defer cancel()

	click := &domain.Click{
		LinkID:    event.LinkID,
		DomainID:  event.DomainID,
		TargetURL: event.TargetURL,
		IP:        event.IP,
		UserAgent: event.UserAgent,
		Referer:   event.Referer,
		Timestamp: event.Timestamp,
	}

	if err := r.store.InsertClick(ctx, click); err != nil {
		r.logger.Error("Failed to insert click",
			"error", err,
			"link_id", event.LinkID,
			"target", event.TargetURL,
		)
	}

	if err := r.store.IncrementLinkStats(ctx, event.LinkID); err != nil {
		r.logger.Error("Failed to increment link stats",
			"error", err,
			"link_id", event.LinkID,
		)
	}
}
