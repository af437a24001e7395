package chat

import (
	"context"
	"log"
	"sync"
	"time"
)

// ArchivePublisher hands a job id to the durable queue.
type ArchivePublisher interface {
	PublishArchive(ctx context.Context, jobID string) error
}

// Debouncer coalesces rapid Schedule calls per session: each call resets the
// session's timer (never stacks a second one), so only the state after the
// idle window triggers a flush. Intermediate states are skipped on purpose -
// the final state always wins.
type Debouncer struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
	idle   time.Duration
	flush  func(sessionID string)
}

func NewDebouncer(idle time.Duration, flush func(sessionID string)) *Debouncer {
	if idle <= 0 {
		idle = 2 * time.Second
	}
	return &Debouncer{
		timers: make(map[string]*time.Timer),
		idle:   idle,
		flush:  flush,
	}
}

func (d *Debouncer) Schedule(sessionID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.timers[sessionID]; ok {
		t.Reset(d.idle)
		return
	}
	d.timers[sessionID] = time.AfterFunc(d.idle, func() {
		d.mu.Lock()
		delete(d.timers, sessionID)
		d.mu.Unlock()
		d.flush(sessionID)
	})
}

// Stop cancels all pending timers. Flushes already running are not waited on.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for id, t := range d.timers {
		t.Stop()
		delete(d.timers, id)
	}
}

// ArchiveScheduler is the in-process end of the write-behind shadow: when a
// session's debounce window closes it records an ArchiveJob row and publishes
// the job id. Everything is best-effort and off the request path; failures
// are logged, never surfaced to the user.
type ArchiveScheduler struct {
	repo      *Repo
	publisher ArchivePublisher
	debouncer *Debouncer
	timeout   time.Duration
}

func NewArchiveScheduler(repo *Repo, publisher ArchivePublisher, idle time.Duration) *ArchiveScheduler {
	s := &ArchiveScheduler{
		repo:      repo,
		publisher: publisher,
		timeout:   10 * time.Second,
	}
	s.debouncer = NewDebouncer(idle, s.enqueue)
	return s
}

func (s *ArchiveScheduler) Schedule(sessionID string) {
	s.debouncer.Schedule(sessionID)
}

func (s *ArchiveScheduler) Stop() {
	s.debouncer.Stop()
}

func (s *ArchiveScheduler) enqueue(sessionID string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	jobID, err := NewSessionID()
	if err != nil {
		log.Printf("archive: new job id: %v", err)
		return
	}

	job := &ArchiveJob{
		ID:        jobID,
		SessionID: sessionID,
		Status:    JobQueued,
	}
	if err := s.repo.CreateArchiveJob(ctx, job); err != nil {
		log.Printf("archive: create job session=%s err=%v", sessionID, err)
		return
	}
	if err := s.publisher.PublishArchive(ctx, jobID); err != nil {
		log.Printf("archive: publish job=%s session=%s err=%v", jobID, sessionID, err)
		_ = s.repo.MarkArchiveJobFailed(ctx, jobID, err.Error())
	}
}
