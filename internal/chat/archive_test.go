package chat

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"
)

type countingFlush struct {
	mu    sync.Mutex
	calls []string
}

func (c *countingFlush) flush(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, sessionID)
}

func (c *countingFlush) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

func TestDebouncer_CoalescesRapidSchedules(t *testing.T) {
	c := &countingFlush{}
	d := NewDebouncer(30*time.Millisecond, c.flush)
	defer d.Stop()

	for i := 0; i < 10; i++ {
		d.Schedule("sess-a")
	}

	time.Sleep(150 * time.Millisecond)
	if got := c.count(); got != 1 {
		t.Fatalf("flush count = %d, want 1", got)
	}

	// after a flush the session can be scheduled again
	d.Schedule("sess-a")
	time.Sleep(150 * time.Millisecond)
	if got := c.count(); got != 2 {
		t.Fatalf("flush count after reschedule = %d, want 2", got)
	}
}

func TestDebouncer_ResetDelaysFlush(t *testing.T) {
	c := &countingFlush{}
	d := NewDebouncer(80*time.Millisecond, c.flush)
	defer d.Stop()

	d.Schedule("sess-b")
	time.Sleep(50 * time.Millisecond)
	d.Schedule("sess-b") // restarts the window

	// past the first deadline, inside the restarted one
	time.Sleep(60 * time.Millisecond)
	if got := c.count(); got != 0 {
		t.Fatalf("flushed before the restarted window closed: %d", got)
	}

	time.Sleep(120 * time.Millisecond)
	if got := c.count(); got != 1 {
		t.Fatalf("flush count = %d, want 1", got)
	}
}

func TestDebouncer_TracksSessionsIndependently(t *testing.T) {
	c := &countingFlush{}
	d := NewDebouncer(30*time.Millisecond, c.flush)
	defer d.Stop()

	d.Schedule("sess-c")
	d.Schedule("sess-d")

	time.Sleep(150 * time.Millisecond)
	if got := c.count(); got != 2 {
		t.Fatalf("flush count = %d, want 2", got)
	}
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	c := &countingFlush{}
	d := NewDebouncer(50*time.Millisecond, c.flush)

	d.Schedule("sess-e")
	d.Stop()

	time.Sleep(120 * time.Millisecond)
	if got := c.count(); got != 0 {
		t.Fatalf("flush fired after Stop: %d", got)
	}
}

func TestUpsertArchive_OneRowPerSession(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	first := &SessionArchive{
		SessionID:    "arch-sess-1",
		Snapshot:     []byte(`{"v":1}`),
		MessageCount: 1,
		Active:       true,
		ArchivedAt:   time.Now(),
	}
	if err := repo.UpsertArchive(ctx, first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	second := &SessionArchive{
		SessionID:    "arch-sess-1",
		Snapshot:     []byte(`{"v":2}`),
		MessageCount: 3,
		Active:       false,
		ArchivedAt:   time.Now(),
	}
	if err := repo.UpsertArchive(ctx, second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	var count int64
	if err := db.Model(&SessionArchive{}).Where("session_id = ?", "arch-sess-1").Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("archive rows = %d, want 1", count)
	}

	got, err := repo.GetArchiveBySessionID(ctx, "arch-sess-1")
	if err != nil {
		t.Fatalf("get archive: %v", err)
	}
	if string(got.Snapshot) != `{"v":2}` || got.MessageCount != 3 || got.Active {
		t.Fatalf("stale archive after upsert: %+v", got)
	}
}

func TestArchiveSession_WritesSnapshot(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepo(db)
	svc := NewService(repo, &recordingProvider{}, nil, nil, 20)
	ctx := context.Background()

	session, _, err := svc.RegisterProfile(ctx, 201, "Ana", 30, "Lisbon, PT")
	if err != nil {
		t.Fatalf("register profile: %v", err)
	}
	if _, _, err := svc.SendMessage(ctx, 201, session.SessionID, "any good places for dinner?"); err != nil {
		t.Fatalf("send message: %v", err)
	}

	jobID, err := NewSessionID()
	if err != nil {
		t.Fatalf("job id: %v", err)
	}
	job := &ArchiveJob{ID: jobID, SessionID: session.SessionID, Status: JobQueued}
	if err := repo.CreateArchiveJob(ctx, job); err != nil {
		t.Fatalf("create job: %v", err)
	}

	if err := svc.ArchiveSession(ctx, jobID); err != nil {
		t.Fatalf("archive session: %v", err)
	}

	done, err := repo.GetArchiveJobByID(ctx, jobID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if done.Status != JobSucceeded {
		t.Fatalf("job status = %q, want %q", done.Status, JobSucceeded)
	}

	arch, err := repo.GetArchiveBySessionID(ctx, session.SessionID)
	if err != nil {
		t.Fatalf("get archive: %v", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(arch.Snapshot, &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	// greeting + user + bot
	if len(snap.Messages) != 3 {
		t.Fatalf("snapshot messages = %d, want 3", len(snap.Messages))
	}
	if snap.UserName != "Ana" || !snap.Active {
		t.Fatalf("unexpected snapshot header: %+v", snap)
	}
	if arch.MessageCount != 3 {
		t.Fatalf("archive message count = %d, want 3", arch.MessageCount)
	}
}

func TestArchiveSession_MarksFailureOnMissingSession(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepo(db)
	svc := NewService(repo, &recordingProvider{}, nil, nil, 20)
	ctx := context.Background()

	jobID, err := NewSessionID()
	if err != nil {
		t.Fatalf("job id: %v", err)
	}
	job := &ArchiveJob{ID: jobID, SessionID: "no-such-session", Status: JobQueued}
	if err := repo.CreateArchiveJob(ctx, job); err != nil {
		t.Fatalf("create job: %v", err)
	}

	if err := svc.ArchiveSession(ctx, jobID); err == nil {
		t.Fatalf("expected error for missing session")
	}

	done, err := repo.GetArchiveJobByID(ctx, jobID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if done.Status != JobFailed {
		t.Fatalf("job status = %q, want %q", done.Status, JobFailed)
	}
	if done.Error == nil || *done.Error == "" {
		t.Fatalf("failure reason not recorded")
	}
}
