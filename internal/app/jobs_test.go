package app

import (
	"context"
	"testing"
	"time"

	"github.com/raysh454/hfdl/internal/cache"
	"github.com/raysh454/hfdl/internal/testutil"
)

func drain(job *Job) []JobEvent {
	var evs []JobEvent
	for ev := range job.Events {
		evs = append(evs, ev)
	}
	return evs
}

func TestGetJob_ErrorForUnknown(t *testing.T) {
	t.Parallel()
	s := newTestService(t, nil)
	if _, err := s.GetJob("nonexistent"); err != ErrJobNotFound {
		t.Errorf("expected ErrJobNotFound, got %v", err)
	}
}

func TestListJobs_EmptyInitially(t *testing.T) {
	t.Parallel()
	s := newTestService(t, nil)
	if jobs := s.ListJobs(); len(jobs) != 0 {
		t.Errorf("expected 0 jobs, got %d", len(jobs))
	}
}

func TestCancelJob_NoOpForUnknown(t *testing.T) {
	t.Parallel()
	s := newTestService(t, nil)
	// Should not panic
	s.CancelJob("nonexistent")
}

func TestStartGenerateJob_EmitsLifecycle(t *testing.T) {
	t.Parallel()
	s := newTestService(t, nil)

	job, err := s.StartGenerateJob(context.Background(), mustTarget(t, "owner/tiny-model"))
	if err != nil {
		t.Fatalf("StartGenerateJob: %v", err)
	}
	if job.Type != "generate" {
		t.Errorf("expected type 'generate', got %q", job.Type)
	}

	evs := drain(job)
	if len(evs) != 4 {
		t.Fatalf("expected 4 events, got %d: %+v", len(evs), evs)
	}
	if evs[0].Status != JobPending || evs[1].Status != JobRunning {
		t.Errorf("unexpected status order: %+v", evs[:2])
	}
	if evs[2].Type != JobEventProgress || evs[2].Links != 2 {
		t.Errorf("expected progress with 2 links, got %+v", evs[2])
	}
	last := evs[3]
	if last.Type != JobEventResult || last.Status != JobDone || last.ScriptID == "" || last.Script == "" {
		t.Errorf("unexpected result event: %+v", last)
	}

	final, err := s.GetJob(job.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if final.Status != JobDone || final.ScriptID != last.ScriptID || final.Links != 2 {
		t.Errorf("unexpected final job: %+v", final)
	}
	if final.EndedAt.IsZero() {
		t.Error("expected EndedAt to be set")
	}
	if _, ok := s.Store().Get(final.ScriptID); !ok {
		t.Error("expected script to be in the store")
	}
}

func TestStartGenerateJob_Failure(t *testing.T) {
	t.Parallel()
	s := newTestService(t, &testutil.DummyWebClient{})

	job, err := s.StartGenerateJob(context.Background(), mustTarget(t, "owner/missing"))
	if err != nil {
		t.Fatalf("StartGenerateJob: %v", err)
	}
	evs := drain(job)
	last := evs[len(evs)-1]
	if last.Status != JobFailed || last.Error == "" {
		t.Errorf("expected failed event with error, got %+v", last)
	}

	final, _ := s.GetJob(job.ID)
	if final.Status != JobFailed {
		t.Errorf("expected failed, got %q", final.Status)
	}
}

func TestStartGenerateJob_CancelJobTransitionsToCanceled(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{
		ResponseDelay: 5 * time.Second,
		Pages:         map[string]string{testListingURL: testListing},
	}
	s := newTestService(t, wc)

	job, err := s.StartGenerateJob(context.Background(), mustTarget(t, "owner/tiny-model"))
	if err != nil {
		t.Fatalf("StartGenerateJob: %v", err)
	}
	s.CancelJob(job.ID)
	drain(job)

	final, _ := s.GetJob(job.ID)
	if final.Status != JobCanceled {
		t.Errorf("expected canceled, got %q", final.Status)
	}
}

// cancelOnSet cancels a context once the listing has been cached, i.e. after
// the fetch succeeded but before the script is saved.
type cancelOnSet struct {
	*cache.Memory
	cancel context.CancelFunc
}

func (c cancelOnSet) Set(ctx context.Context, key string, links []string, ttl time.Duration) error {
	c.cancel()
	return c.Memory.Set(ctx, key, links, ttl)
}

func TestStartGenerateJob_DoneWhenContextEndsAfterSuccess(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wc := &testutil.DummyWebClient{Pages: map[string]string{testListingURL: testListing}}
	s, err := NewService(context.Background(), testConfig(t), &testutil.DummyLogger{},
		WithWebClient(wc), WithCache(cancelOnSet{Memory: cache.NewMemory(), cancel: cancel}))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	job, err := s.StartGenerateJob(ctx, mustTarget(t, "owner/tiny-model"))
	if err != nil {
		t.Fatalf("StartGenerateJob: %v", err)
	}
	drain(job)

	final, _ := s.GetJob(job.ID)
	if final.Status != JobDone {
		t.Fatalf("expected done, got %q (%s)", final.Status, final.Error)
	}
	if _, ok := s.Store().Get(final.ScriptID); !ok {
		t.Error("expected script to be in the store")
	}
}

func TestStartGenerateJob_AppearsInListJobs(t *testing.T) {
	t.Parallel()
	s := newTestService(t, nil)

	job, err := s.StartGenerateJob(context.Background(), mustTarget(t, "owner/tiny-model"))
	if err != nil {
		t.Fatalf("StartGenerateJob: %v", err)
	}

	found := false
	for _, j := range s.ListJobs() {
		if j.ID == job.ID {
			found = true
		}
	}
	if !found {
		t.Error("started job not found in ListJobs")
	}

	// Drain events so job finishes
	drain(job)
}

func TestStartGenerateJob_RejectsWhenClosed(t *testing.T) {
	t.Parallel()
	s := newTestService(t, nil)
	_ = s.Close()

	if _, err := s.StartGenerateJob(context.Background(), mustTarget(t, "owner/tiny-model")); err != ErrClosed {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestClose_CancelsRunningJobs(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{
		ResponseDelay: 5 * time.Second,
		Pages:         map[string]string{testListingURL: testListing},
	}
	s := newTestService(t, wc)

	job, err := s.StartGenerateJob(context.Background(), mustTarget(t, "owner/tiny-model"))
	if err != nil {
		t.Fatalf("StartGenerateJob: %v", err)
	}

	done := make(chan struct{})
	go func() {
		_ = s.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return while a job was running")
	}

	drain(job)
	final, _ := s.GetJob(job.ID)
	if final.Status != JobCanceled {
		t.Errorf("expected canceled, got %q", final.Status)
	}
}
