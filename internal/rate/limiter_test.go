package rate

import (
	"context"
	"sync"
	"testing"
	"time"
)

func newFakeClockStore() (*MemoryStore, *time.Time) {
	now := time.Unix(1700000000, 0)
	store := newMemoryStore(0, func() time.Time { return now })
	return store, &now
}

func TestAdmitWindowBehavior(t *testing.T) {
	store, now := newFakeClockStore()
	defer store.Close()

	limiter := NewLimiter(store)
	policy := Policy{Name: "api", Limit: 5, Window: 60 * time.Second}
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		res, err := limiter.Admit(ctx, policy, "client-1")
		if err != nil {
			t.Fatalf("admit %d: %v", i, err)
		}
		if !res.Allowed {
			t.Fatalf("request %d within limit must be admitted", i+1)
		}
		if want := int64(5 - i - 1); res.Remaining != want {
			t.Fatalf("request %d remaining = %d, want %d", i+1, res.Remaining, want)
		}
	}

	res, err := limiter.Admit(ctx, policy, "client-1")
	if err != nil {
		t.Fatalf("admit 6th: %v", err)
	}
	if res.Allowed {
		t.Fatal("6th request in window must be rejected")
	}
	if res.RetryAfter <= 0 {
		t.Fatalf("rejection must carry positive RetryAfter, got %v", res.RetryAfter)
	}

	// A fresh window starts once the old one elapses; count resets to 1.
	*now = now.Add(61 * time.Second)
	res, err = limiter.Admit(ctx, policy, "client-1")
	if err != nil {
		t.Fatalf("admit after window: %v", err)
	}
	if !res.Allowed {
		t.Fatal("request after window elapsed must be admitted")
	}
	if res.Count != 1 {
		t.Fatalf("new window count = %d, want 1", res.Count)
	}
}

func TestAdmitKeyIsolation(t *testing.T) {
	store, _ := newFakeClockStore()
	defer store.Close()

	limiter := NewLimiter(store)
	policy := Policy{Name: "api", Limit: 2, Window: time.Minute}
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _ = limiter.Admit(ctx, policy, "client-a")
	}

	res, err := limiter.Admit(ctx, policy, "client-b")
	if err != nil {
		t.Fatalf("admit client-b: %v", err)
	}
	if !res.Allowed {
		t.Fatal("exhausting client-a's bucket must not affect client-b")
	}
}

func TestAdmitPolicyIsolation(t *testing.T) {
	store, _ := newFakeClockStore()
	defer store.Close()

	limiter := NewLimiter(store)
	api := Policy{Name: "api", Limit: 1, Window: time.Minute}
	auth := Policy{Name: "auth", Limit: 1, Window: time.Minute}
	ctx := context.Background()

	if res, _ := limiter.Admit(ctx, api, "client-a"); !res.Allowed {
		t.Fatal("first api admit must pass")
	}
	if res, _ := limiter.Admit(ctx, api, "client-a"); res.Allowed {
		t.Fatal("second api admit must be rejected")
	}
	if res, _ := limiter.Admit(ctx, auth, "client-a"); !res.Allowed {
		t.Fatal("same key under a different policy has its own bucket")
	}
}

func TestAdmitNoOverAdmissionUnderConcurrency(t *testing.T) {
	store := NewMemoryStore(0)
	defer store.Close()

	limiter := NewLimiter(store)
	policy := Policy{Name: "api", Limit: 10, Window: time.Minute}
	ctx := context.Background()

	const workers = 100
	admitted := make(chan bool, workers)

	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			res, err := limiter.Admit(ctx, policy, "hot-key")
			if err != nil {
				t.Errorf("admit: %v", err)
				return
			}
			admitted <- res.Allowed
		}()
	}
	close(start)
	wg.Wait()
	close(admitted)

	allowed := 0
	for a := range admitted {
		if a {
			allowed++
		}
	}
	if allowed != policy.Limit {
		t.Fatalf("exactly %d of %d concurrent checks must be admitted, got %d", policy.Limit, workers, allowed)
	}
}
