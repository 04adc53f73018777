package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/taskflow/task-manager/internal/core/domain"
	"github.com/taskflow/task-manager/internal/infrastructure/db/memory"
)

const testRedisAddr = "localhost:6379"

// newTestClient connects to a local Redis or skips the test.
func newTestClient(t *testing.T) *redis.Client {
	t.Helper()

	client, err := Connect(context.Background(), Config{Addr: testRedisAddr, DB: 15, Timeout: time.Second})
	if err != nil {
		t.Skipf("Redis not available at %s: %v", testRedisAddr, err)
	}
	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})
	return client
}

// countingCategories counts how often the list reaches the backing store.
type countingCategories struct {
	*memory.CategoryRepository
	lists int
}

func (c *countingCategories) ListByOwner(ctx context.Context, userID string) ([]*domain.Category, error) {
	c.lists++
	return c.CategoryRepository.ListByOwner(ctx, userID)
}

func TestCachedCategoryRepository_ReadThroughAndInvalidate(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	inner := &countingCategories{CategoryRepository: memory.NewStore().Categories()}
	repo := NewCachedCategoryRepository(inner, client, time.Minute, zerolog.Nop())

	work, err := repo.Create(ctx, &domain.Category{Name: "Work", UserID: "u1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	first, err := repo.ListByOwner(ctx, "u1")
	if err != nil {
		t.Fatalf("first list: %v", err)
	}
	second, err := repo.ListByOwner(ctx, "u1")
	if err != nil {
		t.Fatalf("second list: %v", err)
	}
	if inner.lists != 1 {
		t.Fatalf("expected 1 backing read, got %d", inner.lists)
	}
	if diff := cmp.Diff(first, second, cmpopts.EquateApproxTime(time.Millisecond)); diff != "" {
		t.Errorf("cached list mismatch (-want +got):\n%s", diff)
	}

	if _, err := repo.Rename(ctx, work.ID, "u1", "Office"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	after, err := repo.ListByOwner(ctx, "u1")
	if err != nil {
		t.Fatalf("list after rename: %v", err)
	}
	if inner.lists != 2 {
		t.Fatalf("expected rename to invalidate the cache, backing reads = %d", inner.lists)
	}
	if len(after) != 1 || after[0].Name != "Office" {
		t.Errorf("unexpected list after rename: %+v", after)
	}
}

func TestCachedCategoryRepository_ScopedPerOwner(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	repo := NewCachedCategoryRepository(memory.NewStore().Categories(), client, time.Minute, zerolog.Nop())
	if _, err := repo.Create(ctx, &domain.Category{Name: "Home", UserID: "u1"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.ListByOwner(ctx, "u2")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no categories for u2, got %d", len(got))
	}
}

func TestRateLimiter_SlidingWindow(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	limiter := NewRateLimiter(client, 3, time.Minute)

	for i := 0; i < 3; i++ {
		ok, _, err := limiter.Allow(ctx, "login:10.0.0.1")
		if err != nil {
			t.Fatalf("allow %d: %v", i, err)
		}
		if !ok {
			t.Fatalf("request %d should be allowed", i)
		}
	}

	ok, retry, err := limiter.Allow(ctx, "login:10.0.0.1")
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if ok {
		t.Fatal("fourth request should be refused")
	}
	if retry <= 0 || retry > time.Minute {
		t.Errorf("retry-after out of range: %v", retry)
	}

	ok, _, err = limiter.Allow(ctx, "login:10.0.0.2")
	if err != nil {
		t.Fatalf("allow other key: %v", err)
	}
	if !ok {
		t.Error("a different key must have its own window")
	}
}

// gatedCategories blocks every list until release is closed and records
// whether the context it was given had already ended.
type gatedCategories struct {
	*memory.CategoryRepository
	entered chan struct{}
	release chan struct{}
	mu      sync.Mutex
	ctxErrs []error
}

func (g *gatedCategories) ListByOwner(ctx context.Context, userID string) ([]*domain.Category, error) {
	select {
	case g.entered <- struct{}{}:
	default:
	}
	<-g.release

	g.mu.Lock()
	g.ctxErrs = append(g.ctxErrs, ctx.Err())
	g.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return g.CategoryRepository.ListByOwner(ctx, userID)
}

func TestCachedCategoryRepository_CancelledWaiterDoesNotFailOthers(t *testing.T) {
	// Nothing listens here, so every cache call fails fast and the list
	// always goes through the shared load.
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { client.Close() })

	store := memory.NewStore()
	if _, err := store.Categories().Create(context.Background(), &domain.Category{Name: "Work", UserID: "u1"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	inner := &gatedCategories{
		CategoryRepository: store.Categories(),
		entered:            make(chan struct{}, 1),
		release:            make(chan struct{}),
	}
	repo := NewCachedCategoryRepository(inner, client, time.Minute, zerolog.Nop())

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := repo.ListByOwner(firstCtx, "u1")
		firstErr <- err
	}()
	<-inner.entered

	type result struct {
		list []*domain.Category
		err  error
	}
	second := make(chan result, 1)
	go func() {
		list, err := repo.ListByOwner(context.Background(), "u1")
		second <- result{list, err}
	}()

	cancelFirst()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Fatalf("first caller: expected context.Canceled, got %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	close(inner.release)

	res := <-second
	if res.err != nil {
		t.Fatalf("second caller failed: %v", res.err)
	}
	if len(res.list) != 1 || res.list[0].Name != "Work" {
		t.Fatalf("unexpected list: %+v", res.list)
	}
	inner.mu.Lock()
	defer inner.mu.Unlock()
	for _, err := range inner.ctxErrs {
		if err != nil {
			t.Fatalf("load ran with an ended context: %v", err)
		}
	}
}
