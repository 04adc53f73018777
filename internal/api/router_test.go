package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/taskflow/task-manager/internal/core/service"
	"github.com/taskflow/task-manager/internal/infrastructure/db/memory"
)

const testSecret = "test-secret"

// captureMailer remembers the last verification token per address.
type captureMailer struct {
	mu     sync.Mutex
	tokens map[string]string
}

func (m *captureMailer) SendVerification(_ context.Context, email, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[email] = token
	return nil
}

type testServer struct {
	t      *testing.T
	srv    *httptest.Server
	mailer *captureMailer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := memory.NewStore()
	mailer := &captureMailer{tokens: map[string]string{}}
	log := zerolog.Nop()

	e := NewRouter(Deps{
		Auth:       service.NewAuthService(store.Users(), mailer, testSecret, time.Hour, log),
		Categories: service.NewCategoryService(store.Categories(), store.Tasks(), log),
		Tasks:      service.NewTaskService(store.Tasks(), store.Categories(), log),
		JWTSecret:  testSecret,
		Logger:     log,
		Registry:   prometheus.NewRegistry(),
	})

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return &testServer{t: t, srv: srv, mailer: mailer}
}

func (s *testServer) do(method, path, token, body string, out any) int {
	s.t.Helper()

	req, err := http.NewRequest(method, s.srv.URL+path, strings.NewReader(body))
	if err != nil {
		s.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		s.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			s.t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

// signup registers, verifies and logs in a user, returning the bearer token.
func (s *testServer) signup(name, email string) string {
	s.t.Helper()

	body := `{"name":"` + name + `","email":"` + email + `","password":"secret"}`
	if code := s.do(http.MethodPost, "/auth/register", "", body, nil); code != http.StatusCreated {
		s.t.Fatalf("register %s: %d", email, code)
	}

	s.mailer.mu.Lock()
	verification := s.mailer.tokens[email]
	s.mailer.mu.Unlock()

	if code := s.do(http.MethodPost, "/auth/verify-email", "", `{"token":"`+verification+`"}`, nil); code != http.StatusOK {
		s.t.Fatalf("verify %s: %d", email, code)
	}

	var login struct {
		Token string `json:"token"`
	}
	if code := s.do(http.MethodPost, "/auth/login", "", `{"email":"`+email+`","password":"secret"}`, &login); code != http.StatusOK {
		s.t.Fatalf("login %s: %d", email, code)
	}
	return login.Token
}

type idBody struct {
	ID string `json:"id"`
}

func TestRouter_RegistrationFlow(t *testing.T) {
	s := newTestServer(t)

	body := `{"name":"Ann","email":"ann@example.com","password":"secret"}`
	if code := s.do(http.MethodPost, "/auth/register", "", body, nil); code != http.StatusCreated {
		t.Fatalf("register: %d", code)
	}

	var msg map[string]any
	if code := s.do(http.MethodPost, "/auth/register", "", body, &msg); code != http.StatusConflict {
		t.Fatalf("duplicate register: %d", code)
	}
	if msg["message"] == "" {
		t.Fatal("conflict without message")
	}

	if code := s.do(http.MethodPost, "/auth/login", "", `{"email":"ann@example.com","password":"secret"}`, nil); code != http.StatusForbidden {
		t.Fatalf("login before verification: %d", code)
	}

	token := s.mailer.tokens["ann@example.com"]
	if len(token) != 64 {
		t.Fatalf("verification token length %d", len(token))
	}
	if code := s.do(http.MethodPost, "/auth/verify-email", "", `{"token":"`+token+`"}`, nil); code != http.StatusOK {
		t.Fatalf("verify: %d", code)
	}
	if code := s.do(http.MethodPost, "/auth/verify-email", "", `{"token":"`+token+`"}`, nil); code != http.StatusBadRequest {
		t.Fatalf("second verify must fail, got %d", code)
	}
	if code := s.do(http.MethodPost, "/auth/verify-email", "", `{}`, nil); code != http.StatusBadRequest {
		t.Fatalf("empty token: %d", code)
	}

	if code := s.do(http.MethodPost, "/auth/login", "", `{"email":"ann@example.com","password":"wrong"}`, nil); code != http.StatusUnauthorized {
		t.Fatalf("wrong password: %d", code)
	}
	if code := s.do(http.MethodPost, "/auth/login", "", `{"email":"ann@example.com","password":"secret"}`, nil); code != http.StatusOK {
		t.Fatalf("login: %d", code)
	}
}

func TestRouter_RequiresAuthentication(t *testing.T) {
	s := newTestServer(t)

	var msg map[string]any
	if code := s.do(http.MethodGet, "/tasks", "", "", &msg); code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
	if _, ok := msg["message"].(string); !ok {
		t.Fatalf("401 body without message: %v", msg)
	}
	if code := s.do(http.MethodPost, "/categories", "garbage", `{"name":"Work"}`, nil); code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
}

func TestRouter_OwnerScopedTasks(t *testing.T) {
	s := newTestServer(t)
	ann := s.signup("Ann", "ann@example.com")
	bob := s.signup("Bob", "bob@example.com")

	var work idBody
	if code := s.do(http.MethodPost, "/categories", ann, `{"name":"Work"}`, &work); code != http.StatusCreated {
		t.Fatalf("create category: %d", code)
	}
	if code := s.do(http.MethodPost, "/categories", ann, `{"name":"Work"}`, nil); code != http.StatusConflict {
		t.Fatalf("duplicate category: %d", code)
	}
	if code := s.do(http.MethodPost, "/categories", bob, `{"name":"Work"}`, nil); code != http.StatusCreated {
		t.Fatalf("same name for another owner: %d", code)
	}

	taskBody := `{"title":"Ship release","description":"write it","dueDate":"2024-06-01","priority":"high","status":"pending","category":"` + work.ID + `"}`
	var task idBody
	if code := s.do(http.MethodPost, "/tasks", ann, taskBody, &task); code != http.StatusCreated {
		t.Fatalf("create task: %d", code)
	}

	var annTasks, bobTasks []map[string]any
	if code := s.do(http.MethodGet, "/tasks?priority=high", ann, "", &annTasks); code != http.StatusOK {
		t.Fatalf("list ann: %d", code)
	}
	if len(annTasks) != 1 || annTasks[0]["title"] != "Ship release" {
		t.Fatalf("ann tasks = %v", annTasks)
	}
	if code := s.do(http.MethodGet, "/tasks?priority=high", bob, "", &bobTasks); code != http.StatusOK {
		t.Fatalf("list bob: %d", code)
	}
	if bobTasks == nil || len(bobTasks) != 0 {
		t.Fatalf("bob must get an empty array, got %v", bobTasks)
	}

	// Foreign ids look exactly like missing ones.
	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		if code := s.do(method, "/tasks/"+task.ID, bob, "", nil); code != http.StatusNotFound {
			t.Fatalf("%s foreign task: %d", method, code)
		}
	}
	if code := s.do(http.MethodPatch, "/tasks/"+task.ID, bob, `{"status":"completed"}`, nil); code != http.StatusNotFound {
		t.Fatalf("patch foreign task: %d", code)
	}
	if code := s.do(http.MethodPost, "/tasks", bob, taskBody, nil); code != http.StatusBadRequest {
		t.Fatalf("task in foreign category: %d", code)
	}

	for _, body := range []string{`{"status":"bogus"}`, `{"priority":"urgent"}`} {
		if code := s.do(http.MethodPatch, "/tasks/"+task.ID, ann, body, nil); code != http.StatusBadRequest {
			t.Fatalf("patch %s: %d", body, code)
		}
	}

	var patched map[string]any
	if code := s.do(http.MethodPatch, "/tasks/"+task.ID, ann, `{"status":"in-progress"}`, &patched); code != http.StatusOK {
		t.Fatalf("patch: %d", code)
	}
	if patched["status"] != "in-progress" || patched["title"] != "Ship release" || patched["priority"] != "high" {
		t.Fatalf("patch touched other fields: %v", patched)
	}
}

func TestRouter_CategoryInUse(t *testing.T) {
	s := newTestServer(t)
	ann := s.signup("Ann", "ann@example.com")

	var work idBody
	s.do(http.MethodPost, "/categories", ann, `{"name":"Work"}`, &work)

	var task idBody
	taskBody := `{"title":"T","description":"D","dueDate":"2024-06-01","priority":"low","status":"pending","category":"` + work.ID + `"}`
	if code := s.do(http.MethodPost, "/tasks", ann, taskBody, &task); code != http.StatusCreated {
		t.Fatalf("create task: %d", code)
	}

	var conflict struct {
		Message    string `json:"message"`
		TasksCount int64  `json:"tasksCount"`
	}
	if code := s.do(http.MethodDelete, "/categories/"+work.ID, ann, "", &conflict); code != http.StatusConflict {
		t.Fatalf("delete in-use category: %d", code)
	}
	if conflict.TasksCount != 1 {
		t.Fatalf("tasksCount = %d", conflict.TasksCount)
	}

	if code := s.do(http.MethodDelete, "/tasks/"+task.ID, ann, "", nil); code != http.StatusOK {
		t.Fatalf("delete task: %d", code)
	}
	if code := s.do(http.MethodDelete, "/categories/"+work.ID, ann, "", nil); code != http.StatusOK {
		t.Fatalf("delete category: %d", code)
	}
	if code := s.do(http.MethodDelete, "/categories/"+work.ID, ann, "", nil); code != http.StatusNotFound {
		t.Fatalf("delete twice: %d", code)
	}
}

func TestRouter_StatsAndCalendar(t *testing.T) {
	s := newTestServer(t)
	ann := s.signup("Ann", "ann@example.com")

	var work idBody
	s.do(http.MethodPost, "/categories", ann, `{"name":"Work"}`, &work)
	for _, due := range []string{"2024-06-01", "2024-06-01", "2024-06-15", "2024-07-02"} {
		body := `{"title":"T","description":"D","dueDate":"` + due + `","priority":"low","status":"pending","category":"` + work.ID + `"}`
		if code := s.do(http.MethodPost, "/tasks", ann, body, nil); code != http.StatusCreated {
			t.Fatalf("create task: %d", code)
		}
	}

	var stats map[string]int
	if code := s.do(http.MethodGet, "/tasks/stats", ann, "", &stats); code != http.StatusOK {
		t.Fatalf("stats: %d", code)
	}
	if stats["total"] != 4 || stats["pending"] != 4 {
		t.Fatalf("stats = %v", stats)
	}

	var days []struct {
		Date  time.Time        `json:"date"`
		Tasks []map[string]any `json:"tasks"`
	}
	if code := s.do(http.MethodGet, "/tasks/calendar?month=2024-06", ann, "", &days); code != http.StatusOK {
		t.Fatalf("calendar: %d", code)
	}
	if len(days) != 2 || len(days[0].Tasks) != 2 || days[1].Date.Day() != 15 {
		t.Fatalf("calendar = %+v", days)
	}
}

func TestRouter_Health(t *testing.T) {
	s := newTestServer(t)

	if code := s.do(http.MethodGet, "/health", "", "", nil); code != http.StatusOK {
		t.Fatalf("liveness: %d", code)
	}
	if code := s.do(http.MethodGet, "/health/ready", "", "", nil); code != http.StatusOK {
		t.Fatalf("readiness: %d", code)
	}
}

// keyRecorder admits the first request per key and remembers every key seen.
type keyRecorder struct {
	mu   sync.Mutex
	seen map[string]int
}

func (l *keyRecorder) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seen[key]++
	return l.seen[key] == 1, time.Second, nil
}

func loginFrom(t *testing.T, e http.Handler, remote, forwardedFor string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", forwardedFor)
	req.RemoteAddr = remote
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec.Code
}

func TestRouter_RateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	store := memory.NewStore()
	limiter := &keyRecorder{seen: map[string]int{}}
	e := NewRouter(Deps{
		Auth:     service.NewAuthService(store.Users(), &captureMailer{tokens: map[string]string{}}, testSecret, time.Hour, zerolog.Nop()),
		Limiter:  limiter,
		Logger:   zerolog.Nop(),
		Registry: prometheus.NewRegistry(),
	})

	if code := loginFrom(t, e, "203.0.113.7:5555", "1.1.1.1"); code == http.StatusTooManyRequests {
		t.Fatalf("first request limited")
	}
	if code := loginFrom(t, e, "203.0.113.7:5556", "2.2.2.2"); code != http.StatusTooManyRequests {
		t.Fatalf("changing X-Forwarded-For escaped the limiter: %d", code)
	}
	if len(limiter.seen) != 1 {
		t.Fatalf("expected one bucket, got %v", limiter.seen)
	}
}

func TestRouter_RateLimitTrustsConfiguredProxy(t *testing.T) {
	_, proxy, err := net.ParseCIDR("10.0.0.0/8")
	if err != nil {
		t.Fatal(err)
	}
	store := memory.NewStore()
	limiter := &keyRecorder{seen: map[string]int{}}
	e := NewRouter(Deps{
		Auth:           service.NewAuthService(store.Users(), &captureMailer{tokens: map[string]string{}}, testSecret, time.Hour, zerolog.Nop()),
		Limiter:        limiter,
		TrustedProxies: []*net.IPNet{proxy},
		Logger:         zerolog.Nop(),
		Registry:       prometheus.NewRegistry(),
	})

	for _, client := range []string{"198.51.100.1", "198.51.100.2"} {
		if code := loginFrom(t, e, "10.0.0.1:5555", client); code == http.StatusTooManyRequests {
			t.Fatalf("client %s limited behind trusted proxy", client)
		}
	}
	if _, ok := limiter.seen["/auth/login:198.51.100.2"]; !ok {
		t.Fatalf("expected per-client buckets, got %v", limiter.seen)
	}
}
