package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prrathnayake/conveyancers-marketplace/platform/events"
	"github.com/prrathnayake/conveyancers-marketplace/platform/httpx"
	"github.com/prrathnayake/conveyancers-marketplace/platform/idgen"
	"github.com/prrathnayake/conveyancers-marketplace/services/jobs-service/internal/adapters/memory"
	"github.com/prrathnayake/conveyancers-marketplace/services/jobs-service/internal/application"
	"github.com/prrathnayake/conveyancers-marketplace/services/jobs-service/internal/domain"
)

const testAPIKey = "test-key"

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  struct {
		Code string `json:"code"`
	} `json:"error"`
}

func newTestRouter(t *testing.T, ready func(context.Context) error) (http.Handler, *application.Service) {
	t.Helper()
	clock := func() time.Time { return time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC) }
	svc := application.NewService(application.Dependencies{
		Config: application.Config{TokenSecret: testAPIKey},
		Jobs:   memory.NewJobStore(idgen.NewSequence(), clock),
		Outbox: events.NewMemoryOutbox(),
		Clock:  clock,
	})
	return NewRouter(NewHandler(svc), RouterOptions{
		ServiceName: "jobs-service",
		APIKey:      testAPIKey,
		Metrics:     httpx.NewMetrics("jobs-service"),
		Ready:       ready,
	}), svc
}

func do(t *testing.T, h http.Handler, method, path, role string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(httpx.HeaderAPIKey, testAPIKey)
	req.Header.Set(httpx.HeaderActorRole, role)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
		}
	}
	return rec, env
}

func expectError(t *testing.T, rec *httptest.ResponseRecorder, env envelope, status int, code string) {
	t.Helper()
	if rec.Code != status || env.Error.Code != code {
		t.Fatalf("expected %d %s, got %d %s (%s)", status, code, rec.Code, env.Error.Code, rec.Body.String())
	}
}

func createJob(t *testing.T, h http.Handler) domain.JobView {
	t.Helper()
	rec, env := do(t, h, http.MethodPost, "/jobs", "buyer", map[string]any{
		"customer_id":    "cust_1",
		"conveyancer_id": "conv_1",
		"state":          "nsw",
		"contacts": map[string]any{
			"buyer": map[string]string{"email": "pat@home.example", "phone": "0499 111 222"},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create job: %d %s", rec.Code, rec.Body.String())
	}
	var job domain.JobView
	if err := json.Unmarshal(env.Data, &job); err != nil {
		t.Fatalf("decode job: %v", err)
	}
	return job
}

func TestHealthAndReadiness(t *testing.T) {
	h, _ := newTestRouter(t, func(context.Context) error { return errors.New("db down") })
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz = %d", rec.Code)
	}
	rec, env := do(t, h, http.MethodGet, "/readyz", "", nil)
	expectError(t, rec, env, http.StatusServiceUnavailable, "not_ready")
}

func TestAuthAndRoles(t *testing.T) {
	h, _ := newTestRouter(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/jobs?account_id=cust_1", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing key should be 401, got %d", rec.Code)
	}

	job := createJob(t, h)
	rec, env := do(t, h, http.MethodGet, "/jobs/"+job.ID+"/compliance", "buyer", nil)
	expectError(t, rec, env, http.StatusForbidden, "forbidden")
	rec, _ = do(t, h, http.MethodGet, "/jobs/"+job.ID+"/compliance", "admin", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin compliance = %d", rec.Code)
	}
}

func TestContactUnlockFlow(t *testing.T) {
	h, svc := newTestRouter(t, nil)
	job := createJob(t, h)
	base := "/jobs/" + job.ID + "/contact"

	rec, env := do(t, h, http.MethodGet, base, "seller", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get contact = %d", rec.Code)
	}
	var view domain.ContactView
	_ = json.Unmarshal(env.Data, &view)
	if view.Buyer.Email != "" || view.Buyer.MaskedEmail != "pa•••@home.example" || view.Buyer.MaskedPhone != "•••••••222" {
		t.Fatalf("masked view wrong: %+v", view.Buyer)
	}

	rec, env = do(t, h, http.MethodPost, base+"/unlock", "seller", map[string]string{"token": "contact_unlock_nope"})
	expectError(t, rec, env, http.StatusForbidden, "invalid_unlock_token")
	rec, env = do(t, h, http.MethodPost, base+"/unlock", "seller", map[string]string{})
	expectError(t, rec, env, http.StatusBadRequest, "missing_required_fields")

	rec, env = do(t, h, http.MethodPost, base+"/unlock", "seller", map[string]string{"token": svc.UnlockToken(job.ID)})
	if rec.Code != http.StatusOK {
		t.Fatalf("unlock = %d %s", rec.Code, rec.Body.String())
	}
	_ = json.Unmarshal(env.Data, &view)
	if !view.Unlocked || view.Buyer.Email != "pat@home.example" {
		t.Fatalf("unlocked view wrong: %+v", view)
	}
}

func TestChatRaisesFlags(t *testing.T) {
	h, _ := newTestRouter(t, nil)
	job := createJob(t, h)
	rec, env := do(t, h, http.MethodPost, "/jobs/"+job.ID+"/chat", "buyer", map[string]string{
		"sender": "cust_1",
		"body":   "Call me on 0412 345 678",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("post chat = %d %s", rec.Code, rec.Body.String())
	}
	var msg domain.ChatMessage
	_ = json.Unmarshal(env.Data, &msg)
	if len(msg.Flags) != 2 {
		t.Fatalf("flags = %v", msg.Flags)
	}

	rec, env = do(t, h, http.MethodGet, "/jobs/"+job.ID, "buyer", nil)
	var view domain.JobView
	_ = json.Unmarshal(env.Data, &view)
	if rec.Code != http.StatusOK || len(view.ComplianceFlags) != 0 {
		t.Fatalf("buyer job view = %d %+v", rec.Code, view)
	}
	_, env = do(t, h, http.MethodGet, "/jobs/"+job.ID, "admin", nil)
	_ = json.Unmarshal(env.Data, &view)
	if len(view.ComplianceFlags) != 2 {
		t.Fatalf("admin job view flags = %v", view.ComplianceFlags)
	}

	rec, env = do(t, h, http.MethodGet, "/jobs/"+job.ID+"/chat", "seller", nil)
	var msgs []domain.ChatMessage
	_ = json.Unmarshal(env.Data, &msgs)
	if rec.Code != http.StatusOK || len(msgs) != 1 {
		t.Fatalf("list chat = %d %+v", rec.Code, msgs)
	}
}

func TestValidationCodes(t *testing.T) {
	h, _ := newTestRouter(t, nil)
	job := createJob(t, h)

	req := httptest.NewRequest(http.MethodPost, "/jobs", strings.NewReader("{"))
	req.Header.Set(httpx.HeaderAPIKey, testAPIKey)
	req.Header.Set(httpx.HeaderActorRole, "buyer")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "invalid_json") {
		t.Fatalf("bad json = %d %s", rec.Code, rec.Body.String())
	}

	rec, env := do(t, h, http.MethodPost, "/jobs", "buyer", map[string]string{"customer_id": "cust_1"})
	expectError(t, rec, env, http.StatusBadRequest, "missing_required_fields")
	rec, env = do(t, h, http.MethodGet, "/jobs?account_id=cust_1&limit=abc", "buyer", nil)
	expectError(t, rec, env, http.StatusBadRequest, "invalid_limit")
	rec, env = do(t, h, http.MethodGet, "/jobs/job_missing", "buyer", nil)
	expectError(t, rec, env, http.StatusNotFound, "job_not_found")
	rec, env = do(t, h, http.MethodPost, "/jobs/"+job.ID+"/milestones", "conveyancer", map[string]any{
		"name": "Deposit", "amount_cents": 0, "due_date": "2024-06-01",
	})
	expectError(t, rec, env, http.StatusBadRequest, "invalid_amount")
}
