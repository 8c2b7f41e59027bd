package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/groupgainz/backend/internal/auth"
	"github.com/groupgainz/backend/internal/messages"
	"github.com/groupgainz/backend/internal/models"
	"github.com/groupgainz/backend/internal/settlement"
	"github.com/groupgainz/backend/internal/storage"
	"github.com/groupgainz/backend/internal/storage/sqlite"
	"github.com/groupgainz/backend/internal/week"
)

// setupTestServer seeds a SQLite store with one active group (Alice over the
// threshold, Bob under it) and returns a test server around it.
func setupTestServer(t *testing.T, tokens *auth.TokenManager) *httptest.Server {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "server-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	win := week.Current(time.Now())

	group := &models.Group{Name: "5AM Club"}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if err := store.CreateContract(ctx, &models.Contract{GroupID: group.ID, Status: models.ContractActive}); err != nil {
		t.Fatalf("CreateContract failed: %v", err)
	}
	for name, points := range map[string]int{"Alice": 34, "Bob": 5} {
		u := &models.User{Name: name, Email: fmt.Sprintf("%s-%s@example.com", name, uuid.New().String()[:8])}
		if err := store.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
		if err := store.AddMember(ctx, &models.GroupMember{GroupID: group.ID, UserID: u.ID}); err != nil {
			t.Fatalf("AddMember failed: %v", err)
		}
		err := store.RecordPointTransaction(ctx, &models.PointTransaction{
			UserID:    u.ID,
			Points:    points,
			CreatedAt: win.Start.Add(time.Hour),
		})
		if err != nil {
			t.Fatalf("RecordPointTransaction failed: %v", err)
		}
	}

	job := settlement.NewJob(store, messages.NewProvider(), settlement.Config{})
	ts := httptest.NewServer(New(store, job, tokens).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestOptionsPreflight(t *testing.T) {
	ts := setupTestServer(t, auth.NewTokenManager("secret", time.Hour))

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/jobs/weekly", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("OPTIONS request failed: %v", err)
	}
	defer resp.Body.Close()

	// Preflight must succeed without a token.
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "ok" {
		t.Errorf("body = %q, want ok", body)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS allow-origin header")
	}
}

func TestWeeklyJobTrigger(t *testing.T) {
	ts := setupTestServer(t, nil)

	resp, err := http.Post(ts.URL+"/jobs/weekly", "application/json", nil)
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var report settlement.Report
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatalf("failed to decode report: %v", err)
	}
	if !report.Success {
		t.Errorf("Success = false, errors: %v", report.Errors)
	}
	want := settlement.Stats{GroupsProcessed: 1, PenaltiesAssigned: 1, NotificationsSent: 1, PointsArchived: 2}
	if report.Stats != want {
		t.Errorf("Stats = %+v, want %+v", report.Stats, want)
	}
}

func TestWeeklyJobTriggerAuth(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	ts := setupTestServer(t, tokens)

	t.Run("missing token is rejected", func(t *testing.T) {
		resp, err := http.Post(ts.URL+"/jobs/weekly", "application/json", nil)
		if err != nil {
			t.Fatalf("POST failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", resp.StatusCode)
		}
	})

	t.Run("valid service token is accepted", func(t *testing.T) {
		token, err := tokens.Generate("test")
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		req, _ := http.NewRequest(http.MethodPost, ts.URL+"/jobs/weekly", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("POST failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("status = %d, want 200", resp.StatusCode)
		}
	})
}

// brokenStore fails enumeration and pings; everything else is unreachable in
// these tests.
type brokenStore struct {
	storage.Store
}

func (brokenStore) ListActiveContracts(ctx context.Context) ([]models.ActiveContract, error) {
	return nil, errors.New("database unreachable")
}

func (brokenStore) Ping(ctx context.Context) error {
	return errors.New("database unreachable")
}

func TestWeeklyJobFatalReturns500(t *testing.T) {
	store := brokenStore{}
	job := settlement.NewJob(store, messages.NewProvider(), settlement.Config{})
	ts := httptest.NewServer(New(store, job, nil).Handler())
	t.Cleanup(ts.Close)

	resp, err := http.Post(ts.URL+"/jobs/weekly", "application/json", nil)
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	var report settlement.Report
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatalf("failed to decode report: %v", err)
	}
	if report.Success {
		t.Error("Success = true, want false")
	}
	if (report.Stats != settlement.Stats{}) {
		t.Errorf("Stats = %+v, want zeroed", report.Stats)
	}
	if len(report.Errors) != 1 {
		t.Errorf("Errors = %v, want exactly 1", report.Errors)
	}
}

func TestProbes(t *testing.T) {
	ts := setupTestServer(t, nil)

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s failed: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, resp.StatusCode)
		}
	}

	t.Run("readyz reports unreachable database", func(t *testing.T) {
		store := brokenStore{}
		job := settlement.NewJob(store, messages.NewProvider(), settlement.Config{})
		broken := httptest.NewServer(New(store, job, nil).Handler())
		t.Cleanup(broken.Close)

		resp, err := http.Get(broken.URL + "/readyz")
		if err != nil {
			t.Fatalf("GET /readyz failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", resp.StatusCode)
		}
	})
}
