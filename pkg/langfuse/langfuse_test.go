package langfuse

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	contractx "github.com/tanpawarit/insurance-analyst/agent/contract"
)

func TestConfigEnabled(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		cfg  Config
		want bool
	}{
		{"both keys", Config{PublicKey: "pk", SecretKey: "sk"}, true},
		{"public only", Config{PublicKey: "pk"}, false},
		{"secret only", Config{SecretKey: "sk"}, false},
		{"neither", Config{}, false},
		{"whitespace keys", Config{PublicKey: "  ", SecretKey: "sk"}, false},
	}
	for _, tc := range cases {
		if got := tc.cfg.Enabled(); got != tc.want {
			t.Fatalf("%s: Enabled() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestNewClientValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(Config{PublicKey: "pk", SecretKey: "sk"}); err == nil {
		t.Fatal("expected error for missing host")
	}
	if _, err := NewClient(Config{Host: "https://cloud.langfuse.com"}); err == nil {
		t.Fatal("expected error for missing keys")
	}
	if _, err := NewClient(Config{Host: "https://cloud.langfuse.com", PublicKey: "pk", SecretKey: "sk"}); err != nil {
		t.Fatalf("NewClient: %v", err)
	}
}

func TestObservePostsTraceWithBasicAuth(t *testing.T) {
	t.Parallel()

	var (
		gotPath string
		gotUser string
		gotPass string
		gotBody []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := MustNew(Config{Host: srv.URL, PublicKey: "pk", SecretKey: "sk", Timeout: time.Second})

	client.Observe(context.Background(), contractx.Span{
		Name:      "insurance_analytics",
		Input:     "How many customers?",
		Output:    "Query: How many customers?",
		StartedAt: time.Now(),
		EndedAt:   time.Now(),
		Metadata:  map[string]any{"db_path": "insurance_data.db"},
	})

	if gotPath != ingestionPath {
		t.Fatalf("path = %q, want %q", gotPath, ingestionPath)
	}
	if gotUser != "pk" || gotPass != "sk" {
		t.Fatalf("basic auth = %q/%q", gotUser, gotPass)
	}

	var batch ingestionBatch
	if err := json.Unmarshal(gotBody, &batch); err != nil {
		t.Fatalf("decode batch: %v", err)
	}
	if len(batch.Batch) != 1 {
		t.Fatalf("batch size = %d, want 1", len(batch.Batch))
	}
	event := batch.Batch[0]
	if event.Type != "trace-create" {
		t.Fatalf("event type = %q", event.Type)
	}
	if event.ID == "" || event.Body.ID == "" {
		t.Fatal("event and trace ids must be set")
	}
	if event.Body.Name != "insurance_analytics" || event.Body.Input != "How many customers?" {
		t.Fatalf("unexpected trace body: %+v", event.Body)
	}
	if event.Body.Level != "" {
		t.Fatalf("successful span must not carry a level: %+v", event.Body)
	}
}

func TestObserveMarksFailedSpans(t *testing.T) {
	t.Parallel()

	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := MustNew(Config{Host: srv.URL, PublicKey: "pk", SecretKey: "sk"})
	client.Observe(context.Background(), contractx.Span{
		Name:  "insurance_analytics",
		Error: "Error executing query: boom",
	})

	var batch ingestionBatch
	if err := json.Unmarshal(gotBody, &batch); err != nil {
		t.Fatalf("decode batch: %v", err)
	}
	if batch.Batch[0].Body.Level != "ERROR" {
		t.Fatalf("failed span should be ERROR level: %+v", batch.Batch[0].Body)
	}
	if batch.Batch[0].Body.Status != "Error executing query: boom" {
		t.Fatalf("status message lost: %+v", batch.Batch[0].Body)
	}
}

func TestObserveSwallowsServerFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := MustNew(Config{Host: srv.URL, PublicKey: "pk", SecretKey: "sk"})

	// Must not panic or propagate anything.
	client.Observe(context.Background(), contractx.Span{Name: "insurance_analytics"})
}
