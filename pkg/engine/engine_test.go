package engine

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/blackcoderx/diffrun/pkg/addon"
	"github.com/blackcoderx/diffrun/pkg/addon/dump"
	"github.com/blackcoderx/diffrun/pkg/addon/storecriterion"
	"github.com/blackcoderx/diffrun/pkg/config"
	"github.com/blackcoderx/diffrun/pkg/model"
)

// memWriter is a fake SessionWriter recording every artifact written, in
// the teacher's own hand-rolled-fake test style (no mocking framework).
type memWriter struct {
	mu      sync.Mutex
	files   map[string][]byte
	prepped bool
	latest  string
}

func newMemWriter() *memWriter { return &memWriter{files: map[string][]byte{}} }

func (w *memWriter) PrepareSessionDirs(key string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.prepped = true
	return nil
}

func (w *memWriter) WriteTrialArtifact(key, relPath string, body []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.files[key+"/"+relPath] = body
	return nil
}

func (w *memWriter) SwapLatest(key string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.latest = key
	return nil
}

func jsonServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func baseConfig(one, other *httptest.Server) config.Config {
	return config.Config{
		One:        model.AccessPoint{Name: "one", Host: one.URL},
		Other:      model.AccessPoint{Name: "other", Host: other.URL},
		Threads:    4,
		MaxRetries: 0,
		Title:      "test run",
	}
}

func TestRunPreservesRequestOrder(t *testing.T) {
	one := jsonServer(t, `{"value":1}`)
	other := jsonServer(t, `{"value":1}`)

	cfg := baseConfig(one, other)
	writer := newMemWriter()
	executor := addon.NewExecutor(addon.Stages{})

	requests := make([]model.Request, 0, 20)
	for i := 0; i < 20; i++ {
		requests = append(requests, model.Request{Name: fmt.Sprintf("req-%02d", i), Method: model.MethodGet, Path: "/x"})
	}

	rep, err := Run(context.Background(), cfg, executor, writer, NopLogger{}, "testkey", nil, requests)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(rep.Trials) != len(requests) {
		t.Fatalf("expected %d trials, got %d", len(requests), len(rep.Trials))
	}
	for i, trial := range rep.Trials {
		want := fmt.Sprintf("req-%02d", i)
		if trial.Name != want {
			t.Errorf("trial %d: expected name %q, got %q (order not preserved)", i, want, trial.Name)
		}
		if trial.Seq != i+1 {
			t.Errorf("trial %d: expected seq %d, got %d", i, i+1, trial.Seq)
		}
	}
	if !writer.prepped {
		t.Error("expected PrepareSessionDirs to be called")
	}
	if writer.latest != "testkey" {
		t.Errorf("expected SwapLatest(%q), got %q", "testkey", writer.latest)
	}
}

func TestRunClassifiesDifferent(t *testing.T) {
	one := jsonServer(t, `{"value":1}`)
	other := jsonServer(t, `{"value":2}`)

	cfg := baseConfig(one, other)
	writer := newMemWriter()
	executor := addon.NewExecutor(addon.Stages{})

	requests := []model.Request{{Name: "mismatch", Method: model.MethodGet, Path: "/x"}}

	rep, err := Run(context.Background(), cfg, executor, writer, NopLogger{}, "testkey", nil, requests)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := rep.Trials[0].Status; got != model.StatusDifferent {
		t.Errorf("expected status %q, got %q", model.StatusDifferent, got)
	}
	if rep.Summary.Status[model.StatusDifferent] != 1 {
		t.Errorf("expected 1 different in histogram, got %d", rep.Summary.Status[model.StatusDifferent])
	}
}

func TestRunClassifiesFailureOnTransportError(t *testing.T) {
	one := jsonServer(t, `{"value":1}`)
	other := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	other.Close() // closed immediately: connections to it fail

	cfg := baseConfig(one, other)
	writer := newMemWriter()
	executor := addon.NewExecutor(addon.Stages{})

	requests := []model.Request{{Name: "unreachable", Method: model.MethodGet, Path: "/x"}}

	rep, err := Run(context.Background(), cfg, executor, writer, NopLogger{}, "testkey", nil, requests)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := rep.Trials[0].Status; got != model.StatusFailure {
		t.Errorf("expected status %q, got %q", model.StatusFailure, got)
	}
}

func TestRunHeaderPrecedence(t *testing.T) {
	var gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-Token")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"ok":true}`)
	}))
	t.Cleanup(srv.Close)
	other := jsonServer(t, `{"ok":true}`)

	cfg := baseConfig(srv, other)
	cfg.One.Headers = map[string]string{"X-Token": "from-access-point"}
	writer := newMemWriter()
	executor := addon.NewExecutor(addon.Stages{})

	requests := []model.Request{{
		Name: "overridden-header", Method: model.MethodGet, Path: "/x",
		Headers: map[string]string{"X-Token": "from-request"},
	}}

	if _, err := Run(context.Background(), cfg, executor, writer, NopLogger{}, "testkey", nil, requests); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if gotHeader != "from-request" {
		t.Errorf("expected request-level header to win, got %q", gotHeader)
	}
}

// flagOnlyJudgement sets RegardAsSame without touching the "unknown"
// cognition bucket, mimicking an add-on that forgets to actually clear the
// diffs it claims don't matter.
type flagOnlyJudgement struct{}

func (flagOnlyJudgement) Exec(_ context.Context, p addon.JudgementPayload, _ addon.JudgementReference) (addon.JudgementPayload, error) {
	p.RegardAsSame = true
	return p, nil
}

// clearingJudgement actually empties the "unknown" bucket, the way a real
// reclassifying add-on (ignore_properties, ai_classify) must.
type clearingJudgement struct{}

func (clearingJudgement) Exec(_ context.Context, p addon.JudgementPayload, _ addon.JudgementReference) (addon.JudgementPayload, error) {
	p.DiffsByCognition[model.UnknownCognition] = model.DiffKeys{}
	return p, nil
}

func TestRunJudgementRegardAsSameRederivesFromUnknownBucket(t *testing.T) {
	one := jsonServer(t, `{"value":1}`)
	other := jsonServer(t, `{"value":2}`)

	cfg := baseConfig(one, other)
	writer := newMemWriter()
	executor := addon.NewExecutor(addon.Stages{Judgement: []addon.JudgementAddOn{flagOnlyJudgement{}}})

	requests := []model.Request{{Name: "mismatch", Method: model.MethodGet, Path: "/x"}}
	rep, err := Run(context.Background(), cfg, executor, writer, NopLogger{}, "testkey", nil, requests)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := rep.Trials[0].Status; got != model.StatusDifferent {
		t.Errorf("expected status %q (flag alone must not win), got %q", model.StatusDifferent, got)
	}
}

func TestRunJudgementClearingUnknownMakesTrialSame(t *testing.T) {
	one := jsonServer(t, `{"value":1}`)
	other := jsonServer(t, `{"value":2}`)

	cfg := baseConfig(one, other)
	writer := newMemWriter()
	executor := addon.NewExecutor(addon.Stages{Judgement: []addon.JudgementAddOn{clearingJudgement{}}})

	requests := []model.Request{{Name: "mismatch", Method: model.MethodGet, Path: "/x"}}
	rep, err := Run(context.Background(), cfg, executor, writer, NopLogger{}, "testkey", nil, requests)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := rep.Trials[0].Status; got != model.StatusSame {
		t.Errorf("expected status %q, got %q", model.StatusSame, got)
	}
}

func TestRunOnlyStoresConfiguredStatuses(t *testing.T) {
	one := jsonServer(t, `{"value":1}`)
	other := jsonServer(t, `{"value":1}`)

	cfg := baseConfig(one, other)

	rawDump, _ := dump.NewRaw(nil)
	onlyDifferent, _ := storecriterion.NewOnlyDifferent(nil)
	executor := addon.NewExecutor(addon.Stages{
		Dump:           []addon.DumpAddOn{rawDump},
		StoreCriterion: []addon.StoreCriterionAddOn{onlyDifferent},
	})
	writer := newMemWriter()

	requests := []model.Request{{Name: "same-req", Method: model.MethodGet, Path: "/x"}}
	rep, err := Run(context.Background(), cfg, executor, writer, NopLogger{}, "testkey", nil, requests)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if rep.Trials[0].Status != model.StatusSame {
		t.Fatalf("expected same status, got %q", rep.Trials[0].Status)
	}
	if rep.Trials[0].One.File != nil {
		t.Error("expected no artifact file for a same-status trial under only_different")
	}
}
