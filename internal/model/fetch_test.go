package model

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

func TestEnsureSkipsWhenFilePresent(t *testing.T) {
	dir := t.TempDir()
	art := Artifact{Size: "tiny", Lang: "en"}

	if err := os.WriteFile(art.LocalPath(dir), []byte("weights"), 0o644); err != nil {
		t.Fatalf("write model: %v", err)
	}

	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	var out strings.Builder
	f := &Fetcher{Artifact: art, ModelsDir: dir, BaseURL: srv.URL, Stdout: &out}

	if err := f.Ensure(context.Background()); err != nil {
		t.Fatalf("Ensure: %v", err)
	}

	if got := requests.Load(); got != 0 {
		t.Errorf("expected zero network calls for cached model, got %d", got)
	}

	if !strings.Contains(out.String(), "already exists") {
		t.Errorf("expected cache-hit message, got %q", out.String())
	}
}

func TestEnsureDownloadsAndRenames(t *testing.T) {
	dir := t.TempDir()
	art := Artifact{Size: "tiny", Lang: "en"}
	payload := strings.Repeat("w", 256*1024)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/"+art.Filename() {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	modelsDir := filepath.Join(dir, "models")
	f := &Fetcher{Artifact: art, ModelsDir: modelsDir, BaseURL: srv.URL}

	if err := f.Ensure(context.Background()); err != nil {
		t.Fatalf("Ensure: %v", err)
	}

	got, err := os.ReadFile(f.LocalPath())
	if err != nil {
		t.Fatalf("read downloaded model: %v", err)
	}
	if string(got) != payload {
		t.Errorf("downloaded bytes differ from payload (len %d vs %d)", len(got), len(payload))
	}

	if _, err := os.Stat(f.LocalPath() + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file should be renamed away after success")
	}
}

func TestEnsureIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	art := Artifact{Size: "tiny", Lang: "en"}

	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		_, _ = w.Write([]byte("weights"))
	}))
	defer srv.Close()

	f := &Fetcher{Artifact: art, ModelsDir: dir, BaseURL: srv.URL}

	if err := f.Ensure(context.Background()); err != nil {
		t.Fatalf("first Ensure: %v", err)
	}
	if err := f.Ensure(context.Background()); err != nil {
		t.Fatalf("second Ensure: %v", err)
	}

	if got := requests.Load(); got != 1 {
		t.Errorf("expected exactly one download request, got %d", got)
	}
}

func TestEnsureNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.NotFound(w, nil)
	}))
	defer srv.Close()

	f := &Fetcher{
		Artifact:  Artifact{Size: "tiny", Lang: "en"},
		ModelsDir: t.TempDir(),
		BaseURL:   srv.URL,
	}

	err := f.Ensure(context.Background())
	if err == nil {
		t.Fatal("expected error for 404")
	}

	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %T: %v", err, err)
	}
	if !strings.Contains(nf.Error(), "moved or renamed") {
		t.Errorf("404 error should mention moved/renamed, got %q", nf.Error())
	}
}

func TestEnsureServerErrorLeavesNoFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := &Fetcher{
		Artifact:  Artifact{Size: "tiny", Lang: "en"},
		ModelsDir: t.TempDir(),
		BaseURL:   srv.URL,
	}

	if err := f.Ensure(context.Background()); err == nil {
		t.Fatal("expected error for 500")
	}

	if _, err := os.Stat(f.LocalPath()); !os.IsNotExist(err) {
		t.Error("no model file should exist after a failed download")
	}
}

// recordingProgress captures the lifecycle events a Fetcher emits.
type recordingProgress struct {
	started bool
	closed  bool
	written int64
}

func (p *recordingProgress) Start(int64)    { p.started = true }
func (p *recordingProgress) Update(n int64) { p.written += n }
func (p *recordingProgress) Close()         { p.closed = true }

func TestEnsureClosesProgressOnTransferFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Length", "4096")
		_, _ = w.Write([]byte("partial"))
		panic(http.ErrAbortHandler) // cut the connection mid-transfer
	}))
	defer srv.Close()

	prog := &recordingProgress{}
	f := &Fetcher{
		Artifact:  Artifact{Size: "tiny", Lang: "en"},
		ModelsDir: t.TempDir(),
		BaseURL:   srv.URL,
		Progress:  prog,
	}

	if err := f.Ensure(context.Background()); err == nil {
		t.Fatal("expected error for interrupted transfer")
	}

	if !prog.started {
		t.Error("progress reporter never started")
	}
	if !prog.closed {
		t.Error("progress reporter must receive its terminal event on failure")
	}
	if _, err := os.Stat(f.LocalPath()); !os.IsNotExist(err) {
		t.Error("no model file should exist after an interrupted transfer")
	}
}

func TestVerifyReportsContentLength(t *testing.T) {
	const size = 77_000_000

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("expected HEAD, got %s", r.Method)
		}
		w.Header().Set("Content-Length", "77000000")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	var out strings.Builder
	f := &Fetcher{
		Artifact:  Artifact{Size: "tiny", Lang: "en"},
		ModelsDir: t.TempDir(),
		BaseURL:   srv.URL,
		Stdout:    &out,
	}

	got, err := f.Verify(context.Background())
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got != size {
		t.Errorf("Verify size = %d; want %d", got, size)
	}
	if !strings.Contains(out.String(), "MB") {
		t.Errorf("expected human-readable size report, got %q", out.String())
	}
}

func TestVerifyNon200Fails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	f := &Fetcher{
		Artifact:  Artifact{Size: "tiny", Lang: "en"},
		ModelsDir: t.TempDir(),
		BaseURL:   srv.URL,
	}

	if _, err := f.Verify(context.Background()); err == nil {
		t.Fatal("expected error for 403")
	}
}
