package model

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// verifyTimeout bounds the HEAD reachability probe. The download transfer
// itself carries no deadline.
const verifyTimeout = 10 * time.Second

// NotFoundError marks a 404 from the model host, which almost always means
// the artifact was moved or renamed upstream.
type NotFoundError struct {
	URL string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("model file not found at %s; it may have been moved or renamed upstream", e.URL)
}

// Fetcher ensures a model artifact is present on disk, downloading it from
// the fixed Hugging Face URL when absent. File existence is the only cache
// validity signal; no checksum is verified.
type Fetcher struct {
	Artifact  Artifact
	ModelsDir string

	// BaseURL overrides the artifact URL prefix. Tests point it at a local server.
	BaseURL string
	// Client defaults to a client with no timeout (model files are large).
	Client *http.Client
	// Progress receives download progress events; nil disables reporting.
	Progress Progress
	// Stdout receives human-readable status lines; nil discards them.
	Stdout io.Writer
}

func (f *Fetcher) LocalPath() string {
	return f.Artifact.LocalPath(f.ModelsDir)
}

func (f *Fetcher) url() string {
	if f.BaseURL != "" {
		return f.BaseURL + "/" + f.Artifact.Filename()
	}
	return f.Artifact.URL()
}

func (f *Fetcher) client() *http.Client {
	if f.Client != nil {
		return f.Client
	}
	return &http.Client{Timeout: 0}
}

func (f *Fetcher) stdout() io.Writer {
	if f.Stdout != nil {
		return f.Stdout
	}
	return io.Discard
}

func (f *Fetcher) progress() Progress {
	if f.Progress != nil {
		return f.Progress
	}
	return NopProgress{}
}

// Ensure makes the artifact available at LocalPath. When the file already
// exists it returns immediately without touching the network.
func (f *Fetcher) Ensure(ctx context.Context) error {
	localPath := f.LocalPath()
	if _, err := os.Stat(localPath); err == nil {
		fmt.Fprintf(f.stdout(), "model already exists at: %s\n", localPath)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return fmt.Errorf("create models dir: %w", err)
	}

	url := f.url()
	fmt.Fprintf(f.stdout(), "downloading whisper model %s\n", f.Artifact.Filename())
	fmt.Fprintf(f.stdout(), "  from: %s\n", url)
	fmt.Fprintf(f.stdout(), "  to:   %s\n", localPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := f.client().Do(req)
	if err != nil {
		return fmt.Errorf("download request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return &NotFoundError{URL: url}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("download failed for %s: %s", f.Artifact.Filename(), resp.Status)
	}

	if err := f.streamToFile(resp, localPath); err != nil {
		return err
	}

	fmt.Fprintf(f.stdout(), "model downloaded to: %s\n", localPath)
	return nil
}

// streamToFile copies the response body to a temp file next to the target and
// renames it into place, reporting progress per chunk.
func (f *Fetcher) streamToFile(resp *http.Response, localPath string) error {
	tmp := localPath + ".tmp"
	fh, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	prog := f.progress()
	prog.Start(resp.ContentLength)
	defer prog.Close()

	buf := make([]byte, 64*1024)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, writeErr := fh.Write(buf[:n]); writeErr != nil {
				_ = fh.Close()
				_ = os.Remove(tmp)
				return fmt.Errorf("write temp file: %w", writeErr)
			}
			prog.Update(int64(n))
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			_ = fh.Close()
			_ = os.Remove(tmp)
			return fmt.Errorf("download read failed: %w", readErr)
		}
	}

	if err := fh.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp, localPath); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("move temp file into place: %w", err)
	}
	return nil
}

// Verify probes the artifact URL with a HEAD request bounded at ten seconds
// and returns the advertised Content-Length. It never downloads the body.
func (f *Fetcher) Verify(ctx context.Context) (int64, error) {
	url := f.url()

	ctx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, fmt.Errorf("build verify request: %w", err)
	}

	resp, err := f.client().Do(req)
	if err != nil {
		return 0, fmt.Errorf("verify request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("model URL returned status: %s", resp.Status)
	}

	size := resp.ContentLength
	fmt.Fprintf(f.stdout(), "model URL is valid; file size: %.2f MB\n", float64(size)/(1024*1024))
	return size, nil
}
