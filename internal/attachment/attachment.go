// Package attachment downloads chat attachments to transient local storage
// and guarantees their removal once the enclosing operation returns.
package attachment

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

// TransientFile is a local copy of a remote attachment. It is owned by the
// pipeline invocation that fetched it.
type TransientFile struct {
	Path string
	Size int64

	dir      string
	once     sync.Once
	released error
}

// Pipeline fetches, encodes and releases attachments.
type Pipeline struct {
	fs     afero.Fs
	dir    string
	client *http.Client
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithFs replaces the filesystem (tests use afero.NewMemMapFs).
func WithFs(fs afero.Fs) Option {
	return func(p *Pipeline) { p.fs = fs }
}

// WithHTTPClient replaces the client used for downloads.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Pipeline) { p.client = c }
}

// New creates a pipeline storing files under dir.
func New(dir string, opts ...Option) *Pipeline {
	p := &Pipeline{
		fs:     afero.NewOsFs(),
		dir:    dir,
		client: &http.Client{},
		logger: slog.With("component", "attachment"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Fetch downloads url into a file named filename. Each call gets its own
// directory so concurrent attachments with the same name never collide.
// On error the partially written file is already removed.
func (p *Pipeline) Fetch(ctx context.Context, url, filename string) (*TransientFile, error) {
	name := sanitize(filename)

	if err := p.fs.MkdirAll(p.dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating attachment dir: %w", err)
	}
	dir, err := afero.TempDir(p.fs, p.dir, "attachment-")
	if err != nil {
		return nil, fmt.Errorf("creating attachment dir: %w", err)
	}
	f := &TransientFile{Path: filepath.Join(dir, name), dir: dir}

	size, err := p.download(ctx, url, f.Path)
	if err != nil {
		if rerr := p.Release(f); rerr != nil {
			p.logger.Error("releasing partial download", "path", f.Path, "error", rerr)
		}
		return nil, err
	}
	f.Size = size

	p.logger.Info("attachment saved", "path", f.Path, "bytes", size)
	return f, nil
}

func (p *Pipeline) download(ctx context.Context, url, path string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetching attachment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return 0, fmt.Errorf("fetching attachment (status %d): %s", resp.StatusCode, body)
	}

	out, err := p.fs.Create(path)
	if err != nil {
		return 0, fmt.Errorf("creating attachment file: %w", err)
	}
	n, err := io.Copy(out, resp.Body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, fmt.Errorf("writing attachment file: %w", err)
	}
	return n, nil
}

// ReadAndEncode reads the whole file into memory and base64-encodes it.
func (p *Pipeline) ReadAndEncode(f *TransientFile) (string, error) {
	data, err := afero.ReadFile(p.fs, f.Path)
	if err != nil {
		return "", fmt.Errorf("reading attachment: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Release deletes the file and its directory. Calling it more than once
// returns the result of the first call.
func (p *Pipeline) Release(f *TransientFile) error {
	if f == nil {
		return nil
	}
	f.once.Do(func() {
		err := p.fs.Remove(f.Path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			f.released = fmt.Errorf("deleting attachment: %w", err)
			return
		}
		if err := p.fs.RemoveAll(f.dir); err != nil {
			f.released = fmt.Errorf("deleting attachment dir: %w", err)
			return
		}
		p.logger.Info("attachment deleted", "path", f.Path)
	})
	return f.released
}

// Use fetches url, hands the encoded contents to fn and always releases the
// file before returning. Release failures are logged, never returned, so they
// cannot mask fn's result.
func (p *Pipeline) Use(ctx context.Context, url, filename string, fn func(encoded string) error) error {
	f, err := p.Fetch(ctx, url, filename)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := p.Release(f); rerr != nil {
			p.logger.Error("attachment cleanup failed", "path", f.Path, "error", rerr)
		}
	}()

	encoded, err := p.ReadAndEncode(f)
	if err != nil {
		return err
	}
	return fn(encoded)
}

// sanitize keeps only the base name so a hostile filename cannot escape the
// attachment directory.
func sanitize(filename string) string {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == ".." || name == "" {
		return "attachment"
	}
	return name
}
