package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
)

// RemotePrefix marks a source that is fetched instead of read from disk.
const RemotePrefix = "https://"

// ErrNotSource is returned for local paths without the program extension.
var ErrNotSource = errors.New("not a " + Extension + " file")

// Fetcher retrieves a remote source.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// HTTPFetcher fetches sources with GET, retrying transport failures and
// server errors with exponential backoff.
type HTTPFetcher struct {
	Client   *http.Client
	Attempts uint64
	Backoff  time.Duration
}

// NewHTTPFetcher returns a fetcher making at most three attempts. A nil
// client means http.DefaultClient.
func NewHTTPFetcher(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{Client: client, Attempts: 3, Backoff: 200 * time.Millisecond}
}

// Fetch returns the response body of url.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	attempts, base := f.Attempts, f.Backoff
	if attempts == 0 {
		attempts = 1
	}
	if base <= 0 {
		base = 200 * time.Millisecond
	}
	b := retry.WithMaxRetries(attempts-1, retry.NewExponential(base))

	body, err := retry.DoValue(ctx, b, func(ctx context.Context) (string, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return "", err
		}
		resp, err := f.Client.Do(req)
		if err != nil {
			return "", retry.RetryableError(err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode >= http.StatusInternalServerError {
			return "", retry.RetryableError(fmt.Errorf("unexpected status %s", resp.Status))
		}
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("unexpected status %s", resp.Status)
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", retry.RetryableError(err)
		}
		return string(data), nil
	})
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	return body, nil
}

// IsRemote reports whether path names a remote source.
func IsRemote(path string) bool {
	return strings.HasPrefix(path, RemotePrefix)
}

// ReadSource returns the program text behind path. Remote paths are
// fetched; local paths must carry the program extension.
func (r *Runner) ReadSource(ctx context.Context, path string) (string, error) {
	if IsRemote(path) {
		return r.fetcher.Fetch(ctx, path)
	}
	if filepath.Ext(path) != Extension {
		return "", fmt.Errorf("%s: %w", path, ErrNotSource)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// LoadSources expands paths into program sources. Directories are walked
// recursively and contribute their program files in lexical order. Remote
// paths pass through unchanged, and other files are kept only if they
// carry the program extension.
func LoadSources(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		if IsRemote(p) {
			out = append(out, p)
			continue
		}
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if filepath.Ext(p) == Extension {
				out = append(out, p)
			}
			continue
		}

		var found []string
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && filepath.Ext(path) == Extension {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", p, err)
		}
		sort.Strings(found)
		out = append(out, found...)
	}
	return out, nil
}

// testFiles lists the program files directly inside dir, sorted by name.
func testFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != Extension {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}
