package assets

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Source is somewhere asset files can be read from. Paths are slash
// separated and relative to the source root.
type Source interface {
	Read(ctx context.Context, path string) ([]byte, error)
	String() string
}

// NewSource picks a source for location: an http(s) URL is fetched over
// HTTP, anything else is a local directory.
func NewSource(location string, timeout time.Duration) Source {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return NewHTTPSource(location, &http.Client{Timeout: timeout})
	}
	return NewDirSource(location)
}

// HTTPSource reads files below a base URL.
type HTTPSource struct {
	base   string
	client *http.Client
}

// NewHTTPSource returns a source rooted at base. A nil client uses
// http.DefaultClient.
func NewHTTPSource(base string, client *http.Client) *HTTPSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSource{base: base, client: client}
}

func (s *HTTPSource) Read(ctx context.Context, path string) ([]byte, error) {
	u, err := url.JoinPath(s.base, path)
	if err != nil {
		return nil, fmt.Errorf("building url for %s: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", u, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func (s *HTTPSource) String() string {
	return s.base
}

// DirSource reads files from a local directory.
type DirSource struct {
	root string
	fsys fs.FS
}

// NewDirSource returns a source rooted at dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{root: dir, fsys: os.DirFS(dir)}
}

// NewFSSource serves files from an existing filesystem.
func NewFSSource(name string, fsys fs.FS) *DirSource {
	return &DirSource{root: name, fsys: fsys}
}

func (s *DirSource) Read(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return fs.ReadFile(s.fsys, strings.TrimPrefix(path, "/"))
}

func (s *DirSource) String() string {
	return s.root
}
