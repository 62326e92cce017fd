package artifact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Reader loads descriptors by contract name.
type Reader interface {
	Load(ctx context.Context, name string) (*Descriptor, error)
}

// Store reads and writes descriptors.
type Store interface {
	Reader
	Save(ctx context.Context, d *Descriptor) error
	List(ctx context.Context) ([]string, error)
}

// FileStore keeps one JSON file per contract in a directory.
type FileStore struct {
	dir string
}

// NewFileStore returns a store rooted at dir. The directory is created on
// first save.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Dir returns the directory descriptors are written to.
func (s *FileStore) Dir() string {
	return s.dir
}

// Path returns the file a descriptor with name is stored in.
func (s *FileStore) Path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// Save writes d to <dir>/<name>.json, replacing any previous descriptor.
func (s *FileStore) Save(_ context.Context, d *Descriptor) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if err := checkName(d.Name); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	raw, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", d.Name, err)
	}
	tmp := s.Path(d.Name) + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", d.Name, err)
	}
	return os.Rename(tmp, s.Path(d.Name))
}

// Load reads the descriptor stored under name.
func (s *FileStore) Load(_ context.Context, name string) (*Descriptor, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(s.Path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, err
	}
	return decode(name, raw)
}

// List returns the names of the stored descriptors in sorted order.
func (s *FileStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

// HTTPReader loads descriptors published under a base URL, such as
// http://localhost:8545/artifacts.
type HTTPReader struct {
	base   *url.URL
	client *http.Client
}

// NewHTTPReader returns a reader for descriptors under baseURL.
func NewHTTPReader(baseURL string, client *http.Client) (*HTTPReader, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid artifact url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid artifact url %q: scheme must be http or https", baseURL)
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPReader{base: u, client: client}, nil
}

// Load fetches <base>/<name>.json.
func (r *HTTPReader) Load(ctx context.Context, name string) (*Descriptor, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	target := r.base.JoinPath(name + ".json")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", name, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	default:
		return nil, fmt.Errorf("fetch %s: unexpected status %d", name, resp.StatusCode)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return decode(name, raw)
}

// NewReader returns an HTTPReader when location is a URL and a FileStore otherwise.
func NewReader(location string) (Reader, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return NewHTTPReader(location, nil)
	}
	return NewFileStore(location), nil
}

func decode(name string, raw []byte) (*Descriptor, error) {
	var d Descriptor
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

func checkName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
