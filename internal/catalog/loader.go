package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/royfox/little-reviews/internal/apperr"
	"github.com/royfox/little-reviews/internal/models"
)

// Status is the load state of a session.
type Status int

const (
	Loading Status = iota
	Ready
	Unavailable
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Unavailable:
		return "unavailable"
	}
	return "unknown"
}

// Source fetches the raw artifact. Implementations return an error wrapping
// os.ErrNotExist when the artifact does not exist.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// FileSource reads the artifact from a local path.
type FileSource struct {
	Path string
}

// Fetch reads the artifact file.
func (s FileSource) Fetch(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", s.Path, err)
	}
	return data, nil
}

// HTTPSource fetches the artifact over HTTP.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

// Fetch GETs the artifact. A 404 is reported as os.ErrNotExist.
func (s HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog: build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog: fetch %s: %w", s.URL, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("catalog: fetch %s: %w", s.URL, os.ErrNotExist)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("catalog: fetch %s: unexpected status %d", s.URL, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("catalog: read body: %w", err)
	}
	return data, nil
}

// Session is the outcome of loading the artifact: the collection plus the
// status the UI renders.
type Session struct {
	Status     Status
	Collection *Collection
	Err        error // set when Status is Unavailable
}

// Records returns the session's records, or apperr.ErrUnavailable when the
// session is not Ready.
func (s *Session) Records() ([]models.Review, error) {
	if s == nil || s.Status != Ready {
		return nil, apperr.ErrUnavailable
	}
	return s.Collection.All(), nil
}

// Loader fetches the artifact exactly once.
type Loader struct {
	source  Source
	once    sync.Once
	done    chan struct{}
	session *Session
}

// NewLoader returns a Loader reading from source.
func NewLoader(source Source) *Loader {
	return &Loader{source: source, done: make(chan struct{})}
}

// Load performs the fetch on the first call and returns the same session
// on every later call. A missing or empty artifact yields a Ready session
// with no records; any other failure yields an Unavailable session.
func (l *Loader) Load(ctx context.Context) *Session {
	l.once.Do(func() {
		l.session = load(ctx, l.source)
		close(l.done)
	})
	return l.session
}

// Current returns the session without blocking: a Loading session until
// the first Load has finished.
func (l *Loader) Current() *Session {
	select {
	case <-l.done:
		return l.session
	default:
		return &Session{Status: Loading}
	}
}

func load(ctx context.Context, src Source) *Session {
	data, err := src.Fetch(ctx)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Session{Status: Ready, Collection: NewCollection(nil)}
		}
		return &Session{Status: Unavailable, Err: err}
	}
	records, err := Decode(data)
	if err != nil {
		return &Session{Status: Unavailable, Err: err}
	}
	return &Session{Status: Ready, Collection: NewCollection(records)}
}

// Decode parses an artifact document. Empty input is an empty artifact.
func Decode(data []byte) ([]models.Review, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var records []models.Review
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("catalog: decode artifact: %w", err)
	}
	return records, nil
}
