// Package history persists surfaced findings in a local JSON file.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"buckettool/pkg/core"
)

// ErrNoHistory is returned when the history file does not exist yet.
var ErrNoHistory = errors.New("history: no history file")

// Source tells how a finding was discovered
type Source string

const (
	Passive Source = "passive"
	Active  Source = "active"
)

// Entry is one stored finding
type Entry struct {
	ID       string           `json:"id"`
	URL      string           `json:"url"`
	Type     core.FindingType `json:"type"`
	Vendor   core.Vendor      `json:"vendor"`
	Time     time.Time        `json:"time"`
	Request  string           `json:"request"`
	Response string           `json:"response"`
	Source   Source           `json:"source"`
}

// Store is a JSON file of entries, newest first. It is safe for concurrent use
// within one process.
type Store struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

func NewStore(path string) *Store {
	return &Store{path: path, now: time.Now}
}

func (s *Store) Path() string {
	return s.path
}

// Record stores every finding of target not already known for the same host,
// vendor and type. Userinfo is dropped from the stored URL. It returns the
// newly added entries.
func (s *Store) Record(target string, findings []core.Finding, source Source) ([]Entry, error) {
	if len(findings) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil && !errors.Is(err, ErrNoHistory) {
		return nil, err
	}

	target = withoutUserinfo(target)
	host := hostOf(target)
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		seen[key(hostOf(e.URL), e.Vendor, e.Type)] = true
	}

	var added []Entry
	for _, f := range findings {
		if !f.Found {
			continue
		}
		k := key(host, f.Vendor, f.Type)
		if seen[k] {
			continue
		}
		seen[k] = true
		added = append(added, Entry{
			ID:       uuid.NewString(),
			URL:      target,
			Type:     f.Type,
			Vendor:   f.Vendor,
			Time:     s.now().UTC(),
			Request:  f.Request,
			Response: f.Response,
			Source:   source,
		})
	}
	if len(added) == 0 {
		return nil, nil
	}

	// each new entry is prepended in turn
	merged := make([]Entry, 0, len(added)+len(entries))
	for i := len(added) - 1; i >= 0; i-- {
		merged = append(merged, added[i])
	}
	merged = append(merged, entries...)

	if err := s.write(merged); err != nil {
		return nil, err
	}
	return added, nil
}

// List returns all entries, newest first. A missing file is an empty history.
func (s *Store) List() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if errors.Is(err, ErrNoHistory) {
		return []Entry{}, nil
	}
	return entries, err
}

// Clear removes every entry.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write([]Entry{})
}

func (s *Store) read() ([]Entry, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoHistory
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return []Entry{}, nil
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse history %s: %w", s.path, err)
	}
	return entries, nil
}

func (s *Store) write(entries []Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".history-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace history: %w", err)
	}
	return nil
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return strings.ToLower(u.Hostname())
}

func key(host string, v core.Vendor, t core.FindingType) string {
	return host + "|" + v.String() + "|" + string(t)
}

func withoutUserinfo(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	u.User = nil
	return u.String()
}
