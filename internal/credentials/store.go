package credentials

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gofrs/flock"
	"github.com/pelletier/go-toml/v2"

	"relicnotify/internal/fileutil"
)

// Entry is one stored credential.
type Entry struct {
	ID          string `toml:"id"`
	Secret      string `toml:"secret"`
	Scope       string `toml:"scope,omitempty"`
	Hostname    string `toml:"hostname,omitempty"`
	Description string `toml:"description,omitempty"`
}

type storeFile struct {
	Credentials []Entry `toml:"credential"`
}

// FileStore keeps credentials in a TOML file. Reads happen on every lookup so
// edits made by concurrent CLI invocations are always visible; writes are
// serialized with an advisory file lock.
type FileStore struct {
	path string
}

// NewFileStore builds a FileStore rooted at path. The file need not exist.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file location.
func (s *FileStore) Path() string { return s.path }

// Resolve finds the credential id visible to scope and usable against
// endpoint. Job-scoped entries shadow global ones; an entry with a hostname
// only matches requests to that host.
func (s *FileStore) Resolve(_ context.Context, scope Scope, id, endpoint string) (Secret, bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Secret{}, false, nil
	}
	entries, err := s.load()
	if err != nil {
		return Secret{}, false, err
	}

	host := endpointHost(endpoint)
	var global *Entry
	for i := range entries {
		entry := &entries[i]
		if entry.ID != id || entry.Secret == "" {
			continue
		}
		if entry.Hostname != "" && !strings.EqualFold(entry.Hostname, host) {
			continue
		}
		switch {
		case entry.Scope != "" && Scope(entry.Scope) == scope:
			return NewSecret(entry.Secret), true, nil
		case entry.Scope == "" && global == nil:
			global = entry
		}
	}
	if global != nil {
		return NewSecret(global.Secret), true, nil
	}
	return Secret{}, false, nil
}

// List returns the stored entries sorted by id and scope.
func (s *FileStore) List() ([]Entry, error) {
	entries, err := s.load()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].ID != entries[j].ID {
			return entries[i].ID < entries[j].ID
		}
		return entries[i].Scope < entries[j].Scope
	})
	return entries, nil
}

// Put adds entry or replaces the existing entry with the same id, scope, and
// hostname.
func (s *FileStore) Put(entry Entry) error {
	entry.ID = strings.TrimSpace(entry.ID)
	entry.Scope = strings.TrimSpace(entry.Scope)
	entry.Hostname = strings.ToLower(strings.TrimSpace(entry.Hostname))
	entry.Secret = strings.TrimSpace(entry.Secret)
	if entry.ID == "" {
		return errors.New("credential id cannot be empty")
	}
	if entry.Secret == "" {
		return errors.New("credential secret cannot be empty")
	}

	return s.update(func(entries []Entry) ([]Entry, error) {
		for i := range entries {
			if sameSlot(entries[i], entry) {
				entries[i] = entry
				return entries, nil
			}
		}
		return append(entries, entry), nil
	})
}

// Remove deletes every entry with id in scope. It reports whether anything
// was removed.
func (s *FileStore) Remove(id string, scope Scope) (bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return false, errors.New("credential id cannot be empty")
	}
	removed := false
	err := s.update(func(entries []Entry) ([]Entry, error) {
		kept := entries[:0]
		for _, entry := range entries {
			if entry.ID == id && Scope(entry.Scope) == scope {
				removed = true
				continue
			}
			kept = append(kept, entry)
		}
		return kept, nil
	})
	return removed, err
}

func sameSlot(a, b Entry) bool {
	return a.ID == b.ID && a.Scope == b.Scope && strings.EqualFold(a.Hostname, b.Hostname)
}

func (s *FileStore) load() ([]Entry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	var file storeFile
	if err := toml.NewDecoder(bytes.NewReader(data)).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode credentials %s: %w", s.path, err)
	}
	for i := range file.Credentials {
		file.Credentials[i].ID = strings.TrimSpace(file.Credentials[i].ID)
		file.Credentials[i].Scope = strings.TrimSpace(file.Credentials[i].Scope)
		file.Credentials[i].Hostname = strings.TrimSpace(file.Credentials[i].Hostname)
		file.Credentials[i].Secret = strings.TrimSpace(file.Credentials[i].Secret)
	}
	return file.Credentials, nil
}

func (s *FileStore) update(mutate func([]Entry) ([]Entry, error)) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("ensure credentials directory: %w", err)
	}

	lock := flock.New(s.path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock credentials: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	entries, err := s.load()
	if err != nil {
		return err
	}
	entries, err = mutate(entries)
	if err != nil {
		return err
	}

	data, err := toml.Marshal(storeFile{Credentials: entries})
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}

	if err := fileutil.WriteAtomic(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}
