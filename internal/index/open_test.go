package index

import (
	"context"
	"errors"
	"testing"

	"github.com/nao1215/sitesearch/internal/model"
)

func TestParseBackend(t *testing.T) {
	t.Parallel()

	for _, b := range Backends() {
		got, err := ParseBackend(string(b))
		if err != nil || got != b {
			t.Errorf("ParseBackend(%q) = %q, %v", b, got, err)
		}
	}
	if got, _ := ParseBackend(" SQLite "); got != BackendSQLite {
		t.Errorf("ParseBackend is case sensitive: %q", got)
	}
	if _, err := ParseBackend("elastic"); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("ParseBackend(elastic) error = %v, want ErrUnknownBackend", err)
	}
}

func TestCreateAndOpen(t *testing.T) {
	t.Parallel()

	for _, backend := range []Backend{BackendSQLite, BackendBleve} {
		t.Run(string(backend), func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			dir := t.TempDir()

			if _, err := Open(backend, dir); !errors.Is(err, ErrIndexNotFound) {
				t.Fatalf("Open() on empty dir error = %v, want ErrIndexNotFound", err)
			}
			if Exists(backend, dir) {
				t.Fatal("Exists() = true before create")
			}

			s, err := Create(backend, dir, CreateOptions{})
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			populate(t, s)
			if err := s.Close(); err != nil {
				t.Fatalf("Close() error = %v", err)
			}

			if !Exists(backend, dir) {
				t.Fatal("Exists() = false after commit")
			}

			if _, err := Create(backend, dir, CreateOptions{}); !errors.Is(err, ErrIndexExists) {
				t.Fatalf("Create() over existing index error = %v, want ErrIndexExists", err)
			}

			r, err := Open(backend, dir)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			got, err := r.Search(ctx, ParseQuery("biology", model.ModeAll))
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if len(got) != 2 {
				t.Errorf("Search() after reopen = %v, want 2 documents", urls(got))
			}
			if err := r.Add(ctx, model.Document{URL: "http://example.test/x"}); !errors.Is(err, ErrSealed) {
				t.Errorf("Add() on reopened index error = %v, want ErrSealed", err)
			}
			if err := r.Close(); err != nil {
				t.Fatalf("Close() error = %v", err)
			}

			fresh, err := Create(backend, dir, CreateOptions{Force: true})
			if err != nil {
				t.Fatalf("Create(force) error = %v", err)
			}
			if err := fresh.Commit(ctx); err != nil {
				t.Fatalf("Commit() error = %v", err)
			}
			if n, _ := fresh.Count(ctx); n != 0 {
				t.Errorf("Count() after forced rebuild = %d, want 0", n)
			}
			_ = fresh.Close()
		})
	}
}

func TestOpenMemory(t *testing.T) {
	t.Parallel()

	if _, err := Open(BackendMemory, t.TempDir()); !errors.Is(err, ErrIndexNotFound) {
		t.Errorf("Open(memory) error = %v, want ErrIndexNotFound", err)
	}
}

func TestUncommittedIndexIsAbsent(t *testing.T) {
	t.Parallel()

	for _, backend := range []Backend{BackendSQLite, BackendBleve} {
		t.Run(string(backend), func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			dir := t.TempDir()

			s, err := Create(backend, dir, CreateOptions{})
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			if err := s.Add(ctx, testDocs[0]); err != nil {
				t.Fatalf("Add() error = %v", err)
			}
			if err := s.Close(); err != nil {
				t.Fatalf("Close() error = %v", err)
			}

			if Exists(backend, dir) {
				t.Error("Exists() = true for an index that was never committed")
			}
			if _, err := Open(backend, dir); !errors.Is(err, ErrIndexNotFound) {
				t.Errorf("Open() error = %v, want ErrIndexNotFound", err)
			}

			// A later crawl replaces the leftover store without --force.
			fresh, err := Create(backend, dir, CreateOptions{})
			if err != nil {
				t.Fatalf("Create() over uncommitted index error = %v", err)
			}
			populate(t, fresh)
			if err := fresh.Close(); err != nil {
				t.Fatalf("Close() error = %v", err)
			}

			r, err := Open(backend, dir)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			defer r.Close()
			if n, _ := r.Count(ctx); n != len(testDocs) {
				t.Errorf("Count() = %d, want %d", n, len(testDocs))
			}
		})
	}
}

func TestSQLiteSessions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()

	s, err := CreateSQLite(dir, CreateOptions{SessionID: "session-1"})
	if err != nil {
		t.Fatalf("CreateSQLite() error = %v", err)
	}
	populate(t, s)

	sessions, err := s.Sessions(ctx)
	if err != nil {
		t.Fatalf("Sessions() error = %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("Sessions() returned %d sessions, want 1", len(sessions))
	}
	if sessions[0].ID != "session-1" || sessions[0].Documents != len(testDocs) {
		t.Errorf("Sessions()[0] = %+v", sessions[0])
	}
	if sessions[0].CommittedAt.IsZero() {
		t.Error("CommittedAt was not parsed")
	}
	_ = s.Close()
}
