package pagestore

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/hnakae/lstore/internal/page"
)

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	path := s.PagePath("grades", true, 2, 0)
	if filepath.Dir(path) != filepath.Join(dir, "grades", "base") {
		t.Fatalf("unexpected path: %s", path)
	}

	p := page.New()
	if err := p.Write(99); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := s.WritePageBytes(path, p.ToBytes()); err != nil {
		t.Fatalf("WritePageBytes: %v", err)
	}

	raw, err := s.ReadPageBytes(path)
	if err != nil {
		t.Fatalf("ReadPageBytes: %v", err)
	}
	if len(raw) != page.Size {
		t.Fatalf("expected %d bytes, got %d", page.Size, len(raw))
	}
}

func TestReadPageBytesAbsent(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	path := s.PagePath("grades", false, 0, 0)

	_, err := s.ReadPageBytes(path)
	if !errors.Is(err, ErrAbsent) {
		t.Fatalf("expected ErrAbsent, got %v", err)
	}
}
