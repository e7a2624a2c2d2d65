package store

import (
	"context"
	"io"
	"strings"
	"testing"
)

func TestLocalStoragePutGetDelete(t *testing.T) {
	ctx := context.Background()
	ls, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage failed: %v", err)
	}

	n, err := ls.Put(ctx, "uploads/report.pdf", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if n != 5 {
		t.Errorf("expected 5 bytes written, got %d", n)
	}

	rc, err := ls.Get(ctx, "uploads/report.pdf")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "hello" {
		t.Errorf("expected %q, got %q", "hello", string(data))
	}

	info, err := ls.Stat(ctx, "uploads/report.pdf")
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Size != 5 {
		t.Errorf("expected size 5, got %d", info.Size)
	}
	if info.ContentType != "application/pdf" {
		t.Errorf("expected pdf content type, got %q", info.ContentType)
	}

	if err := ls.Delete(ctx, "uploads/report.pdf"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := ls.Get(ctx, "uploads/report.pdf"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestLocalStorageRejectsEscape(t *testing.T) {
	ctx := context.Background()
	ls, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage failed: %v", err)
	}
	if _, err := ls.Put(ctx, "../outside.txt", strings.NewReader("x")); err == nil {
		t.Fatal("expected error for path escaping storage root")
	}
}
