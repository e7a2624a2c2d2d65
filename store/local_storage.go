package store

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// BlobInfo describes a stored blob.
type BlobInfo struct {
	Name        string
	Size        int64
	ModTime     time.Time
	ContentType string
}

// BlobStorage abstracts where uploaded file bytes live.
type BlobStorage interface {
	Put(ctx context.Context, name string, r io.Reader) (int64, error)
	Get(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
	Stat(ctx context.Context, name string) (BlobInfo, error)
}

// LocalStorage implements BlobStorage backed by the local filesystem.
type LocalStorage struct {
	root string
}

// NewLocalStorage creates a new LocalStorage rooted at the given directory.
// The directory is created if it does not exist.
func NewLocalStorage(root string) (*LocalStorage, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root path: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create root directory: %w", err)
	}
	return &LocalStorage{root: abs}, nil
}

// Root returns the absolute root path.
func (l *LocalStorage) Root() string {
	return l.root
}

// resolve converts a storage name to an absolute filesystem path,
// ensuring the result stays within the root directory.
func (l *LocalStorage) resolve(name string) (string, error) {
	clean := filepath.Clean(name)
	abs := filepath.Join(l.root, clean)
	// Prevent path traversal
	if !strings.HasPrefix(abs, l.root) {
		return "", fmt.Errorf("path %q escapes storage root", name)
	}
	return abs, nil
}

func (l *LocalStorage) Put(_ context.Context, name string, r io.Reader) (int64, error) {
	abs, err := l.resolve(name)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return 0, fmt.Errorf("create parent directories: %w", err)
	}
	f, err := os.Create(abs)
	if err != nil {
		return 0, fmt.Errorf("create file: %w", err)
	}
	defer f.Close()
	n, err := io.Copy(f, r)
	if err != nil {
		return n, fmt.Errorf("write file: %w", err)
	}
	return n, nil
}

func (l *LocalStorage) Get(_ context.Context, name string) (io.ReadCloser, error) {
	abs, err := l.resolve(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

func (l *LocalStorage) Delete(_ context.Context, name string) error {
	abs, err := l.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

func (l *LocalStorage) Stat(_ context.Context, name string) (BlobInfo, error) {
	abs, err := l.resolve(name)
	if err != nil {
		return BlobInfo{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return BlobInfo{}, ErrNotFound
		}
		return BlobInfo{}, fmt.Errorf("stat file: %w", err)
	}
	return BlobInfo{
		Name:        info.Name(),
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		ContentType: detectContentType(info.Name()),
	}, nil
}

// detectContentType returns a MIME type based on file extension.
func detectContentType(name string) string {
	ext := filepath.Ext(name)
	if ext == "" {
		return ""
	}
	return mime.TypeByExtension(ext)
}
