// Package storage persists uploaded documents and exported presentation
// artifacts on local disk, with an optional object-store backend for shared
// assets.
package storage

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"slideforge/internal/config"
)

var (
	unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)
	// 导出文件名的固定模式：deck_日期_时间_主题.扩展名
	exportNameRe = regexp.MustCompile(`^deck_\d{8}_\d{6}_[A-Za-z0-9_-]+\.(txt|pptx)$`)
)

// LocalStore keeps uploads/ and exports/ under one configured root.
type LocalStore struct {
	uploadsDir     string
	exportsDir     string
	maxUploadBytes int64
	logger         *slog.Logger
}

func NewLocalStore(cfg config.StorageConfig, logger *slog.Logger) (*LocalStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	root := cfg.Dir
	if root == "" {
		root = "./storage"
	}
	uploads := filepath.Join(root, "uploads")
	exports := filepath.Join(root, "exports")
	for _, dir := range []string{uploads, exports} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir %q: %w", dir, err)
		}
	}
	maxBytes := int64(cfg.MaxUploadMB) * 1024 * 1024
	if maxBytes <= 0 {
		maxBytes = 20 * 1024 * 1024
	}
	return &LocalStore{
		uploadsDir:     uploads,
		exportsDir:     exports,
		maxUploadBytes: maxBytes,
		logger:         logger,
	}, nil
}

func (s *LocalStore) UploadsDir() string { return s.uploadsDir }
func (s *LocalStore) ExportsDir() string { return s.exportsDir }

// SanitizeName strips any path components and unsafe characters from a
// client-supplied filename.
func SanitizeName(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	name = unsafeNameChars.ReplaceAllString(name, "_")
	if name == "" || name == "." || name == ".." {
		name = "upload"
	}
	return name
}

// SaveUpload streams the document to disk under an id-prefixed name. The size
// cap is enforced on the actual bytes written, not on any declared length;
// oversize uploads are removed and reported as ErrTooLarge.
func (s *LocalStore) SaveUpload(name string, r io.Reader) (string, int64, error) {
	stored := uuid.NewString()[:8] + "_" + SanitizeName(name)
	path := filepath.Join(s.uploadsDir, stored)

	f, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("create upload %q: %w", stored, err)
	}

	// Read one byte past the cap so an exactly-at-limit file still passes.
	written, err := io.Copy(f, io.LimitReader(r, s.maxUploadBytes+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return "", 0, fmt.Errorf("write upload %q: %w", stored, err)
	}
	if written > s.maxUploadBytes {
		os.Remove(path)
		return "", 0, ErrTooLarge
	}
	return path, written, nil
}

// WriteExport stores a rendered artifact under its stamped name and returns
// the full path.
func (s *LocalStore) WriteExport(name string, data []byte) (string, error) {
	if !exportNameRe.MatchString(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, name)
	}
	path := filepath.Join(s.exportsDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write export %q: %w", name, err)
	}
	return path, nil
}

// ResolveExport maps a requested download filename to a real path inside the
// exports directory. The name pattern is checked before any filesystem
// access, and the resolved path (symlinks included) must stay confined.
func (s *LocalStore) ResolveExport(name string) (string, error) {
	if !exportNameRe.MatchString(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, name)
	}

	base, err := filepath.EvalSymlinks(s.exportsDir)
	if err != nil {
		return "", fmt.Errorf("resolve exports dir: %w", err)
	}
	path := filepath.Join(s.exportsDir, name)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("stat export %q: %w", name, err)
	}
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", fmt.Errorf("resolve export %q: %w", name, err)
	}
	if resolved != base && !strings.HasPrefix(resolved, base+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %q escapes exports dir", ErrInvalidPath, name)
	}
	if resolved == base {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, name)
	}
	return resolved, nil
}
