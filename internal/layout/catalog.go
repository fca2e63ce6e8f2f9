package layout

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
)

// Catalog is the process-wide layout library handle. Readers get an immutable
// snapshot; reloads swap the whole snapshot atomically so a concurrent reader
// never observes a half-updated library. A reload happens on explicit request
// or when the backing file's mtime changes, checked at the start of each
// operation that needs the library.
type Catalog struct {
	path   string
	logger *slog.Logger

	mu    sync.Mutex // serializes reloads
	mtime int64      // unix nanos of the snapshot's source file, 0 for embedded
	snap  atomic.Pointer[Library]
}

// NewCatalog builds a catalog backed by the JSON file at path. An empty path
// or a missing file falls back to the embedded default library.
func NewCatalog(path string, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Catalog{path: path, logger: logger}
	c.snap.Store(defaultLibrary())
	if path != "" {
		if err := c.Reload(); err != nil {
			logger.Warn("layout catalog load failed, using embedded defaults",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
		}
	}
	return c
}

// Library returns the current snapshot, reloading first if the backing file
// changed on disk.
func (c *Catalog) Library() *Library {
	c.maybeReload()
	return c.snap.Load()
}

// Reload re-reads the backing file and swaps the snapshot. Without a backing
// file it restores the embedded defaults.
func (c *Catalog) Reload() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.path == "" {
		c.snap.Store(defaultLibrary())
		return nil
	}

	info, err := os.Stat(c.path)
	if err != nil {
		return fmt.Errorf("stat layout library: %w", err)
	}
	lib, err := loadLibraryFile(c.path)
	if err != nil {
		return err
	}
	c.snap.Store(lib)
	c.mtime = info.ModTime().UnixNano()
	return nil
}

func (c *Catalog) maybeReload() {
	if c.path == "" {
		return
	}
	info, err := os.Stat(c.path)
	if err != nil {
		return // keep serving the current snapshot
	}
	c.mu.Lock()
	stale := info.ModTime().UnixNano() != c.mtime
	c.mu.Unlock()
	if !stale {
		return
	}
	if err := c.Reload(); err != nil {
		c.logger.Warn("layout catalog reload failed, keeping previous snapshot",
			slog.String("path", c.path),
			slog.String("error", err.Error()),
		)
	}
}

func loadLibraryFile(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout library: %w", err)
	}
	var lib Library
	if err := json.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("decode layout library: %w", err)
	}
	if len(lib.Items) == 0 {
		return nil, fmt.Errorf("layout library %q has no items", path)
	}
	for i := range lib.Items {
		if lib.Items[i].ID == "" {
			return nil, fmt.Errorf("layout library %q: item %d has no id", path, i)
		}
	}
	if lib.Page == 0 {
		lib.Page = 1
	}
	if lib.PageSize == 0 {
		lib.PageSize = 100
	}
	lib.Total = len(lib.Items)
	return &lib, nil
}

// defaultLibrary returns the built-in layout set. A fresh copy is built per
// call so a swapped-in snapshot is never aliased by later mutation.
func defaultLibrary() *Library {
	return &Library{
		Items: []Item{
			{
				ID:         "title_bullets_left",
				Name:       "Title + Bullets (Left)",
				Supports:   Supports{TextMin: 1, TextMax: 12, ImagesMin: 0, ImagesMax: 1},
				Weight:     0.95,
				PreviewURL: "/static/layouts/title_bullets_left.png",
				Frames: map[string]FrameList{
					"title":   {{X: 80, Y: 64, W: 1120, H: 80}},
					"bullets": {{X: 80, Y: 170, W: 720, H: 360}},
					"images":  {{X: 840, Y: 200, W: 360, H: 240}},
				},
				Style: map[string]any{
					"title": map[string]any{"font": "Inter", "size": 36, "weight": 700},
				},
			},
			{
				ID:         "title_image_right",
				Name:       "Title + Image (Right)",
				Supports:   Supports{TextMin: 0, TextMax: 6, ImagesMin: 1, ImagesMax: 1},
				Weight:     0.90,
				PreviewURL: "/static/layouts/title_image_right.png",
				Frames: map[string]FrameList{
					"title":  {{X: 80, Y: 64, W: 720, H: 80}},
					"images": {{X: 840, Y: 140, W: 360, H: 360}},
				},
				Style: map[string]any{
					"title": map[string]any{"font": "Inter", "size": 36, "weight": 700},
				},
			},
			{
				ID:         "two_col_text_image",
				Name:       "Two Columns (Text + Image)",
				Supports:   Supports{TextMin: 1, TextMax: 10, ImagesMin: 1, ImagesMax: 2},
				Weight:     0.85,
				PreviewURL: "/static/layouts/two_col_text_image.png",
				Frames: map[string]FrameList{
					"title":   {{X: 80, Y: 64, W: 1120, H: 80}},
					"bullets": {{X: 80, Y: 170, W: 540, H: 360}},
					"images":  {{X: 660, Y: 170, W: 540, H: 360}},
				},
				Style: map[string]any{
					"title": map[string]any{"font": "Inter", "size": 36, "weight": 700},
				},
			},
		},
		Page:     1,
		PageSize: 100,
		Total:    3,
	}
}
