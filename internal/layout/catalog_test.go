package layout

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testLibraryJSON = `{
  "items": [
    {
      "id": "single",
      "name": "Single",
      "supports": {"text_min": 1, "text_max": 4, "images_min": 0, "images_max": 0},
      "weight": 1.0,
      "frames": {
        "title": {"x": 10, "y": 10, "w": 600, "h": 60},
        "bullets": [{"x": 10, "y": 90, "w": 600, "h": 300}]
      }
    }
  ]
}`

func writeLibrary(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCatalogFallsBackToEmbeddedDefaults(t *testing.T) {
	c := NewCatalog("", nil)
	lib := c.Library()
	if len(lib.Items) != 3 {
		t.Fatalf("embedded library has %d items, want 3", len(lib.Items))
	}
	if lib.Find("title_bullets_left") == nil {
		t.Error("embedded library missing title_bullets_left")
	}
}

func TestCatalogLoadsFileAndNormalizesFrames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layouts.json")
	writeLibrary(t, path, testLibraryJSON)

	c := NewCatalog(path, nil)
	lib := c.Library()
	if lib.Total != 1 {
		t.Fatalf("total = %d, want 1", lib.Total)
	}

	it := lib.Find("single")
	if it == nil {
		t.Fatal("item not found")
	}
	// "title" was written as a bare object; it must still decode as a list.
	f, ok := it.FirstFrame("title")
	if !ok {
		t.Fatal("title frame missing")
	}
	if f.W != 600 || f.H != 60 {
		t.Errorf("title frame = %+v", f)
	}
}

func TestCatalogReloadOnMtimeChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layouts.json")
	writeLibrary(t, path, testLibraryJSON)

	c := NewCatalog(path, nil)
	if c.Library().Find("single") == nil {
		t.Fatal("initial load failed")
	}

	updated := `{"items": [{"id": "replaced", "name": "R", "supports": {"text_min": 0, "text_max": 1, "images_min": 0, "images_max": 0}, "weight": 1.0, "frames": {}}]}`
	writeLibrary(t, path, updated)
	// Push the mtime forward explicitly; some filesystems have coarse clocks.
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatal(err)
	}

	lib := c.Library()
	if lib.Find("replaced") == nil {
		t.Error("catalog did not pick up the on-disk change")
	}
	if lib.Find("single") != nil {
		t.Error("stale snapshot still served after reload")
	}
}

func TestCatalogKeepsSnapshotOnBrokenReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layouts.json")
	writeLibrary(t, path, testLibraryJSON)

	c := NewCatalog(path, nil)
	writeLibrary(t, path, "{not json")
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatal(err)
	}

	lib := c.Library()
	if lib.Find("single") == nil {
		t.Error("previous snapshot should survive a broken reload")
	}
}
