// Package layout owns the layout template catalog and the content-fit
// selector used by the editor builder.
package layout

import (
	"encoding/json"
	"fmt"
)

// Frame is an axis-aligned rectangle in page-pixel coordinates.
type Frame struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Empty reports whether the frame has no drawable area.
func (f Frame) Empty() bool {
	return f.W <= 0 || f.H <= 0
}

// FrameList is an ordered list of frames for one region. Catalog files may
// write a single frame object or an array; both decode into a list so the
// rest of the code sees exactly one shape. The first element is the primary
// placement.
type FrameList []Frame

// UnmarshalJSON accepts either a frame object or an array of frames.
func (fl *FrameList) UnmarshalJSON(data []byte) error {
	var many []Frame
	if err := json.Unmarshal(data, &many); err == nil {
		*fl = many
		return nil
	}
	var one Frame
	if err := json.Unmarshal(data, &one); err != nil {
		return fmt.Errorf("frame list: %w", err)
	}
	*fl = FrameList{one}
	return nil
}

// Supports bounds the content a layout can host.
type Supports struct {
	TextMin   int `json:"text_min"`
	TextMax   int `json:"text_max"`
	ImagesMin int `json:"images_min"`
	ImagesMax int `json:"images_max"`
}

// Item is one layout template. Frames maps region names ("title", "bullets",
// "images") to ordered placement rectangles.
type Item struct {
	ID         string               `json:"id"`
	Name       string               `json:"name"`
	Supports   Supports             `json:"supports"`
	Weight     float64              `json:"weight"`
	PreviewURL string               `json:"preview_url,omitempty"`
	Frames     map[string]FrameList `json:"frames"`
	Style      map[string]any       `json:"style,omitempty"`
}

// FirstFrame returns the primary frame for a region, if the region exists.
func (it *Item) FirstFrame(region string) (Frame, bool) {
	frames, ok := it.Frames[region]
	if !ok || len(frames) == 0 {
		return Frame{}, false
	}
	return frames[0], true
}

// Library is an ordered layout collection plus pagination metadata.
type Library struct {
	Items    []Item `json:"items"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Total    int    `json:"total"`
}

// Find returns the item with the given id, or nil.
func (l *Library) Find(id string) *Item {
	if id == "" {
		return nil
	}
	for i := range l.Items {
		if l.Items[i].ID == id {
			return &l.Items[i]
		}
	}
	return nil
}
