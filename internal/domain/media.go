package domain

import "fmt"

const (
	// DefaultTitle is used when the provider record carries no title.
	DefaultTitle = "Untitled"
	// DefaultAttribution is used when the provider record carries no author.
	DefaultAttribution = "Unknown"
)

// Orientation describes the aspect of a media item.
// Values include OrientationLandscape and OrientationPortrait.
type Orientation string

const (
	OrientationLandscape Orientation = "landscape"
	OrientationPortrait  Orientation = "portrait"
)

// OrientationOf returns landscape iff width > height. Square items are portrait.
// Parameters:
//   - width: item width in pixels.
//   - height: item height in pixels.
// Returns:
//   - Orientation: derived orientation.
func OrientationOf(width, height int) Orientation {
	if width > height {
		return OrientationLandscape
	}
	return OrientationPortrait
}

// MediaKind represents the type of asset behind a media item.
// Values include MediaKindImage and MediaKindVideo.
type MediaKind string

const (
	MediaKindImage MediaKind = "image"
	MediaKindVideo MediaKind = "video"
)

// LayoutHint is a grid-span hint for the gallery renderer.
type LayoutHint struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// DefaultLayout is the single-cell span every item starts with.
var DefaultLayout = LayoutHint{Rows: 1, Cols: 1}

// MediaItem is a provider-agnostic gallery record.
// SourceURL and ThumbnailURL are filled for every image; videos whose
// provider listed no playable variant keep an empty SourceURL.
type MediaItem struct {
	ID           string      `json:"id,omitempty"`
	SourceURL    string      `json:"source_url"`
	ThumbnailURL string      `json:"thumbnail_url"`
	PageURL      string      `json:"page_url,omitempty"`
	Title        string      `json:"title"`
	Attribution  string      `json:"attribution"`
	Width        int         `json:"width"`
	Height       int         `json:"height"`
	Orientation  Orientation `json:"orientation"`
	Kind         MediaKind   `json:"kind"`
	Layout       LayoutHint  `json:"layout"`
}

// SrcSet holds the responsive image attributes for a thumbnail.
type SrcSet struct {
	Src    string `json:"src"`
	SrcSet string `json:"srcset"`
}

// BuildSrcSet renders crop-sized thumbnail URLs for a grid cell of the given span.
// Parameters:
//   - image: base image URL.
//   - size: cell size in pixels.
//   - rows: rows spanned by the cell.
//   - cols: columns spanned by the cell.
// Returns:
//   - SrcSet: 1x source and 2x srcset string.
func BuildSrcSet(image string, size, rows, cols int) SrcSet {
	params := fmt.Sprintf("w=%d&h=%d&fit=crop&auto=format", size*cols, size*rows)
	return SrcSet{
		Src:    image + "?" + params,
		SrcSet: image + "?" + params + "&dpr=2 2x",
	}
}

// SrcSet returns responsive thumbnail attributes using the item's layout hint.
func (m MediaItem) SrcSet(size int) SrcSet {
	layout := m.Layout
	if layout.Rows <= 0 || layout.Cols <= 0 {
		layout = DefaultLayout
	}
	return BuildSrcSet(m.ThumbnailURL, size, layout.Rows, layout.Cols)
}

// OrDefault returns value unless it is empty, in which case fallback is returned.
func OrDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
