package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownCategory is returned when a category name does not match any gallery category.
var ErrUnknownCategory = errors.New("unknown category")

// Category is a media grouping with its own pagination state.
// Values include CategoryImages, CategoryVideos, and CategoryDigitalArt.
type Category string

const (
	CategoryImages     Category = "images"
	CategoryVideos     Category = "videos"
	CategoryDigitalArt Category = "digital-art"
)

// Categories lists every gallery category in navigation order.
var Categories = []Category{CategoryImages, CategoryVideos, CategoryDigitalArt}

// ParseCategory resolves a category name, case-insensitively.
// "digital art" and "digital_art" are accepted as spellings of digital-art.
// Parameters:
//   - name: raw category name.
// Returns:
//   - Category: resolved category.
//   - error: wraps ErrUnknownCategory if the name is not recognized.
func ParseCategory(name string) (Category, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = strings.NewReplacer(" ", "-", "_", "-").Replace(normalized)

	for _, c := range Categories {
		if string(c) == normalized {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, name)
}

// Kind returns the kind of media items served for the category.
func (c Category) Kind() MediaKind {
	if c == CategoryVideos {
		return MediaKindVideo
	}
	return MediaKindImage
}

// Label returns the navigation label of the category.
func (c Category) Label() string {
	switch c {
	case CategoryImages:
		return "Images"
	case CategoryVideos:
		return "Videos"
	case CategoryDigitalArt:
		return "Digital Art"
	}
	return string(c)
}

func (c Category) String() string {
	return string(c)
}
