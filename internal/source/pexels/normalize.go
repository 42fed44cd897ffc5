package pexels

import (
	"strconv"

	"github.com/samber/lo"
	"github.com/timmy/mediagrid/internal/domain"
)

// pageResponse covers the curated, search and popular-videos payloads.
type pageResponse struct {
	Page         int     `json:"page"`
	PerPage      int     `json:"per_page"`
	TotalResults int     `json:"total_results"`
	NextPage     string  `json:"next_page,omitempty"`
	Photos       []photo `json:"photos"`
	Videos       []video `json:"videos"`
	Error        string  `json:"error,omitempty"`
}

type photo struct {
	ID           int64    `json:"id"`
	Width        int      `json:"width"`
	Height       int      `json:"height"`
	URL          string   `json:"url"`
	Photographer string   `json:"photographer"`
	Alt          string   `json:"alt"`
	Src          photoSrc `json:"src"`
}

type photoSrc struct {
	Original string `json:"original"`
	Large    string `json:"large"`
	Medium   string `json:"medium"`
	Small    string `json:"small"`
	Tiny     string `json:"tiny"`
}

type video struct {
	ID         int64       `json:"id"`
	Width      int         `json:"width"`
	Height     int         `json:"height"`
	URL        string      `json:"url"`
	Image      string      `json:"image"`
	User       videoUser   `json:"user"`
	VideoFiles []videoFile `json:"video_files"`
}

type videoUser struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

type videoFile struct {
	ID       int64  `json:"id"`
	Quality  string `json:"quality"`
	FileType string `json:"file_type"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Link     string `json:"link"`
}

func normalizePhotos(resp *pageResponse) []domain.MediaItem {
	return lo.FilterMap(resp.Photos, func(p photo, _ int) (domain.MediaItem, bool) {
		item := domain.MediaItem{
			ID:           formatID(p.ID),
			SourceURL:    p.Src.Original,
			ThumbnailURL: p.Src.Small,
			PageURL:      p.URL,
			Title:        domain.OrDefault(p.Alt, domain.DefaultTitle),
			Attribution:  domain.OrDefault(p.Photographer, domain.DefaultAttribution),
			Width:        p.Width,
			Height:       p.Height,
			Orientation:  domain.OrientationOf(p.Width, p.Height),
			Kind:         domain.MediaKindImage,
			Layout:       domain.DefaultLayout,
		}
		return item, item.SourceURL != "" && item.ThumbnailURL != ""
	})
}

func normalizeVideos(resp *pageResponse) []domain.MediaItem {
	return lo.FilterMap(resp.Videos, func(v video, _ int) (domain.MediaItem, bool) {
		// First variant wins; an empty variant list leaves SourceURL empty.
		link := ""
		if len(v.VideoFiles) > 0 {
			link = v.VideoFiles[0].Link
		}
		item := domain.MediaItem{
			ID:           formatID(v.ID),
			SourceURL:    link,
			ThumbnailURL: v.Image,
			PageURL:      v.URL,
			Title:        domain.OrDefault(v.User.Name, domain.DefaultTitle),
			Attribution:  domain.OrDefault(v.User.Name, domain.DefaultAttribution),
			Width:        v.Width,
			Height:       v.Height,
			Orientation:  domain.OrientationOf(v.Width, v.Height),
			Kind:         domain.MediaKindVideo,
			Layout:       domain.DefaultLayout,
		}
		return item, item.ThumbnailURL != ""
	})
}

func formatID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}
