package nasapuff

import (
	"net/url"
	"path"
	"strings"
)

// ApodModel is one Astronomy Picture of the Day record as returned by the APOD API.
// Only URL is needed to serve the page, the rest is rendered when available and
// kept in the history table.
type ApodModel struct {
	Date           string `json:"date" db:"date"`
	Title          string `json:"title" db:"title"`
	URL            string `json:"url" db:"url"`
	HDURL          string `json:"hdurl" db:"hd_url"`
	ThumbURL       string `json:"thumbnail_url" db:"thumbnail_url"`
	MediaType      string `json:"media_type" db:"media_type"`
	Copyright      string `json:"copyright" db:"copyright"`
	Explanation    string `json:"explanation" db:"explanation"`
	ServiceVersion string `json:"service_version" db:"-"`
}

// IsImage reports whether the record points at a picture rather than a video.
// Without a media type, as in the record built from the cached URL, the URL's
// file extension decides.
func (m *ApodModel) IsImage() bool {
	switch m.MediaType {
	case "image":
		return true
	case "":
		return hasImageExtension(m.URL)
	}

	return false
}

func hasImageExtension(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}

	switch strings.ToLower(path.Ext(u.Path)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return true
	}

	return false
}
