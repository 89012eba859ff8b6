package platform

import (
	"regexp"
	"strings"
)

type Platform string

const (
	YouTube Platform = "youtube"
	Vimeo   Platform = "vimeo"
	Direct  Platform = "direct"
	Other   Platform = "other"
)

const (
	youtubeThumbnailPattern = "https://img.youtube.com/vi/%s/mqdefault.jpg"
	PlaceholderThumbnail    = "https://placehold.co/480x360/1E1E2A/00e0ff?text=Video+Link"
)

var directFile = regexp.MustCompile(`(?i)\.(mp4|webm|ogg)$`)

// Source is the normalized identity of an external video URL.
type Source struct {
	Platform   Platform `json:"platform"`
	ExternalID string   `json:"externalId"`
}

func (p Platform) Valid() bool {
	switch p {
	case YouTube, Vimeo, Direct, Other:
		return true
	}
	return false
}

// Resolve classifies a raw video URL. It never fails: anything it cannot
// recognise comes back as Other with an empty external id.
func Resolve(sourceURL string) Source {
	url := strings.TrimSpace(sourceURL)

	switch {
	case strings.Contains(url, "youtube.com") || strings.Contains(url, "youtu.be"):
		return Source{Platform: YouTube, ExternalID: youtubeID(url)}
	case strings.Contains(url, "vimeo.com"):
		return Source{Platform: Vimeo, ExternalID: segmentAfter(url, "vimeo.com/", "?")}
	case directFile.MatchString(url):
		return Source{Platform: Direct}
	default:
		return Source{Platform: Other}
	}
}

// youtubeID checks v=, youtu.be/ and embed/ in that order; first match wins.
func youtubeID(url string) string {
	switch {
	case strings.Contains(url, "v="):
		return segmentAfter(url, "v=", "&")
	case strings.Contains(url, "youtu.be/"):
		return segmentAfter(url, "youtu.be/", "?")
	case strings.Contains(url, "embed/"):
		return segmentAfter(url, "embed/", "?")
	}
	return ""
}

// segmentAfter returns the text between the first marker and the next stop
// character. A missing marker yields "".
func segmentAfter(s, marker, stop string) string {
	_, rest, found := strings.Cut(s, marker)
	if !found {
		return ""
	}
	id, _, _ := strings.Cut(rest, stop)
	return id
}

// Thumbnail derives the preview image for a video. A non-empty override
// always wins.
func Thumbnail(p Platform, externalID, override string) string {
	if o := strings.TrimSpace(override); o != "" {
		return o
	}
	if p == YouTube && externalID != "" {
		return strings.Replace(youtubeThumbnailPattern, "%s", externalID, 1)
	}
	return PlaceholderThumbnail
}

// EmbedURL returns the URL a player should load for the source. Direct files
// and unknown links are played from the original URL.
func EmbedURL(src Source, sourceURL string) string {
	switch {
	case src.Platform == YouTube && src.ExternalID != "":
		return "https://www.youtube.com/embed/" + src.ExternalID
	case src.Platform == Vimeo && src.ExternalID != "":
		return "https://player.vimeo.com/video/" + src.ExternalID
	default:
		return sourceURL
	}
}
