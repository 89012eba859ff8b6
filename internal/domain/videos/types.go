package videos

import (
	"context"
	"errors"
	"time"

	"celflicks/internal/platform"
)

var (
	ErrNotFound          = errors.New("video not found")
	ErrDuplicateFeatured = errors.New("video is already featured in this category")
	ErrInvalidCategory   = errors.New("invalid category")
)

// Category is one homepage content section.
type Category string

const (
	Trending    Category = "trending"
	New         Category = "new"
	Action      Category = "action"
	Comedy      Category = "comedy"
	Documentary Category = "documentary"
	Music       Category = "music"
	Original    Category = "original"
)

var categories = []Category{Trending, New, Action, Comedy, Documentary, Music, Original}

// Categories returns the closed set of categories in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

func ParseCategory(s string) (Category, error) {
	for _, c := range categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", ErrInvalidCategory
}

// Video is the canonical catalog record. The remote schema's column names
// (video_url, youtube_id, thumbnail) are mapped only inside Repository.
type Video struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	SourceURL    string            `json:"sourceUrl"`
	Platform     platform.Platform `json:"platform"`
	ExternalID   string            `json:"externalId"`
	Description  string            `json:"description,omitempty"`
	Tags         []string          `json:"tags"`
	ThumbnailURL string            `json:"thumbnailUrl,omitempty"`
	CreatedAt    time.Time         `json:"createdAt,omitempty"`
	UpdatedAt    time.Time         `json:"updatedAt,omitempty"`
}

// Thumbnail returns the override if set, otherwise the derived preview.
func (v Video) Thumbnail() string {
	return platform.Thumbnail(v.Platform, v.ExternalID, v.ThumbnailURL)
}

// Normalize re-derives platform and external id from the source URL.
func (v Video) Normalize() Video {
	src := platform.Resolve(v.SourceURL)
	v.Platform = src.Platform
	v.ExternalID = src.ExternalID
	if v.Tags == nil {
		v.Tags = []string{}
	}
	return v
}

// FeaturedEntry places one video at a position inside a category.
type FeaturedEntry struct {
	ID       int64    `json:"id"`
	VideoID  string   `json:"videoId"`
	Category Category `json:"category"`
	Position int      `json:"position"`
}

// Store is the data-access API of the remote data service for the catalog
// tables. Implementations keep positions within a category dense (0..N-1)
// across deletes.
type Store interface {
	ListVideos(ctx context.Context) ([]Video, error)
	CreateVideo(ctx context.Context, v Video) (*Video, error)
	UpdateVideo(ctx context.Context, id string, v Video) (*Video, error)
	DeleteVideo(ctx context.Context, id string) error

	// ListFeatured returns every entry ordered by position.
	ListFeatured(ctx context.Context) ([]FeaturedEntry, error)
	ListFeaturedByCategory(ctx context.Context, c Category) ([]FeaturedEntry, error)
	CreateFeatured(ctx context.Context, e FeaturedEntry) (*FeaturedEntry, error)
	DeleteFeatured(ctx context.Context, videoID string, c Category) error
	DeleteFeaturedByVideo(ctx context.Context, videoID string) error
	// SwapPositions exchanges the positions of two entries in one batched,
	// all-or-nothing request.
	SwapPositions(ctx context.Context, a, b FeaturedEntry) error
}
