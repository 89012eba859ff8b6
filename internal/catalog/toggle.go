package catalog

import (
	"context"

	"celflicks/internal/domain/videos"
)

// Toggle features the video in the category, or unfeatures it if it is
// already there. It reports whether the video ends up featured. This is the
// admin screen's single button; the store itself keeps the two operations
// separate.
func Toggle(ctx context.Context, s *Store, videoID string, c videos.Category) (bool, error) {
	if s.IsFeatured(videoID, c) {
		if err := s.Unfeature(ctx, videoID, c); err != nil {
			return true, err
		}
		return false, nil
	}
	if err := s.Feature(ctx, videoID, c); err != nil {
		return false, err
	}
	return true, nil
}
