package media

import (
	"github.com/mpetrov/threadsync/internal/threads"
	"github.com/mpetrov/threadsync/pkg/models"
)

// Classify maps a Threads media_type tag to a Telegram media kind. VIDEO is
// the only video tag; everything else (TEXT_POST, IMAGE, CAROUSEL_ALBUM,
// AUDIO, REPOST_FACADE, or missing) falls back to photo.
func Classify(mediaType string) models.MediaKind {
	if mediaType == "VIDEO" {
		return models.MediaKindVideo
	}
	return models.MediaKindPhoto
}

// Normalize flattens a post and its carousel children into an ordered media
// list. Per item the direct media URL wins; a thumbnail is used as a photo
// fallback; items with neither contribute nothing. A post that yields an
// empty list must be sent as a text message, not an empty media group.
func Normalize(post threads.Post) []models.MediaItem {
	var items []models.MediaItem

	if post.MediaURL != "" {
		items = append(items, models.MediaItem{Kind: Classify(post.MediaType), URL: post.MediaURL})
	} else if post.ThumbnailURL != "" {
		items = append(items, models.MediaItem{Kind: models.MediaKindPhoto, URL: post.ThumbnailURL})
	}

	if post.Children != nil {
		for _, child := range post.Children.Data {
			if child.MediaURL != "" {
				items = append(items, models.MediaItem{Kind: Classify(child.MediaType), URL: child.MediaURL})
			} else if child.ThumbnailURL != "" {
				items = append(items, models.MediaItem{Kind: models.MediaKindPhoto, URL: child.ThumbnailURL})
			}
		}
	}

	return items
}
