package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/hexsmith/hexsmith/backend/internal/models"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// VideoSearcher finds linked video suggestions for a subtopic query
type VideoSearcher interface {
	Search(ctx context.Context, query string, limit int64) ([]models.Video, error)
}

// YoutubeService implements VideoSearcher on the YouTube Data API v3
type YoutubeService struct {
	svc *youtube.Service
}

// NewYoutubeService creates a YoutubeService with an API key
func NewYoutubeService(ctx context.Context, apiKey string) (*YoutubeService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("youtube API key not configured")
	}
	svc, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube service: %w", err)
	}
	return &YoutubeService{svc: svc}, nil
}

// Search returns up to limit videos for the query
func (y *YoutubeService) Search(ctx context.Context, query string, limit int64) ([]models.Video, error) {
	call := y.svc.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		MaxResults(limit).
		Context(ctx)

	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("youtube search failed: %w", err)
	}

	videos := make([]models.Video, 0, len(resp.Items))
	ids := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id == nil || item.Id.VideoId == "" {
			continue
		}
		v := models.Video{
			Title: item.Snippet.Title,
			URL:   "https://www.youtube.com/watch?v=" + item.Id.VideoId,
		}
		if item.Snippet.Thumbnails != nil && item.Snippet.Thumbnails.High != nil {
			v.Thumbnail = item.Snippet.Thumbnails.High.Url
		}
		videos = append(videos, v)
		ids = append(ids, item.Id.VideoId)
	}

	// Durations come from a second videos.list call; search.list has no contentDetails
	if len(ids) > 0 {
		details, err := y.svc.Videos.List([]string{"contentDetails"}).Id(ids...).Context(ctx).Do()
		if err == nil {
			durations := make(map[string]string, len(details.Items))
			for _, item := range details.Items {
				durations[item.Id] = formatISODuration(item.ContentDetails.Duration)
			}
			for i := range videos {
				videos[i].Duration = durations[ids[i]]
			}
		}
	}

	return videos, nil
}

// formatISODuration converts an ISO 8601 duration like PT1H2M3S to "1:02:03"
func formatISODuration(iso string) string {
	s := strings.TrimPrefix(iso, "PT")
	var h, m, sec int
	if i := strings.Index(s, "H"); i >= 0 {
		fmt.Sscanf(s[:i], "%d", &h)
		s = s[i+1:]
	}
	if i := strings.Index(s, "M"); i >= 0 {
		fmt.Sscanf(s[:i], "%d", &m)
		s = s[i+1:]
	}
	if i := strings.Index(s, "S"); i >= 0 {
		fmt.Sscanf(s[:i], "%d", &sec)
	}
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}
