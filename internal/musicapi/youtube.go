package musicapi

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"
)

// YouTubeClient searches videos through the YouTube Data API v3.
type YouTubeClient struct {
	apiKey   string
	endpoint string
	timeout  time.Duration
}

// NewYouTubeClient creates a YouTube client. An empty endpoint selects the
// public API; tests point it at an httptest server.
func NewYouTubeClient(apiKey, endpoint string, timeout time.Duration) *YouTubeClient {
	if endpoint != "" && !strings.HasSuffix(endpoint, "/") {
		endpoint += "/"
	}
	return &YouTubeClient{
		apiKey:   strings.TrimSpace(apiKey),
		endpoint: endpoint,
		timeout:  timeoutOrDefault(timeout),
	}
}

// Provider reports ProviderYouTube.
func (c *YouTubeClient) Provider() MusicProvider {
	return ProviderYouTube
}

// SearchTracks runs search.list restricted to videos.
func (c *YouTubeClient) SearchTracks(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: YOUTUBE_API_KEY is not set", ErrMisconfigured)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	opts := []option.ClientOption{option.WithAPIKey(c.apiKey)}
	if c.endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.endpoint))
	}
	service, err := ytapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: create youtube client: %v", ErrMisconfigured, err)
	}

	response, err := service.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		MaxResults(int64(limit)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, unavailable("youtube", err)
	}

	results := make([]SearchResult, 0, len(response.Items))
	for _, item := range response.Items {
		if item.Id == nil || item.Id.VideoId == "" || item.Snippet == nil {
			continue
		}
		results = append(results, SearchResult{
			ExternalID:          item.Id.VideoId,
			Title:               html.UnescapeString(item.Snippet.Title),
			ArtistOrChannel:     html.UnescapeString(item.Snippet.ChannelTitle),
			CoverOrThumbnailURL: thumbnailURL(item.Snippet.Thumbnails),
		})
	}
	return results, nil
}

// thumbnailURL prefers the medium rendition and falls back to whatever exists.
func thumbnailURL(thumbs *ytapi.ThumbnailDetails) string {
	if thumbs == nil {
		return ""
	}
	for _, t := range []*ytapi.Thumbnail{thumbs.Medium, thumbs.High, thumbs.Default} {
		if t != nil && t.Url != "" {
			return t.Url
		}
	}
	return ""
}
