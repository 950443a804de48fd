package domain

import "time"

type ContentType string

const (
	ContentTypeVideo ContentType = "video"
	ContentTypeImage ContentType = "image"
	ContentTypeText  ContentType = "text"
)

type ContentItem struct {
	ID              string         `json:"id"`
	SocialAccountID string         `json:"social_account_id"`
	Platform        string         `json:"platform,omitempty"`
	ContentID       string         `json:"content_id"`
	ContentType     ContentType    `json:"content_type"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	URL             string         `json:"url"`
	ThumbnailURL    string         `json:"thumbnail_url"`
	PublishedAt     time.Time      `json:"published_at"`
	Likes           int64          `json:"likes"`
	Comments        int64          `json:"comments"`
	Shares          int64          `json:"shares"`
	Views           int64          `json:"views"`
	Metadata        map[string]any `json:"content_metadata,omitempty"`
	VideoID         string         `json:"video_id,omitempty"`
	VideoURL        string         `json:"video_url,omitempty"`
}

// EngagementRate retorna (likes+comments+shares)/views, ou zero quando não há visualizações.
func (c ContentItem) EngagementRate() float64 {
	return EngagementRate(c.Likes, c.Comments, c.Shares, c.Views)
}

// HasVideo indica se o item referencia um artefato de vídeo resolvível.
func (c ContentItem) HasVideo() bool {
	return c.VideoURL != "" || (c.ContentType == ContentTypeVideo && c.URL != "")
}

// VideoRef monta a referência de vídeo do item, ou nil se não houver vídeo.
func (c ContentItem) VideoRef() *VideoRef {
	if !c.HasVideo() {
		return nil
	}

	ref := &VideoRef{ID: c.VideoID, ContentID: c.ContentID, Location: c.VideoURL}
	if ref.ID == "" {
		ref.ID = c.ContentID
	}
	if ref.Location == "" {
		ref.Location = c.URL
	}
	return ref
}

func EngagementRate(likes, comments, shares, views int64) float64 {
	if views <= 0 {
		return 0
	}
	return float64(likes+comments+shares) / float64(views)
}
