package models

// Article is a news headline from an RSS search feed.
type Article struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Source      string `json:"source"`
	PublishedAt string `json:"publishedAt"`
	URL         string `json:"url"`
}

// Episode is a podcast feed item.
type Episode struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	PublishedAt string `json:"publishedAt"`
	Duration    string `json:"duration"`
	AudioURL    string `json:"audioUrl"`
	URL         string `json:"url"`
}

// Video is a YouTube channel feed entry.
type Video struct {
	ID           string `json:"id"`
	VideoID      string `json:"videoId"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	PublishedAt  string `json:"publishedAt"`
	ThumbnailURL string `json:"thumbnailUrl"`
	URL          string `json:"url"`
}
