package upstream

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/DeafMist/civic-radar/backend/internal/models"
	"github.com/DeafMist/civic-radar/backend/internal/processing"
)

const (
	sourceGoogleNews = "google-news"
	sourcePodcast    = "podcast"
	sourceYouTube    = "youtube"

	feedAccept = "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8"
)

var channelIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{10,64}$`)

type rssDocument struct {
	Channel struct {
		Title string    `xml:"title"`
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	GUID        string `xml:"guid"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	Source      struct {
		Name string `xml:",chardata"`
		URL  string `xml:"url,attr"`
	} `xml:"source"`
	Enclosure struct {
		URL  string `xml:"url,attr"`
		Type string `xml:"type,attr"`
	} `xml:"enclosure"`
	Duration string `xml:"http://www.itunes.com/dtds/podcast-1.0.dtd duration"`
	Summary  string `xml:"http://www.itunes.com/dtds/podcast-1.0.dtd summary"`
}

type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID        string `xml:"id"`
	VideoID   string `xml:"http://www.youtube.com/xml/schemas/2015 videoId"`
	Title     string `xml:"title"`
	Published string `xml:"published"`
	Links     []struct {
		Rel  string `xml:"rel,attr"`
		Href string `xml:"href,attr"`
	} `xml:"link"`
	Group struct {
		Description string `xml:"http://search.yahoo.com/mrss/ description"`
		Thumbnail   struct {
			URL string `xml:"url,attr"`
		} `xml:"http://search.yahoo.com/mrss/ thumbnail"`
	} `xml:"http://search.yahoo.com/mrss/ group"`
}

// Feeds reads RSS and Atom feeds: Google News search, podcast feeds and
// YouTube channel feeds. Every request is bounded by the feed timeout.
type Feeds struct {
	c        *Client
	newsBase string
	ytBase   string
	timeout  time.Duration
}

// NewFeeds creates the adapter.
func NewFeeds(c *Client, newsBaseURL, youtubeBaseURL string, timeout time.Duration) *Feeds {
	return &Feeds{c: c, newsBase: newsBaseURL, ytBase: youtubeBaseURL, timeout: timeout}
}

// News searches Google News and returns its headlines in feed order.
func (f *Feeds) News(ctx context.Context, query string) ([]models.Article, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", models.ErrInvalidInput)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("hl", "en-US")
	params.Set("gl", "US")
	params.Set("ceid", "US:en")

	var doc rssDocument
	if err := f.fetch(ctx, sourceGoogleNews, endpoint(f.newsBase, "search"), params, &doc); err != nil {
		return nil, err
	}

	out := make([]models.Article, 0, len(doc.Channel.Items))
	for _, item := range doc.Channel.Items {
		source := strings.TrimSpace(item.Source.Name)
		title := processing.CleanText(item.Title)
		if source != "" {
			title = strings.TrimSuffix(title, " - "+source)
		}
		out = append(out, models.Article{
			ID:          itemID("news", item),
			Title:       title,
			Description: summary(item.Description),
			Source:      source,
			PublishedAt: dateOf(item.PubDate),
			URL:         strings.TrimSpace(item.Link),
		})
	}
	return out, nil
}

// Podcast reads up to limit episodes of the feed at feedURL.
func (f *Feeds) Podcast(ctx context.Context, feedURL string, limit int) ([]models.Episode, error) {
	feedURL = strings.TrimSpace(feedURL)
	u, err := url.Parse(feedURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: feedUrl must be an absolute http(s) URL", models.ErrInvalidInput)
	}

	var doc rssDocument
	if err := f.fetch(ctx, sourcePodcast, feedURL, nil, &doc); err != nil {
		return nil, err
	}

	limit = clamp(limit, 20, 100)
	out := make([]models.Episode, 0, min(limit, len(doc.Channel.Items)))
	for _, item := range doc.Channel.Items {
		description := item.Description
		if strings.TrimSpace(description) == "" {
			description = item.Summary
		}
		out = append(out, models.Episode{
			ID:          itemID("ep", item),
			Title:       processing.CleanText(item.Title),
			Description: summary(description),
			PublishedAt: dateOf(item.PubDate),
			Duration:    strings.TrimSpace(item.Duration),
			AudioURL:    strings.TrimSpace(item.Enclosure.URL),
			URL:         strings.TrimSpace(item.Link),
		})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// YouTube reads the uploads feed of a channel.
func (f *Feeds) YouTube(ctx context.Context, channelID string, limit int) ([]models.Video, error) {
	channelID = strings.TrimSpace(channelID)
	if !channelIDPattern.MatchString(channelID) {
		return nil, fmt.Errorf("%w: channelId is invalid", models.ErrInvalidInput)
	}

	params := url.Values{}
	params.Set("channel_id", channelID)

	var feed atomFeed
	if err := f.fetch(ctx, sourceYouTube, endpoint(f.ytBase, "videos.xml"), params, &feed); err != nil {
		return nil, err
	}

	limit = clamp(limit, 15, 50)
	out := make([]models.Video, 0, min(limit, len(feed.Entries)))
	for _, e := range feed.Entries {
		videoID := strings.TrimSpace(e.VideoID)
		if videoID == "" {
			videoID = strings.TrimPrefix(strings.TrimSpace(e.ID), "yt:video:")
		}
		if videoID == "" {
			continue
		}
		link := "https://www.youtube.com/watch?v=" + videoID
		for _, l := range e.Links {
			if l.Rel == "alternate" && l.Href != "" {
				link = l.Href
				break
			}
		}
		thumb := e.Group.Thumbnail.URL
		if thumb == "" {
			thumb = "https://i.ytimg.com/vi/" + videoID + "/hqdefault.jpg"
		}
		out = append(out, models.Video{
			ID:           "yt-" + videoID,
			VideoID:      videoID,
			Title:        processing.CleanText(e.Title),
			Description:  summary(e.Group.Description),
			PublishedAt:  dateOf(e.Published),
			ThumbnailURL: thumb,
			URL:          link,
		})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *Feeds) fetch(ctx context.Context, source, target string, params url.Values, v any) error {
	body, err := f.c.GetBytes(ctx, Request{
		Source:  source,
		URL:     target,
		Query:   params,
		Accept:  feedAccept,
		Timeout: f.timeout,
	})
	if err != nil {
		return err
	}

	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.CharsetReader = charset.NewReaderLabel
	dec.Strict = false
	if err := dec.Decode(v); err != nil {
		return transportError(source, "decode feed", err)
	}
	return nil
}

// itemID keys a feed item by its guid, then link, then title. Items with none
// of those are keyed by their remaining content.
func itemID(prefix string, item rssItem) string {
	for _, key := range []string{item.GUID, item.Link, item.Title} {
		if key = strings.TrimSpace(key); key != "" {
			return processing.StableID(prefix, key)
		}
	}
	return processing.StableID(prefix,
		strings.TrimSpace(item.PubDate),
		strings.TrimSpace(item.Enclosure.URL),
		strings.TrimSpace(item.Description),
		strings.TrimSpace(item.Summary),
	)
}
