package upstream_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/civic-radar/backend/internal/models"
	"github.com/DeafMist/civic-radar/backend/internal/processing"
	"github.com/DeafMist/civic-radar/backend/internal/upstream"
)

const newsFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Google News</title>
<item>
  <title>Susie Lee backs water bill - Nevada Current</title>
  <link>https://news.example/a</link>
  <guid isPermaLink="false">CBMiabc</guid>
  <pubDate>Tue, 14 Oct 2025 15:04:05 GMT</pubDate>
  <description>&lt;a href="https://news.example/a"&gt;Susie Lee backs water bill&lt;/a&gt;&amp;nbsp;&amp;nbsp;&lt;font&gt;Nevada Current&lt;/font&gt;</description>
  <source url="https://nevadacurrent.com">Nevada Current</source>
</item>
<item>
  <title>Untitled wire story</title>
  <link>https://news.example/b</link>
</item>
</channel></rss>`

func TestFeedsNews(t *testing.T) {
	srv, c := serve(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search", r.URL.Path)
		require.Equal(t, `"Susie Lee" Nevada`, r.URL.Query().Get("q"))
		writeBody(w, "application/rss+xml", newsFeed)
	})
	feeds := upstream.NewFeeds(c, srv.URL, srv.URL, time.Second)

	articles, err := feeds.News(context.Background(), `"Susie Lee" Nevada`)
	require.NoError(t, err)
	require.Len(t, articles, 2)

	require.Equal(t, models.Article{
		ID:          processing.StableID("news", "CBMiabc"),
		Title:       "Susie Lee backs water bill",
		Description: "Susie Lee backs water bill Nevada Current",
		Source:      "Nevada Current",
		PublishedAt: "2025-10-14",
		URL:         "https://news.example/a",
	}, articles[0])
	require.Equal(t, processing.StableID("news", "https://news.example/b"), articles[1].ID)

	again, err := feeds.News(context.Background(), `"Susie Lee" Nevada`)
	require.NoError(t, err)
	require.Equal(t, articles, again)
}

func TestFeedsPodcast(t *testing.T) {
	srv, c := serve(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, "application/rss+xml", `<?xml version="1.0" encoding="ISO-8859-1"?>
<rss version="2.0" xmlns:itunes="http://www.itunes.com/dtds/podcast-1.0.dtd"><channel>
<item>
  <title>Episode 1</title>
  <guid>ep-guid-1</guid>
  <pubDate>Mon, 06 Oct 2025 08:00:00 +0000</pubDate>
  <enclosure url="https://cdn.example/ep1.mp3" type="audio/mpeg" length="1"/>
  <itunes:duration>42:10</itunes:duration>
  <itunes:summary>Summary text</itunes:summary>
</item>
<item><title>Episode 2</title><guid>ep-guid-2</guid></item>
</channel></rss>`)
	})
	feeds := upstream.NewFeeds(c, "http://unused", "http://unused", time.Second)

	episodes, err := feeds.Podcast(context.Background(), srv.URL+"/feed.xml", 1)
	require.NoError(t, err)
	require.Equal(t, []models.Episode{{
		ID:          processing.StableID("ep", "ep-guid-1"),
		Title:       "Episode 1",
		Description: "Summary text",
		PublishedAt: "2025-10-06",
		Duration:    "42:10",
		AudioURL:    "https://cdn.example/ep1.mp3",
	}}, episodes)
}

func TestFeedsPodcastRejectsRelativeURL(t *testing.T) {
	feeds := upstream.NewFeeds(upstream.NewClient(0), "", "", time.Second)

	for _, feedURL := range []string{"", "feed.xml", "ftp://example.org/feed", "https://"} {
		_, err := feeds.Podcast(context.Background(), feedURL, 0)
		require.ErrorIs(t, err, models.ErrInvalidInput, feedURL)
	}
}

func TestFeedsYouTube(t *testing.T) {
	srv, c := serve(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/videos.xml", r.URL.Path)
		require.Equal(t, "UCabcdefghij0123", r.URL.Query().Get("channel_id"))
		writeBody(w, "application/atom+xml", `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns:yt="http://www.youtube.com/xml/schemas/2015" xmlns:media="http://search.yahoo.com/mrss/" xmlns="http://www.w3.org/2005/Atom">
<entry>
  <id>yt:video:abc123XYZ</id>
  <yt:videoId>abc123XYZ</yt:videoId>
  <title>Town hall</title>
  <link rel="alternate" href="https://www.youtube.com/watch?v=abc123XYZ"/>
  <published>2025-10-01T12:00:00+00:00</published>
  <media:group>
    <media:title>Town hall</media:title>
    <media:thumbnail url="https://i.ytimg.com/vi/abc123XYZ/hqdefault.jpg" width="480" height="360"/>
    <media:description>Live from Reno</media:description>
  </media:group>
</entry>
<entry><id>yt:video:def456</id><title>Second</title></entry>
</feed>`)
	})
	feeds := upstream.NewFeeds(c, srv.URL, srv.URL, time.Second)

	videos, err := feeds.YouTube(context.Background(), "UCabcdefghij0123", 0)
	require.NoError(t, err)
	require.Len(t, videos, 2)
	require.Equal(t, models.Video{
		ID:           "yt-abc123XYZ",
		VideoID:      "abc123XYZ",
		Title:        "Town hall",
		Description:  "Live from Reno",
		PublishedAt:  "2025-10-01",
		ThumbnailURL: "https://i.ytimg.com/vi/abc123XYZ/hqdefault.jpg",
		URL:          "https://www.youtube.com/watch?v=abc123XYZ",
	}, videos[0])
	require.Equal(t, "yt-def456", videos[1].ID)
	require.Equal(t, "https://www.youtube.com/watch?v=def456", videos[1].URL)

	_, err = feeds.YouTube(context.Background(), "../etc", 0)
	require.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestFeedsPodcastKeysUntitledItemsByContent(t *testing.T) {
	srv, c := serve(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, "application/rss+xml", `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Bare feed</title>
<item><description>First segment notes</description></item>
<item><description>Second segment notes</description></item>
</channel></rss>`)
	})
	feeds := upstream.NewFeeds(c, srv.URL, srv.URL, time.Second)

	episodes, err := feeds.Podcast(context.Background(), srv.URL+"/feed.xml", 0)
	require.NoError(t, err)
	require.Len(t, episodes, 2)
	require.NotEqual(t, episodes[0].ID, episodes[1].ID)

	again, err := feeds.Podcast(context.Background(), srv.URL+"/feed.xml", 0)
	require.NoError(t, err)
	require.Equal(t, episodes[0].ID, again[0].ID)
}

func TestFeedsTimeout(t *testing.T) {
	srv, c := serve(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	})
	feeds := upstream.NewFeeds(c, srv.URL, srv.URL, 50*time.Millisecond)

	_, err := feeds.News(context.Background(), "slow")
	require.ErrorIs(t, err, upstream.ErrUnavailable)
}
