package ytdlp

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/contre95/tubequeue/src/music"
)

// video is the subset of yt-dlp's JSON we care about, used for both full info and flat entries.
type video struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Duration   float64     `json:"duration"`
	Uploader   string      `json:"uploader"`
	Channel    string      `json:"channel"`
	ViewCount  int64       `json:"view_count"`
	WebpageURL string      `json:"webpage_url"`
	URL        string      `json:"url"`
	Thumbnail  string      `json:"thumbnail"`
	Thumbnails []thumbnail `json:"thumbnails"`
}

type thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type playlist struct {
	Entries []video `json:"entries"`
}

func parseVideo(data []byte) (music.Song, error) {
	var v video
	if err := json.Unmarshal(data, &v); err != nil {
		return music.Song{}, fmt.Errorf("parse yt-dlp output: %w", err)
	}
	if v.ID == "" {
		return music.Song{}, ErrNotFound
	}
	return v.song(), nil
}

func parsePlaylist(data []byte) ([]music.Song, error) {
	var p playlist
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse yt-dlp output: %w", err)
	}
	songs := make([]music.Song, 0, len(p.Entries))
	for _, e := range p.Entries {
		if e.ID == "" {
			continue
		}
		songs = append(songs, e.song())
	}
	return songs, nil
}

func (v video) song() music.Song {
	s := music.Song{
		ID:        v.ID,
		Title:     v.Title,
		Duration:  int(v.Duration),
		Uploader:  firstNonEmpty(v.Uploader, v.Channel),
		URL:       firstNonEmpty(v.WebpageURL, watchURL(v.URL)),
		Thumbnail: v.bestThumbnail(),
		ViewCount: v.ViewCount,
	}
	if s.Title == "" {
		s.Title = "Unknown"
	}
	if s.Uploader == "" {
		s.Uploader = "Unknown"
	}
	if s.URL == "" {
		s.URL = s.WatchURL()
	}
	return s
}

func (v video) bestThumbnail() string {
	if v.Thumbnail != "" {
		return v.Thumbnail
	}
	var best thumbnail
	for _, t := range v.Thumbnails {
		if t.Width*t.Height >= best.Width*best.Height {
			best = t
		}
	}
	return best.URL
}

// watchURL keeps only urls pointing at a watch page; flat entries sometimes carry bare ids.
func watchURL(u string) string {
	if strings.HasPrefix(u, "http") {
		return u
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
