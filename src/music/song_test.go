package music

import "testing"

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{-5, "0:00"},
		{0, "0:00"},
		{7, "0:07"},
		{180, "3:00"},
		{599, "9:59"},
		{3600, "1:00:00"},
		{3725, "1:02:05"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.seconds); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestSongValidate(t *testing.T) {
	tests := []struct {
		name    string
		song    Song
		wantErr bool
	}{
		{"valid", Song{ID: "dQw4w9WgXcQ", Title: "Song", Duration: 212}, false},
		{"unknown duration", Song{ID: "x1", Title: "Song"}, false},
		{"missing id", Song{Title: "Song"}, true},
		{"blank title", Song{ID: "x1", Title: "   "}, true},
		{"negative duration", Song{ID: "x1", Title: "Song", Duration: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.song.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWatchURL(t *testing.T) {
	s := Song{ID: "abc"}
	if got := s.WatchURL(); got != "https://youtube.com/watch?v=abc" {
		t.Errorf("WatchURL() = %q", got)
	}
	s.URL = "https://www.youtube.com/watch?v=abc"
	if got := s.WatchURL(); got != s.URL {
		t.Errorf("WatchURL() = %q, want %q", got, s.URL)
	}
}
