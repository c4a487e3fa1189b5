package resolving

import "testing"

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtube.com/watch?v=dQw4w9WgXcQ&list=RD123", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ?si=abc", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://m.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"youtube.com/watch?feature=share&v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/playlist?list=PLx", ""},
		{"https://vimeo.com/123456789", ""},
		{"never gonna give you up", ""},
	}
	for _, tt := range tests {
		if got := ExtractVideoID(tt.in); got != tt.want {
			t.Errorf("ExtractVideoID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsYouTubeURL(t *testing.T) {
	if !IsYouTubeURL(" https://youtu.be/dQw4w9WgXcQ ") {
		t.Error("short link not recognised")
	}
	if IsYouTubeURL("rick astley") {
		t.Error("plain text recognised as URL")
	}
}

func TestIsVideoID(t *testing.T) {
	if !IsVideoID("dQw4w9WgXcQ") || IsVideoID("dQw4w9WgXc") || IsVideoID("dQw4w9WgXc!") {
		t.Error("IsVideoID mismatch")
	}
}
