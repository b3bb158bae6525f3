package audiotypes

import "testing"

func TestHasAudioExtension(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/music/song.mp3", true},
		{"/music/song.MP3", true},
		{"/music/song.flac", true},
		{"/music/book.m4b", true},
		{"/music/song.opus", true},
		{"/music/track.wv", true},
		{"/music/song.txt", false},
		{"/music/cover.jpg", false},
		{"/music/noext", false},
		{"/music/video.mkv", false},
	}

	for _, tt := range tests {
		if got := HasAudioExtension(tt.path); got != tt.want {
			t.Errorf("HasAudioExtension(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestSupportedMime(t *testing.T) {
	tests := []struct {
		mime string
		want bool
	}{
		{"audio/mpeg", true},
		{"audio/flac", true},
		{"audio/ogg", true},
		{"audio/ogg; codecs=opus", true},
		{"application/x-matroska", true},
		{"text/plain", false},
		{"video/mp4", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := SupportedMime(tt.mime); got != tt.want {
			t.Errorf("SupportedMime(%q) = %v, want %v", tt.mime, got, tt.want)
		}
	}
}
