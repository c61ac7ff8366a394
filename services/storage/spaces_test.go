package storage

import (
	"regexp"
	"strings"
	"testing"
)

func TestGenerateKey(t *testing.T) {
	key := GenerateKey(PrefixVideos, "intro-lesson.mp4")

	if !strings.HasPrefix(key, PrefixVideos+"/") {
		t.Errorf("key %q missing prefix", key)
	}
	if !strings.HasSuffix(key, "_intro-lesson.mp4") {
		t.Errorf("key %q missing original filename", key)
	}

	pattern := regexp.MustCompile(`^videos/\d+_intro-lesson\.mp4$`)
	if !pattern.MatchString(key) {
		t.Errorf("key %q does not match expected layout", key)
	}
}

func TestGenerateKeyWithoutExtension(t *testing.T) {
	key := GenerateKey(PrefixUploads, "README")
	if !regexp.MustCompile(`^uploads/\d+_README$`).MatchString(key) {
		t.Errorf("key %q does not match expected layout", key)
	}
}

func TestContentTypeFor(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"lesson.mp4", "video/mp4"},
		{"lesson.MP4", "video/mp4"},
		{"clip.webm", "video/webm"},
		{"clip.ogg", "video/ogg"},
		{"notes.pdf", "application/pdf"},
		{"avatar.png", "image/png"},
		{"avatar.jpg", "image/jpeg"},
		{"avatar.jpeg", "image/jpeg"},
		{"banner.gif", "image/gif"},
		{"archive.zip", "application/octet-stream"},
		{"noext", "application/octet-stream"},
	}

	for _, tt := range tests {
		if got := ContentTypeFor(tt.filename); got != tt.want {
			t.Errorf("ContentTypeFor(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}
