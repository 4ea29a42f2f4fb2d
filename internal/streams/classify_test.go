package streams

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTeams(t *testing.T) {
	tests := []struct {
		application string
		media       string
		want        bool
	}{
		{"Microsoft Teams", "Meeting", true},
		{"microsoft teams", "", true},
		{"Google Chrome", "Teams Meeting | Weekly Standup", true},
		{"Firefox", "teams.microsoft.com", true},
		{"Google Chrome", "YouTube", false},
		{"Spotify", "Song Title", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.application+"/"+tt.media, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTeams(tt.application, tt.media))
		})
	}
}

func TestIsBrowser(t *testing.T) {
	tests := []struct {
		application string
		media       string
		want        bool
	}{
		{"Google Chrome", "", true},
		{"Chromium", "", true},
		{"Microsoft Edge", "", true},
		{"firefox", "", true},
		{"Brave Browser", "", true},
		{"Vivaldi", "", true},
		{"Spotify", "", false},
		{"mpv", "Some Video", false},
	}

	for _, tt := range tests {
		t.Run(tt.application, func(t *testing.T) {
			assert.Equal(t, tt.want, IsBrowser(tt.application, tt.media))
		})
	}
}

func TestMatchesAny(t *testing.T) {
	keywords := []string{"youtube", "Youtu.Be"}

	assert.True(t, MatchesAny(keywords, "Google Chrome", "YouTube - Talk"))
	assert.True(t, MatchesAny(keywords, "https://youtu.be/abc"))
	assert.False(t, MatchesAny(keywords, "Google Chrome", "Vimeo"))
	assert.False(t, MatchesAny(nil, "anything"))
	assert.False(t, MatchesAny(keywords))
}
