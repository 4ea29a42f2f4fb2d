// Package streams reconciles mixer and routing-graph records into canonical
// audio stream entities and classifies them by origin.
package streams

import "strings"

// teamsKeywords identify Microsoft Teams streams. Matched case-insensitively
// against both the application name and the media/display name.
var teamsKeywords = []string{
	"microsoft teams",
	"teams.microsoft.com",
	"teams meeting",
}

// browserKeywords identify web browser streams.
var browserKeywords = []string{
	"google chrome",
	"chromium",
	"microsoft edge",
	"firefox",
	"brave",
	"vivaldi",
}

// IsTeams reports whether the application or media name looks like a
// Microsoft Teams stream.
func IsTeams(application, media string) bool {
	return MatchesAny(teamsKeywords, application, media)
}

// IsBrowser reports whether the application or media name belongs to a
// web browser.
func IsBrowser(application, media string) bool {
	return MatchesAny(browserKeywords, application, media)
}

// MatchesAny reports whether any keyword occurs in any of the values,
// case-insensitively.
func MatchesAny(keywords []string, values ...string) bool {
	for i, v := range values {
		values[i] = strings.ToLower(v)
	}
	for _, kw := range keywords {
		kw = strings.ToLower(kw)
		for _, v := range values {
			if strings.Contains(v, kw) {
				return true
			}
		}
	}
	return false
}
