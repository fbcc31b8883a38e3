package model

import "strings"

// Playlist is read-only to this service; the station service owns it.
type Playlist struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	IsActive bool   `json:"is_active"`
}

// MatchesKeyword reports whether the playlist name contains the keyword,
// case-insensitively. Used to partition playlists into reserved and regular
// sets for auto-scheduling.
func (p Playlist) MatchesKeyword(keyword string) bool {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return false
	}
	return strings.Contains(strings.ToLower(p.Name), strings.ToLower(keyword))
}

// SplitKeywords parses a semicolon- or comma-separated keyword list from
// configuration, dropping blanks.
func SplitKeywords(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ';' || r == ','
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
