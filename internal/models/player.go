package models

import (
	"strconv"
	"strings"
)

// ExemptName marks a bye slot in the pairing table. It is never a real player.
const ExemptName = "EXEMPT"

type Player struct {
	Name   string  `json:"name"`
	Rating int     `json:"rating"`
	Points float64 `json:"points"`
}

// IsExempt reports whether the name denotes a bye slot (case-insensitive) or
// is blank.
func IsExempt(name string) bool {
	return strings.TrimSpace(name) == "" || strings.EqualFold(name, ExemptName)
}

// ParseRating keeps only the digits of the raw rating cell. Unrated or
// unparseable cells become 0.
func ParseRating(raw string) int {
	var sb strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	n, err := strconv.Atoi(sb.String())
	if err != nil {
		return 0
	}
	return n
}

// ParsePoints parses a "points before this round" cell. The page writes half
// points with the ½ glyph, sometimes without a leading zero.
func ParsePoints(raw string) float64 {
	s := strings.ReplaceAll(raw, "½", ".5")
	s = strings.ReplaceAll(s, " ", "")
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
