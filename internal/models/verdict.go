package models

import "strings"

type MatchSource string

const (
	SourceNone      MatchSource = "none"
	SourceCanonical MatchSource = "canonical"
	SourcePersonal  MatchSource = "personal"
)

// Verdict is derived from a ProductRecord and the two boycott lists. It is never stored.
type Verdict struct {
	IsBoycotted    bool        `json:"is_boycotted"`
	Source         MatchSource `json:"source"`
	Title          string      `json:"title"`
	Manufacturer   string      `json:"manufacturer"`
	Reason         string      `json:"reason"`
	CountryNote    string      `json:"country_note,omitempty"`
	CountryWarning string      `json:"country_warning,omitempty"`
}

// Text renders the verdict the way it is shown to the user.
func (v Verdict) Text() string {
	var sb strings.Builder
	sb.WriteString(v.Reason)
	if v.CountryNote != "" {
		sb.WriteString("\n")
		sb.WriteString(v.CountryNote)
	}
	if v.CountryWarning != "" {
		sb.WriteString("\n\n")
		sb.WriteString(v.CountryWarning)
	}
	return sb.String()
}
