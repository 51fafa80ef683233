// Package strength implements a quick entropy heuristic for passwords. It is
// an awareness aid, not a cryptographically defensible estimate: the numbers
// are an upper bound on a naive brute-force search and the penalties only
// catch the most obvious patterns.
package strength

import (
	"math"
	"strings"
)

const (
	LabelWeak   = "Weak"
	LabelMedium = "Medium"
	LabelStrong = "Strong"
)

// Assessment is the full verdict for one password. Warnings call out
// concrete problems, suggestions are softer advice. Both keep their emission
// order.
type Assessment struct {
	Bits        int      `json:"bits"`
	Label       string   `json:"label"`
	Warnings    []string `json:"warnings"`
	Suggestions []string `json:"suggestions"`
}

// ascending 4-character runs that people reach for first
var sequences = []string{
	"0123", "1234", "2345", "3456", "4567", "5678", "6789",
	"abcd", "bcde", "cdef", "defg", "efgh", "fghi", "ghij", "hijk", "ijkl",
}

// Estimate is deterministic and pure; it is called per keystroke by the UI
// so it has to stay cheap.
func Estimate(password string) Assessment {
	warnings := []string{}
	suggestions := []string{}

	if password == "" {
		return Assessment{
			Bits:        0,
			Label:       LabelWeak,
			Warnings:    warnings,
			Suggestions: []string{"Use a long passphrase (12+ characters)."},
		}
	}

	runes := []rune(password)
	length := len(runes)

	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range runes {
		switch {
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= '0' && r <= '9':
			hasDigit = true
		default:
			hasSymbol = true
		}
	}

	pool := 0
	if hasLower {
		pool += 26
	}
	if hasUpper {
		pool += 26
	}
	if hasDigit {
		pool += 10
	}
	if hasSymbol {
		pool += 33 // rough printable symbols set
	}
	// minimal pool fallback (e.g. unicode only)
	if pool == 0 {
		pool = 50
	}

	// naive entropy upper-bound
	bits := float64(length) * math.Log2(float64(pool))

	if hasRepeatedRun(runes) {
		warnings = append(warnings, "Repeated characters reduce effective strength.")
		bits *= 0.85
	}

	if hasSequence(password) {
		warnings = append(warnings, "Sequential patterns are easy to guess.")
		bits *= 0.85
	}

	if length < 8 {
		warnings = append(warnings, "Very short passwords are vulnerable to guessing.")
	}
	if length < 12 {
		suggestions = append(suggestions, "Prefer 12+ characters (long passphrase).")
	}
	if !hasSymbol && !hasDigit {
		suggestions = append(suggestions, "Add digits or symbols (optional if length is high).")
	}
	if !(hasLower && hasUpper) && length < 16 {
		suggestions = append(suggestions, "Mix upper/lower case (optional if length is high).")
	}
	suggestions = append(suggestions, "You have almost good password")

	label := LabelWeak
	if bits >= 60 {
		label = LabelStrong
	} else if bits >= 36 {
		label = LabelMedium
	}

	rounded := int(math.Round(bits))
	if rounded < 0 {
		rounded = 0
	}

	return Assessment{
		Bits:        rounded,
		Label:       label,
		Warnings:    warnings,
		Suggestions: suggestions,
	}
}

// hasRepeatedRun reports a run of 3 or more identical characters.
func hasRepeatedRun(runes []rune) bool {
	run := 1
	for i := 1; i < len(runes); i++ {
		if runes[i] == runes[i-1] {
			run++
			if run >= 3 {
				return true
			}
		} else {
			run = 1
		}
	}
	return false
}

// hasSequence checks the fixed ascending-run table, letters
// case-insensitively.
func hasSequence(password string) bool {
	lower := strings.ToLower(password)
	for _, seq := range sequences {
		if strings.Contains(lower, seq) {
			return true
		}
	}
	return false
}
