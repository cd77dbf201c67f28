package extract

import (
	"regexp"
	"strconv"
)

// Counts is the result of extracting child counts from free text.
// A nil field means the count was not found, not zero. Inferred is set
// when the counts were guessed from phrasing ("son and daughter")
// rather than stated explicitly.
type Counts struct {
	Sons      *int `json:"sons"`
	Daughters *int `json:"daughters"`
	Inferred  bool `json:"inferred,omitempty"`
}

// rule is one pattern in the ordered fallback chain. value converts
// the regexp submatches into a count.
type rule struct {
	name  string
	re    *regexp.Regexp
	value func(match []string) (int, bool)
}

func digitValue(match []string) (int, bool) {
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

func wordValue(match []string) (int, bool) {
	return NumberWord(match[1])
}

const numberWordAlt = `zero|one|two|three|four|five|six|seven|eight|nine|ten`

// ChildExtractor extracts (sons, daughters) counts from biographical
// text in English, Hindi, or a mix. Rules are evaluated in priority
// order; the first hit per field wins and the two fields resolve
// independently.
type ChildExtractor struct {
	sonRules      []rule
	daughterRules []rule
	oneEach       *regexp.Regexp
}

// NewChildExtractor creates an extractor with the built-in rule chain.
func NewChildExtractor() *ChildExtractor {
	return &ChildExtractor{
		sonRules: []rule{
			{"digit", regexp.MustCompile(`(?i)(\d+)\s*sons?\b`), digitValue},
			{"colon", regexp.MustCompile(`(?i)sons?\s*:\s*(\d+)`), digitValue},
			// पुत्री (daughter) starts with पुत्र (son), so the son form
			// must not be followed by the ी matra.
			{"hindi-digit", regexp.MustCompile(`(\d+)\s*(?:पुत्र(?:[^ी]|$)|बेटे|बेटा)`), digitValue},
			{"hindi-colon", regexp.MustCompile(`(?:पुत्र|बेटे|बेटा)\s*:?\s*(\d+)`), digitValue},
			{"word", regexp.MustCompile(`(?i)\b(` + numberWordAlt + `)\s+sons?\b`), wordValue},
		},
		daughterRules: []rule{
			{"digit", regexp.MustCompile(`(?i)(\d+)\s*daughters?\b`), digitValue},
			{"colon", regexp.MustCompile(`(?i)daughters?\s*:\s*(\d+)`), digitValue},
			{"hindi-digit", regexp.MustCompile(`(\d+)\s*(?:पुत्री|बेटी)`), digitValue},
			{"hindi-colon", regexp.MustCompile(`(?:पुत्री|बेटी)\s*:?\s*(\d+)`), digitValue},
			{"word", regexp.MustCompile(`(?i)\b(` + numberWordAlt + `)\s+daughters?\b`), wordValue},
		},
		oneEach: regexp.MustCompile(`(?i)\b(?:has\s+)?(?:a\s+)?son\s+and\s+(?:a\s+)?daughter\b`),
	}
}

// Extract applies the rule chains to the text. Empty input yields both
// fields nil; extraction never fails on malformed text.
func (e *ChildExtractor) Extract(text string) Counts {
	var result Counts
	if text == "" {
		return result
	}

	result.Sons = firstMatch(e.sonRules, text)
	result.Daughters = firstMatch(e.daughterRules, text)

	// "son and daughter" with no explicit count means one of each.
	// A heuristic, not a measurement, so the result is flagged.
	if result.Sons == nil && result.Daughters == nil &&
		e.oneEach.MatchString(text) {
		one := 1
		other := 1
		result.Sons = &one
		result.Daughters = &other
		result.Inferred = true
	}

	return result
}

func firstMatch(rules []rule, text string) *int {
	for _, r := range rules {
		match := r.re.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		if n, ok := r.value(match); ok {
			return &n
		}
	}
	return nil
}

var defaultExtractor = NewChildExtractor()

// Children extracts child counts using the default rule chain.
func Children(text string) Counts {
	return defaultExtractor.Extract(text)
}
