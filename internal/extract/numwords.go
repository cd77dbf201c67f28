package extract

import "strings"

// numberWords maps spelled-out English counts to integers. Sources like
// the Rajya Sabha biodata API report counts as words ("Two").
var numberWords = map[string]int{
	"zero":  0,
	"one":   1,
	"two":   2,
	"three": 3,
	"four":  4,
	"five":  5,
	"six":   6,
	"seven": 7,
	"eight": 8,
	"nine":  9,
	"ten":   10,
}

// NumberWord converts a spelled-out count to an integer.
func NumberWord(s string) (int, bool) {
	n, ok := numberWords[strings.ToLower(strings.TrimSpace(s))]
	return n, ok
}
