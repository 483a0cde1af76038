package popularity

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var timeLabelRegex = regexp.MustCompile(`^(\d{1,2})(am|pm)$`)

// NormalizeTimeLabel turns hour expressions like "12pm", "12 PM" or
// "12 p.m." into "12 PM". The hour is not range-checked.
func NormalizeTimeLabel(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, " ", "")

	m := timeLabelRegex.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	hour, err := strconv.Atoi(m[1])
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("%d %s", hour, strings.ToUpper(m[2])), true
}

// compactHour lower-cases an hour label and strips spaces and periods so it
// can be searched for inside free text ("12 PM" -> "12pm").
func compactHour(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "")
	return strings.ReplaceAll(s, ".", "")
}
