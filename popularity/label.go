package popularity

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrNoPercent is returned when a label carries no "<N>%" token.
	ErrNoPercent = errors.New("no percent token")
	// ErrMalformedPercent is returned when the digits before "%" do not
	// parse as an int. Callers skip the label.
	ErrMalformedPercent = errors.New("malformed percent token")
)

var (
	percentRegex       = regexp.MustCompile(`(\d+)%`)
	prefixPercentRegex = regexp.MustCompile(`%(\d+)`)
	leadingHourRegex   = regexp.MustCompile(`^\s*([0-9]{1,2}\s*(?:am|pm|a\.m\.|p\.m\.))`)
)

// Locale lists the lower-case tokens one UI language uses in popular-times
// bar labels.
type Locale struct {
	Name    string
	Busy    []string
	Current []string
	Usual   []string

	// PercentFirst is set for languages that write "%40" instead of "40%".
	// Both forms are accepted for such a locale.
	PercentFirst bool
}

var (
	English = Locale{
		Name:    "en",
		Busy:    []string{"busy"},
		Current: []string{"currently"},
		Usual:   []string{"usually"},
	}
	Turkish = Locale{
		Name:    "tr",
		Busy:    []string{"meşgul"},
		Current: []string{"şu anda"},
		Usual:   []string{"genelde", "normalde"},

		PercentFirst: true,
	}
)

// DefaultLocales are the locales understood by the package-level helpers.
var DefaultLocales = []Locale{English, Turkish}

// LabelTag is the role a label plays in a popular-times histogram.
type LabelTag string

const (
	TagUnrelated LabelTag = "unrelated"
	TagCurrent   LabelTag = "current"
	TagUsual     LabelTag = "usual"
)

// Classifier answers questions about single labels for a set of locales.
// It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	busy    []string
	current []string
	usual   []string

	currentPct []*regexp.Regexp
	usualPct   []*regexp.Regexp

	// percentFirst is true when any locale writes the percent sign first.
	percentFirst bool
}

// NewClassifier builds a Classifier understanding the union of the given
// locales' tokens.
func NewClassifier(locales ...Locale) *Classifier {
	c := &Classifier{}
	for _, l := range locales {
		c.busy = appendLower(c.busy, l.Busy)
		c.current = appendLower(c.current, l.Current)
		c.usual = appendLower(c.usual, l.Usual)
		c.currentPct = append(c.currentPct, tokenPercentRegexes(l.Current, l.PercentFirst)...)
		c.usualPct = append(c.usualPct, tokenPercentRegexes(l.Usual, l.PercentFirst)...)
		c.percentFirst = c.percentFirst || l.PercentFirst
	}
	return c
}

var defaultClassifier = NewClassifier(DefaultLocales...)

func appendLower(dst, tokens []string) []string {
	for _, t := range tokens {
		dst = append(dst, strings.ToLower(t))
	}
	return dst
}

// tokenPercentRegexes compiles "<token>\s+(\d+)%" for each token, and
// "<token>\s+%(\d+)" as well when percentFirst is set.
func tokenPercentRegexes(tokens []string, percentFirst bool) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, 2*len(tokens))
	for _, t := range tokens {
		quoted := regexp.QuoteMeta(strings.ToLower(t))
		out = append(out, regexp.MustCompile(quoted+`\s+(\d+)%`))
		if percentFirst {
			out = append(out, regexp.MustCompile(quoted+`\s+%(\d+)`))
		}
	}
	return out
}

func containsAny(low string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(low, t) {
			return true
		}
	}
	return false
}

// IsBusynessLabel reports whether raw has a "%" and a busy token.
func (c *Classifier) IsBusynessLabel(raw string) bool {
	if !strings.Contains(raw, "%") {
		return false
	}
	return containsAny(strings.ToLower(raw), c.busy)
}

// DescribesCurrent reports whether raw mentions the live reading.
func (c *Classifier) DescribesCurrent(raw string) bool {
	return containsAny(strings.ToLower(raw), c.current)
}

// DescribesUsual reports whether raw mentions the typical reading.
func (c *Classifier) DescribesUsual(raw string) bool {
	return containsAny(strings.ToLower(raw), c.usual)
}

// Tag classifies raw as a current reading, a usual reading or unrelated.
// A label describing both roles is tagged current.
func (c *Classifier) Tag(raw string) LabelTag {
	switch {
	case !c.IsBusynessLabel(raw):
		return TagUnrelated
	case c.DescribesCurrent(raw):
		return TagCurrent
	case c.DescribesUsual(raw):
		return TagUsual
	default:
		return TagUnrelated
	}
}

// currentPercent finds "<current token> N%" in raw.
func (c *Classifier) currentPercent(raw string) (int, error) {
	return firstTokenPercent(strings.ToLower(raw), c.currentPct)
}

// usualPercent finds "<usual token> N%" in raw.
func (c *Classifier) usualPercent(raw string) (int, error) {
	return firstTokenPercent(strings.ToLower(raw), c.usualPct)
}

func firstTokenPercent(low string, regexes []*regexp.Regexp) (int, error) {
	for _, re := range regexes {
		if m := re.FindStringSubmatch(low); m != nil {
			return parsePercent(m[1])
		}
	}
	return 0, ErrNoPercent
}

// ExtractPercent returns the first integer immediately preceding a "%".
func ExtractPercent(raw string) (int, error) {
	m := percentRegex.FindStringSubmatch(raw)
	if m == nil {
		return 0, ErrNoPercent
	}
	return parsePercent(m[1])
}

// percent is ExtractPercent extended with the "%40" form when a registered
// locale writes the sign first.
func (c *Classifier) percent(raw string) (int, error) {
	pct, err := ExtractPercent(raw)
	if !errors.Is(err, ErrNoPercent) || !c.percentFirst {
		return pct, err
	}
	m := prefixPercentRegex.FindStringSubmatch(raw)
	if m == nil {
		return 0, ErrNoPercent
	}
	return parsePercent(m[1])
}

func parsePercent(digits string) (int, error) {
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedPercent, digits)
	}
	return n, nil
}

// ExtractLeadingHour returns the normalized hour a label starts with, as in
// "12 PM: Currently 40% busy.".
func ExtractLeadingHour(raw string) (string, bool) {
	m := leadingHourRegex.FindStringSubmatch(strings.ToLower(raw))
	if m == nil {
		return "", false
	}
	return NormalizeTimeLabel(m[1])
}

// IsBusynessLabel reports whether raw is a busyness label in any of the
// default locales.
func IsBusynessLabel(raw string) bool { return defaultClassifier.IsBusynessLabel(raw) }

// DescribesCurrent uses the default locales.
func DescribesCurrent(raw string) bool { return defaultClassifier.DescribesCurrent(raw) }

// DescribesUsual uses the default locales.
func DescribesUsual(raw string) bool { return defaultClassifier.DescribesUsual(raw) }

// Tag uses the default locales.
func Tag(raw string) LabelTag { return defaultClassifier.Tag(raw) }
