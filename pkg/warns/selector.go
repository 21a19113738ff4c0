package warns

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/models"
)

// Precision is how much of a timestamp a DatePrefix pins down
type Precision int

const (
	PrecisionYear Precision = iota + 1
	PrecisionMonth
	PrecisionDay
	PrecisionHour
	PrecisionMinute
	PrecisionSecond
	PrecisionMillisecond
)

// canonicalLayout is how warning dates are rendered for display and matching
const canonicalLayout = "2006-01-02T15:04:05.000Z"

// YYYY[-MM[-DD[{T| }HH[:MM[:SS[.mmm]]]]]][Z], T and Z in either case
var datePrefixRe = regexp.MustCompile(
	`^(\d{4})(?:-(\d{2})(?:-(\d{2})(?:[Tt ](\d{2})(?::(\d{2})(?::(\d{2})(?:\.(\d{3}))?)?)?)?)?)?[Zz]?$`,
)

// DatePrefix is a partially specified UTC timestamp typed in by an admin.
// Only the fields up to Precision are meaningful.
type DatePrefix struct {
	Precision   Precision
	Year        int
	Month       int
	Day         int
	Hour        int
	Minute      int
	Second      int
	Millisecond int
	// Zulu is set when the input ended in Z. The canonical rendering only
	// carries a Z after the milliseconds, so a Z matches nothing earlier.
	Zulu bool
}

// ParseDatePrefix parses a disambiguator. Components are checked for shape
// only: "2024-13" parses and simply matches nothing.
func ParseDatePrefix(s string) (DatePrefix, error) {
	m := datePrefixRe.FindStringSubmatch(s)
	if m == nil {
		return DatePrefix{}, &ValidationError{Input: s}
	}

	var p DatePrefix
	fields := []*int{&p.Year, &p.Month, &p.Day, &p.Hour, &p.Minute, &p.Second, &p.Millisecond}
	for i, dst := range fields {
		group := m[i+1]
		if group == "" {
			break
		}
		n, err := strconv.Atoi(group)
		if err != nil {
			return DatePrefix{}, &ValidationError{Input: s}
		}
		*dst = n
		p.Precision = Precision(i + 1)
	}
	p.Zulu = strings.HasSuffix(strings.ToUpper(s), "Z")
	return p, nil
}

// Matches reports whether t, rendered canonically in UTC, starts with the prefix
func (p DatePrefix) Matches(t time.Time) bool {
	if p.Zulu && p.Precision < PrecisionMillisecond {
		return false
	}

	u := t.UTC()
	actual := []int{u.Year(), int(u.Month()), u.Day(), u.Hour(), u.Minute(), u.Second(), u.Nanosecond() / int(time.Millisecond)}
	wanted := []int{p.Year, p.Month, p.Day, p.Hour, p.Minute, p.Second, p.Millisecond}

	for i := 0; i < int(p.Precision); i++ {
		if actual[i] != wanted[i] {
			return false
		}
	}
	return p.Precision > 0
}

// String renders the normalized prefix, e.g. "2024-01-05T08" or
// "2024-01-05T08:30:00.000Z"
func (p DatePrefix) String() string {
	var b strings.Builder
	parts := []struct {
		sep   string
		width int
		value int
	}{
		{"", 4, p.Year},
		{"-", 2, p.Month},
		{"-", 2, p.Day},
		{"T", 2, p.Hour},
		{":", 2, p.Minute},
		{":", 2, p.Second},
		{".", 3, p.Millisecond},
	}
	for i := 0; i < int(p.Precision) && i < len(parts); i++ {
		fmt.Fprintf(&b, "%s%0*d", parts[i].sep, parts[i].width, parts[i].value)
	}
	if p.Zulu {
		b.WriteByte('Z')
	}
	return b.String()
}

// CanonicalDate renders t the way warnings are matched and displayed
func CanonicalDate(t time.Time) string {
	return t.UTC().Format(canonicalLayout)
}

// Select picks the warning to revoke from the active warnings.
//
// Without a disambiguator the most recent active warning is chosen. Otherwise
// the disambiguator must be a date prefix and the oldest active warning whose
// date matches it wins; undated warnings never match.
func Select(active []models.Warning, disambiguator string) (models.Warning, error) {
	disambiguator = strings.TrimSpace(disambiguator)

	if disambiguator == "" {
		if len(active) == 0 {
			return models.Warning{}, &NotFoundError{Err: ErrWarnNotFound}
		}
		return active[len(active)-1], nil
	}

	prefix, err := ParseDatePrefix(disambiguator)
	if err != nil {
		return models.Warning{}, err
	}

	for _, w := range active {
		if w.HasDate() && prefix.Matches(*w.Date) {
			return w, nil
		}
	}
	return models.Warning{}, &NotFoundError{Subject: prefix.String(), Err: ErrWarnNotFound}
}
