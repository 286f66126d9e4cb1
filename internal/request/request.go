// Package request turns raw user input into a validated forecast request.
// Dates arrive in several colloquial formats and company names in whatever
// casing the user typed; everything downstream expects them normalized.
package request

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"astro-forecast-bot/internal/types"
)

// dateLayouts lists the accepted registration date formats, tried in order.
var dateLayouts = []string{
	"02.01.2006",
	"02/01/2006",
	"2006-01-02",
	"02-01-2006",
}

var (
	ErrEmptyCompany = errors.New("company name is empty")
	ErrBadDate      = errors.New("unrecognized date format")
)

var (
	spaceRe     = regexp.MustCompile(`\s+`)
	legalFormRe = regexp.MustCompile(`^(?i)(ооо|оао|зао|пао|ип)\s+`)
)

// ParseDate parses a registration date in any of the accepted formats.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrBadDate
}

// CleanCompanyName collapses whitespace and normalizes a leading legal form
// (ооо, оао, зао, пао, ип) to its uppercase spelling.
func CleanCompanyName(name string) string {
	cleaned := spaceRe.ReplaceAllString(strings.TrimSpace(name), " ")
	if m := legalFormRe.FindStringSubmatch(cleaned); m != nil {
		cleaned = strings.ToUpper(m[1]) + " " + cleaned[len(m[0]):]
	}
	return cleaned
}

// Parse validates and normalizes the three user-supplied fields into a
// ForecastRequest. Place may be empty; the resolver falls back to a default.
func Parse(company, date, place string) (types.ForecastRequest, error) {
	name := CleanCompanyName(company)
	if name == "" {
		return types.ForecastRequest{}, ErrEmptyCompany
	}

	parsed, err := ParseDate(date)
	if err != nil {
		return types.ForecastRequest{}, err
	}

	return types.ForecastRequest{
		CompanyName:      name,
		RegistrationDate: parsed,
		Place:            strings.TrimSpace(place),
	}, nil
}
