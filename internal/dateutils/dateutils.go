// Package dateutils provides the date handling shared by the statement parser
// and the mirrors: month/day tokens, statement periods and year resolution.
package dateutils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"fjacquet/fintrack/internal/models"
)

// Common date format constants used throughout the application
const (
	DateLayoutISO  = "2006-01-02"
	DateLayoutFull = "2006-01-02 15:04:05"
)

// MonthDayPattern matches a statement date token such as "Sep 6", "SEP 06" or "Sep. 6".
const MonthDayPattern = `\b(?i:(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec))\.?\s+(\d{1,2})`

var (
	monthDayRe = regexp.MustCompile(`^` + MonthDayPattern + `$`)
	spacesRe   = regexp.MustCompile(`\s+`)

	// "Sep 1 to Sep 30, 2025", "Nov 20, 2024 to Dec 19, 2024", "Dec 20 - Jan 19, 2025"
	periodRe = regexp.MustCompile(MonthDayPattern + `(?:,?\s+(\d{4}))?\s*(?:to|-|–)\s*` + MonthDayPattern + `,?\s+(\d{4})`)
)

var months = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// ToISODate formats a time.Time value as an ISO date (YYYY-MM-DD)
func ToISODate(date time.Time) string {
	return date.Format(DateLayoutISO)
}

// CleanDateString trims a date string and collapses inner whitespace.
func CleanDateString(dateStr string) string {
	return spacesRe.ReplaceAllString(strings.TrimSpace(dateStr), " ")
}

// ParseMonth converts a three-letter English month abbreviation.
func ParseMonth(abbr string) (time.Month, error) {
	m, ok := months[strings.ToLower(strings.TrimSuffix(abbr, "."))]
	if !ok {
		return 0, fmt.Errorf("unknown month %q", abbr)
	}
	return m, nil
}

// ParseMonthDay parses a year-less date token like "Sep 06".
func ParseMonthDay(token string) (time.Month, int, error) {
	m := monthDayRe.FindStringSubmatch(CleanDateString(token))
	if m == nil {
		return 0, 0, fmt.Errorf("invalid date token %q", token)
	}
	return monthDay(m[1], m[2])
}

func monthDay(monthStr, dayStr string) (time.Month, int, error) {
	month, err := ParseMonth(monthStr)
	if err != nil {
		return 0, 0, err
	}
	day, err := strconv.Atoi(dayStr)
	if err != nil || day < 1 || day > 31 {
		return 0, 0, fmt.Errorf("invalid day %q", dayStr)
	}
	return month, day, nil
}

// ParsePeriod finds the first statement period in text. When the start
// year is not printed it is taken from the end year, minus one if the start
// month comes after the end month.
func ParsePeriod(text string) (time.Time, time.Time, error) {
	m := periodRe.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, time.Time{}, fmt.Errorf("no statement period found")
	}

	startMonth, startDay, err := monthDay(m[1], m[2])
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	endMonth, endDay, err := monthDay(m[4], m[5])
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	endYear, _ := strconv.Atoi(m[6])

	startYear := endYear
	if m[3] != "" {
		startYear, _ = strconv.Atoi(m[3])
	} else if startMonth > endMonth {
		startYear--
	}

	start, err := makeDate(startYear, startMonth, startDay)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := makeDate(endYear, endMonth, endDay)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("period ends %s before it starts %s", ToISODate(end), ToISODate(start))
	}
	return start, end, nil
}

// IsPeriodLine reports whether line carries a statement period.
func IsPeriodLine(line string) bool {
	return periodRe.MatchString(line)
}

// ResolveDate gives a year-less month/day its year from the statement period.
// Inside a period that crosses a year boundary, months before the start
// month belong to the end year; everything else belongs to the start year.
func ResolveDate(period models.Period, month time.Month, day int) (time.Time, error) {
	year := period.Start.Year()
	if period.CrossesYear() && month < period.Start.Month() {
		year = period.End.Year()
	}
	return makeDate(year, month, day)
}

func makeDate(year int, month time.Month, day int) (time.Time, error) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || t.Month() != month {
		return time.Time{}, fmt.Errorf("invalid date %d %s %d", day, month, year)
	}
	return t, nil
}
