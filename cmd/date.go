package cmd

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ParsedDate is a datestring plus the precision it was written with, so
// implicit ranges know how far to extend.
type ParsedDate struct {
	Date  time.Time
	Year  bool
	Month bool
	Day   bool
}

var relativeDateRe = regexp.MustCompile(`^(\d+)([dwmy])$`)

func parseDateRangeFromArgs(args []string) (start time.Time, end time.Time, err error) {
	switch len(args) {
	case 1:
		start, end, err = getImplicitDateRange(args[0])

	case 2:
		start, end, err = getExplicitDateRange(args[0], args[1])

	default:
		err = fmt.Errorf("Expected one or two date arguments")
	}
	return
}

func getImplicitDateRange(ds string) (start time.Time, end time.Time, err error) {
	date, err := parseSingleDatestring(ds)
	if err != nil {
		return
	}

	start = date.Date
	switch {
	case date.Year:
		end = start.AddDate(1, 0, 0)

	case date.Month:
		end = start.AddDate(0, 1, 0)

	case date.Day:
		end = start.AddDate(0, 0, 1)

	default:
		// Relative datestring: the range runs up to now.
		end = time.Now()
	}

	return
}

func getExplicitDateRange(startString, endString string) (start time.Time, end time.Time, err error) {
	startParsed, err := parseSingleDatestring(startString)
	if err != nil {
		return
	}
	start = startParsed.Date

	endParsed, err := parseSingleDatestring(endString)
	if err != nil {
		return
	}
	end = endParsed.Date

	return
}

// parseSingleDatestring accepts 'yyyy', 'yyyy-mm', 'yyyy-mm-dd', or a
// relative offset like '30d', '12w', '6m', '10y' counted back from now.
func parseSingleDatestring(ds string) (date ParsedDate, err error) {
	if m := relativeDateRe.FindStringSubmatch(ds); m != nil {
		amount, aerr := strconv.Atoi(m[1])
		if aerr != nil {
			err = fmt.Errorf("Parsing relative datestring: %w", aerr)
			return
		}
		now := time.Now()
		switch m[2] {
		case "d":
			date.Date = now.AddDate(0, 0, -amount)
		case "w":
			date.Date = now.AddDate(0, 0, -amount*7)
		case "m":
			date.Date = now.AddDate(0, -amount, 0)
		case "y":
			date.Date = now.AddDate(-amount, 0, 0)
		}
		return
	}

	matched, err := regexp.MatchString(`^\d{4}$`, ds)
	if err != nil {
		err = fmt.Errorf("Parsing datestring as year: %w", err)
		return
	}
	if matched {
		date.Date, err = time.Parse("2006", ds)
		if err != nil {
			err = fmt.Errorf("Parsing datestring as year: %w", err)
			return
		}
		date.Year = true
		return
	}

	matched, err = regexp.MatchString(`^\d{4}-\d{2}$`, ds)
	if err != nil {
		err = fmt.Errorf("Parsing datestring as month: %w", err)
		return
	}
	if matched {
		date.Date, err = time.Parse("2006-01", ds)
		if err != nil {
			err = fmt.Errorf("Parsing datestring as month: %w", err)
			return
		}
		date.Month = true
		return
	}

	matched, err = regexp.MatchString(`^\d{4}-\d{2}-\d{2}$`, ds)
	if err != nil {
		err = fmt.Errorf("Parsing datestring as day: %w", err)
		return
	}
	if matched {
		date.Date, err = time.Parse("2006-01-02", ds)
		if err != nil {
			err = fmt.Errorf("Parsing datestring as day: %w", err)
			return
		}
		date.Day = true
		return
	}

	err = fmt.Errorf("Invalid format: %q", ds)
	return
}
