package datefmt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	// Embedded zone database so the default location resolves on hosts
	// without /usr/share/zoneinfo.
	_ "time/tzdata"
)

// DefaultTimezone is the location dates are parsed in unless the caller
// configures another one.
const DefaultTimezone = "Europe/Copenhagen"

// Failure reasons carried by Result.Err.
var (
	ErrEmpty       = errors.New("no input for date")
	ErrNoFormat    = errors.New("format could not be determined")
	ErrUnparseable = errors.New("date does not match its format")
	ErrInvalidDate = errors.New("invalid calendar date")
)

// DefaultLocation loads DefaultTimezone, falling back to UTC.
func DefaultLocation() *time.Location {
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Result is the outcome of guessing a date. Err is nil on success.
type Result struct {
	Time   time.Time
	Format Format
	Err    error
}

// OK reports whether a date was parsed.
func (r Result) OK() bool { return r.Err == nil }

// Inferencer parses loosely written dates in a fixed location.
// The zero value is not usable; use NewInferencer.
type Inferencer struct {
	loc *time.Location
}

// NewInferencer returns an Inferencer parsing in loc, or in
// DefaultLocation when loc is nil.
func NewInferencer(loc *time.Location) *Inferencer {
	if loc == nil {
		loc = DefaultLocation()
	}
	return &Inferencer{loc: loc}
}

// Location returns the location dates are parsed in and reported in.
func (in *Inferencer) Location() *time.Location {
	return in.loc
}

// Guess infers the format of input and parses it. Inputs of ten
// characters or fewer are truncated to the start of their day. Parsed
// times are always reported in the Inferencer's location.
func (in *Inferencer) Guess(input string) Result {
	input = strings.TrimSpace(input)
	if input == "" {
		return Result{Err: ErrEmpty}
	}

	format, ok := InferFormat(input)
	if !ok {
		return Result{Err: ErrNoFormat}
	}

	t, err := parse(input, format, in.loc)
	if err != nil {
		return Result{Format: format, Err: err}
	}
	t = t.In(in.loc)

	if utf8.RuneCountInString(input) <= 10 {
		t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, in.loc)
	}

	return Result{Time: t, Format: format}
}

// GuessOr is Guess with def substituted on failure.
func (in *Inferencer) GuessOr(input string, def time.Time) time.Time {
	if r := in.Guess(input); r.OK() {
		return r.Time
	}
	return def
}

// Parse parses input with a known format in loc. It is the primitive
// Guess uses after inference and is exposed for callers that already
// hold a Format.
func Parse(input string, f Format, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = DefaultLocation()
	}
	return parse(strings.TrimSpace(input), f, loc)
}

func parse(input string, f Format, loc *time.Location) (time.Time, error) {
	switch f.Kind {
	case KindUnix:
		secs, err := strconv.ParseInt(input, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %v", ErrUnparseable, err)
		}
		return time.Unix(secs, 0).In(loc), nil
	case KindISO8601:
		layout := "2006-01-02T15:04:05Z07:00"
		if f.Fraction {
			layout = "2006-01-02T15:04:05.999999999Z07:00"
		}
		t, err := time.ParseInLocation(layout, input, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %v", ErrUnparseable, err)
		}
		return t, nil
	default:
		return scanLayout(input, f, loc)
	}
}

// scanLayout reads input field by field. Separators between date fields
// may be any of the wildcard characters, or absent for packed dates; the
// date and time are divided by a space or a 'T'.
func scanLayout(input string, f Format, loc *time.Location) (time.Time, error) {
	s := &scanner{in: input}
	year, month, day := 0, 1, 1
	hour, minute, second := 0, 0, 0

	for i, field := range f.Date {
		if i > 0 && !f.Packed && !s.separator(separators) {
			return time.Time{}, s.fail("date separator")
		}
		var ok bool
		switch {
		case field.IsDay():
			day, ok = s.number(f.width(field, 1), 2)
		case field.IsMonth():
			month, ok = s.number(f.width(field, 1), 2)
		case field == YearShort:
			var yy int
			if yy, ok = s.number(2, 2); ok {
				year = expandYear(yy)
			}
		default:
			year, ok = s.number(f.width(field, 1), 4)
		}
		if !ok {
			return time.Time{}, s.fail(string(rune(field)))
		}
	}

	if f.Time != NoTime {
		if !s.separator(" T") {
			return time.Time{}, s.fail("time")
		}
		var ok bool
		if hour, ok = s.number(1, 2); !ok {
			return time.Time{}, s.fail("H")
		}
		if f.Time >= Minute {
			if !s.separator(separators) {
				return time.Time{}, s.fail("time separator")
			}
			if minute, ok = s.number(2, 2); !ok {
				return time.Time{}, s.fail("i")
			}
		}
		if f.Time == Second {
			if !s.separator(separators) {
				return time.Time{}, s.fail("time separator")
			}
			if second, ok = s.number(2, 2); !ok {
				return time.Time{}, s.fail("s")
			}
		}
	}

	if !s.done() {
		return time.Time{}, s.fail("end of input")
	}

	if month < 1 || month > 12 || day < 1 || day > daysIn(year, time.Month(month)) ||
		hour > 23 || minute > 59 || second > 59 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, input)
	}

	// time.Date moves times inside a daylight saving gap forward.
	return time.Date(year, time.Month(month), day, hour, minute, second, 0, loc), nil
}

// width returns the minimum digit count of field. Packed fields have no
// separator to end them, so they are read at their full width.
func (f Format) width(field Field, natural int) int {
	if !f.Packed {
		return natural
	}
	if field == Year {
		return 4
	}
	return 2
}

// expandYear maps two digit years the way PHP does: 70-99 to the 1900s,
// everything else to the 2000s.
func expandYear(yy int) int {
	if yy >= 70 {
		return 1900 + yy
	}
	return 2000 + yy
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

type scanner struct {
	in  string
	pos int
}

// number reads between min and max digits.
func (s *scanner) number(min, max int) (int, bool) {
	start := s.pos
	n := 0
	for s.pos < len(s.in) && s.pos-start < max && s.in[s.pos] >= '0' && s.in[s.pos] <= '9' {
		n = n*10 + int(s.in[s.pos]-'0')
		s.pos++
	}
	return n, s.pos-start >= min
}

// separator consumes one character out of set.
func (s *scanner) separator(set string) bool {
	if s.pos >= len(s.in) || !strings.ContainsRune(set, rune(s.in[s.pos])) {
		return false
	}
	s.pos++
	return true
}

func (s *scanner) done() bool {
	return s.pos == len(s.in)
}

func (s *scanner) fail(expected string) error {
	return fmt.Errorf("%w: expected %s at offset %d of %q", ErrUnparseable, expected, s.pos, s.in)
}
