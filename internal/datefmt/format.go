package datefmt

import (
	"fmt"
	"strings"
	"time"
)

// Field is one component of an inferred date layout. The byte values are
// the matching PHP/Carbon format characters, which keeps patterns readable.
type Field byte

const (
	DayPadded   Field = 'd' // 01-31
	Day         Field = 'j' // 1-31
	MonthPadded Field = 'm' // 01-12
	Month       Field = 'n' // 1-12
	YearShort   Field = 'y' // 24
	Year        Field = 'Y' // 2024
)

// IsDay reports whether f is a day field.
func (f Field) IsDay() bool { return f == DayPadded || f == Day }

// IsMonth reports whether f is a month field.
func (f Field) IsMonth() bool { return f == MonthPadded || f == Month }

// IsYear reports whether f is a year field.
func (f Field) IsYear() bool { return f == YearShort || f == Year }

// Precision is how much of the time of day a Format carries.
type Precision int

const (
	NoTime Precision = iota
	Hour
	Minute
	Second
)

// Kind separates field layouts from the two fixed formats.
type Kind int

const (
	KindLayout  Kind = iota // ordered fields plus optional time
	KindUnix                // ten digit Unix timestamp
	KindISO8601             // Y-m-d\TH:i:s[.u]P
)

// Wildcard is the separator used in patterns when any of the accepted
// separator characters may appear in the input.
const Wildcard = "#"

// separators lists the characters the wildcard separator accepts.
const separators = ";:/.,-"

// TimestampLayout is the full timestamp rendering used for ordering
// comparisons and for formats without a field layout.
const TimestampLayout = "2006-01-02 15:04:05"

// Format describes an inferred date/time layout.
type Format struct {
	Kind     Kind
	Date     []Field   // field order, KindLayout only
	Packed   bool      // date fields written without separators, KindLayout only
	Time     Precision // KindLayout only
	Fraction bool      // KindISO8601 only
}

// Pattern renders the format in PHP date() notation, joining date fields
// with dateSep and time fields with timeSep.
func (f Format) Pattern(dateSep, timeSep string) string {
	switch f.Kind {
	case KindUnix:
		return "U"
	case KindISO8601:
		if f.Fraction {
			return `Y-m-d\TH:i:s.uP`
		}
		return `Y-m-d\TH:i:sP`
	}

	parts := make([]string, len(f.Date))
	for i, field := range f.Date {
		parts[i] = string(rune(field))
	}
	pattern := strings.Join(parts, dateSep)

	switch f.Time {
	case Hour:
		pattern += " H"
	case Minute:
		pattern += " H" + timeSep + "i"
	case Second:
		pattern += " H" + timeSep + "i" + timeSep + "s"
	}
	return pattern
}

// String returns the pattern with wildcard separators.
func (f Format) String() string {
	return f.Pattern(Wildcard, Wildcard)
}

// Render formats t with the granularity of f. Unix and ISO-8601 formats
// render as a full timestamp so they can be compared with stored values.
func (f Format) Render(t time.Time, dateSep, timeSep string) string {
	if f.Kind != KindLayout {
		return t.Format(TimestampLayout)
	}

	var b strings.Builder
	for i, field := range f.Date {
		if i > 0 {
			b.WriteString(dateSep)
		}
		b.WriteString(renderField(field, t))
	}

	if f.Time == NoTime {
		return b.String()
	}

	b.WriteByte(' ')
	fmt.Fprintf(&b, "%02d", t.Hour())
	if f.Time >= Minute {
		fmt.Fprintf(&b, "%s%02d", timeSep, t.Minute())
	}
	if f.Time == Second {
		fmt.Fprintf(&b, "%s%02d", timeSep, t.Second())
	}
	return b.String()
}

func renderField(field Field, t time.Time) string {
	switch field {
	case DayPadded:
		return fmt.Sprintf("%02d", t.Day())
	case Day:
		return fmt.Sprintf("%d", t.Day())
	case MonthPadded:
		return fmt.Sprintf("%02d", int(t.Month()))
	case Month:
		return fmt.Sprintf("%d", int(t.Month()))
	case YearShort:
		return fmt.Sprintf("%02d", t.Year()%100)
	default:
		return fmt.Sprintf("%04d", t.Year())
	}
}
