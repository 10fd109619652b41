package datefmt

import (
	"strings"
	"unicode/utf8"
)

// InferFormat guesses the layout of input without parsing it.
//
// The input is split into a date part and a time part at the first 'T',
// or the first space when there is no 'T'. Separators are looked for at
// positions 1, 2 and 4 of the date part. Field widths choose padded or
// natural day/month and short or long year fields. Returns false when no
// layout can be derived.
func InferFormat(input string) (Format, bool) {
	input = strings.TrimSpace(input)
	length := utf8.RuneCountInString(input)

	var (
		format Format
		ok     bool
	)

	if length >= 6 {
		format, ok = inferLayout(input)
	}

	if length == 10 && allDigits(input) {
		format, ok = Format{Kind: KindUnix}, true
	}

	if length >= 20 && strings.Contains(input, "T") {
		format = Format{
			Kind:     KindISO8601,
			Fraction: strings.Contains(after(input, "T"), "."),
		}
		ok = true
	}

	return format, ok
}

// inferLayout handles everything from 220422 to a full date and time.
func inferLayout(input string) (Format, bool) {
	splitAt := " "
	if strings.Contains(input, "T") {
		splitAt = "T"
	}
	date := before(input, splitAt)
	timePart := ""
	if len(input) > len(date)+1 {
		timePart = input[len(date)+1:]
	}

	first := separatorAt(date, 1, 2, 4)
	rest := after(date, first)
	second := separatorAt(rest, 1, 2, 3, 4)

	var fields []Field
	packed := first == "" && second == ""
	switch {
	case packed:
		fields = inferPacked(date)
	case first == "":
		return Format{}, false
	case second == "":
		fields = inferPair(before(date, first), rest)
	default:
		fields = inferTriple(before(date, first), before(rest, second), after(rest, second))
	}
	if fields == nil {
		return Format{}, false
	}

	format := Format{Kind: KindLayout, Date: fields, Packed: packed}
	switch utf8.RuneCountInString(timePart) {
	case 8:
		format.Time = Second
	case 5:
		format.Time = Minute
	case 2:
		format.Time = Hour
	}
	return format, true
}

// inferPacked handles dates without separators such as 220422 or 22042022.
func inferPacked(date string) []Field {
	if len(date) < 4 {
		return nil
	}
	month := leadingInt(date[2:4])
	year := date[4:]

	fields := []Field{DayPadded, MonthPadded, YearShort}
	if len(year) == 4 {
		fields[2] = Year
	}

	if month > 12 {
		// 20220422 reads as year, month, day when the day/month reading is impossible.
		if len(date) == 8 {
			if m := leadingInt(date[4:6]); m >= 1 && m <= 12 {
				return []Field{Year, MonthPadded, DayPadded}
			}
		}
		fields[0], fields[1] = fields[1], fields[0]
	}
	return fields
}

// inferPair handles two-field dates; one field must be a four digit year.
func inferPair(first, second string) []Field {
	switch {
	case len(first) == 4:
		return []Field{Year, monthField(second)}
	case len(second) == 4:
		return []Field{monthField(first), Year}
	default:
		return nil
	}
}

// inferTriple handles d-m-y, m-d-y and Y-m-d shaped dates.
func inferTriple(first, second, third string) []Field {
	if len(first) == 4 {
		fields := []Field{Year, monthField(second), dayField(third)}
		if leadingInt(second) > 12 {
			fields[1], fields[2] = fields[2], fields[1]
		}
		return fields
	}

	year := Year
	if len(third) == 2 {
		year = YearShort
	}
	fields := []Field{dayField(first), monthField(second), year}
	if leadingInt(second) > 12 {
		fields[0], fields[1] = fields[1], fields[0]
	}
	return fields
}

func dayField(s string) Field {
	if len(s) == 1 {
		return Day
	}
	return DayPadded
}

func monthField(s string) Field {
	if len(s) == 1 {
		return Month
	}
	return MonthPadded
}

// separatorAt returns the character at the first of positions that is
// not a digit. Positions past the end yield "", which means no separator.
func separatorAt(s string, positions ...int) string {
	for _, p := range positions {
		if p >= len(s) {
			return ""
		}
		if c := s[p]; c < '0' || c > '9' {
			return s[p : p+1]
		}
	}
	return ""
}

// before returns s up to the first sep, or all of s when sep is empty or missing.
func before(s, sep string) string {
	if sep == "" {
		return s
	}
	if i := strings.Index(s, sep); i >= 0 {
		return s[:i]
	}
	return s
}

// after returns s past the first sep, or all of s when sep is empty or missing.
func after(s, sep string) string {
	if sep == "" {
		return s
	}
	if i := strings.Index(s, sep); i >= 0 {
		return s[i+len(sep):]
	}
	return s
}

// leadingInt parses the leading digits of s; no digits yields 0.
func leadingInt(s string) int {
	n := 0
	for i := 0; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		n = n*10 + int(s[i]-'0')
	}
	return n
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
