// Package datefmt infers the layout of loosely written dates and parses them.
//
// Users type dates into a search box in whatever shape they like: 220422,
// 2/4-22, 15.03.2024 10:30, 2024-03, 1711929600 or a full ISO-8601 string.
// InferFormat looks at field widths and separator positions and returns a
// Format describing the layout; an Inferencer then parses the input with
// that Format in a configured location.
//
// Inference is heuristic:
//
//	220422            day, month, two digit year (d#m#y)
//	20220422          year, month, day when the day/month reading is impossible (Y#m#d)
//	2/4-22            natural day and month, two digit year (j#n#y)
//	2022-4-2          year first, natural month and day (Y#n#j)
//	03/15/2024        a middle field over 12 swaps day and month (m#d#Y)
//	2024-03           year and month only (Y#m)
//	1711929600        Unix timestamp (U)
//	2024-03-15T10:00:00+01:00  ISO-8601 (Y-m-d\TH:i:sP)
//
// The # in a pattern matches any of ; : / . , - in the input.
//
// Guess never panics and never returns an error to the caller. It
// returns a Result carrying the failure reason; GuessOr substitutes a
// caller supplied default.
//
// Times that fall into a daylight saving gap are moved forward, so
// 2020-03-29 02:30:00 in Europe/Copenhagen parses as 03:30:00.
package datefmt
