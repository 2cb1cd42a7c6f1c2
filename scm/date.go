/*
Copyright (C) 2024  Carl-Philip Hänsch

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package scm

import (
	"fmt"
	"strings"
	"time"
)

// Dates are exact integers counting seconds since the unix epoch, UTC.

var allowedDateFormats = []string{
	"2006-01-02 15:04:05.000000",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04",
	"2006-01-02",
	"06-01-02 15:04:05",
	"06-01-02",
}

// jiffyEpoch anchors current-jiffy; jiffies only need to be monotonic within a process.
var jiffyEpoch = time.Now()

// ParseDateString tries the allowed formats and returns the unix timestamp.
func ParseDateString(s string) (int64, bool) {
	for _, format := range allowedDateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t.Unix(), true
		}
	}
	return 0, false
}

// toTime accepts a timestamp or a date string.
func toTime(v Scmer, who string) time.Time {
	switch x := v.(type) {
	case string:
		if ts, ok := ParseDateString(x); ok {
			return time.Unix(ts, 0).UTC()
		}
		errorf("%s: cannot parse date %q", who, x)
	}
	if !typeNumber.Matches(v) {
		panic(&TypeCheckError{"date", "date", TypeName(v)})
	}
	return time.Unix(int64(ToFloat(v)), 0).UTC()
}

// strftimeToGo converts %Y-%m-%d style specifiers to a Go layout.
func strftimeToGo(format string) string {
	var buf strings.Builder
	for i := 0; i < len(format); i++ {
		if format[i] == '%' && i+1 < len(format) {
			switch format[i+1] {
			case 'Y':
				buf.WriteString("2006")
			case 'y':
				buf.WriteString("06")
			case 'm':
				buf.WriteString("01")
			case 'd':
				buf.WriteString("02")
			case 'H':
				buf.WriteString("15")
			case 'i', 'M':
				buf.WriteString("04")
			case 's', 'S':
				buf.WriteString("05")
			case '%':
				buf.WriteByte('%')
			default:
				buf.WriteByte(format[i+1])
			}
			i++
		} else {
			buf.WriteByte(format[i])
		}
	}
	return buf.String()
}

func init_date() {
	DeclareTitle("Time")

	Declare(libTime, &Declaration{
		"current-second", "returns the seconds since the unix epoch as an inexact number",
		0, 0,
		[]DeclarationParameter{}, "number",
		func(a ...Scmer) Scmer {
			return NewFloat(float64(time.Now().UnixNano()) / 1e9)
		},
	})
	Declare(libTime, &Declaration{
		"current-jiffy", "returns a monotonic tick count; see jiffies-per-second",
		0, 0,
		[]DeclarationParameter{}, "int",
		func(a ...Scmer) Scmer {
			return NewInt(int64(time.Since(jiffyEpoch)))
		},
	})
	Declare(libTime, &Declaration{
		"jiffies-per-second", "returns the number of jiffies in a second",
		0, 0,
		[]DeclarationParameter{}, "int",
		func(a ...Scmer) Scmer {
			return NewInt(int64(time.Second))
		},
	})

	DeclareTitle("Date")

	Declare(libColibri, &Declaration{
		"now", "returns the current date as a unix timestamp",
		0, 0,
		[]DeclarationParameter{}, "int",
		func(a ...Scmer) Scmer {
			return NewInt(time.Now().Unix())
		},
	})
	Declare(libColibri, &Declaration{
		"parse-date", "parses a date string; an optional format uses %Y %m %d %H %i %s specifiers. Returns #f when the text does not parse.",
		1, 2,
		[]DeclarationParameter{
			DeclarationParameter{"text", "string", "date text"},
			DeclarationParameter{"format", "string", "optional format, e.g. \"%d.%m.%Y\""},
		}, "int",
		func(a ...Scmer) Scmer {
			text := mustString(a[0], "parse-date")
			if len(a) == 2 {
				if t, err := time.Parse(strftimeToGo(mustString(a[1], "parse-date")), text); err == nil {
					return NewInt(t.Unix())
				}
				return false
			}
			if ts, ok := ParseDateString(text); ok {
				return NewInt(ts)
			}
			return false
		},
	})
	Declare(libColibri, &Declaration{
		"format-date", "formats a timestamp or date string; supports %Y %m %d %H %i %s %T and %%",
		2, 2,
		[]DeclarationParameter{
			DeclarationParameter{"date", "any", "unix timestamp or date string"},
			DeclarationParameter{"format", "string", "format, e.g. \"%Y-%m-%d %H:%i:%s\""},
		}, "string",
		func(a ...Scmer) Scmer {
			t := toTime(a[0], "format-date")
			format := mustString(a[1], "format-date")
			// digits are written directly so Go's reference-time numbers in the format stay literal
			var buf strings.Builder
			for i := 0; i < len(format); i++ {
				if format[i] == '%' && i+1 < len(format) {
					switch format[i+1] {
					case 'Y':
						fmt.Fprintf(&buf, "%04d", t.Year())
					case 'm':
						fmt.Fprintf(&buf, "%02d", t.Month())
					case 'd':
						fmt.Fprintf(&buf, "%02d", t.Day())
					case 'H':
						fmt.Fprintf(&buf, "%02d", t.Hour())
					case 'i', 'M':
						fmt.Fprintf(&buf, "%02d", t.Minute())
					case 's', 'S':
						fmt.Fprintf(&buf, "%02d", t.Second())
					case 'T':
						fmt.Fprintf(&buf, "%02d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
					case '%':
						buf.WriteByte('%')
					default:
						buf.WriteByte('%')
						buf.WriteByte(format[i+1])
					}
					i++
				} else {
					buf.WriteByte(format[i])
				}
			}
			return buf.String()
		},
	})
	Declare(libColibri, &Declaration{
		"date-part", "extracts year, month, day, hour, minute or second from a date",
		2, 2,
		[]DeclarationParameter{
			DeclarationParameter{"date", "any", "unix timestamp or date string"},
			DeclarationParameter{"field", "symbol", "year, month, day, hour, minute or second"},
		}, "int",
		func(a ...Scmer) Scmer {
			t := toTime(a[0], "date-part")
			field := strings.ToLower(String(a[1]))
			switch field {
			case "year":
				return NewInt(int64(t.Year()))
			case "month":
				return NewInt(int64(t.Month()))
			case "day":
				return NewInt(int64(t.Day()))
			case "hour":
				return NewInt(int64(t.Hour()))
			case "minute":
				return NewInt(int64(t.Minute()))
			case "second":
				return NewInt(int64(t.Second()))
			}
			errorf("date-part: unknown field %s", field)
			return nil
		},
	})
	Declare(libColibri, &Declaration{
		"date-add", "adds an interval to a date; negative amounts subtract",
		3, 3,
		[]DeclarationParameter{
			DeclarationParameter{"date", "any", "unix timestamp or date string"},
			DeclarationParameter{"amount", "int", "interval amount"},
			DeclarationParameter{"unit", "symbol", "second, minute, hour, day, week, month or year"},
		}, "int",
		func(a ...Scmer) Scmer {
			t := toTime(a[0], "date-add")
			if !isExact(a[1]) {
				panic(&TypeCheckError{"amount", "integer", TypeName(a[1])})
			}
			amount := ToInt(a[1])
			unit := strings.ToLower(String(a[2]))
			switch unit {
			case "second":
				t = t.Add(time.Duration(amount) * time.Second)
			case "minute":
				t = t.Add(time.Duration(amount) * time.Minute)
			case "hour":
				t = t.Add(time.Duration(amount) * time.Hour)
			case "day":
				t = t.AddDate(0, 0, amount)
			case "week":
				t = t.AddDate(0, 0, amount*7)
			case "month":
				t = t.AddDate(0, amount, 0)
			case "year":
				t = t.AddDate(amount, 0, 0)
			default:
				errorf("date-add: unknown unit %s", unit)
			}
			return NewInt(t.Unix())
		},
	})
}
