/*
Copyright (C) 2023-2026  Carl-Philip Hänsch
Copyright (C) 2013  Pieter Kelchtermans (originally licensed unter WTFPL 2.0)

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
/*
 * A minimal Scheme interpreter, as seen in lis.py and SICP
 * http://norvig.com/lispy.html
 * http://mitpress.mit.edu/sicp/full-text/sicp/book/node77.html
 *
 * Pieter Kelchtermans 2013
 * LICENSE: WTFPL 2.0
 */
package scm

import "math"
import "math/big"
import "strconv"
import "strings"
import "github.com/nukata/goarith"

func toNumber(v Scmer, who string) goarith.Number {
	if n, ok := v.(goarith.Number); ok {
		return n
	}
	panic(&TypeCheckError{who, "number", TypeName(v)})
}

// IsExactInteger: every number that is not a float is an exact integer.
func IsExactInteger(n goarith.Number) bool {
	_, isFloat := n.(goarith.Float64)
	return !isFloat
}

func isExact(v Scmer) bool {
	n, ok := v.(goarith.Number)
	return ok && IsExactInteger(n)
}

func ToFloat(v Scmer) float64 {
	switch x := v.(type) {
	case goarith.Int32:
		return float64(x)
	case goarith.Int64:
		return float64(x)
	case goarith.Float64:
		return float64(x)
	case goarith.Number:
		f, _ := strconv.ParseFloat(x.String(), 64)
		return f
	}
	panic(&TypeCheckError{"value", "number", TypeName(v)})
}

// toBig converts an exact integer.
func toBig(v Scmer, who string) *big.Int {
	switch x := v.(type) {
	case goarith.Int32:
		return big.NewInt(int64(x))
	case goarith.Int64:
		return big.NewInt(int64(x))
	case goarith.Float64:
		f := float64(x)
		if f != math.Trunc(f) || math.IsInf(f, 0) {
			panic(&TypeCheckError{who, "integer", "real"})
		}
		i, _ := big.NewFloat(f).Int(nil)
		return i
	case goarith.Number:
		i, ok := new(big.Int).SetString(x.String(), 10)
		if ok {
			return i
		}
	}
	panic(&TypeCheckError{who, "integer", TypeName(v)})
}

func ToInt(v Scmer) int {
	switch x := v.(type) {
	case goarith.Int32:
		return int(x)
	case goarith.Int64:
		return int(x)
	case goarith.Float64:
		return int(x)
	}
	return int(toBig(v, "value").Int64())
}

// indexArg reads a non-negative exact integer argument.
func indexArg(v Scmer, who string) int {
	if !isExact(v) {
		panic(&TypeCheckError{who, "integer", TypeName(v)})
	}
	i := ToInt(v)
	if i < 0 {
		errorf("%s: index %d is negative", who, i)
	}
	return i
}

func Add(a, b Scmer) Scmer { return toNumber(a, "+").Add(toNumber(b, "+")) }

func Sub(a, b Scmer) Scmer { return toNumber(a, "-").Sub(toNumber(b, "-")) }

func Mul(a, b Scmer) Scmer { return toNumber(a, "*").Mul(toNumber(b, "*")) }

// Div stays exact when both operands are exact and the division has no remainder.
func Div(a, b Scmer) Scmer {
	x, y := toNumber(a, "/"), toNumber(b, "/")
	if IsExactInteger(x) && IsExactInteger(y) {
		bx, by := toBig(x, "/"), toBig(y, "/")
		if by.Sign() == 0 {
			errorf("/: division by zero")
		}
		q, r := new(big.Int).QuoRem(bx, by, new(big.Int))
		if r.Sign() == 0 {
			return NewBigInt(q)
		}
	}
	return NewFloat(ToFloat(x) / ToFloat(y))
}

func compareNumbers(a, b Scmer, who string) int {
	return toNumber(a, who).Cmp(toNumber(b, who))
}

// integerDivision implements the floor/ and truncate/ families.
func integerDivision(a, b Scmer, who string, floor bool) (Scmer, Scmer) {
	if isExact(a) && isExact(b) {
		x, y := toBig(a, who), toBig(b, who)
		if y.Sign() == 0 {
			errorf("%s: division by zero", who)
		}
		q, r := new(big.Int).QuoRem(x, y, new(big.Int))
		if floor && r.Sign() != 0 && (r.Sign() < 0) != (y.Sign() < 0) {
			q.Sub(q, big.NewInt(1))
			r.Add(r, y)
		}
		return NewBigInt(q), NewBigInt(r)
	}
	x, y := ToFloat(a), ToFloat(b)
	q := x / y
	if floor {
		q = math.Floor(q)
	} else {
		q = math.Trunc(q)
	}
	return NewFloat(q), NewFloat(x - q*y)
}

func roundNumber(v Scmer, who string, f func(float64) float64) Scmer {
	n := toNumber(v, who)
	if IsExactInteger(n) {
		return n
	}
	return NewFloat(f(ToFloat(n)))
}

func floatFunc(who string, f func(float64) float64) func(a ...Scmer) Scmer {
	return func(a ...Scmer) Scmer {
		return NewFloat(f(ToFloat(toNumber(a[0], who))))
	}
}

// NumberString prints numbers the way the reader reads them back.
func NumberString(n goarith.Number, radix int) string {
	if IsExactInteger(n) {
		if radix == 10 {
			return n.String()
		}
		return toBig(n, "number->string").Text(radix)
	}
	f := ToFloat(n)
	switch {
	case math.IsNaN(f):
		return "+nan.0"
	case math.IsInf(f, 1):
		return "+inf.0"
	case math.IsInf(f, -1):
		return "-inf.0"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// ParseNumber reads a numeric literal. Integers of any size stay exact.
func ParseNumber(s string, radix int) (Scmer, bool) {
	switch s {
	case "+inf.0":
		return NewFloat(math.Inf(1)), true
	case "-inf.0":
		return NewFloat(math.Inf(-1)), true
	case "+nan.0", "-nan.0":
		return NewFloat(math.NaN()), true
	}
	if s == "" || s == "+" || s == "-" {
		return nil, false
	}
	if z, ok := new(big.Int).SetString(strings.TrimPrefix(s, "+"), radix); ok {
		return NewBigInt(z), true
	}
	if radix != 10 || !strings.ContainsAny(s, "0123456789") {
		return nil, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, false
	}
	return NewFloat(f), true
}

func radixArg(a []Scmer, i int, who string) int {
	if len(a) <= i {
		return 10
	}
	radix := indexArg(a[i], who)
	switch radix {
	case 2, 8, 10, 16:
		return radix
	}
	errorf("%s: unsupported radix %d", who, radix)
	return 10
}

// numericChain implements the variadic comparisons.
func numericChain(who string, ok func(c int) bool) func(a ...Scmer) Scmer {
	return func(a ...Scmer) Scmer {
		for i := 0; i+1 < len(a); i++ {
			if !ok(compareNumbers(a[i], a[i+1], who)) {
				for _, rest := range a[i+2:] {
					toNumber(rest, who)
				}
				return false
			}
		}
		if len(a) == 1 {
			toNumber(a[0], who)
		}
		return true
	}
}

func init_alu() {
	DeclareTitle("Arithmetic")

	Declare(libBase, &Declaration{
		"+", "adds numbers",
		0, -1,
		[]DeclarationParameter{
			DeclarationParameter{"values...", "number", "values to add"},
		}, "number",
		func(a ...Scmer) Scmer {
			var sum Scmer = NewInt(0)
			for _, v := range a {
				sum = Add(sum, v)
			}
			return sum
		},
	})
	Declare(libBase, &Declaration{
		"-", "subtracts the following numbers from the first; negates a single argument",
		1, -1,
		[]DeclarationParameter{
			DeclarationParameter{"value", "number", "minuend"},
			DeclarationParameter{"values...", "number", "subtrahends"},
		}, "number",
		func(a ...Scmer) Scmer {
			if len(a) == 1 {
				return Sub(NewInt(0), a[0])
			}
			result := a[0]
			for _, v := range a[1:] {
				result = Sub(result, v)
			}
			return result
		},
	})
	Declare(libBase, &Declaration{
		"*", "multiplies numbers",
		0, -1,
		[]DeclarationParameter{
			DeclarationParameter{"values...", "number", "factors"},
		}, "number",
		func(a ...Scmer) Scmer {
			var product Scmer = NewInt(1)
			for _, v := range a {
				product = Mul(product, v)
			}
			return product
		},
	})
	Declare(libBase, &Declaration{
		"/", "divides the first number by the following; a single argument is inverted. Exact when the result is an integer.",
		1, -1,
		[]DeclarationParameter{
			DeclarationParameter{"value", "number", "dividend"},
			DeclarationParameter{"values...", "number", "divisors"},
		}, "number",
		func(a ...Scmer) Scmer {
			if len(a) == 1 {
				return Div(NewInt(1), a[0])
			}
			result := a[0]
			for _, v := range a[1:] {
				result = Div(result, v)
			}
			return result
		},
	})

	compare := []struct {
		name, desc string
		ok         func(int) bool
	}{
		{"=", "tells if all numbers are equal", func(c int) bool { return c == 0 }},
		{"<", "tells if the numbers are strictly increasing", func(c int) bool { return c < 0 }},
		{">", "tells if the numbers are strictly decreasing", func(c int) bool { return c > 0 }},
		{"<=", "tells if the numbers are non-decreasing", func(c int) bool { return c <= 0 }},
		{">=", "tells if the numbers are non-increasing", func(c int) bool { return c >= 0 }},
	}
	for _, c := range compare {
		Declare(libBase, &Declaration{
			c.name, c.desc,
			1, -1,
			[]DeclarationParameter{
				DeclarationParameter{"values...", "number", "values to compare"},
			}, "bool",
			numericChain(c.name, c.ok),
		})
	}

	Declare(libBase, &Declaration{
		"abs", "returns the absolute value",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"value", "number", "value"},
		}, "number",
		func(a ...Scmer) Scmer {
			if compareNumbers(a[0], NewInt(0), "abs") < 0 {
				return Sub(NewInt(0), a[0])
			}
			return a[0]
		},
	})
	Declare(libBase, &Declaration{
		"min", "returns the smallest value; inexact if any argument is inexact",
		1, -1,
		[]DeclarationParameter{
			DeclarationParameter{"values...", "number", "values"},
		}, "number",
		func(a ...Scmer) Scmer {
			return extremum(a, "min", -1)
		},
	})
	Declare(libBase, &Declaration{
		"max", "returns the largest value; inexact if any argument is inexact",
		1, -1,
		[]DeclarationParameter{
			DeclarationParameter{"values...", "number", "values"},
		}, "number",
		func(a ...Scmer) Scmer {
			return extremum(a, "max", 1)
		},
	})

	divisions := []struct {
		name, desc string
		floor      bool
		part       int // 0 quotient, 1 remainder, 2 both
	}{
		{"quotient", "integer division truncating towards zero", false, 0},
		{"remainder", "remainder of quotient; has the sign of the dividend", false, 1},
		{"modulo", "remainder of floor division; has the sign of the divisor", true, 1},
		{"truncate-quotient", "same as quotient", false, 0},
		{"truncate-remainder", "same as remainder", false, 1},
		{"floor-quotient", "integer division rounding towards negative infinity", true, 0},
		{"floor-remainder", "same as modulo", true, 1},
		{"truncate/", "returns quotient and remainder as two values", false, 2},
		{"floor/", "returns floor quotient and modulo as two values", true, 2},
	}
	for _, d := range divisions {
		name, floor, part := d.name, d.floor, d.part
		Declare(libBase, &Declaration{
			name, d.desc,
			2, 2,
			[]DeclarationParameter{
				DeclarationParameter{"dividend", "number", "dividend"},
				DeclarationParameter{"divisor", "number", "divisor"},
			}, "number",
			func(a ...Scmer) Scmer {
				q, r := integerDivision(a[0], a[1], name, floor)
				switch part {
				case 0:
					return q
				case 1:
					return r
				}
				return &Values{[]Scmer{q, r}}
			},
		})
	}
	Declare(libBase, &Declaration{
		"gcd", "greatest common divisor",
		0, -1,
		[]DeclarationParameter{
			DeclarationParameter{"values...", "int", "integers"},
		}, "int",
		func(a ...Scmer) Scmer {
			result := new(big.Int)
			for _, v := range a {
				result.GCD(nil, nil, result, new(big.Int).Abs(toBig(v, "gcd")))
			}
			return NewBigInt(result)
		},
	})
	Declare(libBase, &Declaration{
		"lcm", "least common multiple",
		0, -1,
		[]DeclarationParameter{
			DeclarationParameter{"values...", "int", "integers"},
		}, "int",
		func(a ...Scmer) Scmer {
			result := big.NewInt(1)
			for _, v := range a {
				x := new(big.Int).Abs(toBig(v, "lcm"))
				if x.Sign() == 0 {
					return NewInt(0)
				}
				g := new(big.Int).GCD(nil, nil, result, x)
				result.Mul(result, x.Quo(x, g))
			}
			return NewBigInt(result)
		},
	})
	Declare(libBase, &Declaration{
		"expt", "raises base to the power; exact for exact base and non-negative exact exponent",
		2, 2,
		[]DeclarationParameter{
			DeclarationParameter{"base", "number", "base"},
			DeclarationParameter{"exponent", "number", "exponent"},
		}, "number",
		func(a ...Scmer) Scmer {
			if isExact(a[0]) && isExact(a[1]) && compareNumbers(a[1], NewInt(0), "expt") >= 0 {
				return NewBigInt(new(big.Int).Exp(toBig(a[0], "expt"), toBig(a[1], "expt"), nil))
			}
			return NewFloat(math.Pow(ToFloat(toNumber(a[0], "expt")), ToFloat(toNumber(a[1], "expt"))))
		},
	})
	Declare(libBase, &Declaration{
		"exact-integer-sqrt", "returns s and r with s*s + r = k",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"k", "int", "non-negative integer"},
		}, "int",
		func(a ...Scmer) Scmer {
			k := toBig(a[0], "exact-integer-sqrt")
			if k.Sign() < 0 {
				errorf("exact-integer-sqrt: negative argument")
			}
			s := new(big.Int).Sqrt(k)
			r := new(big.Int).Sub(k, new(big.Int).Mul(s, s))
			return &Values{[]Scmer{NewBigInt(s), NewBigInt(r)}}
		},
	})
	Declare(libBase, &Declaration{
		"floor", "rounds towards negative infinity",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"value", "number", "value"},
		}, "number",
		func(a ...Scmer) Scmer { return roundNumber(a[0], "floor", math.Floor) },
	})
	Declare(libBase, &Declaration{
		"ceiling", "rounds towards positive infinity",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"value", "number", "value"},
		}, "number",
		func(a ...Scmer) Scmer { return roundNumber(a[0], "ceiling", math.Ceil) },
	})
	Declare(libBase, &Declaration{
		"truncate", "rounds towards zero",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"value", "number", "value"},
		}, "number",
		func(a ...Scmer) Scmer { return roundNumber(a[0], "truncate", math.Trunc) },
	})
	Declare(libBase, &Declaration{
		"round", "rounds to the nearest integer, ties to even",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"value", "number", "value"},
		}, "number",
		func(a ...Scmer) Scmer { return roundNumber(a[0], "round", math.RoundToEven) },
	})
	Declare(libBase, &Declaration{
		"exact", "converts to an exact integer; the value must be integral",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"value", "number", "value"},
		}, "int",
		func(a ...Scmer) Scmer {
			n := toNumber(a[0], "exact")
			if IsExactInteger(n) {
				return n
			}
			return NewBigInt(toBig(n, "exact"))
		},
	})
	Declare(libBase, &Declaration{
		"inexact", "converts to a floating point number",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"value", "number", "value"},
		}, "number",
		func(a ...Scmer) Scmer { return NewFloat(ToFloat(toNumber(a[0], "inexact"))) },
	})
	Declare(libBase, &Declaration{
		"number?", "tells if the value is a number",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"value", "any", "value"},
		}, "bool",
		func(a ...Scmer) Scmer { return typeNumber.Matches(a[0]) },
	})
	for _, alias := range []string{"real?", "complex?"} {
		Declare(libBase, &Declaration{
			alias, "same as number?",
			1, 1,
			[]DeclarationParameter{
				DeclarationParameter{"value", "any", "value"},
			}, "bool",
			func(a ...Scmer) Scmer { return typeNumber.Matches(a[0]) },
		})
	}
	Declare(libBase, &Declaration{
		"rational?", "tells if the value is a finite number",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"value", "any", "value"},
		}, "bool",
		func(a ...Scmer) Scmer {
			n, ok := a[0].(goarith.Number)
			if !ok {
				return false
			}
			f := ToFloat(n)
			return IsExactInteger(n) || !(math.IsInf(f, 0) || math.IsNaN(f))
		},
	})
	Declare(libBase, &Declaration{
		"integer?", "tells if the value is an integral number (exact or not)",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"value", "any", "value"},
		}, "bool",
		func(a ...Scmer) Scmer {
			n, ok := a[0].(goarith.Number)
			if !ok {
				return false
			}
			if IsExactInteger(n) {
				return true
			}
			f := ToFloat(n)
			return f == math.Trunc(f) && !math.IsInf(f, 0)
		},
	})
	Declare(libBase, &Declaration{
		"exact?", "tells if the number is exact",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"value", "number", "value"},
		}, "bool",
		func(a ...Scmer) Scmer { return IsExactInteger(toNumber(a[0], "exact?")) },
	})
	Declare(libBase, &Declaration{
		"inexact?", "tells if the number is inexact",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"value", "number", "value"},
		}, "bool",
		func(a ...Scmer) Scmer { return !IsExactInteger(toNumber(a[0], "inexact?")) },
	})
	Declare(libBase, &Declaration{
		"exact-integer?", "tells if the value is an exact integer",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"value", "any", "value"},
		}, "bool",
		func(a ...Scmer) Scmer { return isExact(a[0]) },
	})
	Declare(libBase, &Declaration{
		"numerator", "numerator of an integer is the integer itself",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"value", "number", "value"},
		}, "number",
		func(a ...Scmer) Scmer { return toNumber(a[0], "numerator") },
	})
	Declare(libBase, &Declaration{
		"denominator", "denominator of an integer is 1",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"value", "number", "value"},
		}, "number",
		func(a ...Scmer) Scmer {
			if IsExactInteger(toNumber(a[0], "denominator")) {
				return NewInt(1)
			}
			return NewFloat(1)
		},
	})
	Declare(libBase, &Declaration{
		"number->string", "formats a number, optionally in radix 2, 8 or 16",
		1, 2,
		[]DeclarationParameter{
			DeclarationParameter{"value", "number", "value"},
			DeclarationParameter{"radix", "int", "optional radix"},
		}, "string",
		func(a ...Scmer) Scmer {
			return NumberString(toNumber(a[0], "number->string"), radixArg(a, 1, "number->string"))
		},
	})
	Declare(libBase, &Declaration{
		"string->number", "parses a number; returns #f if the string is not a number",
		1, 2,
		[]DeclarationParameter{
			DeclarationParameter{"text", "string", "text"},
			DeclarationParameter{"radix", "int", "optional radix"},
		}, "number",
		func(a ...Scmer) Scmer {
			if n, ok := ParseNumber(mustString(a[0], "string->number"), radixArg(a, 1, "string->number")); ok {
				return n
			}
			return false
		},
	})

	DeclareTitle("Inexact math")

	for name, f := range map[string]func(float64) float64{
		"exp": math.Exp, "sin": math.Sin, "cos": math.Cos, "tan": math.Tan,
		"asin": math.Asin, "acos": math.Acos,
	} {
		Declare(libBase, &Declaration{
			name, "floating point " + name,
			1, 1,
			[]DeclarationParameter{
				DeclarationParameter{"value", "number", "argument"},
			}, "number",
			floatFunc(name, f),
		})
	}
	Declare(libBase, &Declaration{
		"log", "natural logarithm, or logarithm to the given base",
		1, 2,
		[]DeclarationParameter{
			DeclarationParameter{"value", "number", "argument"},
			DeclarationParameter{"base", "number", "optional base"},
		}, "number",
		func(a ...Scmer) Scmer {
			x := math.Log(ToFloat(toNumber(a[0], "log")))
			if len(a) == 2 {
				x /= math.Log(ToFloat(toNumber(a[1], "log")))
			}
			return NewFloat(x)
		},
	})
	Declare(libBase, &Declaration{
		"atan", "arc tangent; with two arguments atan2(y, x)",
		1, 2,
		[]DeclarationParameter{
			DeclarationParameter{"y", "number", "argument"},
			DeclarationParameter{"x", "number", "optional x"},
		}, "number",
		func(a ...Scmer) Scmer {
			if len(a) == 2 {
				return NewFloat(math.Atan2(ToFloat(toNumber(a[0], "atan")), ToFloat(toNumber(a[1], "atan"))))
			}
			return NewFloat(math.Atan(ToFloat(toNumber(a[0], "atan"))))
		},
	})
	Declare(libBase, &Declaration{
		"sqrt", "square root; exact for perfect squares",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"value", "number", "argument"},
		}, "number",
		func(a ...Scmer) Scmer {
			if isExact(a[0]) {
				k := toBig(a[0], "sqrt")
				if k.Sign() >= 0 {
					s := new(big.Int).Sqrt(k)
					if new(big.Int).Mul(s, s).Cmp(k) == 0 {
						return NewBigInt(s)
					}
				}
			}
			return NewFloat(math.Sqrt(ToFloat(toNumber(a[0], "sqrt"))))
		},
	})
	for name, f := range map[string]func(float64) bool{
		"nan?":      math.IsNaN,
		"infinite?": func(x float64) bool { return math.IsInf(x, 0) },
		"finite?":   func(x float64) bool { return !math.IsInf(x, 0) && !math.IsNaN(x) },
	} {
		name, f := name, f
		Declare(libBase, &Declaration{
			name, "floating point classification",
			1, 1,
			[]DeclarationParameter{
				DeclarationParameter{"value", "number", "argument"},
			}, "bool",
			func(a ...Scmer) Scmer { return f(ToFloat(toNumber(a[0], name))) },
		})
	}
}

func extremum(a []Scmer, who string, sign int) Scmer {
	best := toNumber(a[0], who)
	inexact := !IsExactInteger(best)
	for _, v := range a[1:] {
		n := toNumber(v, who)
		if !IsExactInteger(n) {
			inexact = true
		}
		if n.Cmp(best)*sign > 0 {
			best = n
		}
	}
	if inexact {
		return NewFloat(ToFloat(best))
	}
	return best
}
