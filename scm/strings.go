/*
Copyright (C) 2024-2026  Carl-Philip Hänsch

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

import "strings"
import "unicode"
import "unicode/utf8"
import "golang.org/x/text/cases"
import "golang.org/x/text/collate"
import "golang.org/x/text/language"
import regexp "github.com/wasilibs/go-re2"

var (
	upperCaser = cases.Upper(language.Und)
	lowerCaser = cases.Lower(language.Und)
	foldCaser  = cases.Fold()
)

func mustString(v Scmer, who string) string {
	s, ok := v.(string)
	if !ok {
		panic(&TypeCheckError{who, "string", TypeName(v)})
	}
	return s
}

func mustChar(v Scmer, who string) rune {
	c, ok := v.(Char)
	if !ok {
		panic(&TypeCheckError{who, "char", TypeName(v)})
	}
	return rune(c)
}

func mustSymbolValue(v Scmer, who string) string {
	s, ok := v.(Symbol)
	if !ok {
		panic(&TypeCheckError{who, "symbol", TypeName(v)})
	}
	return s.Name
}

func mustRegex(v Scmer, who string) *regexp.Regexp {
	switch re := v.(type) {
	case *regexp.Regexp:
		return re
	case string:
		compiled, err := regexp.Compile(re)
		if err != nil {
			panic(&EvaluationError{Message: who + ": invalid regex", Cause: err})
		}
		return compiled
	}
	panic(&TypeCheckError{who, "regex", TypeName(v)})
}

// rangeArgs reads optional [start [end]] arguments at position i.
func rangeArgs(a []Scmer, i, length int, who string) (int, int) {
	start, end := 0, length
	if len(a) > i {
		start = indexArg(a[i], who)
	}
	if len(a) > i+1 {
		end = indexArg(a[i+1], who)
	}
	if start > end || end > length {
		errorf("%s: range %d..%d out of bounds for length %d", who, start, end, length)
	}
	return start, end
}

// stringChain implements the variadic string and char comparisons.
func stringChain(who string, key func(v Scmer) string, ok func(c int) bool) func(a ...Scmer) Scmer {
	return func(a ...Scmer) Scmer {
		keys := make([]string, len(a))
		for i, v := range a {
			keys[i] = key(v)
		}
		for i := 0; i+1 < len(keys); i++ {
			if !ok(strings.Compare(keys[i], keys[i+1])) {
				return false
			}
		}
		return true
	}
}

var comparisons = []struct {
	suffix string
	ok     func(int) bool
}{
	{"=?", func(c int) bool { return c == 0 }},
	{"<?", func(c int) bool { return c < 0 }},
	{">?", func(c int) bool { return c > 0 }},
	{"<=?", func(c int) bool { return c <= 0 }},
	{">=?", func(c int) bool { return c >= 0 }},
}

func charPredicate(name, desc string, f func(rune) bool) *Declaration {
	return &Declaration{
		name, desc,
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"char", "char", "character"},
		}, "bool",
		func(a ...Scmer) Scmer { return f(mustChar(a[0], name)) },
	}
}

func stringFunc(name, desc string, f func(string) string) *Declaration {
	return &Declaration{
		name, desc,
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"text", "string", "text"},
		}, "string",
		func(a ...Scmer) Scmer { return f(mustString(a[0], name)) },
	}
}

func charFunc(name, desc string, f func(rune) rune) *Declaration {
	return &Declaration{
		name, desc,
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"char", "char", "character"},
		}, "char",
		func(a ...Scmer) Scmer { return Char(f(mustChar(a[0], name))) },
	}
}

// collator caches one collator per language tag.
var collators = make(map[string]*collate.Collator)

func collatorFor(tag string) *collate.Collator {
	if c, ok := collators[tag]; ok {
		return c
	}
	lang, err := language.Parse(tag)
	if err != nil {
		lang = language.Und
	}
	c := collate.New(lang, collate.Loose)
	collators[tag] = c
	return c
}

func init_strings() {
	DeclareTitle("Strings")

	Declare(libBase, predicate("string?", "tells if the value is a string", typeString.Matches))
	Declare(libBase, predicate("char?", "tells if the value is a character", typeChar.Matches))
	Declare(libBase, &Declaration{
		"string-length", "counts the characters of a string",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"text", "string", "text"},
		}, "int",
		func(a ...Scmer) Scmer {
			return NewInt(int64(utf8.RuneCountInString(mustString(a[0], "string-length"))))
		},
	})
	Declare(libBase, &Declaration{
		"string-ref", "returns the character at index k",
		2, 2,
		[]DeclarationParameter{
			DeclarationParameter{"text", "string", "text"},
			DeclarationParameter{"k", "int", "index"},
		}, "char",
		func(a ...Scmer) Scmer {
			runes := []rune(mustString(a[0], "string-ref"))
			k := indexArg(a[1], "string-ref")
			if k >= len(runes) {
				errorf("string-ref: index %d out of range", k)
			}
			return Char(runes[k])
		},
	})
	Declare(libBase, &Declaration{
		"substring", "returns the characters from start to end",
		2, 3,
		[]DeclarationParameter{
			DeclarationParameter{"text", "string", "text"},
			DeclarationParameter{"start", "int", "first index"},
			DeclarationParameter{"end", "int", "optional end index (exclusive)"},
		}, "string",
		func(a ...Scmer) Scmer {
			runes := []rune(mustString(a[0], "substring"))
			start, end := rangeArgs(a, 1, len(runes), "substring")
			return string(runes[start:end])
		},
	})
	Declare(libBase, &Declaration{
		"string-copy", "copies a string, optionally only from start to end",
		1, 3,
		[]DeclarationParameter{
			DeclarationParameter{"text", "string", "text"},
			DeclarationParameter{"start", "int", "optional first index"},
			DeclarationParameter{"end", "int", "optional end index"},
		}, "string",
		func(a ...Scmer) Scmer {
			runes := []rune(mustString(a[0], "string-copy"))
			start, end := rangeArgs(a, 1, len(runes), "string-copy")
			return string(runes[start:end])
		},
	})
	Declare(libBase, &Declaration{
		"string-append", "concatenates strings",
		0, -1,
		[]DeclarationParameter{
			DeclarationParameter{"texts...", "string", "strings"},
		}, "string",
		func(a ...Scmer) Scmer {
			var b strings.Builder
			for _, v := range a {
				b.WriteString(mustString(v, "string-append"))
			}
			return b.String()
		},
	})
	Declare(libBase, &Declaration{
		"string", "builds a string from characters",
		0, -1,
		[]DeclarationParameter{
			DeclarationParameter{"chars...", "char", "characters"},
		}, "string",
		func(a ...Scmer) Scmer {
			runes := make([]rune, len(a))
			for i, v := range a {
				runes[i] = mustChar(v, "string")
			}
			return string(runes)
		},
	})
	Declare(libBase, &Declaration{
		"make-string", "builds a string of k copies of a character (default space)",
		1, 2,
		[]DeclarationParameter{
			DeclarationParameter{"k", "int", "length"},
			DeclarationParameter{"char", "char", "optional fill character"},
		}, "string",
		func(a ...Scmer) Scmer {
			fill := " "
			if len(a) == 2 {
				fill = string(mustChar(a[1], "make-string"))
			}
			return strings.Repeat(fill, indexArg(a[0], "make-string"))
		},
	})
	Declare(libBase, &Declaration{
		"string->list", "splits a string into a list of characters",
		1, 3,
		[]DeclarationParameter{
			DeclarationParameter{"text", "string", "text"},
			DeclarationParameter{"start", "int", "optional first index"},
			DeclarationParameter{"end", "int", "optional end index"},
		}, "list",
		func(a ...Scmer) Scmer {
			runes := []rune(mustString(a[0], "string->list"))
			start, end := rangeArgs(a, 1, len(runes), "string->list")
			items := make([]Scmer, 0, end-start)
			for _, r := range runes[start:end] {
				items = append(items, Char(r))
			}
			return List(items...)
		},
	})
	Declare(libBase, &Declaration{
		"list->string", "joins a list of characters into a string",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"list", "list", "characters"},
		}, "string",
		func(a ...Scmer) Scmer {
			items := MustList(a[0], "list->string")
			runes := make([]rune, len(items))
			for i, v := range items {
				runes[i] = mustChar(v, "list->string")
			}
			return string(runes)
		},
	})
	Declare(libBase, &Declaration{
		"string->symbol", "interns a string as a symbol",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"text", "string", "symbol name"},
		}, "symbol",
		func(a ...Scmer) Scmer {
			return NewSymbol(mustString(a[0], "string->symbol"))
		},
	})
	Declare(libBase, &Declaration{
		"symbol->string", "returns the name of a symbol",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"symbol", "symbol", "symbol"},
		}, "string",
		func(a ...Scmer) Scmer {
			return mustSymbolValue(a[0], "symbol->string")
		},
	})
	Declare(libBase, &Declaration{
		"string-map", "applies a procedure to every character and collects the resulting characters",
		2, -1,
		[]DeclarationParameter{
			DeclarationParameter{"procedure", "func", "char -> char"},
			DeclarationParameter{"texts...", "string", "strings"},
		}, "string",
		BuiltinFunc(func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
			lists := stringColumns(a[1:], "string-map")
			var b strings.Builder
			for i := 0; i < shortest(lists); i++ {
				b.WriteRune(mustChar(rt.InvokeFull(scope, a[0], column(lists, i)), "string-map"))
			}
			return b.String()
		}),
	})
	Declare(libBase, &Declaration{
		"string-for-each", "calls a procedure for every character",
		2, -1,
		[]DeclarationParameter{
			DeclarationParameter{"procedure", "func", "receives characters"},
			DeclarationParameter{"texts...", "string", "strings"},
		}, "nil",
		BuiltinFunc(func(rt *Runtime, scope *Scope, a []Scmer) Scmer {
			lists := stringColumns(a[1:], "string-for-each")
			for i := 0; i < shortest(lists); i++ {
				rt.InvokeFull(scope, a[0], column(lists, i))
			}
			return Nil
		}),
	})
	for _, c := range comparisons {
		name := "string" + c.suffix
		Declare(libBase, &Declaration{
			name, "compares strings by code point",
			1, -1,
			[]DeclarationParameter{
				DeclarationParameter{"texts...", "string", "strings"},
			}, "bool",
			stringChain(name, func(v Scmer) string { return mustString(v, name) }, c.ok),
		})
		nameCI := "string-ci" + c.suffix
		Declare(libChar, &Declaration{
			nameCI, "compares strings after case folding",
			1, -1,
			[]DeclarationParameter{
				DeclarationParameter{"texts...", "string", "strings"},
			}, "bool",
			stringChain(nameCI, func(v Scmer) string { return foldCaser.String(mustString(v, nameCI)) }, c.ok),
		})
		charName := "char" + c.suffix
		Declare(libBase, &Declaration{
			charName, "compares characters by code point",
			1, -1,
			[]DeclarationParameter{
				DeclarationParameter{"chars...", "char", "characters"},
			}, "bool",
			stringChain(charName, func(v Scmer) string { return string(mustChar(v, charName)) }, c.ok),
		})
		charNameCI := "char-ci" + c.suffix
		Declare(libChar, &Declaration{
			charNameCI, "compares characters after case folding",
			1, -1,
			[]DeclarationParameter{
				DeclarationParameter{"chars...", "char", "characters"},
			}, "bool",
			stringChain(charNameCI, func(v Scmer) string { return foldCaser.String(string(mustChar(v, charNameCI))) }, c.ok),
		})
	}
	Declare(libColibri, &Declaration{
		"string-collate<?", "compares two strings with the collation rules of a language (BCP 47 tag, e.g. \"de\")",
		3, 3,
		[]DeclarationParameter{
			DeclarationParameter{"language", "string", "language tag"},
			DeclarationParameter{"a", "string", "first string"},
			DeclarationParameter{"b", "string", "second string"},
		}, "bool",
		func(a ...Scmer) Scmer {
			c := collatorFor(mustString(a[0], "string-collate<?"))
			return c.CompareString(mustString(a[1], "string-collate<?"), mustString(a[2], "string-collate<?")) < 0
		},
	})
	Declare(libColibri, &Declaration{
		"string-contains?", "tells if the text contains the given substring",
		2, 2,
		[]DeclarationParameter{
			DeclarationParameter{"text", "string", "text"},
			DeclarationParameter{"part", "string", "substring"},
		}, "bool",
		func(a ...Scmer) Scmer {
			return strings.Contains(mustString(a[0], "string-contains?"), mustString(a[1], "string-contains?"))
		},
	})
	Declare(libColibri, &Declaration{
		"string-split", "splits a text at every occurrence of the separator",
		2, 2,
		[]DeclarationParameter{
			DeclarationParameter{"text", "string", "text"},
			DeclarationParameter{"separator", "string", "separator"},
		}, "list",
		func(a ...Scmer) Scmer {
			parts := strings.Split(mustString(a[0], "string-split"), mustString(a[1], "string-split"))
			items := make([]Scmer, len(parts))
			for i, p := range parts {
				items[i] = p
			}
			return List(items...)
		},
	})

	DeclareTitle("Characters")

	Declare(libBase, &Declaration{
		"char->integer", "returns the code point of a character",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"char", "char", "character"},
		}, "int",
		func(a ...Scmer) Scmer { return NewInt(int64(mustChar(a[0], "char->integer"))) },
	})
	Declare(libBase, &Declaration{
		"integer->char", "returns the character of a code point",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"code", "int", "code point"},
		}, "char",
		func(a ...Scmer) Scmer {
			r := rune(indexArg(a[0], "integer->char"))
			if !utf8.ValidRune(r) {
				errorf("integer->char: %d is not a valid code point", r)
			}
			return Char(r)
		},
	})
	Declare(libChar, charPredicate("char-alphabetic?", "tells if the character is a letter", unicode.IsLetter))
	Declare(libChar, charPredicate("char-numeric?", "tells if the character is a decimal digit", unicode.IsDigit))
	Declare(libChar, charPredicate("char-whitespace?", "tells if the character is white space", unicode.IsSpace))
	Declare(libChar, charPredicate("char-upper-case?", "tells if the character is upper case", unicode.IsUpper))
	Declare(libChar, charPredicate("char-lower-case?", "tells if the character is lower case", unicode.IsLower))
	Declare(libChar, charFunc("char-upcase", "upper case mapping of a character", unicode.ToUpper))
	Declare(libChar, charFunc("char-downcase", "lower case mapping of a character", unicode.ToLower))
	Declare(libChar, charFunc("char-foldcase", "case folding of a character", func(r rune) rune {
		folded := []rune(foldCaser.String(string(r)))
		if len(folded) != 1 {
			return r
		}
		return folded[0]
	}))
	Declare(libChar, &Declaration{
		"digit-value", "returns the value of a decimal digit character, or #f",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"char", "char", "character"},
		}, "int",
		func(a ...Scmer) Scmer {
			r := mustChar(a[0], "digit-value")
			if !unicode.IsDigit(r) {
				return false
			}
			// Nd digits come in contiguous runs of ten
			zero := r
			for unicode.IsDigit(zero - 1) && r-zero < 9 {
				zero--
			}
			return NewInt(int64(r - zero))
		},
	})
	Declare(libChar, stringFunc("string-upcase", "upper case mapping of a string", upperCaser.String))
	Declare(libChar, stringFunc("string-downcase", "lower case mapping of a string", lowerCaser.String))
	Declare(libChar, stringFunc("string-foldcase", "case folding of a string, for caseless comparison", foldCaser.String))

	DeclareTitle("Regular expressions")

	Declare(libColibri, &Declaration{
		"regex?", "tells if the value is a compiled regular expression (#/.../ literal)",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"value", "any", "value"},
		}, "bool",
		func(a ...Scmer) Scmer {
			_, ok := a[0].(*regexp.Regexp)
			return ok
		},
	})
	Declare(libColibri, &Declaration{
		"regex-match?", "tells if the regex matches anywhere in the text",
		2, 2,
		[]DeclarationParameter{
			DeclarationParameter{"regex", "regex", "#/.../ literal or pattern string"},
			DeclarationParameter{"text", "string", "text"},
		}, "bool",
		func(a ...Scmer) Scmer {
			return mustRegex(a[0], "regex-match?").MatchString(mustString(a[1], "regex-match?"))
		},
	})
	Declare(libColibri, &Declaration{
		"regex-find", "returns the first match and its groups as a list, or #f",
		2, 2,
		[]DeclarationParameter{
			DeclarationParameter{"regex", "regex", "#/.../ literal or pattern string"},
			DeclarationParameter{"text", "string", "text"},
		}, "list",
		func(a ...Scmer) Scmer {
			groups := mustRegex(a[0], "regex-find").FindStringSubmatch(mustString(a[1], "regex-find"))
			if groups == nil {
				return false
			}
			items := make([]Scmer, len(groups))
			for i, g := range groups {
				items[i] = g
			}
			return List(items...)
		},
	})
	Declare(libColibri, &Declaration{
		"regex-replace", "replaces every match; $1 style references insert groups",
		3, 3,
		[]DeclarationParameter{
			DeclarationParameter{"regex", "regex", "#/.../ literal or pattern string"},
			DeclarationParameter{"text", "string", "text"},
			DeclarationParameter{"replacement", "string", "replacement template"},
		}, "string",
		func(a ...Scmer) Scmer {
			return mustRegex(a[0], "regex-replace").ReplaceAllString(mustString(a[1], "regex-replace"), mustString(a[2], "regex-replace"))
		},
	})
}

func stringColumns(args []Scmer, who string) [][]Scmer {
	lists := make([][]Scmer, len(args))
	for i, v := range args {
		runes := []rune(mustString(v, who))
		lists[i] = make([]Scmer, len(runes))
		for j, r := range runes {
			lists[i][j] = Char(r)
		}
	}
	return lists
}
