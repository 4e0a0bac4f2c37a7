package parser

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// latinToCyrillic maps Latin letters commonly typed in place of Cyrillic ones
// in scanned FamilySearch metadata onto their Cyrillic counterparts.
var latinToCyrillic = map[rune]rune{
	'a': 'а', 'b': 'б', 'c': 'ц', 'd': 'д', 'e': 'е',
	'f': 'ф', 'g': 'г', 'h': 'х', 'i': 'и', 'j': 'й',
	'k': 'к', 'l': 'л', 'm': 'м', 'n': 'н', 'o': 'о',
	'p': 'п', 'q': 'к', 'r': 'р', 's': 'с', 't': 'т',
	'u': 'у', 'v': 'в', 'w': 'в', 'y': 'и', 'z': 'з',
}

// Latin2Cyrillic folds Latin lookalike letters into Cyrillic and upper-cases
// the result with Ukrainian casing rules. Runes without a mapping are kept.
func Latin2Cyrillic(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if c, ok := latinToCyrillic[unicode.ToLower(r)]; ok {
			b.WriteRune(c)
		} else {
			b.WriteRune(r)
		}
	}
	return cases.Upper(language.Ukrainian).String(b.String())
}

// ParseCode canonicalizes a single reference code segment: trims it, drops
// spaces, dots and dash variants, folds Latin lookalikes into Cyrillic and
// upper-cases the rest ("120а" -> "120А", "Р-1" -> "Р1").
func ParseCode(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.Map(func(r rune) rune {
		switch r {
		case '.', ' ', '–', '—', '―', '-':
			return -1
		}
		return r
	}, s)
	return Latin2Cyrillic(s)
}
