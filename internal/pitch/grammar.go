package pitch

import (
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// symbolGrammar reads a chord or key symbol: a natural note name, an
// optional accidental and free text up to the end. "sus" directly after
// the note name is always text, so German "Asus4" reads as A with "sus4"
// and not As with "us4".
//
//nolint:govet // participle grammar tags are not standard struct tags
type symbolGrammar struct {
	Letter     string   `@Letter`
	Accidental string   `@Accidental?`
	Rest       []string `@(Sus | Text | Slash)*`
}

// newSymbolParser builds the symbol parser of one notation system from
// its note names and accidental suffixes.
func newSymbolParser(letters, accidentals []string) *participle.Parser[symbolGrammar] {
	def := lexer.MustStateful(lexer.Rules{
		"Root": {
			{Name: "Letter", Pattern: alternation(letters), Action: lexer.Push("AfterLetter")},
		},
		"AfterLetter": {
			{Name: "Sus", Pattern: `(?i)sus`, Action: lexer.Push("Tail")},
			{Name: "Accidental", Pattern: alternation(accidentals), Action: lexer.Push("Tail")},
			{Name: "Slash", Pattern: `/`, Action: lexer.Push("Tail")},
			{Name: "Text", Pattern: `[^/]+`, Action: lexer.Push("Tail")},
		},
		"Tail": {
			{Name: "Slash", Pattern: `/`},
			{Name: "Text", Pattern: `[^/]+`},
		},
	})
	return participle.MustBuild[symbolGrammar](participle.Lexer(def))
}

// alternation matches any of words case-insensitively, longest first.
func alternation(words []string) string {
	sorted := slices.Clone(words)
	sort.Slice(sorted, func(i, j int) bool {
		if len(sorted[i]) != len(sorted[j]) {
			return len(sorted[i]) > len(sorted[j])
		}
		return sorted[i] < sorted[j]
	})
	quoted := make([]string, len(sorted))
	for i, w := range sorted {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return `(?i)(?:` + strings.Join(quoted, "|") + `)`
}

// splitSpellings derives the note names and accidental suffixes of a
// spelling index: names are the natural spellings, suffixes whatever
// follows the longest name that prefixes an accidental spelling.
func splitSpellings(index map[string]spelling) (letters, accidentals []string) {
	for text, sp := range index {
		if sp.acc == Natural {
			letters = append(letters, text)
		}
	}
	sort.Strings(letters)

	seen := make(map[string]bool)
	for text, sp := range index {
		if sp.acc == Natural {
			continue
		}
		best := ""
		for _, l := range letters {
			if strings.HasPrefix(text, l) && len(l) > len(best) {
				best = l
			}
		}
		if suffix := text[len(best):]; best != "" && suffix != "" && !seen[suffix] {
			seen[suffix] = true
			accidentals = append(accidentals, suffix)
		}
	}
	sort.Strings(accidentals)
	return letters, accidentals
}

// symbol is a parsed chord or key symbol: the root and the text after it.
type symbol struct {
	root Note
	rest string
}

// parseSymbol reads the root of text. A letter and accidental that do
// not spell a note together fall back to the bare letter, the accidental
// then starting the rest.
func (s *NotationSystem) parseSymbol(text string) (symbol, bool) {
	g, err := s.grammar.ParseString("", text)
	if err != nil {
		return symbol{}, false
	}
	rest := strings.Join(g.Rest, "")
	if g.Accidental != "" {
		if sp, ok := s.index[strings.ToLower(g.Letter+g.Accidental)]; ok {
			return symbol{root: Note{Class: sp.class, Accidental: sp.acc}, rest: rest}, true
		}
		rest = g.Accidental + rest
	}
	sp, ok := s.index[strings.ToLower(g.Letter)]
	if !ok {
		return symbol{}, false
	}
	return symbol{root: Note{Class: sp.class, Accidental: sp.acc}, rest: rest}, true
}
