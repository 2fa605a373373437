package guess

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Rule names the heuristic that recognised a guess.
type Rule string

const (
	RuleMarker    Rule = "marker"
	RuleIsIt      Rule = "is-it"
	RuleThink     Rule = "i-think"
	RuleBelieve   Rule = "i-believe"
	RuleMustBe    Rule = "must-be"
	RuleWordIs    Rule = "word-is"
	RuleMyGuessIs Rule = "my-guess-is"
)

// Match is a guess found in model output together with the rule that found it.
type Match struct {
	Word string
	Rule Rule
}

// token is a run of characters up to whitespace or sentence-ending punctuation,
// so "GUESS: elephant." yields "elephant". emphasis lets markdown bold or
// italics sit around the marker colon, as in "**GUESS:** elephant".
const (
	token    = `([^\s.?!]+)`
	emphasis = `[*_\s]*`
	article  = `(?:(?:a|an|the)\s+)?`
	its      = `it['’]?s\s+`
)

type rule struct {
	name    Rule
	pattern *regexp.Regexp
}

// rules are tried in order; the first one whose candidate survives cleanup wins.
var rules = []rule{
	{RuleMarker, regexp.MustCompile(`(?i)guess` + emphasis + `:` + emphasis + token)},
	{RuleIsIt, regexp.MustCompile(`(?i)\bis\s+it\s+` + article + token)},
	{RuleThink, regexp.MustCompile(`(?i)\bi\s+think\s+` + its + article + token)},
	{RuleBelieve, regexp.MustCompile(`(?i)\bi\s+believe\s+` + its + article + token)},
	{RuleMustBe, regexp.MustCompile(`(?i)\bit\s+must\s+be\s+` + article + token)},
	{RuleWordIs, regexp.MustCompile(`(?i)\bthe\s+word\s+is\s+` + article + token)},
	{RuleMyGuessIs, regexp.MustCompile(`(?i)\bmy\s+guess\s+is\s+` + article + token)},
}

const quotes = "\"'`“”‘’«»"

var articles = map[string]struct{}{
	"a":   {},
	"an":  {},
	"the": {},
}

// Extract returns the word the model committed to, if any.
func Extract(text string) (string, bool) {
	match, ok := Detect(text)
	return match.Word, ok
}

// Detect runs the rule table against text. Ordinary questions produce no match.
func Detect(text string) (Match, bool) {
	for _, r := range rules {
		groups := r.pattern.FindStringSubmatch(text)
		if len(groups) < 2 {
			continue
		}
		if word, ok := clean(groups[1]); ok {
			return Match{Word: word, Rule: r.name}, true
		}
	}
	return Match{}, false
}

func clean(candidate string) (string, bool) {
	word := strings.TrimSpace(candidate)
	word = strings.TrimLeft(word, quotes+"(")
	word = strings.TrimRight(word, quotes+",;:)")
	word = strings.TrimFunc(word, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
	word = strings.ToLower(strings.TrimSpace(word))

	if utf8.RuneCountInString(word) <= 1 || !strings.ContainsFunc(word, isWordRune) {
		return "", false
	}
	if _, isArticle := articles[word]; isArticle {
		return "", false
	}
	return word, true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
