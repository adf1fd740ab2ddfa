package reconcile

import (
	"cmp"
	"regexp"
	"slices"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// legal forms that do not tell two companies apart.
var businessSuffixes = map[string]bool{
	"SA": true, "SRL": true, "SAS": true, "SACIF": true, "SACI": true, "SACIFIA": true, "SACIFI": true, "SAIC": true,
	"LTDA": true, "CIA": true, "HNOS": true, "HERMANOS": true, "HIJOS": true, "EHIJOS": true, "EHIJO": true,
	"SOCIEDAD": true, "ANONIMA": true, "LIMITADA": true, "ARGENTINA": true, "ARG": true,
}

// words too common to make two names the same counterparty.
var genericWords = map[string]bool{
	"COMERCIAL": true, "COMERCIO": true, "DISTRIBUIDORA": true, "DISTRIBUIDOR": true,
	"SERVICIOS": true, "SERVICIO": true, "EMPRESA": true, "EMPRESAS": true, "CIA": true,
	"NORTE": true, "SUR": true, "ESTE": true, "OESTE": true, "CENTRO": true, "CENTRAL": true,
	"ARGENTINA": true, "ARG": true, "NACIONAL": true, "INTERNACIONAL": true,
	"DEL": true, "DE": true, "LA": true, "LOS": true, "LAS": true, "EL": true, "Y": true, "E": true,
}

var (
	keyPunctuation = regexp.MustCompile(`[.,;:\-–—/\\()'"]`)
	keySuffixes    = regexp.MustCompile(`\b(?:SA|SRL|SAS|SACIF|SCA|SH|INC|LLC|LTDA?|CIA)\b`)
)

// GroupingKey reduces a counterparty name to the few words that identify it:
// punctuation and legal forms are dropped and at most four words are kept.
func GroupingKey(name string) string {
	key := Normalize(name)
	if key == "" {
		return ""
	}
	key = keyPunctuation.ReplaceAllString(key, " ")
	key = keySuffixes.ReplaceAllString(key, "")
	var words []string
	for _, w := range strings.Fields(key) {
		if len(w) >= 2 {
			words = append(words, w)
		}
	}
	if len(words) > 4 {
		words = words[:4]
	}
	if len(words) == 0 {
		return Normalize(name)
	}
	return strings.Join(words, " ")
}

// Similarity scores how likely two counterparty names designate the same
// counterparty, from 0 (unrelated) to 1 (same key).
//
// Names that contain one another score 0.9. Otherwise the score is the share
// of significant words in common; a single shared word is enough only when
// both names are short.
func Similarity(a, b string) float64 {
	s1, s2 := Normalize(a), Normalize(b)
	if s1 == "" || s2 == "" {
		return 0
	}
	if s1 == s2 {
		return 1
	}
	if (len(s2) >= 5 && strings.Contains(s1, s2)) || (len(s1) >= 5 && strings.Contains(s2, s1)) {
		return 0.9
	}

	all1, sig1 := significantWords(s1)
	all2, sig2 := significantWords(s2)
	if len(sig1) == 0 || len(sig2) == 0 {
		return 0
	}
	simple := len(sig1) == 1 && len(all1) <= 3 && len(sig2) == 1 && len(all2) <= 3
	common := 0
	for w := range sig1 {
		if sig2[w] {
			common++
		}
	}
	minimum := 2
	if simple {
		minimum = 1
	}
	if common < minimum {
		return 0
	}
	return float64(common) / float64(max(len(sig1), len(sig2)))
}

// significantWords returns the words of at least two letters, and the subset
// that is neither a legal form nor a generic word.
func significantWords(s string) (all []string, significant map[string]bool) {
	significant = make(map[string]bool)
	for _, w := range strings.Fields(s) {
		if len(w) < 2 {
			continue
		}
		all = append(all, w)
		if !businessSuffixes[w] && !genericWords[w] {
			significant[w] = true
		}
	}
	return all, significant
}

// editRatio is the Levenshtein similarity ratio of the grouping keys.
func editRatio(a, b string) float64 {
	ka, kb := []rune(GroupingKey(a)), []rune(GroupingKey(b))
	if len(ka) == 0 || len(kb) == 0 {
		return 0
	}
	return levenshtein.RatioForStrings(ka, kb, levenshtein.DefaultOptions)
}

// Suggestion proposes to merge Source into Target.
type Suggestion struct {
	Target     GroupID
	TargetName string
	Source     GroupID
	SourceName string
	Score      float64
}

// SuggestMerges lists pairs of groups whose names look alike, best first.
//
// The score of a pair is the best of Similarity and the edit distance ratio
// of their grouping keys; pairs scoring under threshold are left out. The
// group holding more records is proposed as the target. It never mutates
// the store.
func (s *Store) SuggestMerges(threshold float64) []Suggestion {
	var out []Suggestion
	for i, a := range s.groups {
		for _, b := range s.groups[i+1:] {
			score := max(Similarity(a.name, b.name), editRatio(a.name, b.name))
			if score < threshold {
				continue
			}
			t, src := a, b
			if b.Len() > a.Len() {
				t, src = b, a
			}
			out = append(out, Suggestion{
				Target: t.id, TargetName: t.name,
				Source: src.id, SourceName: src.name,
				Score: score,
			})
		}
	}
	slices.SortStableFunc(out, func(x, y Suggestion) int { return cmp.Compare(y.Score, x.Score) })
	return out
}
