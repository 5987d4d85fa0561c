package core

import (
	"sort"
	"strings"
)

// DefaultMatchThreshold is the minimum similarity score for a material to be
// offered as a fuzzy-match candidate.
const DefaultMatchThreshold = 0.6

// matcherStopWords are generic packaging/quantity words stripped before
// comparing names. Pure numeric tokens are stripped separately.
var matcherStopWords = map[string]bool{
	"de": true, "da": true, "do": true, "das": true, "dos": true,
	"com": true, "para": true, "c/": true, "p/": true, "e": true,
	"kit": true, "pacote": true, "pct": true, "caixa": true, "cx": true,
	"rolo": true, "unidade": true, "unidades": true, "un": true, "und": true,
	"pecas": true, "peças": true, "pol": true,
}

// Similarity scores how alike two material names are, in [0, 1].
//
// Exact match (after lowercase/trim) scores 1.0. After stop-word removal, a
// substring containment scores 0.8; otherwise the score is the Jaccard
// similarity of the token sets. Heuristic only — callers must confirm fuzzy
// matches with the user rather than auto-merging.
func Similarity(a, b string) float64 {
	na := strings.ToLower(strings.TrimSpace(a))
	nb := strings.ToLower(strings.TrimSpace(b))
	if na == nb {
		return 1.0
	}

	ca := cleanTokens(na)
	cb := cleanTokens(nb)
	if len(ca) == 0 || len(cb) == 0 {
		return 0.0
	}

	sa := strings.Join(ca, " ")
	sb := strings.Join(cb, " ")
	if strings.Contains(sa, sb) || strings.Contains(sb, sa) {
		return 0.8
	}

	setA := make(map[string]bool, len(ca))
	for _, t := range ca {
		setA[t] = true
	}
	setB := make(map[string]bool, len(cb))
	for _, t := range cb {
		setB[t] = true
	}

	intersection := 0
	for t := range setA {
		if setB[t] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

// cleanTokens splits a normalized name and drops stop words and pure numbers.
func cleanTokens(s string) []string {
	var out []string
	for _, tok := range strings.Fields(s) {
		if matcherStopWords[tok] || isNumericToken(tok) {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func isNumericToken(tok string) bool {
	if tok == "" {
		return false
	}
	for _, r := range tok {
		if (r < '0' || r > '9') && r != '.' && r != ',' {
			return false
		}
	}
	return true
}

// FindSimilar ranks existing materials by similarity to a candidate name,
// keeping only those at or above threshold. Ties preserve the enumeration
// order of the input slice.
func FindSimilar(candidate string, materials []Material, threshold float64) []MaterialMatch {
	var matches []MaterialMatch
	for _, m := range materials {
		score := Similarity(candidate, m.Name)
		if score >= threshold {
			matches = append(matches, MaterialMatch{Material: m, Score: score})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}
