package verification

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// SelectorConfig holds the classification data for the mode selector.
// Terms are matched case-insensitively as substrings of the query text.
type SelectorConfig struct {
	QuestionPrefixes    []string `json:"question_prefixes"`
	CopularOpeners      []string `json:"copular_openers"`
	ClaimSearchKeywords []string `json:"claim_search_keywords"`
	GenerativeKeywords  []string `json:"generative_keywords"`
	LongTextWords       int      `json:"long_text_words"`
	ShortTextWords      int      `json:"short_text_words"`
}

// DefaultSelectorConfig returns the stock keyword lists
func DefaultSelectorConfig() SelectorConfig {
	return SelectorConfig{
		QuestionPrefixes: []string{"¿", "?"},
		CopularOpeners:   []string{"es ", "son ", "fue ", "fueron ", "is ", "are ", "was ", "were "},
		ClaimSearchKeywords: []string{
			"viral", "fake news", "noticia falsa", "desinformación", "bulo",
			"política", "elecciones", "covid", "vacuna", "salud pública", "gobierno",
			"presidente", "ministro", "ley", "decreto", "twitter", "facebook", "whatsapp",
			"compartido", "cadena", "forwarded",
		},
		GenerativeKeywords: []string{
			"¿cómo", "por qué", "cuál es", "qué significa", "es bueno", "es malo",
			"consejo", "recomendación", "opinión", "análisis", "beneficios", "riesgos",
			"funciona", "efectivo", "seguro", "peligroso", "mito", "realidad",
		},
		LongTextWords:  100,
		ShortTextWords: 5,
	}
}

// ModeSelector picks a strategy from the shape and vocabulary of the text.
// It holds no mutable state and is safe for concurrent use.
type ModeSelector struct {
	questionPrefixes    []string
	copularOpeners      []string
	claimSearchKeywords []string
	generativeKeywords  []string
	longTextWords       int
	shortTextWords      int
}

// NewModeSelector builds a selector from cfg, folding every term to lower case
func NewModeSelector(cfg SelectorConfig) *ModeSelector {
	defaults := DefaultSelectorConfig()
	if cfg.LongTextWords <= 0 {
		cfg.LongTextWords = defaults.LongTextWords
	}
	if cfg.ShortTextWords <= 0 {
		cfg.ShortTextWords = defaults.ShortTextWords
	}
	return &ModeSelector{
		questionPrefixes:    foldTerms(cfg.QuestionPrefixes),
		copularOpeners:      foldTerms(cfg.CopularOpeners),
		claimSearchKeywords: foldTerms(cfg.ClaimSearchKeywords),
		generativeKeywords:  foldTerms(cfg.GenerativeKeywords),
		longTextWords:       cfg.LongTextWords,
		shortTextWords:      cfg.ShortTextWords,
	}
}

// Select classifies text; the first matching rule wins. Claim-search
// keywords are checked before the short-text rule, so a one-word "covid"
// goes to claim search first.
func (s *ModeSelector) Select(text string) Strategy {
	folded := strings.TrimSpace(fold(text))

	if hasAnyPrefix(folded, s.questionPrefixes) || hasAnyPrefix(folded, s.copularOpeners) {
		return StrategyGenerativeFirst
	}

	words := len(strings.Fields(text))
	if words > s.longTextWords {
		return StrategyClaimSearchFirst
	}

	// claim-search keywords take precedence over the short-text rule
	if containsAny(folded, s.claimSearchKeywords) {
		return StrategyClaimSearchFirst
	}
	if words < s.shortTextWords {
		return StrategyGenerativeFirst
	}
	if containsAny(folded, s.generativeKeywords) {
		return StrategyGenerativeFirst
	}

	return StrategyClaimSearchFirst
}

// fold lower-cases text in NFC so precomposed and decomposed accents match
func fold(text string) string {
	return strings.ToLower(norm.NFC.String(text))
}

func foldTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if t == "" {
			continue
		}
		out = append(out, fold(t))
	}
	return out
}

func hasAnyPrefix(text string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(text, p) {
			return true
		}
	}
	return false
}

func containsAny(text string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}
