package telemetry

import "strings"

type EmotionalTone struct {
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
}

type CreativityIndicators struct {
	UniqueWords   int `json:"uniqueWords"`
	MetaphorCount int `json:"metaphorCount"`
	QuestionCount int `json:"questionCount"`
	IdeaCount     int `json:"ideaCount"`
}

type LinguisticFeatures struct {
	WordCount          int                  `json:"wordCount"`
	CharCount          int                  `json:"charCount"`
	AvgWordLength      float64              `json:"avgWordLength"`
	SentenceCount      int                  `json:"sentenceCount"`
	AvgSentenceLength  float64              `json:"avgSentenceLength"`
	VocabularyRichness float64              `json:"vocabularyRichness"`
	ReadabilityScore   float64              `json:"readabilityScore"`
	SemanticComplexity float64              `json:"semanticComplexity"`
	EmotionalTone      EmotionalTone        `json:"emotionalTone"`
	Creativity         CreativityIndicators `json:"creativityIndicators"`
}

// Small fixed lexicons; matching is by substring so inflected forms
// ("loved", "problems") still hit.
var positiveLexicon = []string{
	"good", "great", "excellent", "amazing", "wonderful",
	"fantastic", "love", "like", "happy", "joy",
}

var negativeLexicon = []string{
	"bad", "terrible", "awful", "hate", "dislike",
	"sad", "angry", "frustrated", "difficult", "problem",
}

// metaphorCues are comparison markers used as a coarse figurative-language
// signal, checked as substrings of the whole text.
var metaphorCues = []string{"like", "as", "similar to", "reminds me", "appears to be"}

// deriveLinguisticFeatures extracts lexical statistics from the current
// message text. Every ratio degrades to 0 when its denominator is 0.
func deriveLinguisticFeatures(text string) LinguisticFeatures {
	words := strings.Fields(text)
	sentences := splitSentences(text)
	unique := uniqueLowercase(words)

	var totalWordLen int
	for _, w := range words {
		totalWordLen += len(w)
	}

	var avgWordLength, avgSentenceLength, richness float64
	if len(words) > 0 {
		avgWordLength = float64(totalWordLen) / float64(len(words))
		richness = float64(len(unique)) / float64(len(words))
	}
	if len(sentences) > 0 {
		avgSentenceLength = float64(len(words)) / float64(len(sentences))
	}

	return LinguisticFeatures{
		WordCount:          len(words),
		CharCount:          len(text),
		AvgWordLength:      avgWordLength,
		SentenceCount:      len(sentences),
		AvgSentenceLength:  avgSentenceLength,
		VocabularyRichness: richness,
		ReadabilityScore:   readabilityScore(words, len(sentences)),
		SemanticComplexity: semanticComplexity(avgWordLength, richness, len(words)),
		EmotionalTone:      emotionalTone(text),
		Creativity:         creativityIndicators(text, len(unique)),
	}
}

func splitSentences(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	var out []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

func uniqueLowercase(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = struct{}{}
	}
	return set
}

// readabilityScore is a simplified Flesch reading-ease:
// 206.835 - 1.015*(words/sentence) - 84.6*(syllables/word).
func readabilityScore(words []string, sentenceCount int) float64 {
	if len(words) == 0 || sentenceCount == 0 {
		return 0
	}
	var syllables int
	for _, w := range words {
		syllables += countSyllables(w)
	}
	wordsPerSentence := float64(len(words)) / float64(sentenceCount)
	syllablesPerWord := float64(syllables) / float64(len(words))
	return 206.835 - 1.015*wordsPerSentence - 84.6*syllablesPerWord
}

// countSyllables approximates syllables as vowel groups with a trailing-e
// adjustment, never below 1.
func countSyllables(word string) int {
	const vowels = "aeiouy"
	count := 0
	prevVowel := false
	lower := strings.ToLower(word)
	for _, r := range lower {
		isVowel := strings.ContainsRune(vowels, r)
		if isVowel && !prevVowel {
			count++
		}
		prevVowel = isVowel
	}
	if strings.HasSuffix(lower, "e") {
		count--
	}
	if count < 1 {
		return 1
	}
	return count
}

// semanticComplexity blends average word length with the type/token ratio,
// clamped to [0,1]. A coarse proxy, not a validated construct.
func semanticComplexity(avgWordLength, typeTokenRatio float64, wordCount int) float64 {
	if wordCount == 0 {
		return 0
	}
	complexity := avgWordLength*0.3 + typeTokenRatio*0.7
	if complexity > 1 {
		return 1
	}
	if complexity < 0 {
		return 0
	}
	return complexity
}

func emotionalTone(text string) EmotionalTone {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return EmotionalTone{}
	}
	var positive, negative int
	for _, w := range words {
		if containsAny(w, positiveLexicon) {
			positive++
		}
		if containsAny(w, negativeLexicon) {
			negative++
		}
	}
	total := float64(len(words))
	return EmotionalTone{
		Positive: float64(positive) / total,
		Negative: float64(negative) / total,
		Neutral:  float64(len(words)-positive-negative) / total,
	}
}

func containsAny(word string, lexicon []string) bool {
	for _, l := range lexicon {
		if strings.Contains(word, l) {
			return true
		}
	}
	return false
}

func creativityIndicators(text string, uniqueWords int) CreativityIndicators {
	lower := strings.ToLower(text)
	var metaphors int
	for _, cue := range metaphorCues {
		if strings.Contains(lower, cue) {
			metaphors++
		}
	}
	ideas := strings.Count(text, ".") + strings.Count(text, "!")
	if ideas < 1 {
		ideas = 1
	}
	return CreativityIndicators{
		UniqueWords:   uniqueWords,
		MetaphorCount: metaphors,
		QuestionCount: strings.Count(text, "?"),
		IdeaCount:     ideas,
	}
}

func countWords(text string) int {
	return len(strings.Fields(text))
}
