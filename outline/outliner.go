package outline

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	prose "github.com/jdkato/prose/v2"
	"github.com/mindforge/mindmap-api/logger"
	"github.com/mindforge/mindmap-api/models"
)

const (
	maxAnalyzedChars  = 10000
	maxFrequencyChars = 5000

	maxHeadingWords = 8
	maxHeadingChars = 100

	maxSubtopics         = 6
	superTopicSentences  = 50
	maxSuperTopics       = 3
	superTopicTitleWords = 4
	bulletSentences      = 30
	maxBullets           = 5
	maxBulletChars       = 150
	bulletSourceLimit    = 200
)

// Outliner turns raw document text into a hierarchical topic tree using
// heuristic NLP: short noun-initial sentences become headings, frequent
// content words stand in when a document has none. The analysis is
// best-effort; anything that goes wrong degrades to plain paragraph
// splitting.
type Outliner struct {
	log          *logger.Logger
	stopwords    map[string]struct{}
	tokenPattern *regexp.Regexp
}

func NewOutliner(log *logger.Logger) *Outliner {
	return &Outliner{
		log:          log.With("service", "outline"),
		stopwords:    defaultStopwords(),
		tokenPattern: regexp.MustCompile(`[\p{L}\p{N}]+`),
	}
}

// Outline converts text into a mind map. It never fails: when tokenization or
// tagging is unusable it falls back to paragraph splitting.
func (o *Outliner) Outline(text string) *models.MindMapResponse {
	resp, err := o.analyze(text)
	if err != nil {
		o.log.Warn("topic analysis degraded to paragraph splitting", "error", err)
		return o.basicOutline(text)
	}
	return resp
}

func (o *Outliner) analyze(text string) (resp *models.MindMapResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			resp, err = nil, fmt.Errorf("topic analysis panic: %v", r)
		}
	}()

	text = truncateRunes(text, maxAnalyzedChars)
	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithExtraction(false))
	if err != nil {
		return nil, err
	}

	sentences := make([]string, 0, len(doc.Sentences()))
	for _, s := range doc.Sentences() {
		if trimmed := strings.TrimSpace(s.Text); trimmed != "" {
			sentences = append(sentences, trimmed)
		}
	}

	headings := o.findHeadings(sentences)

	mainTopic := "Document Topics"
	if len(headings) > 0 {
		mainTopic = headings[0]
	}

	var subtopics []string
	if len(headings) > 1 {
		subtopics = headings[1:min(len(headings), maxSubtopics+1)]
	} else {
		subtopics = o.frequentTerms(truncateRunes(text, maxFrequencyChars), maxSubtopics)
	}

	children := make([]models.MindMapNode, 0, len(subtopics))
	for _, subtopic := range subtopics {
		children = append(children, o.buildSubtopic(subtopic, sentences))
	}

	return &models.MindMapResponse{
		Topic: mainTopic,
		Root: &models.MindMapNode{
			Title:        mainTopic,
			BulletPoints: []string{},
			Children:     children,
		},
	}, nil
}

// findHeadings keeps sentences that look like section titles: at most eight
// words, under a hundred characters, starting with a noun.
func (o *Outliner) findHeadings(sentences []string) []string {
	var headings []string
	for _, sentence := range sentences {
		if utf8.RuneCountInString(sentence) >= maxHeadingChars {
			continue
		}
		tagged, err := prose.NewDocument(sentence,
			prose.WithSegmentation(false),
			prose.WithExtraction(false))
		if err != nil {
			continue
		}
		tokens := tagged.Tokens()
		if len(tokens) == 0 || len(tokens) > maxHeadingWords {
			continue
		}
		switch tokens[0].Tag {
		case "NN", "NNP", "NNS", "NNPS":
			headings = append(headings, sentence)
		}
	}
	return headings
}

// frequentTerms returns the most common case-folded content words, ties broken
// by first appearance.
func (o *Outliner) frequentTerms(text string, limit int) []string {
	tokens := o.tokenPattern.FindAllString(strings.ToLower(text), -1)
	counts := make(map[string]int)
	order := make(map[string]int)
	for i, tok := range tokens {
		if _, stop := o.stopwords[tok]; stop {
			continue
		}
		if _, seen := counts[tok]; !seen {
			order[tok] = i
		}
		counts[tok]++
	}

	terms := make([]string, 0, len(counts))
	for term := range counts {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if counts[terms[i]] != counts[terms[j]] {
			return counts[terms[i]] > counts[terms[j]]
		}
		return order[terms[i]] < order[terms[j]]
	})
	if limit > len(terms) {
		limit = len(terms)
	}
	return terms[:limit]
}

// buildSubtopic assembles one child node: up to three synthetic "super topic"
// titles drawn from sentences that mention the subtopic, plus up to five
// short bullet points quoting those mentions.
func (o *Outliner) buildSubtopic(subtopic string, sentences []string) models.MindMapNode {
	lowered := strings.ToLower(subtopic)

	var superTopics []models.MindMapNode
	for _, sentence := range head(sentences, superTopicSentences) {
		if !strings.Contains(strings.ToLower(sentence), lowered) {
			continue
		}
		descriptive := o.descriptiveWords(sentence)
		if len(descriptive) == 0 {
			continue
		}
		if len(descriptive) > superTopicTitleWords {
			descriptive = descriptive[:superTopicTitleWords]
		}
		superTopics = append(superTopics, models.MindMapNode{
			Title:        strings.Join(descriptive, " "),
			BulletPoints: []string{},
			Children:     []models.MindMapNode{},
		})
		if len(superTopics) >= maxSuperTopics {
			break
		}
	}

	bullets := []string{}
	for _, sentence := range head(sentences, bulletSentences) {
		if !strings.Contains(strings.ToLower(sentence), lowered) {
			continue
		}
		if utf8.RuneCountInString(sentence) >= bulletSourceLimit {
			continue
		}
		bullets = append(bullets, truncateRunes(sentence, maxBulletChars))
		if len(bullets) >= maxBullets {
			break
		}
	}

	if superTopics == nil {
		superTopics = []models.MindMapNode{}
	}
	return models.MindMapNode{
		Title:        subtopic,
		BulletPoints: bullets,
		Children:     superTopics,
	}
}

// descriptiveWords keeps content words longer than three characters.
func (o *Outliner) descriptiveWords(sentence string) []string {
	var words []string
	for _, tok := range o.tokenPattern.FindAllString(sentence, -1) {
		if utf8.RuneCountInString(tok) <= 3 {
			continue
		}
		if _, stop := o.stopwords[strings.ToLower(tok)]; stop {
			continue
		}
		words = append(words, tok)
	}
	return words
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

func head(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
