package outline

import (
	"fmt"
	"strings"

	"github.com/mindforge/mindmap-api/models"
)

const (
	fallbackMaxParagraphs = 20
	fallbackMaxSections   = 6
	fallbackTitleChars    = 100
	fallbackBulletChars   = 100
	fallbackMaxBullets    = 5
)

// basicOutline splits text on blank lines and emits numbered sections. No
// tokenizer involved, so it cannot fail.
func (o *Outliner) basicOutline(text string) *models.MindMapResponse {
	var paragraphs []string
	for _, p := range strings.Split(text, "\n\n") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			paragraphs = append(paragraphs, trimmed)
		}
		if len(paragraphs) >= fallbackMaxParagraphs {
			break
		}
	}

	mainTopic := "Document"
	if len(paragraphs) > 0 {
		mainTopic = truncateRunes(paragraphs[0], fallbackTitleChars)
	}

	children := []models.MindMapNode{}
	if len(paragraphs) > 1 {
		for i, para := range head(paragraphs[1:], fallbackMaxSections) {
			bullets := []string{}
			for _, sentence := range head(strings.Split(para, "."), fallbackMaxBullets) {
				if trimmed := strings.TrimSpace(sentence); trimmed != "" {
					bullets = append(bullets, truncateRunes(trimmed, fallbackBulletChars))
				}
			}
			children = append(children, models.MindMapNode{
				Title:        fmt.Sprintf("Section %d", i+1),
				BulletPoints: bullets,
				Children:     []models.MindMapNode{},
			})
		}
	}

	return &models.MindMapResponse{
		Topic: mainTopic,
		Root: &models.MindMapNode{
			Title:        mainTopic,
			BulletPoints: []string{},
			Children:     children,
		},
	}
}
