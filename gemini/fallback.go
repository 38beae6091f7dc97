package gemini

import (
	"strings"

	"github.com/mindforge/mindmap-api/models"
)

// Fallback builds a deterministic mind map from the topic string alone, so the
// UI always has something to render when the provider cannot deliver.
func Fallback(topic string) *models.MindMapResponse {
	learnMore := "https://en.wikipedia.org/wiki/" + strings.ReplaceAll(topic, " ", "_")

	section := func(title string) models.MindMapNode {
		return models.MindMapNode{
			Title:        title,
			LearnMore:    learnMore,
			BulletPoints: []string{},
			Children:     []models.MindMapNode{},
		}
	}

	return &models.MindMapResponse{
		Topic: topic,
		Root: &models.MindMapNode{
			Title:        topic,
			LearnMore:    learnMore,
			BulletPoints: []string{},
			Children: []models.MindMapNode{
				section("Overview"),
				section("Key Concepts"),
				section("Further Reading"),
			},
		},
		Degraded: true,
	}
}
