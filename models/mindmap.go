package models

import "strings"

// MindMapNode is one node of the hierarchical outline returned to the UI.
// Children recursively share the same shape.
type MindMapNode struct {
	Title        string        `json:"title"`
	LearnMore    string        `json:"learn_more"`
	BulletPoints []string      `json:"bulletPoints"`
	Children     []MindMapNode `json:"children"`
}

// MindMapResponse is the full payload for a topic. Degraded is set when the
// body is a deterministic fallback rather than provider or cached content.
type MindMapResponse struct {
	Topic    string       `json:"topic"`
	Root     *MindMapNode `json:"root"`
	Degraded bool         `json:"degraded,omitempty"`
}

// Valid reports whether the response is complete enough to cache or serve.
// Partial payloads must never count as a success.
func (r *MindMapResponse) Valid() bool {
	return r != nil &&
		strings.TrimSpace(r.Topic) != "" &&
		r.Root != nil &&
		strings.TrimSpace(r.Root.Title) != ""
}
