package gemini

import (
	"encoding/json"

	"github.com/mindforge/mindmap-api/models"
)

// The provider answers in one of two shapes: the strict JSON we asked for, or
// the standard envelope where our payload is embedded as text inside
// candidates/content/parts. Each shape gets its own parser and they are tried
// in a fixed order.
type responseParser struct {
	name  string
	parse func(data []byte) *models.MindMapResponse
}

var responseParsers = []responseParser{
	{name: "direct", parse: parseDirect},
	{name: "candidates", parse: parseCandidates},
}

// ParseResponse tries each known response shape and returns the first payload
// that validates, or nil when none does.
func ParseResponse(data []byte) *models.MindMapResponse {
	for _, p := range responseParsers {
		if resp := p.parse(data); resp.Valid() {
			return resp
		}
	}
	return nil
}

func parseDirect(data []byte) *models.MindMapResponse {
	var resp models.MindMapResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil
	}
	return &resp
}

func parseCandidates(data []byte) *models.MindMapResponse {
	var envelope struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil
	}
	for _, candidate := range envelope.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.Text == "" {
				continue
			}
			var resp models.MindMapResponse
			if err := json.Unmarshal([]byte(part.Text), &resp); err != nil {
				continue
			}
			if resp.Valid() {
				return &resp
			}
		}
	}
	return nil
}
