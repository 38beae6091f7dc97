package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Preferred models in order. The first one the API key can access wins.
var preferredModels = []string{
	"gemini-2.5-pro",
	"gemini-1.5-pro-latest",
	"gemini-1.5-pro",
	"gemini-2.5-flash",
	"gemini-1.5-flash-latest",
	"gemini-1.5-flash",
}

// ListModels returns the short model names the provider reports for our API
// key. Network and parse failures degrade to an empty list rather than an
// error; the caller treats that as "none available".
func (c *Client) ListModels(ctx context.Context) []string {
	url := fmt.Sprintf("%s/v1beta/models?key=%s", c.baseURL, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil
	}
	resp, err := c.listClient.Do(req)
	if err != nil {
		c.log.Warn("model listing failed", "error", err)
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.log.Warn("model listing rejected", "status", resp.StatusCode)
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil
	}
	var payload struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		c.log.Warn("model listing did not parse", "error", err)
		return nil
	}

	names := make([]string, 0, len(payload.Models))
	for _, m := range payload.Models {
		if m.Name == "" {
			continue
		}
		// Names often come as "models/gemini-2.5-flash"; normalize to the
		// short form.
		names = append(names, strings.TrimPrefix(m.Name, "models/"))
	}
	return names
}

// ChooseModel picks the best available model: the first preference that an
// available name equals or starts with (prefix match tolerates version
// suffixes), otherwise the first available model, otherwise "".
func (c *Client) ChooseModel(ctx context.Context) string {
	available := c.ListModels(ctx)
	if len(available) == 0 {
		return ""
	}
	for _, prefer := range preferredModels {
		for _, name := range available {
			if name == prefer || strings.HasPrefix(name, prefer) {
				return name
			}
		}
	}
	return available[0]
}
