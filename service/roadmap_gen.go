package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/planoraforstudents/PlanoraForStudents/model"

	"github.com/spf13/viper"
)

// RoadmapGenerator turns a freeform prompt into roadmap text. The
// production implementation calls Gemini; tests plug in a fake
type RoadmapGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiClient calls the Google generative language REST API. One
// blocking request per roadmap, bounded by the HTTP client timeout
type GeminiClient struct {
	HTTPClient *http.Client
	APIKey     string
	Model      string
}

func NewGeminiClient() *GeminiClient {
	return &GeminiClient{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		APIKey:     viper.GetString("gemini.api_key"),
		Model:      viper.GetString("gemini.model"),
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	url := fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s",
		g.Model, g.APIKey)

	payload, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach generative API, %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generative API returned %d: %s", resp.StatusCode, string(raw))
	}

	var data geminiResponse
	if err := json.Unmarshal(raw, &data); err != nil {
		return "", fmt.Errorf("unexpected response from generative API, %w", err)
	}

	if len(data.Candidates) == 0 || len(data.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("generative API returned no candidates")
	}

	return data.Candidates[0].Content.Parts[0].Text, nil
}

// BuildRoadmapPrompt wraps a user goal in the instruction the model
// responds best to
func BuildRoadmapPrompt(goal string) string {
	return fmt.Sprintf("Generate a detailed learning or project roadmap for: %s. "+
		"Break it into structured steps, each with a title, description, and suggested resource link. "+
		"Also add projects with every end of module.", goal)
}

// ParseRoadmapSteps splits generated text into ordered steps, one per
// non-empty line
func ParseRoadmapSteps(text string) []model.RoadmapStep {
	var steps []model.RoadmapStep

	order := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		order++
		steps = append(steps, model.RoadmapStep{
			Title:       fmt.Sprintf("Step %d", order),
			Description: line,
			Order:       order,
		})
	}

	return steps
}
