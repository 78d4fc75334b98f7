package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultImageStyle = "hand-drawn cartoon animal, friendly, rounded, child-safe"

type WaveSpeedImage struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

func NewWaveSpeedImage(apiKey, baseURL, model string) *WaveSpeedImage {
	return &WaveSpeedImage{
		apiKey:     apiKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (p *WaveSpeedImage) Name() string { return "wavespeed" }

func (p *WaveSpeedImage) Generate(ctx context.Context, prompt, style string) (ImageResponse, error) {
	if style == "" {
		style = defaultImageStyle
	}

	body, err := json.Marshal(map[string]any{
		"model":  p.model,
		"prompt": prompt,
		"style":  style,
		"width":  512,
		"height": 512,
	})
	if err != nil {
		return ImageResponse{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/images/generate", bytes.NewReader(body))
	if err != nil {
		return ImageResponse{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return ImageResponse{}, fmt.Errorf("wavespeed generate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return ImageResponse{}, fmt.Errorf("wavespeed generate: status %d", resp.StatusCode)
	}

	var parsed struct {
		URL  string  `json:"url"`
		Cost float64 `json:"cost"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return ImageResponse{}, fmt.Errorf("decode response: %w", err)
	}

	cost := parsed.Cost
	if cost == 0 {
		cost = 0.02
	}

	return ImageResponse{ImageURL: parsed.URL, CostUSD: cost}, nil
}
