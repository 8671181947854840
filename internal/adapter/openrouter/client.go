// Package openrouter resolves free-text city names to coordinates through an
// OpenRouter chat-completion call.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"github.com/couchcryptid/weather-dashboard-service/internal/config"
	"github.com/couchcryptid/weather-dashboard-service/internal/domain"
	"github.com/couchcryptid/weather-dashboard-service/internal/observability"
)

const promptTemplate = `You are a geography expert. Given a city name, respond with the latitude and longitude coordinates in JSON format.
City: %s

Respond with a JSON object in the format: {"latitude": float, "longitude": float}
If you cannot determine the coordinates for the given location, respond with {"latitude": null, "longitude": null}`

// jsonPattern extracts the first brace-delimited substring from a model reply
// that ignored the response_format contract.
var jsonPattern = regexp.MustCompile(`(?s)\{.*\}`)

// Client implements domain.Geocoder against the OpenRouter chat-completion
// endpoint. Every failure mode resolves to an error wrapping
// domain.ErrUnresolvable; the wrapped cause is only for logs.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an OpenRouter geocoding client from config.
func NewClient(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey:  cfg.OpenRouterAPIKey,
		model:   cfg.OpenRouterModel,
		baseURL: cfg.OpenRouterBaseURL,
		httpClient: &http.Client{
			Timeout: cfg.OpenRouterTimeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// Resolve asks the model for the coordinates of a city. The request carries a
// JSON-schema response_format; since free-tier models routinely ignore it, the
// reply is additionally scanned for a brace-delimited JSON substring.
func (c *Client) Resolve(ctx context.Context, city string) (domain.Coordinates, error) {
	coords, err := c.resolve(ctx, city)
	if err != nil {
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
		c.logger.Warn("geocoding failed", "city", city, "error", err)
		return domain.Coordinates{}, fmt.Errorf("%w: %w", domain.ErrUnresolvable, err)
	}
	c.metrics.GeocodeRequests.WithLabelValues("success").Inc()
	return coords, nil
}

func (c *Client) resolve(ctx context.Context, city string) (domain.Coordinates, error) {
	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: fmt.Sprintf(promptTemplate, city)},
		},
		Temperature:    0.1,
		MaxTokens:      200,
		ResponseFormat: coordinatesResponseFormat(),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("HTTP-Referer", "https://github.com/weather-server")
	req.Header.Set("X-Title", "Weather Server")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.GeocodeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("chat completion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.Coordinates{}, fmt.Errorf("openrouter API error: status %d: %s", resp.StatusCode, msg)
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return domain.Coordinates{}, fmt.Errorf("decode response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return domain.Coordinates{}, fmt.Errorf("response has no choices")
	}

	return parseCoordinates(chat.Choices[0].Message.Content)
}

// parseCoordinates extracts and validates the coordinate pair from the model's
// reply text.
func parseCoordinates(content string) (domain.Coordinates, error) {
	var reply coordinatesReply
	if err := json.Unmarshal([]byte(content), &reply); err != nil {
		match := jsonPattern.FindString(content)
		if match == "" {
			return domain.Coordinates{}, fmt.Errorf("reply contains no JSON object")
		}
		if err := json.Unmarshal([]byte(match), &reply); err != nil {
			return domain.Coordinates{}, fmt.Errorf("parse reply JSON: %w", err)
		}
	}

	if reply.Latitude == nil || reply.Longitude == nil {
		return domain.Coordinates{}, fmt.Errorf("model reported unknown location")
	}

	coords := domain.Coordinates{Lat: *reply.Latitude, Lon: *reply.Longitude}
	if err := coords.Validate(); err != nil {
		return domain.Coordinates{}, err
	}
	return coords, nil
}

// OpenRouter chat-completion payload types.

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type       string     `json:"type"`
	JSONSchema jsonSchema `json:"json_schema"`
}

type jsonSchema struct {
	Name   string          `json:"name"`
	Strict bool            `json:"strict"`
	Schema json.RawMessage `json:"schema"`
}

func coordinatesResponseFormat() *responseFormat {
	return &responseFormat{
		Type: "json_schema",
		JSONSchema: jsonSchema{
			Name:   "coordinates",
			Strict: true,
			Schema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"latitude": {"type": ["number", "null"]},
					"longitude": {"type": ["number", "null"]}
				},
				"required": ["latitude", "longitude"],
				"additionalProperties": false
			}`),
		},
	}
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type coordinatesReply struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}
