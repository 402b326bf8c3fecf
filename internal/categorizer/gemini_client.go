package categorizer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"fjacquet/fintrack/internal/logging"
	"fjacquet/fintrack/internal/models"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-1.5-flash"

// GeminiClient implements Suggester with the Google Gemini API.
type GeminiClient struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	timeout time.Duration
	logger  logging.Logger
}

// NewGeminiClient creates a new instance of GeminiClient.
func NewGeminiClient(ctx context.Context, apiKey, modelName string, timeout time.Duration, logger logging.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is not set")
	}
	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: client.GenerativeModel(modelName), timeout: timeout, logger: logger}, nil
}

// Suggest asks the model for one leaf category.
func (c *GeminiClient) Suggest(ctx context.Context, description string, forest models.CategoryForest) (models.CategoryLabel, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	c.logger.Debug("Requesting category suggestion",
		logging.F(logging.FieldOperation, "gemini_suggest"),
		logging.F("description", description))

	resp, err := c.model.GenerateContent(ctx, genai.Text(buildPrompt(description, forest)))
	if err != nil {
		return models.CategoryLabel{}, fmt.Errorf("gemini API error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return models.CategoryLabel{}, errors.New("no response from Gemini API")
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return models.CategoryLabel{}, errors.New("unexpected Gemini response part")
	}
	label := parseSuggestion(string(text), forest)

	c.logger.Debug("Gemini suggested category",
		logging.F("description", description),
		logging.F(logging.FieldCategory, label.String()))
	return label, nil
}

// Close releases the underlying client.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}
