package classifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"

	"github.com/verte-zerg/emorun/internal/emotion"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = openai.ChatModelGPT4oMini

// OpenAI classifies text with the OpenAI Responses API.
type OpenAI struct {
	client *openai.Client
	model  openai.ChatModel
}

// NewOpenAI builds an OpenAI classifier. The API key falls back to the
// client's own environment lookup when cfg.APIKey is empty.
func NewOpenAI(cfg Config) (*OpenAI, error) {
	opts := []option.RequestOption{}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)
	model := openai.ChatModel(strings.TrimSpace(cfg.Model))
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAI{client: &client, model: model}, nil
}

// Warmup checks that the configured model is reachable.
func (c *OpenAI) Warmup(ctx context.Context) error {
	if c.client == nil {
		return errors.New("nil openai client")
	}
	if _, err := c.client.Models.Get(ctx, string(c.model)); err != nil {
		return fmt.Errorf("failed to reach model %s: %w", c.model, err)
	}
	return nil
}

// Classify implements Classifier.
func (c *OpenAI) Classify(ctx context.Context, text string) (string, error) {
	if c.client == nil {
		return "", errors.New("nil openai client")
	}
	sys := responses.ResponseInputMessageContentListParam{
		{OfInputText: &responses.ResponseInputTextParam{Text: instructions()}},
	}
	user := responses.ResponseInputMessageContentListParam{
		{OfInputText: &responses.ResponseInputTextParam{Text: text}},
	}
	resp, err := c.client.Responses.New(ctx, responses.ResponseNewParams{
		Model: c.model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: responses.ResponseInputParam{
				responses.ResponseInputItemParamOfMessage(sys, responses.EasyInputMessageRoleSystem),
				responses.ResponseInputItemParamOfMessage(user, responses.EasyInputMessageRoleUser),
			},
		},
	})
	if err != nil {
		return "", err
	}
	return parseOutput(resp.OutputText())
}

func instructions() string {
	labels := make([]string, 0, len(emotion.Vocabulary()))
	for _, k := range emotion.Vocabulary() {
		labels = append(labels, k.String())
	}
	return "Classify the emotion expressed by the user's text. " +
		"Answer with exactly one lowercase word from this list and nothing else: " +
		strings.Join(labels, ", ") + "."
}

// parseOutput extracts the first vocabulary label from a model answer.
func parseOutput(out string) (string, error) {
	if kind, ok := emotion.Parse(out); ok {
		return kind.String(), nil
	}
	for _, field := range strings.Fields(out) {
		if kind, ok := emotion.Parse(strings.Trim(field, ",;:()[]")); ok {
			return kind.String(), nil
		}
	}
	return "", fmt.Errorf("no emotion label in model output %q", out)
}
