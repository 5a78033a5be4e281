package summarize

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/navjots35/newsxai/internal/article"
	"github.com/navjots35/newsxai/internal/config"
)

const organizePrompt = `You are a news analyst. Analyze the provided raw news
article text. Extract the main headline, provide a concise 2-3 sentence
summary, and list 3-5 relevant keywords.

Output as JSON only, no other text:
{
  "headline": "the main headline",
  "summary": "a 2-3 sentence summary",
  "keywords": ["kw1", "kw2", "kw3"]
}`

// OpenAISummarizer derives the article record with a chat model.
type OpenAISummarizer struct {
	client              *openai.Client
	model               openai.ChatModel
	preserveDiagnostics bool
}

var _ Summarizer = (*OpenAISummarizer)(nil)

// NewOpenAISummarizer builds an LLM-backed summarizer. A missing API key is
// a configuration error raised before any network call.
func NewOpenAISummarizer(cfg config.Config) (*OpenAISummarizer, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, &config.Error{Field: "OpenAIAPIKey"}
	}
	client := openai.NewClient(option.WithAPIKey(cfg.OpenAIAPIKey))
	return &OpenAISummarizer{
		client:              &client,
		model:               openai.ChatModel(cfg.OpenAIModel),
		preserveDiagnostics: cfg.PreserveDiagnostics,
	}, nil
}

// Summarize sends the article text to the model and decodes the structured
// record. Error-variant inputs short-circuit into an error record.
func (s *OpenAISummarizer) Summarize(ctx context.Context, text *article.Text) (article.Record, error) {
	if text.IsError() {
		return errorRecord(text, s.preserveDiagnostics), nil
	}

	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: s.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(organizePrompt),
			openai.UserMessage(text.Content),
		},
	})
	if err != nil {
		return article.Record{}, fmt.Errorf("openai summarize: %w", err)
	}
	if len(resp.Choices) == 0 {
		return article.Record{}, fmt.Errorf("openai summarize: empty response")
	}

	return decodeRecord(resp.Choices[0].Message.Content)
}

// decodeRecord parses model output into a validated record, tolerating code
// fences and surrounding prose. A response that cannot be decoded or fails
// validation is a MalformedSummary defect.
func decodeRecord(content string) (article.Record, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	// Some model responses include extra prose around the JSON.
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		content = content[start : end+1]
	}

	var rec article.Record
	if err := json.Unmarshal([]byte(content), &rec); err != nil {
		return article.Record{}, fmt.Errorf("%w: %v, content: %s", ErrMalformedSummary, err, content)
	}

	// The model may itself report a content problem.
	if rec.IsError() {
		return article.NewErrorRecord(article.ErrContentUnavailable), nil
	}

	return validate(rec)
}
