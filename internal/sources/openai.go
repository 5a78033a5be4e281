package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/navjots35/newsxai/internal/config"
)

const findSourcesPrompt = `You are a news research assistant. Given a topic,
identify 2-3 recent and reputable news article URLs specifically about that
topic. Focus on major news outlets or respected tech/science publications.

Output as a JSON array of URL strings only, no other text.
Example: ["https://example.com/a", "https://example.com/b"]`

// OpenAIFinder asks a chat model for candidate article URLs, the way the
// original retrieval stage did.
type OpenAIFinder struct {
	client *openai.Client
	model  openai.ChatModel
}

var _ Finder = (*OpenAIFinder)(nil)

// NewOpenAIFinder builds an LLM-backed finder. A missing API key is a
// configuration error raised before any network call.
func NewOpenAIFinder(cfg config.Config) (*OpenAIFinder, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, &config.Error{Field: "OpenAIAPIKey"}
	}
	client := openai.NewClient(option.WithAPIKey(cfg.OpenAIAPIKey))
	return &OpenAIFinder{
		client: &client,
		model:  openai.ChatModel(cfg.OpenAIModel),
	}, nil
}

// Find asks the model for article URLs about the topic. Invalid URLs in the
// response are dropped; the result is capped at limit.
func (f *OpenAIFinder) Find(ctx context.Context, topic string, limit int) ([]string, error) {
	userPrompt := fmt.Sprintf("Topic: %s", topic)

	resp, err := f.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: f.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(findSourcesPrompt),
			openai.UserMessage(userPrompt),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai source search: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai source search: empty response")
	}

	return parseURLList(resp.Choices[0].Message.Content, limit)
}

// parseURLList decodes a JSON array of URL strings from model output,
// tolerating code fences and surrounding prose.
func parseURLList(content string, limit int) ([]string, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	// Some model responses include extra prose around the JSON.
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start >= 0 && end > start {
		content = content[start : end+1]
	}

	var raw []string
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse source list: %w, content: %s", err, content)
	}

	urls := make([]string, 0, len(raw))
	for _, u := range raw {
		if !validURL(u) {
			continue
		}
		urls = append(urls, u)
		if limit > 0 && len(urls) == limit {
			break
		}
	}
	return urls, nil
}
