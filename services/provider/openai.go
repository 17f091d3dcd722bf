package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/studyforge/study-assistant/model"
)

// Config holds the settings for the OpenAI-compatible provider. BaseURL is
// optional; pointing it at another chat-completions endpoint (OpenRouter,
// Groq) works unchanged.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// OpenAIProvider generates course content through the chat-completions API
// in JSON mode.
type OpenAIProvider struct {
	client openai.Client
	model  string
}

// NewOpenAIProvider returns nil when no API key is configured; callers
// treat a nil provider as generation disabled.
func NewOpenAIProvider(cfg Config) *OpenAIProvider {
	if cfg.APIKey == "" {
		log.Println("Warning: OPENAI_API_KEY not set. Course generation will be disabled.")
		return nil
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIProvider{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
	}
}

// GenerateCourse produces a full course document for a topic
func (p *OpenAIProvider) GenerateCourse(ctx context.Context, topic string) (*model.CourseDocument, error) {
	text, err := p.complete(ctx, courseSystemPrompt, generatePrompt(topic), 10000)
	if err != nil {
		return nil, fmt.Errorf("failed to generate course: %w", err)
	}

	doc, err := parseCourseJSON(text)
	if err != nil {
		return nil, err
	}

	// The model occasionally omits overview videos; fall back to searches
	// derived from the topic so the client always has something to show.
	if len(doc.VideoSuggestions) == 0 {
		doc.VideoSuggestions = []model.VideoSuggestion{
			{Title: topic + " - Complete Tutorial", Query: topic + " complete tutorial for beginners"},
			{Title: topic + " - Crash Course", Query: topic + " crash course step by step"},
		}
	}
	for i := range doc.VideoSuggestions {
		v := &doc.VideoSuggestions[i]
		if v.Query == "" {
			v.Query = topic + " " + v.Title
		}
		if len(v.VideoID) != 11 {
			v.VideoID = ""
		}
	}

	return doc, nil
}

// ContinueGeneration extends an existing course, either with new modules or
// with extra sections in every module. The reply carries the complete
// course; suggestions and references are preserved when the model drops
// them.
func (p *OpenAIProvider) ContinueGeneration(ctx context.Context, course *model.CourseDocument, mode ContinueMode) (*model.CourseDocument, error) {
	if course == nil || !mode.Valid() {
		return nil, fmt.Errorf("%w: course and a valid mode are required", ErrBadResponse)
	}

	text, err := p.complete(ctx, courseSystemPrompt, continuePrompt(course, mode), 12000)
	if err != nil {
		return nil, fmt.Errorf("failed to continue generation: %w", err)
	}

	doc, err := parseCourseJSON(text)
	if err != nil {
		return nil, err
	}

	if len(doc.VideoSuggestions) == 0 {
		doc.VideoSuggestions = course.VideoSuggestions
	}
	if len(doc.References) == 0 {
		doc.References = course.References
	}
	// Identity survives the regeneration so the save path upserts.
	doc.ID = course.ID
	doc.UserID = course.UserID

	return doc, nil
}

func (p *OpenAIProvider) complete(ctx context.Context, system, user string, maxTokens int64) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(0.7),
		MaxTokens:   openai.Int(maxTokens),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrBadResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// parseCourseJSON decodes the model reply, tolerating markdown fences and a
// truncated tail.
func parseCourseJSON(text string) (*model.CourseDocument, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var doc model.CourseDocument
	if err := json.Unmarshal([]byte(cleaned), &doc); err == nil && validCourse(&doc) {
		return &doc, nil
	}

	// Salvage a truncated reply by cutting at the last closing brace.
	if idx := strings.LastIndex(cleaned, "}"); idx > 0 {
		var salvaged model.CourseDocument
		if err := json.Unmarshal([]byte(cleaned[:idx+1]), &salvaged); err == nil && validCourse(&salvaged) {
			log.Println("Using salvaged partial course response")
			return &salvaged, nil
		}
	}

	return nil, fmt.Errorf("%w: reply is not a course document", ErrBadResponse)
}

func validCourse(doc *model.CourseDocument) bool {
	return doc.Title != "" && len(doc.Modules) > 0
}

// chatSession keeps the running conversation for one course
type chatSession struct {
	provider *OpenAIProvider

	mu      sync.Mutex
	history []openai.ChatCompletionMessageParamUnion
}

// NewChatSession starts a conversation seeded with a course summary
func (p *OpenAIProvider) NewChatSession(course *model.CourseDocument) ChatSession {
	return &chatSession{
		provider: p,
		history: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(chatSystemPrompt(course)),
		},
	}
}

// Send appends the user message, requests a reply and appends it to the
// session history.
func (s *chatSession) Send(ctx context.Context, message string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history, openai.UserMessage(message))

	resp, err := s.provider.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(s.provider.model),
		Messages:    s.history,
		Temperature: openai.Float(0.6),
	})
	if err != nil {
		// Drop the unanswered message so a retry does not double it.
		s.history = s.history[:len(s.history)-1]
		return "", fmt.Errorf("failed to get assistant reply: %w", err)
	}
	if len(resp.Choices) == 0 {
		s.history = s.history[:len(s.history)-1]
		return "", ErrBadResponse
	}

	reply := resp.Choices[0].Message.Content
	s.history = append(s.history, openai.AssistantMessage(reply))
	return reply, nil
}
