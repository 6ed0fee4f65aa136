// Package agent is the boundary to the conversational model. The engine
// hands it plain text and receives plain text back; the model's internal
// reasoning is never inspected.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/openai/openai-go"

	"github.com/spacesedan/echomind/internal/clients"
	"github.com/spacesedan/echomind/internal/models"
)

const systemPrompt = `You are EchoMind, a compassionate mental health support companion.
Listen carefully, respond with empathy, and offer evidence-based coping guidance.
You are not a clinician and never give diagnoses; encourage professional help when the
conversation suggests it is needed. Keep responses warm and concise.`

const summarySystemPrompt = `You are a mental health analyst. Provide comprehensive, ` +
	`to-the-point, precise (Maximum 100 words), empathetic summaries of mental health conversations.`

const (
	maxSummaryRecords = 20
	maxPromptChars    = 8000
	maxAttempts       = 3
)

// Summarizer produces a natural-language summary from prepared
// conversation text. The OpenAI-backed agent and the local BART pipeline
// both satisfy it.
type Summarizer interface {
	SummarizeText(ctx context.Context, conversationText string) (string, error)
}

// Agent answers user utterances via the conversational model and
// delegates summary generation to whichever summarizer was configured.
type Agent struct {
	ai         *clients.AIClient
	model      openai.ChatModel
	summarizer Summarizer
}

func New(apiKey, model string, fallback Summarizer) *Agent {
	a := &Agent{model: openai.ChatModel(model), summarizer: fallback}
	if apiKey != "" {
		a.ai = clients.GetAIClient(apiKey)
	} else if fallback == nil {
		slog.Warn("[Agent] No OpenAI key and no local summarizer; agent features disabled")
	}
	return a
}

// Reply produces the assistant response for one user utterance.
func (a *Agent) Reply(ctx context.Context, userMessage string) (string, error) {
	if a.ai == nil {
		return "", fmt.Errorf("conversational model not configured")
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		chatCompletion, err := a.ai.Client.Chat.Completions.New(ctx,
			openai.ChatCompletionNewParams{
				Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
					openai.SystemMessage(systemPrompt),
					openai.UserMessage(userMessage),
				}),
				Model:       openai.F(a.model),
				Temperature: openai.Float(0.7),
			})
		if err != nil {
			lastErr = err
			slog.Warn("[Agent] Chat completion failed, retrying",
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()))
			time.Sleep(2 * time.Second)
			continue
		}

		if len(chatCompletion.Choices) == 0 ||
			strings.TrimSpace(chatCompletion.Choices[0].Message.Content) == "" {
			lastErr = fmt.Errorf("model returned empty response")
			slog.Warn("[Agent] Empty completion, retrying", slog.Int("attempt", attempt))
			time.Sleep(2 * time.Second)
			continue
		}

		return strings.TrimSpace(chatCompletion.Choices[0].Message.Content), nil
	}
	return "", fmt.Errorf("chat completion failed after retries: %w", lastErr)
}

// Summarize renders the most recent records into a conversation
// transcript and asks for an empathetic summary. Errors are returned to
// the handler, which reports them inside the summary payload rather than
// failing the request.
func (a *Agent) Summarize(ctx context.Context, history []models.AnalysisRecord) (string, error) {
	if len(history) == 0 {
		return "No conversations available to summarize.", nil
	}

	conversationText := renderHistory(history)

	if a.ai != nil {
		summary, err := a.summarizeWithOpenAI(ctx, conversationText)
		if err == nil {
			return summary, nil
		}
		slog.Warn("[Agent] OpenAI summary failed",
			slog.String("error", err.Error()))
		if a.summarizer == nil {
			return "", err
		}
	}

	if a.summarizer == nil {
		return "", fmt.Errorf("no summarizer configured")
	}
	return a.summarizer.SummarizeText(ctx, conversationText)
}

func (a *Agent) summarizeWithOpenAI(ctx context.Context, conversationText string) (string, error) {
	prompt := fmt.Sprintf(`Please provide a comprehensive, to-the-point and precise (Maximum 100 words) summary of the following mental health conversations.
Analyze the patterns, key themes, emotional states, concerns raised, and overall progress.

Conversations:
%s

Please provide a detailed, empathetic summary that helps understand the user's mental health journey.`, conversationText)

	chatCompletion, err := a.ai.Client.Chat.Completions.New(ctx,
		openai.ChatCompletionNewParams{
			Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(summarySystemPrompt),
				openai.UserMessage(prompt),
			}),
			Model:       openai.F(a.model),
			Temperature: openai.Float(0.5),
		})
	if err != nil {
		return "", err
	}
	if len(chatCompletion.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}
	summary := strings.TrimSpace(chatCompletion.Choices[0].Message.Content)
	if summary == "" {
		return "", fmt.Errorf("model returned empty summary")
	}
	return summary, nil
}

// renderHistory formats at most the 20 most recent records, newest
// first, truncated to leave room for the prompt itself.
func renderHistory(history []models.AnalysisRecord) string {
	if len(history) > maxSummaryRecords {
		history = history[:maxSummaryRecords]
	}

	var sb strings.Builder
	sb.WriteString("Here are all the past conversations:\n\n")
	for idx, record := range history {
		fmt.Fprintf(&sb, "Conversation %d (%s):\n", idx+1,
			record.CreatedAt.Format("2006-01-02 15:04"))
		fmt.Fprintf(&sb, "User: %s\n", record.SourceText)
		fmt.Fprintf(&sb, "Assistant: %s\n", record.ResponseText)
		if record.Modality != models.ModalityNone {
			fmt.Fprintf(&sb, "Analysis Used: %s emotion\n", record.Modality)
		}
		sb.WriteString("\n---\n\n")
	}

	text := sb.String()
	if len(text) > maxPromptChars {
		text = text[:maxPromptChars] + "\n\n[... truncated for length ...]"
	}
	return text
}
