package processing

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/Lllllllleong/legalassistant/internal/chat"
	"github.com/Lllllllleong/legalassistant/internal/models"
	"github.com/Lllllllleong/legalassistant/internal/qa"
)

const (
	// maxPromptChars bounds the document text sent for summarisation.
	maxPromptChars = 12000
	excerptChars   = 280
	summaryTokens  = 512
)

const summaryPrompt = `You summarise legal documents for startup founders.
Reply with two or three plain sentences: what kind of document it is, who the parties are, and the key economic or legal terms.
Do not add advice or caveats.`

// refusalPhrases mark a model reply that declined the task.
var refusalPhrases = []string{
	"i am unable to",
	"i cannot fulfill",
	"i cannot answer",
	"as a large language model",
}

func (p *Processor) summarize(ctx context.Context, name, text string) (string, string) {
	return Summarize(ctx, p.chat, name, text)
}

// Summarize asks c for a short summary of text and returns it with the name
// of the provider that wrote it. When no provider answers, or the model
// refuses, it falls back to a leading excerpt of the text.
func Summarize(ctx context.Context, c qa.Completer, name, text string) (string, string) {
	if c != nil {
		req := &models.ChatRequest{
			Messages: []models.ChatMessage{
				{Role: "system", Content: summaryPrompt},
				{Role: "user", Content: "Document: " + name + "\n\n" + truncate(text, maxPromptChars)},
			},
			Temperature: chat.DefaultTemperature,
			MaxTokens:   summaryTokens,
		}
		result := c.Complete(ctx, req)
		if !result.Fallback {
			if s := strings.TrimSpace(result.Content()); s != "" && !refused(s) {
				return s, result.Provider
			}
		}
	}
	return Excerpt(text, excerptChars), "excerpt"
}

func refused(reply string) bool {
	lower := strings.ToLower(reply)
	for _, phrase := range refusalPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// Excerpt collapses whitespace in text and cuts it at the last word boundary
// before limit runes, appending "..." when anything was cut.
func Excerpt(text string, limit int) string {
	flat := strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(flat) <= limit {
		return flat
	}
	cut := truncate(flat, limit)
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,;:") + "..."
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
