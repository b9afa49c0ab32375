package entity

// GenerateRequest is a single call to the text-generation collaborator.
type GenerateRequest struct {
	System      string  `json:"system"`
	User        string  `json:"user"`
	Temperature float64 `json:"temperature"`
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// LLMChatRequest is the OpenAI-compatible chat completion request body.
type LLMChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type LLMChatChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type LLMChatResponse struct {
	ID      string          `json:"id"`
	Model   string          `json:"model"`
	Choices []LLMChatChoice `json:"choices"`
}

// ConflictCheckResult is the parsed answer of the cross-check prompt.
type ConflictCheckResult struct {
	HasConflict bool   `json:"has_conflict"`
	Summary     string `json:"conflict_summary"`
	Question    string `json:"question"`
}
