package models

// These structs define the JSON payloads exchanged with clients and with
// the upstream chat-completion services.

// ChatMessage is a single chat turn.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Name    string `json:"name,omitempty"`
}

// ChatRequest is the input for the chat proxy.
type ChatRequest struct {
	Messages         []ChatMessage `json:"messages"`
	Temperature      float64       `json:"temperature"`
	MaxTokens        int           `json:"max_tokens"`
	TopP             *float64      `json:"top_p,omitempty"`
	FrequencyPenalty *float64      `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64      `json:"presence_penalty,omitempty"`
}

// ChatResponse is the chat-completion shaped response returned to clients.
type ChatResponse struct {
	ID      string       `json:"id,omitempty"`
	Object  string       `json:"object,omitempty"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []ChatChoice `json:"choices"`
	Usage   ChatUsage    `json:"usage"`
}

// ChatChoice is one completion alternative.
type ChatChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// ChatUsage reports token counts.
type ChatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ErrorResponse is the JSON body of every client-facing error.
type ErrorResponse struct {
	Error string `json:"error"`
}

// FileResult is the per-file outcome of an upload batch.
type FileResult struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Success bool   `json:"success"`
	Pages   int    `json:"pages,omitempty"`
	Error   string `json:"error,omitempty"`
}

// UploadResponse is the output of the upload endpoint.
type UploadResponse struct {
	FileContents []string     `json:"fileContents"`
	Results      []FileResult `json:"results"`
	Count        int          `json:"count"`
	Timestamp    string       `json:"timestamp"`
}

// TemplateInspection summarises the interactive form of a PDF template.
type TemplateInspection struct {
	FieldCount int      `json:"fieldCount"`
	FieldNames []string `json:"fieldNames"`
	HasForm    bool     `json:"hasForm"`
	PageCount  int      `json:"pageCount"`
}

// AskRequest is the input for creating a Q&A session.
type AskRequest struct {
	Question string   `json:"question"`
	Files    []string `json:"files,omitempty"`
}

// TabRequest selects the active UI panel.
type TabRequest struct {
	Tab string `json:"tab"`
}

// CurrentDocumentRequest selects (or clears, with an empty ID) the current document.
type CurrentDocumentRequest struct {
	ID string `json:"id"`
}

// SummarizeRequest is the payload the document workflow posts to the
// summarizer step. URL is the gs:// location of the archived upload.
type SummarizeRequest struct {
	DocumentID  string `json:"documentId"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	URL         string `json:"url"`
	ExecutionID string `json:"executionId,omitempty"`
}

// SummarizeResponse is returned to the workflow once the document record is updated.
type SummarizeResponse struct {
	Status        string            `json:"status"`
	Summary       string            `json:"summary"`
	SummarySource string            `json:"summarySource"`
	FilledData    map[string]string `json:"filledData,omitempty"`
}
