package server

import (
	"errors"
	"net/http"

	"github.com/Lllllllleong/legalassistant/internal/chat"
	"github.com/Lllllllleong/legalassistant/internal/extract"
)

// HandleChat proxies a chat completion. After validation it always answers
// 200, with the canned fallback when no provider responded.
func (s *Server) HandleChat(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeBodyError(w, err)
		return
	}

	req, err := chat.ParseRequest(body)
	switch {
	case errors.Is(err, chat.ErrMessagesRequired):
		writeError(w, http.StatusBadRequest, "Messages array is required")
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var result *chat.Result
	if s.Chat != nil {
		result = s.Chat.Complete(r.Context(), req)
	} else {
		result = &chat.Result{Body: chat.FallbackResponse(s.now()), Fallback: true}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Chat-Provider", result.Provider)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Body)
}

// HandleUpload extracts text from every file under "files".
func (s *Server) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if !s.parseMultipart(w, r) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, "No files provided")
		return
	}

	files := make([]extract.File, len(headers))
	for i, fh := range headers {
		files[i] = extract.FromHeader(fh)
	}
	results := s.Extractor.ExtractAll(r.Context(), files)
	writeJSON(w, http.StatusOK, extract.Response(results, s.now()))
}
