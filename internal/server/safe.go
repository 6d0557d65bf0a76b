package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path"

	"github.com/Lllllllleong/legalassistant/internal/safe"
)

const generationFailed = "Failed to generate PDF. Please try again."

// HandleGenerateSafe renders the SAFE agreement for the posted form.
// ?preview=live renders only the header page and skips validation.
func (s *Server) HandleGenerateSafe(w http.ResponseWriter, r *http.Request) {
	var form safe.Form
	if !decodeJSON(w, r, &form) {
		return
	}

	live := r.URL.Query().Get("preview") == "live"
	var (
		data []byte
		err  error
	)
	if live {
		data, err = s.Generator.LivePreview(form)
	} else {
		data, err = s.Generator.Generate(form)
	}
	if errors.Is(err, safe.ErrInvalidForm) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.Logger.Error("SAFE generation failed.", "error", err, "company", form.CompanyName)
		writeError(w, http.StatusInternalServerError, generationFailed)
		return
	}

	filename := safe.Filename(form, s.now())
	if !live {
		s.archive(r, filename, data)
	}
	writePDF(w, filename, data)
}

func (s *Server) handlePreviewSafe(w http.ResponseWriter, _ *http.Request) {
	data, err := s.Generator.Preview()
	if err != nil {
		s.Logger.Error("SAFE preview failed.", "error", err)
		writeError(w, http.StatusInternalServerError, generationFailed)
		return
	}
	writePDF(w, "YC-SAFE-Preview.pdf", data)
}

func (s *Server) handleMapping(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Filler.Mapping())
}

// handleFillSafe fills an uploaded template: multipart "template" file and a
// "form" field holding the SAFE form as JSON.
func (s *Server) handleFillSafe(w http.ResponseWriter, r *http.Request) {
	if !s.parseMultipart(w, r) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	template, ok := readTemplate(w, r)
	if !ok {
		return
	}
	var form safe.Form
	if err := json.Unmarshal([]byte(r.FormValue("form")), &form); err != nil {
		writeError(w, http.StatusBadRequest, "Form field must hold the SAFE form as JSON")
		return
	}

	data, err := s.Filler.Fill(template, form)
	var mismatch *safe.MismatchError
	switch {
	case errors.As(err, &mismatch):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":   mismatch.Error(),
			"mapping": mismatch.Mapping,
			"missing": mismatch.Missing,
		})
		return
	case errors.Is(err, safe.ErrInvalidForm):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.Logger.Error("Template fill failed.", "error", err)
		writeError(w, http.StatusInternalServerError, generationFailed)
		return
	}
	writePDF(w, safe.Filename(form, s.now()), data)
}

func (s *Server) handleInspectTemplate(w http.ResponseWriter, r *http.Request) {
	if !s.parseMultipart(w, r) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	template, ok := readTemplate(w, r)
	if !ok {
		return
	}
	inspection, err := s.Filler.Inspect(template)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Template is not a readable PDF")
		return
	}
	writeJSON(w, http.StatusOK, inspection)
}

func readTemplate(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	file, _, err := r.FormFile("template")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No template provided")
		return nil, false
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read template")
		return nil, false
	}
	return data, true
}

// archive keeps a copy of a generated agreement. Failures only log.
func (s *Server) archive(r *http.Request, filename string, data []byte) {
	if s.Archive == nil {
		return
	}
	uri, err := s.Archive.Put(r.Context(), path.Join("safe", filename), data, "application/pdf")
	if err != nil {
		s.Logger.Warn("Failed to archive generated SAFE.", "file", filename, "error", err)
		return
	}
	s.Logger.Info("Archived generated SAFE.", "uri", uri)
}
