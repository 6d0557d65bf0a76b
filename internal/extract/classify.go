// Package extract turns uploaded files into text for the chat and document
// services.
package extract

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"
)

// Kind is the extraction strategy chosen for a file.
type Kind string

const (
	KindText        Kind = "text"
	KindPDF         Kind = "pdf"
	KindUnsupported Kind = "unsupported"
)

// Classify picks a Kind from the declared content type, falling back to the
// file extension.
func Classify(name, contentType string) Kind {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		switch mediaType {
		case "text/plain":
			return KindText
		case "application/pdf":
			return KindPDF
		}
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt":
		return KindText
	case ".pdf":
		return KindPDF
	}
	return KindUnsupported
}

// File is one uploaded file. Open is called at most once, from the goroutine
// extracting the file.
type File struct {
	Name        string
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// FromHeader wraps a multipart file header.
func FromHeader(fh *multipart.FileHeader) File {
	return File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// FromBytes wraps an in-memory file.
func FromBytes(name, contentType string, data []byte) File {
	return File{
		Name:        name,
		ContentType: contentType,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// Bytes opens the file and reads it to the end.
func (f File) Bytes() ([]byte, error) {
	if f.Open == nil {
		return nil, fmt.Errorf("file %s has no content", f.Name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.Name, err)
	}
	return data, nil
}
