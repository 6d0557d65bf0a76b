package models

import "time"

// DocumentStatus is the processing state of an uploaded document.
type DocumentStatus string

const (
	StatusProcessing DocumentStatus = "processing"
	StatusCompleted  DocumentStatus = "completed"
	StatusError      DocumentStatus = "error"
)

// Document represents an uploaded file and the results of processing it.
// The firestore tags are used when documents are mirrored to Firestore.
type Document struct {
	ID           string            `json:"id" firestore:"id"`
	Name         string            `json:"name" firestore:"name"`
	Type         string            `json:"type" firestore:"type"`
	UploadDate   time.Time         `json:"uploadDate" firestore:"uploadDate"`
	Status       DocumentStatus    `json:"status" firestore:"status"`
	Summary      string            `json:"summary,omitempty" firestore:"summary,omitempty"`
	FilledData   map[string]string `json:"filledData,omitempty" firestore:"filledData,omitempty"`
	URL          string            `json:"url,omitempty" firestore:"url,omitempty"`
	ErrorDetails string            `json:"errorDetails,omitempty" firestore:"errorDetails,omitempty"`
	Text         string            `json:"-" firestore:"-"`
}

// DocumentPatch carries a partial update for a Document. Nil fields are left untouched.
type DocumentPatch struct {
	Status       *DocumentStatus
	Summary      *string
	FilledData   map[string]string
	URL          *string
	ErrorDetails *string
	Text         *string
}

// Apply returns a copy of d with the patch applied.
func (p DocumentPatch) Apply(d Document) Document {
	if p.Status != nil {
		d.Status = *p.Status
	}
	if p.Summary != nil {
		d.Summary = *p.Summary
	}
	if p.FilledData != nil {
		filled := make(map[string]string, len(p.FilledData))
		for k, v := range p.FilledData {
			filled[k] = v
		}
		d.FilledData = filled
	}
	if p.URL != nil {
		d.URL = *p.URL
	}
	if p.ErrorDetails != nil {
		d.ErrorDetails = *p.ErrorDetails
	}
	if p.Text != nil {
		d.Text = *p.Text
	}
	return d
}

// QASession is one answered question.
type QASession struct {
	ID        string    `json:"id" firestore:"id"`
	Question  string    `json:"question" firestore:"question"`
	Answer    string    `json:"answer" firestore:"answer"`
	Timestamp time.Time `json:"timestamp" firestore:"timestamp"`
	Category  string    `json:"category" firestore:"category"`
	Files     []string  `json:"files,omitempty" firestore:"files,omitempty"`
}

// TemplateRecord describes an inspected SAFE template revision.
type TemplateRecord struct {
	Name        string    `json:"name" firestore:"name"`
	Bucket      string    `json:"bucket,omitempty" firestore:"bucket,omitempty"`
	FileHash    string    `json:"fileHash" firestore:"fileHash"`
	PageCount   int       `json:"pageCount" firestore:"pageCount"`
	FieldNames  []string  `json:"fieldNames" firestore:"fieldNames"`
	MappingOK   bool      `json:"mappingOk" firestore:"mappingOk"`
	Missing     []string  `json:"missing,omitempty" firestore:"missing,omitempty"`
	InspectedAt time.Time `json:"inspectedAt" firestore:"inspectedAt"`
}
