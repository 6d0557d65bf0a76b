package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Lllllllleong/legalassistant/internal/models"
)

const schema = `CREATE TABLE IF NOT EXISTS documents (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    type TEXT NOT NULL,
    upload_date TEXT NOT NULL,
    status TEXT NOT NULL,
    summary TEXT,
    filled_data TEXT,
    url TEXT,
    error_details TEXT
);

CREATE TABLE IF NOT EXISTS qa_sessions (
    id TEXT PRIMARY KEY,
    question TEXT NOT NULL,
    answer TEXT NOT NULL,
    timestamp TEXT NOT NULL,
    category TEXT NOT NULL,
    files TEXT
);

CREATE TABLE IF NOT EXISTS templates (
    file_hash TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    bucket TEXT,
    page_count INTEGER NOT NULL,
    field_names TEXT NOT NULL,
    mapping_ok INTEGER NOT NULL,
    missing TEXT,
    inspected_at TEXT NOT NULL
);
`

// SQLite records into a local database file.
type SQLite struct {
	conn *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies the schema.
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection serialises writers without SQLITE_BUSY retries.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &SQLite{conn: conn}, nil
}

func (s *SQLite) RecordDocument(ctx context.Context, doc models.Document) error {
	filled, err := marshalOptional(doc.FilledData, len(doc.FilledData) == 0)
	if err != nil {
		return err
	}
	_, err = s.conn.ExecContext(ctx, `INSERT INTO documents
        (id, name, type, upload_date, status, summary, filled_data, url, error_details)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            name = excluded.name, type = excluded.type, upload_date = excluded.upload_date,
            status = excluded.status, summary = excluded.summary, filled_data = excluded.filled_data,
            url = excluded.url, error_details = excluded.error_details`,
		doc.ID, doc.Name, doc.Type, formatTime(doc.UploadDate), string(doc.Status),
		doc.Summary, filled, doc.URL, doc.ErrorDetails)
	if err != nil {
		return fmt.Errorf("failed to record document %s: %w", doc.ID, err)
	}
	return nil
}

func (s *SQLite) RecordSession(ctx context.Context, session models.QASession) error {
	files, err := marshalOptional(session.Files, len(session.Files) == 0)
	if err != nil {
		return err
	}
	_, err = s.conn.ExecContext(ctx, `INSERT INTO qa_sessions
        (id, question, answer, timestamp, category, files)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            question = excluded.question, answer = excluded.answer, timestamp = excluded.timestamp,
            category = excluded.category, files = excluded.files`,
		session.ID, session.Question, session.Answer, formatTime(session.Timestamp), session.Category, files)
	if err != nil {
		return fmt.Errorf("failed to record session %s: %w", session.ID, err)
	}
	return nil
}

func (s *SQLite) DeleteSession(ctx context.Context, id string) error {
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM qa_sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	return nil
}

func (s *SQLite) Load(ctx context.Context) ([]models.Document, []models.QASession, error) {
	docs, err := s.loadDocuments(ctx)
	if err != nil {
		return nil, nil, err
	}
	sessions, err := s.loadSessions(ctx)
	if err != nil {
		return nil, nil, err
	}
	return docs, sessions, nil
}

// PatchDocument applies patch to a recorded document.
func (s *SQLite) PatchDocument(ctx context.Context, id string, patch models.DocumentPatch) (models.Document, error) {
	docs, err := s.queryDocuments(ctx, `WHERE id = ?`, id)
	if err != nil {
		return models.Document{}, err
	}
	if len(docs) == 0 {
		return models.Document{}, fmt.Errorf("failed to patch document %s: %w", id, ErrNotFound)
	}
	doc := patch.Apply(docs[0])
	if err := s.RecordDocument(ctx, doc); err != nil {
		return models.Document{}, err
	}
	return doc, nil
}

func (s *SQLite) loadDocuments(ctx context.Context) ([]models.Document, error) {
	return s.queryDocuments(ctx, `ORDER BY rowid`)
}

func (s *SQLite) queryDocuments(ctx context.Context, clause string, args ...any) ([]models.Document, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT id, name, type, upload_date, status,
        COALESCE(summary, ''), filled_data, COALESCE(url, ''), COALESCE(error_details, '')
        FROM documents `+clause, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	docs := []models.Document{}
	for rows.Next() {
		var (
			doc      models.Document
			uploaded string
			status   string
			filled   sql.NullString
		)
		if err := rows.Scan(&doc.ID, &doc.Name, &doc.Type, &uploaded, &status,
			&doc.Summary, &filled, &doc.URL, &doc.ErrorDetails); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		doc.Status = models.DocumentStatus(status)
		if doc.UploadDate, err = parseTime(uploaded); err != nil {
			return nil, err
		}
		if filled.Valid {
			if err := json.Unmarshal([]byte(filled.String), &doc.FilledData); err != nil {
				return nil, fmt.Errorf("failed to decode filled data for %s: %w", doc.ID, err)
			}
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *SQLite) loadSessions(ctx context.Context) ([]models.QASession, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT id, question, answer, timestamp, category, files
        FROM qa_sessions ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []models.QASession{}
	for rows.Next() {
		var (
			session models.QASession
			ts      string
			files   sql.NullString
		)
		if err := rows.Scan(&session.ID, &session.Question, &session.Answer, &ts, &session.Category, &files); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		if session.Timestamp, err = parseTime(ts); err != nil {
			return nil, err
		}
		if files.Valid {
			if err := json.Unmarshal([]byte(files.String), &session.Files); err != nil {
				return nil, fmt.Errorf("failed to decode files for %s: %w", session.ID, err)
			}
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func (s *SQLite) RecordTemplate(ctx context.Context, rec models.TemplateRecord) error {
	fields, err := json.Marshal(rec.FieldNames)
	if err != nil {
		return fmt.Errorf("failed to encode field names: %w", err)
	}
	missing, err := marshalOptional(rec.Missing, len(rec.Missing) == 0)
	if err != nil {
		return err
	}
	_, err = s.conn.ExecContext(ctx, `INSERT OR REPLACE INTO templates
        (file_hash, name, bucket, page_count, field_names, mapping_ok, missing, inspected_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.FileHash, rec.Name, rec.Bucket, rec.PageCount, string(fields), rec.MappingOK, missing, formatTime(rec.InspectedAt))
	if err != nil {
		return fmt.Errorf("failed to record template %s: %w", rec.Name, err)
	}
	return nil
}

func (s *SQLite) FindTemplate(ctx context.Context, fileHash string) (models.TemplateRecord, error) {
	var (
		rec       models.TemplateRecord
		fields    string
		missing   sql.NullString
		inspected string
	)
	err := s.conn.QueryRowContext(ctx, `SELECT file_hash, name, COALESCE(bucket, ''), page_count,
        field_names, mapping_ok, missing, inspected_at FROM templates WHERE file_hash = ?`, fileHash).
		Scan(&rec.FileHash, &rec.Name, &rec.Bucket, &rec.PageCount, &fields, &rec.MappingOK, &missing, &inspected)
	if errors.Is(err, sql.ErrNoRows) {
		return models.TemplateRecord{}, ErrNotFound
	}
	if err != nil {
		return models.TemplateRecord{}, fmt.Errorf("failed to query template: %w", err)
	}

	if err := json.Unmarshal([]byte(fields), &rec.FieldNames); err != nil {
		return models.TemplateRecord{}, fmt.Errorf("failed to decode field names: %w", err)
	}
	if missing.Valid {
		if err := json.Unmarshal([]byte(missing.String), &rec.Missing); err != nil {
			return models.TemplateRecord{}, fmt.Errorf("failed to decode missing fields: %w", err)
		}
	}
	if rec.InspectedAt, err = parseTime(inspected); err != nil {
		return models.TemplateRecord{}, err
	}
	return rec, nil
}

func (s *SQLite) Close() error {
	return s.conn.Close()
}

func marshalOptional(v any, empty bool) (sql.NullString, error) {
	if empty {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode column: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}
