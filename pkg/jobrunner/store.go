package jobrunner

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/glyphlang/glyph/pkg/database"
)

// Store persists CompilationJob submissions and their generated artifacts.
// This is the "file writing" / "job orchestration" collaborator spec.md
// names as external to the symbolic core - SQLStore gives it a concrete
// shape backed by whichever SQL driver database.Config names.
type Store interface {
	Save(ctx context.Context, job CompilationJob, record JobRecord) error
	Load(ctx context.Context, id uuid.UUID) (*JobRecord, error)
}

// SQLStore is a Store backed by database.Database (MySQL, Postgres, or
// SQLite, chosen by the Config.Driver the caller wires in).
type SQLStore struct {
	db database.Database
}

// NewSQLStore wraps an already-connected database.Database. Call
// EnsureSchema once before first use.
func NewSQLStore(db database.Database) *SQLStore {
	return &SQLStore{db: db}
}

// EnsureSchema creates the compilation_jobs table if it does not already
// exist. Safe to call on every startup.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
CREATE TABLE IF NOT EXISTS compilation_jobs (
	id          VARCHAR(36) PRIMARY KEY,
	file_name   TEXT NOT NULL,
	class_name  TEXT NOT NULL,
	status      VARCHAR(16) NOT NULL,
	artifact    TEXT,
	err_message TEXT,
	created_at  TIMESTAMP NOT NULL,
	updated_at  TIMESTAMP NOT NULL
)`)
	if err != nil {
		return fmt.Errorf("ensuring compilation_jobs schema: %w", err)
	}
	return nil
}

// placeholder returns the n-th bind placeholder for the underlying
// driver: Postgres uses $1, $2, ...; MySQL and SQLite use ?.
func (s *SQLStore) placeholder(n int) string {
	if s.db.Driver() == "postgres" {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// Save upserts a job's current record. It is called once on submission
// (status queued, no artifact) and again when generation finishes or fails.
func (s *SQLStore) Save(ctx context.Context, job CompilationJob, record JobRecord) error {
	existing, err := s.Load(ctx, job.ID)
	if err != nil && err != errJobNotFound {
		return err
	}

	if existing == nil {
		query := fmt.Sprintf(
			`INSERT INTO compilation_jobs (id, file_name, class_name, status, artifact, err_message, created_at, updated_at) VALUES (%s, %s, %s, %s, %s, %s, %s, %s)`,
			s.placeholder(1), s.placeholder(2), s.placeholder(3), s.placeholder(4),
			s.placeholder(5), s.placeholder(6), s.placeholder(7), s.placeholder(8),
		)
		_, err := s.db.Exec(ctx, query,
			job.ID.String(), record.FileName, record.ClassName, string(record.Status),
			record.Artifact, record.ErrMessage, record.CreatedAt, record.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("inserting job %s: %w", job.ID, err)
		}
		return nil
	}

	query := fmt.Sprintf(
		`UPDATE compilation_jobs SET status = %s, artifact = %s, err_message = %s, updated_at = %s WHERE id = %s`,
		s.placeholder(1), s.placeholder(2), s.placeholder(3), s.placeholder(4), s.placeholder(5),
	)
	_, err = s.db.Exec(ctx, query,
		string(record.Status), record.Artifact, record.ErrMessage, record.UpdatedAt, job.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("updating job %s: %w", job.ID, err)
	}
	return nil
}

var errJobNotFound = fmt.Errorf("job not found")

// Load fetches a job record by ID.
func (s *SQLStore) Load(ctx context.Context, id uuid.UUID) (*JobRecord, error) {
	query := fmt.Sprintf(
		`SELECT id, file_name, class_name, status, artifact, err_message, created_at, updated_at FROM compilation_jobs WHERE id = %s`,
		s.placeholder(1),
	)
	row := s.db.QueryRow(ctx, query, id.String())

	var (
		idText               string
		record               JobRecord
		artifact, errMessage sql.NullString
	)
	record.ID = id
	if err := row.Scan(&idText, &record.FileName, &record.ClassName, &record.Status, &artifact, &errMessage, &record.CreatedAt, &record.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, errJobNotFound
		}
		return nil, fmt.Errorf("loading job %s: %w", id, err)
	}
	record.Artifact = artifact.String
	record.ErrMessage = errMessage.String
	return &record, nil
}

// RecordFor builds the JobRecord persisted alongside a job at a given
// status, stamping timestamps relative to now.
func RecordFor(job CompilationJob, status Status, artifact string, genErr error, now time.Time) JobRecord {
	rec := JobRecord{
		ID:        job.ID,
		FileName:  job.Config.FileName,
		ClassName: job.Config.MainClassName,
		Status:    status,
		Artifact:  artifact,
		CreatedAt: job.SubmittedAt,
		UpdatedAt: now,
	}
	if genErr != nil {
		rec.ErrMessage = genErr.Error()
	}
	return rec
}
