// Package jobrunner drives the symbolic code generator as a persisted,
// observable job: it owns the queue, the artifact store, the cache, and
// the metrics/tracing/notification surface around pkg/codegen/symbolic,
// which itself has no notion of any of that.
package jobrunner

import (
	"time"

	"github.com/google/uuid"

	"github.com/glyphlang/glyph/pkg/ir"
)

// Status is the lifecycle state of a CompilationJob.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusGenerating Status = "generating"
	StatusDone       Status = "done"
	StatusFailed     Status = "failed"
)

// CompilationJob is one request to run the symbolic generator over a set
// of declarations sharing one target class.
type CompilationJob struct {
	ID          uuid.UUID
	Decls       []ir.SymDecl
	Config      ir.JobConfig
	SubmittedAt time.Time
}

// NewCompilationJob mints a fresh job with a random ID and the submission
// time stamped by the caller (time.Now() is the caller's job, not this
// package's, so jobs stay deterministic to construct in tests).
func NewCompilationJob(decls []ir.SymDecl, cfg ir.JobConfig, submittedAt time.Time) CompilationJob {
	return CompilationJob{
		ID:          uuid.New(),
		Decls:       decls,
		Config:      cfg,
		SubmittedAt: submittedAt,
	}
}

// JobRecord is the persisted form of a job: its identity, status, and
// (once generation finishes) the emitted artifact text.
type JobRecord struct {
	ID         uuid.UUID
	FileName   string
	ClassName  string
	Status     Status
	Artifact   string
	ErrMessage string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
