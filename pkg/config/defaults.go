// Package config provides shared configuration constants for GlyphLang.
package config

import "time"

// DefaultPort is the default port for the GlyphLang HTTP server.
// Used by both the CLI and server package to ensure consistency.
const DefaultPort = 3000

// DefaultWorkerPoolSize is the default number of concurrent
// jobrunner.Runner workers.
const DefaultWorkerPoolSize = 4

// DefaultArtifactCacheTTL is how long a job's generated artifact stays
// cached before a resubmission regenerates it.
const DefaultArtifactCacheTTL = 1 * time.Hour

// DefaultTracingEnvironment selects the stdout tracing exporter unless a
// deployment overrides it.
const DefaultTracingEnvironment = "dev"
