package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/glyphlang/glyph/pkg/apikey"
	"github.com/glyphlang/glyph/pkg/config"
	"github.com/glyphlang/glyph/pkg/database"
	glyphErrors "github.com/glyphlang/glyph/pkg/errors"
	"github.com/glyphlang/glyph/pkg/jobfile"
	"github.com/glyphlang/glyph/pkg/jobrunner"
	"github.com/glyphlang/glyph/pkg/redis"
	"github.com/glyphlang/glyph/pkg/server"
)

// submitRequest is the JSON body POST /jobs accepts: a job file decoded
// the same way compile <job.yaml> decodes one from disk.
type submitRequest struct {
	FileName      string             `json:"fileName"`
	MainClassName string             `json:"mainClassName"`
	Functions     []jobfile.Function `json:"functions"`
}

func runServe(cmd *cobra.Command, args []string) error {
	port, _ := cmd.Flags().GetUint16("port")
	dbConn, _ := cmd.Flags().GetString("db")
	redisConn, _ := cmd.Flags().GetString("redis")
	workers, _ := cmd.Flags().GetInt("workers")
	tracingEnv, _ := cmd.Flags().GetString("tracing-env")
	otlpEndpoint, _ := cmd.Flags().GetString("otlp-endpoint")
	apiKeys, _ := cmd.Flags().GetStringSlice("api-key")

	var store jobrunner.Store
	if dbConn != "" {
		db, err := database.NewDatabaseFromString(dbConn)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		if err := db.Connect(context.Background()); err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		sqlStore := jobrunner.NewSQLStore(db)
		if err := sqlStore.EnsureSchema(context.Background()); err != nil {
			return fmt.Errorf("ensuring schema: %w", err)
		}
		store = sqlStore
	} else {
		glyphErrors.PrintPassBanner("no --db given, using an in-memory job store (job history is lost on restart)")
		store = jobrunner.NewMemoryStore()
	}

	var cache *jobrunner.ArtifactCache
	if redisConn != "" {
		client, err := redis.NewClientFromString(redisConn)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		if err := client.Connect(context.Background()); err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		cache = jobrunner.NewRedisArtifactCache(client, config.DefaultArtifactCacheTTL)
	} else {
		cache = jobrunner.NewLocalArtifactCache(config.DefaultArtifactCacheTTL)
	}

	metrics, err := jobrunner.NewMetrics()
	if err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}

	tracer, err := jobrunner.NewTracer(tracingEnv, otlpEndpoint)
	if err != nil {
		return fmt.Errorf("initialising tracing: %w", err)
	}

	serverOpts := []server.ServerOption{server.WithAddr(fmt.Sprintf(":%d", port))}
	if len(apiKeys) > 0 {
		validator := apikey.NewValidator(apikey.Config{StaticKeys: apiKeys})
		serverOpts = append(serverOpts, server.WithMiddleware(apiKeyMiddleware(validator)))
	}
	srv := server.NewServer(serverOpts...)
	notifier := jobrunner.NewNotifier(srv.GetWebSocketServer().GetHub())

	runner := jobrunner.NewRunner(store,
		jobrunner.WithCache(cache),
		jobrunner.WithMetrics(metrics),
		jobrunner.WithTracer(tracer),
		jobrunner.WithNotifier(notifier),
		jobrunner.WithWorkerCount(workers),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runner.Start(ctx)
	defer runner.Stop()

	if err := registerRoutes(srv, runner, metrics); err != nil {
		return err
	}

	go func() {
		glyphErrors.PrintPassBanner(fmt.Sprintf("glyphgen serve listening on :%d", port))
		if err := srv.Start(""); err != nil && err != http.ErrServerClosed {
			glyphErrors.PrintFailBanner("server", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return srv.Stop(shutdownCtx)
}

func registerRoutes(srv *server.Server, runner *jobrunner.Runner, metrics *jobrunner.Metrics) error {
	routes := []*server.Route{
		{
			Method: server.POST,
			Path:   "/jobs",
			Handler: func(ctx *server.Context) error {
				var req submitRequest
				if err := decodeBody(ctx, &req); err != nil {
					return server.SendError(ctx, http.StatusBadRequest, err.Error())
				}
				jf := &jobfile.File{FileName: req.FileName, MainClassName: req.MainClassName, Functions: req.Functions}
				cfg, decls, err := jf.ToIR()
				if err != nil {
					return server.SendError(ctx, http.StatusBadRequest, err.Error())
				}

				job := jobrunner.NewCompilationJob(decls, cfg, time.Now())
				if err := runner.Submit(ctx.Request.Context(), job); err != nil {
					return server.SendError(ctx, http.StatusServiceUnavailable, err.Error())
				}
				return server.SendJSON(ctx, http.StatusAccepted, map[string]string{"job_id": job.ID.String()})
			},
		},
		{
			Method: server.GET,
			Path:   "/jobs/:id",
			Handler: func(ctx *server.Context) error {
				id, err := uuid.Parse(ctx.PathParams["id"])
				if err != nil {
					return server.SendError(ctx, http.StatusBadRequest, "invalid job id")
				}
				rec, err := runner.Store().Load(ctx.Request.Context(), id)
				if err != nil {
					return server.SendError(ctx, http.StatusNotFound, "job not found")
				}
				return server.SendJSON(ctx, http.StatusOK, rec)
			},
		},
		{
			Method: server.GET,
			Path:   "/jobs/:id/events",
			Handler: func(ctx *server.Context) error {
				id, err := uuid.Parse(ctx.PathParams["id"])
				if err != nil {
					return server.SendError(ctx, http.StatusBadRequest, "invalid job id")
				}
				return streamJobEvents(ctx, runner, id)
			},
		},
		{
			Method: server.GET,
			Path:   "/metrics",
			Handler: func(ctx *server.Context) error {
				metrics.Registry().Handler().ServeHTTP(ctx.ResponseWriter, ctx.Request)
				return nil
			},
		},
	}
	return srv.RegisterRoutes(routes)
}

// decodeBody re-marshals the router's generic body map back to JSON and
// unmarshals it into the typed request, the same round trip jobfile.Load
// performs for YAML from disk.
func decodeBody(ctx *server.Context, out *submitRequest) error {
	raw, err := json.Marshal(ctx.Body)
	if err != nil {
		return fmt.Errorf("re-encoding request body: %w", err)
	}
	return json.Unmarshal(raw, out)
}
