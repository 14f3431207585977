package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	glyphErrors "github.com/glyphlang/glyph/pkg/errors"
	"github.com/glyphlang/glyph/pkg/jobfile"
	"github.com/glyphlang/glyph/pkg/jobrunner"
)

func runCompile(cmd *cobra.Command, args []string) error {
	path := args[0]
	output, _ := cmd.Flags().GetString("output")
	watch, _ := cmd.Flags().GetBool("watch")

	if err := compileOnce(path, output); err != nil {
		if !watch {
			return err
		}
	}
	if !watch {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer fsw.Close()
	if err := fsw.Add(path); err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}

	fmt.Printf("watching %s for changes (ctrl-c to stop)\n", path)
	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			_ = compileOnce(path, output)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(os.Stderr, "watch error:", err)
		}
	}
}

// compileOnce loads one job file, submits it to a one-shot in-process
// Runner, and either writes or prints the resulting artifact.
func compileOnce(path, output string) error {
	jf, err := jobfile.Load(path)
	if err != nil {
		glyphErrors.PrintFailBanner(path, err)
		return err
	}
	cfg, decls, err := jf.ToIR()
	if err != nil {
		glyphErrors.PrintFailBanner(path, err)
		return err
	}

	runner := jobrunner.NewRunner(jobrunner.NewMemoryStore(), jobrunner.WithWorkerCount(1))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runner.Start(ctx)
	defer runner.Stop()

	job := jobrunner.NewCompilationJob(decls, cfg, time.Now())
	if err := runner.Submit(ctx, job); err != nil {
		glyphErrors.PrintFailBanner(path, err)
		return err
	}

	rec, err := awaitCompletion(runner, job.ID)
	if err != nil {
		glyphErrors.PrintFailBanner(path, err)
		return err
	}
	if rec.Status == jobrunner.StatusFailed {
		err := fmt.Errorf("%s", rec.ErrMessage)
		glyphErrors.PrintFailBanner(path, &glyphErrors.CompileError{
			Message:  rec.ErrMessage,
			FileName: cfg.FileName,
			Context:  fmt.Sprintf("class %s", cfg.MainClassName),
		})
		return err
	}

	if output != "" {
		if err := os.WriteFile(output, []byte(rec.Artifact), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", output, err)
		}
		glyphErrors.PrintPassBanner(fmt.Sprintf("%s -> %s", path, output))
		return nil
	}

	glyphErrors.PrintPassBanner(path)
	fmt.Println(rec.Artifact)
	return nil
}

// awaitCompletion polls the runner's store until the job reaches a
// terminal status. A one-shot CLI invocation has no notifier subscriber
// to push to, so polling the Store directly is the simplest correct wait.
func awaitCompletion(runner *jobrunner.Runner, id uuid.UUID) (*jobrunner.JobRecord, error) {
	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		rec, err := runner.Store().Load(context.Background(), id)
		if err == nil && (rec.Status == jobrunner.StatusDone || rec.Status == jobrunner.StatusFailed) {
			return rec, nil
		}
		time.Sleep(10 * time.Millisecond)
	}
	return nil, fmt.Errorf("job %s did not complete within the timeout", id)
}
