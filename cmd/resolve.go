package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/vdx/internal/shared"
	"github.com/desertthunder/vdx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// ResolveStream resolves a single video ID or watch URL to a playable stream.
func (r *Runner) ResolveStream(ctx context.Context, cmd *cli.Command) error {
	video := cmd.StringArg("video")
	if video == "" {
		return fmt.Errorf("%w: video ID or URL", shared.ErrMissingArgument)
	}

	stream, err := r.ensureResolver(ctx).Resolve(ctx, video)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(stream, true)
	}

	r.writePlain("✓ Resolved %s\n", stream.VideoID)
	r.writePlain("Format: %s", stream.MIMEType)
	if stream.Height > 0 {
		r.writePlain(" (%dp)", stream.Height)
	}
	if stream.IsHLS {
		r.writePlain(" [HLS]")
	}
	r.writePlain("\nURL: %s\n", stream.URL)
	return nil
}

// ResolveBulk resolves many videos concurrently and writes a manifest file.
func (r *Runner) ResolveBulk(ctx context.Context, cmd *cli.Command) error {
	ids := cmd.StringArgs("videos")
	if len(ids) == 1 && strings.Contains(ids[0], ",") {
		ids = strings.Split(ids[0], ",")
	}
	if len(ids) == 0 {
		return fmt.Errorf("%w: at least one video ID", shared.ErrMissingArgument)
	}

	engine, err := r.ensureEngine(ctx)
	if err != nil {
		return err
	}

	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Info(update.Message, "phase", update.Phase.String(), "step", update.Step, "total", update.Total)
		}
	}()

	result, err := engine.BulkResolve(ctx, progress, ids, tasks.BulkResolveOpts{
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
		Format:     cmd.String("format"),
		OutputFile: cmd.String("output"),
	})
	close(progress)
	<-done
	if err != nil {
		return err
	}

	r.writePlainHeader("Bulk Resolve")
	r.writePlain("Resolved: %d/%d\n", result.SuccessCount, result.Total)
	for _, res := range result.Results {
		if res.Success {
			r.writePlain("✓ %s  %s\n", res.VideoID, res.Stream.URL)
		} else {
			r.writePlain("✗ %s  %v\n", res.VideoID, res.Error)
		}
	}
	if result.OutputFile != "" {
		r.writePlain("\nManifest written to %s\n", result.OutputFile)
	}
	return nil
}
