package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/vdx/internal/feed"
	"github.com/desertthunder/vdx/internal/shared"
	"github.com/desertthunder/vdx/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive feed browser.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/vdx-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	term := cmd.String("query")
	if term == "" {
		term = r.config.Feed.DefaultQuery
	}

	engine, err := r.ensureEngine(ctx)
	if err != nil {
		return err
	}

	videos := feed.NewPager(r.ensureVideos(ctx), term, r.config.Feed.VideoPageSize, fileLogger)
	defer videos.Close()

	// Repository listings arrive in one shot and are sliced locally; paper
	// search pages over the network. Pick whichever the config names.
	var docs ui.Browser
	if r.config.Credentials.GitHub.Owner != "" && r.config.Credentials.GitHub.Repo != "" {
		docs = feed.NewLocalPager(r.ensureFiles(ctx), term, r.config.Feed.DocPageSize, fileLogger)
	} else {
		docs = feed.NewPager(r.ensureDocs(ctx), term, r.config.Feed.DocPageSize, fileLogger)
	}

	model := ui.New(ctx, videos, docs, engine, r.ensureResolver(ctx), fileLogger)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
