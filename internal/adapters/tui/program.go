package tui

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/bnema/rclctl/internal/ports"
)

// Run drives the dashboard until the user quits or ctx is cancelled. Pushed
// events from source are forwarded into the program; the source is stopped
// before Run returns.
func Run(parent context.Context, cfg Config, source ports.EventSource, opts ...tea.ProgramOption) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	cfg.Context = ctx
	shell := NewShell(cfg)
	program := tea.NewProgram(shell, append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, opts...)...)

	var wg sync.WaitGroup
	if source != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := source.Run(ctx, func(event ports.Event) {
				program.Send(EventMsg{Event: event})
			})
			if err != nil {
				shell.logger.Error("event channel stopped", zap.Error(err))
			}
		}()
	}

	_, err := program.Run()
	cancel()
	wg.Wait()

	if errors.Is(err, tea.ErrProgramKilled) && parent.Err() != nil {
		return nil
	}
	return err
}
