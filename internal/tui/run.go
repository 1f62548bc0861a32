package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/budgets/internal/grid"
)

// ErrNoController is returned when Run is called without a controller.
var ErrNoController = errors.New("grid controller is required")

// Run shows the budget grid until the user quits or ctx is canceled.
func Run(ctx context.Context, controller *grid.Controller, opts ...Option) error {
	if controller == nil {
		return ErrNoController
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Restore the terminal even if the program exits abnormally.
	defer func() {
		_, _ = os.Stdout.Write([]byte("\033[?25h")) // Show cursor
		_, _ = os.Stdout.Write([]byte("\033[m"))    // Reset colors
	}()

	opts = append(opts, WithContext(ctx))
	m := New(controller, opts...)

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if m.config.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}

	if _, err := tea.NewProgram(m, programOpts...).Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("grid exited: %w", err)
	}
	return nil
}
