package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naufalhakim/catatin/internal/engine"
)

// Run starts the quick-add flow and blocks until the user quits.
func Run(ctx context.Context, eng *engine.Engine, ownerID string) error {
	program := tea.NewProgram(
		newModel(eng, ownerID),
		tea.WithContext(ctx),
	)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("quick-add ui failed: %w", err)
	}
	return nil
}
