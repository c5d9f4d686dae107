package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/xpttools/xpt/pkg/explore"
	"github.com/xpttools/xpt/pkg/source"
	"github.com/xpttools/xpt/pkg/store"
)

var exploreCmd = &cobra.Command{
	Use:   "explore <input>",
	Short: "Interactively browse datasets",
	Long: `Launch an interactive TUI to browse datasets, variables and rows.

<input> is either a transport file location (decoded into memory) or a
database written by "xpt scan" (a .db file or a directory holding xpt.db).

Features:
  - Three-pane layout: filters, datasets table, dataset details
  - Faceted search by source file, dataset type and diagnostic kind
  - Variable metadata with formats and labels
  - Row preview overlay
  - Vi-style navigation (hjkl, Ctrl-f/b, g/G)
  - Sortable datasets table`,
	Args: cobra.ExactArgs(1),
	RunE: runExplore,
}

// isStorePath reports whether input names a database rather than a transport file.
func isStorePath(input string) bool {
	if source.IsRemote(input) {
		return false
	}
	info, err := os.Stat(input)
	if err != nil {
		return false
	}
	if info.IsDir() {
		return true
	}
	ext := strings.ToLower(filepath.Ext(input))
	return ext == ".db" || ext == ".sqlite"
}

func newExploreModel(cmd *cobra.Command, input string) (explore.Model, error) {
	if isStorePath(input) {
		return explore.New(input)
	}

	t, err := loadTransport(commandContext(cmd), input, 0)
	if err != nil {
		return explore.Model{}, err
	}
	s, err := store.New(store.Config{Path: ":memory:"})
	if err != nil {
		return explore.Model{}, err
	}
	for _, ds := range t.Datasets {
		if _, err := s.AddDataset(input, ds); err != nil {
			s.Close()
			return explore.Model{}, err
		}
	}
	return explore.NewFromStore(s)
}

func runExplore(cmd *cobra.Command, args []string) error {
	model, err := newExploreModel(cmd, args[0])
	if err != nil {
		return fmt.Errorf("loading %s: %w", args[0], err)
	}
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running explore TUI: %w", err)
	}

	return nil
}
