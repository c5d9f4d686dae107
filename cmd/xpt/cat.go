package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/xpttools/xpt/pkg/export"
	"github.com/xpttools/xpt/pkg/types"
)

var (
	catFormat string
	catColor  string
)

// styles holds color formatters for the human listing
type styles struct {
	heading  *color.Color
	name     *color.Color
	metadata *color.Color
	warning  *color.Color
}

// newStyles creates color formatters for cat output
// enabled=false respects --color=never and NO_COLOR env var
func newStyles(enabled bool) *styles {
	s := &styles{
		heading:  color.New(color.Bold, color.FgHiWhite),
		name:     color.New(color.Bold, color.FgHiBlue),
		metadata: color.New(color.FgHiBlack),
		warning:  color.New(color.FgYellow),
	}

	if !enabled {
		s.heading.DisableColor()
		s.name.DisableColor()
		s.metadata.DisableColor()
		s.warning.DisableColor()
	}

	return s
}

var catCmd = &cobra.Command{
	Use:   "cat <input>",
	Short: "List the datasets and variables of a transport file",
	Long: `Print the column metadata of every dataset in a transport file:
variable number, name, type, length, position, format, informat and label,
followed by the row count and any tolerated deviations.`,
	Args: cobra.ExactArgs(1),
	RunE: runCat,
}

func init() {
	catCmd.Flags().StringVar(&catFormat, "format", "human", "Output format: human, json, yaml")
	catCmd.Flags().StringVar(&catColor, "color", "auto", "Color output: auto, always, never")
}

func runCat(cmd *cobra.Command, args []string) error {
	t, err := loadTransport(commandContext(cmd), args[0], 0)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch catFormat {
	case "json":
		return export.WriteJSON(out, metadataOnly(t.Datasets))
	case "yaml":
		return export.WriteYAML(out, t.Datasets)
	case "human":
		return printTransport(out, t, newStyles(colorEnabled(catColor)))
	default:
		return fmt.Errorf("unknown output format: %s", catFormat)
	}
}

// colorEnabled resolves a --color flag value.
func colorEnabled(mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		return term.IsTerminal(int(os.Stdout.Fd())) && os.Getenv("NO_COLOR") == ""
	}
}

// metadataOnly returns shallow copies of datasets without rows.
func metadataOnly(datasets []*types.Dataset) []*types.Dataset {
	out := make([]*types.Dataset, len(datasets))
	for i, ds := range datasets {
		c := *ds
		c.Rows = nil
		out[i] = &c
	}
	return out
}

func printTransport(w io.Writer, t *types.Transport, s *styles) error {
	if t.Library.Wrapped {
		fmt.Fprintf(w, "%s SAS %s %s",
			s.heading.Sprint("Library:"), t.Library.SASVersion, t.Library.OS)
		if !t.Library.Created.IsZero() {
			fmt.Fprintf(w, " %s", s.metadata.Sprintf("(created %s)", t.Library.Created.Format(time.DateTime)))
		}
		fmt.Fprintln(w)
	}

	for i, ds := range t.Datasets {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s %s", s.heading.Sprintf("Dataset %d:", i+1), s.name.Sprint(ds.Name))
		if ds.Label != "" {
			fmt.Fprintf(w, " %s", ds.Label)
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, s.metadata.Sprintf("%d variables, %d rows", len(ds.Variables), len(ds.Rows)))

		if err := export.PrintVariables(w, ds); err != nil {
			return err
		}
		if len(ds.Diagnostics) > 0 {
			fmt.Fprintln(w, s.warning.Sprint("Diagnostics:"))
			if err := export.PrintDiagnostics(w, ds); err != nil {
				return err
			}
		}
	}

	if len(t.Datasets) == 0 {
		fmt.Fprintln(w, "\nNo datasets.")
	}
	return nil
}
