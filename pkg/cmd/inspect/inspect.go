package inspect

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/racetelemetry/laprecorder/pkg/config"
	lapinspect "github.com/racetelemetry/laprecorder/pkg/inspect"
	"github.com/racetelemetry/laprecorder/pkg/model"
)

func NewInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "validates an exported lap and evaluates JSONPath queries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(afero.NewOsFs(), os.Stdout, args[0], config.Query)
		},
	}
	cmd.Flags().StringVarP(&config.Query,
		"query",
		"q",
		"",
		"JSONPath expression, e.g. $.lap_stats.speed_top")
	return cmd
}

func runInspect(fs afero.Fs, w io.Writer, file, query string) error {
	data, err := afero.ReadFile(fs, file)
	if err != nil {
		return err
	}
	summary, err := lapinspect.Validate(data)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}
	if query == "" {
		fmt.Fprintf(w, "%s: valid (stats: %t)\n", file, summary.Stats)
		fmt.Fprintf(w, "  %-16s %d\n", "time_normalized", summary.Points["time_normalized"])
		for _, ch := range model.Channels() {
			fmt.Fprintf(w, "  %-16s %d\n", ch.String(), summary.Points[ch.String()])
		}
		return nil
	}
	res, err := lapinspect.Query(data, query)
	if err != nil {
		return err
	}
	for _, v := range res {
		fmt.Fprintln(w, lapinspect.Format(v))
	}
	return nil
}
