package view

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/racetelemetry/laprecorder/log"
	"github.com/racetelemetry/laprecorder/pkg/chart"
	"github.com/racetelemetry/laprecorder/pkg/cmd/util"
	"github.com/racetelemetry/laprecorder/pkg/config"
	"github.com/racetelemetry/laprecorder/pkg/export"
)

var compare bool

func NewViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view FILE...",
		Short: "renders exported laps as html charts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			util.SetupLogger()
			written, err := renderFiles(afero.NewOsFs(), config.OutDir, compare, args)
			for _, f := range written {
				log.Info("chart written", log.String("file", f))
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&config.OutDir,
		"out",
		"o",
		".",
		"output directory for the html files")
	cmd.Flags().BoolVar(&compare,
		"compare",
		false,
		"draw all laps into one page")
	return cmd
}

// renderFiles writes one page per file or a single comparison page.
// It returns the names of the written files.
//
//nolint:whitespace // can't make both editor and linter happy
func renderFiles(
	fs afero.Fs, outDir string, compare bool, files []string,
) ([]string, error) {
	inputs := make([]chart.Input, 0, len(files))
	for _, f := range files {
		data, err := afero.ReadFile(fs, f)
		if err != nil {
			return nil, err
		}
		lap, err := export.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f, err)
		}
		inputs = append(inputs, chart.Input{Name: baseName(f), Lap: lap})
	}
	if err := fs.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}

	if compare {
		target := filepath.Join(outDir, "compare.html")
		if err := writePage(fs, target, "lap comparison", inputs...); err != nil {
			return nil, err
		}
		return []string{target}, nil
	}
	written := make([]string, 0, len(inputs))
	for _, in := range inputs {
		target := filepath.Join(outDir, in.Name+".html")
		if err := writePage(fs, target, in.Name, in); err != nil {
			return written, err
		}
		written = append(written, target)
	}
	return written, nil
}

func writePage(fs afero.Fs, target, title string, inputs ...chart.Input) error {
	f, err := fs.Create(target)
	if err != nil {
		return err
	}
	if err := chart.Render(f, title, inputs...); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func baseName(file string) string {
	return strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
}
