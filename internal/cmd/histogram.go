package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/noiseparams/internal/preview"
)

var histogramCmd = &cobra.Command{
	Use:   "histogram",
	Short: "Plot the distribution of a parameter",
	Long: `Draw a flat sample from a configured parameter and write a PNG bar chart
of its value distribution, titled with the parameter definition.`,
	Example: "  noiseparams histogram --param clouds --samples 10000 --out clouds.png",
	RunE:    runHistogram,
}

func init() {
	rootCmd.AddCommand(histogramCmd)

	defaults := preview.DefaultHistogramOptions()
	histogramCmd.Flags().String("param", "", "Name of the parameter to plot")
	histogramCmd.Flags().Int("samples", 10000, "Number of values to draw")
	histogramCmd.Flags().Int("bins", defaults.Bins, "Number of histogram bins")
	histogramCmd.Flags().Int("width", defaults.Width, "Image width in pixels")
	histogramCmd.Flags().Int("height", defaults.Height, "Image height in pixels")
	histogramCmd.Flags().Int64("seed", 1, "Seed for the random generator (negative for unseeded)")
	histogramCmd.Flags().String("out", "histogram.png", "Output PNG file")

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"histogram.param", "param"},
		{"histogram.samples", "samples"},
		{"histogram.bins", "bins"},
		{"histogram.width", "width"},
		{"histogram.height", "height"},
		{"histogram.seed", "seed"},
		{"histogram.out", "out"},
	}

	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, histogramCmd.Flags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

func runHistogram(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	name := viper.GetString("histogram.param")
	samples := viper.GetInt("histogram.samples")
	seed := viper.GetInt64("histogram.seed")
	outFile := viper.GetString("histogram.out")
	opts := preview.HistogramOptions{
		Width:  viper.GetInt("histogram.width"),
		Height: viper.GetInt("histogram.height"),
		Bins:   viper.GetInt("histogram.bins"),
	}

	if samples <= 0 {
		return fmt.Errorf("--samples must be positive")
	}

	p, err := lookupParam(name)
	if err != nil {
		return err
	}
	opts.Title = p.String()

	arr, err := drawSamples(p, []int{samples}, seed)
	if err != nil {
		return fmt.Errorf("failed to sample %s: %w", name, err)
	}
	if arr.IsString() {
		return fmt.Errorf("parameter %s yields strings, which cannot be plotted", name)
	}

	img, err := preview.Histogram(arr.Floats(), opts)
	if err != nil {
		return err
	}
	if err := preview.WritePNG(outFile, img); err != nil {
		return err
	}

	lo, hi := arr.MinMax()
	logger.Info("Histogram written", "param", name, "samples", samples, "min", lo, "max", hi, "path", outFile)
	return nil
}
