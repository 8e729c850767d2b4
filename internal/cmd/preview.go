package cmd

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/noiseparams/internal/ndarray"
	"github.com/MeKo-Tech/noiseparams/internal/param"
	"github.com/MeKo-Tech/noiseparams/internal/preview"
	"github.com/MeKo-Tech/noiseparams/internal/worker"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render noise planes as PNG images",
	Long: `Draw one (H, W) plane per seed from a configured parameter and write each
as a grayscale PNG. Planes are sampled in parallel.

Planes within [0, 1] are written as is; wider planes are min-max normalised.`,
	Example: "  noiseparams preview --param clouds --size 256 --seeds 8 --out previews",
	RunE:    runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().String("param", "", "Name of the parameter to render")
	previewCmd.Flags().Int("size", 256, "Square plane size in pixels")
	previewCmd.Flags().String("shape", "", "Plane shape H,W (overrides --size)")
	previewCmd.Flags().Int("seeds", 4, "Number of planes to render")
	previewCmd.Flags().Int64("seed", 0, "Base seed; plane i uses seed+i")
	previewCmd.Flags().String("out", "./previews", "Output directory")
	previewCmd.Flags().Int("workers", 0, "Number of parallel workers (default: number of CPUs)")
	previewCmd.Flags().Bool("progress", true, "Show progress bar")
	previewCmd.Flags().Bool("mosaic", false, "Also write all planes side by side to mosaic.png")
	previewCmd.Flags().Int("mosaic-cols", 4, "Planes per mosaic row")

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"preview.param", "param"},
		{"preview.size", "size"},
		{"preview.shape", "shape"},
		{"preview.seeds", "seeds"},
		{"preview.seed", "seed"},
		{"preview.out", "out"},
		{"preview.workers", "workers"},
		{"preview.progress", "progress"},
		{"preview.mosaic", "mosaic"},
		{"preview.mosaic-cols", "mosaic-cols"},
	}

	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, previewCmd.Flags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

func runPreview(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	name := viper.GetString("preview.param")
	size := viper.GetInt("preview.size")
	shapeStr := viper.GetString("preview.shape")
	seeds := viper.GetInt("preview.seeds")
	seed := viper.GetInt64("preview.seed")
	outDir := viper.GetString("preview.out")
	workers := viper.GetInt("preview.workers")
	showProgress := viper.GetBool("preview.progress")
	mosaic := viper.GetBool("preview.mosaic")
	cols := viper.GetInt("preview.mosaic-cols")

	shape, err := planeShape(shapeStr, size)
	if err != nil {
		return err
	}
	if seeds <= 0 {
		return fmt.Errorf("--seeds must be positive")
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	p, err := lookupParam(name)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	logger.Info("Rendering previews",
		"param", name,
		"definition", p.String(),
		"shape", ndarray.FormatShape(shape),
		"count", seeds,
		"workers", workers,
		"output_dir", outDir,
	)

	ctx, cancel := interruptContext()
	defer cancel()

	planes := make([]*image.Gray, seeds)
	tasks := worker.Tasks(name, shape, seed, seeds)
	progress := worker.NewProgress(name, tasks, showProgress)

	pool := worker.New(worker.Config{
		Workers:    workers,
		Sampler:    previewSampler(p, outDir, planes),
		OnProgress: progress.Callback(),
	})
	results := pool.Run(ctx, tasks)
	progress.Done()

	var failedCount int
	for _, r := range results {
		if r.Err != nil {
			failedCount++
			logger.Error("Preview failed", "task", r.Task.String(), "error", r.Err)
			continue
		}
		logger.Debug("Preview written", "path", r.Output, "elapsed", r.Elapsed)
	}
	logger.Info(progress.Summary())

	if failedCount > 0 {
		return fmt.Errorf("%d previews failed to render", failedCount)
	}

	if mosaic {
		img, err := preview.Mosaic(planes, cols, 4)
		if err != nil {
			return err
		}
		path := filepath.Join(outDir, "mosaic.png")
		if err := preview.WritePNG(path, img); err != nil {
			return err
		}
		logger.Info("Mosaic written", "path", path)
	}
	return nil
}

// previewSampler renders task planes to outDir and keeps each image in
// planes at the task index.
func previewSampler(p param.Parameter, outDir string, planes []*image.Gray) worker.Sampler {
	return worker.SamplerFunc(func(ctx context.Context, task worker.Task) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		arr, err := param.DrawSeeded(p, task.Shape, task.Seed)
		if err != nil {
			return "", err
		}
		img, err := preview.Plane(arr)
		if err != nil {
			return "", err
		}
		path := filepath.Join(outDir, fmt.Sprintf("%s_%03d.png", task.Name, task.Index))
		if err := preview.WritePNG(path, img); err != nil {
			return "", err
		}
		planes[task.Index] = img
		return path, nil
	})
}

// planeShape returns the (H, W) shape given by shapeStr, or size x size when
// shapeStr is empty.
func planeShape(shapeStr string, size int) ([]int, error) {
	if shapeStr == "" {
		if size <= 0 {
			return nil, fmt.Errorf("--size must be positive")
		}
		return []int{size, size}, nil
	}
	shape, err := ndarray.ParseShape(shapeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if len(shape) != 2 {
		return nil, fmt.Errorf("invalid shape: previews need H,W, got %s", ndarray.FormatShape(shape))
	}
	return shape, nil
}
