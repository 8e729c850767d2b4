package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/noiseparams/internal/ndarray"
	"github.com/MeKo-Tech/noiseparams/internal/param"
	"github.com/MeKo-Tech/noiseparams/internal/samplestore"
	"github.com/MeKo-Tech/noiseparams/internal/worker"
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record samples to an SQLite archive",
	Long: `Draw one array per seed from a configured parameter and store it, together
with the seed and the parameter definition, in an SQLite archive.

The archive can later be checked with the verify command.`,
	Example: "  noiseparams record --param clouds --shape 32,32 --seeds 16 --db golden.sqlite",
	RunE:    runRecord,
}

func init() {
	rootCmd.AddCommand(recordCmd)

	recordCmd.Flags().StringSlice("param", nil, "Names of the parameters to record (default: all configured)")
	recordCmd.Flags().String("shape", "16,16", "Sample shape, e.g. 16,16")
	recordCmd.Flags().Int("seeds", 8, "Number of seeds to record per parameter")
	recordCmd.Flags().Int64("seed", 0, "Base seed; record i uses seed+i")
	recordCmd.Flags().String("db", "samples.sqlite", "Archive file")
	recordCmd.Flags().String("name", "noiseparams", "Archive name stored in the metadata")
	recordCmd.Flags().Int("workers", 0, "Number of parallel workers (default: number of CPUs)")
	recordCmd.Flags().Bool("progress", true, "Show progress bar")

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"record.param", "param"},
		{"record.shape", "shape"},
		{"record.seeds", "seeds"},
		{"record.seed", "seed"},
		{"record.db", "db"},
		{"record.name", "name"},
		{"record.workers", "workers"},
		{"record.progress", "progress"},
	}

	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, recordCmd.Flags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

func runRecord(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	names := viper.GetStringSlice("record.param")
	shapeStr := viper.GetString("record.shape")
	seeds := viper.GetInt("record.seeds")
	seed := viper.GetInt64("record.seed")
	dbFile := viper.GetString("record.db")
	archiveName := viper.GetString("record.name")
	workers := viper.GetInt("record.workers")
	showProgress := viper.GetBool("record.progress")

	shape, err := ndarray.ParseShape(shapeStr)
	if err != nil {
		return fmt.Errorf("invalid shape: %w", err)
	}
	if seeds <= 0 {
		return fmt.Errorf("--seeds must be positive")
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	params, err := loadParams()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		names = sortedNames(params)
	}
	if len(names) == 0 {
		return fmt.Errorf("no parameters are configured")
	}
	for _, name := range names {
		if _, ok := params[name]; !ok {
			return fmt.Errorf("unknown parameter %q", name)
		}
	}

	w, err := samplestore.New(dbFile, samplestore.Metadata{
		Name:    archiveName,
		Version: "1.0",
		Created: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	defer w.Close()

	ctx, cancel := interruptContext()
	defer cancel()

	var tasks []worker.Task
	for _, name := range names {
		for _, task := range worker.Tasks(name, shape, seed, seeds) {
			task.Index = len(tasks)
			tasks = append(tasks, task)
		}
	}

	logger.Info("Recording samples",
		"params", len(names),
		"shape", ndarray.FormatShape(shape),
		"seeds", seeds,
		"workers", workers,
		"db", dbFile,
	)

	progress := worker.NewProgress(filepath.Base(dbFile), tasks, showProgress)
	pool := worker.New(worker.Config{
		Workers:    workers,
		Sampler:    recordSampler(params, w),
		OnProgress: progress.Callback(),
	})
	results := pool.Run(ctx, tasks)
	progress.Done()

	var failedCount int
	for _, r := range results {
		if r.Err != nil {
			failedCount++
			logger.Error("Recording failed", "task", r.Task.String(), "error", r.Err)
		}
	}
	logger.Info(progress.Summary())

	if err := w.Close(); err != nil {
		return err
	}
	if failedCount > 0 {
		return fmt.Errorf("%d samples failed to record", failedCount)
	}
	logger.Info("Archive written", "db", dbFile, "records", len(tasks))
	return nil
}

// recordSampler draws each task and hands it to the archive writer, which
// batches the inserts.
func recordSampler(params map[string]param.Parameter, w *samplestore.Writer) worker.Sampler {
	return worker.SamplerFunc(func(ctx context.Context, task worker.Task) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		p := params[task.Name]
		arr, err := param.DrawSeeded(p, task.Shape, task.Seed)
		if err != nil {
			return "", err
		}
		rec := samplestore.Record{Name: task.Name, Param: p.String(), Seed: task.Seed, Sample: arr}
		if err := w.WriteSample(rec); err != nil {
			return "", err
		}
		return task.String(), nil
	})
}
