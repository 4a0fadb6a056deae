package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/lucasmaystre/gpinterp/config"
	"github.com/spf13/cobra"
)

const DefaultConfigPath = "gpinterp.yaml"

var (
	configPath string
	verbose    bool
	workers    int
)

var rootCmd = &cobra.Command{
	Use:   "gpinterp",
	Short: "Gaussian process interpolation of noisy samples",
	Long: `gpinterp interpolates noisy sample means with a Gaussian process prior.

The run file names the data, the prior mean and covariance functions, the
noise scale and the query points.

Examples:
  gpinterp predict --config run.yaml
  gpinterp sensitivity --config run.yaml --index 0
  gpinterp fit --config run.yaml
  gpinterp plot --config run.yaml --out band.png`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", DefaultConfigPath, "Path to the run file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 4, "Number of query workers")
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadModel reads the run file and builds the model it describes.
func loadModel() (*config.Model, error) {
	c, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	m, err := c.WithLogger(newLogger()).Build()
	if err != nil {
		return nil, fmt.Errorf("building model: %w", err)
	}
	return m, nil
}

func requireQueries(m *config.Model) error {
	if m.Queries == nil {
		return fmt.Errorf("%s has no queries", configPath)
	}
	return nil
}
