package main

import (
	"fmt"

	"github.com/lucasmaystre/gpinterp/batch"
	"github.com/spf13/cobra"
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Print the posterior mean and standard deviation at each query",
	RunE:  runPredict,
}

func init() {
	rootCmd.AddCommand(predictCmd)
}

func runPredict(cmd *cobra.Command, args []string) error {
	m, err := loadModel()
	if err != nil {
		return err
	}
	if err := requireQueries(m); err != nil {
		return err
	}
	preds, err := batch.Predict(m.Engine, m.Queries, workers)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, p := range preds {
		fmt.Fprintf(out, "%v\t%.10g\t%.10g\n", p.Query, p.Mean, p.Std())
	}
	return nil
}
