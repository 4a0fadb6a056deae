package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var fitCmd = &cobra.Command{
	Use:   "fit",
	Short: "Fit the prior parameters by maximum marginal likelihood",
	RunE:  runFit,
}

func init() {
	rootCmd.AddCommand(fitCmd)
}

func runFit(cmd *cobra.Command, args []string) error {
	m, err := loadModel()
	if err != nil {
		return err
	}
	res, err := m.Fitter(verbose).Fit()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, p := range m.Params {
		fmt.Fprintf(out, "%-12s %.10g\n", p.Name(), p.Value())
	}
	fmt.Fprintf(out, "score %.10g (initial %.10g, %d iterations, %s)\n",
		res.Score, res.InitialScore, res.Iterations, res.Status)
	return nil
}
