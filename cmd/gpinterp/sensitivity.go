package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"
)

var sensitivityIndex int

var sensitivityCmd = &cobra.Command{
	Use:   "sensitivity",
	Short: "Print the derivatives of the posterior variance at a query",
	Long: `Print the gradient and the Hessian of the posterior variance cov(q,q) with
respect to every parameter, at the query selected by --index.

Rows follow the parameter order: mean parameters, sigma, then the
covariance parameters. Parameters that are not optimized get zeros.`,
	RunE: runSensitivity,
}

func init() {
	rootCmd.AddCommand(sensitivityCmd)
	sensitivityCmd.Flags().IntVarP(&sensitivityIndex, "index", "i", 0, "Index of the query")
}

func runSensitivity(cmd *cobra.Command, args []string) error {
	m, err := loadModel()
	if err != nil {
		return err
	}
	if err := requireQueries(m); err != nil {
		return err
	}
	nq, _ := m.Queries.Dims()
	if sensitivityIndex < 0 || sensitivityIndex >= nq {
		return fmt.Errorf("query index %d out of range [0, %d)", sensitivityIndex, nq)
	}
	q := m.Queries.RawRowView(sensitivityIndex)
	d, err := m.Engine.PosteriorCovarianceDerivative(q)
	if err != nil {
		return err
	}
	h, err := m.Engine.PosteriorCovarianceHessian(q)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "query %v\n", q)
	fmt.Fprintln(out, "gradient")
	for i, p := range m.Params {
		fmt.Fprintf(out, "  %-12s %.10g\n", p.Name(), d.AtVec(i))
	}
	fmt.Fprintln(out, "hessian")
	fmt.Fprintf(out, "%s\n", indent(mat.Formatted(h, mat.Squeeze()), "  "))
	return nil
}

func indent(f fmt.Formatter, prefix string) string {
	lines := strings.Split(fmt.Sprintf("%v", f), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
