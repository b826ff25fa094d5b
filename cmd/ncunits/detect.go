package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arloliu/go-nclink/logger"
	"github.com/arloliu/go-nclink/units"
)

func newDetectCmd(gf *globalFlags) *cobra.Command {
	var control string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Detect the unit system of a single control",
		Long: `detect loads the control's stored configuration file and prints Metric or Inch.

Detection never fails: when the control cannot be reached or the file cannot be
interpreted, Metric is printed and the reason is logged.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := gf.newClient(cmd.Flags())
			if err != nil {
				return err
			}

			d, err := units.NewDetector(client, units.WithLogger(logger.GetLogger()))
			if err != nil {
				return err
			}

			v := units.ParseControlVersion(control)
			res := d.Detect(cmd.Context(), v)
			d.Report(v, res)

			out := cmd.OutOrStdout()
			if !verbose {
				_, err = fmt.Fprintln(out, res.System)
				return err
			}

			_, err = fmt.Fprintf(out, "system:    %s\nfile:      %s\ndefaulted: %t\n", res.System, res.File, res.Defaulted)
			if err == nil && res.Defaulted {
				_, err = fmt.Fprintf(out, "stage:     %s\nreason:    %s\n", res.Stage, res.Reason)
			}

			return err
		},
	}

	cmd.Flags().StringVarP(&control, "control", "c", "Unknown", "control version (A00, B00, C00, D00)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print the detection details")

	return cmd
}
