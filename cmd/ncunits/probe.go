package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/arloliu/go-nclink/config"
	"github.com/arloliu/go-nclink/fleet"
	"github.com/arloliu/go-nclink/logger"
)

func newProbeCmd(gf *globalFlags) *cobra.Command {
	var path string
	var concurrency int

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Detect the unit system of every machine in an inventory file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			inv, err := config.LoadFile(path)
			if err != nil {
				return err
			}

			opts := append(inv.Timeouts.ConnOptions(), gf.connOptions(cmd.Flags())...)

			proberOpts := []fleet.Option{
				fleet.WithConcurrency(concurrency),
				fleet.WithLogger(logger.GetLogger()),
			}

			if f, ok := cmd.ErrOrStderr().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
				bar := progressbar.NewOptions(len(inv.Machines),
					progressbar.OptionSetWriter(f),
					progressbar.OptionSetDescription(">> Probing machines:"),
					progressbar.OptionSetTheme(progressbar.ThemeASCII),
					progressbar.OptionShowCount(),
					progressbar.OptionShowElapsedTimeOnFinish(),
				)
				defer func() { _ = bar.Finish() }()

				proberOpts = append(proberOpts, fleet.WithProgress(func(fleet.Report) { _ = bar.Add(1) }))
			}

			reports := fleet.NewProber(fleet.ClientFactory(opts...), proberOpts...).
				Probe(cmd.Context(), inv.Machines)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "MACHINE\tADDRESS\tCONTROL\tSYSTEM\tDEFAULTED\tREASON\tELAPSED")
			for _, r := range reports {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t%s\t%s\n",
					r.Machine.Name, r.Machine.Target().Addr(), r.Machine.Version(),
					r.Result.System, r.Result.Defaulted, r.Result.Reason, r.Elapsed.Round(time.Millisecond))
			}

			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&path, "config", "f", "machines.yaml", "inventory file (.yaml, .yml or .toml)")
	cmd.Flags().IntVar(&concurrency, "concurrency", fleet.DefaultConcurrency, "machines probed in parallel")

	return cmd
}
