package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/arloliu/go-nclink/config"
	"github.com/arloliu/go-nclink/logger"
	"github.com/arloliu/go-nclink/nclink"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	host        string
	port        int
	logLevel    string
	readTimeout time.Duration
	attempts    int
}

func newRootCmd() *cobra.Command {
	target := config.FromEnv()
	gf := &globalFlags{}

	root := &cobra.Command{
		Use:   "ncunits",
		Short: "Query CNC controls for their configured unit system",
		Long: `ncunits talks to CNC controls over the %-framed nclink protocol.

The default target comes from the ` + config.EnvHost + ` and ` + config.EnvPort + `
environment variables (falling back to ` + target.Addr() + `).`,
		Example: `    Detect the unit system of one control:
        $ ncunits detect --host 192.168.1.10 --control D00

    Probe every machine in an inventory:
        $ ncunits probe --config machines.yaml

    Show the frame sent for a command:
        $ ncunits frame LOD MSRRSC`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, ok := logger.ParseLevel(gf.logLevel)
			if !ok {
				return fmt.Errorf("unknown log level %q", gf.logLevel)
			}
			logger.SetLogger(logger.NewSlogWithWriter(cmd.ErrOrStderr(), level, false, os.Getenv("ENV") == "development"))

			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&gf.host, "host", "H", target.Host, "control host")
	pf.IntVarP(&gf.port, "port", "p", target.Port, "control port")
	pf.StringVar(&gf.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.DurationVar(&gf.readTimeout, "read-timeout", nclink.DefaultReadTimeout, "response deadline, 0 waits forever")
	pf.IntVar(&gf.attempts, "attempts", nclink.DefaultConnectAttempts, "connect attempts per command")

	root.AddCommand(
		newDetectCmd(gf),
		newProbeCmd(gf),
		newSendCmd(gf),
		newFrameCmd(),
	)

	return root
}

// connOptions converts the global flags that were set into nclink options.
func (gf *globalFlags) connOptions(flags *pflag.FlagSet) []nclink.ConnOption {
	opts := []nclink.ConnOption{nclink.WithLogger(logger.GetLogger())}

	if flags.Changed("read-timeout") {
		opts = append(opts, nclink.WithReadTimeout(gf.readTimeout))
	}
	if flags.Changed("attempts") {
		opts = append(opts, nclink.WithConnectAttempts(gf.attempts))
	}

	return opts
}

// newClient builds a client for the --host/--port target.
func (gf *globalFlags) newClient(flags *pflag.FlagSet) (*nclink.Client, error) {
	cfg, err := nclink.NewConnectionConfig(gf.host, gf.port, gf.connOptions(flags)...)
	if err != nil {
		return nil, err
	}

	return nclink.NewClient(cfg)
}
