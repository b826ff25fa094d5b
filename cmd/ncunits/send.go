package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arloliu/go-nclink/nclink"
)

func newSendCmd(gf *globalFlags) *cobra.Command {
	var unwrap bool

	cmd := &cobra.Command{
		Use:   "send NAME [ARGS]",
		Short: "Send one raw command and print the response",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := gf.newClient(cmd.Flags())
			if err != nil {
				return err
			}

			resp, err := client.Send(cmd.Context(), commandFromArgs(args))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if unwrap {
				payload, ok := nclink.Unwrap(resp)
				if !ok {
					return fmt.Errorf("response has no payload: %q", resp)
				}
				_, err = fmt.Fprintln(out, payload)

				return err
			}

			_, err = fmt.Fprintf(out, "%q\n", resp)

			return err
		},
	}

	cmd.Flags().BoolVarP(&unwrap, "unwrap", "u", false, "print only the decoded payload")

	return cmd
}

func newFrameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "frame NAME [ARGS]",
		Short: "Print the wire frame of a command without sending it",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := commandFromArgs(args)
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%q checksum=%02d\n", c.Frame(), nclink.Checksum(c.Body()))

			return err
		},
	}
}

func commandFromArgs(args []string) nclink.Command {
	if len(args) == 1 {
		return nclink.NewCommand(args[0], "")
	}

	return nclink.NewCommand(args[0], args[1])
}
