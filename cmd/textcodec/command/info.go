package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wippyai/textcodec/hostcodec"
)

func (a *app) opsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ops",
		Short: "List the bridge operations with their WIT signatures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sigs := make(map[string]hostcodec.Signature)
			for _, sig := range hostcodec.Describe() {
				sigs[sig.Op] = sig
			}

			w := cmd.OutOrStdout()
			for _, op := range a.registry.Ops() {
				sig, ok := sigs[op]
				if !ok {
					fmt.Fprintln(w, op)
					continue
				}
				fmt.Fprintln(w, sig.String())
				fmt.Fprintf(w, "    %s\n", sig.Doc)
			}
			return nil
		},
	}
}

func (a *app) configCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.cfg.Write(cmd.OutOrStdout())
		},
	}
}

func (a *app) interactiveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Convert text live in a terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInteractive(cmd.Context(), a.bridge, a.bridgeName())
		},
	}
}
