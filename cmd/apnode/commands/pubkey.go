package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// pubkey <username>: print the PEM public key and its fingerprint.
func pubkeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pubkey <username>",
		Short: "Print an actor's public key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pemText, err := node.PublicKey(args[0])
			if err != nil {
				return err
			}
			fp, err := node.Fingerprint(args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), pemText)
			fmt.Fprintf(cmd.OutOrStdout(), "fingerprint: %s\n", fp)
			return nil
		},
	}
}
