package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// create-actor <username>: register an actor with a fresh RSA keypair.
func createActorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create-actor <username>",
		Short: "Register a local actor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := node.CreateActor(args[0])
			if err != nil {
				return err
			}
			fp, err := node.Fingerprint(a.Username.String())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s\n  id: %s\n  fingerprint: %s\n", a.Username, a.ID, fp)
			return nil
		},
	}
}
