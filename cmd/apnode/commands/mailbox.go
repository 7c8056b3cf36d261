package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"apnode/internal/domain"
)

// inbox <username>: print the inbox as an OrderedCollection.
func inboxCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inbox <username>",
		Short: "List an actor's inbox",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := node.ListInbox(args[0])
			if err != nil {
				return err
			}
			username := domain.Username(args[0]).Normalize()
			return printJSON(cmd.OutOrStdout(),
				domain.NewOrderedCollection(node.Endpoints().InboxURL(username), entries))
		},
	}
}

// outbox <username>: print the sent activities.
func outboxCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "outbox <username>",
		Short: "List an actor's outbox",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			acts, err := node.OutboxActivities(args[0])
			if err != nil {
				return err
			}
			username := domain.Username(args[0]).Normalize()
			return printJSON(cmd.OutOrStdout(),
				domain.NewOrderedCollection(node.Endpoints().OutboxURL(username), acts))
		},
	}
}

// decrypt <username>: decrypt each inbox entry with the actor's key.
func decryptCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "decrypt <username>",
		Short: "Decrypt an actor's inbox",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := node.DecryptInbox(args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), entries)
			}
			for _, e := range entries {
				if !e.OK() {
					fmt.Fprintf(cmd.OutOrStdout(), "%s  ! %s\n", e.EntryID, e.Error)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  [%s] %s\n", e.EntryID, e.From, e.Plaintext)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
