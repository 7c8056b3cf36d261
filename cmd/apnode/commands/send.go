package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"apnode/internal/domain"
)

// send <sender> <recipient> <message>: encrypt and deliver a message.
func sendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <sender> <recipient> <message>",
		Short: "Encrypt and send a message to an actor",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := node.Send(cmd.Context(), args[0], args[1], args[2])
			var derr *domain.DeliveryError
			if errors.As(err, &derr) {
				fmt.Fprintf(cmd.OutOrStdout(), "stored locally (outbox %s, inbox %s) but remote delivery failed\n",
					res.OutboxEntryID, res.InboxEntryID)
				return err
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sent %s at %s (%s)\n",
				res.Activity.ID, res.SentAt.Format(time.RFC3339), res.Status)
			return nil
		},
	}
}
