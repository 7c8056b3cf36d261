package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"apnode/internal/domain"
)

// follow <actor-uri> <target-uri>: record that actor follows target.
func followCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "follow <actor-uri> <target-uri>",
		Short: "Record a follow of a local actor",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := node.Follow(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s now follows %s\n", args[0], args[1])
			return nil
		},
	}
}

// followers <username>: print followers (or following) as an OrderedCollection.
func followersCmd() *cobra.Command {
	var following bool
	cmd := &cobra.Command{
		Use:   "followers <username>",
		Short: "List an actor's followers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := domain.Username(args[0]).Normalize()
			ep := node.Endpoints()
			list, id := node.Followers, ep.FollowersURL(username)
			if following {
				list, id = node.Following, ep.FollowingURL(username)
			}
			items, err := list(args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), domain.NewOrderedCollection(id, items))
		},
	}
	cmd.Flags().BoolVar(&following, "following", false, "list who the actor follows instead")
	return cmd
}

// like <actor-uri> <object-uri>: print the Like activity.
func likeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "like <actor-uri> <object-uri>",
		Short: "Acknowledge a like",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			act, err := node.Like(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), act)
		},
	}
}
