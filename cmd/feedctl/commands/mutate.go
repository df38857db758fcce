package commands

import (
	"fmt"
	"time"

	"myfeed/internal/auth"
	"myfeed/internal/model"

	"github.com/spf13/cobra"
)

func (c *CLI) newBlockCmd() *cobra.Command {
	var entity, feed string
	cmd := &cobra.Command{
		Use:   "block <id>",
		Short: "Block an entity, optionally only in one custom feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.mutations().Block(cmd.Context(), args[0], model.ContentPreferenceType(entity), feed); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "blocked %s %s\n", entity, args[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&entity, "entity", "e", string(model.ContentPreferenceTypeUser), "Entity type")
	cmd.Flags().StringVar(&feed, "feed", "", "Custom feed id")
	return cmd
}

func (c *CLI) newUnblockCmd() *cobra.Command {
	var entity, feed string
	cmd := &cobra.Command{
		Use:   "unblock <id>",
		Short: "Remove a block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.mutations().Unblock(cmd.Context(), args[0], model.ContentPreferenceType(entity), feed); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "unblocked %s %s\n", entity, args[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&entity, "entity", "e", string(model.ContentPreferenceTypeUser), "Entity type")
	cmd.Flags().StringVar(&feed, "feed", "", "Custom feed id")
	return cmd
}

func (c *CLI) newFollowCmd() *cobra.Command {
	var entity, status string
	cmd := &cobra.Command{
		Use:   "follow <id>",
		Short: "Follow or subscribe to an entity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := c.mutations().Follow(cmd.Context(), args[0], model.ContentPreferenceType(entity), model.ContentPreferenceStatus(status))
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "%s %s %s\n", status, entity, args[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&entity, "entity", "e", string(model.ContentPreferenceTypeUser), "Entity type")
	cmd.Flags().StringVarP(&status, "status", "s", string(model.ContentPreferenceStatusFollow), "follow or subscribed")
	return cmd
}

func (c *CLI) newUnfollowCmd() *cobra.Command {
	var entity string
	cmd := &cobra.Command{
		Use:   "unfollow <id>",
		Short: "Stop following an entity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.mutations().Unfollow(cmd.Context(), args[0], model.ContentPreferenceType(entity)); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "unfollowed %s %s\n", entity, args[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&entity, "entity", "e", string(model.ContentPreferenceTypeUser), "Entity type")
	return cmd
}

// newTokenCmd signs a development token; the secret must match the server's
// AUTH_JWT_SECRET.
func (c *CLI) newTokenCmd() *cobra.Command {
	var (
		secret string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Issue a bearer token for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if secret == "" {
				return fmt.Errorf("--secret is required")
			}
			token, err := auth.Issue(secret, args[0], ttl, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, token)
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", "", "Server JWT secret")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	return cmd
}
