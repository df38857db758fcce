// Package commands implements the feedctl command line.
package commands

import (
	"context"
	"io"

	"myfeed/internal/auth"
	"myfeed/internal/contentpreference"
	"myfeed/internal/query"

	"github.com/spf13/cobra"
)

// Deps is what the commands run against.
type Deps struct {
	Client    *query.Client
	Requester contentpreference.Requester
	Bus       query.Bus
	Session   auth.Session
	// Options apply to every list query.
	Options query.Options
}

type CLI struct {
	deps    Deps
	out     io.Writer
	rootCmd *cobra.Command
}

func New(deps Deps, out io.Writer) *CLI {
	rootCmd := &cobra.Command{
		Use:           "feedctl",
		Short:         "Inspect and change content preferences",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)

	c := &CLI{
		deps:    deps,
		out:     out,
		rootCmd: rootCmd,
	}

	rootCmd.AddCommand(c.newBlockedCmd())
	rootCmd.AddCommand(c.newFollowingCmd())
	rootCmd.AddCommand(c.newBlockCmd())
	rootCmd.AddCommand(c.newUnblockCmd())
	rootCmd.AddCommand(c.newFollowCmd())
	rootCmd.AddCommand(c.newUnfollowCmd())
	rootCmd.AddCommand(c.newTokenCmd())

	return c
}

func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

func (c *CLI) mutations() *contentpreference.Mutations {
	return contentpreference.NewMutations(c.deps.Requester, c.deps.Bus, c.deps.Session)
}
