package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"myfeed/internal/contentpreference"
	"myfeed/internal/model"
	"myfeed/internal/query"

	"github.com/spf13/cobra"
)

type listFlags struct {
	entity string
	limit  int
	pages  int
	all    bool
}

func (f *listFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.entity, "entity", "e", string(model.ContentPreferenceTypeUser), "Entity type: user, source, keyword or word")
	cmd.Flags().IntVarP(&f.limit, "limit", "l", 0, "Page size (server default when 0)")
	cmd.Flags().IntVarP(&f.pages, "pages", "p", 1, "Number of pages to load")
	cmd.Flags().BoolVarP(&f.all, "all", "a", false, "Load every page")
}

func (c *CLI) newBlockedCmd() *cobra.Command {
	var (
		f    listFlags
		feed string
	)
	cmd := &cobra.Command{
		Use:   "blocked",
		Short: "List what the signed-in user blocked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := contentpreference.NewBlockedQuery(cmd.Context(), c.deps.Client, c.deps.Requester, c.deps.Session, contentpreference.BlockedParams{
				Entity:  model.ContentPreferenceType(f.entity),
				Limit:   f.limit,
				FeedID:  feed,
				Options: c.deps.Options,
			})
			if err != nil {
				return err
			}
			defer q.Close()
			return c.printPages(cmd.Context(), q, f)
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&feed, "feed", "", "Only blocks scoped to this custom feed")
	return cmd
}

func (c *CLI) newFollowingCmd() *cobra.Command {
	var f listFlags
	cmd := &cobra.Command{
		Use:   "following",
		Short: "List what the signed-in user follows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := contentpreference.NewFollowingQuery(cmd.Context(), c.deps.Client, c.deps.Requester, c.deps.Session, contentpreference.FollowingParams{
				Entity:  model.ContentPreferenceType(f.entity),
				Limit:   f.limit,
				Options: c.deps.Options,
			})
			if err != nil {
				return err
			}
			defer q.Close()
			return c.printPages(cmd.Context(), q, f)
		},
	}
	f.register(cmd)
	return cmd
}

// printPages loads the requested number of pages and prints every item. Items
// of pages that loaded before a failure are printed too.
func (c *CLI) printPages(ctx context.Context, q *query.InfiniteQuery[contentpreference.ContentPreference], f listFlags) error {
	if !q.Enabled() {
		return fmt.Errorf("entity is required")
	}

	res, err := q.Fetch(ctx)
	for loaded := 1; err == nil && res.HasNextPage && (f.all || loaded < f.pages); loaded++ {
		res, err = q.FetchNextPage(ctx)
	}

	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "REFERENCE\tTYPE\tSTATUS\tFEED\tCREATED")
	for _, it := range res.Items() {
		feed := "-"
		if it.FeedID != nil {
			feed = *it.FeedID
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", it.ReferenceID, it.Type, it.Status, feed, it.CreatedAt.Format(time.RFC3339))
	}
	if flushErr := w.Flush(); flushErr != nil {
		return flushErr
	}

	if err != nil {
		return err
	}
	if res.HasNextPage {
		fmt.Fprintln(c.out, "(more pages available)")
	}
	return nil
}
