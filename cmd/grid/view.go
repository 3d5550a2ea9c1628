package main

import (
	"fmt"
	"net/url"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/grid/pkg/types"
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Manage saved views",
	Long: `Saved views are named query strings kept in the data directory. Use
them with "grid query --view <name>".`,
}

var viewSaveQuery string

var viewSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Save or overwrite a named view",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q := strings.TrimPrefix(viewSaveQuery, "?")
		if _, err := url.ParseQuery(q); err != nil {
			return fmt.Errorf("%w: %w", types.ErrMalformedQuery, err)
		}
		store, _, err := openStore()
		if err != nil {
			return err
		}
		defer store.Detach()

		v := &types.SavedView{Name: args[0], Query: q}
		if _, err := store.SaveView(v); err != nil {
			return err
		}
		if flagJSON {
			return printJSON(cmd.OutOrStdout(), v)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "saved %s (%s)\n", v.Name, v.ViewID)
		return nil
	},
}

var viewListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved views",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := openStore()
		if err != nil {
			return err
		}
		defer store.Detach()

		views, err := store.ListViews()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if flagJSON {
			if views == nil {
				views = []*types.SavedView{}
			}
			return printJSON(out, views)
		}
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tUPDATED\tQUERY")
		for _, v := range views {
			fmt.Fprintf(w, "%s\t%s\t%s\n", v.Name, v.UpdatedAt.Local().Format(time.DateTime), v.Query)
		}
		return w.Flush()
	},
}

var viewShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a saved view's query string",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := openStore()
		if err != nil {
			return err
		}
		defer store.Detach()

		v, err := store.GetViewByName(args[0])
		if err != nil {
			return fmt.Errorf("view %q: %w", args[0], err)
		}
		if flagJSON {
			return printJSON(cmd.OutOrStdout(), v)
		}
		fmt.Fprintln(cmd.OutOrStdout(), v.Query)
		return nil
	},
}

var viewDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved view",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := openStore()
		if err != nil {
			return err
		}
		defer store.Detach()

		v, err := store.GetViewByName(args[0])
		if err != nil {
			return fmt.Errorf("view %q: %w", args[0], err)
		}
		if err := store.DeleteView(v.ViewID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", v.Name)
		return nil
	},
}

func init() {
	viewSaveCmd.Flags().StringVar(&viewSaveQuery, "query", "", "query string to save, as printed by grid encode")
	_ = viewSaveCmd.MarkFlagRequired("query")

	viewCmd.AddCommand(viewSaveCmd)
	viewCmd.AddCommand(viewListCmd)
	viewCmd.AddCommand(viewShowCmd)
	viewCmd.AddCommand(viewDeleteCmd)
}
