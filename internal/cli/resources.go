package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rail-service/bridge_sdk/pkg/bridge"
)

func resourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "resources",
		Short:       "List the collections the client can address",
		Annotations: map[string]string{"offline": "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tOBJECT\tOPERATIONS")
			for _, e := range bridge.Endpoints() {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Name, e.Discriminator, e.Operations)
			}
			return tw.Flush()
		},
	}
}

func listCmd(a *app) *cobra.Command {
	var params bridge.ListParams
	var all bool

	c := &cobra.Command{
		Use:   "list <resource>",
		Short: "List one page of a collection, or every page with --all",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.client.Resource(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if !all {
				return a.printResult(svc.List(ctx, params))
			}

			var items []any
			err = a.client.Iterate(ctx, svc, params, func(item any) error {
				items = append(items, item)
				return nil
			})
			if err != nil {
				return err
			}
			return a.printValue(items)
		},
	}

	c.Flags().IntVar(&params.Limit, "limit", 0, "page size")
	c.Flags().StringVar(&params.StartingAfter, "starting-after", "", "cursor: return items after this id")
	c.Flags().StringVar(&params.EndingBefore, "ending-before", "", "cursor: return items before this id")
	c.Flags().BoolVar(&all, "all", false, "follow has_more until the collection is exhausted")
	return c
}

func getCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <resource> <id>",
		Short: "Fetch one object",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.client.Resource(args[0])
			if err != nil {
				return err
			}
			return a.printResult(svc.Get(cmd.Context(), args[1]))
		},
	}
}

func createCmd(a *app) *cobra.Command {
	var data, idempotencyKey string

	c := &cobra.Command{
		Use:   "create <resource>",
		Short: "Create an object from a JSON payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.client.Resource(args[0])
			if err != nil {
				return err
			}
			payload, err := parseData(data)
			if err != nil {
				return err
			}
			opts := &bridge.RequestOptions{IdempotencyKey: idempotencyKey}
			return a.printResult(svc.Create(cmd.Context(), payload, opts))
		},
	}

	c.Flags().StringVarP(&data, "data", "d", "", "JSON request body")
	c.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "reuse a key instead of generating one")
	_ = c.MarkFlagRequired("data")
	return c
}

func updateCmd(a *app) *cobra.Command {
	var data, idempotencyKey string

	c := &cobra.Command{
		Use:   "update <resource> <id>",
		Short: "Patch an object with a JSON payload",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.client.Resource(args[0])
			if err != nil {
				return err
			}
			payload, err := parseData(data)
			if err != nil {
				return err
			}
			opts := &bridge.RequestOptions{IdempotencyKey: idempotencyKey}
			return a.printResult(svc.Update(cmd.Context(), args[1], payload, opts))
		},
	}

	c.Flags().StringVarP(&data, "data", "d", "", "JSON request body")
	c.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "reuse a key instead of generating one")
	_ = c.MarkFlagRequired("data")
	return c
}

func deleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <resource> <id>",
		Short: "Delete an object",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.client.Resource(args[0])
			if err != nil {
				return err
			}
			return a.printResult(svc.Delete(cmd.Context(), args[1]))
		},
	}
}
