package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/R3E-Network/stockboard/internal/app/domain/item"
	"github.com/R3E-Network/stockboard/internal/dashboard"
)

// NewItemsCommand creates the items command group.
func NewItemsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "List and change inventory items",
	}

	cmd.AddCommand(newItemsListCommand(opts))
	cmd.AddCommand(newItemsAddCommand(opts))
	cmd.AddCommand(newItemsUpdateCommand(opts))
	cmd.AddCommand(newItemsDeleteCommand(opts))
	return cmd
}

func newItemsListCommand(opts *RootOptions) *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List items, optionally filtered by name or category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newAPIClient()
			if err != nil {
				return err
			}
			items, err := client.FetchItems(cmd.Context(), query)
			if err != nil {
				return apiFailure("list items", err)
			}
			return formatter(cmd, opts).Success(items, func(w io.Writer) error {
				return RenderItems(w, items)
			})
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "case-insensitive name or category filter")
	return cmd
}

func newItemsAddCommand(opts *RootOptions) *cobra.Command {
	var in dashboard.NewItem

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newAPIClient()
			if err != nil {
				return err
			}
			created, err := client.AddItem(cmd.Context(), in)
			if err != nil {
				return apiFailure("add item", err)
			}
			return formatter(cmd, opts).Success(created, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "created item %s\n", created.ID)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&in.Name, "name", "", "item name")
	cmd.Flags().StringVar(&in.Category, "category", "", "item category")
	cmd.Flags().Float64Var(&in.Quantity, "quantity", 0, "units in stock")
	return cmd
}

func newItemsUpdateCommand(opts *RootOptions) *cobra.Command {
	var (
		name     string
		category string
		quantity float64
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change the given fields of an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch item.Patch
			if cmd.Flags().Changed("name") {
				patch.Name = &name
			}
			if cmd.Flags().Changed("category") {
				patch.Category = &category
			}
			if cmd.Flags().Changed("quantity") {
				patch.Quantity = item.QuantityPatch(quantity)
			}

			client, _, err := newAPIClient()
			if err != nil {
				return err
			}
			updated, err := client.UpdateItem(cmd.Context(), args[0], patch)
			if err != nil {
				return apiFailure("update item", err)
			}
			return formatter(cmd, opts).Success(updated, func(w io.Writer) error {
				return RenderItems(w, []item.Item{updated})
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&category, "category", "", "new category")
	cmd.Flags().Float64Var(&quantity, "quantity", 0, "new quantity")
	return cmd
}

func newItemsDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newAPIClient()
			if err != nil {
				return err
			}
			if err := client.DeleteItem(cmd.Context(), args[0]); err != nil {
				return apiFailure("delete item", err)
			}
			return formatter(cmd, opts).Success(map[string]string{"id": args[0]}, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "deleted item %s\n", args[0])
				return err
			})
		},
	}
}
