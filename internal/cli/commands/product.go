package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/branchd-dev/storefront/internal/flows"
	"github.com/branchd-dev/storefront/internal/storefront"
)

// NewProductCmd creates the product command
func NewProductCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "product <id>",
		Short: "Show one product and its images",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProduct(cmd, args[0])
		},
	}

	return withRoute(cmd, "/product/:productId")
}

func runProduct(cmd *cobra.Command, id string) error {
	env := envFrom(cmd)
	ctx := cmd.Context()

	api, err := env.API()
	if err != nil {
		return err
	}
	p, err := api.Products().GetByID(ctx, id)
	if err != nil {
		return env.report(err)
	}

	favs, err := env.Favorites(ctx)
	if err != nil {
		return err
	}
	set, err := favs.Set(ctx)
	if err != nil {
		return err
	}

	// The product record carries denormalized names; no catalog fetch needed
	cat := &storefront.Catalog{}
	showProduct(env.Out, api, cat, *p, storefront.NewCarousel(nil), set[p.ID])
	for i, image := range p.Images {
		fmt.Fprintf(env.Out, "  %d. %s\n", i+1, api.ImageURL(image))
	}
	return nil
}

// NewFavoriteCmd creates the favorite command
func NewFavoriteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorite <product-id>",
		Short: "Toggle a product in your favorites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFavorite(cmd, args[0])
		},
	}

	return withRoute(cmd, flows.HomePath)
}

func runFavorite(cmd *cobra.Command, id string) error {
	env := envFrom(cmd)
	ctx := cmd.Context()

	api, err := env.API()
	if err != nil {
		return err
	}
	p, err := api.Products().GetByID(ctx, id)
	if err != nil {
		return env.report(err)
	}

	favs, err := env.Favorites(ctx)
	if err != nil {
		return err
	}
	on, err := favs.Toggle(ctx, p.ID)
	if err != nil {
		return err
	}

	if on {
		fmt.Fprintf(env.Out, "★ Added %s to favorites\n", p.Name)
	} else {
		fmt.Fprintf(env.Out, "Removed %s from favorites\n", p.Name)
	}
	return nil
}
