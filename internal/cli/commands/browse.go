package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/branchd-dev/storefront/internal/cli/client"
	"github.com/branchd-dev/storefront/internal/flows"
	"github.com/branchd-dev/storefront/internal/models"
	"github.com/branchd-dev/storefront/internal/storefront"
)

// NewBrowseCmd creates the browse command
func NewBrowseCmd() *cobra.Command {
	var (
		brands, types []string
		favorites     bool
		interactive   bool
	)

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "List the product catalog",
		Long: `List the product catalog.

Filters can be repeated and take names or ids:
  $ storefront browse --brand Acme --brand Globex --type Chair
  $ storefront browse --favorites
  $ storefront browse --interactive   # page through images, toggle favorites`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd, brands, types, favorites, interactive)
		},
	}

	cmd.Flags().StringSliceVar(&brands, "brand", nil, "Only show products of these brands")
	cmd.Flags().StringSliceVar(&types, "type", nil, "Only show products of these product types")
	cmd.Flags().BoolVar(&favorites, "favorites", false, "Only show favorite products")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Browse interactively")

	return withRoute(cmd, flows.HomePath)
}

// loadCatalog fetches the catalog. Partial failures are notified and the rest is
// returned; a failed product list is an error.
func (e *Env) loadCatalog(cmd *cobra.Command) (*storefront.Catalog, error) {
	api, err := e.API()
	if err != nil {
		return nil, err
	}
	loader := storefront.Loader{
		Products: api.Products(),
		Types:    api.ProductTypes(),
		Brands:   api.Brands(),
	}

	cat, err := loader.Load(cmd.Context())
	if err != nil {
		e.Logger.Warn().Err(err).Msg("Catalog load incomplete")
		if cat.Products == nil {
			return nil, e.report(err)
		}
		e.Notifier.Error(client.Message(err))
	}
	return cat, nil
}

func runBrowse(cmd *cobra.Command, brandValues, typeValues []string, favoritesOnly, interactive bool) error {
	env := envFrom(cmd)
	ctx := cmd.Context()

	cat, err := env.loadCatalog(cmd)
	if err != nil {
		return err
	}

	filter := storefront.Filter{FavoritesOnly: favoritesOnly}
	if filter.BrandIDs, err = cat.BrandIDs(brandValues); err != nil {
		return err
	}
	if filter.TypeIDs, err = cat.TypeIDs(typeValues); err != nil {
		return err
	}

	favs, err := env.Favorites(ctx)
	if err != nil {
		return err
	}
	set, err := favs.Set(ctx)
	if err != nil {
		return err
	}

	products := filter.Apply(cat.Products, set)

	store, err := env.Session(ctx)
	if err != nil {
		return err
	}
	if store.Session().User.IsAdmin() {
		fmt.Fprintln(env.Out, "Admin Panel: storefront admin")
	}

	if interactive {
		return browseInteractive(env, cmd, cat, products, favs)
	}

	if len(products) == 0 {
		fmt.Fprintln(env.Out, "No products found.")
		return nil
	}
	printProducts(env.Out, cat, products, set)
	return nil
}

func printProducts(out io.Writer, cat *storefront.Catalog, products []models.Product, favorites map[string]bool) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tBRAND\tTYPE\tPRICE\tIMAGES\tFAVORITE")
	fmt.Fprintln(w, "──\t────\t─────\t────\t─────\t──────\t────────")

	for _, p := range products {
		fav := ""
		if favorites[p.ID] {
			fav = "★"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			p.ID,
			p.Name,
			cat.BrandName(p),
			cat.TypeName(p),
			formatPrice(p.Price),
			len(p.Images),
			fav,
		)
	}

	w.Flush()
}

func formatPrice(price float64) string {
	return fmt.Sprintf("$%.2f", price)
}

const (
	actionNext     = "Next image"
	actionPrev     = "Previous image"
	actionFavorite = "Toggle favorite"
	actionBack     = "Back"
	actionQuit     = "Quit"
)

func browseInteractive(env *Env, cmd *cobra.Command, cat *storefront.Catalog, products []models.Product, favs *storefront.Favorites) error {
	ctx := cmd.Context()
	api, err := env.API()
	if err != nil {
		return err
	}
	carousel := storefront.NewCarousel(products)

	for {
		set, err := favs.Set(ctx)
		if err != nil {
			return err
		}
		labels := make([]string, 0, len(products)+1)
		for _, p := range products {
			label := fmt.Sprintf("%s · %s · %s", p.Name, cat.BrandName(p), formatPrice(p.Price))
			if set[p.ID] {
				label += " ★"
			}
			labels = append(labels, label)
		}
		labels = append(labels, actionQuit)

		index, err := env.Prompter.Select("Products", labels)
		if err != nil {
			return err
		}
		if index == len(products) {
			return nil
		}
		p := products[index]

		for back := false; !back; {
			showProduct(env.Out, api, cat, p, carousel, set[p.ID])

			choice, err := env.Prompter.Select(p.Name, []string{actionNext, actionPrev, actionFavorite, actionBack})
			if err != nil {
				return err
			}
			switch choice {
			case 0:
				carousel.Next(p.ID)
			case 1:
				carousel.Prev(p.ID)
			case 2:
				on, err := favs.Toggle(ctx, p.ID)
				if err != nil {
					env.Notifier.Error(err.Error())
					continue
				}
				set[p.ID] = on
			default:
				back = true
			}
		}
	}
}

func showProduct(out io.Writer, api *client.Client, cat *storefront.Catalog, p models.Product, carousel *storefront.Carousel, favorite bool) {
	fmt.Fprintf(out, "\n%s\n%s\n", p.Name, strings.Repeat("─", len([]rune(p.Name))))
	fmt.Fprintf(out, "Brand:    %s\n", cat.BrandName(p))
	fmt.Fprintf(out, "Type:     %s\n", cat.TypeName(p))
	fmt.Fprintf(out, "Price:    %s\n", formatPrice(p.Price))
	if favorite {
		fmt.Fprintln(out, "Favorite: ★")
	}
	if p.Description != "" {
		fmt.Fprintf(out, "\n%s\n", p.Description)
	}
	if image, ok := carousel.Current(p.ID); ok {
		fmt.Fprintf(out, "\nImage %d/%d: %s\n", carousel.Index(p.ID)+1, len(p.Images), api.ImageURL(image))
	} else {
		fmt.Fprintln(out, "\nNo images")
	}
}
