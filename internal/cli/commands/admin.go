package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/branchd-dev/storefront/internal/cli/client"
	"github.com/branchd-dev/storefront/internal/models"
)

const adminRoute = "/admin"

// NewAdminCmd creates the admin command group
func NewAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage the catalog and user roles (admins only)",
	}

	cmd.AddCommand(newNamedResourceCmd(namedResource[models.Brand]{
		use:      "brands",
		singular: "brand",
		resource: (*client.Client).Brands,
		build:    func(id, name string) models.Brand { return models.Brand{ID: id, Name: name} },
		fields:   func(b models.Brand) (string, string) { return b.ID, b.Name },
	}))
	cmd.AddCommand(newNamedResourceCmd(namedResource[models.ProductType]{
		use:      "types",
		singular: "product type",
		resource: (*client.Client).ProductTypes,
		build:    func(id, name string) models.ProductType { return models.ProductType{ID: id, Name: name} },
		fields:   func(t models.ProductType) (string, string) { return t.ID, t.Name },
	}))
	cmd.AddCommand(newAdminProductsCmd())
	cmd.AddCommand(newAdminUsersCmd())

	return cmd
}

// adminToken returns the API client and the bearer token of the signed-in admin
func adminToken(cmd *cobra.Command) (*Env, *client.Client, string, error) {
	env := envFrom(cmd)
	api, err := env.API()
	if err != nil {
		return nil, nil, "", err
	}
	store, err := env.Session(cmd.Context())
	if err != nil {
		return nil, nil, "", err
	}
	return env, api, store.Session().Token, nil
}

// printMessage prints a backend success message, or fallback when it sent none
func printMessage(env *Env, msg, fallback string) {
	if msg == "" {
		msg = fallback
	}
	env.Notifier.Success(msg)
}

// namedResource describes a catalog resource whose records only carry a name
type namedResource[T any] struct {
	use      string
	singular string
	resource func(*client.Client) *client.Resource[T]
	build    func(id, name string) T
	fields   func(T) (id, name string)
}

func newNamedResourceCmd[T any](r namedResource[T]) *cobra.Command {
	cmd := &cobra.Command{
		Use:   r.use,
		Short: fmt.Sprintf("Manage %ss", r.singular),
	}

	cmd.AddCommand(withRoute(&cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   fmt.Sprintf("List all %ss", r.singular),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, api, _, err := adminToken(cmd)
			if err != nil {
				return err
			}
			items, err := r.resource(api).ListAll(cmd.Context())
			if err != nil {
				return env.report(err)
			}
			if len(items) == 0 {
				fmt.Fprintf(env.Out, "No %ss found.\n", r.singular)
				return nil
			}

			w := tabwriter.NewWriter(env.Out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME")
			fmt.Fprintln(w, "──\t────")
			for _, item := range items {
				id, name := r.fields(item)
				fmt.Fprintf(w, "%s\t%s\n", id, name)
			}
			return w.Flush()
		},
	}, adminRoute))

	cmd.AddCommand(withRoute(&cobra.Command{
		Use:   "add <name>",
		Short: fmt.Sprintf("Add a %s", r.singular),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, api, token, err := adminToken(cmd)
			if err != nil {
				return err
			}
			msg, err := r.resource(api).Create(cmd.Context(), token, r.build("", args[0]))
			if err != nil {
				return env.report(err)
			}
			printMessage(env, msg, fmt.Sprintf("Added %s %s", r.singular, args[0]))
			return nil
		},
	}, adminRoute))

	cmd.AddCommand(withRoute(&cobra.Command{
		Use:   "update <id> <name>",
		Short: fmt.Sprintf("Rename a %s", r.singular),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, api, token, err := adminToken(cmd)
			if err != nil {
				return err
			}
			msg, err := r.resource(api).Update(cmd.Context(), token, args[0], r.build(args[0], args[1]))
			if err != nil {
				return env.report(err)
			}
			printMessage(env, msg, fmt.Sprintf("Updated %s %s", r.singular, args[0]))
			return nil
		},
	}, adminRoute))

	cmd.AddCommand(withRoute(&cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   fmt.Sprintf("Delete a %s", r.singular),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, api, token, err := adminToken(cmd)
			if err != nil {
				return err
			}
			msg, err := r.resource(api).Delete(cmd.Context(), token, args[0])
			if err != nil {
				return env.report(err)
			}
			printMessage(env, msg, fmt.Sprintf("Deleted %s %s", r.singular, args[0]))
			return nil
		},
	}, adminRoute))

	return cmd
}

// productFlags are the editable fields of a product
type productFlags struct {
	name        string
	description string
	price       float64
	productType string
	brand       string
	images      []string
	deleted     []string
}

func (f *productFlags) register(cmd *cobra.Command, update bool) {
	cmd.Flags().StringVar(&f.name, "name", "", "Product name")
	cmd.Flags().StringVar(&f.description, "description", "", "Product description")
	cmd.Flags().Float64Var(&f.price, "price", 0, "Price")
	cmd.Flags().StringVar(&f.productType, "type", "", "Product type name or id")
	cmd.Flags().StringVar(&f.brand, "brand", "", "Brand name or id")
	cmd.Flags().StringSliceVar(&f.images, "image", nil, "Image file to upload (repeatable)")
	if update {
		cmd.Flags().StringSliceVar(&f.deleted, "delete-image", nil, "Stored image name to remove (repeatable)")
	}
}

// input builds the multipart body. base holds the current product on update.
func (f *productFlags) input(env *Env, cmd *cobra.Command, base *models.Product) (client.ProductInput, func(), error) {
	in := client.ProductInput{}
	if base != nil {
		in = client.ProductInput{
			Name:          base.Name,
			Description:   base.Description,
			Price:         base.Price,
			ProductTypeID: base.ProductTypeID,
			BrandID:       base.BrandID,
		}
	}

	flags := cmd.Flags()
	if flags.Changed("name") {
		in.Name = f.name
	}
	if flags.Changed("description") {
		in.Description = f.description
	}
	if flags.Changed("price") {
		in.Price = f.price
	}

	if flags.Changed("type") || flags.Changed("brand") {
		cat, err := env.loadCatalog(cmd)
		if err != nil {
			return in, nil, err
		}
		if flags.Changed("type") {
			ids, err := cat.TypeIDs([]string{f.productType})
			if err != nil {
				return in, nil, err
			}
			in.ProductTypeID = ids[0]
		}
		if flags.Changed("brand") {
			ids, err := cat.BrandIDs([]string{f.brand})
			if err != nil {
				return in, nil, err
			}
			in.BrandID = ids[0]
		}
	}

	if base != nil {
		deleted := make(map[string]bool, len(f.deleted))
		for _, name := range f.deleted {
			deleted[name] = true
		}
		for _, name := range base.Images {
			if !deleted[name] {
				in.ExistingImages = append(in.ExistingImages, name)
			}
		}
		in.DeletedImages = f.deleted
	}

	var files []*os.File
	closeAll := func() {
		for _, file := range files {
			file.Close()
		}
	}
	for _, path := range f.images {
		file, err := os.Open(path)
		if err != nil {
			closeAll()
			return in, nil, fmt.Errorf("failed to open image: %w", err)
		}
		files = append(files, file)
		in.NewImages = append(in.NewImages, client.Upload{Filename: filepath.Base(path), Content: file})
	}

	return in, closeAll, nil
}

func newAdminProductsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Manage products",
	}

	cmd.AddCommand(withRoute(&cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List all products",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := envFrom(cmd)
			cat, err := env.loadCatalog(cmd)
			if err != nil {
				return err
			}
			if len(cat.Products) == 0 {
				fmt.Fprintln(env.Out, "No products found.")
				return nil
			}
			printProducts(env.Out, cat, cat.Products, nil)
			return nil
		},
	}, adminRoute))

	var addFlags productFlags
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, api, token, err := adminToken(cmd)
			if err != nil {
				return err
			}
			if addFlags.name == "" {
				return fmt.Errorf("--name is required")
			}
			if !cmd.Flags().Changed("type") || !cmd.Flags().Changed("brand") {
				return fmt.Errorf("--type and --brand are required")
			}
			in, closeAll, err := addFlags.input(env, cmd, nil)
			if err != nil {
				return err
			}
			defer closeAll()

			msg, err := api.Products().Create(cmd.Context(), token, in)
			if err != nil {
				return env.report(err)
			}
			printMessage(env, msg, "Added product "+in.Name)
			return nil
		},
	}
	addFlags.register(add, false)
	cmd.AddCommand(withRoute(add, adminRoute))

	var updateFlags productFlags
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a product; unset flags keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, api, token, err := adminToken(cmd)
			if err != nil {
				return err
			}
			current, err := api.Products().GetByID(cmd.Context(), args[0])
			if err != nil {
				return env.report(err)
			}
			in, closeAll, err := updateFlags.input(env, cmd, current)
			if err != nil {
				return err
			}
			defer closeAll()

			msg, err := api.Products().Update(cmd.Context(), token, args[0], in)
			if err != nil {
				return env.report(err)
			}
			printMessage(env, msg, "Updated product "+in.Name)
			return nil
		},
	}
	updateFlags.register(update, true)
	cmd.AddCommand(withRoute(update, adminRoute))

	cmd.AddCommand(withRoute(&cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a product",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, api, token, err := adminToken(cmd)
			if err != nil {
				return err
			}
			msg, err := api.Products().Delete(cmd.Context(), token, args[0])
			if err != nil {
				return env.report(err)
			}
			printMessage(env, msg, "Deleted product "+args[0])
			return nil
		},
	}, adminRoute))

	return cmd
}

func newAdminUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user roles",
	}

	cmd.AddCommand(withRoute(&cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List all users",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, api, token, err := adminToken(cmd)
			if err != nil {
				return err
			}
			users, err := api.ListUsers(cmd.Context(), token)
			if err != nil {
				return env.report(err)
			}

			w := tabwriter.NewWriter(env.Out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE")
			fmt.Fprintln(w, "──\t────\t─────\t────")
			for _, u := range users {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.ID, u.FullName(), u.Email, u.Role)
			}
			return w.Flush()
		},
	}, adminRoute))

	cmd.AddCommand(withRoute(&cobra.Command{
		Use:   "set-role <user-id> <user|admin>",
		Short: "Change the role of a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := models.ParseRole(args[1])
			if err != nil || role == models.RoleNone {
				return fmt.Errorf("invalid role %q, must be one of: user, admin", args[1])
			}
			env, api, token, err := adminToken(cmd)
			if err != nil {
				return err
			}
			msg, err := api.UpdateUserRole(cmd.Context(), token, args[0], role)
			if err != nil {
				return env.report(err)
			}
			printMessage(env, msg, fmt.Sprintf("User %s is now %s", args[0], role))
			return nil
		},
	}, adminRoute))

	return cmd
}
