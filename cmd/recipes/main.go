package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"recetario/internal/config"
	"recetario/internal/db"
	applog "recetario/internal/log"
	"recetario/internal/recipes"
	"recetario/models"
)

// exitErr carries a numeric exit code through the cobra error path.
type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

func codeError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}

// classify maps catalog errors onto exit codes: 2 for bad input, 1 otherwise.
func classify(action string, err error) error {
	if recipes.IsValidation(err) {
		return codeError(2, "%s: %s", action, err)
	}
	return codeError(1, "%s: %s", action, err)
}

type recipeFlags struct {
	title       string
	description string
	ingredients []string
}

// app holds what every subcommand needs once the database is open.
type app struct {
	databaseURL string
	database    *gorm.DB
	catalog     *recipes.Catalog
}

func main() {
	applog.SetOutput(os.Stderr)

	a := &app{}
	err := newRootCmd(a).ExecuteContext(context.Background())
	if closeErr := a.close(); closeErr != nil {
		fmt.Fprintln(os.Stderr, "Error: close database:", closeErr)
	}
	if err != nil {
		var ee *exitErr
		if errors.As(err, &ee) {
			fmt.Fprintln(os.Stderr, "Error:", ee.msg)
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "recipes",
		Short:         "Manage the recipe collection from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&a.databaseURL, "database", "", "Database URL or sqlite file (defaults to DATABASE_URL)")

	root.AddCommand(
		newListCmd(a),
		newShowCmd(a),
		newAddCmd(a),
		newEditCmd(a),
		newDeleteCmd(a),
		newExportCmd(a),
		newImportCmd(a),
	)
	return root
}

func (a *app) open(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return codeError(1, "load config: %s", err)
	}
	if err := applog.SetLevel(cfg.Logging.Level); err != nil {
		return codeError(1, "log level: %s", err)
	}
	if strings.TrimSpace(a.databaseURL) != "" {
		cfg.Database.URL = a.databaseURL
	}

	database, store, err := db.Configure(ctx, cfg.Database)
	if err != nil {
		return codeError(1, "open database: %s", err)
	}

	a.database = database
	a.catalog = recipes.NewCatalog(store, recipes.NewBuilder(), recipes.EditPolicy{
		RequireIngredients: cfg.Recipes.RequireIngredientsOnEdit,
	})
	return nil
}

func (a *app) close() error {
	if a.database == nil {
		return nil
	}
	err := db.Close(a.database)
	a.database = nil
	a.catalog = nil
	return err
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all recipes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a.catalog.Recipes(cmd.Context())
			if err != nil {
				return classify("list recipes", err)
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No recipes yet.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tINGREDIENTS")
			for _, recipe := range list {
				fmt.Fprintf(tw, "%d\t%s\t%d\n", recipe.ID, recipe.Title, recipe.IngredientCount())
			}
			return tw.Flush()
		},
	}
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one recipe with its ingredients",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			recipe, err := a.catalog.Recipe(cmd.Context(), id)
			if err != nil {
				return classify("show recipe", err)
			}
			printRecipe(cmd.OutOrStdout(), recipe)
			return nil
		},
	}
}

func newAddCmd(a *app) *cobra.Command {
	var flags recipeFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new recipe",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			created, err := a.catalog.Create(cmd.Context(), recipes.Draft{
				Title:       flags.title,
				Description: flags.description,
				Ingredients: parseIngredients(flags.ingredients),
			})
			if err != nil {
				return classify("add recipe", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added recipe %d (%s)\n", created.ID, created.Title)
			return nil
		},
	}
	bindRecipeFlags(cmd, &flags)
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	var flags recipeFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Replace a recipe; omitted flags keep the current values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			current, err := a.catalog.Recipe(cmd.Context(), id)
			if err != nil {
				return classify("edit recipe", err)
			}

			draft := draftFrom(current)
			if cmd.Flags().Changed("title") {
				draft.Title = flags.title
			}
			if cmd.Flags().Changed("description") {
				draft.Description = flags.description
			}
			if cmd.Flags().Changed("ingredient") {
				draft.Ingredients = parseIngredients(flags.ingredients)
			}

			updated, err := a.catalog.Edit(cmd.Context(), id, draft)
			if err != nil {
				return classify("edit recipe", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved recipe %d (%s)\n", updated.ID, updated.Title)
			return nil
		},
	}
	bindRecipeFlags(cmd, &flags)
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.catalog.Remove(cmd.Context(), id); err != nil {
				return classify("delete recipe", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted recipe %d\n", id)
			return nil
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every recipe as a JSON array",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := a.catalog.Export(cmd.Context())
			if err != nil {
				return classify("export recipes", err)
			}
			if out == "" || out == "-" {
				_, err := cmd.OutOrStdout().Write(append(payload, '\n'))
				return err
			}
			if err := os.WriteFile(out, payload, 0o644); err != nil {
				return codeError(1, "write export: %s", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported recipes to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Write to this file instead of stdout (suggested name "+recipes.ExportFileName+")")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Add every recipe from a JSON export as new records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return codeError(1, "read import: %s", err)
			}

			added, err := a.catalog.Import(cmd.Context(), data)
			if err != nil {
				return classify("import recipes", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d recipes\n", len(added))
			return nil
		},
	}
}

func bindRecipeFlags(cmd *cobra.Command, flags *recipeFlags) {
	f := cmd.Flags()
	f.StringVar(&flags.title, "title", "", "Recipe title")
	f.StringVar(&flags.description, "description", "", "Free-text preparation notes")
	f.StringArrayVar(&flags.ingredients, "ingredient", nil, "Ingredient as name[:quantity[:unit]] (may be repeated)")
}

func parseID(value string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(value), 10, 64)
	if err != nil || id == 0 {
		return 0, codeError(2, "invalid recipe id %q", value)
	}
	return uint(id), nil
}

// parseIngredients reads name[:quantity[:unit]] values. Blank names are kept so
// the builder applies the usual filtering.
func parseIngredients(values []string) []recipes.IngredientInput {
	inputs := make([]recipes.IngredientInput, 0, len(values))
	for _, value := range values {
		parts := strings.SplitN(value, ":", 3)
		input := recipes.IngredientInput{Name: parts[0]}
		if len(parts) > 1 {
			input.Specification = parts[1]
		}
		if len(parts) > 2 {
			input.Unit = parts[2]
		}
		inputs = append(inputs, input)
	}
	return inputs
}

func draftFrom(recipe models.Recipe) recipes.Draft {
	inputs := make([]recipes.IngredientInput, len(recipe.Ingredients))
	for i, ingredient := range recipe.Ingredients {
		inputs[i] = recipes.IngredientInput{Name: ingredient.Name, Specification: ingredient.SpecificationText(), Unit: ingredient.Unit}
	}
	return recipes.Draft{Title: recipe.Title, Description: recipe.Description, Ingredients: inputs}
}

func printRecipe(w io.Writer, recipe models.Recipe) {
	fmt.Fprintf(w, "%s (#%d)\n", recipe.Title, recipe.ID)
	if strings.TrimSpace(recipe.Description) != "" {
		fmt.Fprintf(w, "\n%s\n", recipe.Description)
	}
	fmt.Fprintln(w)
	for _, ingredient := range recipe.Ingredients {
		fmt.Fprintf(w, "- %s\n", ingredient.Label())
	}
}
