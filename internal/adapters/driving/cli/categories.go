package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Query the marketplace category tree",
}

var categoriesLookupCmd = &cobra.Command{
	Use:   "lookup <path>",
	Short: "Resolve a category path to its id",
	Long: `Walks the category tree along a path such as
"Acessórios para Veículos > Peças de Carros e Caminhonetes > Freios"
and prints the id of the last level. Names are matched ignoring case.`,
	Args: cobra.ExactArgs(1),
	RunE: runCategoriesLookup,
}

func init() {
	categoriesCmd.AddCommand(categoriesLookupCmd)
	rootCmd.AddCommand(categoriesCmd)
}

func runCategoriesLookup(cmd *cobra.Command, args []string) error {
	if categoryFinder == nil {
		return notConfigured("category finder")
	}

	// Category endpoints are public; no token is needed.
	category, err := categoryFinder.FindByPath(cmd.Context(), domain.AccessToken{}, args[0])
	if err != nil {
		return fmt.Errorf("lookup failed: %w", err)
	}

	cmd.Printf("ID:   %s\n", category.Node.ID)
	cmd.Printf("Name: %s\n", category.Node.Name)
	if path := category.Path(); path != "" {
		cmd.Printf("Path: %s\n", path)
	}
	cmd.Printf("Leaf: %s\n", yesNo(category.IsLeaf()))
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
