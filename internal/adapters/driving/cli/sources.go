package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/flowwatch/internal/core/domain"
)

var sourcesCategory string

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the content sources",
	Long: `Lists every catalogued source with its category, market-relevance
weight (1-10) and reach tier.`,
	Args: cobra.NoArgs,
	RunE: runSources,
}

func init() {
	sourcesCmd.Flags().StringVarP(&sourcesCategory, "category", "c", "", "only list one category (social, news, finance, tech)")
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, _ []string) error {
	if catalog == nil {
		return errors.New("source catalog not configured")
	}

	sources := catalog.All()
	if sourcesCategory != "" {
		cat, err := domain.ParseCategory(sourcesCategory)
		if err != nil {
			return err
		}
		sources = catalog.ByCategory(cat)
	}

	cmd.Println(title(fmt.Sprintf("Sources: %d", len(sources))))
	cmd.Println(headerStyle.Render(fmt.Sprintf("  %-14s %-12s %-8s %-6s %s", "ID", "NAME", "CATEGORY", "WEIGHT", "INFLUENCE")))
	for _, s := range sources {
		line := fmt.Sprintf("  %-14s %-12s %-8s %-6d %s", s.ID, s.Name, s.Category, s.Weight, s.Influence)
		if status := sourceStatus(cmd, s.ID); status != "" {
			line += "  " + status
		}
		cmd.Println(line)
	}
	return nil
}

// sourceStatus reports the last fetch outcome seen by this process.
func sourceStatus(cmd *cobra.Command, id string) string {
	if ingestion == nil {
		return ""
	}
	st, err := ingestion.Status(cmd.Context(), id)
	if err != nil || st == nil || st.LastFetch.IsZero() {
		return ""
	}
	if st.LastError != "" {
		return errorStyle.Render("last fetch failed: " + st.LastError)
	}
	return mutedStyle.Render(fmt.Sprintf("%d records at %s", st.Records, st.LastFetch.Local().Format(timeLayout)))
}
