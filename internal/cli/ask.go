package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"bookbrain/internal/rag"
	"bookbrain/internal/service"
)

var (
	askK     int
	askDebug bool
	searchK  int
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about a book",
	Long: `Answers a question from the book's stored text. Passages are retrieved by
similarity, re-ranked by recorded feedback and sent to the language model.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search a book's indexed passages",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	askCmd.Flags().IntVarP(&askK, "top-k", "k", 0, "number of passages sent to the model (0 uses the server default)")
	askCmd.Flags().BoolVar(&askDebug, "debug", false, "show the retrieval trace")
	searchCmd.Flags().IntVarP(&searchK, "top-k", "k", 5, "maximum number of passages")
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(searchCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if qaService == nil {
		return errNotConfigured
	}
	if err := requireBook(); err != nil {
		return err
	}

	resp, err := qaService.Ask(cmd.Context(), service.AskRequest{
		BookID:   bookID,
		Question: strings.Join(args, " "),
		K:        askK,
		Debug:    askDebug,
	})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd, resp)
	}

	cmd.Println(resp.Text)
	if resp.Status != rag.StatusAnswered {
		cmd.Printf("(status: %s)\n", resp.Status)
	}
	if resp.Debug != nil {
		cmd.Println()
		cmd.Printf("Retrieval (%s, feedback applied: %t):\n", resp.Debug.Mode, resp.Debug.FeedbackApplied)
		printCandidates(cmd, resp.Debug.RetrievedChunks)
	}
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	if qaService == nil {
		return errNotConfigured
	}
	if err := requireBook(); err != nil {
		return err
	}

	results, err := qaService.Search(cmd.Context(), service.SearchRequest{
		BookID: bookID,
		Query:  strings.Join(args, " "),
		K:      searchK,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd, results)
	}
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}
	printCandidates(cmd, results)
	return nil
}

func printCandidates(cmd *cobra.Command, candidates []rag.Candidate) {
	for i, c := range candidates {
		cmd.Printf("  [%d] sim=%.3f reward=%d score=%.3f\n", i+1, c.Similarity, c.Reward, c.AdjustedScore)
		cmd.Printf("      %s\n", snippet(c.Text, 120))
	}
}

// snippet returns the first n runes of s on one line.
func snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
