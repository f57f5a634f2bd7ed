// Package cli is the command-line front end over the QA and library services.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"bookbrain/internal/service"
)

var (
	qaService      service.QAService
	libraryService service.LibraryService
)

// Persistent flags shared by every subcommand.
var (
	bookID     string
	jsonOutput bool
)

var errNotConfigured = errors.New("services not configured")

var rootCmd = &cobra.Command{
	Use:   "bookbrain",
	Short: "Ask questions about your books",
	Long: `BookBrain answers questions from stored book text, learns from your
feedback on its answers and generates summaries, reviews and quizzes.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&bookID, "book", "b", "", "book id to operate on")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output results as JSON")
}

// SetServices installs the services the commands call.
func SetServices(qa service.QAService, library service.LibraryService) {
	qaService = qa
	libraryService = library
}

// Root exposes the root command, mainly so callers can attach a context.
func Root() *cobra.Command {
	return rootCmd
}

func requireBook() error {
	if bookID == "" {
		return errors.New("--book is required")
	}
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
