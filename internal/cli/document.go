package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"bookbrain/internal/service"
	"bookbrain/internal/shelf"
)

var (
	ingestFile       string
	ingestDir        string
	ingestSourceType string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Store and index the text of a book",
	Long: `Replaces the stored text of a book and indexes it in fixed-size chunks.
Reads the text from --file, or from standard input when --file is "-".
With --dir every .txt and .md file below the directory is ingested as its own
book, named after its path.`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

var booksCmd = &cobra.Command{
	Use:   "books",
	Short: "List stored books",
	Args:  cobra.NoArgs,
	RunE:  runBooks,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestFile, "file", "f", "", `text file to ingest ("-" for stdin)`)
	ingestCmd.Flags().StringVarP(&ingestDir, "dir", "d", "", "directory of chapter files, one book per file")
	ingestCmd.Flags().StringVar(&ingestSourceType, "source-type", "", "source type recorded with the text (default chapter)")
	ingestCmd.MarkFlagsOneRequired("file", "dir")
	ingestCmd.MarkFlagsMutuallyExclusive("file", "dir")
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(booksCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	if libraryService == nil {
		return errNotConfigured
	}
	if ingestDir != "" {
		return ingestShelf(cmd, ingestDir)
	}
	if err := requireBook(); err != nil {
		return err
	}

	text, err := readInput(cmd, ingestFile)
	if err != nil {
		return err
	}

	resp, err := ingestOne(cmd, bookID, text)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd, resp)
	}
	printIngest(cmd, resp)
	return nil
}

func ingestOne(cmd *cobra.Command, id, text string) (service.PutDocumentResponse, error) {
	resp, err := libraryService.PutDocument(cmd.Context(), service.PutDocumentRequest{
		BookID:     id,
		SourceType: ingestSourceType,
		Text:       text,
	})
	if err != nil {
		return resp, fmt.Errorf("ingest of %s failed: %w", id, err)
	}
	return resp, nil
}

// ingestShelf ingests every file under dir, continuing past failures.
func ingestShelf(cmd *cobra.Command, dir string) error {
	files, err := shelf.Scan(cmd.Context(), dir, nil)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		cmd.Println("No chapter files found.")
		return nil
	}

	var (
		results []service.PutDocumentResponse
		errs    []error
	)
	for _, f := range files {
		resp, err := ingestPath(cmd, f)
		if err != nil {
			errs = append(errs, err)
			if !jsonOutput {
				cmd.Printf("  %s: %v\n", f.RelPath, err)
			}
			continue
		}
		results = append(results, resp)
		if !jsonOutput {
			printIngest(cmd, resp)
		}
	}

	if jsonOutput {
		if err := printJSON(cmd, results); err != nil {
			return err
		}
	} else {
		cmd.Printf("Ingested %d of %d files\n", len(results), len(files))
	}
	return errors.Join(errs...)
}

func ingestPath(cmd *cobra.Command, f shelf.ScannedFile) (service.PutDocumentResponse, error) {
	text, err := readInput(cmd, f.AbsPath)
	if err != nil {
		return service.PutDocumentResponse{}, err
	}
	return ingestOne(cmd, f.BookID, text)
}

func printIngest(cmd *cobra.Command, resp service.PutDocumentResponse) {
	stats := resp.Ingest.Stats
	cmd.Printf("Indexed %s: %d chunks (version %d)\n", resp.Document.BookID, resp.Ingest.Chunks, resp.Ingest.Version)
	if resp.Ingest.Chunks > 0 {
		cmd.Printf("  chunk length min=%d max=%d mean=%.0f p95=%d\n", stats.Min, stats.Max, stats.Mean, stats.P95)
	}
}

func readInput(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(data), nil
}

func runBooks(cmd *cobra.Command, _ []string) error {
	if libraryService == nil {
		return errNotConfigured
	}

	docs, err := libraryService.ListDocuments(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list books: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd, docs)
	}
	if len(docs) == 0 {
		cmd.Println("No books stored.")
		return nil
	}
	for _, doc := range docs {
		cmd.Printf("  %s (%s) updated %s\n", doc.BookID, doc.SourceType, doc.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}
