package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"bookbrain/internal/indexer"
	"bookbrain/internal/service"
	"bookbrain/internal/study"
)

var (
	studyQuestions  int
	versionsChapter int
)

var studyCmd = &cobra.Command{
	Use:       "study [summary|review|mcqs]",
	Short:     "Generate study material for a book",
	Long:      `Generates a summary, a review or a multiple-choice quiz and stores it as the next version.`,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{study.KindSummary, study.KindReview, study.KindQuiz},
	RunE:      runStudy,
}

var versionsCmd = &cobra.Command{
	Use:   "versions [chapter|summary|review|mcqs]",
	Short: "List stored versions of a book's content",
	Args:  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{
		indexer.TypeChapter, study.KindSummary, study.KindReview, study.KindQuiz,
	},
	RunE: runVersions,
}

func init() {
	studyCmd.Flags().IntVarP(&studyQuestions, "questions", "n", 0, "quiz length (0 uses the default)")
	versionsCmd.Flags().IntVar(&versionsChapter, "chapter", -1, "restrict to one chapter (-1 lists all)")
	rootCmd.AddCommand(studyCmd)
	rootCmd.AddCommand(versionsCmd)
}

func runStudy(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errNotConfigured
	}
	if err := requireBook(); err != nil {
		return err
	}

	resp, err := libraryService.Generate(cmd.Context(), service.GenerateRequest{
		BookID:    bookID,
		Kind:      args[0],
		Questions: studyQuestions,
	})
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd, resp)
	}

	result := resp.Result
	if result.Status != study.StatusGenerated {
		cmd.Println(result.Text)
		cmd.Printf("(status: %s)\n", result.Status)
		return nil
	}

	if len(result.Questions) > 0 {
		printQuiz(cmd, result.Questions)
	} else {
		cmd.Println(result.Text)
	}
	if resp.Version != nil {
		cmd.Printf("\nStored as %s version %d\n", resp.Version.Type, resp.Version.Version)
	}
	return nil
}

func printQuiz(cmd *cobra.Command, questions []study.Question) {
	letters := []string{"A", "B", "C", "D"}
	for _, q := range questions {
		cmd.Printf("%d. %s\n", q.Number, q.Text)
		for i, opt := range q.Options {
			cmd.Printf("   %s) %s\n", letters[i], opt)
		}
		cmd.Printf("   Answer: %s\n", q.Answer)
		cmd.Printf("   %s\n\n", q.Explanation)
	}
}

func runVersions(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errNotConfigured
	}
	if err := requireBook(); err != nil {
		return err
	}

	req := service.VersionsRequest{BookID: bookID, Type: args[0]}
	if versionsChapter >= 0 {
		ch := versionsChapter
		req.Chapter = &ch
	}

	versions, err := libraryService.Versions(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("failed to list versions: %w", err)
	}

	if jsonOutput {
		if versions == nil {
			versions = []indexer.ContentVersion{}
		}
		return printJSON(cmd, versions)
	}
	if len(versions) == 0 {
		cmd.Println("No versions stored.")
		return nil
	}
	for _, v := range versions {
		ts := time.Unix(v.Timestamp, 0).UTC().Format("2006-01-02 15:04")
		cmd.Printf("  v%d ch%d %s  %s\n", v.Version, v.Chapter, ts, snippet(v.Content, 60))
	}
	return nil
}
