package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"bookbrain/internal/service"
)

var (
	feedbackQuestion string
	feedbackAnswer   string
	feedbackLabel    string
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Record or list answer feedback",
}

var feedbackRecordCmd = &cobra.Command{
	Use:   "record",
	Short: "Rate an answer as correct or incorrect",
	Long: `Appends a rating for a question/answer pair. Future answers whose passages
contain a rated answer are ranked up (Yes) or down (No).`,
	Args: cobra.NoArgs,
	RunE: runFeedbackRecord,
}

var feedbackListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show all recorded feedback",
	Args:  cobra.NoArgs,
	RunE:  runFeedbackList,
}

func init() {
	feedbackRecordCmd.Flags().StringVarP(&feedbackQuestion, "question", "q", "", "question that was asked")
	feedbackRecordCmd.Flags().StringVarP(&feedbackAnswer, "answer", "a", "", "answer being rated")
	feedbackRecordCmd.Flags().StringVarP(&feedbackLabel, "label", "l", "", `rating, "Yes" or "No"`)
	_ = feedbackRecordCmd.MarkFlagRequired("label")
	feedbackCmd.AddCommand(feedbackRecordCmd)
	feedbackCmd.AddCommand(feedbackListCmd)
	rootCmd.AddCommand(feedbackCmd)
}

func runFeedbackRecord(cmd *cobra.Command, _ []string) error {
	if qaService == nil {
		return errNotConfigured
	}

	fb, err := qaService.RecordFeedback(cmd.Context(), service.FeedbackRequest{
		Question: feedbackQuestion,
		Answer:   feedbackAnswer,
		Label:    feedbackLabel,
	})
	if err != nil {
		return fmt.Errorf("failed to record feedback: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd, fb)
	}
	cmd.Printf("Recorded feedback %s (correct: %t)\n", fb.ID, fb.IsCorrect)
	return nil
}

func runFeedbackList(cmd *cobra.Command, _ []string) error {
	if qaService == nil {
		return errNotConfigured
	}

	entries, err := qaService.ListFeedback(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list feedback: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd, entries)
	}
	if len(entries) == 0 {
		cmd.Println("No feedback recorded.")
		return nil
	}
	for _, fb := range entries {
		mark := "No"
		if fb.IsCorrect {
			mark = "Yes"
		}
		cmd.Printf("  [%s] %s\n", mark, snippet(fb.Question, 80))
		cmd.Printf("        %s\n", snippet(fb.Answer, 80))
	}
	return nil
}
