package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/credence/internal/model"
	"github.com/ppiankov/credence/internal/verify"
	"github.com/ppiankov/credence/internal/worker"
)

var (
	concurrency  int
	batchMode    string
	batchOutput  string
	batchTimeout time.Duration
)

// batchResult is one line of the batch output file
type batchResult struct {
	Text    string         `json:"text,omitempty"`
	URL     string         `json:"url,omitempty"`
	Outcome *model.Outcome `json:"outcome,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Verify many claims or URLs from a file in parallel",
	Long: `Batch verifies every line of a file concurrently:
- One claim or URL per line; "text<TAB>url" pairs a claim with its source
- Blank lines and lines starting with # are skipped, duplicates are dropped
- All requests share one blacklist, so a URL blacklisted by one line
  rejects later lines for the same URL

Example:
  credence batch claims.txt
  credence batch claims.txt --concurrency 8 --mode rule --output results.jsonl`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default: concurrency.workers)")
	batchCmd.Flags().StringVar(&batchMode, "mode", "", "structured report mode (rule, llm, hybrid)")
	batchCmd.Flags().StringVar(&batchOutput, "output", "", "write one JSON result per line to this file")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
}

func runBatch(cmd *cobra.Command, args []string) (err error) {
	file := args[0]
	mode, err := model.ParseMode(batchMode)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	workers := concurrency
	if workers <= 0 {
		workers = a.cfg.Concurrency.Workers
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Credence Batch Verification\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", workers)
	fmt.Fprintf(os.Stderr, "  Mode:         %s\n", modeName(mode))
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	processor := worker.NewBatchProcessor(a.orchestrator, workers)
	results, err := processor.ProcessFile(ctx, file, mode)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	var out *os.File
	if batchOutput != "" {
		out, err = os.Create(batchOutput)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer func() {
			if closeErr := out.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("close output file: %w", closeErr)
			}
		}()
	}

	var ok, rejected, unavailable, failed int
	for _, result := range results {
		label := result.Request.Text
		if result.Request.URL != "" {
			label = result.Request.URL
		}
		line := batchResult{Text: result.Request.Text, URL: result.Request.URL, Outcome: result.Outcome}

		switch {
		case result.Error != nil:
			if errors.Is(result.Error, verify.ErrServiceUnavailable) {
				unavailable++
			} else {
				failed++
			}
			line.Error = result.Error.Error()
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", truncateLabel(label), result.Error)
		case result.Outcome.IsRejected():
			rejected++
			fmt.Fprintf(os.Stderr, "⊘ %s (blacklisted, score %d)\n", truncateLabel(label), result.Outcome.Rejected.CredibilityScore)
		default:
			ok++
			fmt.Fprintf(os.Stderr, "✓ %s (%s, safety %d/100)\n", truncateLabel(label), result.Outcome.Verdict.Label, result.Outcome.Verdict.SafetyScore)
		}

		if out != nil {
			if err := writeJSONLine(out, line); err != nil {
				return fmt.Errorf("write result: %w", err)
			}
		}
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:        %d\n", len(results))
	fmt.Fprintf(os.Stderr, "  Verified:     %d\n", ok)
	fmt.Fprintf(os.Stderr, "  Blacklisted:  %d\n", rejected)
	fmt.Fprintf(os.Stderr, "  Unavailable:  %d\n", unavailable)
	fmt.Fprintf(os.Stderr, "  Failures:     %d\n", failed)
	if batchOutput != "" {
		fmt.Fprintf(os.Stderr, "  Output:       %s\n", batchOutput)
	}
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

func modeName(m model.Mode) string {
	if m == model.ModeNone {
		return "none"
	}
	return string(m)
}

func truncateLabel(s string) string {
	r := []rune(s)
	if len(r) > 60 {
		return string(r[:57]) + "..."
	}
	return s
}
