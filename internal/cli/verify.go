package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/credence/internal/model"
)

var (
	verifyURL     string
	verifyMode    string
	verifyOrigin  string
	verifyJSON    bool
	verifyTimeout time.Duration
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify [text]",
	Short: "Verify one claim and/or source URL",
	Long: `Verify scores a claim and its source:
- Reject URLs already on the blacklist
- Classify the text and scan the source concurrently
- Optionally request a structured, claim-by-claim report (--mode)
- Fuse everything into a 0-100 safety score with reasons

Example:
  credence verify "The city council approved the new budget"
  credence verify --url https://news.example.com/story
  credence verify "Miracle cure found" --url https://example.com/a --mode hybrid --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVar(&verifyURL, "url", "", "source URL of the claim")
	verifyCmd.Flags().StringVar(&verifyMode, "mode", "", "structured report mode (rule, llm, hybrid)")
	verifyCmd.Flags().StringVar(&verifyOrigin, "origin", "", "where the text came from (text, url, image)")
	verifyCmd.Flags().BoolVar(&verifyJSON, "json", false, "print the outcome as JSON")
	verifyCmd.Flags().DurationVar(&verifyTimeout, "timeout", time.Minute, "overall verification timeout")
}

func runVerify(cmd *cobra.Command, args []string) error {
	mode, err := model.ParseMode(verifyMode)
	if err != nil {
		return err
	}

	req := model.VerificationRequest{URL: verifyURL, Mode: mode, Origin: model.Origin(verifyOrigin)}
	if len(args) == 1 {
		req.Text = args[0]
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), verifyTimeout)
	defer cancel()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	outcome, err := a.orchestrator.Verify(ctx, req)
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	if verifyJSON {
		return writeJSON(os.Stdout, outcome)
	}
	renderOutcome(os.Stdout, outcome)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeJSONLine(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}

// renderOutcome prints a human readable summary
func renderOutcome(w io.Writer, o *model.Outcome) {
	if o.IsRejected() {
		fmt.Fprintf(w, "✗ Blacklisted: %s\n", o.Rejected.NormalizedURL)
		fmt.Fprintf(w, "  Score:  %d/100 (%s)\n", o.Rejected.CredibilityScore, o.Rejected.Source)
		fmt.Fprintf(w, "  Reason: %s\n", o.Rejected.Reason)
		fmt.Fprintf(w, "  Since:  %s\n", o.Rejected.Timestamp.Format(time.RFC3339))
		return
	}

	v := o.Verdict
	fmt.Fprintf(w, "Label:        %s\n", v.Label)
	fmt.Fprintf(w, "Safety score: %d/100\n", v.SafetyScore)
	if v.SourceStatus != nil {
		fmt.Fprintf(w, "Source:       %s\n", *v.SourceStatus)
	}
	fmt.Fprintln(w, "Reasons:")
	for _, r := range v.Reasons {
		fmt.Fprintf(w, "  - %s\n", r)
	}
	if len(o.Degraded) > 0 {
		fmt.Fprintf(w, "Degraded:     %s\n", strings.Join(o.Degraded, ", "))
	}

	if r := o.Report; r != nil {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Structured report (%s via %s): %s, %d/100, confidence %.2f\n",
			r.Mode, r.Endpoint, r.Verdict, r.CredibilityScore, r.Confidence)
		for _, c := range r.Claims {
			fmt.Fprintf(w, "  %d. [%s] %s\n", c.ID, c.Judgement, c.ClaimText)
			for _, s := range c.Sources {
				fmt.Fprintf(w, "     %s\n", s.URL)
			}
		}
		for _, line := range r.Reasoning {
			fmt.Fprintf(w, "  > %s\n", line)
		}
	}
}
