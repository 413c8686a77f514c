// Package audit implements the consistency audit command.
package audit

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/voicecorpus/voicecorpus-go/internal/conf"
	"github.com/voicecorpus/voicecorpus-go/internal/datastore"
	"github.com/voicecorpus/voicecorpus-go/internal/observability/metrics"
	"github.com/voicecorpus/voicecorpus-go/internal/review"
)

// Command creates the audit subcommand. It runs one duplicate-review and
// consistency audit pass over the store and prints the report.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Scan reviews for duplicates and repair recording state",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := datastore.New(settings)
			if store == nil {
				return fmt.Errorf("no database output enabled in configuration")
			}
			if err := store.Open(); err != nil {
				return fmt.Errorf("failed to open datastore: %w", err)
			}
			defer func() { _ = store.Close() }()

			reviewMetrics, err := metrics.NewReviewMetrics(prometheus.NewRegistry())
			if err != nil {
				return fmt.Errorf("failed to set up review metrics: %w", err)
			}

			auditor := review.NewAuditor(store)
			auditor.SetMetrics(reviewMetrics)

			report, err := auditor.Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("audit run failed: %w", err)
			}

			fmt.Printf("Audit run %s finished in %v\n", report.RunID, report.Duration)
			fmt.Printf("  reviews scanned:      %d\n", report.ReviewsScanned)
			fmt.Printf("  recordings scanned:   %d\n", report.RecordingsScanned)
			fmt.Printf("  duplicate recordings: %d\n", report.DuplicateRecordings)
			fmt.Printf("  reviews deleted:      %d\n", report.ReviewsDeleted)
			fmt.Printf("  recordings fixed:     %d\n", report.RecordingsFixed)
			if report.Clean() {
				fmt.Println("No invariant violations found.")
			}
			return nil
		},
	}

	return cmd
}
