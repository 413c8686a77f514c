// Package queue implements the reviewer work-queue command.
package queue

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/voicecorpus/voicecorpus-go/internal/conf"
	"github.com/voicecorpus/voicecorpus-go/internal/datastore"
	"github.com/voicecorpus/voicecorpus-go/internal/observability/metrics"
	"github.com/voicecorpus/voicecorpus-go/internal/review"
)

// Command creates the queue subcommand. It prints the recordings the given
// reviewer is currently eligible to act on.
func Command(settings *conf.Settings) *cobra.Command {
	var reviewerID uint
	var status string

	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Print a reviewer's eligible recording queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			if reviewerID == 0 {
				return fmt.Errorf("--reviewer is required")
			}

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

			service := review.NewService(store, settings)
			service.SetMetrics(reviewMetrics)
			eligible, err := service.EligibleFor(cmd.Context(), reviewerID, status)
			if err != nil {
				return fmt.Errorf("failed to compute eligible queue: %w", err)
			}

			if len(eligible) == 0 {
				fmt.Println("No eligible recordings.")
				return nil
			}

			fmt.Printf("%-8s %-12s %-20s %s\n", "ID", "CONTRIBUTOR", "CREATED", "SENTENCE")
			for i := range eligible {
				rec := &eligible[i]
				fmt.Printf("%-8d %-12d %-20s %s\n",
					rec.ID, rec.PersonID,
					rec.CreatedAt.Format("2006-01-02 15:04:05"),
					rec.SentenceText)
			}
			fmt.Printf("%d eligible recording(s)\n", len(eligible))
			return nil
		},
	}

	cmd.Flags().UintVar(&reviewerID, "reviewer", 0, "Canonical person ID of the reviewer")
	cmd.Flags().StringVar(&status, "status", datastore.StatusPending, "Recording status to list")

	return cmd
}
