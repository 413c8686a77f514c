// Package sentences implements the contribution-cap report command.
package sentences

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/voicecorpus/voicecorpus-go/internal/conf"
	"github.com/voicecorpus/voicecorpus-go/internal/datastore"
	"github.com/voicecorpus/voicecorpus-go/internal/review"
)

// Command creates the sentences subcommand. It reports the distinct
// contributor count per active sentence and whether the cap is reached.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sentences",
		Short: "Report per-sentence contributor counts against the cap",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := datastore.New(settings)
			if store == nil {
				return fmt.Errorf("no database output enabled in configuration")
			}
			if err := store.Open(); err != nil {
				return fmt.Errorf("failed to open datastore: %w", err)
			}
			defer func() { _ = store.Close() }()

			aggregator := review.NewAggregator(store, settings)

			sentences, err := store.GetActiveSentences(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to fetch sentences: %w", err)
			}

			contributors, err := aggregator.ContributorsBySentence(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to aggregate contributions: %w", err)
			}

			sort.Slice(sentences, func(i, j int) bool {
				return len(contributors[sentences[i].Text]) > len(contributors[sentences[j].Text])
			})

			contributionCap := aggregator.ContributionCap()
			capped := 0
			fmt.Printf("%-14s %-8s %s\n", "CONTRIBUTORS", "CAPPED", "SENTENCE")
			for i := range sentences {
				count := len(contributors[sentences[i].Text])
				mark := ""
				if count >= contributionCap {
					mark = "yes"
					capped++
				}
				fmt.Printf("%-14d %-8s %s\n", count, mark, sentences[i].Text)
			}
			fmt.Printf("%d sentence(s), %d at cap (%d contributors)\n", len(sentences), capped, contributionCap)
			return nil
		},
	}

	return cmd
}
