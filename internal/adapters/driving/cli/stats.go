package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show corpus and document statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if err := ensureApp(); err != nil {
		return err
	}

	ctx := cmd.Context()
	stats, err := queryService.Stats(ctx)
	if err != nil {
		return fmt.Errorf("reading stats: %w", err)
	}

	if statsJSON {
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal stats: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Corpus chunks:  %d\n", stats.CorpusChunks)
	cmd.Printf("User chunks:    %d\n", stats.UserChunks)
	cmd.Printf("User documents: %d\n", stats.Documents)
	if queryService.IsReady(ctx) {
		cmd.Println("Engine ready.")
	} else {
		cmd.Println("Engine not ready: corpus or models missing.")
	}
	return nil
}
