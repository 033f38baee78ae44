package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aaweerawat2/TipitakaAi/internal/core/domain"
)

var (
	askTopK        int
	askThreshold   float64
	askCollections []string
	askUserOnly    bool
	askWithUser    bool
	askDocument    string
	askStream      bool
	askJSON        bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the Tipitaka corpus",
	Long: `Answers a natural-language question grounded in retrieved canon
passages. Every answer cites the passages it was generated from.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "maximum number of source passages (default 5)")
	askCmd.Flags().Float64VarP(&askThreshold, "threshold", "t", 0, "minimum similarity for a passage (default 0.6)")
	askCmd.Flags().StringSliceVarP(&askCollections, "collection", "c", nil, "restrict to corpus collections (pitaka names)")
	askCmd.Flags().BoolVar(&askUserOnly, "user-only", false, "search only user-imported documents")
	askCmd.Flags().BoolVar(&askWithUser, "with-user-docs", false, "also search user-imported documents")
	askCmd.Flags().StringVar(&askDocument, "document", "", "restrict user-document search to one document ID")
	askCmd.Flags().BoolVar(&askStream, "stream", false, "print the answer as it is generated")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the response as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := ensureApp(); err != nil {
		return err
	}

	opts := queryDefaults(domain.QueryOptions{
		TopK:      askTopK,
		Threshold: askThreshold,
		Filter: domain.QueryFilter{
			Collections:          askCollections,
			UserDocumentsOnly:    askUserOnly,
			IncludeUserDocuments: askWithUser,
			DocumentID:           askDocument,
		},
	})

	ctx := cmd.Context()

	if askStream && !askJSON {
		resp, err := queryService.QueryStream(ctx, args[0], opts, func(fragment string) error {
			cmd.Print(fragment)
			return nil
		})
		if err != nil {
			return fmt.Errorf("query failed: %w", err)
		}
		cmd.Println()
		printSources(cmd, resp)
		return nil
	}

	resp, err := queryService.Query(ctx, args[0], opts)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if askJSON {
		data, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal response: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(resp.Answer)
	printSources(cmd, resp)
	return nil
}

func printSources(cmd *cobra.Command, resp *domain.RAGResponse) {
	if len(resp.Sources) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for i, src := range resp.Sources {
			cmd.Printf("  [%d] %s (%.2f)\n", i+1, src.Title, src.Relevance)
		}
	}
	cmd.Println()
	cmd.Printf("Confidence: %.2f  (%.1fs)\n", resp.Confidence, resp.ProcessingTime.Seconds())
}
