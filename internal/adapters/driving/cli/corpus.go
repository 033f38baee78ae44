package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Manage the canonical corpus",
}

var corpusImportCmd = &cobra.Command{
	Use:   "import [database]",
	Short: "Import a pre-embedded corpus database",
	Long: `Copies chunks and embeddings from a distributed corpus database
into the local store. The database must carry embeddings produced with
the configured embedding model.`,
	Args: cobra.ExactArgs(1),
	RunE: runCorpusImport,
}

func init() {
	corpusCmd.AddCommand(corpusImportCmd)
	rootCmd.AddCommand(corpusCmd)
}

func runCorpusImport(cmd *cobra.Command, args []string) error {
	if err := ensureApp(); err != nil {
		return err
	}

	count, err := store.ImportCorpusDB(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("importing corpus: %w", err)
	}

	cmd.Printf("Imported %d corpus chunks\n", count)
	return nil
}
