package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aaweerawat2/TipitakaAi/internal/core/domain"
)

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "Manage user-imported documents",
	Long:  `Import, list or delete personal documents searched alongside the corpus.`,
}

var documentsImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import a text file as a searchable document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsImport,
}

var documentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List imported documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentsList,
}

var documentsDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document and its chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsDelete,
}

// importTitle overrides the document name derived from the file name.
var importTitle string

func init() {
	documentsImportCmd.Flags().StringVar(&importTitle, "title", "", "document title (default: file name)")

	documentsCmd.AddCommand(documentsImportCmd)
	documentsCmd.AddCommand(documentsListCmd)
	documentsCmd.AddCommand(documentsDeleteCmd)
	rootCmd.AddCommand(documentsCmd)
}

func runDocumentsImport(cmd *cobra.Command, args []string) error {
	if err := ensureApp(); err != nil {
		return err
	}

	path := args[0]
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	name := importTitle
	if name == "" {
		name = filepath.Base(path)
	}

	doc, err := documentService.Import(cmd.Context(), name, ext, string(content))
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	if doc.Status == domain.DocumentStatusError {
		return fmt.Errorf("import failed: %s", doc.Error)
	}

	cmd.Printf("Imported %s (%d chunks)\n", doc.ID, doc.ChunkCount)
	return nil
}

func runDocumentsList(cmd *cobra.Command, _ []string) error {
	if err := ensureApp(); err != nil {
		return err
	}

	docs, err := documentService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents imported.")
		return nil
	}

	for _, doc := range docs {
		cmd.Printf("  %s  %-30s  %s  %d chunks\n",
			doc.ID, doc.Name, doc.Status, doc.ChunkCount)
		if doc.Status == domain.DocumentStatusError && doc.Error != "" {
			cmd.Printf("      error: %s\n", doc.Error)
		}
	}
	return nil
}

func runDocumentsDelete(cmd *cobra.Command, args []string) error {
	if err := ensureApp(); err != nil {
		return err
	}

	if err := documentService.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	cmd.Printf("Deleted %s\n", args[0])
	return nil
}
