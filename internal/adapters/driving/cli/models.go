package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Manage local models",
	Long:  `List, unload or delete the models the engine uses.`,
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalogued models",
	Args:  cobra.NoArgs,
	RunE:  runModelsList,
}

var modelsUnloadCmd = &cobra.Command{
	Use:   "unload [model-id]",
	Short: "Evict a loaded model from memory",
	Args:  cobra.ExactArgs(1),
	RunE:  runModelsUnload,
}

var modelsDeleteCmd = &cobra.Command{
	Use:   "delete [model-id]",
	Short: "Remove a model from the catalog",
	Args:  cobra.ExactArgs(1),
	RunE:  runModelsDelete,
}

func init() {
	modelsCmd.AddCommand(modelsListCmd)
	modelsCmd.AddCommand(modelsUnloadCmd)
	modelsCmd.AddCommand(modelsDeleteCmd)
	rootCmd.AddCommand(modelsCmd)
}

func runModelsList(cmd *cobra.Command, _ []string) error {
	if err := ensureApp(); err != nil {
		return err
	}

	descs, err := modelService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing models: %w", err)
	}

	for _, desc := range descs {
		state := "not installed"
		switch {
		case desc.Loaded:
			state = "loaded"
		case desc.Installed:
			state = "installed"
		}
		cmd.Printf("  %-40s %-18s %5d MB  %s\n", desc.ID, desc.Kind, desc.RAMCostMB, state)
	}

	cmd.Printf("\nResident: %d / %d MB\n", modelService.LoadedRAMMB(), lifecycle.BudgetMB())
	return nil
}

func runModelsUnload(cmd *cobra.Command, args []string) error {
	if err := ensureApp(); err != nil {
		return err
	}

	if err := modelService.Unload(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("unloading model: %w", err)
	}
	cmd.Printf("Unloaded %s\n", args[0])
	return nil
}

func runModelsDelete(cmd *cobra.Command, args []string) error {
	if err := ensureApp(); err != nil {
		return err
	}

	if err := modelService.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("deleting model: %w", err)
	}
	cmd.Printf("Deleted %s\n", args[0])
	return nil
}
