package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/folio/internal/viewer"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect or clear persisted view state",
}

var stateShowCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Show the stored view state for a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		a := GetApp()
		if a.Store == nil {
			return fmt.Errorf("view-state persistence is disabled in config")
		}

		path, err := viewer.NormalizePath(args[0])
		if err != nil {
			return err
		}

		state, ok, err := a.Store.Get(a.Context(), path)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("no stored state")
			return nil
		}
		fmt.Printf("page:     %d\nzoom:     %.2f\nrotation: %d\n", state.Page+1, state.Zoom, state.Rotation)
		return nil
	},
}

var stateClearCmd = &cobra.Command{
	Use:   "clear <file>",
	Short: "Delete the stored view state for a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		a := GetApp()
		if a.Store == nil {
			return fmt.Errorf("view-state persistence is disabled in config")
		}

		path, err := viewer.NormalizePath(args[0])
		if err != nil {
			return err
		}
		return a.Store.Delete(a.Context(), path)
	},
}

func init() {
	stateCmd.AddCommand(stateShowCmd)
	stateCmd.AddCommand(stateClearCmd)
	rootCmd.AddCommand(stateCmd)
}
