package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Show document metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		a := GetApp()

		session, err := a.Registry.Open(a.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("document: %s\n", session.Path())
		fmt.Printf("pages:    %d\n", session.PageCount())

		st := session.State()
		fmt.Printf("page:     %d\n", st.PageIndex+1)
		fmt.Printf("zoom:     %.2f\n", st.ZoomFactor)
		fmt.Printf("rotation: %d\n", int(st.Rotation))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
