package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <file> <query>",
	Short: "Search a document and list match locations",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		a := GetApp()

		session, err := a.Registry.Open(a.Context(), args[0])
		if err != nil {
			return err
		}

		if err := session.Search(a.Context(), args[1]); err != nil {
			return err
		}

		total := session.Matches()
		if total == 0 {
			fmt.Println("no matches")
			return nil
		}

		fmt.Printf("%d match(es)\n", total)
		for page := 0; page < session.PageCount(); page++ {
			rects, _ := session.PageMatches(page)
			for _, r := range rects {
				fmt.Printf("  page %d: (%.1f, %.1f)-(%.1f, %.1f)\n", page+1, r.X0, r.Y0, r.X1, r.Y1)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
