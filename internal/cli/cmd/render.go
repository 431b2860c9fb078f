package cmd

import (
	"fmt"
	"image/png"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	renderScale  float64
	renderOutput string
)

var renderCmd = &cobra.Command{
	Use:   "render <file> <page>",
	Short: "Rasterize one page to a PNG file",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		a := GetApp()

		page, err := strconv.Atoi(args[1])
		if err != nil || page < 1 {
			return fmt.Errorf("invalid page number %q", args[1])
		}

		session, err := a.Registry.Open(a.Context(), args[0])
		if err != nil {
			return err
		}

		bmp, _, err := session.RasterizePage(page-1, renderScale)
		if err != nil {
			return err
		}

		out := renderOutput
		if out == "" {
			out = fmt.Sprintf("page-%d.png", page)
		}
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()

		if err := png.Encode(f, bmp.ToImage()); err != nil {
			return err
		}
		fmt.Printf("wrote %s (%dx%d)\n", out, bmp.Width, bmp.Height)
		return nil
	},
}

func init() {
	renderCmd.Flags().Float64VarP(&renderScale, "scale", "s", 2.0, "rasterization scale")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "output file (default page-N.png)")
	rootCmd.AddCommand(renderCmd)
}
