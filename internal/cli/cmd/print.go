package cmd

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bnema/folio/internal/engine"
	"github.com/bnema/folio/internal/printing"
)

var (
	printPages       string
	printOrientation string
	printOutputDir   string
)

var printCmd = &cobra.Command{
	Use:   "print <file>",
	Short: "Rasterize a page selection to print-ready PNG sheets",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		a := GetApp()

		session, err := a.Registry.Open(a.Context(), args[0])
		if err != nil {
			return err
		}

		orientation := printing.OrientationAuto
		switch printOrientation {
		case "auto":
		case "portrait":
			orientation = printing.OrientationPortrait
		case "landscape":
			orientation = printing.OrientationLandscape
		default:
			return fmt.Errorf("invalid orientation %q (auto, portrait, landscape)", printOrientation)
		}

		if err := os.MkdirAll(printOutputDir, 0o755); err != nil {
			return err
		}

		settings := printing.Settings{
			Selection:   printPages,
			Orientation: orientation,
			Scale:       a.Config.Printing.RasterScale,
		}
		job := printing.NewJob(session.RasterizePage, a.Logger)

		return job.Run(a.Context(), settings, session.PageCount(), func(page int, bmp engine.Bitmap) error {
			out := filepath.Join(printOutputDir, fmt.Sprintf("sheet-%03d.png", page+1))
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := png.Encode(f, bmp.ToImage()); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", out)
			return nil
		})
	},
}

func init() {
	printCmd.Flags().StringVarP(&printPages, "pages", "p", "", `page selection, e.g. "1-5, 8, 11-13" (default all)`)
	printCmd.Flags().StringVar(&printOrientation, "orientation", "auto", "sheet orientation: auto, portrait, landscape")
	printCmd.Flags().StringVarP(&printOutputDir, "output-dir", "o", ".", "directory for output sheets")
	rootCmd.AddCommand(printCmd)
}
