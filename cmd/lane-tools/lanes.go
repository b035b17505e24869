package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mayankkcode/Lane-detection/internal/imaging"
	"github.com/Mayankkcode/Lane-detection/internal/lane"
)

func newLanesCmd(root *rootOptions) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "lanes <image>",
		Short: "Detect lane markings in a road image",
		Long:  "Runs grayscale, blur, Canny, probabilistic Hough and thick-line rasterization on the image, then writes the binary lane bitmap and the color-isolated image to the output directory.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}

			res, err := lane.Process(imaging.NewImageCache(), args[0], cfg.Lane)
			if err != nil {
				return err
			}
			files, err := res.Save(outDir, cfg.Lane)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "segments: %d\n", len(res.Segments))
			fmt.Fprintf(out, "lane pixels: %d\n", imaging.CountNonZero(res.Bitmap))
			fmt.Fprintf(out, "bitmap: %s\n", files.BitmapPath)
			fmt.Fprintf(out, "isolated: %s\n", files.IsolatedPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "directory for the output images")
	return cmd
}
