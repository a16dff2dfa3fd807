//go:build !(js && wasm)

package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/voxelsplace/plainppm/go/api"
	"github.com/voxelsplace/plainppm/go/ppm"
	"github.com/voxelsplace/plainppm/go/utils"
)

var rootCmd = &cobra.Command{
	Use:           "ppmtool",
	Short:         "Encode, decode and convert plain-text PPM (P3) images",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			ppm.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
		}
	},
}

var convertCmd = &cobra.Command{
	Use:   "convert input output",
	Short: "Convert between .ppm, .png, .bmp and .tiff (optionally .gz/.zst compressed)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := convertOptions(cmd)
		if err != nil {
			return err
		}
		if err := utils.RunConvert(args[0], args[1], opts); err != nil {
			return err
		}
		return printSaved(args[1])
	},
}

var ppm2glbCmd = &cobra.Command{
	Use:   "ppm2glb input output.glb",
	Short: "Write the image as a textured quad in a binary glTF",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := utils.RunPPM2GLB(args[0], args[1]); err != nil {
			return err
		}
		return printSaved(args[1])
	},
}

var identifyCmd = &cobra.Command{
	Use:   "identify file",
	Short: "Print dimensions, maxval, image count and digest of a PPM stream",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := utils.RunIdentify(args[0])
		if err != nil {
			return fmt.Errorf("parsing %s: %w", args[0], err)
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			out, _ := json.MarshalIndent(info, "", "  ")
			fmt.Println(string(out))
			return nil
		}
		fmt.Printf("File:       %s\n", args[0])
		fmt.Printf("Dimensions: %d x %d\n", info.Width, info.Height)
		fmt.Printf("Maxval:     %d\n", info.Maxval)
		fmt.Printf("Images:     %d\n", info.Images)
		fmt.Printf("Digest:     %s\n", info.Digest)
		return nil
	},
}

var gennoiseCmd = &cobra.Command{
	Use:   "gennoise amount output_dir",
	Short: "Generate random noise images",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var amount int
		if _, err := fmt.Sscan(args[0], &amount); err != nil {
			return fmt.Errorf("invalid amount %q: %w", args[0], err)
		}
		flags := cmd.Flags()
		width, _ := flags.GetUint32("width")
		height, _ := flags.GetUint32("height")
		maxval, _ := flags.GetUint16("maxval")
		minP, _ := flags.GetFloat64("min")
		maxP, _ := flags.GetFloat64("max")
		seed, _ := flags.GetInt64("seed")
		opts := utils.NoiseOptions{
			Width: width, Height: height, Maxval: maxval,
			PercentageMin: minP, PercentageMax: maxP, Seed: seed,
		}
		if err := utils.RunGenerateNoise(opts, amount, args[1]); err != nil {
			return err
		}
		fmt.Printf("Generated %d images in %s\n", amount, args[1])
		return nil
	},
}

var patchCmd = &cobra.Command{
	Use:   "patch input updates.json output",
	Short: `Apply {"<pixel index>": [r, g, b]} updates to an image`,
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := utils.RunPatchFile(args[1], args[0], args[2]); err != nil {
			return err
		}
		return printSaved(args[2])
	},
}

var batchCmd = &cobra.Command{
	Use:   "batch output_dir input...",
	Short: "Convert many images concurrently",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := convertOptions(cmd)
		if err != nil {
			return err
		}
		formatName, _ := cmd.Flags().GetString("format")
		format, err := api.FormatFromPath("x." + formatName)
		if err != nil {
			return err
		}
		workers, _ := cmd.Flags().GetInt("workers")
		results, err := utils.RunBatchConvert(args[1:], args[0], format, workers, opts)
		for _, r := range results {
			switch {
			case r.Err != nil:
				fmt.Printf("FAIL %s: %v\n", r.Input, r.Err)
			case r.Skipped:
				fmt.Printf("same %s -> %s\n", r.Input, r.Output)
			default:
				fmt.Printf("ok   %s -> %s (%016x)\n", r.Input, r.Output, r.Digest)
			}
		}
		if err != nil {
			return fmt.Errorf("batch: some files failed")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log codec activity to stderr")

	for _, cmd := range []*cobra.Command{convertCmd, batchCmd} {
		cmd.Flags().Uint16("maxval", 255, "Maxval for PPM output converted from other formats")
		cmd.Flags().Bool("strict", false, "Reject trailing data after a PPM image")
		cmd.Flags().Uint64("max-pixels", 0, "Largest width*height accepted from a header (0 = default)")
		cmd.Flags().String("comment", "", "Comment written into PPM output")
	}
	batchCmd.Flags().String("format", "ppm", "Output format (ppm, png, bmp, tiff)")
	batchCmd.Flags().Int("workers", 4, "Files converted concurrently")

	identifyCmd.Flags().Bool("json", false, "Print as JSON")

	gennoiseCmd.Flags().Uint32("width", 64, "Image width")
	gennoiseCmd.Flags().Uint32("height", 64, "Image height")
	gennoiseCmd.Flags().Uint16("maxval", 255, "Maxval")
	gennoiseCmd.Flags().Float64("min", 50, "Minimum fill percentage")
	gennoiseCmd.Flags().Float64("max", 50, "Maximum fill percentage")
	gennoiseCmd.Flags().Int64("seed", 0, "Random seed (0 = from clock)")

	rootCmd.AddCommand(convertCmd, ppm2glbCmd, identifyCmd, gennoiseCmd, patchCmd, batchCmd)
}

func convertOptions(cmd *cobra.Command) (utils.ConvertOptions, error) {
	flags := cmd.Flags()
	maxval, _ := flags.GetUint16("maxval")
	strict, _ := flags.GetBool("strict")
	maxPixels, _ := flags.GetUint64("max-pixels")
	comment, _ := flags.GetString("comment")
	if maxval == 0 || maxval == 0xffff {
		return utils.ConvertOptions{}, fmt.Errorf("--maxval must be between 1 and 65534")
	}
	return utils.ConvertOptions{Maxval: maxval, Strict: strict, MaxPixels: maxPixels, Comment: comment}, nil
}

func printSaved(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	fmt.Printf("%s saved (%d bytes)\n", path, fi.Size())
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
