package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/drgolem/lsbstego/internal/carrier"
	"github.com/drgolem/lsbstego/pkg/types"

	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate <bmp|wav>",
	Short: "Write a noise carrier for testing",
	Long: `Generate a random-noise carrier so the tool can be tried without sample
media. Bitmaps are 24-bit, WAV files are PCM.

Examples:
  # 640x480 bitmap, holds 115200 bytes
  lsbstego generate bmp --width 640 --height 480 -o noise.bmp

  # 10 seconds of 16-bit stereo at 44.1kHz, holds 110250 bytes
  lsbstego generate wav --frames 441000 --channels 2 -o noise.wav

  # Reproducible output
  lsbstego generate wav --seed 42 --bits 24 -o noise24.wav`,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"bmp", "wav"},
	Run:       runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringP("out", "o", "", "Output file")
	generateCmd.Flags().Uint64("seed", 1, "Noise seed")
	generateCmd.Flags().Bool("force", false, "Overwrite the output file if it exists")

	generateCmd.Flags().Int("width", 320, "Bitmap width in pixels")
	generateCmd.Flags().Int("height", 240, "Bitmap height in pixels")

	generateCmd.Flags().Int("frames", 44100, "WAV samples per channel")
	generateCmd.Flags().Int("channels", 2, "WAV channel count")
	generateCmd.Flags().Int("rate", 44100, "WAV sample rate in Hz")
	generateCmd.Flags().Int("bits", 16, "WAV bits per sample (16, 24, 32)")

	generateCmd.MarkFlagRequired("out")
}

func runGenerate(cmd *cobra.Command, args []string) {
	kind := args[0]
	flags := cmd.Flags()

	outFileName, err := flags.GetString("out")
	exitOnError("Failed to get out flag", err)
	seed, err := flags.GetUint64("seed")
	exitOnError("Failed to get seed flag", err)

	force := cfg.Force
	if flags.Changed("force") {
		force, err = flags.GetBool("force")
		exitOnError("Failed to get force flag", err)
	}

	var (
		bmpOpts carrier.BitmapOptions
		wavOpts carrier.WavOptions
	)
	switch kind {
	case "bmp":
		bmpOpts, err = bitmapOptions(cmd, seed)
	case "wav":
		wavOpts, err = wavOptions(cmd, seed)
	}
	exitOnError("Invalid arguments", err)

	openFlags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		openFlags |= os.O_EXCL
	}
	fOut, err := os.OpenFile(outFileName, openFlags, outputPerm())
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			err = fmt.Errorf("%s exists (use --force to overwrite): %w", outFileName, err)
		}
		exitOnError("Failed to create output file", types.IOError("create "+outFileName, err))
	}
	defer fOut.Close()

	switch kind {
	case "bmp":
		slog.Info("Generating bitmap", "width", bmpOpts.Width, "height", bmpOpts.Height, "path", outFileName)
		err = carrier.WriteBitmap(fOut, bmpOpts)
	case "wav":
		slog.Info("Generating WAV", "frames", wavOpts.Frames, "channels", wavOpts.Channels,
			"sample_rate", wavOpts.SampleRate, "bits_per_sample", wavOpts.BitsPerSample, "path", outFileName)
		err = carrier.WriteWav(fOut, wavOpts)
	}

	if err != nil {
		fOut.Close()
		if rerr := os.Remove(outFileName); rerr != nil {
			slog.Warn("Failed to remove partial output", "file", outFileName, "error", rerr)
		}
		exitOnError("Failed to generate carrier", err)
	}

	slog.Info("Carrier written", "path", outFileName)
}

func bitmapOptions(cmd *cobra.Command, seed uint64) (carrier.BitmapOptions, error) {
	opts := carrier.BitmapOptions{Seed: seed}

	var err error
	if opts.Width, err = cmd.Flags().GetInt("width"); err != nil {
		return opts, fmt.Errorf("failed to get width flag: %w", err)
	}
	if opts.Height, err = cmd.Flags().GetInt("height"); err != nil {
		return opts, fmt.Errorf("failed to get height flag: %w", err)
	}
	return opts, nil
}

func wavOptions(cmd *cobra.Command, seed uint64) (carrier.WavOptions, error) {
	opts := carrier.WavOptions{Seed: seed}

	var err error
	if opts.Frames, err = cmd.Flags().GetInt("frames"); err != nil {
		return opts, fmt.Errorf("failed to get frames flag: %w", err)
	}
	if opts.Channels, err = cmd.Flags().GetInt("channels"); err != nil {
		return opts, fmt.Errorf("failed to get channels flag: %w", err)
	}
	if opts.SampleRate, err = cmd.Flags().GetInt("rate"); err != nil {
		return opts, fmt.Errorf("failed to get rate flag: %w", err)
	}
	if opts.BitsPerSample, err = cmd.Flags().GetInt("bits"); err != nil {
		return opts, fmt.Errorf("failed to get bits flag: %w", err)
	}
	return opts, nil
}
