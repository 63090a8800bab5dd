package cmd

import (
	"fmt"

	"github.com/drgolem/lsbstego/internal/steganographer"
	"github.com/drgolem/lsbstego/pkg/types"

	"github.com/spf13/cobra"
)

var hideCmd = &cobra.Command{
	Use:   "hide",
	Short: "Hide a file inside a BMP or WAV carrier",
	Long: `Embed a file into the least significant bits of a carrier and write the
modified carrier to a new file. Header and any trailing chunks are copied
unchanged.

Examples:
  # Hide notes.txt in a bitmap
  lsbstego hide -b photo.bmp -p notes.txt -o photo_stego.bmp

  # Hide in a WAV file and check the result with an independent decoder
  lsbstego hide -b song.wav -p key.pem -o song_stego.wav --verify

Carrier Requirements:
  BMP: uncompressed, 24 bits per pixel, width*height*3 >= 8 * payload size
  WAV: PCM (format 1), 16 bits or more, samples >= 8 * payload size

The payload size is logged on success. Keep it, recover needs it.`,
	Args: cobra.NoArgs,
	Run:  runHide,
}

func init() {
	rootCmd.AddCommand(hideCmd)

	hideCmd.Flags().StringP("base", "b", "", "Carrier file (BMP or WAV)")
	hideCmd.Flags().StringP("payload", "p", "", "File to hide")
	hideCmd.Flags().StringP("out", "o", "", "Output carrier file")
	hideCmd.Flags().Bool("verify", false, "Re-read the output with an independent decoder")
	hideCmd.Flags().Bool("force", false, "Overwrite the output file if it exists")

	hideCmd.MarkFlagRequired("base")
	hideCmd.MarkFlagRequired("payload")
	hideCmd.MarkFlagRequired("out")
}

func runHide(cmd *cobra.Command, args []string) {
	opts, err := pipelineOptions(cmd, types.Hide)
	exitOnError("Invalid arguments", err)

	opts.PayloadFile, err = cmd.Flags().GetString("payload")
	exitOnError("Failed to get payload flag", err)

	opts.Verify = cfg.Verify
	if cmd.Flags().Changed("verify") {
		opts.Verify, err = cmd.Flags().GetBool("verify")
		exitOnError("Failed to get verify flag", err)
	}

	res, err := steganographer.Run(opts)
	exitOnError("Hide failed", err)

	fmt.Printf("Hidden %d bytes in %s. Recover with: lsbstego recover -b %s -s %d -o <file>\n",
		res.PayloadBytes, opts.OutputFile, opts.OutputFile, res.PayloadBytes)
}

// pipelineOptions reads the flags shared by hide and recover.
func pipelineOptions(cmd *cobra.Command, mode types.Mode) (steganographer.Options, error) {
	opts := steganographer.Options{
		Mode:       mode,
		Force:      cfg.Force,
		OutputPerm: outputPerm(),
	}

	var err error
	if opts.BaseFile, err = cmd.Flags().GetString("base"); err != nil {
		return opts, fmt.Errorf("failed to get base flag: %w", err)
	}
	if opts.OutputFile, err = cmd.Flags().GetString("out"); err != nil {
		return opts, fmt.Errorf("failed to get out flag: %w", err)
	}
	if cmd.Flags().Changed("force") {
		if opts.Force, err = cmd.Flags().GetBool("force"); err != nil {
			return opts, fmt.Errorf("failed to get force flag: %w", err)
		}
	}

	if opts.BaseFile == opts.OutputFile {
		return opts, fmt.Errorf("output file must differ from base file: %s", opts.BaseFile)
	}
	return opts, nil
}
