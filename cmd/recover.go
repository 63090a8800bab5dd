package cmd

import (
	"github.com/drgolem/lsbstego/internal/steganographer"
	"github.com/drgolem/lsbstego/pkg/types"

	"github.com/spf13/cobra"
)

var recoverCmd = &cobra.Command{
	Use:   "recover",
	Short: "Recover a hidden file from a BMP or WAV carrier",
	Long: `Extract a previously hidden file from a carrier. The size must be the exact
number of bytes reported when the file was hidden; the carrier does not
record it.

Examples:
  # Recover 1342 bytes from a bitmap
  lsbstego recover -b photo_stego.bmp -s 1342 -o notes.txt

  # Recover from a WAV file, replacing an earlier attempt
  lsbstego recover -b song_stego.wav -s 3272 -o key.pem --force

A size larger than the carrier can hold fails with exit status 4.`,
	Args: cobra.NoArgs,
	Run:  runRecover,
}

func init() {
	rootCmd.AddCommand(recoverCmd)

	recoverCmd.Flags().StringP("base", "b", "", "Carrier file holding the hidden data")
	recoverCmd.Flags().IntP("size", "s", 0, "Size of the hidden file in bytes")
	recoverCmd.Flags().StringP("out", "o", "", "Output file for the recovered data")
	recoverCmd.Flags().Bool("force", false, "Overwrite the output file if it exists")

	recoverCmd.MarkFlagRequired("base")
	recoverCmd.MarkFlagRequired("size")
	recoverCmd.MarkFlagRequired("out")
}

func runRecover(cmd *cobra.Command, args []string) {
	opts, err := pipelineOptions(cmd, types.Recover)
	exitOnError("Invalid arguments", err)

	opts.PayloadSize, err = cmd.Flags().GetInt("size")
	exitOnError("Failed to get size flag", err)

	_, err = steganographer.Run(opts)
	exitOnError("Recover failed", err)
}
