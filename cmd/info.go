package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/drgolem/lsbstego/pkg/container"
	"github.com/drgolem/lsbstego/pkg/types"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <carrier_file>",
	Short: "Show carrier header and capacity",
	Long: `Print the parsed header of a BMP or WAV carrier together with the number
of usable carrier bytes and the largest payload it can hold.

Examples:
  # Show what a bitmap can hold
  lsbstego info photo.bmp

  # Check whether a file would fit
  lsbstego info song.wav -p key.pem

  # Check a size without the file
  lsbstego info song.wav -s 4096`,
	Args: cobra.ExactArgs(1),
	Run:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)

	infoCmd.Flags().StringP("payload", "p", "", "Check capacity for this file")
	infoCmd.Flags().IntP("size", "s", 0, "Check capacity for this many bytes")
}

func runInfo(cmd *cobra.Command, args []string) {
	fileName := args[0]

	payloadFile, err := cmd.Flags().GetString("payload")
	exitOnError("Failed to get payload flag", err)
	size, err := cmd.Flags().GetInt("size")
	exitOnError("Failed to get size flag", err)

	if payloadFile != "" {
		st, err := os.Stat(payloadFile)
		if err != nil {
			exitOnError("Failed to stat payload file", types.IOError("stat "+payloadFile, err))
		}
		size = int(st.Size())
	}

	f, err := os.Open(fileName)
	if err != nil {
		exitOnError("Failed to open carrier", types.IOError("open "+fileName, err))
	}
	defer f.Close()

	c, err := container.Open(f, filepath.Base(fileName))
	exitOnError("Failed to parse carrier", err)
	defer c.Release()

	printInfo(c.Info())

	if payloadFile == "" && !cmd.Flags().Changed("size") {
		return
	}

	if err := c.Validate(size); err != nil {
		f.Close()
		exitOnError("Payload does not fit", err)
	}
	fmt.Printf("%-16s %d bytes fit\n", "Check:", size)
}

func printInfo(i container.Info) {
	fmt.Printf("%-16s %s\n", "File:", i.Name)
	fmt.Printf("%-16s %s\n", "Type:", i.Type)
	fmt.Printf("%-16s %d\n", "File size:", i.FileSize)
	fmt.Printf("%-16s %d\n", "Data offset:", i.DataOffset)
	fmt.Printf("%-16s %d\n", "Data size:", i.DataSize)

	switch i.Type {
	case types.Bitmap:
		fmt.Printf("%-16s %dx%d\n", "Dimensions:", i.Width, i.Height)
		fmt.Printf("%-16s %d bits\n", "Depth:", i.Depth)
		fmt.Printf("%-16s %d bytes\n", "Row length:", i.RowLen)
		fmt.Printf("%-16s %d bytes\n", "Row padding:", i.Pad)
	case types.Wav:
		fmt.Printf("%-16s %d\n", "Channels:", i.Channels)
		fmt.Printf("%-16s %d Hz\n", "Sample rate:", i.SampleRate)
		fmt.Printf("%-16s %d\n", "Bits/sample:", i.BitsPerSample)
		fmt.Printf("%-16s %d\n", "Block align:", i.BlockAlign)
		fmt.Printf("%-16s %d\n", "Samples:", i.TotalSamples)
	}

	fmt.Printf("%-16s %d\n", "Usable bytes:", i.UsableBytes)
	fmt.Printf("%-16s %d bytes\n", "Max payload:", i.MaxPayload)
}
