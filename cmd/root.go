package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/drgolem/lsbstego/internal/config"
	"github.com/drgolem/lsbstego/pkg/types"

	"github.com/spf13/cobra"
)

const (
	version = "1.0.0"
)

var (
	configFile string
	verbose    bool

	// cfg is loaded before any subcommand runs.
	cfg = config.Default()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "lsbstego",
	Short:   "Hide files in the least significant bits of BMP and WAV files",
	Version: version,
	Long: `lsbstego - hides an arbitrary file in the least significant bits of an
uncompressed 24-bit BMP image or a PCM WAV file, and recovers it again.

Each payload bit replaces the lowest bit of one carrier byte: one per pixel
colour byte for bitmaps (row padding is skipped), one per sample for WAV. The
carrier must offer at least 8 usable bytes for every payload byte.

The payload size is not stored in the carrier. Note it when hiding, it is
required to recover the file.

Commands:
  - hide: Embed a file into a carrier
  - recover: Extract a file of known size from a carrier
  - info: Show carrier header and capacity
  - generate: Write a noise carrier for testing

Exit status:
  1 usage or other error, 2 malformed carrier, 3 unsupported encoding,
  4 insufficient capacity, 5 allocation failure, 6 I/O error`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configFile)
		if err != nil {
			return err
		}
		cfg = loaded

		logLevel, err := cfg.Level()
		if err != nil {
			return err
		}
		if verbose {
			logLevel = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel,
		}))
		slog.SetDefault(logger)

		if configFile != "" {
			slog.Debug("Loaded config", "path", configFile, "log_level", cfg.LogLevel,
				"verify", cfg.Verify, "force", cfg.Force, "output_perm", cfg.OutputPerm)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (debug logging)")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// exitOnError logs err and terminates with the status of its kind.
func exitOnError(msg string, err error) {
	if err == nil {
		return
	}
	slog.Error(msg, "error", err)
	os.Exit(types.ExitCode(err))
}

// outputPerm resolves the configured output file permission.
func outputPerm() os.FileMode {
	perm, err := cfg.Perm()
	if err != nil {
		exitOnError("Invalid output permission", fmt.Errorf("config: %w", err))
	}
	return perm
}
