// Package steganographer runs a complete hide or recover pass: it opens the
// files, drives the container through detect, parse, validate, load and
// embed/extract, and writes the result.
//
// Every failure is returned as an error carrying one of the kinds in
// pkg/types; nothing here terminates the process.
package steganographer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/drgolem/lsbstego/internal/verify"
	"github.com/drgolem/lsbstego/pkg/container"
	"github.com/drgolem/lsbstego/pkg/payload"
	"github.com/drgolem/lsbstego/pkg/types"
)

// Options configures one run.
type Options struct {
	Mode types.Mode

	BaseFile    string // container to hide in or recover from
	PayloadFile string // file to hide (hide mode)
	PayloadSize int    // number of bytes to recover (recover mode)
	OutputFile  string // stego container (hide) or recovered payload (recover)

	Verify     bool        // re-read the output container after hiding
	Force      bool        // overwrite an existing output file
	OutputPerm fs.FileMode // permission of the created output file
}

// Result describes a completed run.
type Result struct {
	Container    container.Info
	PayloadBytes int
	Written      int64
}

// Run dispatches on opts.Mode.
func Run(opts Options) (Result, error) {
	switch opts.Mode {
	case types.Hide:
		return Hide(opts)
	case types.Recover:
		return Recover(opts)
	default:
		return Result{}, fmt.Errorf("invalid mode: %s", opts.Mode)
	}
}

// Hide embeds opts.PayloadFile into opts.BaseFile and writes the modified
// container to opts.OutputFile.
func Hide(opts Options) (Result, error) {
	var res Result

	if opts.PayloadFile == "" || opts.BaseFile == "" || opts.OutputFile == "" {
		return res, errors.New("hide requires a base file, a payload file and an output file")
	}

	slog.Info("Hiding payload", "payload", opts.PayloadFile, "base", opts.BaseFile, "output", opts.OutputFile)

	base, err := os.Open(opts.BaseFile)
	if err != nil {
		return res, types.IOError("open base file", err)
	}
	defer base.Close()

	c, err := container.Open(base, filepath.Base(opts.BaseFile))
	if err != nil {
		return res, err
	}
	defer c.Release()
	res.Container = c.Info()

	p, err := readPayload(opts.PayloadFile)
	if err != nil {
		return res, err
	}
	defer p.Release()
	res.PayloadBytes = p.Size()

	if err := c.Validate(p.Size()); err != nil {
		return res, err
	}

	slog.Info("Base file", "info", res.Container)
	slog.Info("Hide file", "file", p.Name, "size", p.Size(),
		"note", "this size is required to recover the file")

	n, err := c.Load()
	if err != nil {
		return res, err
	}
	slog.Debug("Read container data", "file", c.Name, "bytes", n)

	if err := c.Embed(p); err != nil {
		return res, err
	}

	res.Written, err = writeFile(opts, c.WriteTo)
	if err != nil {
		return res, err
	}

	if opts.Verify {
		if err := verify.File(opts.OutputFile, res.Container); err != nil {
			return res, err
		}
		slog.Debug("Output verified", "file", opts.OutputFile)
	}

	slog.Info("Hide complete", "output", opts.OutputFile, "bytes", res.Written)
	return res, nil
}

// Recover extracts opts.PayloadSize bytes from opts.BaseFile and writes them
// to opts.OutputFile.
func Recover(opts Options) (Result, error) {
	var res Result

	if opts.BaseFile == "" || opts.OutputFile == "" {
		return res, errors.New("recover requires a base file and an output file")
	}

	slog.Info("Recovering payload", "bytes", opts.PayloadSize, "base", opts.BaseFile, "output", opts.OutputFile)

	base, err := os.Open(opts.BaseFile)
	if err != nil {
		return res, types.IOError("open base file", err)
	}
	defer base.Close()

	c, err := container.Open(base, filepath.Base(opts.BaseFile))
	if err != nil {
		return res, err
	}
	defer c.Release()
	res.Container = c.Info()

	if err := c.CheckRecoverable(opts.PayloadSize); err != nil {
		return res, err
	}

	p, err := payload.New(filepath.Base(opts.OutputFile), opts.PayloadSize)
	if err != nil {
		return res, err
	}
	defer p.Release()
	res.PayloadBytes = p.Size()

	if _, err := c.Load(); err != nil {
		return res, err
	}

	if err := c.Extract(p); err != nil {
		return res, err
	}

	res.Written, err = writeFile(opts, p.WriteTo)
	if err != nil {
		return res, err
	}

	slog.Info("Recover complete", "output", opts.OutputFile, "bytes", res.Written)
	return res, nil
}

func readPayload(fileName string) (*payload.Payload, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, types.IOError("open payload file", err)
	}
	defer f.Close()

	return payload.Read(f, filepath.Base(fileName))
}

// writeFile fills a temporary file next to the output with write and renames
// it into place once complete. The base file is never opened for writing, so
// a failed run cannot damage it even when the output path names the same file.
func writeFile(opts Options, write func(io.Writer) (int64, error)) (int64, error) {
	if err := checkOutput(opts); err != nil {
		return 0, err
	}

	perm := opts.OutputPerm
	if perm == 0 {
		perm = 0o644
	}

	dir, name := filepath.Split(opts.OutputFile)
	if dir == "" {
		dir = "."
	}
	fTmp, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return 0, types.IOError("create output file", err)
	}
	tmpName := fTmp.Name()

	bw := bufio.NewWriter(fTmp)
	n, err := write(bw)
	if err == nil {
		if ferr := bw.Flush(); ferr != nil {
			err = types.IOError("flush output file", ferr)
		}
	}
	if err == nil {
		if cerr := fTmp.Chmod(perm); cerr != nil {
			err = types.IOError("chmod output file", cerr)
		}
	}
	if cerr := fTmp.Close(); err == nil && cerr != nil {
		err = types.IOError("close output file", cerr)
	}
	if err == nil {
		if rerr := os.Rename(tmpName, opts.OutputFile); rerr != nil {
			err = types.IOError("rename output file", rerr)
		}
	}

	if err != nil {
		if rerr := os.Remove(tmpName); rerr != nil && !errors.Is(rerr, fs.ErrNotExist) {
			slog.Warn("Failed to remove partial output", "file", tmpName, "error", rerr)
		}
		return n, err
	}
	return n, nil
}

// checkOutput refuses an existing output unless opts.Force is set, and
// always refuses an output that resolves to the base file.
func checkOutput(opts Options) error {
	outInfo, err := os.Stat(opts.OutputFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return types.IOError("stat output file", err)
	}

	if baseInfo, err := os.Stat(opts.BaseFile); err == nil && os.SameFile(baseInfo, outInfo) {
		return types.IOError("create output file",
			fmt.Errorf("%s is the base file %s: %w", opts.OutputFile, opts.BaseFile, fs.ErrExist))
	}

	if !opts.Force {
		return types.IOError("create output file",
			fmt.Errorf("%s exists (use --force to overwrite): %w", opts.OutputFile, fs.ErrExist))
	}
	return nil
}
