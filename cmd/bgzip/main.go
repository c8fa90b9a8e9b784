// Command bgzip compresses files into BGZF, decompresses them, and lists
// their blocks.
//
// Usage:
//
//	bgzip [-c config.yaml] [-l level] [-@ workers] file      # writes file.gz
//	bgzip -d file.gz                                          # writes file
//	bgzip -i file.gz                                          # lists blocks
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "bgzip: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("bgzip", flag.ContinueOnError)
	configPath := fs.String("c", "", "YAML config file")
	decompress := fs.Bool("d", false, "Decompress")
	index := fs.Bool("i", false, "List block virtual positions and sizes")
	level := fs.Int("l", 0, "Compression level, -2 (Huffman only) to 9")
	workers := fs.Int("@", 0, "Compression workers, 0 uses GOMAXPROCS")
	keep := fs.Bool("k", false, "Keep the input file")
	stdout := fs.Bool("stdout", false, "Write to stdout instead of a file")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("expected exactly one input file, got %d", fs.NArg())
	}
	input := fs.Arg(0)

	cfg := DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = LoadConfig(*configPath); err != nil {
			return err
		}
	}

	// Explicit flags win over the config file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "l":
			cfg.Level = *level
		case "@":
			cfg.Workers = *workers
		}
	})

	logger, err := cfg.NewLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	in, err := os.Open(input)
	if err != nil {
		return err
	}
	defer in.Close()

	if *index {
		return printBlocks(os.Stdout, in, logger)
	}

	output := outputName(input, *decompress)
	if output == "" {
		return fmt.Errorf("%s: unknown suffix, expected .gz or .bgz", input)
	}

	out := os.Stdout
	if !*stdout {
		if out, err = os.OpenFile(output, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644); err != nil {
			return err
		}
	}

	var n int64
	if *decompress {
		n, err = decompressStream(out, in, logger)
	} else {
		n, err = compressStream(out, in, cfg, logger)
	}

	if !*stdout {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		if !*stdout {
			_ = os.Remove(output)
		}

		return err
	}

	logger.Info("done", zap.String("input", input), zap.String("output", output), zap.Int64("bytes", n))

	if !*keep && !*stdout {
		return os.Remove(input)
	}

	return nil
}

// outputName derives the output path, or "" when a compressed input has no
// recognized suffix.
func outputName(input string, decompress bool) string {
	if !decompress {
		return input + ".gz"
	}

	for _, suffix := range []string{".gz", ".bgz"} {
		if base, ok := strings.CutSuffix(input, suffix); ok && base != "" {
			return base
		}
	}

	return ""
}
