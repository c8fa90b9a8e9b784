package main

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/arloliu/htscodec/bgzf"
)

// compressStream copies src into a BGZF stream on dst and closes the stream.
func compressStream(dst io.Writer, src io.Reader, cfg Config, logger *zap.Logger) (int64, error) {
	w, err := bgzf.NewWriter(dst, cfg.WriterOptions(logger)...)
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(w, src)
	if err != nil {
		return n, fmt.Errorf("compress: %w", err)
	}

	if err := w.Close(); err != nil {
		return n, fmt.Errorf("compress: %w", err)
	}

	return n, nil
}

// decompressStream inflates a BGZF stream from src into dst.
func decompressStream(dst io.Writer, src io.Reader, logger *zap.Logger) (int64, error) {
	r, err := bgzf.NewReader(src, bgzf.WithReaderLogger(logger))
	if err != nil {
		return 0, err
	}
	defer r.Close()

	n, err := io.Copy(dst, r)
	if err != nil {
		return n, fmt.Errorf("decompress: %w", err)
	}

	return n, nil
}

// blockInfo describes one non-empty BGZF block.
type blockInfo struct {
	Start  bgzf.VirtualPosition
	USize  int
	Offset int64 // uncompressed offset of the block's first byte
}

// listBlocks walks every non-empty block of a BGZF stream.
//
// A Read never crosses a block boundary and buf holds a whole block, so each
// Read consumes exactly one block.
func listBlocks(src io.Reader, logger *zap.Logger, fn func(blockInfo) error) error {
	r, err := bgzf.NewReader(src, bgzf.WithReaderLogger(logger))
	if err != nil {
		return err
	}
	defer r.Close()

	var offset int64
	buf := make([]byte, bgzf.MaxUncompressedBlockSize)
	for {
		_, err := r.Read(buf)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("index: %w", err)
		}

		block := r.Block()
		start, err := bgzf.NewVirtualPosition(block.COffset(), 0)
		if err != nil {
			return err
		}

		if err := fn(blockInfo{Start: start, USize: block.Len(), Offset: offset}); err != nil {
			return err
		}
		offset += int64(block.Len())
	}
}

func printBlocks(out io.Writer, src io.Reader, logger *zap.Logger) error {
	if _, err := fmt.Fprintln(out, "virtual_position\tcoffset\tuoffset\tusize"); err != nil {
		return err
	}

	return listBlocks(src, logger, func(info blockInfo) error {
		_, err := fmt.Fprintf(out, "%s\t%d\t%d\t%d\n", info.Start, info.Start.Compressed(), info.Offset, info.USize)
		return err
	})
}
