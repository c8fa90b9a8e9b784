// Package bgzf implements the blocked gzip format used by genomics containers,
// together with the virtual positions that address bytes inside it.
//
// # Blocks
//
// A BGZF file is a series of gzip members ("blocks"), each holding at most
// 64 KiB of decompressed data and recording its own compressed size in a "BC"
// extra subfield. Because every block can be inflated on its own, a reader can
// start at any block boundary.
//
// Block holds one decompressed unit. Consumers pull bytes from it with Read
// until IsEOF reports it exhausted; Read then returns 0 with a nil error,
// meaning "move to the next block" rather than failure. ReadBlockSize reads a
// 4-byte little-endian length prefix from the content.
//
// # Virtual Positions
//
// A VirtualPosition packs the file offset of a block (upper 48 bits) and an
// offset inside its decompressed content (lower 16 bits):
//
//	vp := block.VirtualPosition() // block.COffset()<<16 | block.Position()
//
// Index files store these values, and Reader.Seek resolves them by seeking the
// source to vp.Compressed(), inflating that single block and skipping
// vp.Uncompressed() bytes.
//
// # Reading and Writing
//
//	w, _ := bgzf.NewWriter(f, bgzf.WithWorkers(4))
//	vp, _ := w.VirtualPosition() // remember where a record starts
//	_, _ = w.Write(record)
//	_ = w.Close()                // flush and append the EOF marker
//
//	r, _ := bgzf.NewReader(f)
//	_ = r.Seek(vp)
//	_, _ = io.ReadFull(r, buf)
//
// Neither Reader nor Writer retries failed I/O; errors from the underlying
// source or destination are returned wrapped, and format problems wrap the
// sentinels in the errs package.
package bgzf
