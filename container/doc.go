// Package container reads and writes CRAM-style data blocks.
//
// A data block is a typed payload (header, core bit data or external byte
// data) with its compression method, content ID and raw size recorded in a
// small header. Blocks are length-prefixed so a reader can frame them from any
// byte stream, typically a BGZF stream:
//
//	w, _ := bgzf.NewWriter(f)
//	enc := container.NewCoreEncoder()
//	_ = enc.WriteBits(0x0C, 4)
//	block, _ := enc.Finish(format.CompressionNone)
//	_, _ = container.WriteDataBlock(w, block)
//	_ = w.Close()
//
//	r, _ := bgzf.NewReader(f)
//	block, err := container.ReadDataBlock(r)
//
// Encoded layout, little-endian:
//
//	int32  blockLen     bytes that follow this field
//	uint8  method       format.CompressionType
//	uint8  contentType  format.ContentType
//	int32  contentID
//	int32  rawSize      payload size before compression
//	[]byte payload
//	uint32 crc32        IEEE, over method through payload
package container
