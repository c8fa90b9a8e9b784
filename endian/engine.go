// Package endian provides the byte order used for fixed-width fields in
// htscodec formats.
//
// BGZF, BAM-style length prefixes and data block headers are all little-endian,
// so most callers only need GetLittleEndianEngine:
//
//	engine := endian.GetLittleEndianEngine()
//	buf = engine.AppendUint32(buf, uint32(size))
//	size := int32(engine.Uint32(buf[0:4]))
//
// The returned engines are the encoding/binary singletons and are safe for
// concurrent use.
package endian

import "encoding/binary"

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary so
// a single value can both decode fields in place and append encoded fields.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// AppendInt32 appends v as a little-endian two's complement int32.
func AppendInt32(engine EndianEngine, buf []byte, v int32) []byte {
	return engine.AppendUint32(buf, uint32(v)) //nolint:gosec // G115: two's complement reinterpretation
}

// Int32 decodes a two's complement int32 from the first 4 bytes of buf.
func Int32(engine EndianEngine, buf []byte) int32 {
	return int32(engine.Uint32(buf)) //nolint:gosec // G115: two's complement reinterpretation
}
