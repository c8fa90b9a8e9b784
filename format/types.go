package format

type (
	CompressionType uint8
	ContentType     uint8
)

const (
	CompressionNone CompressionType = 0x0 // CompressionNone stores the payload as-is.
	CompressionGzip CompressionType = 0x1 // CompressionGzip represents gzip (deflate) compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 block compression.
)

// Content types of a data block, numbered as in CRAM.
const (
	ContentFileHeader        ContentType = 0x0
	ContentCompressionHeader ContentType = 0x1
	ContentSliceHeader       ContentType = 0x2
	ContentExternalData      ContentType = 0x4
	ContentCoreData          ContentType = 0x5
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionGzip:
		return "Gzip"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

func (c ContentType) String() string {
	switch c {
	case ContentFileHeader:
		return "FileHeader"
	case ContentCompressionHeader:
		return "CompressionHeader"
	case ContentSliceHeader:
		return "SliceHeader"
	case ContentExternalData:
		return "ExternalData"
	case ContentCoreData:
		return "CoreData"
	default:
		return "Unknown"
	}
}

// Valid reports whether c is a known content type.
func (c ContentType) Valid() bool {
	return c.String() != "Unknown"
}
