package compress

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/htscodec/errs"
	"github.com/arloliu/htscodec/format"
)

func getAllCodecs() map[string]Codec {
	return map[string]Codec{
		"NoOp": NewNoOpCompressor(),
		"Gzip": NewGzipCompressor(),
		"LZ4":  NewLZ4Compressor(),
		"S2":   NewS2Compressor(),
		"Zstd": NewZstdCompressor(),
	}
}

func TestCreateCodec(t *testing.T) {
	tests := []struct {
		ct   format.CompressionType
		want Codec
	}{
		{format.CompressionNone, NoOpCompressor{}},
		{format.CompressionGzip, GzipCompressor{}},
		{format.CompressionZstd, ZstdCompressor{}},
		{format.CompressionS2, S2Compressor{}},
		{format.CompressionLZ4, LZ4Compressor{}},
	}

	for _, tt := range tests {
		t.Run(tt.ct.String(), func(t *testing.T) {
			codec, err := CreateCodec(tt.ct)
			require.NoError(t, err)
			require.IsType(t, tt.want, codec)

			shared, err := GetCodec(tt.ct)
			require.NoError(t, err)
			require.IsType(t, tt.want, shared)
		})
	}
}

func TestCreateCodec_Unsupported(t *testing.T) {
	_, err := CreateCodec(format.CompressionType(0x7F))
	require.ErrorIs(t, err, errs.ErrUnsupportedCompression)

	_, err = GetCodec(format.CompressionType(0x7F))
	require.ErrorIs(t, err, errs.ErrUnsupportedCompression)
}

func TestAllCodecs_EmptyData(t *testing.T) {
	for name, codec := range getAllCodecs() {
		t.Run(name, func(t *testing.T) {
			compressed, err := codec.Compress(nil)
			require.NoError(t, err)
			require.Empty(t, compressed)

			decompressed, err := codec.Decompress(nil)
			require.NoError(t, err)
			require.Empty(t, decompressed)

			compressed, err = codec.Compress([]byte{})
			require.NoError(t, err)

			decompressed, err = codec.Decompress(compressed)
			require.NoError(t, err)
			require.Empty(t, decompressed)
		})
	}
}

func TestAllCodecs_RoundTrip(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
	}{
		{"single_byte", []byte{0x42}},
		{"small_text", []byte("ACGTACGTNNNN")},
		{"binary_data", []byte{0x00, 0x01, 0x02, 0x03, 0xFF, 0xFE, 0xFD, 0xFC}},
		{"quality_scores", bytes.Repeat([]byte("IIIIHHHGGF@@?>"), 512)},
		{"bgzf_sized", bytes.Repeat([]byte("chr1\t12345\t.\tA\tG\t50\tPASS\n"), 2500)},
		{
			"pseudo_random",
			func() []byte {
				data := make([]byte, 4096)
				for i := range data {
					data[i] = byte((i*7 + i*i) % 256)
				}

				return data
			}(),
		},
		{"highly_compressible", make([]byte, 1024*1024)},
	}

	for codecName, codec := range getAllCodecs() {
		t.Run(codecName, func(t *testing.T) {
			for _, tc := range testCases {
				t.Run(tc.name, func(t *testing.T) {
					compressed, err := codec.Compress(tc.data)
					require.NoError(t, err)
					require.NotEmpty(t, compressed)

					decompressed, err := codec.Decompress(compressed)
					require.NoError(t, err)
					require.Equal(t, tc.data, decompressed)

					if sd, ok := codec.(SizedDecompressor); ok {
						sized, err := sd.DecompressSized(compressed, len(tc.data))
						require.NoError(t, err)
						require.Equal(t, tc.data, sized)
					}
				})
			}
		})
	}
}

func TestAllCodecs_InvalidData(t *testing.T) {
	invalidInputs := []struct {
		name string
		data []byte
	}{
		{"random_bytes", []byte{0xFF, 0xFF, 0xFF, 0xFF}},
		{"text_as_compressed", []byte("this is not compressed data")},
		{"corrupted_header", []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07}},
	}

	for codecName, codec := range getAllCodecs() {
		t.Run(codecName, func(t *testing.T) {
			if codecName == "NoOp" {
				t.Skip("NoOp codec doesn't validate data")
			}

			for _, input := range invalidInputs {
				t.Run(input.name, func(t *testing.T) {
					_, err := codec.Decompress(input.data)
					require.Error(t, err)
				})
			}
		})
	}
}

func TestLZ4_DecompressSized_WrongSize(t *testing.T) {
	codec := NewLZ4Compressor()
	data := bytes.Repeat([]byte("ACGT"), 100)

	compressed, err := codec.Compress(data)
	require.NoError(t, err)

	_, err = codec.DecompressSized(compressed, len(data)-1)
	require.Error(t, err)

	_, err = codec.DecompressSized(compressed, len(data)+1)
	require.Error(t, err)
}

func TestGzip_ConcatenatedMembers(t *testing.T) {
	codec := NewGzipCompressor()

	first, err := codec.Compress([]byte("first "))
	require.NoError(t, err)
	second, err := codec.Compress([]byte("second"))
	require.NoError(t, err)

	out, err := codec.Decompress(append(first, second...))
	require.NoError(t, err)
	require.Equal(t, "first second", string(out))
}

func TestAllCodecs_ConcurrentUsage(t *testing.T) {
	const numGoroutines = 20
	testData := []byte("concurrent data block payload with enough content to compress")

	for codecName, codec := range getAllCodecs() {
		t.Run(codecName, func(t *testing.T) {
			done := make(chan error, numGoroutines)

			for range numGoroutines {
				go func() {
					compressed, err := codec.Compress(testData)
					if err != nil {
						done <- err
						return
					}

					out, err := codec.Decompress(compressed)
					if err != nil {
						done <- err
						return
					}

					if !bytes.Equal(testData, out) {
						done <- fmt.Errorf("round trip mismatch")
						return
					}
					done <- nil
				}()
			}

			for range numGoroutines {
				require.NoError(t, <-done)
			}
		})
	}
}
