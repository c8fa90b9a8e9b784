package bgzf

import (
	"bytes"
	"fmt"
	"io"
	"testing"
)

func BenchmarkWriter(b *testing.B) {
	data := testPayload(8 * DefaultBlockDataSize)

	for _, workers := range []int{1, 4} {
		b.Run(fmt.Sprintf("workers=%d", workers), func(b *testing.B) {
			b.SetBytes(int64(len(data)))

			for b.Loop() {
				w, err := NewWriter(io.Discard, WithWorkers(workers))
				if err != nil {
					b.Fatal(err)
				}
				if _, err := w.Write(data); err != nil {
					b.Fatal(err)
				}
				if err := w.Close(); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkReader(b *testing.B) {
	data := testPayload(8 * DefaultBlockDataSize)

	var file bytes.Buffer
	w, err := NewWriter(&file)
	if err != nil {
		b.Fatal(err)
	}
	if _, err := w.Write(data); err != nil {
		b.Fatal(err)
	}
	if err := w.Close(); err != nil {
		b.Fatal(err)
	}

	b.SetBytes(int64(len(data)))

	for b.Loop() {
		r, err := NewReader(bytes.NewReader(file.Bytes()))
		if err != nil {
			b.Fatal(err)
		}
		if _, err := io.Copy(io.Discard, r); err != nil {
			b.Fatal(err)
		}
		_ = r.Close()
	}
}
