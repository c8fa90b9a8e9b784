package pool

import (
	"io"
	"sync"
)

// Default buffer sizes for the shared pools.
const (
	BlockBufferDefaultSize      = 1024 * 64       // 64KiB, one BGZF block
	BlockBufferMaxThreshold     = 1024 * 128      // 128KiB
	DataBlockBufferDefaultSize  = 1024 * 16       // 16KiB
	DataBlockBufferMaxThreshold = 1024 * 1024 * 4 // 4MiB
)

// ByteBuffer is a growable byte slice that can be recycled through a ByteBufferPool.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the specified default size.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{
		B: make([]byte, 0, defaultSize),
	}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset empties the buffer but keeps the allocated memory.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Cap returns the capacity of the buffer.
func (bb *ByteBuffer) Cap() int {
	return cap(bb.B)
}

// Write appends data to the buffer, growing it as needed.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}

// WriteByte appends a single byte. It lets bit writers skip the one-byte slice path.
func (bb *ByteBuffer) WriteByte(c byte) error {
	bb.B = append(bb.B, c)
	return nil
}

// WriteTo writes the contents of the buffer to w.
func (bb *ByteBuffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(bb.B)
	return int64(n), err
}

// SetLength sets the length of the buffer to n.
// Panics if n is negative or greater than the capacity.
func (bb *ByteBuffer) SetLength(n int) {
	if n < 0 || n > cap(bb.B) {
		panic("SetLength: invalid length")
	}
	bb.B = bb.B[:n]
}

// Grow ensures the buffer can hold requiredBytes more bytes without reallocating.
//
// Small buffers grow by at least BlockBufferDefaultSize, larger ones by 25% of
// their capacity, and always by at least requiredBytes.
func (bb *ByteBuffer) Grow(requiredBytes int) {
	available := cap(bb.B) - len(bb.B)
	if available >= requiredBytes {
		return
	}

	growBy := BlockBufferDefaultSize
	if cap(bb.B) > 4*BlockBufferDefaultSize {
		growBy = cap(bb.B) / 4
	}

	if growBy < requiredBytes {
		growBy = requiredBytes
	}

	newBuf := make([]byte, len(bb.B), len(bb.B)+growBy)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// ByteBufferPool is a sync.Pool of ByteBuffers.
//
// Buffers that grew beyond maxThreshold are dropped on Put instead of being
// retained, so one oversized payload does not pin memory for the pool's lifetime.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a new ByteBufferPool with buffers of the specified default size.
func NewByteBufferPool(defaultSize int, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves an empty ByteBuffer from the pool.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a ByteBuffer to the pool for reuse.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}

	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		return
	}

	bb.Reset()
	bbp.pool.Put(bb)
}

var (
	blockDefaultPool     = NewByteBufferPool(BlockBufferDefaultSize, BlockBufferMaxThreshold)
	dataBlockDefaultPool = NewByteBufferPool(DataBlockBufferDefaultSize, DataBlockBufferMaxThreshold)
)

// GetBlockBuffer retrieves a buffer sized for one BGZF block.
func GetBlockBuffer() *ByteBuffer {
	return blockDefaultPool.Get()
}

// PutBlockBuffer returns a buffer to the BGZF block pool.
func PutBlockBuffer(bb *ByteBuffer) {
	blockDefaultPool.Put(bb)
}

// GetDataBlockBuffer retrieves a buffer for assembling a data block payload.
func GetDataBlockBuffer() *ByteBuffer {
	return dataBlockDefaultPool.Get()
}

// PutDataBlockBuffer returns a buffer to the data block pool.
func PutDataBlockBuffer(bb *ByteBuffer) {
	dataBlockDefaultPool.Put(bb)
}
