package bgzf

import (
	"fmt"
	"runtime"

	"github.com/klauspost/compress/flate"
	"go.uber.org/zap"

	"github.com/arloliu/htscodec/internal/options"
)

// ReaderConfig holds Reader settings.
type ReaderConfig struct {
	logger *zap.Logger
}

// ReaderOption configures a Reader.
type ReaderOption = options.Option[*ReaderConfig]

func defaultReaderConfig() *ReaderConfig {
	return &ReaderConfig{logger: zap.NewNop()}
}

// WithReaderLogger sets the logger for block-level events. Defaults to a no-op logger.
func WithReaderLogger(logger *zap.Logger) ReaderOption {
	return options.New(func(c *ReaderConfig) error {
		if logger == nil {
			return fmt.Errorf("bgzf: nil logger")
		}
		c.logger = logger

		return nil
	})
}

// WriterConfig holds Writer settings.
type WriterConfig struct {
	logger        *zap.Logger
	level         int
	workers       int
	blockDataSize int
}

// WriterOption configures a Writer.
type WriterOption = options.Option[*WriterConfig]

func defaultWriterConfig() *WriterConfig {
	return &WriterConfig{
		logger:        zap.NewNop(),
		level:         flate.DefaultCompression,
		workers:       1,
		blockDataSize: DefaultBlockDataSize,
	}
}

// WithCompressionLevel sets the deflate level, from flate.HuffmanOnly (-2) to
// flate.BestCompression (9).
func WithCompressionLevel(level int) WriterOption {
	return options.New(func(c *WriterConfig) error {
		if level < flate.HuffmanOnly || level > flate.BestCompression {
			return fmt.Errorf("bgzf: invalid compression level %d", level)
		}
		c.level = level

		return nil
	})
}

// WithWorkers sets how many blocks are compressed in parallel. A value of 0
// uses GOMAXPROCS. Blocks are always written in order.
func WithWorkers(n int) WriterOption {
	return options.New(func(c *WriterConfig) error {
		if n < 0 {
			return fmt.Errorf("bgzf: invalid worker count %d", n)
		}
		if n == 0 {
			n = runtime.GOMAXPROCS(0)
		}
		c.workers = n

		return nil
	})
}

// WithBlockDataSize sets how many uncompressed bytes go into each block.
// Smaller blocks make seeking cheaper at the cost of compression ratio.
func WithBlockDataSize(size int) WriterOption {
	return options.New(func(c *WriterConfig) error {
		if size <= 0 || size > DefaultBlockDataSize {
			return fmt.Errorf("bgzf: block data size %d out of range (0, %d]", size, DefaultBlockDataSize)
		}
		c.blockDataSize = size

		return nil
	})
}

// WithWriterLogger sets the logger for block-level events. Defaults to a no-op logger.
func WithWriterLogger(logger *zap.Logger) WriterOption {
	return options.New(func(c *WriterConfig) error {
		if logger == nil {
			return fmt.Errorf("bgzf: nil logger")
		}
		c.logger = logger

		return nil
	})
}
