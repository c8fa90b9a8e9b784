// Package options implements the functional options shared by the bgzf
// reader and writer constructors.
//
// bgzf declares one alias per configured type,
//
//	type ReaderOption = options.Option[*ReaderConfig]
//	type WriterOption = options.Option[*WriterConfig]
//
// and NewReader / NewWriter run the caller's options through Apply against a
// config pre-filled with defaults (no-op zap logger, default deflate level,
// one worker, 65280-byte blocks). Validating options such as
// WithCompressionLevel or WithBlockDataSize are built with New and reject bad
// values before a Reader or Writer exists.
package options

// Option mutates a config of type T, typically *bgzf.ReaderConfig or
// *bgzf.WriterConfig. The method is unexported so only this package can
// produce options.
type Option[T any] interface {
	apply(T) error
}

// Func is the Option produced by New and NoError.
type Func[T any] struct {
	applyFunc func(T) error
}

func (f *Func[T]) apply(target T) error {
	return f.applyFunc(target)
}

// New wraps a setter that validates its value, e.g. a compression level that
// must lie in the deflate range.
func New[T any](fn func(T) error) *Func[T] {
	return &Func[T]{applyFunc: fn}
}

// NoError wraps a setter that accepts any value.
func NoError[T any](fn func(T)) *Func[T] {
	return &Func[T]{
		applyFunc: func(target T) error {
			fn(target)
			return nil
		},
	}
}

// Apply runs opts against a defaults-filled config in order, so a later option
// overrides an earlier one. It stops at the first rejected option, leaving the
// constructor to return that error instead of a half-configured value. Nil
// options are skipped, which lets callers build option slices conditionally.
func Apply[T any](target T, opts ...Option[T]) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.apply(target); err != nil {
			return err
		}
	}

	return nil
}
