package lightfs

import (
	"github.com/hupe1980/lightfs/codec"
	"github.com/hupe1980/lightfs/internal/fs"
	"github.com/hupe1980/lightfs/layout"
)

type options struct {
	geometry         layout.Geometry
	codec            codec.Codec
	fsys             fs.FileSystem
	logger           *Logger
	metricsCollector MetricsCollector
}

// Option configures FS constructor behavior.
type Option func(*options)

// WithGeometry overrides the default container geometry. The geometry is
// fixed at container creation; loading a container with a different
// geometry than it was created with yields corrupt metadata.
func WithGeometry(g layout.Geometry) Option {
	return func(o *options) {
		o.geometry = g
	}
}

// WithCodec configures the codec used for the metadata region.
//
// If nil is passed, codec.Default is used. Both built-in codecs emit
// plain JSON, so containers are interchangeable between them.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithFileSystem injects a filesystem implementation. Intended for tests
// (fault injection); production code uses the local filesystem.
func WithFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		if fsys == nil {
			fsys = fs.Default
		}
		o.fsys = fsys
	}
}

// WithLogger configures structured logging. Pass nil to disable logging.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
func WithMetricsCollector(collector MetricsCollector) Option {
	return func(o *options) {
		if collector == nil {
			collector = NoopMetricsCollector{}
		}
		o.metricsCollector = collector
	}
}
