package sevenzip

// Config holds the runtime feature gates spec.md §6 calls for. NewConfig
// returns the documented defaults; the zero value has every gate off.
type Config struct {
	ppmdSupport      bool
	lzma2Support     bool
	filtersEnabled   bool
	nativeARMFilters bool
}

// Option configures a Config, in the style klauspost/compress/zstd uses
// for its decoder options.
type Option func(*Config)

// defaultConfig returns the documented defaults: LZMA2 and the filter
// family on, PPMd and native ARM filters off.
func defaultConfig() *Config {
	return &Config{
		lzma2Support:   true,
		filtersEnabled: true,
	}
}

// NewConfig builds a Config from a list of Options.
func NewConfig(opts ...Option) *Config {
	c := defaultConfig()
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithPPMd enables the PPMd method, disabled by default. internal/ppmd
// validates PPMd properties but decodes with its own adaptive order-1
// range-coded model; it does not decode 7-Zip's PPMd7 bitstream.
func WithPPMd() Option {
	return func(c *Config) { c.ppmdSupport = true }
}

// WithoutLZMA2 disables LZMA2 decoding.
func WithoutLZMA2() Option {
	return func(c *Config) { c.lzma2Support = false }
}

// WithoutFilters disables the branch filter family, leaving only Delta
// and BCJ; applyFilter reports any other filter as unsupported.
func WithoutFilters() Option {
	return func(c *Config) { c.filtersEnabled = false }
}

// WithNativeARMFilters enables the ARM64 and ARMT filters. Without it,
// applyFilter reports those two filters as unsupported.
func WithNativeARMFilters() Option {
	return func(c *Config) { c.nativeARMFilters = true }
}
