package graph

const (
	// DefaultSampleRate is the engine sample rate used when a Config leaves
	// it unset.
	DefaultSampleRate = 48000.0
	// DefaultBlockSize is the per-block frame count used when a Config
	// leaves it unset. Control-rate nodes update once per block, so the
	// block size doubles as the control interval.
	DefaultBlockSize = 64
)

// Config defines the engine-wide processing settings shared by every
// router of one voice graph.
type Config struct {
	SampleRate float64
	BlockSize  int
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		SampleRate: DefaultSampleRate,
		BlockSize:  DefaultBlockSize,
	}
}

func (c Config) withDefaults() Config {
	if c.SampleRate <= 0 {
		c.SampleRate = DefaultSampleRate
	}

	if c.BlockSize <= 0 {
		c.BlockSize = DefaultBlockSize
	}

	return c
}
