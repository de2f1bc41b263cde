package instrumentation

// Config controls metrics collection.
type Config struct {
	// Enabled determines whether metrics are collected at all.
	Enabled bool

	// ServiceName identifies this service in exported metrics.
	ServiceName string

	// ServiceVersion is the build version reported with the metrics.
	ServiceVersion string
}

// DefaultConfig returns the default instrumentation configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:        true,
		ServiceName:    "mcp-gmail",
		ServiceVersion: "dev",
	}
}
