package config

import "go.uber.org/fx"

// Module exposes the sections of a loaded *Config to the dependency graph
var Module = fx.Module("config",
	fx.Provide(
		func(c *Config) *UnsplashConfig { return &c.Unsplash },
		func(c *Config) *FeedConfig { return &c.Feed },
		func(c *Config) *ProfileConfig { return &c.Profile },
		func(c *Config) *StorageConfig { return &c.Storage },
		func(c *Config) *HTTPConfig { return &c.HTTP },
		func(c *Config) *LoggingConfig { return &c.Logging },
		func(c *Config) *MetricsConfig { return &c.Metrics },
	),
)
