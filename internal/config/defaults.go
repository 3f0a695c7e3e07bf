package config

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		FollowRedirects: BoolPtr(true),
		MaxRedirects:    10,
		DialTimeout:     30000, // 30 seconds
		IdleTimeout:     90000,
		MaxConnsPerHost: 100,
		MaxIdlePerHost:  80,
		ValidateSSL:     BoolPtr(true),
		UserAgent:       "httpflow",
		Decompress:      "browser",
	}
}
