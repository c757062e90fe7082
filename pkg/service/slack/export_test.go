package slack

// Export internal options for testing
var (
	// TestWithCacheTTL is exported for testing
	TestWithCacheTTL = WithCacheTTL
)
