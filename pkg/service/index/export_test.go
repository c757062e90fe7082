package index

// Export internal helpers for testing
var (
	TruncateToMaxBytes  = truncateToMaxBytes
	BuildEmbeddingInput = buildEmbeddingInput
)

const MaxEmbeddingInput = maxEmbeddingInput
