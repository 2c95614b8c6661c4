package mock

import "context"

// MockImageEmbedder is a test double for ai.ImageEmbedder.
// It allows custom behavior injection via function fields.
type MockImageEmbedder struct {
	// EmbedImageFunc is called by EmbedImage if set.
	// If nil, uses default deterministic behavior.
	EmbedImageFunc func(ctx context.Context, photoRef string) ([]float32, error)

	callCount int
}

// NewMockImageEmbedder creates a mock image embedder with default
// deterministic behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockImageEmbedder() *MockImageEmbedder {
	return &MockImageEmbedder{}
}

// EmbedImage generates a deterministic embedding based on the photo reference.
// An empty photoRef returns (nil, nil), matching the production contract.
func (m *MockImageEmbedder) EmbedImage(ctx context.Context, photoRef string) ([]float32, error) {
	m.callCount++

	if m.EmbedImageFunc != nil {
		return m.EmbedImageFunc(ctx, photoRef)
	}

	if photoRef == "" {
		return nil, nil
	}
	return DeterministicVector(photoRef, 384), nil
}

// CallCount returns the number of times EmbedImage was called.
func (m *MockImageEmbedder) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockImageEmbedder) Reset() {
	m.callCount = 0
	m.EmbedImageFunc = nil
}
