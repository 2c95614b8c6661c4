package openai

import (
	"context"
	"log/slog"

	"github.com/poiesic/adoptmatch/ai"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// ImageEmbedder implements ai.ImageEmbedder against CLIP-style servers that
// expose image embedding through the OpenAI-compatible embeddings endpoint.
// The photo URL is sent as the input document; the server fetches and embeds
// the image. This matches how clip-as-service, infinity and similar servers
// behave.
type ImageEmbedder struct {
	embedder embeddings.Embedder
	logger   *slog.Logger
}

func newImageEmbedder(config *ai.Config) (*ImageEmbedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ImageHost),
		openai.WithToken("none"),
		openai.WithEmbeddingModel(config.ImageModel),
	)
	if err != nil {
		return nil, err
	}

	embedder, err := embeddings.NewEmbedder(client)
	if err != nil {
		return nil, err
	}

	return &ImageEmbedder{
		embedder: embedder,
		logger:   slog.Default().With("component", "openai-image-embedder"),
	}, nil
}

// NewImageEmbedder creates a new image embedder using the provided configuration.
//
// Returns ai.ImageEmbedder interface to enforce abstraction.
func NewImageEmbedder(config *ai.Config) (ai.ImageEmbedder, error) {
	return newImageEmbedder(config)
}

// EmbedImage generates a vector embedding for a photo reference.
// An empty photoRef yields (nil, nil): listings without photos are legal and
// scoring decides how to weight the missing vector.
func (e *ImageEmbedder) EmbedImage(ctx context.Context, photoRef string) ([]float32, error) {
	if photoRef == "" {
		return nil, nil
	}

	e.logger.Debug("generating image embedding", "photo", photoRef)

	embeddings, err := e.embedder.EmbedDocuments(ctx, []string{photoRef})
	if err != nil {
		e.logger.Error("failed to generate image embedding", "photo", photoRef, "err", err)
		return nil, err
	}

	if len(embeddings) == 0 {
		e.logger.Warn("image embedder returned empty result", "photo", photoRef)
		return nil, nil
	}

	return embeddings[0], nil
}
