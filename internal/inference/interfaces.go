package inference

import "context"

// Engine issues the two model calls against a remote inference service.
// Both take the raw bytes of an uploaded image and return generated text.
type Engine interface {
	// Caption returns a natural-language description of the image.
	Caption(ctx context.Context, image []byte) (string, error)

	// ReadText returns the text recognized in the image. An empty string
	// means the model detected no text; that is not an error.
	ReadText(ctx context.Context, image []byte) (string, error)
}
