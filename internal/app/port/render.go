package port

import "context"

// ImageFormat is the output format requested from a Renderer.
type ImageFormat string

const (
	ImagePNG  ImageFormat = "png"
	ImageJPEG ImageFormat = "jpeg"
)

// ContentType returns the MIME type for the format.
func (f ImageFormat) ContentType() string {
	if f == ImageJPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// Renderer turns a self-contained HTML document into an image.
type Renderer interface {
	Render(ctx context.Context, html []byte, format ImageFormat) ([]byte, error)
}
