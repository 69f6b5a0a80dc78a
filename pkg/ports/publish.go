package ports

import "context"

// DiagramWriter stores DOT text and tells where renders should go.
type DiagramWriter interface {
	// WriteDot stores the DOT source of slug and returns its path.
	WriteDot(slug, dot string) (string, error)

	// ImagePath returns where the rendered image of slug belongs.
	ImagePath(slug string) string

	// ImageDir returns the directory holding every rendered image.
	ImageDir() string
}

// Renderer rasterizes a DOT file into an image.
type Renderer interface {
	// Render converts the DOT file at input into an image at output.
	// An error wrapping domain.ErrToolExit means the renderer ran and failed;
	// any other error means it could not run at all.
	Render(ctx context.Context, input, output string) error
}

// Publisher transfers rendered images to the publication host.
type Publisher interface {
	Publish(ctx context.Context, dir string) error
}
