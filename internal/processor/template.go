package processor

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/veloflow/service-template/internal/notify"
)

// Template is the placeholder implementation shipped with the scaffold.
// Replace its Process body with your actual service logic; the surrounding
// handler, transfer and notification plumbing stays as-is.
type Template struct{}

func NewTemplate() *Template {
	return &Template{}
}

func (*Template) Process(ctx context.Context, inputPath, outputPath string, cfg map[string]any, em *notify.Emitter) (map[string]any, error) {
	em.Progress(ctx, "Analyzing input file...")

	in, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	out, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	defer out.Close()

	// Placeholder transform: pass the input through unchanged. A real
	// service parses the input, processes it and writes its own format.
	written, err := io.Copy(out, in)
	if err != nil {
		return nil, fmt.Errorf("write output: %w", err)
	}

	em.Progress(ctx, "Processing complete")

	return map[string]any{
		"records_processed": 0,
		"bytes_copied":      written,
	}, nil
}

var _ Processor = (*Template)(nil)
