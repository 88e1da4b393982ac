package processor

import (
	"context"

	"github.com/veloflow/service-template/internal/notify"
)

// Processor is the single customization point of the template. A compliant
// implementation:
//
//   - has written a file at outputPath before returning nil
//   - signals failure only through the returned error, never a sentinel value
//   - may emit progress through the emitter (convention: at most ~1/second)
//   - does not touch object storage or the bus directly; the handler owns both
type Processor interface {
	Process(ctx context.Context, inputPath, outputPath string, cfg map[string]any, em *notify.Emitter) (map[string]any, error)
}
