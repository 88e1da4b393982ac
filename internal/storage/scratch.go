package storage

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/veloflow/service-template/pkg/logger"
)

// ScratchInputPath names the local scratch file for a downloaded input
// object: input_{job_id}_{basename}. Prefixing with the job ID keeps
// concurrent invocations on the same host apart.
func ScratchInputPath(tmpDir, jobID, inputKey string) string {
	return filepath.Join(tmpDir, fmt.Sprintf("input_%s_%s", jobID, path.Base(inputKey)))
}

// ScratchOutputPath names the local scratch file the processor writes to,
// carrying the output key's extension so format-sensitive tooling behaves.
func ScratchOutputPath(tmpDir, jobID, outputKey string) string {
	return filepath.Join(tmpDir, fmt.Sprintf("output_%s%s", jobID, path.Ext(outputKey)))
}

// RemoveScratch deletes scratch files on any exit path. Failures are logged
// and dropped; cleanup never changes an invocation's outcome.
func RemoveScratch(paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			logger.Log.Warn().Err(err).Str("path", p).Msg("Failed to clean up scratch file")
		}
	}
}
