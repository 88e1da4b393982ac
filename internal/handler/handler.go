package handler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/veloflow/service-template/internal/config"
	"github.com/veloflow/service-template/internal/event"
	"github.com/veloflow/service-template/internal/fault"
	"github.com/veloflow/service-template/internal/notify"
	"github.com/veloflow/service-template/internal/processor"
	"github.com/veloflow/service-template/internal/response"
	"github.com/veloflow/service-template/internal/storage"
	"github.com/veloflow/service-template/pkg/logger"
)

// Handler runs one invocation end to end: validate, download, process,
// upload, respond. Every step is single-shot; the first failure is terminal
// and becomes the error response variant. Failures never propagate as Go
// errors to the platform.
type Handler struct {
	svc    config.Service
	tmpDir string
	store  storage.ObjectStorage
	pub    notify.Publisher
	proc   processor.Processor
}

// New wires a handler from its collaborators. The publisher may be nil, in
// which case progress events are dropped.
func New(svc config.Service, tmpDir string, store storage.ObjectStorage, pub notify.Publisher, proc processor.Processor) *Handler {
	return &Handler{
		svc:    svc,
		tmpDir: tmpDir,
		store:  store,
		pub:    pub,
		proc:   proc,
	}
}

// Handle executes the invocation and always returns a Result.
func (h *Handler) Handle(ctx context.Context, req event.Request) response.Result {
	start := time.Now()

	logger.Log.Info().
		Str("job_id", req.JobID).
		Str("invocation_type", req.InvocationType).
		Msg("Received event")

	// Validation failures return before any storage or bus activity; the
	// orchestrator never sees events for a request it malformed.
	if err := req.Validate(); err != nil {
		logger.Log.Error().Err(err).Msg("Event validation failed")
		return response.Error(err, nil)
	}

	outputKey := req.ResolveOutputKey()
	em := notify.NewEmitter(h.pub, h.svc.ID, req.JobID, req.StageID())

	em.Progress(ctx, "Starting processing...")
	logger.Log.Info().
		Str("job_id", req.JobID).
		Str("input", fmt.Sprintf("s3://%s/%s", req.InputBucket, req.InputKey)).
		Str("output", fmt.Sprintf("s3://%s/%s", req.OutputBucket, outputKey)).
		Str("customer_tier", req.Tier()).
		Msg("Processing job")

	inputPath := storage.ScratchInputPath(h.tmpDir, req.JobID, req.InputKey)
	outputPath := storage.ScratchOutputPath(h.tmpDir, req.JobID, outputKey)
	defer storage.RemoveScratch(inputPath, outputPath)

	// Download
	em.Progress(ctx, "Downloading input file...")
	if err := h.store.Download(ctx, req.InputBucket, req.InputKey, inputPath); err != nil {
		return h.fail(ctx, em, req, start,
			fault.Transfer(fmt.Sprintf("download s3://%s/%s", req.InputBucket, req.InputKey), err))
	}
	inputSize := fileSize(inputPath)
	logger.Log.Info().Int64("bytes", inputSize).Msg("Downloaded input file")

	// Process
	em.Progress(ctx, "Processing file...")
	procStart := time.Now()
	procMeta, err := h.proc.Process(ctx, inputPath, outputPath, req.StageConfig, em)
	if err != nil {
		return h.fail(ctx, em, req, start, fault.Processing(err))
	}
	if _, statErr := os.Stat(outputPath); statErr != nil {
		return h.fail(ctx, em, req, start,
			fault.Processing(fmt.Errorf("processor returned without writing %s", outputPath)))
	}
	logger.Log.Info().
		Dur("duration", time.Since(procStart)).
		Msg("Processing completed")

	// Upload
	em.Progress(ctx, "Uploading output file...")
	if err := h.store.Upload(ctx, outputPath, req.OutputBucket, outputKey); err != nil {
		return h.fail(ctx, em, req, start,
			fault.Transfer(fmt.Sprintf("upload s3://%s/%s", req.OutputBucket, outputKey), err))
	}
	outputSize := fileSize(outputPath)
	logger.Log.Info().Int64("bytes", outputSize).Msg("Uploaded output file")

	metadata := h.buildMetadata(req, start, inputSize, outputSize, procMeta)

	em.Success(ctx, "Processing completed successfully", outputKey, metadata)
	logger.Log.Info().
		Str("job_id", req.JobID).
		Int64("total_ms", time.Since(start).Milliseconds()).
		Msg("Invocation succeeded")

	return response.Success(req.OutputBucket, outputKey, metadata)
}

// fail converts a classified error into the terminal error response and
// emits the best-effort failure event.
func (h *Handler) fail(ctx context.Context, em *notify.Emitter, req event.Request, start time.Time, err *fault.Error) response.Result {
	logger.Log.Error().Err(err).
		Str("job_id", req.JobID).
		Str("error_type", err.Kind).
		Msg("Invocation failed")

	metadata := map[string]any{
		"job_id":             req.JobID,
		"input_key":          req.InputKey,
		"processing_time_ms": time.Since(start).Milliseconds(),
	}

	em.Error(ctx, err.Message, err.Kind, metadata)
	return response.Error(err, metadata)
}

func (h *Handler) buildMetadata(req event.Request, start time.Time, inputSize, outputSize int64, procMeta map[string]any) map[string]any {
	metadata := map[string]any{
		"processing_time_ms":     time.Since(start).Milliseconds(),
		"input_file_size_bytes":  inputSize,
		"output_file_size_bytes": outputSize,
		"customer_tier":          req.Tier(),
		"service_version":        h.svc.Version,
	}
	if req.ReferenceDate != "" {
		metadata["reference_date"] = req.ReferenceDate
	}
	for k, v := range procMeta {
		metadata[k] = v
	}
	return metadata
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
