package handler

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veloflow/service-template/internal/config"
	"github.com/veloflow/service-template/internal/event"
	"github.com/veloflow/service-template/internal/fault"
	"github.com/veloflow/service-template/internal/notify"
	"github.com/veloflow/service-template/internal/response"
)

type fakeStorage struct {
	downloads   int
	uploads     int
	downloadErr error
	uploadErr   error

	uploadedBucket string
	uploadedKey    string
	uploadedPath   string
}

func (s *fakeStorage) Download(_ context.Context, bucket, key, destPath string) error {
	s.downloads++
	if s.downloadErr != nil {
		return s.downloadErr
	}
	return os.WriteFile(destPath, []byte("input-bytes"), 0o644)
}

func (s *fakeStorage) Upload(_ context.Context, srcPath, bucket, key string) error {
	s.uploads++
	if s.uploadErr != nil {
		return s.uploadErr
	}
	s.uploadedPath = srcPath
	s.uploadedBucket = bucket
	s.uploadedKey = key
	return nil
}

type fakePublisher struct {
	types []string
	err   error
}

func (p *fakePublisher) Publish(_ context.Context, eventType string, _ notify.Event) error {
	p.types = append(p.types, eventType)
	return p.err
}

type fakeProcessor struct {
	calls       int
	err         error
	meta        map[string]any
	skipWriting bool
}

func (p *fakeProcessor) Process(ctx context.Context, inputPath, outputPath string, cfg map[string]any, em *notify.Emitter) (map[string]any, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	if !p.skipWriting {
		if err := os.WriteFile(outputPath, []byte("output-bytes"), 0o644); err != nil {
			return nil, err
		}
	}
	return p.meta, nil
}

func testService() config.Service {
	return config.Service{ID: "service-template-v1", Version: "1.0.0"}
}

func directRequest() event.Request {
	return event.Request{
		InvocationType: "direct",
		JobID:          "J1",
		InputBucket:    "in",
		InputKey:       "a.pdf",
		OutputBucket:   "out",
		OutputKey:      "jobs/J1/r.pdf",
	}
}

func newHarness(t *testing.T) (*Handler, *fakeStorage, *fakePublisher, *fakeProcessor) {
	t.Helper()
	store := &fakeStorage{}
	pub := &fakePublisher{}
	proc := &fakeProcessor{meta: map[string]any{"records": 3}}
	h := New(testService(), t.TempDir(), store, pub, proc)
	return h, store, pub, proc
}

func TestSuccessfulInvocation(t *testing.T) {
	h, store, pub, _ := newHarness(t)

	res := h.Handle(context.Background(), directRequest())

	assert.Equal(t, response.StatusSuccess, res.Status)
	assert.Equal(t, "out", res.OutputBucket)
	assert.Equal(t, "jobs/J1/r.pdf", res.OutputKey)
	assert.Equal(t, 3, res.Metadata["records"])
	assert.Equal(t, "standard", res.Metadata["customer_tier"])
	assert.Equal(t, "1.0.0", res.Metadata["service_version"])
	assert.Contains(t, res.Metadata, "processing_time_ms")
	assert.EqualValues(t, 11, res.Metadata["input_file_size_bytes"])
	assert.EqualValues(t, 12, res.Metadata["output_file_size_bytes"])

	assert.Equal(t, 1, store.downloads)
	assert.Equal(t, 1, store.uploads)
	assert.Equal(t, "out", store.uploadedBucket)
	assert.Equal(t, "jobs/J1/r.pdf", store.uploadedKey)

	// Four progress updates plus the terminal completion event.
	require.NotEmpty(t, pub.types)
	assert.Equal(t, notify.TypeCompleted, pub.types[len(pub.types)-1])
	for _, et := range pub.types[:len(pub.types)-1] {
		assert.Equal(t, notify.TypeProgress, et)
	}
}

func TestValidationFailureSkipsAllSideEffects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*event.Request)
		want   string
	}{
		{"missing job_id", func(r *event.Request) { r.JobID = "" }, "job_id"},
		{"missing input_bucket", func(r *event.Request) { r.InputBucket = "" }, "input_bucket"},
		{"missing input_key", func(r *event.Request) { r.InputKey = "" }, "input_key"},
		{"missing output_bucket", func(r *event.Request) { r.OutputBucket = "" }, "output_bucket"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, store, pub, proc := newHarness(t)
			req := directRequest()
			tt.mutate(&req)

			res := h.Handle(context.Background(), req)

			assert.Equal(t, response.StatusError, res.Status)
			assert.Equal(t, fault.KindValidation, res.ErrorType)
			assert.Contains(t, res.Error, tt.want)

			assert.Zero(t, store.downloads)
			assert.Zero(t, store.uploads)
			assert.Zero(t, proc.calls)
			assert.Empty(t, pub.types)
		})
	}
}

func TestInvocationTypeCheckedBeforeOtherFields(t *testing.T) {
	h, store, pub, _ := newHarness(t)
	req := event.Request{InvocationType: "async"}

	res := h.Handle(context.Background(), req)

	assert.Equal(t, fault.KindValidation, res.ErrorType)
	assert.Contains(t, res.Error, "direct")
	assert.Zero(t, store.downloads)
	assert.Empty(t, pub.types)
}

func TestFallbackOutputKey(t *testing.T) {
	h, store, _, _ := newHarness(t)
	req := directRequest()
	req.OutputKey = ""

	res := h.Handle(context.Background(), req)

	assert.Equal(t, response.StatusSuccess, res.Status)
	assert.Equal(t, "jobs/J1/output.xlsx", res.OutputKey)
	assert.Equal(t, "jobs/J1/output.xlsx", store.uploadedKey)
}

func TestDownloadFailureIsTerminal(t *testing.T) {
	h, store, pub, proc := newHarness(t)
	store.downloadErr = errors.New("NoSuchKey")

	res := h.Handle(context.Background(), directRequest())

	assert.Equal(t, response.StatusError, res.Status)
	assert.Equal(t, fault.KindTransfer, res.ErrorType)
	assert.Equal(t, "J1", res.Metadata["job_id"])
	assert.Equal(t, "a.pdf", res.Metadata["input_key"])

	assert.Zero(t, proc.calls)
	assert.Zero(t, store.uploads)
	assert.Equal(t, notify.TypeFailed, pub.types[len(pub.types)-1])
}

func TestUploadFailureIsTerminal(t *testing.T) {
	h, store, pub, _ := newHarness(t)
	store.uploadErr = errors.New("AccessDenied")

	res := h.Handle(context.Background(), directRequest())

	assert.Equal(t, response.StatusError, res.Status)
	assert.Equal(t, fault.KindTransfer, res.ErrorType)
	assert.Equal(t, notify.TypeFailed, pub.types[len(pub.types)-1])
}

func TestProcessorErrorBecomesErrorVariant(t *testing.T) {
	h, store, _, proc := newHarness(t)
	proc.err = &fault.Error{Kind: "ValueError", Message: "bad input"}

	res := h.Handle(context.Background(), directRequest())

	assert.Equal(t, response.StatusError, res.Status)
	assert.Equal(t, "bad input", res.Error)
	assert.Equal(t, "ValueError", res.ErrorType)
	assert.Equal(t, "J1", res.Metadata["job_id"])
	assert.Zero(t, store.uploads)
}

func TestUnclassifiedProcessorError(t *testing.T) {
	h, _, _, proc := newHarness(t)
	proc.err = errors.New("bad input")

	res := h.Handle(context.Background(), directRequest())

	assert.Equal(t, response.StatusError, res.Status)
	assert.Equal(t, fault.KindProcessing, res.ErrorType)
}

func TestProcessorMustWriteOutput(t *testing.T) {
	h, store, _, proc := newHarness(t)
	proc.skipWriting = true

	res := h.Handle(context.Background(), directRequest())

	assert.Equal(t, response.StatusError, res.Status)
	assert.Equal(t, fault.KindProcessing, res.ErrorType)
	assert.Zero(t, store.uploads)
}

func TestUnreachableBusDoesNotAffectOutcome(t *testing.T) {
	h, _, pub, _ := newHarness(t)
	pub.err = errors.New("bus unreachable")

	res := h.Handle(context.Background(), directRequest())

	assert.Equal(t, response.StatusSuccess, res.Status)
	assert.Equal(t, "jobs/J1/r.pdf", res.OutputKey)
}

func TestScratchFilesRemovedOnSuccess(t *testing.T) {
	store := &fakeStorage{}
	pub := &fakePublisher{}
	proc := &fakeProcessor{meta: map[string]any{}}
	tmp := t.TempDir()
	h := New(testService(), tmp, store, pub, proc)

	res := h.Handle(context.Background(), directRequest())
	require.Equal(t, response.StatusSuccess, res.Status)

	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestScratchFilesRemovedOnProcessingFailure(t *testing.T) {
	store := &fakeStorage{}
	pub := &fakePublisher{}
	proc := &fakeProcessor{err: errors.New("boom")}
	tmp := t.TempDir()
	h := New(testService(), tmp, store, pub, proc)

	res := h.Handle(context.Background(), directRequest())
	require.Equal(t, response.StatusError, res.Status)

	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReferenceDateInMetadata(t *testing.T) {
	h, _, _, _ := newHarness(t)
	req := directRequest()
	req.ReferenceDate = "2025-01-15"

	res := h.Handle(context.Background(), req)

	require.Equal(t, response.StatusSuccess, res.Status)
	assert.Equal(t, "2025-01-15", res.Metadata["reference_date"])
}
