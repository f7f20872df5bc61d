package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/NatiBytes/crispy-vison/internal/errors"
	"github.com/NatiBytes/crispy-vison/internal/pipeline"
	"github.com/NatiBytes/crispy-vison/internal/storage"
	"github.com/NatiBytes/crispy-vison/internal/viewstate"
	"github.com/NatiBytes/crispy-vison/pkg/models"
	"github.com/NatiBytes/crispy-vison/pkg/validation"
)

type stubAnalyzer struct {
	fn func(ctx context.Context, buf models.ImageBuffer, opts pipeline.Options) (*models.AnalysisResult, error)
}

func (s *stubAnalyzer) Analyze(ctx context.Context, buf models.ImageBuffer, opts pipeline.Options) (*models.AnalysisResult, error) {
	return s.fn(ctx, buf, opts)
}

func newTestService(analyzer pipeline.Analyzer) (UploadService, *viewstate.Store) {
	state := viewstate.NewStore()
	svc := NewUploadService(validation.NewFileValidator(), storage.NewMemoryStore(), analyzer, state, nil)
	return svc, state
}

func imageUpload(name string) models.ImageBuffer {
	return models.ImageBuffer{Name: name, ContentType: "image/jpeg", Data: []byte("bytes")}
}

func TestProcessUpload_Success(t *testing.T) {
	analyzer := &stubAnalyzer{fn: func(context.Context, models.ImageBuffer, pipeline.Options) (*models.AnalysisResult, error) {
		return &models.AnalysisResult{Description: "a cat", TextContent: "hello"}, nil
	}}
	svc, state := newTestService(analyzer)

	result, previewURL, err := svc.ProcessUpload(context.Background(), imageUpload("cat.jpg"), "")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result.Description != "a cat" {
		t.Errorf("Unexpected result: %+v", result)
	}
	if previewURL == "" {
		t.Error("Expected a preview reference")
	}

	snap := state.Current()
	if snap.Phase != viewstate.PhaseSuccess {
		t.Errorf("Expected success phase, got %s", snap.Phase)
	}
	if snap.PreviewURL != previewURL {
		t.Errorf("Expected state preview %q, got %q", previewURL, snap.PreviewURL)
	}
}

func TestProcessUpload_RejectedFileLeavesStateUntouched(t *testing.T) {
	analyzer := &stubAnalyzer{fn: func(context.Context, models.ImageBuffer, pipeline.Options) (*models.AnalysisResult, error) {
		t.Fatal("Pipeline must not run for a rejected file")
		return nil, nil
	}}
	svc, state := newTestService(analyzer)

	_, _, err := svc.ProcessUpload(context.Background(), imageUpload("doc.pdf"), "")
	if err == nil {
		t.Fatal("Expected validation error")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}
	if snap := state.Current(); snap.Phase != viewstate.PhaseIdle {
		t.Errorf("Expected state to remain idle, got %s", snap.Phase)
	}
}

func TestProcessUpload_FailureSetsErrorState(t *testing.T) {
	analyzer := &stubAnalyzer{fn: func(context.Context, models.ImageBuffer, pipeline.Options) (*models.AnalysisResult, error) {
		return nil, apperrors.NewProcessingError("Failed to process image: timeout", errors.New("timeout"))
	}}
	svc, state := newTestService(analyzer)

	_, previewURL, err := svc.ProcessUpload(context.Background(), imageUpload("broken.gif"), "")
	if err == nil {
		t.Fatal("Expected error")
	}

	snap := state.Current()
	if snap.Phase != viewstate.PhaseError {
		t.Errorf("Expected error phase, got %s", snap.Phase)
	}
	if snap.Message != "Failed to process image: timeout" {
		t.Errorf("Unexpected error message: %q", snap.Message)
	}
	if snap.PreviewURL != previewURL {
		t.Errorf("Expected preview to stay visible alongside the error, got %q", snap.PreviewURL)
	}
}

func TestProcessUpload_NewUploadSupersedesInFlight(t *testing.T) {
	var calls int32
	firstStarted := make(chan struct{})
	release := make(chan struct{})

	analyzer := &stubAnalyzer{fn: func(ctx context.Context, buf models.ImageBuffer, opts pipeline.Options) (*models.AnalysisResult, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(firstStarted)
			<-release
			return &models.AnalysisResult{Description: "stale"}, nil
		}
		return &models.AnalysisResult{Description: "fresh"}, nil
	}}
	svc, state := newTestService(analyzer)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		// The first upload's own invocation still returns its result.
		result, _, err := svc.ProcessUpload(context.Background(), imageUpload("first.jpg"), "")
		if err != nil {
			t.Errorf("Expected no error for first upload, got: %v", err)
		}
		if result.Description != "stale" {
			t.Errorf("Expected first invocation result, got %+v", result)
		}
	}()

	select {
	case <-firstStarted:
	case <-time.After(5 * time.Second):
		t.Fatal("First upload never reached the pipeline")
	}

	if _, _, err := svc.ProcessUpload(context.Background(), imageUpload("second.jpg"), ""); err != nil {
		t.Fatalf("Expected no error for second upload, got: %v", err)
	}

	close(release)
	wg.Wait()

	// The stale completion must not overwrite the newer state.
	snap := state.Current()
	if snap.Phase != viewstate.PhaseSuccess {
		t.Fatalf("Expected success phase, got %s", snap.Phase)
	}
	if snap.Result.Description != "fresh" {
		t.Errorf("Expected newer result to win, got %q", snap.Result.Description)
	}
}

func TestPreview_RoundTrip(t *testing.T) {
	analyzer := &stubAnalyzer{fn: func(context.Context, models.ImageBuffer, pipeline.Options) (*models.AnalysisResult, error) {
		return &models.AnalysisResult{Description: "d", TextContent: "t"}, nil
	}}
	svc, _ := newTestService(analyzer)

	_, previewURL, err := svc.ProcessUpload(context.Background(), imageUpload("cat.jpg"), "")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	id := previewURL[len("/preview/"):]
	buf, err := svc.Preview(context.Background(), id)
	if err != nil {
		t.Fatalf("Expected preview to be retrievable, got: %v", err)
	}
	if buf.Name != "cat.jpg" {
		t.Errorf("Unexpected preview: %+v", buf)
	}

	if _, err := svc.Preview(context.Background(), "unknown"); !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		t.Errorf("Expected not found error, got %v", err)
	}
}
