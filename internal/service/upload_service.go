package service

import (
	"context"
	"time"

	apperrors "github.com/NatiBytes/crispy-vison/internal/errors"
	"github.com/NatiBytes/crispy-vison/internal/observer"
	"github.com/NatiBytes/crispy-vison/internal/pipeline"
	"github.com/NatiBytes/crispy-vison/internal/storage"
	"github.com/NatiBytes/crispy-vison/internal/viewstate"
	"github.com/NatiBytes/crispy-vison/pkg/models"
	"github.com/NatiBytes/crispy-vison/pkg/validation"
)

// UploadService drives one accepted upload through the analysis pipeline and
// the presentation state.
type UploadService interface {
	// ProcessUpload validates the file, stores its preview, runs the
	// pipeline, and records the outcome in the presentation state. It
	// returns the result of this invocation along with its preview URL.
	ProcessUpload(ctx context.Context, buf models.ImageBuffer, expectedText string) (*models.AnalysisResult, string, error)

	// State returns the current presentation state.
	State() viewstate.Snapshot

	// Preview returns a stored preview by id.
	Preview(ctx context.Context, id string) (models.ImageBuffer, error)
}

type uploadService struct {
	validator *validation.FileValidator
	previews  storage.PreviewStore
	analyzer  pipeline.Analyzer
	state     *viewstate.Store
	publisher observer.Subject
}

// NewUploadService creates a new upload service
func NewUploadService(
	validator *validation.FileValidator,
	previews storage.PreviewStore,
	analyzer pipeline.Analyzer,
	state *viewstate.Store,
	publisher observer.Subject,
) UploadService {
	return &uploadService{
		validator: validator,
		previews:  previews,
		analyzer:  analyzer,
		state:     state,
		publisher: publisher,
	}
}

func (s *uploadService) ProcessUpload(ctx context.Context, buf models.ImageBuffer, expectedText string) (*models.AnalysisResult, string, error) {
	// Rejected files never touch the presentation state; there is no error
	// phase for a wrong file type.
	if err := s.validator.ValidateImageFile(buf.Name, buf.ContentType); err != nil {
		return nil, "", err
	}

	previewURL, err := s.previews.Save(ctx, buf)
	if err != nil {
		return nil, "", apperrors.NewInternalError("failed to store preview", err)
	}

	// Entering loading clears any prior result, error and preview before the
	// pipeline starts, so stale results are never shown next to an in-flight
	// request.
	seq := s.state.Begin(previewURL)
	start := time.Now()
	s.notify(ctx, observer.UploadEvent{
		EventType: observer.AnalysisStarted,
		Timestamp: start,
		FileName:  buf.Name,
		Seq:       seq,
	})

	result, err := s.analyzer.Analyze(ctx, buf, pipeline.Options{ExpectedText: expectedText})
	if err != nil {
		applied := s.state.Fail(seq, apperrors.GetMessage(err))
		s.notifyOutcome(ctx, observer.AnalysisFailed, buf.Name, seq, start, applied, apperrors.GetMessage(err))
		return nil, previewURL, err
	}

	applied := s.state.Succeed(seq, result)
	s.notifyOutcome(ctx, observer.AnalysisCompleted, buf.Name, seq, start, applied, "")
	return result, previewURL, nil
}

func (s *uploadService) State() viewstate.Snapshot {
	return s.state.Current()
}

func (s *uploadService) Preview(ctx context.Context, id string) (models.ImageBuffer, error) {
	buf, err := s.previews.Open(ctx, id)
	if err != nil {
		return models.ImageBuffer{}, apperrors.NewNotFoundError("preview not found", err)
	}
	return buf, nil
}

func (s *uploadService) notify(ctx context.Context, event observer.UploadEvent) {
	if s.publisher != nil {
		s.publisher.NotifyObservers(ctx, event)
	}
}

// notifyOutcome publishes the pipeline outcome; a dropped (stale) completion
// is published as superseded instead.
func (s *uploadService) notifyOutcome(ctx context.Context, eventType observer.EventType, fileName string, seq uint64, start time.Time, applied bool, errMessage string) {
	if !applied {
		eventType = observer.ResultSuperseded
	}
	s.notify(ctx, observer.UploadEvent{
		EventType:      eventType,
		Timestamp:      time.Now().UTC(),
		FileName:       fileName,
		Seq:            seq,
		ProcessingTime: time.Since(start),
		Success:        eventType == observer.AnalysisCompleted,
		ErrorMessage:   errMessage,
	})
}
