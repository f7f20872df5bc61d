package pipeline

import (
	"context"
	"strings"

	apperrors "github.com/NatiBytes/crispy-vison/internal/errors"
	"github.com/NatiBytes/crispy-vison/internal/inference"
	"github.com/NatiBytes/crispy-vison/internal/logger"
	"github.com/NatiBytes/crispy-vison/pkg/models"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// NoTextFallback is substituted for an empty OCR result.
const NoTextFallback = "No text detected in the image"

// failurePrefix prefixes every pipeline error message shown to the UI.
const failurePrefix = "Failed to process image: "

// Options configures a single pipeline invocation.
type Options struct {
	// ExpectedText, when non-empty, enables match scoring of the extracted
	// text against it.
	ExpectedText string
}

// Analyzer joins the captioning and OCR calls into one result. Failure is
// all-or-nothing: a failure in either call aborts the whole operation and no
// partial result is ever returned.
type Analyzer interface {
	Analyze(ctx context.Context, buf models.ImageBuffer, opts Options) (*models.AnalysisResult, error)
}

type analyzer struct {
	engine inference.Engine
}

// New creates an Analyzer on top of the given inference engine.
func New(engine inference.Engine) Analyzer {
	return &analyzer{engine: engine}
}

// Analyze issues the two inference requests for one image buffer. The calls
// are independent and run concurrently; both must succeed.
func (a *analyzer) Analyze(ctx context.Context, buf models.ImageBuffer, opts Options) (*models.AnalysisResult, error) {
	var description, extracted string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		text, err := a.engine.Caption(gctx, buf.Data)
		if err != nil {
			return err
		}
		description = text
		return nil
	})
	g.Go(func() error {
		text, err := a.engine.ReadText(gctx, buf.Data)
		if err != nil {
			return err
		}
		extracted = text
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"file_name": buf.Name,
			"size":      len(buf.Data),
		}).Error("Image analysis failed")
		return nil, newAnalysisError(err)
	}

	result := &models.AnalysisResult{
		Description: description,
		TextContent: extracted,
	}
	if opts.ExpectedText != "" {
		result.Match = scoreMatch(opts.ExpectedText, extracted)
	}
	if strings.TrimSpace(result.TextContent) == "" {
		result.TextContent = NoTextFallback
	}
	return result, nil
}

// newAnalysisError flattens any pipeline failure into a single error kind;
// the UI never learns which of the two calls failed.
func newAnalysisError(cause error) *apperrors.AppError {
	message := failurePrefix + "unknown error"
	if cause != nil && strings.TrimSpace(cause.Error()) != "" {
		message = failurePrefix + cause.Error()
	}
	return apperrors.NewProcessingError(message, cause)
}
