package transport

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/NatiBytes/crispy-vison/internal/config"
	apperrors "github.com/NatiBytes/crispy-vison/internal/errors"
	"github.com/NatiBytes/crispy-vison/internal/logger"
	"github.com/NatiBytes/crispy-vison/internal/service"
	"github.com/NatiBytes/crispy-vison/internal/viewstate"
	"github.com/NatiBytes/crispy-vison/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// uploadField is the multipart form field carrying the image.
const uploadField = "images"

func NewHandler(svc service.UploadService, cfg *config.Config) http.Handler {
	r := gin.Default()

	// Add middleware
	r.Use(
		requestSizeLimiter(cfg.MaxUploadSize),
		errorHandler(),
	)

	// Configure routes
	r.GET("/health", healthCheck)
	r.GET("/state", currentState(svc))
	r.GET("/preview/:id", servePreview(svc))
	r.POST("/analyze", analyzeUpload(svc, cfg))

	return r
}

func analyzeUpload(svc service.UploadService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		// Log request start
		logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"user_agent": c.Request.UserAgent(),
			"ip":         c.ClientIP(),
		}).Info("Processing image upload")

		form, err := c.MultipartForm()
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid multipart form", err)
			return
		}

		files := form.File[uploadField]
		if len(files) == 0 {
			respondError(c, http.StatusBadRequest, "no image file provided",
				apperrors.NewValidationError("form field "+uploadField+" is empty", nil))
			return
		}
		// Exactly one image at a time: only the first file of a multi-file
		// upload is accepted, the rest are discarded silently.
		if len(files) > 1 {
			logger.WithFields(logrus.Fields{
				"discarded": len(files) - 1,
				"ip":        c.ClientIP(),
			}).Warn("Multiple files uploaded, keeping the first")
		}

		buf, err := readUpload(files[0])
		if err != nil {
			respondError(c, http.StatusBadRequest, "failed to read upload", err)
			return
		}

		result, previewURL, err := svc.ProcessUpload(ctx, buf, c.PostForm("expected_text"))
		if err != nil {
			statusCode := apperrors.GetStatusCode(err)
			if errors.Is(err, context.DeadlineExceeded) {
				statusCode = http.StatusGatewayTimeout
			}
			respondError(c, statusCode, "image analysis failed", err)
			return
		}

		duration := time.Since(startTime)
		logger.WithFields(logrus.Fields{
			"file_name":          buf.Name,
			"processing_time_ms": duration.Milliseconds(),
		}).Info("Image upload processed successfully")

		c.JSON(http.StatusOK, models.AnalyzeResponse{
			FileName:          buf.Name,
			PreviewURL:        previewURL,
			Result:            result,
			ProcessingTimeSec: duration.Seconds(),
		})
	}
}

// readUpload drains one multipart file into an immutable buffer.
func readUpload(fh *multipart.FileHeader) (models.ImageBuffer, error) {
	f, err := fh.Open()
	if err != nil {
		return models.ImageBuffer{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return models.ImageBuffer{}, err
	}

	return models.ImageBuffer{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func currentState(svc service.UploadService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, toStateResponse(svc.State()))
	}
}

func toStateResponse(snap viewstate.Snapshot) models.StateResponse {
	resp := models.StateResponse{
		State:      string(snap.Phase),
		PreviewURL: snap.PreviewURL,
		Error:      snap.Message,
		Result:     snap.Result,
	}
	if !snap.UpdatedAt.IsZero() {
		resp.UpdatedAt = snap.UpdatedAt.Format(time.RFC3339)
	}
	return resp
}

func servePreview(svc service.UploadService) gin.HandlerFunc {
	return func(c *gin.Context) {
		buf, err := svc.Preview(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "preview not found", err)
			return
		}

		contentType := buf.ContentType
		if contentType == "" {
			contentType = http.DetectContentType(buf.Data)
		}
		c.Data(http.StatusOK, contentType, buf.Data)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err), "request processing failed", err)
		}
	}
}

func determineStatusCode(err error) int {
	// Check if it's a custom app error first
	if appErr, ok := err.(*apperrors.AppError); ok {
		return appErr.StatusCode
	}

	// Fallback to context-based errors
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	// Log the error with context
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: apperrors.GetMessage(err),
	})
}
