package ginx

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Response is the envelope of every ingress answer.
type Response struct {
	Meta Meta        `json:"meta"`
	Data interface{} `json:"data,omitempty"`
}

type Meta struct {
	Code    int           `json:"code"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

type ErrorDetail struct {
	Path string `json:"path"`
	Info string `json:"info"`
}

// ProcessingData is returned when a sync was queued instead of run inline.
type ProcessingData struct {
	RequestID string `json:"request_id"`
	JobID     string `json:"job_id"`
	PollURL   string `json:"poll_url"`
}

// CodeProcessing marks an accepted request whose result is not ready yet.
const CodeProcessing = 3001

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Meta: Meta{
			Code:    http.StatusOK,
			Message: "OK",
		},
		Data: data,
	})
}

func Error(c *gin.Context, httpCode int, message string) {
	ErrorWithData(c, httpCode, message, nil)
}

// ErrorWithData answers with an error and still carries data, such as the
// partial report of an aborted sync.
func ErrorWithData(c *gin.Context, httpCode int, message string, data interface{}) {
	c.JSON(httpCode, Response{
		Meta: Meta{
			Code:    httpCode,
			Message: message,
		},
		Data: data,
	})
}

func ErrorWithDetails(c *gin.Context, httpCode int, message string, details []ErrorDetail) {
	c.JSON(httpCode, Response{
		Meta: Meta{
			Code:    httpCode,
			Message: message,
			Details: details,
		},
	})
}

// Processing answers 202 with the queued job.
func Processing(c *gin.Context, requestID, jobID, pollURL string) {
	c.JSON(http.StatusAccepted, Response{
		Meta: Meta{
			Code:    CodeProcessing,
			Message: "Status update queued, poll for results",
		},
		Data: ProcessingData{
			RequestID: requestID,
			JobID:     jobID,
			PollURL:   pollURL,
		},
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// BadRequestWithValidation lists each failed field when err comes from the validator.
func BadRequestWithValidation(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		details := make([]ErrorDetail, 0, len(validationErrs))
		for _, fieldErr := range validationErrs {
			details = append(details, ErrorDetail{
				Path: fieldErr.Field(),
				Info: getValidationErrorMessage(fieldErr),
			})
		}
		ErrorWithDetails(c, http.StatusBadRequest, "Validation failed", details)
		return
	}

	BadRequest(c, err.Error())
}

func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

func getValidationErrorMessage(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return fieldErr.Field() + " is required"
	case "url":
		return fieldErr.Field() + " must be a valid URL"
	case "max":
		return fieldErr.Field() + " must be at most " + fieldErr.Param()
	default:
		return fieldErr.Field() + " is invalid"
	}
}
