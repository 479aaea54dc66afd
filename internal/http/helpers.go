package http

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/bookswap/internal/services"
)

const loggerContextKey = "request_logger"

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string                `json:"error"`
	Code    string                `json:"code,omitempty"`    // machine-readable error code
	Details []services.FieldError `json:"details,omitempty"` // field errors for validation failures
}

// CreatedResponse acknowledges a created resource.
type CreatedResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// PaginatedResponse wraps paginated data with metadata.
type PaginatedResponse struct {
	Data       any   `json:"data"`
	Total      int64 `json:"total"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
	HasMore    bool  `json:"hasMore"`
	TotalPages int   `json:"totalPages,omitempty"`
}

func newPaginatedResponse(data any, total int64, limit, offset int) PaginatedResponse {
	resp := PaginatedResponse{
		Data:    data,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+limit) < total,
	}
	if limit > 0 {
		resp.TotalPages = int(math.Ceil(float64(total) / float64(limit)))
	}
	return resp
}

// --- Error Response Helpers ---

func statusForKind(kind services.Kind) int {
	switch kind {
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindUnauthorized:
		return http.StatusUnauthorized
	case services.KindForbidden:
		return http.StatusForbidden
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindConflict:
		return http.StatusConflict
	case services.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// respondError maps a service error to its status code and body.
// Errors that are not *services.Error are treated as internal.
func respondError(c *gin.Context, err error) {
	var svcErr *services.Error
	if !errors.As(err, &svcErr) {
		respondInternalError(c, err, "unclassified")
		return
	}
	if svcErr.Kind == services.KindInternal {
		respondInternalError(c, svcErr.Err, svcErr.Message)
		return
	}

	if svcErr.RetryAfter > 0 {
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(svcErr.RetryAfter.Seconds()))))
	}

	resp := ErrorResponse{Error: svcErr.Message, Code: string(svcErr.Kind)}
	if len(svcErr.Fields) > 0 {
		resp.Details = svcErr.Fields
	}
	c.JSON(statusForKind(svcErr.Kind), resp)
}

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string, fields ...services.FieldError) {
	resp := ErrorResponse{Error: message, Code: string(services.KindValidation)}
	if len(fields) > 0 {
		resp.Details = fields
	}
	c.JSON(http.StatusBadRequest, resp)
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, operation string) {
	requestLogger(c).Error("internal error",
		zap.String("operation", operation),
		zap.String("path", c.FullPath()),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error: "internal server error",
		Code:  string(services.KindInternal),
	})
}

// requestLogger returns the logger installed by RequestLogger, or the
// global zap logger outside of it.
func requestLogger(c *gin.Context) *zap.Logger {
	if v, ok := c.Get(loggerContextKey); ok {
		if l, ok := v.(*zap.Logger); ok {
			return l
		}
	}
	return zap.L()
}

// --- Success Response Helpers ---

func respondSuccess(c *gin.Context, message string) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message})
}

func respondCreated(c *gin.Context, id, message string) {
	c.JSON(http.StatusCreated, CreatedResponse{ID: id, Message: message})
}

// --- Parameter Parsing ---

// parsePage reads limit and offset query parameters. Missing values are
// zero, which the stores replace with their defaults.
func parsePage(c *gin.Context) (limit, offset int, ok bool) {
	var fields []services.FieldError
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			fields = append(fields, services.FieldError{Field: "limit", Message: "limit must be a non-negative integer"})
		}
		limit = n
	}
	if raw := c.Query("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			fields = append(fields, services.FieldError{Field: "offset", Message: "offset must be a non-negative integer"})
		}
		offset = n
	}
	if len(fields) > 0 {
		respondBadRequest(c, "invalid pagination", fields...)
		return 0, 0, false
	}
	return limit, offset, true
}
