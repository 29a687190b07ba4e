package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smartlogix/cargopro/internal/accesspolicy"
	customerdomain "github.com/smartlogix/cargopro/internal/customer/domain"
	documentdomain "github.com/smartlogix/cargopro/internal/document/domain"
	identitydomain "github.com/smartlogix/cargopro/internal/identity/domain"
	"github.com/smartlogix/cargopro/internal/identity/token"
	invoicedomain "github.com/smartlogix/cargopro/internal/invoice/domain"
	parceldomain "github.com/smartlogix/cargopro/internal/parcel/domain"
	"github.com/smartlogix/cargopro/internal/pdfexport"
	settingsdomain "github.com/smartlogix/cargopro/internal/settings/domain"
	shipmentdomain "github.com/smartlogix/cargopro/internal/shipment/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	if status >= http.StatusInternalServerError {
		return "error", payload.Type
	}
	return "warn", payload.Type
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := err.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, identitydomain.ErrInvalidCredentials),
		errors.Is(err, token.ErrInvalidToken),
		errors.Is(err, token.ErrWrongType):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, accesspolicy.ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrInternal):
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isIdentityValidationError(err),
		isCustomerValidationError(err),
		isShipmentValidationError(err),
		isParcelValidationError(err),
		isDocumentValidationError(err),
		isInvoiceValidationError(err),
		isSettingsValidationError(err),
		errors.Is(err, pdfexport.ErrInvalidCustomer):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, identitydomain.ErrUserExists),
		errors.Is(err, shipmentdomain.ErrShipmentExists),
		errors.Is(err, parceldomain.ErrParcelExists),
		errors.Is(err, documentdomain.ErrDocumentExists),
		errors.Is(err, invoicedomain.ErrInvoiceExists),
		errors.Is(err, invoicedomain.ErrItemExists):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, identitydomain.ErrNotFound),
		errors.Is(err, customerdomain.ErrNotFound),
		errors.Is(err, shipmentdomain.ErrNotFound),
		errors.Is(err, parceldomain.ErrNotFound),
		errors.Is(err, parceldomain.ErrShipmentNotFound),
		errors.Is(err, parceldomain.ErrCustomerNotFound),
		errors.Is(err, documentdomain.ErrNotFound),
		errors.Is(err, documentdomain.ErrShipmentNotFound),
		errors.Is(err, invoicedomain.ErrNotFound),
		errors.Is(err, invoicedomain.ErrCustomerNotFound),
		errors.Is(err, invoicedomain.ErrParcelNotFound),
		errors.Is(err, invoicedomain.ErrItemNotFound),
		errors.Is(err, pdfexport.ErrNotFound),
		errors.Is(err, pdfexport.ErrNoInvoices),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isIdentityValidationError(err error) bool {
	switch err {
	case identitydomain.ErrInvalidUsername,
		identitydomain.ErrInvalidEmail,
		identitydomain.ErrInvalidPassword,
		identitydomain.ErrPasswordMismatch,
		identitydomain.ErrInvalidID:
		return true
	default:
		return false
	}
}

func isCustomerValidationError(err error) bool {
	switch err {
	case customerdomain.ErrInvalidName,
		customerdomain.ErrInvalidEmail,
		customerdomain.ErrInvalidStatus,
		customerdomain.ErrInvalidID:
		return true
	default:
		return false
	}
}

func isShipmentValidationError(err error) bool {
	switch err {
	case shipmentdomain.ErrInvalidShipmentNo,
		shipmentdomain.ErrInvalidTransport,
		shipmentdomain.ErrInvalidVessel,
		shipmentdomain.ErrInvalidWeight,
		shipmentdomain.ErrInvalidVolume,
		shipmentdomain.ErrInvalidRoute,
		shipmentdomain.ErrInvalidStatus:
		return true
	default:
		return false
	}
}

func isParcelValidationError(err error) bool {
	switch err {
	case parceldomain.ErrInvalidParcelNo,
		parceldomain.ErrInvalidShipment,
		parceldomain.ErrInvalidCustomer,
		parceldomain.ErrInvalidWeight,
		parceldomain.ErrInvalidVolume,
		parceldomain.ErrInvalidCharge,
		parceldomain.ErrInvalidPayment,
		parceldomain.ErrInvalidCommodity:
		return true
	default:
		return false
	}
}

func isDocumentValidationError(err error) bool {
	switch err {
	case documentdomain.ErrInvalidDocumentNo,
		documentdomain.ErrInvalidShipment,
		documentdomain.ErrInvalidCustomer,
		documentdomain.ErrInvalidParcel,
		documentdomain.ErrInvalidType,
		documentdomain.ErrMissingFile:
		return true
	default:
		return false
	}
}

func isInvoiceValidationError(err error) bool {
	switch err {
	case invoicedomain.ErrInvalidInvoiceNo,
		invoicedomain.ErrInvalidCustomer,
		invoicedomain.ErrInvalidDueDate,
		invoicedomain.ErrInvalidTax,
		invoicedomain.ErrInvalidStatus,
		invoicedomain.ErrInvalidCost,
		invoicedomain.ErrInvalidItemID:
		return true
	default:
		return false
	}
}

func isSettingsValidationError(err error) bool {
	switch err {
	case settingsdomain.ErrInvalidEmail,
		settingsdomain.ErrInvalidTimezone,
		settingsdomain.ErrInvalidTimeout:
		return true
	default:
		return false
	}
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	if code == "password_mismatch" {
		return "password2"
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	case "password_mismatch":
		return "passwords do not match"
	default:
		return "invalid value"
	}
}
