package billing

import "github.com/gofiber/fiber/v2"

// Error codes surfaced to API clients.
const (
	CodeValidationError       = "VALIDATION_ERROR"
	CodePlanNotConfigured     = "PLAN_NOT_CONFIGURED"
	CodeDuplicateSubscription = "DUPLICATE_SUBSCRIPTION"
	CodeCustomerError         = "RAZORPAY_CUSTOMER_ERROR"
	CodeSubscriptionError     = "RAZORPAY_SUBSCRIPTION_ERROR"
	CodeDatabaseError         = "DATABASE_ERROR"
	CodeMalformedPayload      = "MALFORMED_PAYLOAD"
	CodeNotFound              = "NOT_FOUND"
	CodeInternalError         = "INTERNAL_ERROR"
)

// ServiceError is the machine-readable error shape for everything the billing
// service rejects. HTTPStatus maps the taxonomy onto responses; Details
// carries structured hints such as subscriptionCancelled or upgradeOptions.
type ServiceError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]interface{}
}

func (e *ServiceError) Error() string {
	return e.Code + ": " + e.Message
}

func newValidationError(msg string) *ServiceError {
	return &ServiceError{Code: CodeValidationError, Message: msg, HTTPStatus: fiber.StatusBadRequest}
}

func newPlanNotConfiguredError(tier, cycle string) *ServiceError {
	return &ServiceError{
		Code:       CodePlanNotConfigured,
		Message:    "no active plan configured for tier " + tier + " with " + cycle + " billing",
		HTTPStatus: fiber.StatusBadRequest,
	}
}

func newMalformedPayloadError(msg string) *ServiceError {
	return &ServiceError{Code: CodeMalformedPayload, Message: msg, HTTPStatus: fiber.StatusBadRequest}
}

func newInternalError(msg string) *ServiceError {
	return &ServiceError{Code: CodeInternalError, Message: msg, HTTPStatus: fiber.StatusInternalServerError}
}

// AsServiceError unwraps err into a *ServiceError when possible.
func AsServiceError(err error) (*ServiceError, bool) {
	se, ok := err.(*ServiceError)
	return se, ok
}
