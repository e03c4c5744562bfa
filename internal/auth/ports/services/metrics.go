package services

// Исходы операций для метрик.
const (
	ResultSuccess             = "success"
	ResultInvalidCredentials  = "invalid_credentials"
	ResultInvalidToken        = "invalid_token"
	ResultInvalidRefreshToken = "invalid_refresh_token"
	ResultExpiredRefreshToken = "expired_refresh_token"
	ResultUserNotFound        = "user_not_found"
	ResultValidation          = "validation"
	ResultConflict            = "conflict"
	ResultError               = "error"
)

// Операции для метрик.
const (
	OperationRegister = "register"
	OperationLogin    = "login"
	OperationRefresh  = "refresh"
)

// AuthMetrics учитывает исходы операций аутентификации.
type AuthMetrics interface {
	ObserveAttempt(operation, result string)
}
