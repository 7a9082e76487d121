package apperror

// AppError carries an HTTP status code alongside a user-facing message, so
// service-layer sentinel errors can be translated uniformly at the edge.
type AppError struct {
	Code    int    // HTTP status code (e.g. 400, 403, 409)
	Message string // user-facing error message
	Err     error  // underlying error, if any (not exposed to the user)
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates an AppError with a status code and message.
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates an AppError wrapping an existing error.
func Wrap(err error, code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
