package common

// LoaderError represents resource-loading errors
type LoaderError struct {
	Code    string `json:"code"`
	URL     string `json:"url"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *LoaderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *LoaderError) Unwrap() error {
	return e.Cause
}

// Error codes, one per failure class
const (
	ErrCodeURLScheme     = "URL_SCHEME"
	ErrCodeManifestParse = "MANIFEST_PARSE"
	ErrCodeNetwork       = "NETWORK"
	ErrCodeUnknown       = "UNKNOWN"
)

// NewLoaderError creates a new loader error
func NewLoaderError(code, url, message string, cause error) *LoaderError {
	return &LoaderError{
		Code:    code,
		URL:     url,
		Message: message,
		Cause:   cause,
	}
}
