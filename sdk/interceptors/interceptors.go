package interceptors

// Level selects the severity a Logging call is emitted at.
type Level string

const (
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
)

// EnvDevelopment is the only environment tag that enables Logging.
const EnvDevelopment = "development"

// Interceptor binds request/response hooks to a transport instance of type
// I whose requests are configured by C and answered by R.
//
// OnRequest and OnResponse may transform the value they receive. The error
// hooks decide whether a failure stays a failure or becomes a value.
// SetupInterceptors registers the four hooks on the instance; calling it
// more than once registers them more than once.
type Interceptor[I, C, R any] interface {
	GetInstance() I
	OnRequest(config C) (C, error)
	OnResponse(response R) (R, error)
	OnRequestError(err error) (C, error)
	OnResponseError(err error) (R, error)
	SetupInterceptors()
	Logging(level Level, message any)
}
