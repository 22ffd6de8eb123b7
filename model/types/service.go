package types

// Service is an action service invoked once per bulk target. A service
// exposes one or more methods; a bulk request names one of them through
// ActionKind.
type Service interface {
	Name() string
	Methods() Signatures
	Method(name string) (Executable, error)
}

// Humanizer is optionally implemented by services that render their own
// display name and input for a sub-job.
type Humanizer interface {
	Humanize(method string, call *Call) (name string, input []string)
}
