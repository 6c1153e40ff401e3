package i

// Logger defines methods for logging messages at various levels.
type Logger interface {
	Info(string)
	Warning(string)
	Error(string)
}
