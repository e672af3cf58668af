// Package logging keeps the ledger engine independent of a concrete logging
// framework. Components receive a Logger through their constructors.
package logging

// Logger is the structured logger every component writes through.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// WithError returns a child logger carrying err
	WithError(err error) Logger
	// WithField returns a child logger carrying one extra field
	WithField(key string, value interface{}) Logger
	// WithFields returns a child logger carrying the given fields
	WithFields(fields ...Field) Logger

	// Fatal logs and exits the program
	Fatal(msg string, fields ...Field)
	// Fatalf logs a formatted message and exits the program
	Fatalf(msg string, args ...interface{})
}

// Field is a key-value pair attached to a log line.
type Field struct {
	Key   string
	Value interface{}
}

// F is shorthand for building a Field.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}
