// Where: internal/infra/ui/secret.go
// What: Opaque credential value.
// Why: Keep registry tokens out of console output, the run log, and saved config.
package ui

// masked is what every serialization surface of a Secret renders.
const masked = "*****"

// Secret wraps a sensitive string so that fmt verbs, loggers, and
// marshalers cannot serialize the underlying value. Only Reveal returns it.
type Secret struct {
	value string
}

// NewSecret wraps a raw credential value.
func NewSecret(value string) Secret {
	return Secret{value: value}
}

// Reveal returns the underlying value. Callers must only hand it to
// channels that never reach the log, such as a child process stdin.
func (s Secret) Reveal() string {
	return s.value
}

// IsZero reports whether no value has been set.
func (s Secret) IsZero() bool {
	return s.value == ""
}

func (s Secret) String() string {
	return masked
}

func (s Secret) GoString() string {
	return masked
}

// MarshalText masks the value so YAML/JSON encoders cannot persist it.
func (s Secret) MarshalText() ([]byte, error) {
	return []byte(masked), nil
}
