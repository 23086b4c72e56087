package logger

// WithKV returns l with a single metadata key set.
func WithKV(l Logger, key string, value interface{}) Logger {
	return l.With(map[string]interface{}{key: value})
}
