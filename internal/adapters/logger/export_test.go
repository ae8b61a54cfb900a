// export_test.go exports private functions for white-box testing.
package logger

// Message returns the entry message.
func (e errorEntry) Message() string { return e.message }

// Metadata returns the entry metadata.
func (e errorEntry) Metadata() map[string]any { return e.metadata }

// ErrorEntries formats the entries collected from err.
func ErrorEntries(err error) []interface {
	Message() string
	Metadata() map[string]any
} {
	collected := collectErrorEntries(err)
	out := make([]interface {
		Message() string
		Metadata() map[string]any
	}, len(collected))
	for i, e := range collected {
		out[i] = e
	}
	return out
}

// FormatError renders err the way Logger.Error does in pretty mode.
func FormatError(err error) string {
	return formatErrorEntries(collectErrorEntries(err))
}
