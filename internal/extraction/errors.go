package extraction

// ExtractionError signals that the archive itself could not be processed:
// either it is unreadable or it contains no eligible invoice documents.
// It is the only error that fails a whole batch.
type ExtractionError struct {
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}
