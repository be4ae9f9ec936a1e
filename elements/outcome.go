package elements

// Outcome is the result of applying a computation to a single row. The
// outcome at index i always belongs to input row i; a failed outcome
// carries the row error message and no values.
type Outcome struct {
	Values       Row
	ErrorMessage string
	Success      bool
}

func NewSuccessOutcome(values Row) Outcome {
	return Outcome{
		Values:  values,
		Success: true,
	}
}

func NewFailedOutcome(message string) Outcome {
	return Outcome{
		ErrorMessage: message,
	}
}
