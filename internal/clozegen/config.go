package clozegen

// Config controls the behavior of the Generator.
type Config struct {
	// Validators run in order on every generated cloze; the first failure
	// rejects it.
	Validators []Validator

	MaxTokens   int
	Temperature float64

	// Attempts is how often a word is retried after a retryable
	// validation failure.
	Attempts int
}

// DefaultConfig returns a Config with the standard validator chain.
func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			&StructuralValidator{},
			&LeakValidator{},
		},
		MaxTokens:   256,
		Temperature: 0.4,
		Attempts:    2,
	}
}
