package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/alekLukanen/errs"
	"github.com/go-playground/validator/v10"
)

// Secret carries the shared key that seeds the fingerprint permutation.
// It formats as a fixed placeholder so the key can never reach log
// output or error text by accident.
type Secret struct {
	Key string `json:"key" validate:"required,min=1"`
}

func (obj Secret) String() string {
	return "[redacted]"
}

func (obj Secret) LogValue() slog.Value {
	return slog.StringValue("[redacted]")
}

// LoadSecret reads a JSON key file of the form {"key": "..."}.
func LoadSecret(path string) (Secret, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Secret{}, errs.Wrap(err, fmt.Errorf("reading key file %s", path))
	}

	var secret Secret
	if err := json.Unmarshal(data, &secret); err != nil {
		return Secret{}, errs.Wrap(err, fmt.Errorf("parsing key file %s", path))
	}

	// the key value must stay out of the error text
	if err := validator.New().Struct(secret); err != nil {
		return Secret{}, errs.NewStackError(fmt.Errorf("%w| key file: %s", ErrInvalidSecret, path))
	}

	return secret, nil
}
