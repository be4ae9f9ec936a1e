package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeTestFile(t *testing.T, name string, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("writing test file: %s", err)
	}
	return path
}

func TestLoadParametersFromJSON(t *testing.T) {
	path := writeTestFile(t, "parameters.json", `{
		"schema_version": "1.0",
		"fingerprint": {"radius": 3, "fold_size": 32000, "binarized": true}
	}`)

	params, err := LoadParameters(path)
	if !assert.Nil(t, err) {
		return
	}

	assert.Equal(t, params.SchemaVersion, "1.0")
	assert.Equal(t, params.StructureColumn, DefaultStructureColumn)
	assert.Equal(t, params.Fingerprint.Radius, 3)
	assert.Equal(t, params.Fingerprint.FoldSize, 32000)
	assert.True(t, params.Fingerprint.Binarized)
}

func TestLoadParametersFromYAML(t *testing.T) {
	path := writeTestFile(t, "parameters.yaml", `
schema_version: "1.0"
structure_column: structure_text
fingerprint:
  radius: 2
  fold_size: 1024
`)

	params, err := LoadParameters(path)
	if !assert.Nil(t, err) {
		return
	}

	assert.Equal(t, params.StructureColumn, "structure_text")
	assert.Equal(t, params.Fingerprint.Radius, 2)
	assert.Equal(t, params.Fingerprint.FoldSize, 1024)
	assert.False(t, params.Fingerprint.Binarized)
}

func TestLoadParametersValidation(t *testing.T) {
	testCases := []struct {
		caseName string
		fileName string
		data     string
		expErr   error
	}{
		{
			caseName: "radius-too-small",
			fileName: "parameters.json",
			data:     `{"fingerprint": {"radius": 0, "fold_size": 1024}}`,
			expErr:   ErrInvalidParameters,
		},
		{
			caseName: "radius-too-large",
			fileName: "parameters.json",
			data:     `{"fingerprint": {"radius": 9, "fold_size": 1024}}`,
			expErr:   ErrInvalidParameters,
		},
		{
			caseName: "fold-size-too-small",
			fileName: "parameters.yaml",
			data:     "fingerprint:\n  radius: 2\n  fold_size: 1\n",
			expErr:   ErrInvalidParameters,
		},
		{
			caseName: "missing-fingerprint-section",
			fileName: "parameters.json",
			data:     `{"schema_version": "1.0"}`,
			expErr:   ErrInvalidParameters,
		},
		{
			caseName: "unsupported-extension",
			fileName: "parameters.toml",
			data:     `radius = 2`,
			expErr:   ErrUnsupportedFileFormat,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.caseName, func(t *testing.T) {
			path := writeTestFile(t, tc.fileName, tc.data)
			_, err := LoadParameters(path)
			if !assert.NotNil(t, err) {
				return
			}
			assert.True(t, errors.Is(err, tc.expErr), "unexpected error: %s", err)
		})
	}
}

func TestLoadParametersMissingFile(t *testing.T) {
	_, err := LoadParameters(filepath.Join(t.TempDir(), "no-such.json"))
	assert.NotNil(t, err)
}

func TestLoadParametersMalformedFile(t *testing.T) {
	path := writeTestFile(t, "parameters.json", `{"fingerprint": {`)
	_, err := LoadParameters(path)
	assert.NotNil(t, err)
}

func TestLoadSecret(t *testing.T) {
	path := writeTestFile(t, "key.json", `{"key": "consortium-test-key"}`)

	secret, err := LoadSecret(path)
	if !assert.Nil(t, err) {
		return
	}
	assert.Equal(t, secret.Key, "consortium-test-key")
}

func TestLoadSecretValidation(t *testing.T) {
	testCases := []struct {
		caseName string
		data     string
	}{
		{caseName: "empty-key", data: `{"key": ""}`},
		{caseName: "missing-key", data: `{}`},
	}
	for _, tc := range testCases {
		t.Run(tc.caseName, func(t *testing.T) {
			path := writeTestFile(t, "key.json", tc.data)
			_, err := LoadSecret(path)
			if !assert.NotNil(t, err) {
				return
			}
			assert.True(t, errors.Is(err, ErrInvalidSecret), "unexpected error: %s", err)
		})
	}
}

func TestSecretNeverFormatsItsKey(t *testing.T) {
	secret := Secret{Key: "very-secret-value"}

	assert.Equal(t, fmt.Sprintf("%v", secret), "[redacted]")
	assert.Equal(t, fmt.Sprintf("%s", secret), "[redacted]")

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	logger.Info("loaded key file", slog.Any("secret", secret))

	assert.NotContains(t, buf.String(), "very-secret-value")
	assert.Contains(t, buf.String(), "[redacted]")
}
