package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alekLukanen/errs"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const DefaultStructureColumn = "canonical_smiles"

// FingerprintParams control how the keyed fingerprint is derived from
// a structure's line notation. All parties in a shared run must use
// the same values or their descriptors will not be comparable.
type FingerprintParams struct {
	Radius    int  `json:"radius" yaml:"radius" validate:"required,min=1,max=8"`
	FoldSize  int  `json:"fold_size" yaml:"fold_size" validate:"required,min=2,max=16777216"`
	Binarized bool `json:"binarized" yaml:"binarized"`
}

// Parameters is the run configuration loaded from the config file
// passed on the command line. The file may be JSON or YAML.
type Parameters struct {
	SchemaVersion   string            `json:"schema_version" yaml:"schema_version" validate:"omitempty,max=64"`
	StructureColumn string            `json:"structure_column" yaml:"structure_column" validate:"omitempty,min=1,max=255"`
	Fingerprint     FingerprintParams `json:"fingerprint" yaml:"fingerprint" validate:"required"`
}

func LoadParameters(path string) (Parameters, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Parameters{}, errs.Wrap(err, fmt.Errorf("reading parameters file %s", path))
	}

	var params Parameters
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &params)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &params)
	default:
		return Parameters{}, errs.NewStackError(fmt.Errorf(
			"%w| parameters file extension: %s", ErrUnsupportedFileFormat, filepath.Ext(path),
		))
	}
	if err != nil {
		return Parameters{}, errs.Wrap(err, fmt.Errorf("parsing parameters file %s", path))
	}

	if params.StructureColumn == "" {
		params.StructureColumn = DefaultStructureColumn
	}

	if err := validator.New().Struct(params); err != nil {
		return Parameters{}, errs.NewStackError(fmt.Errorf("%w| %s", ErrInvalidParameters, err.Error()))
	}

	return params, nil
}
