package storage

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/alekLukanen/errs"
)

const objectLocationScheme = "s3://"

func IsObjectLocation(location string) bool {
	return strings.HasPrefix(location, objectLocationScheme)
}

// ParseObjectLocation splits an s3://bucket/key location into its
// bucket and key.
func ParseObjectLocation(location string) (string, string, error) {
	if !IsObjectLocation(location) {
		return "", "", errs.NewStackError(fmt.Errorf("%w| location: %s", ErrInvalidObjectLocation, location))
	}

	bucket, key, found := strings.Cut(strings.TrimPrefix(location, objectLocationScheme), "/")
	if !found || bucket == "" || key == "" {
		return "", "", errs.NewStackError(fmt.Errorf("%w| location: %s", ErrInvalidObjectLocation, location))
	}
	return bucket, key, nil
}

// JoinLocation joins path parts below a base that is either a local
// directory or an object storage location.
func JoinLocation(base string, parts ...string) string {
	if IsObjectLocation(base) {
		return strings.TrimSuffix(base, "/") + "/" + path.Join(parts...)
	}
	return filepath.Join(append([]string{base}, parts...)...)
}
