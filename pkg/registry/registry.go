// pkg/registry/registry.go
package registry

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	apperrors "vortexzz-apply/internal/common/errors"
)

//go:embed content.json
var defaultContent []byte

//go:embed content.schema.json
var contentSchema []byte

// Default returns the embedded content registry.
func Default() (*ContentRegistry, error) {
	return Parse(defaultContent)
}

// LoadRegistry reads a content registry from path. An empty path yields Default.
func LoadRegistry(path string) (*ContentRegistry, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse validates data against the content schema and decodes it.
func Parse(data []byte) (*ContentRegistry, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	var reg ContentRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}
	return &reg, nil
}

// Validate checks a raw registry document against the embedded JSON schema.
func Validate(data []byte) error {
	schemaLoader := gojsonschema.NewBytesLoader(contentSchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return apperrors.NewContentInvalidError(err.Error())
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return apperrors.NewContentInvalidError(strings.Join(errs, "; "))
	}

	return nil
}

// WithInviteURL returns a copy of the registry pointing at a different invite.
func (r *ContentRegistry) WithInviteURL(url string) *ContentRegistry {
	if url == "" {
		return r
	}
	cp := *r
	cp.InviteURL = url
	return &cp
}
