package api

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/kaptinlin/jsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// ErrInvalidBody is returned for request bodies rejected by a schema.
var ErrInvalidBody = errors.New("invalid request body")

// requestSchemas holds the compiled schemas for the JSON endpoints.
type requestSchemas struct {
	page   *jsonschema.Schema
	remove *jsonschema.Schema
}

func compileSchemas() (*requestSchemas, error) {
	page, err := loadSchema("schemas/page.json")
	if err != nil {
		return nil, err
	}
	remove, err := loadSchema("schemas/remove.json")
	if err != nil {
		return nil, err
	}
	return &requestSchemas{page: page, remove: remove}, nil
}

func loadSchema(name string) (*jsonschema.Schema, error) {
	data, err := schemaFS.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", name, err)
	}
	schema, err := jsonschema.NewCompiler().Compile(data)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return schema, nil
}

// validate checks data against schema and wraps failures in ErrInvalidBody.
func validate(schema *jsonschema.Schema, data []byte) error {
	result := schema.ValidateJSON(data)
	if result.IsValid() {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrInvalidBody, result.Errors)
}

// readBody reads a size-limited request body and validates it against schema.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request, schema *jsonschema.Schema) ([]byte, error) {
	limit := int64(s.Config.MaxBodyBytes)
	if limit <= 0 {
		limit = 64 << 10
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if err := validate(schema, data); err != nil {
		return nil, err
	}
	return data, nil
}
