package bruno

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// ErrInvalidDocument is returned when an input document does not look like
// a Postman collection or environment.
var ErrInvalidDocument = errors.New("invalid postman document")

const collectionSchema = `{
  "type": "object",
  "required": ["info", "item"],
  "properties": {
    "info": {
      "type": "object",
      "required": ["name"],
      "properties": {"name": {"type": "string"}}
    },
    "item": {"type": "array"},
    "variable": {"type": "array"},
    "event": {"type": "array"}
  }
}`

const environmentSchema = `{
  "type": "object",
  "required": ["values"],
  "properties": {
    "name": {"type": "string"},
    "values": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["key"],
        "properties": {"key": {"type": "string"}}
      }
    }
  }
}`

var (
	schemasOnce         sync.Once
	schemasErr          error
	compiledCollection  *gojsonschema.Schema
	compiledEnvironment *gojsonschema.Schema
)

func loadSchemas() error {
	schemasOnce.Do(func() {
		compiledCollection, schemasErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(collectionSchema))
		if schemasErr != nil {
			return
		}
		compiledEnvironment, schemasErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(environmentSchema))
	})
	return schemasErr
}

// ValidateCollection checks that doc has the minimal Postman collection shape.
func ValidateCollection(doc []byte) error {
	if err := loadSchemas(); err != nil {
		return fmt.Errorf("loading collection schema: %w", err)
	}
	return validate(compiledCollection, doc, "collection")
}

// ValidateEnvironment checks that doc has the minimal Postman environment shape.
func ValidateEnvironment(doc []byte) error {
	if err := loadSchemas(); err != nil {
		return fmt.Errorf("loading environment schema: %w", err)
	}
	return validate(compiledEnvironment, doc, "environment")
}

func validate(schema *gojsonschema.Schema, doc []byte, kind string) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidDocument, kind, err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s: %s", ErrInvalidDocument, kind, strings.Join(msgs, "; "))
}
