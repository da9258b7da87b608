package aggregation

import (
	"bytes"
	_ "embed"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed record.schema.json
var recordSchemaData []byte

var (
	recordSchema *jsonschema.Schema
	compileOnce  sync.Once
	compileErr   error
)

// compileRecordSchema compiles the embedded record schema once.
func compileRecordSchema() error {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()

		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(recordSchemaData))
		if err != nil {
			compileErr = fmt.Errorf("unmarshal record schema: %w", err)
			return
		}

		if err := compiler.AddResource("record.schema.json", doc); err != nil {
			compileErr = fmt.Errorf("add record schema resource: %w", err)
			return
		}

		recordSchema, err = compiler.Compile("record.schema.json")
		if err != nil {
			compileErr = fmt.Errorf("compile record schema: %w", err)
			return
		}
	})

	return compileErr
}

// ValidateRecord validates raw JSON data against the result record schema.
func ValidateRecord(data []byte) error {
	if err := compileRecordSchema(); err != nil {
		return err
	}

	v, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	if err := recordSchema.Validate(v); err != nil {
		return fmt.Errorf("record validation failed: %w", err)
	}

	return nil
}
