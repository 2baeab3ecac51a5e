package events

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed recording.schema.json
var recordingSchema []byte

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("recording-v1.schema.json", strings.NewReader(string(recordingSchema))); err != nil {
			schemaErr = fmt.Errorf("events: add schema resource: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile("recording-v1.schema.json")
	})
	return schema, schemaErr
}

// ValidateLog checks serialized log data against the recording schema
// without building a Sequence. It reports schema violations as
// *MalformedDataError. Unmarshal performs equivalent structural checks;
// ValidateLog is for vetting untrusted files up front and for surfacing
// the full schema error detail.
func ValidateLog(data []byte) error {
	sch, err := compiledSchema()
	if err != nil {
		return err
	}
	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return &MalformedDataError{Index: -1, Reason: fmt.Sprintf("not valid JSON: %v", err)}
	}
	if err := sch.Validate(instance); err != nil {
		return &MalformedDataError{Index: -1, Reason: err.Error()}
	}
	return nil
}
