package replay

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// recordSchema is the contract for one JSONL line. Validation happens
// before decoding so a malformed line is reported with its cause rather
// than as a type error.
const recordSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["userId", "topicId", "correct", "difficulty", "timeTakenSeconds"],
	"additionalProperties": false,
	"properties": {
		"userId": {"type": "string", "minLength": 1},
		"topicId": {"type": "string", "minLength": 1},
		"correct": {"type": "boolean"},
		"difficulty": {"type": "number", "minimum": 0, "maximum": 1},
		"timeTakenSeconds": {"type": "number", "exclusiveMinimum": 0},
		"frustrationSignals": {"type": "integer", "minimum": 0},
		"at": {"type": "string", "format": "date-time"}
	}
}`

const schemaURL = "schema://attempt-record.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func getSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		parsed, err := jsonschema.UnmarshalJSON(strings.NewReader(recordSchema))
		if err != nil {
			schemaErr = fmt.Errorf("parse record schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, parsed); err != nil {
			schemaErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}

// Record is one historical attempt from a replay file. At is optional;
// records without it are applied at the replay's own clock. Line is the
// 1-based source line, kept for error reporting.
type Record struct {
	UserID             string     `json:"userId"`
	TopicID            string     `json:"topicId"`
	Correct            bool       `json:"correct"`
	Difficulty         float64    `json:"difficulty"`
	TimeTakenSeconds   float64    `json:"timeTakenSeconds"`
	FrustrationSignals int        `json:"frustrationSignals"`
	At                 *time.Time `json:"at"`
	Line               int        `json:"-"`
}

// ErrInvalidRecord reports a replay line that failed validation, with
// its 1-based line number.
type ErrInvalidRecord struct {
	Line int
	Err  error
}

func (e *ErrInvalidRecord) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ErrInvalidRecord) Unwrap() error { return e.Err }

// Decode reads a JSONL stream, schema-validating every line. It returns
// the valid records plus one error per rejected line; blank lines are
// skipped. A read failure of the stream itself also ends up in errs.
func Decode(r io.Reader) (records []Record, errs []error) {
	schema, err := getSchema()
	if err != nil {
		return nil, []error{err}
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}

		var parsed any
		if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
			errs = append(errs, &ErrInvalidRecord{Line: line, Err: fmt.Errorf("invalid JSON: %w", err)})
			continue
		}
		if err := schema.Validate(parsed); err != nil {
			errs = append(errs, &ErrInvalidRecord{Line: line, Err: err})
			continue
		}

		var rec Record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			errs = append(errs, &ErrInvalidRecord{Line: line, Err: err})
			continue
		}
		rec.Line = line
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		errs = append(errs, fmt.Errorf("read replay stream: %w", err))
	}
	return records, errs
}
