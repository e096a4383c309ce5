package payloadschema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed articles.schema.json
var articlesSchemaJSON string

// Article is one row of the inbound batch document. Weak rows (empty
// titles, garbage dates) are admitted here and weeded out by the
// pipeline's own filter, so only structural problems fail validation.
type Article struct {
	Title     string  `json:"title"`
	URL       *string `json:"url,omitempty"`
	Published *string `json:"published,omitempty"`
	Source    *string `json:"source,omitempty"`
	Content   *string `json:"content,omitempty"`
	Summary   *string `json:"summary,omitempty"`
	Language  *string `json:"language,omitempty"`
}

type Batch struct {
	Articles []Article `json:"articles"`
}

var (
	compileOnce       sync.Once
	compiledSchema    *jsonschema.Schema
	compiledSchemaErr error
)

func ValidateBatchPayload(payload json.RawMessage) (*Batch, error) {
	value, err := decodeStrictJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("decode payload JSON: %w", err)
	}

	schema, err := loadSchema()
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	if err := schema.Validate(value); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	normalized, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("normalize payload JSON: %w", err)
	}

	var batch Batch
	if err := json.Unmarshal(normalized, &batch); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}

	if err := validateSemantics(&batch); err != nil {
		return nil, err
	}

	return &batch, nil
}

func loadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		compiler.AssertFormat = true

		if err := compiler.AddResource("articles.schema.json", strings.NewReader(articlesSchemaJSON)); err != nil {
			compiledSchemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}

		schema, err := compiler.Compile("articles.schema.json")
		if err != nil {
			compiledSchemaErr = fmt.Errorf("compile schema: %w", err)
			return
		}

		compiledSchema = schema
	})

	if compiledSchemaErr != nil {
		return nil, compiledSchemaErr
	}
	if compiledSchema == nil {
		return nil, fmt.Errorf("schema not initialized")
	}
	return compiledSchema, nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("payload is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("payload contains trailing content")
	}

	return value, nil
}

func validateSemantics(batch *Batch) error {
	if batch == nil {
		return fmt.Errorf("payload is nil")
	}

	for i, article := range batch.Articles {
		if article.URL != nil {
			trimmed := strings.TrimSpace(*article.URL)
			if trimmed != "" && strings.ContainsAny(trimmed, " \t") {
				return fmt.Errorf("articles[%d].url must not contain whitespace", i)
			}
		}
	}

	return nil
}
