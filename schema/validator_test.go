package payloadschema

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestValidateBatchPayload_Valid(t *testing.T) {
	payload := json.RawMessage(`{
		"articles":[
			{
				"title":"Central bank raises rates for the third time",
				"url":"https://example.com/story/rates",
				"published":"Mon, 05 May 2025 14:00:00 GMT",
				"source":"Example Wire",
				"content":"<p>The central bank raised rates again.</p>",
				"language":"en"
			},
			{
				"title":"Short one"
			}
		]
	}`)

	batch, err := ValidateBatchPayload(payload)
	if err != nil {
		t.Fatalf("expected payload to be valid, got error: %v", err)
	}

	if len(batch.Articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(batch.Articles))
	}
	if batch.Articles[0].Source == nil || *batch.Articles[0].Source != "Example Wire" {
		t.Fatalf("expected source to round-trip, got %+v", batch.Articles[0])
	}
}

func TestValidateBatchPayload_EmptyBatch(t *testing.T) {
	payload := json.RawMessage(`{"articles":[]}`)

	batch, err := ValidateBatchPayload(payload)
	if err != nil {
		t.Fatalf("expected empty batch to be valid, got error: %v", err)
	}
	if len(batch.Articles) != 0 {
		t.Fatalf("expected no articles, got %d", len(batch.Articles))
	}
}

func TestValidateBatchPayload_MissingArticlesKey(t *testing.T) {
	payload := json.RawMessage(`{"items":[]}`)

	_, err := ValidateBatchPayload(payload)
	if err == nil {
		t.Fatalf("expected validation to fail without articles key")
	}
}

func TestValidateBatchPayload_MissingTitle(t *testing.T) {
	payload := json.RawMessage(`{
		"articles":[
			{"url":"https://example.com/untitled"}
		]
	}`)

	_, err := ValidateBatchPayload(payload)
	if err == nil {
		t.Fatalf("expected validation to fail for article without title key")
	}
}

func TestValidateBatchPayload_TitleMustBeString(t *testing.T) {
	payload := json.RawMessage(`{
		"articles":[
			{"title":123}
		]
	}`)

	_, err := ValidateBatchPayload(payload)
	if err == nil {
		t.Fatalf("expected validation to fail when title is not a string")
	}
}

func TestValidateBatchPayload_UnknownKeyRejected(t *testing.T) {
	payload := json.RawMessage(`{
		"articles":[
			{"title":"Known shape only","body":"nope"}
		]
	}`)

	_, err := ValidateBatchPayload(payload)
	if err == nil {
		t.Fatalf("expected validation to fail for unknown article key")
	}
}

func TestValidateBatchPayload_LanguageTagShape(t *testing.T) {
	payload := json.RawMessage(`{
		"articles":[
			{"title":"Language check","language":"EN-us"}
		]
	}`)

	batch, err := ValidateBatchPayload(payload)
	if err != nil {
		t.Fatalf("expected regional language tag to be valid, got error: %v", err)
	}
	if batch.Articles[0].Language == nil || *batch.Articles[0].Language != "EN-us" {
		t.Fatalf("expected language tag to round-trip untouched, got %+v", batch.Articles[0].Language)
	}

	payload = json.RawMessage(`{
		"articles":[
			{"title":"Language check","language":"e!"}
		]
	}`)

	if _, err := ValidateBatchPayload(payload); err == nil {
		t.Fatalf("expected validation to fail for malformed language tag")
	}
}

func TestValidateBatchPayload_URLWithWhitespace(t *testing.T) {
	payload := json.RawMessage(`{
		"articles":[
			{"title":"Spaced URL","url":"https://example.com/a b"}
		]
	}`)

	_, err := ValidateBatchPayload(payload)
	if err == nil {
		t.Fatalf("expected validation to fail for url containing whitespace")
	}
	if !strings.Contains(err.Error(), "whitespace") {
		t.Fatalf("expected whitespace semantic error, got: %v", err)
	}
}

func TestValidateBatchPayload_TrailingContent(t *testing.T) {
	payload := json.RawMessage(`{"articles":[]}{"articles":[]}`)

	_, err := ValidateBatchPayload(payload)
	if err == nil {
		t.Fatalf("expected validation to fail for trailing content")
	}
}
