// Package result turns the Briefing Service's generation payload into display
// text. The payload mirrors an upstream generative-text provider and is not
// guaranteed to be well formed, so every lookup is optional.
package result

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// FallbackMessage is shown in place of the document when extraction fails.
const FallbackMessage = "Erro ao processar o briefing gerado."

// TextPath locates the generated text inside the provider envelope.
const TextPath = "candidates.0.content.parts.0.text"

// Stage names the extraction step that failed.
type Stage string

const (
	StageEnvelope Stage = "envelope"
	StageText     Stage = "text"
)

// ErrNoResult is returned when no payload has been generated yet.
var ErrNoResult = errors.New("result: no generation result")

// ParseError reports which part of the payload was unusable.
type ParseError struct {
	Stage  Stage
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("result: %s: %s", e.Stage, e.Reason)
}

// Raw is the opaque JSON body returned by a successful submission.
type Raw []byte

// Extract reads the generated text and, when it is itself a JSON document with
// a non-empty "briefing" string, returns that field. Text that is not JSON, or
// JSON without a briefing, is returned verbatim.
func Extract(raw Raw) (string, error) {
	text, err := generatedText(raw)
	if err != nil {
		return "", err
	}
	if !gjson.Valid(text) {
		return text, nil
	}
	inner := gjson.Parse(text)
	if !inner.IsObject() {
		return text, nil
	}
	if briefing := inner.Get("briefing"); briefing.Type == gjson.String && briefing.Str != "" {
		return briefing.Str, nil
	}
	return text, nil
}

// Content is Extract with the canned fallback substituted for any error.
func Content(raw Raw) string {
	text, err := Extract(raw)
	if err != nil {
		return FallbackMessage
	}
	return text
}

// ShortTitle returns the inner document's briefing_short_title when present.
func ShortTitle(raw Raw) (string, bool) {
	text, err := generatedText(raw)
	if err != nil || !gjson.Valid(text) {
		return "", false
	}
	title := gjson.Get(text, "briefing_short_title")
	if title.Type != gjson.String || strings.TrimSpace(title.Str) == "" {
		return "", false
	}
	return strings.TrimSpace(title.Str), true
}

func generatedText(raw Raw) (string, error) {
	if raw == nil {
		return "", ErrNoResult
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return "", &ParseError{Stage: StageEnvelope, Reason: "empty body"}
	}
	if !gjson.ValidBytes(raw) {
		return "", &ParseError{Stage: StageEnvelope, Reason: "invalid JSON"}
	}
	value := gjson.GetBytes(raw, TextPath)
	if !value.Exists() {
		return "", &ParseError{Stage: StageText, Reason: TextPath + " missing"}
	}
	if value.Type != gjson.String {
		return "", &ParseError{Stage: StageText, Reason: fmt.Sprintf("%s is %s, not a string", TextPath, value.Type)}
	}
	if value.Str == "" {
		return "", &ParseError{Stage: StageText, Reason: TextPath + " is empty"}
	}
	return value.Str, nil
}
