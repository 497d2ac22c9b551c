package scoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/fadilmartias/cv-screening/internal/model"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"
)

// ParseFailedDetails is recorded on every criterion of a neutral fallback evaluation.
const ParseFailedDetails = "parsing failed"

var ErrEmptyResponse = errors.New("empty model response")

// NeutralEvaluation is substituted when a rubric response cannot be decoded.
func NeutralEvaluation(r Rubric) map[string]model.CriterionScore {
	out := make(map[string]model.CriterionScore, len(r.Criteria))
	for _, name := range r.Criteria {
		out[name] = model.CriterionScore{Score: NeutralScore, Details: ParseFailedDetails}
	}
	return out
}

// StripCodeFence removes a surrounding ```json ... ``` block if present.
func StripCodeFence(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```JSON")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	return strings.TrimSpace(raw)
}

// ParseEvaluation decodes a rubric response. The document must be a JSON
// object whose criteria, when present, are {score, details} objects. Scores
// are rounded and clamped; absent or unparseable scores become NeutralScore.
func ParseEvaluation(raw string, r Rubric) (map[string]model.CriterionScore, error) {
	cleaned := StripCodeFence(raw)
	if cleaned == "" {
		return nil, ErrEmptyResponse
	}

	var doc any
	dec := json.NewDecoder(strings.NewReader(cleaned))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode %s evaluation: %w", r.Name, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("decode %s evaluation: trailing data after JSON object", r.Name)
	}

	schema, err := schemaFor(r)
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%s evaluation does not match schema: %w", r.Name, err)
	}

	out := make(map[string]model.CriterionScore, len(r.Criteria))
	for _, name := range r.Criteria {
		node := gjson.Get(cleaned, gjsonKey(name))
		out[name] = model.CriterionScore{
			Score:   scoreOf(node.Get("score")),
			Details: strings.TrimSpace(node.Get("details").String()),
		}
	}
	return out, nil
}

func scoreOf(v gjson.Result) int {
	var f float64
	switch v.Type {
	case gjson.Number:
		f = v.Float()
	case gjson.String:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return NeutralScore
		}
		f = parsed
	default:
		return NeutralScore
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return NeutralScore
	}
	if f > MaxScore {
		return MaxScore
	}
	if f < MinScore {
		return MinScore
	}
	return Clamp(int(math.Round(f)))
}

func gjsonKey(name string) string {
	r := strings.NewReplacer(".", `\.`, "*", `\*`, "?", `\?`)
	return r.Replace(name)
}

// schemas caches compiled rubric schemas keyed by rubricKey.
var schemas sync.Map

func rubricKey(r Rubric) string {
	return r.Name + ":" + strings.Join(r.Criteria, ",")
}

// schemaFor compiles the schema for r once and reuses it afterwards.
func schemaFor(r Rubric) (*jsonschema.Schema, error) {
	key := rubricKey(r)
	if cached, ok := schemas.Load(key); ok {
		return cached.(*jsonschema.Schema), nil
	}
	schema, err := compileSchema(r)
	if err != nil {
		return nil, err
	}
	actual, _ := schemas.LoadOrStore(key, schema)
	return actual.(*jsonschema.Schema), nil
}

func compileSchema(r Rubric) (*jsonschema.Schema, error) {
	criterion := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score":   map[string]any{"type": []string{"number", "string", "null"}},
			"details": map[string]any{"type": []string{"string", "null"}},
		},
	}
	props := make(map[string]any, len(r.Criteria))
	for _, name := range r.Criteria {
		props[name] = criterion
	}
	schemaMap := map[string]any{
		"$schema":    "http://json-schema.org/draft-07/schema#",
		"type":       "object",
		"properties": props,
	}

	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal %s schema: %w", r.Name, err)
	}
	compiler := jsonschema.NewCompiler()
	url := r.Name + "_evaluation.json"
	if err := compiler.AddResource(url, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add %s schema: %w", r.Name, err)
	}
	return compiler.Compile(url)
}
