package validation

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/tomster12/growth-sub000/pkg/config"
)

//go:embed world.schema.json
var worldSchemaJSON string

const worldSchemaURL = "world.schema.json"

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func worldSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString(worldSchemaURL, worldSchemaJSON)
	})
	return schema, schemaErr
}

// ValidateSchema performs Level 1 (schema) validation on a parsed Config.
// The config is checked against the embedded JSON schema, then for the
// cross-field constraints a schema cannot state.
func ValidateSchema(c *config.Config) *Report {
	r := NewReport()

	validateAgainstSchema(c, r)
	validateRequirements(c, r)
	validateGradient(c, r)

	return r
}

func validateAgainstSchema(c *config.Config, r *Report) {
	s, err := worldSchema()
	if err != nil {
		r.AddError(Result{Level: LevelSchema, Message: fmt.Sprintf("compiling world schema: %v", err)})
		return
	}

	data, err := json.Marshal(c)
	if err != nil {
		r.AddError(Result{Level: LevelSchema, Message: fmt.Sprintf("encoding config: %v", err)})
		return
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		r.AddError(Result{Level: LevelSchema, Message: fmt.Sprintf("decoding config: %v", err)})
		return
	}

	err = s.Validate(doc)
	if err == nil {
		return
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		r.AddError(Result{Level: LevelSchema, Message: err.Error()})
		return
	}
	for _, leaf := range leafCauses(ve) {
		r.AddError(Result{
			Level:    LevelSchema,
			Message:  leaf.Message,
			Path:     pointerPath(leaf.InstanceLocation),
			Expected: leaf.KeywordLocation,
		})
	}
}

func leafCauses(ve *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*jsonschema.ValidationError{ve}
	}
	var leaves []*jsonschema.ValidationError
	for _, c := range ve.Causes {
		leaves = append(leaves, leafCauses(c)...)
	}
	return leaves
}

// pointerPath turns a JSON pointer such as /biomes/requirements/0/id into
// biomes.requirements.0.id.
func pointerPath(ptr string) string {
	return strings.ReplaceAll(strings.TrimPrefix(ptr, "/"), "/", ".")
}

func validateRequirements(c *config.Config, r *Report) {
	b := c.Biomes
	if len(b.Requirements) == 0 {
		r.AddWarning(Result{
			Level:       LevelSchema,
			Message:     "no biome requirements; the boundary stays unassigned",
			Path:        "biomes.requirements",
			Suggestions: []string{"Add at least one requirement with min_count >= 1"},
		})
	}

	seen := make(map[string]int)
	for i, req := range b.Requirements {
		path := fmt.Sprintf("biomes.requirements.%d", i)
		if prev, ok := seen[req.ID]; ok && req.ID != "" {
			r.AddError(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("duplicate biome id %q (also requirement %d)", req.ID, prev),
				Path:        path + ".id",
				ActualValue: req.ID,
			})
		}
		seen[req.ID] = i
		if req.ID == b.Underground && req.ID != "" {
			r.AddWarning(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("surface biome %q is also the underground biome", req.ID),
				Path:        path + ".id",
				ActualValue: req.ID,
			})
		}
	}
}

func validateGradient(c *config.Config, r *Report) {
	b := c.Biomes
	if b.GradientOffset > b.Depth {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     "biomes.gradient_offset cannot exceed biomes.depth",
			Path:        "biomes.gradient_offset",
			ActualValue: b.GradientOffset,
			Expected:    fmt.Sprintf("<= %d", b.Depth),
		})
	}
}
