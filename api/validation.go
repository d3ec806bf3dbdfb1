package api

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"taskly-api/domain"
)

// Input contracts, one embedded JSON Schema each.
const (
	schemaCreateBoard   = "createBoard"
	schemaUpdateBoard   = "updateBoard"
	schemaCreateStatus  = "createStatus"
	schemaUpdateStatus  = "updateStatus"
	schemaCreateTask    = "createTask"
	schemaUpdateTask    = "updateTask"
	schemaCreateSubTask = "createSubTask"
	schemaUpdateSubTask = "updateSubTask"

	schemaBaseURL = "https://taskly.dev/schemas/"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var schemaNames = []string{
	schemaCreateBoard, schemaUpdateBoard,
	schemaCreateStatus, schemaUpdateStatus,
	schemaCreateTask, schemaUpdateTask,
	schemaCreateSubTask, schemaUpdateSubTask,
}

var schemas = mustCompileSchemas()

// requiredMessages overrides the generic minLength message for fields whose
// emptiness means "missing".
var requiredMessages = map[string]string{
	"name":        "Name is required",
	"title":       "Title is required",
	"description": "Description is required",
}

func mustCompileSchemas() map[string]*jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true

	for _, name := range schemaNames {
		f, err := schemaFS.Open("schemas/" + name + ".json")
		if err != nil {
			panic(fmt.Sprintf("api: open schema %s: %v", name, err))
		}
		err = compiler.AddResource(schemaBaseURL+name+".json", f)
		f.Close()
		if err != nil {
			panic(fmt.Sprintf("api: add schema %s: %v", name, err))
		}
	}

	out := make(map[string]*jsonschema.Schema, len(schemaNames))
	for _, name := range schemaNames {
		s, err := compiler.Compile(schemaBaseURL + name + ".json")
		if err != nil {
			panic(fmt.Sprintf("api: compile schema %s: %v", name, err))
		}
		out[name] = s
	}
	return out
}

// bindBody reads the request body, validates it against the named schema and
// decodes it into dst. Unknown properties are ignored.
func bindBody(c echo.Context, schema string, dst any) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return err
	}
	return decodeValid(body, schemas[schema], dst)
}

func decodeValid(body []byte, schema *jsonschema.Schema, dst any) error {
	var doc any
	if err := sonic.ConfigStd.Unmarshal(body, &doc); err != nil {
		return formError("Invalid JSON body")
	}
	if err := schema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return schemaErrors(schema, ve)
		}
		return err
	}
	// Re-encoding writes integral numbers such as 1.0 as 1 so they decode
	// into int fields.
	normalized, err := sonic.ConfigStd.Marshal(doc)
	if err != nil {
		return formError("Invalid request body")
	}
	if err := sonic.ConfigStd.Unmarshal(normalized, dst); err != nil {
		return formError("Invalid request body")
	}
	return nil
}

func formError(msg string) error {
	ve := &domain.ValidationError{}
	ve.Add("", msg)
	return ve.Err()
}

// schemaErrors flattens the leaf causes of a schema failure into field errors.
func schemaErrors(schema *jsonschema.Schema, root *jsonschema.ValidationError) error {
	out := &domain.ValidationError{}
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) > 0 {
			for _, cause := range e.Causes {
				walk(cause)
			}
			return
		}
		keyword := path.Base(e.KeywordLocation)
		field := instanceField(e.InstanceLocation)
		if keyword == "required" {
			for _, missing := range quoted(e.Message) {
				out.Add(missing, "Required")
			}
			return
		}
		out.Add(field, leafMessage(schema, keyword, field, e.Message))
	}
	walk(root)
	if out.Empty() {
		out.Add("", root.Message)
	}
	for _, msgs := range out.FieldErrors {
		sort.Strings(msgs)
	}
	return out.Err()
}

func leafMessage(schema *jsonschema.Schema, keyword, field, raw string) string {
	var prop *jsonschema.Schema
	if schema != nil {
		prop = schema.Properties[field]
	}
	switch keyword {
	case "minLength":
		if msg, ok := requiredMessages[field]; ok {
			return msg
		}
		if prop != nil {
			return fmt.Sprintf("String must contain at least %d character(s)", prop.MinLength)
		}
	case "maxLength":
		if prop != nil {
			return fmt.Sprintf("String must contain at most %d character(s)", prop.MaxLength)
		}
	case "minimum":
		return fmt.Sprintf("Number must be greater than or equal to %d", domain.MinPosition)
	case "maximum":
		return fmt.Sprintf("Number must be less than or equal to %d", domain.MaxPosition)
	case "format":
		return "Invalid uuid"
	case "type":
		if want, got, ok := strings.Cut(strings.TrimPrefix(raw, "expected "), ", but got "); ok {
			return "Expected " + want + ", received " + got
		}
	}
	return raw
}

// instanceField returns the top level property a JSON pointer points into;
// the empty pointer is the body itself.
func instanceField(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "/")
	if i := strings.IndexByte(ptr, '/'); i >= 0 {
		ptr = ptr[:i]
	}
	return ptr
}

// quoted extracts the 'single quoted' names from a jsonschema message.
func quoted(msg string) []string {
	var out []string
	for {
		start := strings.IndexByte(msg, '\'')
		if start < 0 {
			return out
		}
		rest := msg[start+1:]
		end := strings.IndexByte(rest, '\'')
		if end < 0 {
			return out
		}
		out = append(out, rest[:end])
		msg = rest[end+1:]
	}
}

// pathID returns the named path parameter, rejecting non-UUID values.
func pathID(c echo.Context, name string) (string, error) {
	id := c.Param(name)
	if !domain.IsUUID(id) {
		ve := &domain.ValidationError{}
		ve.Add(name, "Invalid uuid")
		return "", ve.Err()
	}
	return domain.CanonicalID(id), nil
}

// queryID returns an optional UUID query filter.
func queryID(c echo.Context, name string) (string, error) {
	id := c.QueryParam(name)
	if id == "" {
		return "", nil
	}
	if !domain.IsUUID(id) {
		ve := &domain.ValidationError{}
		ve.Add(name, "Invalid uuid")
		return "", ve.Err()
	}
	return domain.CanonicalID(id), nil
}
