package api

import (
	"fmt"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	"gopkg.in/yaml.v3"
)

type object = map[string]any

var inputSchemaTitles = map[string]string{
	schemaCreateBoard:   "CreateBoard",
	schemaUpdateBoard:   "UpdateBoard",
	schemaCreateStatus:  "CreateBoardStatus",
	schemaUpdateStatus:  "UpdateBoardStatus",
	schemaCreateTask:    "CreateTask",
	schemaUpdateTask:    "UpdateTask",
	schemaCreateSubTask: "CreateSubTask",
	schemaUpdateSubTask: "UpdateSubTask",
}

func ref(name string) object { return object{"$ref": "#/components/schemas/" + name} }

func arrayOf(name string) object { return object{"type": "array", "items": ref(name)} }

func nullableString() object { return object{"type": []string{"string", "null"}} }

var timestamp = object{"type": "string", "format": "date-time"}

var uuidString = object{"type": "string", "format": "uuid"}

func entitySchemas() object {
	return object{
		"Board": object{
			"type":     "object",
			"required": []string{"id", "name", "description", "createdAt", "updatedAt"},
			"properties": object{
				"id":          uuidString,
				"name":        object{"type": "string"},
				"description": nullableString(),
				"createdAt":   timestamp,
				"updatedAt":   timestamp,
			},
		},
		"BoardStatus": object{
			"type":     "object",
			"required": []string{"id", "boardId", "name", "description", "position", "createdAt", "updatedAt"},
			"properties": object{
				"id":          uuidString,
				"boardId":     uuidString,
				"name":        object{"type": "string"},
				"description": nullableString(),
				"position":    object{"type": "integer", "minimum": 0},
				"createdAt":   timestamp,
				"updatedAt":   timestamp,
			},
		},
		"Task": object{
			"type":     "object",
			"required": []string{"id", "boardStatusId", "title", "description", "position", "createdAt", "updatedAt"},
			"properties": object{
				"id":            uuidString,
				"boardStatusId": uuidString,
				"title":         object{"type": "string"},
				"description":   nullableString(),
				"position":      object{"type": "integer", "minimum": 0},
				"createdAt":     timestamp,
				"updatedAt":     timestamp,
			},
		},
		"SubTask": object{
			"type":     "object",
			"required": []string{"id", "taskId", "description", "isCompleted", "createdAt", "updatedAt"},
			"properties": object{
				"id":          uuidString,
				"taskId":      uuidString,
				"description": object{"type": "string"},
				"isCompleted": object{"type": "boolean"},
				"createdAt":   timestamp,
				"updatedAt":   timestamp,
			},
		},
		"TaskWithSubTasks": object{
			"allOf": []any{ref("Task"), object{
				"type":       "object",
				"properties": object{"subTasks": arrayOf("SubTask")},
			}},
		},
		"StatusWithTasks": object{
			"allOf": []any{ref("BoardStatus"), object{
				"type":       "object",
				"properties": object{"tasks": arrayOf("TaskWithSubTasks")},
			}},
		},
		"BoardDetail": object{
			"allOf": []any{ref("Board"), object{
				"type":       "object",
				"properties": object{"statuses": arrayOf("StatusWithTasks")},
			}},
		},
		"Error": object{
			"type":       "object",
			"required":   []string{"error"},
			"properties": object{"error": object{"type": "string"}},
		},
		"ValidationError": object{
			"type":     "object",
			"required": []string{"error", "details"},
			"properties": object{
				"error": object{"type": "string", "const": "Validation failed"},
				"details": object{
					"type": "object",
					"properties": object{
						"formErrors": object{"type": "array", "items": object{"type": "string"}},
						"fieldErrors": object{
							"type":                 "object",
							"additionalProperties": object{"type": "array", "items": object{"type": "string"}},
						},
					},
				},
			},
		},
	}
}

// inputSchemas loads the request validation schemas as OpenAPI components.
func inputSchemas() (object, error) {
	out := object{}
	for _, name := range schemaNames {
		raw, err := schemaFS.ReadFile("schemas/" + name + ".json")
		if err != nil {
			return nil, err
		}
		var s object
		if err := sonic.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("decode schema %s: %w", name, err)
		}
		delete(s, "$schema")
		delete(s, "$id")
		out[inputSchemaTitles[name]] = s
	}
	return out, nil
}

func jsonContent(schema object) object {
	return object{"application/json": object{"schema": schema}}
}

func response(desc string, schema object) object {
	r := object{"description": desc}
	if schema != nil {
		r["content"] = jsonContent(schema)
	}
	return r
}

func pathParam(name string) object {
	return object{"name": name, "in": "path", "required": true, "schema": uuidString}
}

func queryParam(name string) object {
	return object{"name": name, "in": "query", "required": false, "schema": uuidString}
}

var (
	badRequest = response("Validation failed", ref("ValidationError"))
	notFound   = response("Not found", ref("Error"))
	noContent  = response("Deleted", nil)
)

func operation(tag, summary string, params []any, body string, responses object) object {
	op := object{"tags": []string{tag}, "summary": summary, "responses": responses}
	if len(params) > 0 {
		op["parameters"] = params
	}
	if body != "" {
		op["requestBody"] = object{"required": true, "content": jsonContent(ref(body))}
	}
	return op
}

// crud describes the collection and item paths of one resource.
type crud struct {
	tag, entity, listEntity, detailEntity string
	create, update                        string
	collection, item                      string
	collectionParams, itemParams          []any
	listParams                            []any
}

func (r crud) paths() object {
	listParams := append(append([]any{}, r.collectionParams...), r.listParams...)
	return object{
		r.collection: object{
			"get": operation(r.tag, "List "+r.tag, listParams, "", object{
				"200": response("OK", arrayOf(r.listEntity)),
				"400": badRequest,
			}),
			"post": operation(r.tag, "Create "+r.entity, r.collectionParams, r.create, object{
				"201": response("Created", ref(r.entity)),
				"400": badRequest,
			}),
		},
		r.item: object{
			"get": operation(r.tag, "Get "+r.entity, r.itemParams, "", object{
				"200": response("OK", ref(r.detailEntity)),
				"400": badRequest,
				"404": notFound,
			}),
			"put": operation(r.tag, "Update "+r.entity, r.itemParams, r.update, object{
				"200": response("OK", ref(r.entity)),
				"400": badRequest,
				"404": notFound,
			}),
			"delete": operation(r.tag, "Delete "+r.entity, r.itemParams, "", object{
				"204": noContent,
				"400": badRequest,
				"404": notFound,
			}),
		},
	}
}

func openAPIDocument(prefix string) (object, error) {
	schemas := entitySchemas()
	inputs, err := inputSchemas()
	if err != nil {
		return nil, err
	}
	for k, v := range inputs {
		schemas[k] = v
	}

	resources := []crud{
		{
			tag: "Boards", entity: "Board", listEntity: "Board", detailEntity: "BoardDetail",
			create: "CreateBoard", update: "UpdateBoard",
			collection: prefix + "/boards", item: prefix + "/boards/{id}",
			itemParams: []any{pathParam("id")},
		},
		{
			tag: "Board Statuses", entity: "BoardStatus", listEntity: "BoardStatus", detailEntity: "BoardStatus",
			create: "CreateBoardStatus", update: "UpdateBoardStatus",
			collection: prefix + "/boards/{boardId}/statuses", item: prefix + "/boards/{boardId}/statuses/{statusId}",
			collectionParams: []any{pathParam("boardId")},
			itemParams:       []any{pathParam("boardId"), pathParam("statusId")},
		},
		{
			tag: "Tasks", entity: "Task", listEntity: "TaskWithSubTasks", detailEntity: "TaskWithSubTasks",
			create: "CreateTask", update: "UpdateTask",
			collection: prefix + "/tasks", item: prefix + "/tasks/{id}",
			itemParams: []any{pathParam("id")},
			listParams: []any{queryParam("boardStatusId")},
		},
		{
			tag: "SubTasks", entity: "SubTask", listEntity: "SubTask", detailEntity: "SubTask",
			create: "CreateSubTask", update: "UpdateSubTask",
			collection: prefix + "/subtasks", item: prefix + "/subtasks/{id}",
			itemParams: []any{pathParam("id")},
			listParams: []any{queryParam("taskId")},
		},
	}

	paths := object{
		"/health": object{"get": object{
			"summary": "Liveness and store connectivity",
			"responses": object{"200": response("OK", object{
				"type":       "object",
				"properties": object{"status": object{"type": "string"}},
			})},
		}},
	}
	tags := make([]any, 0, len(resources))
	for _, r := range resources {
		for k, v := range r.paths() {
			paths[k] = v
		}
		tags = append(tags, object{"name": r.tag})
	}

	return object{
		"openapi": "3.1.0",
		"info": object{
			"title":   "Taskly API",
			"version": "1.0.0",
		},
		"tags":       tags,
		"paths":      paths,
		"components": object{"schemas": schemas},
	}, nil
}

func openAPIJSON(prefix string) echo.HandlerFunc {
	doc, err := openAPIDocument(prefix)
	return func(c echo.Context) error {
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, doc)
	}
}

func openAPIYAML(prefix string) echo.HandlerFunc {
	doc, err := openAPIDocument(prefix)
	var out []byte
	if err == nil {
		out, err = yaml.Marshal(doc)
	}
	return func(c echo.Context) error {
		if err != nil {
			return err
		}
		return c.Blob(http.StatusOK, "application/yaml", out)
	}
}
