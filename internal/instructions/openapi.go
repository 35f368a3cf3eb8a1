package instructions

import "github.com/JaimeStill/directive/pkg/openapi"

type spec struct {
	List       *openapi.Operation
	Categories *openapi.Operation
	Find       *openapi.Operation
	Create     *openapi.Operation
	Update     *openapi.Operation
	Delete     *openapi.Operation
	Search     *openapi.Operation
	Bulk       *openapi.Operation
}

// Spec documents the instruction endpoints.
var Spec = spec{
	List: &openapi.Operation{
		Summary: "List standing instructions",
		Tags:    []string{"Instructions"},
		Parameters: []*openapi.Parameter{
			openapi.QueryParam("page", "integer", "Page number", false),
			openapi.QueryParam("page_size", "integer", "Results per page", false),
			openapi.QueryParam("search", "string", "Search text", false),
			openapi.QueryParam("sort", "string", "Sort fields", false),
			openapi.QueryParam("category", "string", "Filter by category", false),
			openapi.QueryParam("enabled", "boolean", "Filter by enabled flag", false),
			openapi.QueryParam("text", "string", "Filter by text contains", false),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Paginated instructions", "InstructionPage"),
			401: openapi.ResponseRef("Unauthorized"),
		},
	},
	Categories: &openapi.Operation{
		Summary: "List instruction categories",
		Tags:    []string{"Instructions"},
		Responses: map[int]*openapi.Response{
			200: {
				Description: "Valid categories",
				Content: map[string]*openapi.MediaType{
					"application/json": {
						Schema: &openapi.Schema{Type: "array", Items: openapi.SchemaRef("Category")},
					},
				},
			},
		},
	},
	Find: &openapi.Operation{
		Summary:    "Find instruction by ID",
		Tags:       []string{"Instructions"},
		Parameters: []*openapi.Parameter{openapi.PathParam("id", "Instruction UUID")},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Instruction details", "Instruction"),
			401: openapi.ResponseRef("Unauthorized"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Create: &openapi.Operation{
		Summary:     "Create a standing instruction",
		Tags:        []string{"Instructions"},
		RequestBody: openapi.RequestBodyJSON("CreateCommand", true),
		Responses: map[int]*openapi.Response{
			201: openapi.ResponseJSON("Created instruction", "Instruction"),
			400: openapi.ResponseRef("BadRequest"),
			401: openapi.ResponseRef("Unauthorized"),
			409: openapi.ResponseRef("Conflict"),
		},
	},
	Update: &openapi.Operation{
		Summary:     "Update a standing instruction",
		Tags:        []string{"Instructions"},
		Parameters:  []*openapi.Parameter{openapi.PathParam("id", "Instruction UUID")},
		RequestBody: openapi.RequestBodyJSON("UpdateCommand", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Updated instruction", "Instruction"),
			400: openapi.ResponseRef("BadRequest"),
			401: openapi.ResponseRef("Unauthorized"),
			404: openapi.ResponseRef("NotFound"),
			409: openapi.ResponseRef("Conflict"),
		},
	},
	Delete: &openapi.Operation{
		Summary:    "Delete a standing instruction",
		Tags:       []string{"Instructions"},
		Parameters: []*openapi.Parameter{openapi.PathParam("id", "Instruction UUID")},
		Responses: map[int]*openapi.Response{
			204: {Description: "Instruction deleted"},
			401: openapi.ResponseRef("Unauthorized"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Search: &openapi.Operation{
		Summary:     "Search standing instructions",
		Tags:        []string{"Instructions"},
		RequestBody: openapi.RequestBodyJSON("InstructionSearch", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Paginated instructions", "InstructionPage"),
			400: openapi.ResponseRef("BadRequest"),
			401: openapi.ResponseRef("Unauthorized"),
		},
	},
	Bulk: &openapi.Operation{
		Summary:     "Enable or disable instructions in bulk",
		Tags:        []string{"Instructions"},
		RequestBody: openapi.RequestBodyJSON("BulkCommand", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Number of rows changed", "BulkResult"),
			400: openapi.ResponseRef("BadRequest"),
			401: openapi.ResponseRef("Unauthorized"),
			409: openapi.ResponseRef("Conflict"),
		},
	},
}

// Schemas returns the component schemas for instruction types.
func (s spec) Schemas() map[string]*openapi.Schema {
	categories := make([]any, 0, len(Categories()))
	for _, c := range Categories() {
		categories = append(categories, string(c))
	}

	return map[string]*openapi.Schema{
		"Category": {Type: "string", Enum: categories},
		"ContextHints": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"topics":         {Type: "array", Items: &openapi.Schema{Type: "string"}},
				"agent_modes":    {Type: "array", Items: &openapi.Schema{Type: "string"}},
				"min_confidence": {Type: "number", Minimum: bound(0.0), Maximum: bound(1.0)},
				"keywords":       {Type: "array", Items: &openapi.Schema{Type: "string"}},
				"exclude_topics": {Type: "array", Items: &openapi.Schema{Type: "string"}},
			},
		},
		"Instruction": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":            {Type: "string", Format: "uuid"},
				"user_id":       {Type: "string"},
				"text":          {Type: "string"},
				"priority":      {Type: "integer", Minimum: bound(1.0), Maximum: bound(10.0)},
				"category":      openapi.SchemaRef("Category"),
				"enabled":       {Type: "boolean"},
				"context_hints": openapi.SchemaRef("ContextHints"),
				"usage_count":   {Type: "integer"},
				"last_used_at":  {Type: "string", Format: "date-time"},
				"created_at":    {Type: "string", Format: "date-time"},
				"updated_at":    {Type: "string", Format: "date-time"},
			},
		},
		"InstructionPage": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"data":        {Type: "array", Items: openapi.SchemaRef("Instruction")},
				"total":       {Type: "integer"},
				"page":        {Type: "integer"},
				"page_size":   {Type: "integer"},
				"total_pages": {Type: "integer"},
			},
		},
		"CreateCommand": {
			Type:     "object",
			Required: []string{"text", "category"},
			Properties: map[string]*openapi.Schema{
				"text":          {Type: "string"},
				"priority":      {Type: "integer", Default: defaultPriority},
				"category":      openapi.SchemaRef("Category"),
				"enabled":       {Type: "boolean", Default: true},
				"context_hints": openapi.SchemaRef("ContextHints"),
			},
		},
		"UpdateCommand": {
			Type:     "object",
			Required: []string{"text", "priority", "category", "enabled"},
			Properties: map[string]*openapi.Schema{
				"text":          {Type: "string"},
				"priority":      {Type: "integer"},
				"category":      openapi.SchemaRef("Category"),
				"enabled":       {Type: "boolean"},
				"context_hints": openapi.SchemaRef("ContextHints"),
			},
		},
		"InstructionSearch": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"page":      {Type: "integer"},
				"page_size": {Type: "integer"},
				"search":    {Type: "string"},
				"sort":      {Type: "string"},
				"category":  openapi.SchemaRef("Category"),
				"enabled":   {Type: "boolean"},
				"text":      {Type: "string"},
			},
		},
		"BulkCommand": {
			Type:     "object",
			Required: []string{"ids", "enabled"},
			Properties: map[string]*openapi.Schema{
				"ids":     {Type: "array", Items: &openapi.Schema{Type: "string", Format: "uuid"}},
				"enabled": {Type: "boolean"},
			},
		},
		"BulkResult": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"updated": {Type: "integer"},
			},
		},
	}
}

func bound(v float64) *float64 { return &v }
