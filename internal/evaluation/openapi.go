package evaluation

import "github.com/JaimeStill/directive/pkg/openapi"

type spec struct {
	Evaluate *openapi.Operation
}

// Spec documents the evaluation endpoint.
var Spec = spec{
	Evaluate: &openapi.Operation{
		Summary:     "Evaluate standing instructions",
		Description: "Returns the caller's instructions that apply to the conversation context, scored, explained, and checked for conflicts.",
		Tags:        []string{"Evaluation"},
		RequestBody: openapi.RequestBodyJSON("EvaluateRequest", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Evaluation result", "EvaluateResponse"),
			400: openapi.ResponseRef("BadRequest"),
			401: openapi.ResponseRef("Unauthorized"),
			500: {Description: "Instructions could not be loaded"},
		},
	},
}

// Schemas returns the component schemas for evaluation types.
func (s spec) Schemas() map[string]*openapi.Schema {
	ref := &openapi.Schema{
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"id":       {Type: "string", Format: "uuid"},
			"text":     {Type: "string"},
			"priority": {Type: "integer"},
			"category": openapi.SchemaRef("Category"),
		},
	}

	return map[string]*openapi.Schema{
		"ConversationContext": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"message_content":          {Type: "string"},
				"agent_mode":               {Type: "string"},
				"confidence":               {Type: "number"},
				"involves_sensitive_data":  {Type: "boolean"},
				"requires_secure_handling": {Type: "boolean"},
				"is_agent_mode":            {Type: "boolean"},
				"is_task_execution":        {Type: "boolean"},
			},
		},
		"EvaluateRequest": {
			Type:     "object",
			Required: []string{"conversation_context"},
			Properties: map[string]*openapi.Schema{
				"conversation_context": openapi.SchemaRef("ConversationContext"),
			},
		},
		"ActiveInstruction": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"instruction":        openapi.SchemaRef("Instruction"),
				"relevance_score":    {Type: "number"},
				"application_reason": {Type: "string"},
			},
		},
		"InstructionConflict": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"instruction_a": ref,
				"instruction_b": ref,
				"conflict_type": {
					Type: "string",
					Enum: []any{
						string(ConflictDirectContradiction),
						string(ConflictPriority),
						string(ConflictSecurityWorkflow),
					},
				},
				"severity": {
					Type: "string",
					Enum: []any{string(SeverityLow), string(SeverityMedium), string(SeverityHigh)},
				},
				"resolution_suggestion": {Type: "string"},
			},
		},
		"EvaluateResponse": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"success": {Type: "boolean"},
				"data": {
					Type: "object",
					Properties: map[string]*openapi.Schema{
						"active_instructions": {Type: "array", Items: openapi.SchemaRef("ActiveInstruction")},
						"conflicts":           {Type: "array", Items: openapi.SchemaRef("InstructionConflict")},
						"evaluation_time_ms":  {Type: "number"},
						"total_evaluated":     {Type: "integer"},
						"conflicts_detected":  {Type: "integer"},
						"applied_count":       {Type: "integer"},
					},
				},
			},
		},
	}
}
