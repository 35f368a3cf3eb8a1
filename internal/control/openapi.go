package control

import "github.com/JaimeStill/directive/pkg/openapi"

type spec struct {
	Get   *openapi.Operation
	Set   *openapi.Operation
	Reset *openapi.Operation
}

var sessionParam = openapi.StringPathParam("session", "Remote session identifier")

// Spec documents the control hand-off endpoints.
var Spec = spec{
	Get: &openapi.Operation{
		Summary:    "Get session owner",
		Tags:       []string{"Control"},
		Parameters: []*openapi.Parameter{sessionParam},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Control state", "ControlState"),
			400: openapi.ResponseRef("BadRequest"),
			401: openapi.ResponseRef("Unauthorized"),
		},
	},
	Set: &openapi.Operation{
		Summary:     "Hand off session control",
		Description: "Sets the session owner. With expected_owner the write is a compare-and-set.",
		Tags:        []string{"Control"},
		Parameters:  []*openapi.Parameter{sessionParam},
		RequestBody: openapi.RequestBodyJSON("SetControlCommand", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Control state", "ControlState"),
			400: openapi.ResponseRef("BadRequest"),
			401: openapi.ResponseRef("Unauthorized"),
			409: openapi.ResponseRef("Conflict"),
		},
	},
	Reset: &openapi.Operation{
		Summary:    "Return session control to the agent",
		Tags:       []string{"Control"},
		Parameters: []*openapi.Parameter{sessionParam},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Control state", "ControlState"),
			400: openapi.ResponseRef("BadRequest"),
			401: openapi.ResponseRef("Unauthorized"),
		},
	},
}

// Schemas returns the component schemas for control types.
func (s spec) Schemas() map[string]*openapi.Schema {
	owner := &openapi.Schema{Type: "string", Enum: []any{string(OwnerAgent), string(OwnerHuman)}}

	return map[string]*openapi.Schema{
		"ControlState": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"session_id": {Type: "string"},
				"owner":      owner,
				"updated_by": {Type: "string"},
				"updated_at": {Type: "string", Format: "date-time"},
			},
		},
		"SetControlCommand": {
			Type:     "object",
			Required: []string{"owner"},
			Properties: map[string]*openapi.Schema{
				"owner":          owner,
				"expected_owner": owner,
			},
		},
	}
}
