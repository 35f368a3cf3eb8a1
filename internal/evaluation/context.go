package evaluation

// Context is the live state of the conversation turn being evaluated.
// A missing confidence decodes as 0.
type Context struct {
	MessageContent         string  `json:"message_content" yaml:"message_content"`
	AgentMode              string  `json:"agent_mode" yaml:"agent_mode"`
	Confidence             float64 `json:"confidence" yaml:"confidence"`
	InvolvesSensitiveData  bool    `json:"involves_sensitive_data" yaml:"involves_sensitive_data"`
	RequiresSecureHandling bool    `json:"requires_secure_handling" yaml:"requires_secure_handling"`
	IsAgentMode            bool    `json:"is_agent_mode" yaml:"is_agent_mode"`
	IsTaskExecution        bool    `json:"is_task_execution" yaml:"is_task_execution"`
}

func (c Context) securityContext() bool {
	return c.InvolvesSensitiveData || c.RequiresSecureHandling
}

func (c Context) workflowContext() bool {
	return c.IsAgentMode || c.IsTaskExecution
}
