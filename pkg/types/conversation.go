package types

// Turn is one exchange in a parsed conversation log
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Session is one parsed agent conversation. Sessions are supplied by an
// external conversation source and validated as opaque bundles by
// conversation_level rules.
type Session struct {
	// ID identifies the session within its source
	ID string `json:"id"`

	// AgentTool labels the tool that produced the log; matched against
	// rule client filters
	AgentTool string `json:"agent_tool"`

	Turns []Turn `json:"turns"`
}
