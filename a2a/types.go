package a2a

// Role identifies the sender of a message.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// TextContent is the only content type the agent exchanges.
type TextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Message is the unit of exchange on the messages endpoint.
type Message struct {
	Content TextContent `json:"content"`
	Role    Role        `json:"role"`
}

// NewTextMessage builds a message carrying plain text.
func NewTextMessage(role Role, text string) Message {
	return Message{
		Content: TextContent{Type: "text", Text: text},
		Role:    role,
	}
}

// AgentSkill describes one capability advertised on the agent card.
type AgentSkill struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Examples    []string `json:"examples,omitempty"`
}

// AgentCard is the metadata served from the well-known discovery path.
type AgentCard struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	URL         string       `json:"url"`
	Version     string       `json:"version"`
	Skills      []AgentSkill `json:"skills"`
}

// NewCard returns the card advertised for the given public base URL.
func NewCard(baseURL string) AgentCard {
	return AgentCard{
		Name:        "Insurance Analyst",
		Description: "Analyze insurance data with natural language queries",
		URL:         baseURL,
		Version:     "1.0.0",
		Skills: []AgentSkill{
			{
				Name:        "insurance_query",
				Description: "Answer insurance data questions",
				Examples:    []string{"How many customers?", "Show pending claims"},
			},
		},
	}
}
