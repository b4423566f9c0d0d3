package domain

// ChatMessage is the provider-agnostic chat message shape passed from the
// usecases to the completion client.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
