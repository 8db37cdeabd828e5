package models

import "strings"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatTurn is one entry of a session's conversation.
type ChatTurn struct {
	Role    Role   `bson:"role" json:"role" validate:"required,oneof=user assistant"`
	Content string `bson:"content" json:"content"`
}

// Line renders the turn as "ROLE: content".
func (t ChatTurn) Line() string {
	return strings.ToUpper(string(t.Role)) + ": " + t.Content
}
