package model

type Role string

const (
	RoleUser      = Role("user")
	RoleAssistant = Role("assistant")
	RoleSystem    = Role("system")
)

// Turn is a single entry of a conversation transcript. Turns are immutable
// once created; a transcript only grows by appending new ones.
type Turn struct {
	Role    Role
	Content string
}
