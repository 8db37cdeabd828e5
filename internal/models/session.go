package models

import "time"

// Session is the state of one operator conversation. Credentials are kept
// out of persistent storage.
type Session struct {
	ID          ObjectID        `bson:"_id" json:"id"`
	History     []ChatTurn      `bson:"history" json:"history"`
	FileName    string          `bson:"file_name,omitempty" json:"file_name,omitempty"`
	FileContext string          `bson:"file_context,omitempty" json:"-"`
	Staged      []ProductRecord `bson:"staged" json:"staged"`
	Credentials *Credentials    `bson:"-" json:"-"`
	CreatedAt   time.Time       `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `bson:"updated_at" json:"updated_at"`
}

func (Session) CollectionName() string {
	return "assistant_sessions"
}

func (s Session) GetObjectID() ObjectID {
	return s.ID
}

func (s *Session) Append(role Role, content string) {
	s.History = append(s.History, ChatTurn{Role: role, Content: content})
}

// Clear drops the conversation and anything staged from it.
func (s *Session) Clear() {
	s.History = nil
	s.Staged = nil
}

// Clone returns a deep enough copy for stores to hand out.
func (s *Session) Clone() *Session {
	out := *s
	out.History = append([]ChatTurn(nil), s.History...)
	out.Staged = append([]ProductRecord(nil), s.Staged...)
	if s.Credentials != nil {
		creds := *s.Credentials
		out.Credentials = &creds
	}
	return &out
}
