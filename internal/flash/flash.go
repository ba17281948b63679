// Package flash carries one-shot user messages across a redirect.
package flash

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

type Message struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

// Messages is the outbound list for one request. The zero value is ready to
// use.
type Messages struct {
	items []Message
}

func (m *Messages) Add(level Level, text string) {
	m.items = append(m.items, Message{Level: level, Text: text})
}

func (m *Messages) Info(text string)    { m.Add(LevelInfo, text) }
func (m *Messages) Success(text string) { m.Add(LevelSuccess, text) }
func (m *Messages) Warning(text string) { m.Add(LevelWarning, text) }
func (m *Messages) Error(text string)   { m.Add(LevelError, text) }

func (m *Messages) All() []Message {
	out := make([]Message, len(m.items))
	copy(out, m.items)
	return out
}

func (m *Messages) Len() int { return len(m.items) }

// Last returns the most recent message.
func (m *Messages) Last() (Message, bool) {
	if len(m.items) == 0 {
		return Message{}, false
	}
	return m.items[len(m.items)-1], true
}

const CookieName = "flash"

func Encode(msgs []Message) string {
	data, err := json.Marshal(msgs)
	if err != nil {
		return ""
	}
	return base64.URLEncoding.EncodeToString(data)
}

func Decode(encoded string) ([]Message, error) {
	if encoded == "" {
		return nil, nil
	}

	data, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}

	var msgs []Message
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// Save stores pending messages in the flash cookie so they survive the
// redirect. Nothing is written when there are no messages.
func Save(w http.ResponseWriter, m *Messages) {
	if m.Len() == 0 {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    Encode(m.All()),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Pop reads and clears the messages left by the previous response. A
// tampered or unreadable cookie yields no messages.
func Pop(w http.ResponseWriter, r *http.Request) []Message {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	msgs, err := Decode(cookie.Value)
	if err != nil {
		return nil
	}
	return msgs
}
