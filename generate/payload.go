// Package generate drives a chat-completion endpoint to turn a UI snapshot
// document into component source text.
package generate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Fixed prompt text.
const (
	SystemPrompt = "You are a UI expert that converts UI descriptions into JSX React components."
	UserPrompt   = "Here is a UI layout JSON from a webpage. Convert this into a clean, modern JSX React component with styled-components. Use best practices and make it responsive. Here's the UI data:\n\n"
)

// Message is a single chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Payload is the chat-completion request body.
type Payload struct {
	Model     string    `json:"model"`
	Messages  []Message `json:"messages"`
	MaxTokens int       `json:"max_tokens"`
}

// BuildPayload embeds the raw snapshot document, re-indented with two
// spaces, in the fixed instruction. The result depends only on its inputs.
func BuildPayload(document []byte, model string, maxTokens int) (*Payload, error) {
	var indented bytes.Buffer
	if err := json.Indent(&indented, bytes.TrimSpace(document), "", "  "); err != nil {
		return nil, fmt.Errorf("indent document: %w", err)
	}
	return &Payload{
		Model: model,
		Messages: []Message{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: UserPrompt + indented.String()},
		},
		MaxTokens: maxTokens,
	}, nil
}

// chatResponse is the subset of the completion response that is read.
type chatResponse struct {
	Choices []struct {
		Message *struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// content returns the first choice's message content. ok is false when
// there is no choice, no message, or a null content.
func (r *chatResponse) content() (content string, ok bool) {
	if len(r.Choices) == 0 {
		return "", false
	}
	msg := r.Choices[0].Message
	if msg == nil || msg.Content == nil {
		return "", false
	}
	return *msg.Content, true
}

// excerpt returns at most n characters of s.
func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// dumpedLen returns the length of the document in its default-separator
// ASCII encoding: ", " and ": " between tokens, non-ASCII runes escaped as
// \uXXXX. Key order and number literals are kept as they appear in raw.
// A document that cannot be tokenized reports its raw length.
func dumpedLen(raw []byte) int {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	// tokens written so far in each open object or array
	var stack []int
	n := 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) && len(stack) == 0 {
			return n
		}
		if err != nil {
			return len(raw)
		}

		if d, ok := tok.(json.Delim); ok && (d == '}' || d == ']') {
			stack = stack[:len(stack)-1]
			n++
			continue
		}
		if len(stack) > 0 {
			// ": " before an object value, ", " before every later element.
			if stack[len(stack)-1] > 0 {
				n += 2
			}
			stack[len(stack)-1]++
		}

		switch v := tok.(type) {
		case json.Delim:
			n++
			stack = append(stack, 0)
		case string:
			n += quotedLen(v)
		case json.Number:
			n += len(v)
		case bool:
			if v {
				n += 4
			} else {
				n += 5
			}
		case nil:
			n += 4
		}
	}
}

// quotedLen is the length of s as an ASCII-only JSON string literal.
func quotedLen(s string) int {
	n := 2
	for _, r := range s {
		switch {
		case r == '"' || r == '\\' || r == '\n' || r == '\r' || r == '\t' || r == '\b' || r == '\f':
			n += 2
		case r >= 0x20 && r < 0x7f:
			n++
		case r > 0xffff:
			n += 12 // surrogate pair
		default:
			n += 6
		}
	}
	return n
}
