package llm

import (
	"context"
	"errors"
	"fmt"
)

// Role is the author of a chat message.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

var ErrEmptyResponse = errors.New("response is empty")

// Message is a single chat turn sent to the model.
type Message struct {
	Role    Role
	Content string
}

// Request describes one chat completion call.
type Request struct {
	Messages    []Message
	Temperature float64
	MaxTokens   int64
}

// Completer produces the model's text for a request. Implementations must be
// safe for concurrent use.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

func (r Request) Validate() error {
	if len(r.Messages) == 0 {
		return errors.New("messages are empty")
	}

	for i, m := range r.Messages {
		if m.Role != RoleSystem && m.Role != RoleUser {
			return fmt.Errorf("unknown role (index = %d, role = %s)", i, m.Role)
		}
	}

	if r.Temperature < 0 || r.Temperature > 1 {
		return fmt.Errorf("temperature is out of range (temperature = %v)", r.Temperature)
	}

	if r.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive (maxTokens = %d)", r.MaxTokens)
	}

	return nil
}
