package agent

import (
	"errors"
	"fmt"
	"strings"
)

type Part struct {
	Text string `json:"text,omitempty"`
}

type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Event is one item of the agent run output, either from /run or from a /run_sse frame.
type Event struct {
	ID           string   `json:"id,omitempty"`
	Author       string   `json:"author,omitempty"`
	Content      *Content `json:"content,omitempty"`
	Partial      bool     `json:"partial,omitempty"`
	TurnComplete bool     `json:"turnComplete,omitempty"`
	ErrorCode    string   `json:"errorCode,omitempty"`
	ErrorMessage string   `json:"errorMessage,omitempty"`
	// set by the api server when the run itself failed
	Error string `json:"error,omitempty"`
}

// Text joins all text parts of the event.
func (e Event) Text() string {
	if e.Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, p := range e.Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}

// Err is non-nil when the event reports a failure.
func (e Event) Err() error {
	switch {
	case e.Error != "":
		return &RunError{Message: e.Error}
	case e.ErrorMessage != "" || e.ErrorCode != "":
		msg := e.ErrorMessage
		if msg == "" {
			msg = "agent error"
		}
		return &RunError{Code: e.ErrorCode, Message: msg}
	default:
		return nil
	}
}

// RunError carries an error reported by the agent itself.
type RunError struct {
	Code    string
	Message string
}

func (e *RunError) Error() string {
	return e.Message
}

var ErrStreamEnded = errors.New("agent stream ended unexpectedly")

// StatusError is returned for non 2xx responses of the agent api.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s: status %d: %s", e.Endpoint, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s: status %d", e.Endpoint, e.StatusCode)
}

type StreamEventKind int

const (
	StreamFragment StreamEventKind = iota
	StreamError
	StreamDone
)

func (k StreamEventKind) String() string {
	switch k {
	case StreamFragment:
		return "fragment"
	case StreamError:
		return "error"
	case StreamDone:
		return "done"
	default:
		return "unknown"
	}
}

// StreamEvent is what consumers of StreamMessage see: a fragment of text,
// a terminal error, or the terminal done marker.
type StreamEvent struct {
	Kind StreamEventKind
	Text string
	Err  error
}
