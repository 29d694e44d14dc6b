package agent

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"
)

const maxFrameSize = 4 * 1024 * 1024

// frameReader splits a text/event-stream body into the data payloads of its frames.
type frameReader struct {
	scanner *bufio.Scanner
}

func newFrameReader(r io.Reader) *frameReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxFrameSize)
	return &frameReader{scanner: scanner}
}

// Next returns the data of the next frame, io.EOF at the end of the body.
func (fr *frameReader) Next() (string, error) {
	var data []string
	for fr.scanner.Scan() {
		line := strings.TrimSuffix(fr.scanner.Text(), "\r")
		switch {
		case line == "":
			if len(data) > 0 {
				return strings.Join(data, "\n"), nil
			}
		case strings.HasPrefix(line, ":"):
			// comment / keep-alive
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		default:
			// event:, id: and retry: fields carry nothing we use
		}
	}
	if err := fr.scanner.Err(); err != nil {
		return "", err
	}
	if len(data) > 0 {
		return strings.Join(data, "\n"), nil
	}
	return "", io.EOF
}

// fragmenter turns agent events into text fragments. With token streaming the
// agent sends partial events followed by one final event repeating their text,
// that final event is not a new fragment.
type fragmenter struct {
	partial strings.Builder
}

func (f *fragmenter) fragment(ev Event) (string, bool) {
	text := ev.Text()
	if ev.Partial {
		f.partial.WriteString(text)
		return text, text != ""
	}

	aggregated := f.partial.String()
	f.partial.Reset()
	if aggregated != "" && text == aggregated {
		return "", false
	}
	return text, text != ""
}

// readStream consumes the event stream and emits fragments, then exactly one
// terminal event. The out channel is closed on return.
func readStream(body io.Reader, out chan<- StreamEvent, done <-chan struct{}) {
	defer close(out)

	emit := func(ev StreamEvent) bool {
		select {
		case out <- ev:
			return true
		case <-done:
			return false
		}
	}

	frames := newFrameReader(body)
	var frag fragmenter
	for {
		data, err := frames.Next()
		if err == io.EOF {
			emit(StreamEvent{Kind: StreamDone})
			return
		}
		if err != nil {
			emit(StreamEvent{Kind: StreamError, Err: fmt.Errorf("read agent stream: %w", err)})
			return
		}
		if data == "[DONE]" {
			emit(StreamEvent{Kind: StreamDone})
			return
		}

		var ev Event
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			log.Warnf("agent stream: skipping malformed frame: %s", err)
			continue
		}
		if runErr := ev.Err(); runErr != nil {
			emit(StreamEvent{Kind: StreamError, Err: runErr})
			return
		}
		if text, ok := frag.fragment(ev); ok {
			if !emit(StreamEvent{Kind: StreamFragment, Text: text}) {
				return
			}
		}
	}
}
