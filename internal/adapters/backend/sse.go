package backend

import (
	"bufio"
	"io"
	"strings"
)

// maxEventLine bounds a single SSE line; notification payloads are small JSON objects.
const maxEventLine = 1 << 20

// Event is one dispatched server-sent event.
type Event struct {
	ID   string
	Name string
	Data string
}

// ReadEvents parses a text/event-stream body and calls fn for each dispatched
// event. Comment lines and retry fields are ignored. It returns nil at a clean EOF.
func ReadEvents(r io.Reader, fn func(Event)) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxEventLine)

	var (
		ev      Event
		data    strings.Builder
		hasData bool
	)
	dispatch := func() {
		if hasData {
			ev.Data = data.String()
			fn(ev)
		}
		ev = Event{ID: ev.ID}
		data.Reset()
		hasData = false
	}

	for sc.Scan() {
		line := strings.TrimSuffix(sc.Text(), "\r")
		if line == "" {
			dispatch()
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "event":
			ev.Name = value
		case "data":
			if hasData {
				data.WriteByte('\n')
			}
			data.WriteString(value)
			hasData = true
		case "id":
			ev.ID = value
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	dispatch()
	return nil
}

// lineBreaks normalizes the three SSE line endings to "\n".
var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// fieldStripper drops characters that would end an id or event field early.
// A NUL makes browsers ignore the id entirely.
var fieldStripper = strings.NewReplacer("\r", "", "\n", "", "\x00", "")

// WriteEvent encodes one event in text/event-stream framing. Line breaks in
// ID and Name are removed; Data is split into one data field per line.
func WriteEvent(w io.Writer, ev Event) error {
	var b strings.Builder
	if id := fieldStripper.Replace(ev.ID); id != "" {
		b.WriteString("id: " + id + "\n")
	}
	if name := fieldStripper.Replace(ev.Name); name != "" {
		b.WriteString("event: " + name + "\n")
	}
	for line := range strings.SplitSeq(lineBreaks.Replace(ev.Data), "\n") {
		b.WriteString("data: " + line + "\n")
	}
	b.WriteString("\n")
	_, err := io.WriteString(w, b.String())
	return err
}
