package notify

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
)

// LogSink writes events to the server log.  It is the default sink; a real
// broker publisher would implement Sink the same way.
type LogSink struct {
	logger *log.Logger
}

func NewLogSink(logger *log.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Publish(_ context.Context, ev Event) error {
	keys := make([]string, 0, len(ev.Fields))
	for k := range ev.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, ev.Fields[k])
	}

	s.logger.Printf("event %s%s", ev.Name, b.String())
	return nil
}
