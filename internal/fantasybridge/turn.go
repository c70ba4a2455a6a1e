package fantasybridge

import (
	"fmt"
	"slices"
	"strings"

	"charm.land/fantasy"

	"github.com/dotcommander/toolpilot/internal/proto"
)

// turn accumulates one model step.
type turn struct {
	text  strings.Builder
	calls []proto.ToolCall
	seen  map[string]bool
}

func newTurn() *turn {
	return &turn{seen: map[string]bool{}}
}

func (t *turn) add(part fantasy.StreamPart) {
	switch part.Type {
	case fantasy.StreamPartTypeTextDelta:
		t.text.WriteString(part.Delta)
	case fantasy.StreamPartTypeToolCall:
		// providers may repeat a call id, and some run tools themselves
		if part.ProviderExecuted || t.seen[part.ID] {
			return
		}
		t.seen[part.ID] = true
		t.calls = append(t.calls, proto.ToolCall{
			ID: part.ID,
			Function: proto.Function{
				Name:      part.ToolCallName,
				Arguments: []byte(part.ToolCallInput),
			},
		})
	}
}

// message returns the assistant message of the step, if it said or called
// anything.
func (t *turn) message() (proto.Message, bool) {
	if t.text.Len() == 0 && len(t.calls) == 0 {
		return proto.Message{}, false
	}
	return proto.Message{
		Role:      proto.RoleAssistant,
		Content:   t.text.String(),
		ToolCalls: slices.Clone(t.calls),
	}, true
}

// warnings collects provider warnings, each distinct one once per stream.
type warnings struct {
	seen    map[string]bool
	pending []string
}

func (w *warnings) add(list []fantasy.CallWarning) {
	if w.seen == nil {
		w.seen = map[string]bool{}
	}
	for _, cw := range list {
		text := warningText(cw)
		key := string(cw.Type) + ":" + text
		if w.seen[key] {
			continue
		}
		w.seen[key] = true
		w.pending = append(w.pending, text)
	}
}

func (w *warnings) drain() []string {
	out := w.pending
	w.pending = nil
	return out
}

func warningText(cw fantasy.CallWarning) string {
	if text := strings.TrimSpace(cw.Message); text != "" {
		return text
	}
	if text := strings.TrimSpace(cw.Details); text != "" {
		return text
	}
	if cw.Setting != "" {
		return fmt.Sprintf("unsupported setting: %s", cw.Setting)
	}
	return "provider warning"
}
