package fantasybridge

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"charm.land/fantasy"
	"github.com/effective-security/xlog"

	"github.com/dotcommander/toolpilot/internal/proto"
	"github.com/dotcommander/toolpilot/internal/stream"
)

// partBuffer bounds the stream parts read ahead of Next.
const partBuffer = 64

// Stream is a stream.Stream over fantasy stream parts. Every step is one
// model.Stream call on the conversation so far.
type Stream struct {
	ctx     context.Context
	cancel  context.CancelFunc
	model   fantasy.LanguageModel
	request proto.Request
	api     string

	mu       sync.Mutex
	messages []proto.Message
	parts    <-chan fantasy.StreamPart
	last     fantasy.StreamPart
	err      error
	steps    int
	// turn is nil between steps.
	turn     *turn
	pending  []proto.ToolCall
	warnings warnings
}

// Next implements stream.Stream.
func (s *Stream) Next() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return false
	}
	if s.turn == nil {
		if err := s.begin(); err != nil {
			s.err = err
			return false
		}
	}

	part, ok := <-s.parts
	if !ok {
		// a canceled step is cut short; its partial text is not an answer
		if err := s.ctx.Err(); err != nil {
			s.err = err
			s.turn = nil
			return false
		}
		s.finish()
		return false
	}
	s.last = part
	s.consume(part)
	return true
}

// Current implements stream.Stream. An error part reports the error
// recorded when the part was consumed.
func (s *Stream) Current() (proto.Chunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.last.Type == fantasy.StreamPartTypeTextDelta {
		return proto.Chunk{Content: s.last.Delta}, nil
	}
	if s.last.Type == fantasy.StreamPartTypeError && s.err != nil {
		return proto.Chunk{}, s.err
	}
	return proto.Chunk{}, stream.ErrNoContent
}

// Close implements stream.Stream.
func (s *Stream) Close() error {
	s.cancel()
	return nil
}

// Err implements stream.Stream.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Messages implements stream.Stream. The result is a copy.
func (s *Stream) Messages() []proto.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.messages)
}

// CallTools implements stream.Stream. It runs the calls of the last finished
// step once; a second call returns nothing.
func (s *Stream) CallTools() []proto.ToolCallStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	statuses := make([]proto.ToolCallStatus, 0, len(s.pending))
	for _, call := range s.pending {
		msg, status := stream.CallTool(call.ID, call.Function.Name, call.Function.Arguments, s.request.ToolCaller)
		s.messages = append(s.messages, msg)
		statuses = append(statuses, status)
	}
	s.pending = nil
	return statuses
}

// DrainWarnings implements stream.Stream.
func (s *Stream) DrainWarnings() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.warnings.drain()
}

func (s *Stream) begin() error {
	call := s.buildCall()
	s.steps++
	logger.KV(xlog.DEBUG,
		"status", "step",
		"step", s.steps,
		"api", s.api,
		"model", s.request.Model,
		"messages", len(call.Prompt),
		"tools", len(call.Tools))

	seq, err := s.model.Stream(s.ctx, call)
	if err != nil {
		return fmt.Errorf("fantasy stream: %w", err)
	}

	parts := make(chan fantasy.StreamPart, partBuffer)
	go func() {
		defer close(parts)
		for part := range seq {
			select {
			case <-s.ctx.Done():
				return
			case parts <- part:
			}
		}
	}()
	s.parts = parts
	s.turn = newTurn()
	s.pending = nil
	return nil
}

func (s *Stream) buildCall() fantasy.Call {
	call := fantasy.Call{
		Prompt:          toFantasyPrompt(s.messages),
		MaxOutputTokens: s.request.MaxTokens,
		Temperature:     s.request.Temperature,
		TopP:            s.request.TopP,
		TopK:            s.request.TopK,
		Tools:           fromMCPTools(s.request.Tools),
		ToolChoice:      toolChoiceForRequest(s.request),
		ProviderOptions: fantasy.ProviderOptions{},
	}
	applyProviderOptions(&call, s.api, s.request)
	return call
}

func (s *Stream) consume(part fantasy.StreamPart) {
	switch part.Type {
	case fantasy.StreamPartTypeError:
		s.err = part.Error
	case fantasy.StreamPartTypeWarnings:
		s.warnings.add(part.Warnings)
	default:
		s.turn.add(part)
	}
}

// finish closes the current step: its text and tool calls become one
// assistant message, and the calls wait for CallTools.
func (s *Stream) finish() {
	if msg, ok := s.turn.message(); ok {
		s.messages = append(s.messages, msg)
	}
	s.pending = s.turn.calls
	s.turn = nil
}
