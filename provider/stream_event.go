package provider

import (
	"fmt"
)

// BlockType identifies the kind of content block opened by BlockStart.
type BlockType string

const (
	BlockText    BlockType = "text"
	BlockToolUse BlockType = "tool_use"
)

// StreamEvent is the closed set of raw events an adapter can produce.
type StreamEvent interface {
	streamEvent()
}

// BlockStart opens a content block. ID and Name are set for tool_use blocks.
type BlockStart struct {
	Index int
	Type  BlockType
	ID    string
	Name  string
}

func (BlockStart) streamEvent() {}

// TextDelta is a text fragment for the block at Index.
type TextDelta struct {
	Index int
	Text  string
}

func (TextDelta) streamEvent() {}

// InputDelta is a fragment of the serialized argument object for the tool_use block at Index.
type InputDelta struct {
	Index       int
	PartialJSON string
}

func (InputDelta) streamEvent() {}

// BlockStop closes the block at Index.
type BlockStop struct {
	Index int
}

func (BlockStop) streamEvent() {}

// TurnEnd carries the stop reason of the response.
type TurnEnd struct {
	StopReason string
}

func (TurnEnd) streamEvent() {}

// Unknown is any wire event the adapter does not translate.
type Unknown struct {
	Type string
	Raw  string
}

func (Unknown) streamEvent() {}

// Error reports a failure after the stream was opened.
type Error struct {
	Err error
}

func (Error) streamEvent() {}

func (e Error) Error() string {
	return fmt.Sprintf("stream error: %v", e.Err)
}

func (e Error) Unwrap() error {
	return e.Err
}
