package profile

import "fmt"

// MessageType classifies a data-quality warning.
type MessageType string

const (
	MessageConstant        MessageType = "CONSTANT"
	MessageZeros           MessageType = "ZEROS"
	MessageHighCardinality MessageType = "HIGH_CARDINALITY"
	MessageHighCorrelation MessageType = "HIGH_CORRELATION"
	MessageDuplicates      MessageType = "DUPLICATES"
	MessageSkewed          MessageType = "SKEWED"
	MessageMissing         MessageType = "MISSING"
	MessageInfinite        MessageType = "INFINITE"
	MessageUnique          MessageType = "UNIQUE"
	MessageUniform         MessageType = "UNIFORM"
	MessageUnsupported     MessageType = "UNSUPPORTED"
	MessageEmpty           MessageType = "EMPTY"
)

// Message is one data-quality warning attached to the table or to a column.
type Message struct {
	Type   MessageType    `json:"message_type"`
	Column string         `json:"column,omitempty"`
	Fields map[string]any `json:"fields,omitempty"`
}

func (m Message) String() string {
	if m.Column == "" {
		return fmt.Sprintf("[%s] table", m.Type)
	}
	return fmt.Sprintf("[%s] column %q", m.Type, m.Column)
}
