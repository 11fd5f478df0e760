package log

import (
	"time"
	"unicode/utf8"
)

// MaxTextSize is the largest payload kept verbatim in a DataEvent.
const MaxTextSize = 4096

// Event represents a captured protocol event.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID uniquely identifies the socket (UUID).
	ConnectionID string `cbor:"2,keyasint"`

	// Direction indicates data flow.
	Direction Direction `cbor:"3,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"4,keyasint"`

	// Host and Port are the configured endpoint.
	Host string `cbor:"5,keyasint,omitempty"`
	Port int    `cbor:"6,keyasint,omitempty"`

	// Secure is set when the stream is encrypted.
	Secure bool `cbor:"7,keyasint,omitempty"`

	// RemoteAddr is the resolved peer address (IP:port).
	RemoteAddr string `cbor:"8,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Data        *DataEvent        `cbor:"10,keyasint,omitempty"`
	StateChange *StateChangeEvent `cbor:"11,keyasint,omitempty"`
	Error       *ErrorEventData   `cbor:"12,keyasint,omitempty"`
}

// Direction indicates the direction of data flow.
type Direction uint8

const (
	// DirectionIn indicates data received from the server.
	DirectionIn Direction = 0
	// DirectionOut indicates data sent to the server.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryData indicates lines read or bytes written.
	CategoryData Category = 0
	// CategoryState indicates a state change.
	CategoryState Category = 1
	// CategoryError indicates an error event.
	CategoryError Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryData:
		return "DATA"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseCategory is the inverse of Category.String.
func ParseCategory(s string) (Category, bool) {
	for _, c := range []Category{CategoryData, CategoryState, CategoryError} {
		if c.String() == s {
			return c, true
		}
	}
	return 0, false
}

// DataEvent captures text crossing the socket.
type DataEvent struct {
	// Size is the payload size in bytes.
	Size int `cbor:"1,keyasint"`

	// Text is the payload (may be truncated for large writes).
	Text string `cbor:"2,keyasint,omitempty"`

	// Truncated indicates if Text was truncated.
	Truncated bool `cbor:"3,keyasint,omitempty"`

	// Lines is the number of lines for reads.
	Lines int `cbor:"4,keyasint,omitempty"`
}

// NewDataEvent builds a DataEvent, truncating text beyond MaxTextSize on a
// rune boundary.
func NewDataEvent(text string, lines int) *DataEvent {
	ev := &DataEvent{Size: len(text), Text: text, Lines: lines}
	if len(text) > MaxTextSize {
		cut := MaxTextSize
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		ev.Text = text[:cut]
		ev.Truncated = true
	}
	return ev
}

// StateChangeEvent captures socket lifecycle events.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// StateEntityConnection indicates a connect or close.
	StateEntityConnection StateEntity = 0
	// StateEntityCrypto indicates TLS being enabled on an open stream.
	StateEntityCrypto StateEntity = 1
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityConnection:
		return "CONNECTION"
	case StateEntityCrypto:
		return "CRYPTO"
	default:
		return "UNKNOWN"
	}
}

// Connection states recorded in StateChangeEvent.
const (
	StateClosed    = "CLOSED"
	StateConnected = "CONNECTED"
	StatePlain     = "PLAIN"
	StateSecure    = "SECURE"
)

// ErrorEventData captures a failed operation.
type ErrorEventData struct {
	// Kind is "programmer" or "connectivity".
	Kind string `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Code is the operating system error number (if applicable).
	Code *int `cbor:"3,keyasint,omitempty"`

	// Context describes what operation was being performed.
	Context string `cbor:"4,keyasint,omitempty"`
}
