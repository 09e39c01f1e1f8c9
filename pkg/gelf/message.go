package gelf

import (
	"fmt"
	"strconv"
	"time"
)

// Mutable GELF record. Not safe for concurrent use.
type Message struct {
	host         string
	shortMessage string
	fullMessage  *string
	timestamp    *string
	level        Level
	fields       map[string]FieldValue
	fieldOrder   []string
	escapeMode   EscapeMode
}

// Creates a message with the default level (Alert)
func New(host string, shortMessage string) (msg *Message) {
	msg = &Message{
		host:         host,
		shortMessage: shortMessage,
		level:        Alert,
		fields:       make(map[string]FieldValue),
	}
	return
}

// Creates a message with an explicit level
func NewWithLevel(host string, shortMessage string, level Level) (msg *Message) {
	msg = New(host, shortMessage)
	msg.level = level
	return
}

func (msg *Message) Host() string {
	return msg.host
}

func (msg *Message) ShortMessage() string {
	return msg.shortMessage
}

func (msg *Message) Level() Level {
	return msg.level
}

func (msg *Message) SetLevel(level Level) *Message {
	msg.level = level
	return msg
}

// Returns the full message and whether it was ever set
func (msg *Message) FullMessage() (text string, set bool) {
	if msg.fullMessage == nil {
		return
	}
	text, set = *msg.fullMessage, true
	return
}

func (msg *Message) SetFullMessage(text string) *Message {
	msg.fullMessage = &text
	return msg
}

// Returns the stored (already stringified) timestamp and whether it was set
func (msg *Message) Timestamp() (stamp string, set bool) {
	if msg.timestamp == nil {
		return
	}
	stamp, set = *msg.timestamp, true
	return
}

// Stores the time as integer Unix epoch seconds
func (msg *Message) SetTimestamp(t time.Time) *Message {
	return msg.SetTimestampUnix(t.Unix())
}

func (msg *Message) SetTimestampUnix(seconds int64) *Message {
	stamp := strconv.FormatInt(seconds, 10)
	msg.timestamp = &stamp
	return msg
}

// Stores fractional epoch seconds in plain decimal notation
func (msg *Message) SetTimestampFloat(seconds float64) *Message {
	stamp := strconv.FormatFloat(seconds, 'f', -1, 64)
	msg.timestamp = &stamp
	return msg
}

func (msg *Message) EscapeMode() EscapeMode {
	return msg.escapeMode
}

func (msg *Message) SetEscapeMode(mode EscapeMode) *Message {
	msg.escapeMode = mode
	return msg
}

// Sets (or overwrites) a user field.
// Name must not include the leading underscore, it is added during rendering.
// Reserved top-level names are not checked.
func (msg *Message) SetField(name string, value any) *Message {
	msg.setFieldValue(name, NewFieldValue(value))
	return msg
}

// Sets a pre-stringified user field, always rendered quoted
func (msg *Message) Set(name string, value string) *Message {
	msg.setFieldValue(name, FieldValue{Raw: value, Quote: true})
	return msg
}

func (msg *Message) setFieldValue(name string, value FieldValue) {
	if msg.fields == nil {
		msg.fields = make(map[string]FieldValue)
	}
	if _, exists := msg.fields[name]; !exists {
		msg.fieldOrder = append(msg.fieldOrder, name)
	}
	msg.fields[name] = value
}

// Returns the raw text of a previously set user field
func (msg *Message) Field(name string) (value string, err error) {
	field, exists := msg.fields[name]
	if !exists {
		err = fmt.Errorf("%w: %q", ErrFieldNotSet, name)
		return
	}
	value = field.Raw
	return
}

// Returns the stored field value including its quoting decision
func (msg *Message) FieldValue(name string) (value FieldValue, err error) {
	value, exists := msg.fields[name]
	if !exists {
		err = fmt.Errorf("%w: %q", ErrFieldNotSet, name)
	}
	return
}

// User field names in insertion order
func (msg *Message) FieldNames() (names []string) {
	names = append([]string(nil), msg.fieldOrder...)
	return
}

// Renders the canonical GELF JSON object
func (msg *Message) Bytes() (payload []byte) {
	size := 64 + len(msg.host) + len(msg.shortMessage)
	if msg.fullMessage != nil {
		size += len(*msg.fullMessage) + 20
	}
	for _, name := range msg.fieldOrder {
		size += len(name) + len(msg.fields[name].Raw) + 6
	}

	payload = make([]byte, 0, size)
	payload = append(payload, '{')
	payload = appendRawKey(payload, keyVersion, false)
	payload = append(payload, Version...)

	payload = appendRawKey(payload, keyHost, true)
	payload = appendQuoted(payload, msg.host, msg.escapeMode)

	payload = appendRawKey(payload, keyShortMessage, true)
	payload = appendQuoted(payload, msg.shortMessage, msg.escapeMode)

	if msg.fullMessage != nil {
		payload = appendRawKey(payload, keyFullMessage, true)
		payload = appendQuoted(payload, *msg.fullMessage, msg.escapeMode)
	}

	if msg.timestamp != nil {
		payload = appendRawKey(payload, keyTimestamp, true)
		payload = append(payload, *msg.timestamp...)
	}

	payload = appendRawKey(payload, keyLevel, true)
	payload = strconv.AppendUint(payload, uint64(msg.level), 10)

	for _, name := range msg.fieldOrder {
		field := msg.fields[name]

		payload = append(payload, ',')
		payload = appendQuoted(payload, userFieldPrefix+name, msg.escapeMode)
		payload = append(payload, ':')
		if field.Quote {
			payload = appendQuoted(payload, field.Raw, msg.escapeMode)
		} else {
			payload = append(payload, field.Raw...)
		}
	}

	payload = append(payload, '}')
	return
}

func (msg *Message) String() string {
	return string(msg.Bytes())
}

// Appends `"key":` with an optional leading comma
func appendRawKey(buf []byte, key string, separator bool) []byte {
	if separator {
		buf = append(buf, ',')
	}
	buf = append(buf, '"')
	buf = append(buf, key...)
	buf = append(buf, '"', ':')
	return buf
}
