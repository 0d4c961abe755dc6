package fourheat

import (
	"fmt"
	"strconv"
	"strings"
)

// Status characters emitted by the module as the first response element.
const (
	statusInfo  = "I" // info-class answer (status dump)
	statusOK    = "O" // command accepted
	statusError = "E" // module-side error
	statusAck   = "A" // write acknowledgement echo
)

// StatusClass classifies a response status character.
type StatusClass int

// Status classes, in the order the protocol documentation lists them.
const (
	StatusUnknown StatusClass = iota
	StatusInfo
	StatusOK
	StatusError
)

// String returns the class name for logging.
func (c StatusClass) String() string {
	switch c {
	case StatusInfo:
		return "info"
	case StatusOK:
		return "ok"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// SensorReading is one decoded sensor token from a response.
type SensorReading struct {
	ID    string `json:"id"`    // 5-character sensor id
	Type  string `json:"type"`  // single type character (I, B, J, A, ...)
	Value int    `json:"value"` // integer value
}

// Response is the parsed form of one device answer.
// It is produced fresh per exchange and never mutated afterwards.
type Response struct {
	Status  string          // raw status element
	Sensors []SensorReading // decoded sensor tokens, response order
}

// Class maps the raw status element onto the known status vocabulary.
// Anything outside the vocabulary is StatusUnknown, which the dispatcher
// treats as a protocol violation.
func (r *Response) Class() StatusClass {
	switch r.Status {
	case statusInfo:
		return StatusInfo
	case statusOK:
		return StatusOK
	case statusError:
		return StatusError
	default:
		return StatusUnknown
	}
}

// ParseResponse decodes the raw response text into a Response.
//
// The text is a bracketed list literal: the first element is the status,
// the second is reserved, and every following element is a sensor token.
// Tokens of six characters or fewer are filler and are skipped; longer
// tokens must decode cleanly or the whole response is rejected.
//
// The parser is pure: the same input always yields the same Response or
// the same error.
func ParseResponse(text string) (*Response, error) {
	elems, err := parseListLiteral(text)
	if err != nil {
		return nil, err
	}
	if len(elems) == 0 {
		return nil, fmt.Errorf("%w: response list is empty", ErrInvalidMessage)
	}

	resp := &Response{Status: elems[0]}

	// Element 1 is reserved; sensor tokens start at index 2.
	for _, tok := range elems[min(2, len(elems)):] {
		if len(tok) <= minSensorTokenLen {
			continue
		}
		reading, err := decodeSensorToken(tok)
		if err != nil {
			return nil, err
		}
		resp.Sensors = append(resp.Sensors, reading)
	}

	return resp, nil
}

// decodeSensorToken splits a fixed-width sensor token into id, type and
// value. The value field starts at offset 7 (the first value digit is a
// firmware padding digit and is not part of the number); an empty value
// field decodes as zero.
func decodeSensorToken(tok string) (SensorReading, error) {
	if len(tok) <= minSensorTokenLen {
		return SensorReading{}, fmt.Errorf("%w: sensor token %q too short", ErrInvalidMessage, tok)
	}

	reading := SensorReading{
		ID:   tok[1 : 1+tokenIDLen],
		Type: tok[:1],
	}

	if raw := tok[minSensorTokenLen+1:]; raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			return SensorReading{}, fmt.Errorf("%w: sensor token %q has non-numeric value: %w",
				ErrInvalidMessage, tok, err)
		}
		reading.Value = value
	}

	return reading, nil
}

// parseListLiteral scans a bracketed, comma-separated list into its string
// elements. Elements are either quoted (single or double, the module uses
// both across firmware versions) or bare; quotes are stripped, bare
// elements are whitespace-trimmed. There is no escape syntax on the wire.
func parseListLiteral(text string) ([]string, error) {
	s := strings.TrimSpace(text)
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, fmt.Errorf("%w: not a bracketed list: %q", ErrInvalidMessage, text)
	}

	inner := s[1 : len(s)-1]
	if strings.TrimSpace(inner) == "" {
		return nil, nil
	}

	var elems []string
	i := 0
	for {
		// Skip leading whitespace before the element.
		for i < len(inner) && (inner[i] == ' ' || inner[i] == '\t') {
			i++
		}
		if i >= len(inner) {
			return nil, fmt.Errorf("%w: trailing comma in list: %q", ErrInvalidMessage, text)
		}

		var elem string
		if q := inner[i]; q == '\'' || q == '"' {
			end := strings.IndexByte(inner[i+1:], q)
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated quote in list: %q", ErrInvalidMessage, text)
			}
			elem = inner[i+1 : i+1+end]
			i += end + 2
		} else {
			end := strings.IndexByte(inner[i:], ',')
			if end < 0 {
				end = len(inner) - i
			}
			elem = strings.TrimSpace(inner[i : i+end])
			i += end
		}
		elems = append(elems, elem)

		// Skip whitespace up to the separator.
		for i < len(inner) && (inner[i] == ' ' || inner[i] == '\t') {
			i++
		}
		if i >= len(inner) {
			return elems, nil
		}
		if inner[i] != ',' {
			return nil, fmt.Errorf("%w: unexpected character %q in list: %q",
				ErrInvalidMessage, inner[i], text)
		}
		i++
	}
}
