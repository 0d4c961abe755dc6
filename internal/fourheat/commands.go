package fourheat

import "fmt"

// Command is the logical name of a device operation.
type Command string

// Logical commands supported by 4heat modules.
const (
	CmdInfo    Command = "info"    // bulk device status dump
	CmdGet     Command = "get"     // explicit read of one or more sensor ids
	CmdSet     Command = "set"     // write one sensor value
	CmdOn      Command = "on"      // power on
	CmdOff     Command = "off"     // power off
	CmdUnblock Command = "unblock" // clear a blocked/error state
)

// Token type characters used in queries and responses.
const (
	tokenTypeRead  = 'I' // read request / control acknowledgement
	tokenTypeWrite = 'B' // write request
	tokenTypeAck   = 'A' // write acknowledgement

	// sensorTypeReadOnly marks sensors that reject writes.
	sensorTypeReadOnly = "J"
)

// Fixed token geometry: type char + 5-char id + 12-digit value.
const (
	tokenIDLen    = 5
	tokenValueLen = 12

	// minSensorTokenLen is the shortest response token that carries sensor
	// data; anything of this length or less is protocol filler and is
	// dropped by the parser.
	minSensorTokenLen = 6
)

// CommandTable maps logical command names to their base query tokens.
// Two variants exist, selected once at construction by the firmware mode.
type CommandTable map[Command][]string

// Base query tokens per firmware mode. SEL frames read queries, SEC frames
// control/write queries; the trailing B tokens on the control commands are
// the power (20180/20210) and unblock (20190/20199) switches.
var (
	commandsMode0 = CommandTable{
		CmdInfo:    {"SEL", "0"},
		CmdGet:     {"SEL", "0"},
		CmdSet:     {"SEC", "1"},
		CmdOn:      {"SEC", "1", "B20180000000000001"},
		CmdOff:     {"SEC", "1", "B20180000000000000"},
		CmdUnblock: {"SEC", "1", "B20190000000000001"},
	}

	// Legacy firmware uses different switch ids.
	commandsMode1 = CommandTable{
		CmdInfo:    {"SEL", "0"},
		CmdGet:     {"SEL", "0"},
		CmdSet:     {"SEC", "1"},
		CmdOn:      {"SEC", "1", "B20210000000000001"},
		CmdOff:     {"SEC", "1", "B20210000000000000"},
		CmdUnblock: {"SEC", "1", "B20199000000000001"},
	}
)

// TableForMode returns the command table for the given firmware mode.
func TableForMode(legacy bool) CommandTable {
	if legacy {
		return commandsMode1
	}
	return commandsMode0
}

// Build returns the full query for a logical command: the table's base
// tokens followed by any extra tokens, in order, unmodified.
//
// Returns ErrInvalidCommand if the command name is not in the table.
func (t CommandTable) Build(cmd Command, extra ...string) ([]string, error) {
	base, ok := t[cmd]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCommand, cmd)
	}

	query := make([]string, 0, len(base)+len(extra))
	query = append(query, base...)
	query = append(query, extra...)
	return query, nil
}

// EncodeToken produces a fixed-width query token: the type character, the
// 5-character sensor id and the value zero-padded to 12 digits.
func EncodeToken(typeChar byte, id string, value int) string {
	return fmt.Sprintf("%c%s%0*d", typeChar, id, tokenValueLen, value)
}

// ReadToken builds an I-typed zero-value token requesting sensor id.
func ReadToken(id string) string {
	return EncodeToken(tokenTypeRead, id, 0)
}

// WriteToken builds a B-typed token writing value to sensor id.
func WriteToken(id string, value int) string {
	return EncodeToken(tokenTypeWrite, id, value)
}
