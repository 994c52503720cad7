package domain

// CommandType classifies what the user typed into the closure browser.
type CommandType int

const (
	CommandUnknown CommandType = iota
	CommandList
	CommandOpen
	CommandNext
	CommandPrev
	CommandIngredients
	CommandSummary
	CommandFilter
	CommandClear
	CommandHelp
	CommandQuit
	CommandConvert
)

// String returns a human-readable command type.
func (c CommandType) String() string {
	switch c {
	case CommandList:
		return "list"
	case CommandOpen:
		return "open"
	case CommandNext:
		return "next"
	case CommandPrev:
		return "prev"
	case CommandIngredients:
		return "ingredients"
	case CommandSummary:
		return "summary"
	case CommandFilter:
		return "filter"
	case CommandClear:
		return "clear"
	case CommandHelp:
		return "help"
	case CommandQuit:
		return "quit"
	case CommandConvert:
		return "convert"
	default:
		return "unknown"
	}
}

// Command is a parsed browser instruction.
type Command struct {
	Type    CommandType
	Payload string // closure name or number for open, keyword for filter, query for convert
}

var commandNames = map[string]CommandType{
	"list":        CommandList,
	"open":        CommandOpen,
	"next":        CommandNext,
	"prev":        CommandPrev,
	"ingredients": CommandIngredients,
	"summary":     CommandSummary,
	"filter":      CommandFilter,
	"clear":       CommandClear,
	"help":        CommandHelp,
	"quit":        CommandQuit,
	"convert":     CommandConvert,
	"unknown":     CommandUnknown,
}

// CommandFromString converts a command name to a CommandType.
// Returns CommandUnknown for unrecognized names.
func CommandFromString(name string) CommandType {
	if t, ok := commandNames[name]; ok {
		return t
	}
	return CommandUnknown
}
