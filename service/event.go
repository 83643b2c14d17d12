package service

// EventKind classifies one inbound update after the transport flattened it.
type EventKind int

const (
	// EventStart is the /start command.
	EventStart EventKind = iota
	// EventCommand is any other slash command, with the name in Command.
	EventCommand
	// EventText is a plain text message.
	EventText
	// EventContact is a shared contact card, with the number in Phone.
	EventContact
	// EventCallback is an inline button press, already parsed into Action.
	EventCallback
)

// Event is what the dispatcher consumes. The transport builds exactly one per
// private-chat update.
type Event struct {
	ChatID  int64
	Kind    EventKind
	Command string
	Text    string
	Phone   string
	Action  Action
}
