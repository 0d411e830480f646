package command

// Command is one of the fixed set of operations the bot can perform.
type Command string

const (
	CommandList            Command = "list"
	CommandRoom            Command = "room"
	CommandDate            Command = "date"
	CommandDateRange       Command = "date_range"
	CommandThread          Command = "thread"
	CommandThreadUser      Command = "thread_user"
	CommandAddChannel      Command = "add_channel"
	CommandSetRoomCurrency Command = "set_room_currency"
	CommandSpendingReport  Command = "spending_report"
	CommandCreateChannel   Command = "create_channel"
	CommandHelp            Command = "help"
	CommandUnknown         Command = "unknown"
)

// vocabulary is the closed command set. Anything outside it resolves to
// unknown. Adding a command here requires adding worked examples to the
// translation prompt covering its required-parameter and no-parameter forms.
var vocabulary = map[Command]bool{
	CommandList:            true,
	CommandRoom:            true,
	CommandDate:            true,
	CommandDateRange:       true,
	CommandThread:          true,
	CommandThreadUser:      true,
	CommandAddChannel:      true,
	CommandSetRoomCurrency: true,
	CommandSpendingReport:  true,
	CommandCreateChannel:   true,
	CommandHelp:            true,
	CommandUnknown:         true,
}

// Params is the optional parameter bag carried by an intent. Date and
// StartDate/EndDate are mutually exclusive: a single-day query and a range
// query are distinct intents, never combined.
type Params struct {
	Date       string `json:"date,omitempty"`
	StartDate  string `json:"startDate,omitempty"`
	EndDate    string `json:"endDate,omitempty"`
	SearchTerm string `json:"searchTerm,omitempty"`
	Currency   string `json:"currency,omitempty"`
	Name       string `json:"name,omitempty"`
	Category   string `json:"category,omitempty"`
}

// IsEmpty reports whether no parameter is set.
func (p Params) IsEmpty() bool {
	return p == Params{}
}

// Intent is a resolved command plus its parameters. Intents are ephemeral:
// resolved per incoming message, never persisted.
type Intent struct {
	Command Command
	Params  Params
}

// normalize enforces the date/date-range exclusivity invariant. A complete
// range wins over a stray single date; an incomplete range is dropped.
func (i *Intent) normalize() {
	if i.Params.StartDate != "" && i.Params.EndDate != "" {
		i.Params.Date = ""
		return
	}
	if i.Params.Date != "" {
		i.Params.StartDate = ""
		i.Params.EndDate = ""
	}
}
