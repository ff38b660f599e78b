package application

import "telegram-pinmsg-bot/internal/domain/model"

// Event types understood by the dispatcher.
const (
	EventMessage        = "message"
	EventCommand        = "command"
	EventTick           = "tick"
	eventCommandPrefix  = "command."
	eventPromptRequest  = "prompt.request."
	eventPromptComplete = "prompt.complete."
)

func CommandEvent(name string) string        { return eventCommandPrefix + name }
func PromptRequestEvent(kind string) string  { return eventPromptRequest + kind }
func PromptCompleteEvent(kind string) string { return eventPromptComplete + kind }

// Event is one inbound structured event. Handlers must treat it as read-only.
type Event struct {
	Type    string
	Chat    model.Chat
	Message *model.Message // triggering or completing message
	Command *model.Command
	Prompt  *model.PromptState
}

// ChatID is a shorthand used for logging.
func (e *Event) ChatID() int64 { return e.Chat.ID }

// Action tells the dispatcher whether to keep running the handler chain.
type Action int

const (
	Continue Action = iota
	Stop
	StopWithResponse
)

func (a Action) String() string {
	switch a {
	case Stop:
		return "stop"
	case StopWithResponse:
		return "stop-with-response"
	default:
		return "continue"
	}
}

// Result is what a handler hands back to the dispatcher: the chain decision and the
// outbound requests to forward.
type Result struct {
	Action   Action
	Requests []model.OutboundRequest
}

// Next continues the chain, optionally sending requests.
func Next(reqs ...model.OutboundRequest) Result {
	return Result{Action: Continue, Requests: reqs}
}

// Halt stops the chain without a response.
func Halt() Result { return Result{Action: Stop} }

// Respond stops the chain after sending reqs.
func Respond(reqs ...model.OutboundRequest) Result {
	return Result{Action: StopWithResponse, Requests: reqs}
}
