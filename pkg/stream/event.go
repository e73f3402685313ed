package stream

// Code is the one-letter kind tag carried in the "t" field of a stream line.
type Code string

const (
	CodeContent   Code = "c"
	CodeReasoning Code = "r"
	CodePlan      Code = "p"
	CodeStatus    Code = "s"
	CodeContext   Code = "x"
	CodeError     Code = "e"
)

// Event is a decoded stream line. The set of variants is closed; lines with
// an unrecognized code decode to Unknown so that newer servers do not break
// older clients.
type Event interface {
	Code() Code
	event()
}

// Content is an incremental chunk of assistant reply text.
type Content struct {
	Text string
}

// Reasoning is incremental "thinking" text, kept apart from Content.
type Reasoning struct {
	Text string
}

// Plan is incremental planning text.
type Plan struct {
	Text string
}

// Status is a transient search or tool status. Only the latest is kept.
type Status struct {
	Text string
}

// Context carries side-channel metadata such as retrieved sources.
// Last write wins.
type Context struct {
	Payload map[string]any
}

// Error is terminal for the session that receives it.
type Error struct {
	Message string
}

// Unknown is the no-op variant for codes this client does not understand.
type Unknown struct {
	Raw Code
}

func (Content) Code() Code   { return CodeContent }
func (Reasoning) Code() Code { return CodeReasoning }
func (Plan) Code() Code      { return CodePlan }
func (Status) Code() Code    { return CodeStatus }
func (Context) Code() Code   { return CodeContext }
func (Error) Code() Code     { return CodeError }
func (u Unknown) Code() Code { return u.Raw }

func (Content) event()   {}
func (Reasoning) event() {}
func (Plan) event()      {}
func (Status) event()    {}
func (Context) event()   {}
func (Error) event()     {}
func (Unknown) event()   {}

// Interface compliance checks.
var (
	_ Event = Content{}
	_ Event = Reasoning{}
	_ Event = Plan{}
	_ Event = Status{}
	_ Event = Context{}
	_ Event = Error{}
	_ Event = Unknown{}
)
