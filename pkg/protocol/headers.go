package protocol

// Request headers.
const (
	HeaderRequest    = "Hydro-Request"
	HeaderBoosted    = "Hydro-Boosted"
	HeaderAllIDs     = "Hydro-All-Ids"
	HeaderModel      = "Hydro-Model"
	HeaderEventName  = "Hydro-Event-Name"
	HeaderParameters = "Hydro-Parameters"
)

// Response headers.
const (
	HeaderLocation = "Hydro-Location"
	HeaderRedirect = "Hydro-Redirect"
	HeaderTrigger  = "Hydro-Trigger"
)

// Element attributes read by the client.
const (
	AttrBind       = "x-hydro-bind"
	AttrAction     = "x-hydro-action"
	AttrOnEvent    = "x-on-hydro-event"
	AttrParameters = "hydro-parameters"
	AttrEvent      = "hydro-event"
	AttrDelay      = "hydro-delay"
	AttrAutorun    = "hydro-autorun"
	AttrBoost      = "x-boost"
)

// State classes toggled on elements.
const (
	ClassRequest = "hydro-request"
	ClassLoading = "hydro-loading"
)

// HeaderTrue is the value of boolean request headers.
const HeaderTrue = "true"

// DefaultTarget is the region replaced by in-page navigation when the
// server names none.
const DefaultTarget = "body"

// RequestType distinguishes what caused a request.
type RequestType uint8

const (
	TypeAction RequestType = iota
	TypeBind
	TypeEvent
	TypeNavigation
)

// String returns the string representation of the RequestType.
func (t RequestType) String() string {
	switch t {
	case TypeAction:
		return "action"
	case TypeBind:
		return "bind"
	case TypeEvent:
		return "event"
	case TypeNavigation:
		return "navigation"
	default:
		return "unknown"
	}
}

// Sourced reports whether requests of this type disable their element
// and show the pending marker. Binds and events do not.
func (t RequestType) Sourced() bool {
	return t == TypeAction
}
