package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Resolution Errors (H001-H009)
	// ============================================

	"H001": {
		Category: CategoryResolution,
		Message:  "Cannot find Hydro component",
		Detail:   "The element is not inside an element carrying the hydro attribute.",
	},
	"H002": {
		Category: CategoryResolution,
		Message:  "Component state snapshot missing",
		Detail:   "The component subtree has no script[data-id] element matching the component id.",
	},
	"H003": {
		Category: CategoryResolution,
		Message:  "Bound input has no name",
		Detail:   "Inputs marked x-hydro-bind must carry a name attribute so the field can be sent.",
	},
	"H004": {
		Category: CategoryResolution,
		Message:  "Element has no action URL",
		Detail:   "Actions require an x-hydro-action attribute holding the target URL.",
	},
	"H005": {
		Category: CategoryResolution,
		Message:  "Invalid event descriptor",
		Detail:   "The x-on-hydro-event attribute must hold JSON of the form {\"name\": ..., \"path\": ...}.",
	},

	// ============================================
	// Transport Errors (H010-H019)
	// ============================================

	"H010": {
		Category: CategoryTransport,
		Message:  "HTTP error",
		Detail:   "The server answered with a non-success status code.",
	},
	"H011": {
		Category: CategoryTransport,
		Message:  "Request failed",
		Detail:   "The request could not be sent or the response could not be read.",
	},

	// ============================================
	// Protocol Errors (H020-H029)
	// ============================================

	"H020": {
		Category: CategoryProtocol,
		Message:  "Malformed Hydro-Location header",
		Detail:   "The header must hold JSON of the form {\"path\": ..., \"target\": ...}.",
	},
	"H021": {
		Category: CategoryProtocol,
		Message:  "Malformed Hydro-Trigger header",
		Detail:   "The header must hold a JSON array of {\"name\", \"scope\", \"data\"} objects.",
	},
	"H022": {
		Category: CategoryProtocol,
		Message:  "Malformed component markup",
		Detail:   "The response body did not contain a root element to patch the component with.",
	},

	// ============================================
	// Config Errors (H030-H039)
	// ============================================

	"H030": {
		Category: CategoryConfig,
		Message:  "Invalid page configuration",
		Detail:   "The hydro-config meta tag content is not valid JSON.",
	},
	"H031": {
		Category: CategoryConfig,
		Message:  "Cannot load config file",
		Detail:   "The client configuration file could not be read or parsed.",
	},
	"H032": {
		Category: CategoryConfig,
		Message:  "Invalid config value",
		Detail:   "A configuration value is out of range.",
	},

	// ============================================
	// Navigation and Storage Errors (H040-H059)
	// ============================================

	"H040": {
		Category: CategoryResolution,
		Message:  "Navigation target not found",
		Detail:   "The target selector matched no element in the live document or in the response.",
	},
	"H050": {
		Category: CategoryStorage,
		Message:  "Snapshot store failure",
		Detail:   "The rendered document could not be written to the snapshot store.",
	},

	// ============================================
	// CLI Errors (H060-H069)
	// ============================================

	"H060": {
		Category: CategoryCLI,
		Message:  "Command failed",
		Detail:   "The hydro command could not complete with the given arguments.",
	},
}

// Lookup returns the template for a code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
