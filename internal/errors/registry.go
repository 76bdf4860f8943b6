package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// Registered error codes.
const (
	CodeHookOutsideRender  = "E001"
	CodeHookOrderChanged   = "E002"
	CodeHookSlotMismatch   = "E003"
	CodeDoubleMount        = "E010"
	CodeDoubleUnmount      = "E011"
	CodeUnknownContext     = "E020"
	CodeBridgeLoadFailed   = "E030"
	CodeBridgeCallFailed   = "E031"
	CodeConfigInvalid      = "E040"
	CodeProtocolDecode     = "E050"
	CodeTreeFileInvalid    = "E060"
	CodeTemplateParseError = "E061"
	CodeScaffoldUnknown    = "E062"
	CodeScaffoldExists     = "E063"
)

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Hook Errors (E001-E009)
	// ============================================

	CodeHookOutsideRender: {
		Category: CategoryComponent,
		Message:  "Hook called outside a component render",
		Detail:   "UseState, UseEffect, UseRef and UseContext address per-instance slots and only work while a closure component is rendering.",
		DocURL:   "https://eghact.dev/docs/errors/E001",
	},
	CodeHookOrderChanged: {
		Category: CategoryComponent,
		Message:  "Hook order changed between renders",
		Detail:   "Hook calls consume slots by call order. Calling hooks conditionally or in loops shifts every later slot.",
		DocURL:   "https://eghact.dev/docs/errors/E002",
	},
	CodeHookSlotMismatch: {
		Category: CategoryComponent,
		Message:  "Hook slot type mismatch",
		Detail:   "The value stored in this hook slot was created by a different hook or with a different type parameter.",
		DocURL:   "https://eghact.dev/docs/errors/E003",
	},

	// ============================================
	// Lifecycle Errors (E010-E019)
	// ============================================

	CodeDoubleMount: {
		Category: CategoryComponent,
		Message:  "Component already mounted",
		Detail:   "Mount was called on an instance that is mounted or already unmounted. The call was ignored.",
		DocURL:   "https://eghact.dev/docs/errors/E010",
	},
	CodeDoubleUnmount: {
		Category: CategoryComponent,
		Message:  "Component not mounted",
		Detail:   "Unmount was called on an instance that was never mounted or is already unmounted. The call was ignored.",
		DocURL:   "https://eghact.dev/docs/errors/E011",
	},

	// ============================================
	// Context Errors (E020-E029)
	// ============================================

	CodeUnknownContext: {
		Category: CategoryComponent,
		Message:  "Context not registered",
		Detail:   "The context identifier was never created with CreateContext or has been released.",
		DocURL:   "https://eghact.dev/docs/errors/E020",
	},

	// ============================================
	// Acceleration Bridge Errors (E030-E039)
	// ============================================

	CodeBridgeLoadFailed: {
		Category: CategoryBridge,
		Message:  "Accelerated backend unavailable",
		Detail:   "The accelerated module could not be loaded. The software backend is used instead.",
		DocURL:   "https://eghact.dev/docs/errors/E030",
	},
	CodeBridgeCallFailed: {
		Category: CategoryBridge,
		Message:  "Accelerated backend call failed",
		Detail:   "A call into the accelerated module failed. The software backend served this call.",
		DocURL:   "https://eghact.dev/docs/errors/E031",
	},

	// ============================================
	// Configuration Errors (E040-E049)
	// ============================================

	CodeConfigInvalid: {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "The eghact configuration file is malformed or contains invalid values.",
		DocURL:   "https://eghact.dev/docs/errors/E040",
	},

	// ============================================
	// Protocol Errors (E050-E059)
	// ============================================

	CodeProtocolDecode: {
		Category: CategoryProtocol,
		Message:  "Malformed encoded payload",
		Detail:   "A length-prefixed tree or patch encoding could not be decoded.",
		DocURL:   "https://eghact.dev/docs/errors/E050",
	},

	// ============================================
	// CLI Errors (E060-E069)
	// ============================================

	CodeTreeFileInvalid: {
		Category: CategoryCLI,
		Message:  "Invalid tree file",
		Detail:   "The tree description could not be decoded. Nodes need either a tag or a text field.",
		DocURL:   "https://eghact.dev/docs/errors/E060",
	},
	CodeTemplateParseError: {
		Category: CategoryRender,
		Message:  "Template fragment could not be parsed",
		Detail:   "The markup fragment is not valid HTML.",
		DocURL:   "https://eghact.dev/docs/errors/E061",
	},
	CodeScaffoldUnknown: {
		Category: CategoryCLI,
		Message:  "Unknown project template",
		DocURL:   "https://eghact.dev/docs/errors/E062",
	},
	CodeScaffoldExists: {
		Category: CategoryCLI,
		Message:  "File already exists",
		Detail:   "Creating the project would overwrite an existing file.",
		DocURL:   "https://eghact.dev/docs/errors/E063",
	},
}

// GetAllCodes returns all registered error codes in sorted order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a custom error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
