package errors

// ErrorCode represents a unique error identifier
type ErrorCode int

// Error code ranges allocation:
// 10000-10999: System & Common errors
// 11000-11999: Language & Request errors
// 12000-12999: Sandbox & Toolchain errors
// 13000-13999: Judging errors

const (
	// ========== System & Common Errors (10000-10999) ==========

	// Success
	Success ErrorCode = 10000

	// Generic errors (10000-10099)
	InternalServerError ErrorCode = 10001
	InvalidParams       ErrorCode = 10002
	NotFound            ErrorCode = 10003
	Timeout             ErrorCode = 10004

	// Validation errors (10300-10399)
	ValidationFailed   ErrorCode = 10300
	RequiredFieldEmpty ErrorCode = 10301

	// ========== Language & Request Errors (11000-11999) ==========

	LanguageNotSupported ErrorCode = 11000
	EmptySourceCode      ErrorCode = 11001
	CodeTooLarge         ErrorCode = 11002

	// ========== Sandbox & Toolchain Errors (12000-12999) ==========

	ToolchainUnavailable ErrorCode = 12000
	SandboxFailure       ErrorCode = 12001
	WorkspaceFailure     ErrorCode = 12002
	IsolationFailure     ErrorCode = 12003

	// ========== Judging Errors (13000-13999) ==========

	JudgeSystemError ErrorCode = 13000
	JudgeQueueFull   ErrorCode = 13001
)

// errorMessages maps error codes to their default English messages
var errorMessages = map[ErrorCode]string{
	Success:             "Success",
	InternalServerError: "Internal server error",
	InvalidParams:       "Invalid parameters",
	NotFound:            "Resource not found",
	Timeout:             "Request timeout",

	ValidationFailed:   "Validation failed",
	RequiredFieldEmpty: "Required field is empty",

	LanguageNotSupported: "Language not supported",
	EmptySourceCode:      "Source code is empty",
	CodeTooLarge:         "Source code exceeds size limit",

	ToolchainUnavailable: "Required toolchain is not available",
	SandboxFailure:       "Sandbox execution failed",
	WorkspaceFailure:     "Workspace operation failed",
	IsolationFailure:     "Isolation setup failed",

	JudgeSystemError: "Judge system error",
	JudgeQueueFull:   "Judge queue is full",
}

// Message returns the default message for the error code
func (c ErrorCode) Message() string {
	if msg, ok := errorMessages[c]; ok {
		return msg
	}
	return "Unknown error"
}
