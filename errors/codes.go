// Package errors provides the foundational error handling system for the
// ontora-ai pipeline platform. It extends Go's standard error handling with
// structured error codes, context preservation, and JSON-friendly
// serialization for run reports.
package errors

// ErrorCode represents a specific error condition in the pipeline platform.
// Error codes are string-based for debuggability and natural JSON serialization.
type ErrorCode string

const (
	// Resource errors.

	// CodeNotFound indicates a requested resource does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeAlreadyExists indicates a resource already exists and cannot be created again.
	CodeAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// Validation errors.

	// CodeInvalidInput indicates the provided input is invalid or malformed.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeInvalidConfig indicates a configuration error prevents the operation.
	CodeInvalidConfig ErrorCode = "INVALID_CONFIGURATION"

	// Execution errors.

	// CodeExecutionFailed indicates an external tool invocation failed.
	CodeExecutionFailed ErrorCode = "EXECUTION_FAILED"

	// CodeToolMissing indicates an external tool binary could not be found.
	CodeToolMissing ErrorCode = "TOOL_MISSING"

	// CodeBuildFailed indicates a build track failed.
	CodeBuildFailed ErrorCode = "BUILD_FAILED"

	// CodePublishFailed indicates release publication failed.
	CodePublishFailed ErrorCode = "PUBLISH_FAILED"

	// CodeFindings indicates a scan completed and reported blocking findings.
	CodeFindings ErrorCode = "FINDINGS_REPORTED"

	// Infrastructure errors.

	// CodeNetwork indicates a network operation failed.
	CodeNetwork ErrorCode = "NETWORK_ERROR"

	// CodeTimeout indicates an operation exceeded its time limit.
	CodeTimeout ErrorCode = "TIMEOUT"

	// CodeStorage indicates an artifact store operation failed.
	CodeStorage ErrorCode = "STORAGE_ERROR"

	// System errors.

	// CodeInternal indicates an internal system error occurred.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeUnknown indicates an unknown or unclassified error occurred.
	CodeUnknown ErrorCode = "UNKNOWN"
)
