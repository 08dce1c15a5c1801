package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/carvelab/satchel"
	"github.com/carvelab/satchel/internal/schema"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Data-level failure (name not found, schema violation, etc.)
	ExitCommandError = 2 // Command error (bad config, unreadable database, etc.)
)

// Error codes carried in JSON responses and text error lines.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeConfig      = "E002" // Config file error
	ErrCodeDatabase    = "E003" // Database cannot be opened
	ErrCodeNotFound    = "E004" // Name not found
	ErrCodeIndexRange  = "E005" // List index out of range
	ErrCodeNotAList    = "E006" // Indexed access to a scalar
	ErrCodeUnsupported = "E007" // Value cannot be stored
	ErrCodeCorrupt     = "E008" // Stored text is not valid JSON
	ErrCodeEmptyName   = "E009" // Empty name on a write
	ErrCodeParse       = "E010" // Import document cannot be parsed
	ErrCodeSchema      = "E011" // Schema validation rejected the document
	ErrCodeWriteFailed = "E012" // Output file write error
)

// ExitError carries a specific exit code out of a command. Commands report
// the failure through their OutputFormatter first and return an ExitError
// so Execute can translate it without printing twice.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates an ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error. Errors that are not
// ExitErrors map to ExitFailure.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// errorCode maps the library's sentinel errors to response codes.
func errorCode(err error) string {
	switch {
	case errors.Is(err, satchel.ErrNotFound):
		return ErrCodeNotFound
	case errors.Is(err, satchel.ErrIndexOutOfRange):
		return ErrCodeIndexRange
	case errors.Is(err, satchel.ErrNotAList):
		return ErrCodeNotAList
	case errors.Is(err, satchel.ErrUnsupportedType):
		return ErrCodeUnsupported
	case errors.Is(err, satchel.ErrCorruptData):
		return ErrCodeCorrupt
	case errors.Is(err, satchel.ErrEmptyName):
		return ErrCodeEmptyName
	case errors.Is(err, satchel.ErrNameCollision):
		return ErrCodeDatabase
	case errors.Is(err, schema.ErrSchemaViolation):
		return ErrCodeSchema
	default:
		return ErrCodeGeneric
	}
}

// exitCodeFor classifies an error: data-level failures (the operation ran,
// the data said no) exit 1, environment problems exit 2.
func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, satchel.ErrNotFound),
		errors.Is(err, satchel.ErrIndexOutOfRange),
		errors.Is(err, satchel.ErrNotAList),
		errors.Is(err, satchel.ErrUnsupportedType),
		errors.Is(err, satchel.ErrCorruptData),
		errors.Is(err, satchel.ErrEmptyName),
		errors.Is(err, schema.ErrSchemaViolation):
		return ExitFailure
	default:
		return ExitCommandError
	}
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E002", ...
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// VerboseLog outputs a message only if verbose mode is enabled. Logs go to
// ErrWriter when set so they never corrupt JSON output on Writer.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

// reportError prints err through the formatter and converts it into an
// ExitError for op, preserving the original error for errors.Is.
func reportError(f *OutputFormatter, op string, err error) error {
	_ = f.Error(errorCode(err), err.Error(), nil)
	return WrapExitError(exitCodeFor(err), op, err)
}
