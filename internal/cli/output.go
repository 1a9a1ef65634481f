package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jottty/jottty/internal/store"
	"github.com/jottty/jottty/internal/transact"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Storage or apply failure (collision, corrupt row, I/O)
	ExitCommandError = 2 // Invalid input (bad config, malformed datoms, bad date)
)

// Error codes reported in CLIError.Code.
const (
	ErrCodeGeneric  = "E001" // Generic/unknown error
	ErrCodeConfig   = "E002" // Config could not be loaded
	ErrCodeStorage  = "E003" // Backend could not be opened or written
	ErrCodeParse    = "E004" // Malformed datom tuple or batch
	ErrCodeArgument = "E005" // Invalid command argument
	ErrCodeConflict = "E006" // Address collision between entity ids
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
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

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
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
	Status string      `json:"status"`          // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`  // success payload
	Error  *CLIError   `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string      `json:"code"`              // "E001", "E002", etc.
	Message string      `json:"message"`           // human-readable message
	Details interface{} `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data interface{}) error {
	return f.SuccessText(data, fmt.Sprint(data))
}

// SuccessText outputs data as JSON, or the pre-rendered text otherwise.
func (f *OutputFormatter) SuccessText(data interface{}, text string) error {
	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetEscapeHTML(false)
		return enc.Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	// Human-readable text output
	fmt.Fprintln(f.Writer, strings.TrimSuffix(text, "\n"))
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
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

	// Human-readable error
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// VerboseLog outputs a message only if verbose mode is enabled.
// It writes to GetErrWriter so JSON on Writer stays parseable.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// ParseDetails locates a malformed tuple in a failed batch.
// Datom is -1 when the tuple was parsed on its own.
type ParseDetails struct {
	Datom int    `json:"datom"`
	Field string `json:"field"`
}

func (d ParseDetails) String() string {
	return fmt.Sprintf("datom %d, field %s", d.Datom, d.Field)
}

// Fail reports err in the configured format and returns it as an
// ExitError carrying the matching exit code.
func (f *OutputFormatter) Fail(message string, err error) error {
	code, exit := classify(err)
	var details interface{}
	var pe *transact.ParseError
	if errors.As(err, &pe) {
		details = ParseDetails{Datom: pe.Index, Field: string(pe.Field)}
	}
	if outErr := f.Error(code, fmt.Sprintf("%s: %v", message, err), details); outErr != nil {
		return outErr
	}
	return WrapExitError(exit, message, err)
}

// classify maps an error onto an error code and an exit code.
func classify(err error) (string, int) {
	var exitErr *ExitError
	switch {
	case transact.IsParseError(err):
		return ErrCodeParse, ExitCommandError
	case store.IsCollision(err):
		return ErrCodeConflict, ExitFailure
	case errors.As(err, &exitErr):
		return ErrCodeGeneric, exitErr.Code
	default:
		return ErrCodeStorage, ExitFailure
	}
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
