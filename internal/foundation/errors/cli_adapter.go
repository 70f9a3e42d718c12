package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Exit codes of the draftmd CLI.
const (
	ExitOK       = 0
	ExitUnknown  = 1
	ExitInvalid  = 2
	ExitNotFound = 3
	ExitConflict = 4
	ExitConfig   = 7
	ExitNetwork  = 8
	ExitStorage  = 9
	ExitInternal = 10
)

var exitCodes = map[ErrorCategory]int{
	CategoryValidation: ExitInvalid,
	CategoryNotFound:   ExitNotFound,
	CategoryConflict:   ExitConflict,
	CategoryConfig:     ExitConfig,
	CategoryNetwork:    ExitNetwork,
	CategoryStorage:    ExitStorage,
	CategoryFileSystem: ExitStorage,
	CategoryInternal:   ExitInternal,
}

// CLIErrorAdapter prints errors for the command line and picks the exit
// code.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	out     io.Writer
	exit    func(int)
}

// NewCLIErrorAdapter returns an adapter printing to stderr. A nil logger
// uses slog.Default.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{verbose: verbose, logger: logger, out: os.Stderr, exit: os.Exit}
}

// ExitCodeFor maps err to an exit code. Unclassified errors exit with 1.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return ExitOK
	}
	c, ok := AsClassified(err)
	if !ok {
		return ExitUnknown
	}
	if code, ok := exitCodes[c.Category()]; ok {
		return code
	}
	return ExitUnknown
}

// FormatError renders err for the terminal. Internal errors only show
// their details in verbose mode.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	c, ok := AsClassified(err)
	switch {
	case !ok:
		return "Error: " + err.Error()
	case a.verbose:
		return c.Error()
	case c.Category() == CategoryInternal:
		return "Internal error occurred (use -v for details)"
	default:
		return "Error: " + c.Message()
	}
}

// HandleError logs and prints err, then exits with the mapped code.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}
	c, classified := AsClassified(err)
	if a.verbose || !classified || c.IsFatal() {
		a.log(err)
	}
	_, _ = fmt.Fprintln(a.out, a.FormatError(err))
	a.exit(a.ExitCodeFor(err))
}

func (a *CLIErrorAdapter) log(err error) {
	c, ok := AsClassified(err)
	if !ok {
		a.logger.Error("Unclassified error", "error", err)
		return
	}
	attrs := make([]slog.Attr, 0, len(c.Context())+2)
	attrs = append(attrs, slog.String("category", string(c.Category())))
	for k, v := range c.Context() {
		attrs = append(attrs, slog.Any(k, v))
	}
	if c.Cause() != nil {
		attrs = append(attrs, slog.String("cause", c.Cause().Error()))
	}
	a.logger.LogAttrs(context.Background(), levelFor(c.Severity()), c.Message(), attrs...)
}

func levelFor(severity ErrorSeverity) slog.Level {
	if severity == SeverityWarning {
		return slog.LevelWarn
	}
	return slog.LevelError
}
