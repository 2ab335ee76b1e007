package core

import (
	"fmt"
	"runtime"
	"strings"
)

// Caller identifies the stack frame that invoked a mocked member.
type Caller struct {
	Function string
	File     string
	Line     int
}

// String renders the frame as "function (file:line)".
func (c Caller) String() string {
	if c.Function == "" {
		return "<unknown caller>"
	}

	return fmt.Sprintf("%s (%s:%d)", c.Function, c.File, c.Line)
}

// CallerAt resolves the frame skip levels above its own caller, as runtime.Caller does.
func CallerAt(skip int) Caller {
	pc, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return Caller{}
	}

	caller := Caller{File: file, Line: line}

	if fn := runtime.FuncForPC(pc); fn != nil {
		caller.Function = fn.Name()
	}

	return caller
}

// DeclaredIn returns a recording-context predicate accepting callers whose function is
// blockFunction or a closure nested in it.
func DeclaredIn(blockFunction string) func(Caller) bool {
	return func(caller Caller) bool {
		if blockFunction == "" {
			return false
		}

		return caller.Function == blockFunction || strings.HasPrefix(caller.Function, blockFunction+".")
	}
}

// FunctionName returns the runtime name of the function containing pc.
func FunctionName(pc uintptr) string {
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return ""
	}

	return fn.Name()
}
