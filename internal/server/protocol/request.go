// Package protocol implements the line-oriented request protocol of the
// library service: parsing a raw request into a command and its arguments,
// routing it to the library tables and rendering the one-line response.
package protocol

import "strings"

// MaxTokenLen is the longest command or argument kept from a request.
// Longer tokens are cut, not rejected.
const MaxTokenLen = 49

// Command names, matched case-sensitively.
const (
	CmdRegister = "Register"
	CmdLend     = "Lend"
	CmdReturn   = "Return"
	CmdAddBook  = "AddBook"
)

// Known reports whether cmd is one of the supported commands.
func Known(cmd string) bool {
	switch cmd {
	case CmdRegister, CmdLend, CmdReturn, CmdAddBook:
		return true
	}
	return false
}

// Request is a parsed request line. Missing tokens are empty strings.
type Request struct {
	Command string
	Arg1    string
	Arg2    string
}

// ParseRequest splits raw on whitespace and keeps the first three tokens,
// each truncated to MaxTokenLen bytes.
func ParseRequest(raw string) Request {
	return ParseRequestN(raw, MaxTokenLen)
}

// ParseRequestN is ParseRequest with an explicit token limit.
func ParseRequestN(raw string, maxLen int) Request {
	var tokens [3]string

	fields := strings.Fields(raw)
	for i := 0; i < len(fields) && i < len(tokens); i++ {
		tokens[i] = truncate(fields[i], maxLen)
	}

	return Request{Command: tokens[0], Arg1: tokens[1], Arg2: tokens[2]}
}

func truncate(s string, n int) string {
	if n > 0 && len(s) > n {
		return s[:n]
	}
	return s
}
