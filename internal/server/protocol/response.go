package protocol

import (
	"errors"
	"strconv"
	"strings"
)

// Failure reasons that do not come from the library tables.
var (
	ErrUnknownCommand  = errors.New("unknown command")
	ErrMissingArgument = errors.New("missing argument")
)

// Response is the outcome of one request.
type Response struct {
	OK     bool
	ID     int
	Reason string
}

// Success builds a plain success response.
func Success() Response {
	return Response{OK: true}
}

// SuccessID builds a success response carrying an id.
func SuccessID(id int) Response {
	return Response{OK: true, ID: id}
}

// Failure builds a failure response whose reason is err's text.
func Failure(err error) Response {
	return Response{Reason: err.Error()}
}

// String renders the response in wire form: "success", "success <id>" or
// "failure (<reason>)".
func (r Response) String() string {
	if !r.OK {
		return "failure (" + r.Reason + ")"
	}
	if r.ID > 0 {
		return "success " + strconv.Itoa(r.ID)
	}
	return "success"
}

// Outcome is a short label used for logs and metrics.
func (r Response) Outcome() string {
	if r.OK {
		return "success"
	}
	return "failure"
}

// ParseResponse is the inverse of Response.String. Lines that are neither a
// success nor a well-formed failure come back as a failure carrying the raw
// text.
func ParseResponse(line string) Response {
	line = strings.TrimSpace(line)

	if line == "success" {
		return Success()
	}
	if rest, ok := strings.CutPrefix(line, "success "); ok {
		id, err := strconv.Atoi(rest)
		if err == nil {
			return SuccessID(id)
		}
	}
	if rest, ok := strings.CutPrefix(line, "failure ("); ok {
		if reason, ok := strings.CutSuffix(rest, ")"); ok {
			return Response{Reason: reason}
		}
	}

	return Response{Reason: line}
}
