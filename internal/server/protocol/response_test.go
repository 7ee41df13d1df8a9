package protocol

import (
	"testing"

	"github.com/dmitrijs2005/librarian/internal/server/library"
	"github.com/stretchr/testify/assert"
)

func TestResponse_String(t *testing.T) {
	assert.Equal(t, "success", Success().String())
	assert.Equal(t, "success 7", SuccessID(7).String())
	assert.Equal(t, "failure (unknown command)", Failure(ErrUnknownCommand).String())
	assert.Equal(t, "failure (max users reached)", Failure(library.ErrMaxUsers).String())
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		line string
		want Response
	}{
		{"success", Response{OK: true}},
		{"success 12", Response{OK: true, ID: 12}},
		{"failure (book not available)", Response{Reason: "book not available"}},
		{"  failure (user not found)\n", Response{Reason: "user not found"}},
		{"garbage", Response{Reason: "garbage"}},
		{"success abc", Response{Reason: "success abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got := ParseResponse(tt.line)
			assert.Equal(t, tt.want, got)
		})
	}
}
