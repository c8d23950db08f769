package device

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"semivibe.dev/protocol"
)

func assertErrorCode(t *testing.T, resp string, wantCode uint8) {
	t.Helper()
	code, ok := protocol.IsErrorResponse(resp)
	assert.True(t, ok, "expected error frame, got %q", resp)
	assert.Equal(t, wantCode, code)
}
