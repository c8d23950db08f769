package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRenderRoundTrip(t *testing.T) {
	cases := []string{
		"000000", "1FFFFF", "210A00", "330180", "4FE101", "ABCDEF", "abcdef",
	}
	for _, s := range cases {
		f, err := Parse(s)
		require.NoError(t, err, s)
		got := f.Render()
		assert.Equal(t, toUpper(s), got, "render(parse(%s))", s)
	}
}

func toUpper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'f' {
			b[i] = c - ('a' - 'A')
		}
	}
	return string(b)
}

func TestParseRejectsMalformed(t *testing.T) {
	cases := []string{
		"", "12345", "1234567", "exit", "GGGGGG", "21000x", "1.0000",
	}
	for _, s := range cases {
		_, err := Parse(s)
		assert.Error(t, err, s)
	}
}

func TestRenderFrameIsSixUppercaseHex(t *testing.T) {
	f := Frame{Base: 0x3, Offset: 0x01, RW: Write, Data: 0x80}
	assert.Equal(t, "310180", f.Render())
}

func TestIsErrorResponse(t *testing.T) {
	for code := uint8(ErrForbidden); code <= ErrGeneral; code++ {
		s, err := RenderError(code)
		require.NoError(t, err)
		got, ok := IsErrorResponse(s)
		assert.True(t, ok)
		assert.Equal(t, code, got)
	}
	_, ok := IsErrorResponse("210A00")
	assert.False(t, ok, "data frame must not be mistaken for an error frame")
	_, err := RenderError(0)
	assert.Error(t, err)
	_, err = RenderError(4)
	assert.Error(t, err)
}

func TestIsExit(t *testing.T) {
	assert.True(t, IsExit("exit"))
	assert.False(t, IsExit("Exit"))
	assert.False(t, IsExit("EXIT"))
	assert.False(t, IsExit("210A00"))
}

func TestBitmask(t *testing.T) {
	got := Bitmask(Bit{true, 0}, Bit{false, 2}, Bit{true, 4}, Bit{false, 6})
	assert.Equal(t, uint8(0x11), got)

	got = Bitmask(Bit{true, 0}, Bit{true, 2}, Bit{true, 4}, Bit{true, 6})
	assert.Equal(t, uint8(0x55), got)

	assert.Equal(t, uint8(0), Bitmask())
}
