package chunk_test

import (
	"strings"
	"testing"

	"github.com/mna/loxvm/lang/chunk"
	"github.com/stretchr/testify/require"
)

type fakeValue string

func (f fakeValue) String() string { return string(f) }
func (fakeValue) Type() string     { return "fake" }

func TestWrite(t *testing.T) {
	c := chunk.New()
	c.Write(0x01, 10)
	c.Write(0x02, 10)
	c.Write(0x03, 11)

	require.Equal(t, []byte{0x01, 0x02, 0x03}, c.Code)
	require.Equal(t, []int{10, 10, 11}, c.Lines)
}

func TestAddConstant(t *testing.T) {
	c := chunk.New()
	idx := c.AddConstant(fakeValue("a"))
	require.Equal(t, 0, idx)
	idx = c.AddConstant(fakeValue("b"))
	require.Equal(t, 1, idx)
	require.Equal(t, []chunk.Value{fakeValue("a"), fakeValue("b")}, c.Constants)
}

func TestAddConstantOverflow(t *testing.T) {
	c := chunk.New()
	for i := 0; i < chunk.MaxConstants; i++ {
		require.NotEqual(t, -1, c.AddConstant(fakeValue("x")))
	}
	require.Equal(t, -1, c.AddConstant(fakeValue("overflow")))
}

func TestDisassemble(t *testing.T) {
	c := chunk.New()
	idx := c.AddConstant(fakeValue("answer"))
	c.Write(byte(chunk.OpConstant), 1)
	c.Write(byte(idx), 1)
	c.Write(byte(chunk.OpReturn), 1)

	out := c.Disassemble("test")
	require.True(t, strings.Contains(out, "== test =="))
	require.True(t, strings.Contains(out, "OP_CONSTANT"))
	require.True(t, strings.Contains(out, "'answer'"))
	require.True(t, strings.Contains(out, "OP_RETURN"))
}
