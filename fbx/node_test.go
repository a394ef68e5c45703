package fbx

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNode_Accessors(t *testing.T) {
	n := NewNode("Model", int64(1), "Model::cube", "Mesh").AddChild(
		NewNode("Version", 232),
		NewNode("Properties70"),
	)

	assert.Equal(t, "Model::cube", n.PropString(1))
	assert.Equal(t, int64(1), n.PropValue(0))
	assert.Nil(t, n.Prop(3))
	assert.Equal(t, "", n.PropString(0))

	assert.Equal(t, int32(232), n.FindChild("Version").PropValue(0))
	assert.Nil(t, n.FindChild("Missing"))
	assert.Nil(t, n.FindChild("Missing").FindChild("x"))
	assert.Nil(t, n.FindChild("Missing").GetChildren())
	assert.Len(t, n.GetChildren(), 2)
}

func TestNode_EmitRejectsInvalidValue(t *testing.T) {
	n := NewNode("A", 1, map[string]int{})
	require.Len(t, n.Properties, 2)

	var buf bytes.Buffer
	err := Write(&buf, []*Node{n}, nil)
	require.ErrorIs(t, err, ErrContractViolation)
	assert.Contains(t, err.Error(), "property 1")
}

func TestNode_Emit(t *testing.T) {
	root := NewNode("Root", "r").AddChild(
		NewNode("A", 1),
		NewNode("B").AddChild(NewNode("C", 2.5)),
	)
	var buf bytes.Buffer
	e := NewASCIIEmitter(&buf)
	require.NoError(t, e.StartDocument(7400))
	require.NoError(t, root.Emit(e))
	require.NoError(t, e.EndDocument())

	expected := header7400 +
		"Root: \"r\" {\n" +
		"\tA: 1\n" +
		"\tB: {\n" +
		"\t\tC: 2.5\n" +
		"\t}\n" +
		"}\n"
	assert.Equal(t, expected, buf.String())
}
