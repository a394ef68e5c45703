package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/binzume/fbxwriter/fbx"
	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

const nodesYAML = `
- name: Creator
  props: ["モデル"]
- name: Model
  props: [{L: 1}, "Model::cube", "Mesh"]
  children:
    - name: Version
      props: [232]
`

func TestDefaultOutputFile(t *testing.T) {
	assert.Equal(t, "a/model.fbx", defaultOutputFile("a/model.glb"))
	assert.Equal(t, "nodes.fbx", defaultOutputFile("nodes.yaml"))
}

func TestConvertYAML(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "nodes.yaml")
	require.NoError(t, os.WriteFile(input, []byte(nodesYAML), 0644))

	output := filepath.Join(dir, "out.fbx")
	require.NoError(t, convert(input, output, &config{}, log.NewNopLogger()))
	data, err := os.ReadFile(output)
	require.NoError(t, err)
	expected := "; FBX 7.4.0 project file\n" +
		"Creator: \"モデル\"\n" +
		"Model: 1, \"Model::cube\", \"Mesh\" {\n" +
		"\tVersion: 232\n" +
		"}\n"
	assert.Equal(t, expected, string(data))
}

func TestConvertYAML_ShiftJIS(t *testing.T) {
	dir := t.TempDir()
	sjis, _, err := transform.Bytes(japanese.ShiftJIS.NewEncoder(), []byte(nodesYAML))
	require.NoError(t, err)
	input := filepath.Join(dir, "nodes.yaml")
	require.NoError(t, os.WriteFile(input, sjis, 0644))

	output := filepath.Join(dir, "out.fbx")
	conf := &config{sjis: true, format: "binary", version: 7500}
	require.NoError(t, convert(input, output, conf, log.NewNopLogger()))
	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Kaydara FBX Binary"))
	assert.Contains(t, string(data), "モデル")
}

func TestConvert_Errors(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "out.fbx")

	assert.Error(t, convert(filepath.Join(dir, "in.obj"), output, &config{}, log.NewNopLogger()))
	assert.Error(t, convert(filepath.Join(dir, "missing.yaml"), output, &config{}, log.NewNopLogger()))

	input := filepath.Join(dir, "nodes.yaml")
	require.NoError(t, os.WriteFile(input, []byte(nodesYAML), 0644))
	assert.Error(t, convert(input, output, &config{format: "json"}, log.NewNopLogger()))
	assert.Error(t, convert(input, output, &config{version: 6100}, log.NewNopLogger()))

	sjis, _, err := transform.Bytes(japanese.ShiftJIS.NewEncoder(), []byte(nodesYAML))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(input, sjis, 0644))
	assert.ErrorIs(t, convert(input, output, &config{}, log.NewNopLogger()), fbx.ErrTextEncoding)
}
