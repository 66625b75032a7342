package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_IntrinsicTags(t *testing.T) {
	data := []byte(`
Resources:
  Fn:
    Properties:
      Name: !Ref Stage
      Path: !Sub "/items/${Stage}"
      Arn: !GetAtt Table.Arn
      Joined: !Join ["-", [a, !Ref Stage]]
`)
	tree, err := Decode(data)
	require.NoError(t, err)

	props := asMap(asMap(asMap(tree["Resources"])["Fn"])["Properties"])
	assert.Equal(t, map[string]any{"Ref": "Stage"}, props["Name"])
	assert.Equal(t, map[string]any{"Fn::Sub": "/items/${Stage}"}, props["Path"])
	assert.Equal(t, map[string]any{"Fn::GetAtt": "Table.Arn"}, props["Arn"])
	assert.Equal(t, map[string]any{
		"Fn::Join": []any{"-", []any{"a", map[string]any{"Ref": "Stage"}}},
	}, props["Joined"])
}

func TestDecode_JSON(t *testing.T) {
	tree, err := Decode([]byte(`{"Resources": {"A": {"Type": "AWS::Serverless::Function"}}, "Count": 3}`))
	require.NoError(t, err)
	assert.Equal(t, 3, tree["Count"])
	assert.Contains(t, asMap(tree["Resources"]), "A")
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode([]byte(""))
	assert.Error(t, err, "template vazio deve falhar")

	_, err = Decode([]byte("- a\n- b\n"))
	assert.Error(t, err, "raiz em lista deve falhar")

	_, err = Decode([]byte("Resources: [unclosed"))
	assert.Error(t, err, "YAML malformado deve falhar")
}
