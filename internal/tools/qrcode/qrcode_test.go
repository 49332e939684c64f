package qrcode

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcp-toolbox-go/internal/tools"
)

func TestTool_Call(t *testing.T) {
	result, err := New("").Call(context.Background(), json.RawMessage(`{"text":"https://go.dev/?a=1&b=2"}`))
	require.NoError(t, err)

	out, ok := result.Structured.(Output)
	require.True(t, ok)
	assert.Equal(t, DefaultSize, out.Size)
	assert.Equal(t, "https://api.qrserver.com/v1/create-qr-code/?data=https%3A%2F%2Fgo.dev%2F%3Fa%3D1%26b%3D2&size=200x200", out.URL)
	assert.Equal(t, "QR code: "+out.URL, result.Text)
}

func TestTool_CallErrors(t *testing.T) {
	tests := map[string]string{
		"missing text":  `{}`,
		"bad size":      `{"text":"hi","size":"large"}`,
		"size too big":  `{"text":"hi","size":"99999x2"}`,
		"text too long": `{"text":"` + strings.Repeat("x", maxTextLen+1) + `"}`,
		"unknown field": `{"text":"hi","color":"red"}`,
	}

	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := New("").Call(context.Background(), json.RawMessage(args))
			assert.Equal(t, tools.CodeInvalidArguments, tools.CodeOf(err))
		})
	}
}

func TestTool_CustomSize(t *testing.T) {
	result, err := New("http://qr.local/gen").Call(context.Background(), json.RawMessage(`{"text":"x","size":"512x512"}`))
	require.NoError(t, err)
	assert.Equal(t, "http://qr.local/gen?data=x&size=512x512", result.Structured.(Output).URL)
}
