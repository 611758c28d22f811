package ai

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"CleanObject", `{"a":1}`, `{"a":1}`},
		{"CleanArray", `[1,2,3]`, `[1,2,3]`},
		{"JSONFence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"BareFence", "```\n[{\"a\":1}]\n```", `[{"a":1}]`},
		{"GluedFence", "```json{\"a\":1}```", `{"a":1}`},
		{"LeadingProse", `Here is your recipe: {"a":1}`, `{"a":1}`},
		{"TrailingProse", "{\"a\":1}\nEnjoy your meal!", `{"a":1}`},
		{"NoJSON", "sorry, I cannot help", "sorry, I cannot help"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanJSON(tt.raw))
		})
	}
}

func TestCleanJSON_Idempotent(t *testing.T) {
	inputs := []string{
		`{"title":"Soup","ingredients":[{"name":"leek","quantity":2,"unit":""}]}`,
		"```json\n{\"a\":[1,{\"b\":\"}\"}]}\n```",
		`prose {"a":1} more prose`,
	}
	for _, in := range inputs {
		once := CleanJSON(in)
		assert.Equal(t, once, CleanJSON(once), in)
	}
}

func TestExtractBalanced(t *testing.T) {
	t.Run("FirstObject", func(t *testing.T) {
		got, ok := ExtractBalanced(`x {"a":{"b":[1,2]}} y {"c":2}`, '{')
		require.True(t, ok)
		assert.Equal(t, `{"a":{"b":[1,2]}}`, got)
	})

	t.Run("BracketsInsideStrings", func(t *testing.T) {
		got, ok := ExtractBalanced(`{"s":"}{ [\"]"}`, '{')
		require.True(t, ok)
		assert.Equal(t, `{"s":"}{ [\"]"}`, got)
	})

	t.Run("ArrayOnly", func(t *testing.T) {
		got, ok := ExtractBalanced(`{"items": [1, 2]}`, '[')
		require.True(t, ok)
		assert.Equal(t, `[1, 2]`, got)
	})

	t.Run("Unbalanced", func(t *testing.T) {
		_, ok := ExtractBalanced(`{"a": [1, 2}`, '{')
		assert.False(t, ok)
	})
}

func TestDecodeObject(t *testing.T) {
	t.Run("RetriesOnBalancedSubstring", func(t *testing.T) {
		obj, err := DecodeObject(`Sure! {"a": {"b": [1,2]}} and also {"c": 2}`)
		require.NoError(t, err)
		assert.Contains(t, obj, "a")
		assert.NotContains(t, obj, "c")
	})

	t.Run("EmptyAnswer", func(t *testing.T) {
		_, err := DecodeObject("```json\n```")
		assert.True(t, errors.Is(err, ErrEmptyAnswer))
	})

	t.Run("NotJSON", func(t *testing.T) {
		_, err := DecodeObject("I would love to help with that")
		assert.True(t, errors.Is(err, ErrNotJSON))
	})

	t.Run("ArrayIsAShapeError", func(t *testing.T) {
		_, err := DecodeObject(`[1,2]`)
		var shape *ShapeError
		assert.True(t, errors.As(err, &shape))
	})
}

func TestDecodeArray(t *testing.T) {
	t.Run("BareArray", func(t *testing.T) {
		arr, err := DecodeArray(`[{"a":1},{"a":2}]`)
		require.NoError(t, err)
		assert.Len(t, arr, 2)
	})

	t.Run("WrappedArray", func(t *testing.T) {
		arr, err := DecodeArray("```json\n{\"items\": [{\"a\":1}]}\n```")
		require.NoError(t, err)
		assert.Len(t, arr, 1)
	})
}
