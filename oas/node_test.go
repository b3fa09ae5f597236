package oas

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChild(t *testing.T) {
	t.Run("creates missing mapping", func(t *testing.T) {
		n := Node{}
		child := Child(n, "info")
		child["title"] = "x"

		assert.Equal(t, Node{"info": Node{"title": "x"}}, n)
	})

	t.Run("returns existing mapping", func(t *testing.T) {
		n := Node{"info": Node{"title": "x"}}
		assert.Equal(t, "x", Child(n, "info")["title"])
	})

	t.Run("adopts plain map", func(t *testing.T) {
		n := Node{"info": map[string]any{"title": "x"}}
		Child(n, "info")["version"] = "1"

		assert.Equal(t, Node{"title": "x", "version": "1"}, n["info"])
	})

	t.Run("replaces scalar", func(t *testing.T) {
		n := Node{"info": "broken"}
		assert.Equal(t, Node{}, Child(n, "info"))
	})
}

func TestItemAt(t *testing.T) {
	t.Run("appends at length", func(t *testing.T) {
		n := Node{}
		for i := range 3 {
			item, err := ItemAt(n, "servers", i)
			require.NoError(t, err)
			item["url"] = i
		}

		list := n["servers"].([]any)
		require.Len(t, list, 3)
		assert.Equal(t, Node{"url": 1}, list[1])
	})

	t.Run("returns existing item", func(t *testing.T) {
		n := Node{}
		first, err := ItemAt(n, "servers", 0)
		require.NoError(t, err)
		first["url"] = "a"

		again, err := ItemAt(n, "servers", 0)
		require.NoError(t, err)
		assert.Equal(t, "a", again["url"])
		assert.Len(t, n["servers"], 1)
	})

	t.Run("rejects index past length", func(t *testing.T) {
		n := Node{}
		_, err := ItemAt(n, "servers", 1)
		assert.True(t, errors.Is(err, ErrIndexOutOfRange))

		_, err = ItemAt(n, "servers", -1)
		assert.True(t, errors.Is(err, ErrIndexOutOfRange))
	})
}
