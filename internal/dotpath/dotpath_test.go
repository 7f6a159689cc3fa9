package dotpath

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func fixture() map[string]any {
	return map[string]any{
		"site": map[string]any{
			"name":  "Example",
			"port":  8000,
			"ratio": 0.5,
		},
		"posts": []any{
			map[string]any{"title": "first"},
			map[string]any{"title": "second", "tags": []any{"a", "b"}},
		},
		"flag": true,
	}
}

func TestLookup(t *testing.T) {
	root := fixture()

	v, ok := Lookup(root, "site.name")
	require.True(t, ok)
	require.Equal(t, "Example", v)

	v, ok = Lookup(root, "posts.1.tags.0")
	require.True(t, ok)
	require.Equal(t, "a", v)

	_, ok = Lookup(root, "posts.9.title")
	require.False(t, ok)
	_, ok = Lookup(root, "posts.x")
	require.False(t, ok)
	_, ok = Lookup(root, "site.name.deeper")
	require.False(t, ok)
	_, ok = Lookup(root, "")
	require.False(t, ok)
}

func TestLookupIsBounded(t *testing.T) {
	key := strings.Repeat("a.", MaxDepth) + "a"
	_, ok := Lookup(fixture(), key)
	require.False(t, ok)
}

func TestTypedAccessors(t *testing.T) {
	root := fixture()
	require.Equal(t, "Example", String(root, "site.name", "x"))
	require.Equal(t, "x", String(root, "site.port", "x"))
	require.Equal(t, 8000, Int(root, "site.port", 1))
	require.Equal(t, 0, Int(root, "site.ratio", 1))
	require.Equal(t, 7, Int(root, "site.missing", 7))
	require.True(t, Bool(root, "flag", false))
	require.False(t, Bool(root, "site.name", false))

	m, ok := Map(root, "site")
	require.True(t, ok)
	require.Len(t, m, 3)
	_, ok = Map(root, "posts")
	require.False(t, ok)

	require.Equal(t, "def", Get(root, "nope", "def"))
}

func TestLookupYAMLStyleMaps(t *testing.T) {
	root := map[any]any{"a": map[any]any{"b": 1}}
	require.Equal(t, 1, Int(root, "a.b", 0))
}

func TestCloneIsDeep(t *testing.T) {
	root := fixture()
	cp := CloneMap(root)

	cp["site"].(map[string]any)["name"] = "Changed"
	cp["posts"].([]any)[1].(map[string]any)["tags"].([]any)[0] = "z"

	require.Equal(t, "Example", String(root, "site.name", ""))
	require.Equal(t, "a", String(root, "posts.1.tags.0", ""))
	require.Equal(t, map[string]any{}, CloneMap(nil))
}
