package slug

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMake(t *testing.T) {
	cases := map[string]string{
		"Hello World":           "hello-world",
		"  --Already--Slugged ": "already-slugged",
		"Crème Brûlée":          "creme-brulee",
		"blog/post.html":        "blog-post-html",
		"about_us":              "about-us",
		"2024 Recap!!":          "2024-recap",
		"":                      "",
		"日本語":                   "",
	}
	for in, want := range cases {
		require.Equal(t, want, Make(in), "input %q", in)
	}
}
