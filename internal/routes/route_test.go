package routes

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutputPath(t *testing.T) {
	root := filepath.Join("out", "dist")
	cases := map[string]string{
		"/":          filepath.Join(root, "index.html"),
		"/about":     filepath.Join(root, "about.html"),
		"/blog/post": filepath.Join(root, "blog", "post.html"),
	}
	for route, want := range cases {
		assert.Equal(t, want, OutputPath(root, route), route)
	}
}

func TestScriptPath(t *testing.T) {
	assert.Equal(t, "/index.js", ScriptPath("/"))
	assert.Equal(t, "/blog/post.js", ScriptPath("/blog/post"))
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"":        "/",
		"/":       "/",
		"about":   "/about",
		"/about/": "/about",
		"//":      "/",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), in)
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate("/"))
	assert.NoError(t, Validate("/blog/post"))
	for _, bad := range []string{"", "about", "/a?b", "/a#b", "/a/../b", "/a/"} {
		err := Validate(bad)
		assert.True(t, errors.Is(err, ErrInvalidRoute), bad)
	}
}
