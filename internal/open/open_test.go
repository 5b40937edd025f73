package open

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEditorCommand(t *testing.T) {
	cases := []struct {
		editor string
		want   []string
	}{
		{"nvim", []string{"nvim", "+12", "f.md"}},
		{"/usr/bin/vim", []string{"/usr/bin/vim", "+12", "f.md"}},
		{"less", []string{"less", "+12", "f.md"}},
		{"code --wait", []string{"code", "--wait", "--goto", "f.md:12"}},
		{"hx", []string{"hx", "f.md:12"}},
		{"emacsclient -t", []string{"emacsclient", "-t", "+12", "f.md"}},
		{"gedit", []string{"gedit", "f.md"}},
		{"", []string{"less", "+12", "f.md"}},
	}
	for _, tc := range cases {
		t.Run(tc.editor, func(t *testing.T) {
			assert.Equal(t, tc.want, editorCommand(tc.editor, "f.md", 12))
		})
	}
}
