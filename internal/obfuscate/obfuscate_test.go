package obfuscate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhones(t *testing.T) {
	cases := map[string]string{
		"ligue +55 21 97092-4781 hoje": "ligue +55 21 🫣-4781 hoje",
		"+55 (11) 3456-7890":           "+55 (11) 🫣-7890",
		"+5511987654321":               "+5511987654321",
		"+1 415 555-1234":              "+1 415 555-1234",
		"sem telefone":                 "sem telefone",
	}
	for in, want := range cases {
		got := Phones(in)
		assert.Equal(t, want, got, in)
		assert.Equal(t, got, Phones(got), "masking twice changes nothing")
	}
	assert.Equal(t, 2, Count("+55 21 97092-4781 e +55 (11) 3456-7890"))
}
