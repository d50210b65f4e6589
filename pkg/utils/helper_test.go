package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseInt(t *testing.T) {
	assert.Equal(t, 10, ParseInt("", 10))
	assert.Equal(t, 10, ParseInt("abc", 10))
	assert.Equal(t, 1, ParseInt("-3", 1))
	assert.Equal(t, 7, ParseInt("7", 1))
}

func TestOptionalString(t *testing.T) {
	blank := "   "
	value := "  Main St  "

	assert.Nil(t, OptionalString(nil))
	assert.Nil(t, OptionalString(&blank))
	if got := OptionalString(&value); assert.NotNil(t, got) {
		assert.Equal(t, "Main St", *got)
	}
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, EscapeLike("100%"))
	assert.Equal(t, `a\_b`, EscapeLike("a_b"))
	assert.Equal(t, `c:\\dir`, EscapeLike(`c:\dir`))
	assert.Equal(t, "coffee", EscapeLike("coffee"))
}
