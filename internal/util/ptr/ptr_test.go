package ptr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTo(t *testing.T) {
	p := To(true)
	assert.True(t, *p)

	s := "x"
	q := To(s)
	s = "y"
	assert.Equal(t, "x", *q)
}

func TestDeref(t *testing.T) {
	assert.Equal(t, "fallback", Deref(nil, "fallback"))
	assert.Equal(t, 3, Deref(To(3), 0))
}
