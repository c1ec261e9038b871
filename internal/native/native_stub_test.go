//go:build !opencv

package native

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadWithoutOpenCV(t *testing.T) {
	l, err := Load()
	assert.Nil(t, l)
	assert.ErrorIs(t, err, ErrUnavailable)

	// The failure is sticky.
	_, again := Load()
	assert.Same(t, err, again)
}
