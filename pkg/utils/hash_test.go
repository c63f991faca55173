package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashContent(t *testing.T) {
	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		HashContent(nil))
	assert.Equal(t, HashContent([]byte(`{"a":1}`)), HashContent([]byte(`{"a":1}`)))
	assert.NotEqual(t, HashContent([]byte(`{"a":1}`)), HashContent([]byte(`{"a":2}`)))
}
