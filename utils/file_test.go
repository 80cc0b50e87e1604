package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "war_and_peace", Slugify("War and Peace"))
	assert.Equal(t, "moby-dick_2nd_ed", Slugify("  Moby-Dick (2nd ed.) "))
	assert.Equal(t, "book", Slugify("!!!"))
}

func TestBaseNameWithoutExt(t *testing.T) {
	assert.Equal(t, "war_and_peace", BaseNameWithoutExt("/books/war_and_peace.pdf"))
	assert.Equal(t, "notes", BaseNameWithoutExt("notes"))
}
