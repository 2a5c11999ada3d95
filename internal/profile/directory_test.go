package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"driveshare/internal/config"
)

func TestStaticDirectory(t *testing.T) {
	dir := NewStaticDirectory([]config.OwnerProfile{
		{Email: "owner1@gmail.com", Photo: "https://cdn.example.com/owner1.png"},
		{Email: "Owner2@Gmail.com", Photo: "https://cdn.example.com/owner2.png"},
	})

	assert.Equal(t, "https://cdn.example.com/owner1.png", dir.PhotoFor("owner1@gmail.com"))
	assert.Equal(t, "https://cdn.example.com/owner1.png", dir.PhotoFor("OWNER1@GMAIL.COM"))
	assert.Equal(t, "https://cdn.example.com/owner2.png", dir.PhotoFor("owner2@gmail.com"))
	assert.Empty(t, dir.PhotoFor("stranger@gmail.com"))
}

func TestStaticDirectoryEmpty(t *testing.T) {
	dir := NewStaticDirectory(nil)
	assert.Empty(t, dir.PhotoFor("anyone@gmail.com"))
}
