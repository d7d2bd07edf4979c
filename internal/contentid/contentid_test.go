package contentid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsVideoURL(t *testing.T) {
	valid := []string{
		"https://www.tiktok.com/@someuser/video/7234567890123456789",
		"https://tiktok.com/@some.user_x/video/123",
		"http://vm.tiktok.com/ZMabc123",
		"vm.tiktok.com/ZMabc123",
		"https://tiktok.com/t/ZTabc",
	}
	for _, u := range valid {
		assert.True(t, IsVideoURL(u), u)
	}

	invalid := []string{
		"https://example.com/video/123",
		"https://youtube.com/watch?v=abc",
		"not a url",
		"",
	}
	for _, u := range invalid {
		assert.False(t, IsVideoURL(u), u)
	}
}

func TestFromURL_FullLink(t *testing.T) {
	id := FromURL("https://www.tiktok.com/@someuser/video/7234567890123456789")
	assert.Equal(t, "7234567890123456789", id)
}

func TestFromURL_StableAcrossResends(t *testing.T) {
	a := FromURL("https://vm.tiktok.com/ZMabc123")
	b := FromURL("http://www.vm.tiktok.com/ZMabc123/")
	c := FromURL("vm.tiktok.com/ZMabc123")
	assert.Equal(t, a, b)
	assert.Equal(t, a, c)
	assert.Len(t, a, 16)
}

func TestFromURL_DistinctShortLinks(t *testing.T) {
	assert.NotEqual(t, FromURL("https://vm.tiktok.com/ZMabc123"), FromURL("https://vm.tiktok.com/ZMxyz789"))
}
