package media

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic_URL(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		base, file, want string
	}{
		{"https://cdn.example/media/", "jjajang.png", "https://cdn.example/media/jjajang.png"},
		{"https://cdn.example", "/a b.png", "https://cdn.example/a%20b.png"},
		{"https://cdn.example", "lunch/jjajangmyeon.jpg", "https://cdn.example/lunch/jjajangmyeon.jpg"},
		{"https://cdn.example/media", "games/12/a b.png", "https://cdn.example/media/games/12/a%20b.png"},
		{"https://cdn.example", "https://other.example/x.png", "https://other.example/x.png"},
		{"", "local.png", "local.png"},
		{"https://cdn.example", "", ""},
	}
	for _, tc := range cases {
		got, err := Static{BaseURL: tc.base}.URL(ctx, tc.file)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}

func TestS3_ObjectKey(t *testing.T) {
	s := &S3{Prefix: "games"}
	assert.Equal(t, "games/cat.png", s.objectKey("/cat.png"))
	s.Prefix = ""
	assert.Equal(t, "cat.png", s.objectKey("cat.png"))
}
