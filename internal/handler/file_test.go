package handler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeJoinStaysUnderRoot(t *testing.T) {
	// traversal attempts are anchored under the root, never resolved outside it
	tests := []struct {
		rel  string
		want string
	}{
		{"users/avatar/pic.png", "/srv/uploads/users/avatar/pic.png"},
		{"../etc/passwd", "/srv/uploads/etc/passwd"},
		{"users/../../../secret", "/srv/uploads/secret"},
		{"/etc/passwd", "/srv/uploads/etc/passwd"},
		{"a/./b//c", "/srv/uploads/a/b/c"},
	}
	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			got, ok := safeJoin("/srv/uploads", tt.rel)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
			assert.True(t, strings.HasPrefix(got, "/srv/uploads/"))
		})
	}
}
