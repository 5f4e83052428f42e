package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "canopy/pkg/domain-errors"
)

func TestParseRole(t *testing.T) {
	t.Run("accepts the four numeric roles", func(t *testing.T) {
		for n, want := range map[int]Role{1: RoleAdmin, 2: RoleParent, 3: RoleEducator, 4: RoleChild} {
			r, err := ParseRole(n)
			require.NoError(t, err)
			assert.Equal(t, want, r)
		}
	})

	t.Run("rejects out-of-range values", func(t *testing.T) {
		for _, n := range []int{0, 5, -1, 100} {
			_, err := ParseRole(n)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidUserRole))
		}
	})
}

func TestParseRelationshipKind(t *testing.T) {
	t.Run("accepts supported kinds", func(t *testing.T) {
		for _, s := range []string{"parent-child", "educator-child"} {
			k, err := ParseRelationshipKind(s)
			require.NoError(t, err)
			assert.True(t, k.IsValid())
		}
	})

	t.Run("rejects anything else", func(t *testing.T) {
		for _, s := range []string{"", "sibling", "PARENT-CHILD", "parent_child"} {
			_, err := ParseRelationshipKind(s)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidParameters))
		}
	})
}

func TestParseIDs(t *testing.T) {
	t.Run("rejects empty principal", func(t *testing.T) {
		_, err := ParseUserID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidParameters))
	})

	t.Run("numeric ids reject zero and garbage", func(t *testing.T) {
		for _, s := range []string{"", "0", "-3", "abc"} {
			_, err := ParseForestID(s)
			assert.Error(t, err, "forest id %q", s)
			_, err = ParseMilestoneID(s)
			assert.Error(t, err, "milestone id %q", s)
		}
	})

	t.Run("numeric ids parse positive integers", func(t *testing.T) {
		fid, err := ParseForestID("12")
		require.NoError(t, err)
		assert.Equal(t, ForestID(12), fid)
	})
}
