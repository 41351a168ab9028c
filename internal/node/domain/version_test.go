package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDominates(t *testing.T) {
	t.Run("higher timestamp wins", func(t *testing.T) {
		a := VersionedValue{Value: "a", Timestamp: 5, Writer: "z"}
		b := VersionedValue{Value: "b", Timestamp: 6, Writer: "a"}
		require.True(t, b.Dominates(a))
		require.False(t, a.Dominates(b))
	})

	t.Run("equal timestamp breaks on writer", func(t *testing.T) {
		a := VersionedValue{Value: "a", Timestamp: 5, Writer: "writer-a"}
		b := VersionedValue{Value: "b", Timestamp: 5, Writer: "writer-b"}
		require.True(t, b.Dominates(a))
		require.False(t, a.Dominates(b))
	})

	t.Run("identical version does not dominate itself", func(t *testing.T) {
		a := VersionedValue{Value: "a", Timestamp: 5, Writer: "w"}
		require.False(t, a.Dominates(a), "domination is strict")
	})

	t.Run("order is total for distinct writers", func(t *testing.T) {
		a := VersionedValue{Timestamp: 5, Writer: "a"}
		b := VersionedValue{Timestamp: 5, Writer: "b"}
		require.True(t, a.Dominates(b) != b.Dominates(a))
	})
}
