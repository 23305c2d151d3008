package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teleport-xyz/teleport-indexer/internal/domain"
)

func TestParseCursorOwner(t *testing.T) {
	owner, err := parseCursorOwner("log-emitter")
	require.NoError(t, err)
	assert.Equal(t, domain.CursorOwnerEmitter, owner)

	owner, err = parseCursorOwner("reconciler")
	require.NoError(t, err)
	assert.Equal(t, domain.CursorOwnerReconciler, owner)

	_, err = parseCursorOwner("sweeper")
	assert.ErrorContains(t, err, "invalid owner")
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := newRootCommand()

	for _, path := range [][]string{{"mint"}, {"redeem"}, {"cursor", "get"}, {"cursor", "set"}} {
		found, _, err := cmd.Find(path)
		require.NoError(t, err)
		assert.Equal(t, path[len(path)-1], found.Name())
	}

	redeem, _, err := cmd.Find([]string{"redeem"})
	require.NoError(t, err)
	assert.NotNil(t, redeem.Flags().Lookup("token"))
}
