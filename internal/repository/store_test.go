package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"sorta/internal/chain"
	"sorta/internal/models"
)

const (
	alice = "user-alice"
	bob   = "user-bob"
)

func newTestStore(t *testing.T, opts Options) *Store {
	t.Helper()
	s, err := OpenStore(filepath.Join(t.TempDir(), "test.db"), opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustGroup(t *testing.T, s *Store, owner, name string) *models.Group {
	t.Helper()
	g, err := s.CreateGroup(context.Background(), owner, models.CreateLabelParams{Name: name, Color: "bg-blue-500"})
	require.NoError(t, err)
	return g
}

func mustWallet(t *testing.T, s *Store, owner, name, addr string, groupIDs ...string) *models.Wallet {
	t.Helper()
	w, err := s.CreateWallet(context.Background(), owner, models.WalletFields{Name: name, Chain: chain.ETH, Address: addr}, groupIDs)
	require.NoError(t, err)
	return w
}
