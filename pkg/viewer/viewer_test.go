package viewer_test

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chainsafe/red-crowdfund/pkg/app/devchain"
	"github.com/chainsafe/red-crowdfund/pkg/artifact"
	"github.com/chainsafe/red-crowdfund/pkg/config"
	"github.com/chainsafe/red-crowdfund/pkg/crowdfund"
	"github.com/chainsafe/red-crowdfund/pkg/viewer"
)

func startNode(t *testing.T) (*devchain.Node, *httptest.Server) {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.Chain.GenesisTime = 1515405600
	cfg.Chain.Realtime = false
	cfg.Artifacts.Dir = filepath.Join(t.TempDir(), "contracts")

	node, err := devchain.NewNode(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	srv := httptest.NewServer(node.Handler())
	t.Cleanup(func() {
		srv.Close()
		node.Close()
	})
	return node, srv
}

func TestViewer_FromArtifactDir(t *testing.T) {
	node, srv := startNode(t)
	ctx := context.Background()

	c, err := viewer.Dial(ctx, srv.URL, node.Artifacts, zap.NewNop())
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, node.Token.Address, c.TokenAddress)

	o, err := c.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, "RED", o.Symbol)
	assert.Equal(t, crowdfund.NotStarted, o.Phase)
	assert.Equal(t, node.Accounts.Wallet, o.Wallet)
	assert.False(t, o.IsOpen)
	assert.Equal(t, "20000000", trimUnits(o.AngelAmountRemaining.String()))

	var buf bytes.Buffer
	o.Print(&buf)
	assert.Contains(t, buf.String(), "Phase:                  not_started")
	assert.Contains(t, buf.String(), "Angel amount remaining: 20000000 RED")
}

func TestViewer_FromArtifactURL(t *testing.T) {
	node, srv := startNode(t)
	ctx := context.Background()

	reader, err := artifact.NewReader(srv.URL + "/artifacts")
	require.NoError(t, err)
	c, err := viewer.Dial(ctx, srv.URL, reader, zap.NewNop())
	require.NoError(t, err)
	defer c.Close()

	_, err = node.Crowdfund.Transact(ctx, node.Accounts.Deployer, "openCrowdfund")
	require.NoError(t, err)

	o, err := c.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, crowdfund.EarlyBirds, o.Phase)
	assert.True(t, o.IsEarlyBirdsStage)
	assert.True(t, o.IsPreSaleStage)

	h, err := c.Holding(ctx, node.Crowdfund.Address)
	require.NoError(t, err)
	var buf bytes.Buffer
	h.Print(&buf, o.Symbol)
	assert.Contains(t, buf.String(), "48000000 RED")
}

func TestViewer_MissingArtifact(t *testing.T) {
	_, srv := startNode(t)
	_, err := viewer.Dial(context.Background(), srv.URL, artifact.NewFileStore(t.TempDir()), zap.NewNop())
	require.ErrorIs(t, err, artifact.ErrNotFound)
}

// trimUnits drops the 18 decimals of a base unit amount.
func trimUnits(s string) string {
	if len(s) <= 18 {
		return "0"
	}
	return s[:len(s)-18]
}
