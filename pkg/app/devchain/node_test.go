package devchain

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/chainsafe/red-crowdfund/pkg/artifact"
	"github.com/chainsafe/red-crowdfund/pkg/chain"
	"github.com/chainsafe/red-crowdfund/pkg/config"
	"github.com/chainsafe/red-crowdfund/pkg/crowdfund"
	"github.com/chainsafe/red-crowdfund/pkg/keys"
	"github.com/chainsafe/red-crowdfund/pkg/units"
)

const genesisUnix = 1515405600

func testConfig(t *testing.T) *config.DevChainConfig {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.Chain.GenesisTime = genesisUnix
	cfg.Chain.Realtime = false
	cfg.Chain.DataDir = t.TempDir()
	cfg.Artifacts.Dir = filepath.Join(t.TempDir(), "contracts")
	cfg.Auth.JWTSecret = "test-secret"
	return cfg
}

func newTestNode(t *testing.T, cfg *config.DevChainConfig, opts ...NodeOption) (*Node, *httptest.Server) {
	t.Helper()
	n, err := NewNode(context.Background(), cfg, zap.NewNop(), opts...)
	require.NoError(t, err)
	srv := httptest.NewServer(n.Handler())
	t.Cleanup(func() {
		srv.Close()
		n.Close()
	})
	return n, srv
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestNewNode_DeploysAndServes(t *testing.T) {
	cfg := testConfig(t)
	n, srv := newTestNode(t, cfg)

	require.NotNil(t, n.Deployment)
	assert.Equal(t, common.HexToAddress("0x627306090abaB3A6e1400e9345bC60c78a8BEf57"), n.Accounts.Deployer)
	assert.Equal(t, time.Unix(genesisUnix, 0).UTC(), n.Deployment.ICOStart.UTC())

	t.Run("health", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/health")
		require.NoError(t, err)
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "OK", string(body))
	})

	t.Run("status", func(t *testing.T) {
		var st struct {
			Phase     string         `json:"phase"`
			Symbol    string         `json:"symbol"`
			Token     common.Address `json:"token"`
			Crowdfund common.Address `json:"crowdfund"`
		}
		require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/v1/status", &st))
		assert.Equal(t, "not_started", st.Phase)
		assert.Equal(t, "RED", st.Symbol)
		assert.Equal(t, n.Token.Address, st.Token)
		assert.Equal(t, n.Crowdfund.Address, st.Crowdfund)
	})

	t.Run("artifacts", func(t *testing.T) {
		var d artifact.Descriptor
		require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/artifacts/REDToken.json", &d))
		assert.Equal(t, n.Token.Address, d.Address)
		assert.Equal(t, n.Accounts.Deployer, d.From)

		var names []string
		require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/artifacts/", &names))
		assert.ElementsMatch(t, []string{"REDToken", "REDCrowdfund"}, names)
	})

	t.Run("jsonrpc", func(t *testing.T) {
		client, err := ethclient.Dial(srv.URL)
		require.NoError(t, err)
		defer client.Close()

		id, err := client.ChainID(context.Background())
		require.NoError(t, err)
		assert.Equal(t, uint64(1337), id.Uint64())

		code, err := client.CodeAt(context.Background(), n.Token.Address, nil)
		require.NoError(t, err)
		assert.NotEmpty(t, code)
	})

	t.Run("metrics", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(body), "redchain_")
	})
}

func TestNode_AdminRequiresToken(t *testing.T) {
	cfg := testConfig(t)
	n, srv := newTestNode(t, cfg)

	resp, err := http.Post(srv.URL+"/api/v1/admin/snapshot", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token, err := n.JWT().IssueToken("ops", time.Minute)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/admin/snapshot", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNewNode_RestoresFromDataDir(t *testing.T) {
	cfg := testConfig(t)

	first, err := NewNode(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	_, err = first.Crowdfund.Transact(context.Background(), first.Accounts.Deployer, "whitelistAccounts", []common.Address{first.Accounts.Investors[0]})
	require.NoError(t, err)
	require.NoError(t, first.Chain.Save(first.StatePath()))
	block := first.Chain.BlockNumber()
	first.Close()

	second, srv := newTestNode(t, cfg)
	assert.True(t, second.Loaded)
	assert.Nil(t, second.Deployment, "restored chains are not redeployed")
	require.NotNil(t, second.Token)
	assert.Equal(t, first.Token.Address, second.Token.Address)
	assert.Equal(t, block, second.Chain.BlockNumber())

	var holder struct {
		Whitelisted bool `json:"whitelisted"`
	}
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/v1/holders/"+first.Accounts.Investors[0].Hex(), &holder))
	assert.True(t, holder.Whitelisted)
}

func TestNewNode_WithoutDeploy(t *testing.T) {
	cfg := testConfig(t)
	cfg.Chain.DataDir = ""
	n, srv := newTestNode(t, cfg, WithoutDeploy(), WithClock(chain.NewClock(time.Unix(genesisUnix, 0))))

	assert.Nil(t, n.Deployment)
	assert.Nil(t, n.Service())
	assert.Equal(t, uint64(0), n.Chain.BlockNumber())
	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/api/v1/status", nil))
}

func TestPrintAccounts(t *testing.T) {
	kr, err := keys.NewKeyring(keys.TruffleMnemonic, "", 10)
	require.NoError(t, err)

	cfg := testConfig(t)
	n, _ := newTestNode(t, cfg)

	var buf bytes.Buffer
	PrintAccounts(&buf, kr, n.Accounts.Roles(), "100")
	PrintDeployment(&buf, n.Deployment)
	out := buf.String()

	assert.Contains(t, out, "(0) 0x627306090abaB3A6e1400e9345bC60c78a8BEf57 (100 ETH) DEPLOYER")
	assert.Contains(t, out, "ANGEL2")
	assert.Contains(t, out, "Mnemonic:      "+keys.TruffleMnemonic)
	assert.Contains(t, out, "m/44'/60'/0'/0/{account_index}")
	assert.True(t, strings.Contains(out, "REDToken:      "+n.Token.Address.Hex()))
}

func TestCrowdfundParams_FromConfig(t *testing.T) {
	cfg := testConfig(t)
	p, err := crowdfundParams(&cfg.Crowdfund)
	require.NoError(t, err)
	assert.Zero(t, crowdfund.DefaultParams().MaxSupply().Cmp(p.MaxSupply()))

	cfg.Crowdfund.Pools.Angel = "1000"
	cfg.Crowdfund.Pools.Team = "0.5"
	cfg.Crowdfund.AngelPartialUnlockPercent = 50
	cfg.Crowdfund.TeamReleaseDelay = 24 * time.Hour
	p, err = crowdfundParams(&cfg.Crowdfund)
	require.NoError(t, err)
	assert.Zero(t, units.Ether(1000).Cmp(p.AngelPool))
	assert.Zero(t, units.MustToWei("0.5").Cmp(p.TeamPool))
	assert.Equal(t, uint64(50), p.AngelPartialUnlockPercent)
	assert.Equal(t, 24*time.Hour, p.TeamReleaseDelay)

	// the deployed token reports the configured angel pool
	n, _ := newTestNode(t, cfg)
	out, err := n.Token.Call(context.Background(), n.Accounts.Deployer, "angelAmountRemaining")
	require.NoError(t, err)
	assert.Zero(t, units.Ether(1000).Cmp(out[0].(*big.Int)))

	cfg.Crowdfund.Pools.Marketing = "-5"
	_, err = crowdfundParams(&cfg.Crowdfund)
	assert.ErrorContains(t, err, "marketing")
}

func TestCheckCost_WarnsOnInvalidLimits(t *testing.T) {
	cfg := testConfig(t)
	n, _ := newTestNode(t, cfg)
	require.NotNil(t, n.Deployment)

	core, logs := observer.New(zapcore.DebugLevel)
	n.logger = zap.New(core)

	n.cfg.Crowdfund.USDPerEth = "a lot"
	n.checkCost(n.Deployment)
	require.Equal(t, 1, logs.FilterMessageSnippet("invalid usd_per_eth").Len())

	n.cfg.Crowdfund.USDPerEth = "1068"
	n.cfg.Crowdfund.MaxDeployCostUSD = "cheap"
	n.checkCost(n.Deployment)
	require.Equal(t, 1, logs.FilterMessageSnippet("invalid max_deploy_cost_usd").Len())

	n.cfg.Crowdfund.MaxDeployCostUSD = "100"
	n.checkCost(n.Deployment)
	require.Equal(t, 1, logs.FilterMessage("Deployment cost").Len())
}
