package crowdfund_test

import (
	"context"
	"math/big"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chainsafe/red-crowdfund/internal/metrics"
	"github.com/chainsafe/red-crowdfund/pkg/chain"
	"github.com/chainsafe/red-crowdfund/pkg/crowdfund"
	"github.com/chainsafe/red-crowdfund/pkg/units"
)

var icoStart = time.Unix(1515405600, 0).UTC()

type fixture struct {
	chain     *chain.Chain
	token     *chain.BoundContract
	crowdfund *chain.BoundContract

	owner, wallet, team, foundation, marketing common.Address
	investors                                  []common.Address
	angels                                     []common.Address
}

func addr(n int64) common.Address {
	return common.BigToAddress(big.NewInt(0x1000 + n))
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{
		owner:      addr(0),
		wallet:     addr(1),
		team:       addr(2),
		foundation: addr(3),
		marketing:  addr(4),
		investors:  []common.Address{addr(5), addr(6), addr(7)},
		angels:     []common.Address{addr(8), addr(9)},
	}
	alloc := make(map[common.Address]*big.Int)
	for i := int64(0); i < 10; i++ {
		alloc[addr(i)] = units.Ether(100)
	}

	registry, err := crowdfund.NewRegistry(crowdfund.DefaultParams())
	require.NoError(t, err)
	f.chain = chain.New(big.NewInt(1337), registry, chain.Genesis{Time: icoStart, Alloc: alloc})

	f.token, _, err = chain.Deploy(ctx, f.chain, registry[crowdfund.TokenName], f.owner)
	require.NoError(t, err)
	f.crowdfund, _, err = chain.Deploy(ctx, f.chain, registry[crowdfund.CrowdfundName], f.owner, f.token.Address)
	require.NoError(t, err)

	f.mustSend(t, f.owner, f.token, "setCrowdfundAddress", f.crowdfund.Address)
	f.mustSend(t, f.owner, f.token, "setFoundationAddress", f.foundation)
	f.mustSend(t, f.owner, f.token, "setMarketingAddress", f.marketing)
	f.mustSend(t, f.owner, f.token, "changeRedTeamAddress", f.team)
	f.mustSend(t, f.owner, f.crowdfund, "changeWalletAddress", f.wallet)
	return f
}

func (f *fixture) send(from common.Address, c *chain.BoundContract, method string, args ...any) error {
	_, err := c.Transact(context.Background(), from, method, args...)
	return err
}

func (f *fixture) mustSend(t *testing.T, from common.Address, c *chain.BoundContract, method string, args ...any) {
	t.Helper()
	require.NoError(t, f.send(from, c, method, args...), method)
}

func (f *fixture) buy(from common.Address, eth string) error {
	to := f.crowdfund.Address
	_, err := f.chain.SendMessage(context.Background(), chain.Message{From: from, To: &to, Value: units.MustToWei(eth)})
	return err
}

func (f *fixture) call(t *testing.T, c *chain.BoundContract, method string, args ...any) any {
	t.Helper()
	out, err := c.Call(context.Background(), f.owner, method, args...)
	require.NoError(t, err, method)
	return out[0]
}

func (f *fixture) balance(t *testing.T, a common.Address) *big.Int {
	t.Helper()
	return f.call(t, f.token, "balanceOf", a).(*big.Int)
}

func red(n int64) *big.Int { return units.Ether(n) }

func (f *fixture) openAndClose(t *testing.T) {
	t.Helper()
	f.mustSend(t, f.owner, f.crowdfund, "openCrowdfund")
	f.mustSend(t, f.owner, f.token, "finalizeEarlyBirds")
	f.chain.IncreaseTime(4 * 7 * 24 * time.Hour)
	f.mustSend(t, f.owner, f.crowdfund, "closeCrowdfund")
}

func TestContracts_OwnerOnlyOperations(t *testing.T) {
	f := newFixture(t)
	stranger := f.investors[0]

	tests := []struct {
		contract *chain.BoundContract
		method   string
		args     []any
	}{
		{f.crowdfund, "openCrowdfund", nil},
		{f.crowdfund, "closeCrowdfund", nil},
		{f.crowdfund, "changeWalletAddress", []any{stranger}},
		{f.crowdfund, "whitelistAccounts", []any{[]common.Address{stranger}}},
		{f.crowdfund, "setICOPeriod", []any{big.NewInt(icoStart.Unix())}},
		{f.token, "setCrowdfundAddress", []any{stranger}},
		{f.token, "setFoundationAddress", []any{stranger}},
		{f.token, "setMarketingAddress", []any{stranger}},
		{f.token, "changeRedTeamAddress", []any{stranger}},
		{f.token, "deliverAngelsREDAccounts", []any{[]common.Address{stranger}, []*big.Int{red(1)}}},
		{f.token, "finalizeEarlyBirds", nil},
		{f.token, "releaseMarketingTokens", nil},
		{f.token, "releaseRedTeamTokens", nil},
		{f.token, "partialUnlockAngelsAccounts", []any{[]common.Address{stranger}}},
		{f.token, "fullUnlockAngelsAccounts", []any{[]common.Address{stranger}}},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			err := f.send(stranger, tt.contract, tt.method, tt.args...)
			assert.ErrorIs(t, err, crowdfund.ErrUnauthorized)
		})
	}
}

func TestContracts_CrowdfundOnlyOperations(t *testing.T) {
	f := newFixture(t)
	for _, method := range []string{"startCrowdfund", "finalizeCrowdfund"} {
		assert.ErrorIs(t, f.send(f.owner, f.token, method), crowdfund.ErrUnauthorized, method)
	}
	err := f.send(f.owner, f.token, "transferFromCrowdfund", f.owner, red(1))
	assert.ErrorIs(t, err, crowdfund.ErrUnauthorized)
}

func TestContracts_BuyBeforeOpen(t *testing.T) {
	f := newFixture(t)
	investor := f.investors[0]
	err := f.buy(investor, "1")
	assert.ErrorIs(t, err, crowdfund.ErrPhaseClosed)
	assert.Zero(t, f.balance(t, investor).Sign())
	assert.Equal(t, units.Ether(100), f.chain.BalanceAt(f.wallet))
}

func TestContracts_NotWhitelistedNeverBuys(t *testing.T) {
	f := newFixture(t)
	f.mustSend(t, f.owner, f.crowdfund, "openCrowdfund")
	f.mustSend(t, f.owner, f.crowdfund, "whitelistAccounts", []common.Address{f.investors[0]})

	outsiders := append([]common.Address{f.team, f.foundation}, f.investors[1:]...)
	for _, a := range outsiders {
		for _, eth := range []string{"0.001", "1", "10"} {
			err := f.buy(a, eth)
			assert.ErrorIs(t, err, crowdfund.ErrNotWhitelisted)
		}
		assert.Zero(t, f.balance(t, a).Sign())
	}

	require.NoError(t, f.buy(f.investors[0], "1"))
	assert.Equal(t, red(2750), f.balance(t, f.investors[0]))
}

func TestContracts_BuyThroughMethod(t *testing.T) {
	f := newFixture(t)
	f.mustSend(t, f.owner, f.crowdfund, "openCrowdfund")
	f.mustSend(t, f.owner, f.token, "finalizeEarlyBirds")

	investor := f.investors[2]
	_, err := f.crowdfund.TransactValue(context.Background(), investor, units.MustToWei("0.5"), "buy")
	require.NoError(t, err)
	assert.Equal(t, red(1250), f.balance(t, investor))

	_, err = f.crowdfund.TransactValue(context.Background(), investor, nil, "buy")
	assert.ErrorIs(t, err, crowdfund.ErrInvalidArgument)
}

func TestContracts_TransfersLockedUntilClose(t *testing.T) {
	f := newFixture(t)
	a, b := f.investors[0], f.investors[1]
	f.mustSend(t, f.owner, f.crowdfund, "openCrowdfund")
	f.mustSend(t, f.owner, f.crowdfund, "whitelistAccounts", []common.Address{a})
	require.NoError(t, f.buy(a, "1"))

	for _, v := range []int64{1, 100, 2750} {
		err := f.send(a, f.token, "transfer", b, red(v))
		assert.ErrorIs(t, err, crowdfund.ErrTransfersLocked)
		assert.ErrorIs(t, err, crowdfund.ErrLockedBalance)
	}
	f.mustSend(t, a, f.token, "approve", b, red(10))
	err := f.send(b, f.token, "transferFrom", a, b, red(10))
	assert.ErrorIs(t, err, crowdfund.ErrLockedBalance)

	assert.Equal(t, red(2750), f.balance(t, a))
	assert.Zero(t, f.balance(t, b).Sign())
}

func TestContracts_AngelPool(t *testing.T) {
	f := newFixture(t)
	remaining := func() *big.Int { return f.call(t, f.token, "angelAmountRemaining").(*big.Int) }

	start := remaining()
	assert.Equal(t, red(20_000_000), start)

	f.mustSend(t, f.owner, f.token, "deliverAngelsREDAccounts", f.angels, []*big.Int{red(1000), red(2000)})
	assert.Equal(t, red(19_997_000), remaining())
	assert.Equal(t, red(1000), f.balance(t, f.angels[0]))
	assert.Equal(t, red(2000), f.call(t, f.token, "angelAmountOf", f.angels[1]))

	err := f.send(f.owner, f.token, "deliverAngelsREDAccounts", f.angels, []*big.Int{red(19_000_000), red(997_001)})
	assert.ErrorIs(t, err, crowdfund.ErrPoolExhausted)
	assert.Equal(t, red(19_997_000), remaining())
	assert.Equal(t, red(1000), f.balance(t, f.angels[0]))

	err = f.send(f.owner, f.token, "deliverAngelsREDAccounts", f.angels, []*big.Int{red(1)})
	assert.ErrorIs(t, err, crowdfund.ErrInvalidArgument)

	f.mustSend(t, f.owner, f.token, "deliverAngelsREDAccounts", f.angels, []*big.Int{red(19_000_000), red(997_000)})
	assert.Zero(t, remaining().Sign())
	assert.Equal(t, red(20_000_000), f.call(t, f.token, "totalSupply"))
}

func TestContracts_PhaseOrdering(t *testing.T) {
	f := newFixture(t)

	assert.ErrorIs(t, f.send(f.owner, f.token, "finalizeEarlyBirds"), crowdfund.ErrInvalidState)
	assert.ErrorIs(t, f.send(f.owner, f.crowdfund, "closeCrowdfund"), crowdfund.ErrInvalidState)

	f.mustSend(t, f.owner, f.crowdfund, "openCrowdfund")
	assert.ErrorIs(t, f.send(f.owner, f.crowdfund, "openCrowdfund"), crowdfund.ErrInvalidState)
	assert.ErrorIs(t, f.send(f.owner, f.crowdfund, "closeCrowdfund"), crowdfund.ErrInvalidState)
	assert.ErrorIs(t, f.send(f.owner, f.crowdfund, "setICOPeriod", big.NewInt(0)), crowdfund.ErrInvalidState)
	assert.ErrorIs(t, f.send(f.owner, f.token, "setCrowdfundAddress", f.owner), crowdfund.ErrInvalidState)

	f.mustSend(t, f.owner, f.token, "finalizeEarlyBirds")
	assert.ErrorIs(t, f.send(f.owner, f.token, "finalizeEarlyBirds"), crowdfund.ErrInvalidState)

	assert.ErrorIs(t, f.send(f.owner, f.crowdfund, "closeCrowdfund"), crowdfund.ErrTooEarly)
	f.chain.IncreaseTime(4*7*24*time.Hour - time.Minute)
	assert.ErrorIs(t, f.send(f.owner, f.crowdfund, "closeCrowdfund"), crowdfund.ErrTooEarly)
	f.chain.IncreaseTime(time.Minute)
	f.mustSend(t, f.owner, f.crowdfund, "closeCrowdfund")

	assert.Equal(t, uint8(crowdfund.Closed), f.call(t, f.token, "phase"))
	assert.Equal(t, false, f.call(t, f.crowdfund, "isOpen"))
	assert.ErrorIs(t, f.send(f.owner, f.crowdfund, "closeCrowdfund"), crowdfund.ErrInvalidState)
}

func TestContracts_ICOPeriod(t *testing.T) {
	f := newFixture(t)
	startsAt := icoStart.Add(24 * time.Hour).Unix()
	f.mustSend(t, f.owner, f.crowdfund, "setICOPeriod", big.NewInt(startsAt))

	assert.ErrorIs(t, f.send(f.owner, f.crowdfund, "openCrowdfund"), crowdfund.ErrTooEarly)
	f.chain.IncreaseTime(24 * time.Hour)
	f.mustSend(t, f.owner, f.crowdfund, "openCrowdfund")

	openedAt := f.call(t, f.crowdfund, "openedAt").(*big.Int)
	endsAt := f.call(t, f.crowdfund, "endsAt").(*big.Int)
	assert.Equal(t, int64(28*24*3600), new(big.Int).Sub(endsAt, openedAt).Int64())
	assert.Equal(t, true, f.call(t, f.crowdfund, "isPreSaleStage"))
	assert.Equal(t, true, f.call(t, f.crowdfund, "isEarlyBirdsStage"))
}

func TestContracts_MarketingAndTeamRelease(t *testing.T) {
	f := newFixture(t)

	f.mustSend(t, f.owner, f.token, "releaseMarketingTokens")
	assert.Equal(t, red(20_000_000), f.balance(t, f.marketing))
	assert.ErrorIs(t, f.send(f.owner, f.token, "releaseMarketingTokens"), crowdfund.ErrInvalidState)

	assert.ErrorIs(t, f.send(f.owner, f.token, "releaseRedTeamTokens"), crowdfund.ErrTooEarly)
	f.chain.IncreaseTime(274 * 24 * time.Hour)
	assert.ErrorIs(t, f.send(f.owner, f.token, "releaseRedTeamTokens"), crowdfund.ErrTooEarly)
	f.chain.IncreaseTime(24 * time.Hour)
	f.mustSend(t, f.owner, f.token, "releaseRedTeamTokens")
	assert.Equal(t, red(30_000_000), f.balance(t, f.team))
	assert.ErrorIs(t, f.send(f.owner, f.token, "releaseRedTeamTokens"), crowdfund.ErrInvalidState)
}

func TestContracts_AngelLock(t *testing.T) {
	f := newFixture(t)
	angel, other := f.angels[0], f.investors[0]
	f.mustSend(t, f.owner, f.token, "deliverAngelsREDAccounts", []common.Address{angel}, []*big.Int{red(1000)})
	f.openAndClose(t)

	assert.ErrorIs(t, f.send(angel, f.token, "transfer", other, red(1)), crowdfund.ErrLockedBalance)

	err := f.send(f.owner, f.token, "partialUnlockAngelsAccounts", []common.Address{other})
	assert.ErrorIs(t, err, crowdfund.ErrInvalidArgument)

	f.mustSend(t, f.owner, f.token, "partialUnlockAngelsAccounts", []common.Address{angel})
	assert.Equal(t, red(800), f.call(t, f.token, "lockedBalanceOf", angel))
	assert.ErrorIs(t, f.send(angel, f.token, "transfer", other, new(big.Int).Add(red(200), big.NewInt(1))), crowdfund.ErrLockedBalance)
	f.mustSend(t, angel, f.token, "transfer", other, red(200))

	assert.ErrorIs(t, f.send(f.owner, f.token, "fullUnlockAngelsAccounts", []common.Address{angel}), crowdfund.ErrTooEarly)
	f.chain.IncreaseTime(90 * 24 * time.Hour)
	f.mustSend(t, f.owner, f.token, "fullUnlockAngelsAccounts", []common.Address{angel})
	f.mustSend(t, angel, f.token, "transfer", other, red(800))

	assert.Zero(t, f.balance(t, angel).Sign())
	assert.Equal(t, red(1000), f.balance(t, other))
}

func TestContracts_AllowanceRoundTrip(t *testing.T) {
	f := newFixture(t)
	owner, spender, recipient := f.investors[0], f.investors[1], f.investors[2]
	f.mustSend(t, f.owner, f.crowdfund, "openCrowdfund")
	f.mustSend(t, f.owner, f.crowdfund, "whitelistAccounts", []common.Address{owner})
	require.NoError(t, f.buy(owner, "1"))
	f.mustSend(t, f.owner, f.token, "finalizeEarlyBirds")
	f.chain.IncreaseTime(4 * 7 * 24 * time.Hour)
	f.mustSend(t, f.owner, f.crowdfund, "closeCrowdfund")

	amount := new(big.Int).Add(red(300), big.NewInt(7))
	err := f.send(spender, f.token, "transferFrom", owner, recipient, big.NewInt(1))
	assert.ErrorIs(t, err, crowdfund.ErrInsufficientAllowance)

	f.mustSend(t, owner, f.token, "approve", spender, amount)
	assert.Equal(t, amount, f.call(t, f.token, "allowance", owner, spender))

	f.mustSend(t, spender, f.token, "transferFrom", owner, recipient, red(100))
	assert.Equal(t, new(big.Int).Sub(amount, red(100)), f.call(t, f.token, "allowance", owner, spender))
	assert.Equal(t, red(100), f.balance(t, recipient))
	assert.Equal(t, red(2650), f.balance(t, owner))

	err = f.send(spender, f.token, "transferFrom", owner, recipient, red(300))
	assert.ErrorIs(t, err, crowdfund.ErrInsufficientAllowance)

	err = f.send(recipient, f.token, "transfer", spender, red(101))
	assert.ErrorIs(t, err, crowdfund.ErrInsufficientBalance)
}

func TestContracts_SurviveRestart(t *testing.T) {
	f := newFixture(t)
	f.mustSend(t, f.owner, f.token, "deliverAngelsREDAccounts", f.angels, []*big.Int{red(1000), red(2000)})
	f.mustSend(t, f.owner, f.crowdfund, "openCrowdfund")
	f.mustSend(t, f.owner, f.crowdfund, "whitelistAccounts", []common.Address{f.investors[0]})
	require.NoError(t, f.buy(f.investors[0], "2"))

	path := filepath.Join(t.TempDir(), chain.StateFile)
	require.NoError(t, f.chain.Save(path))

	registry, err := crowdfund.NewRegistry(crowdfund.DefaultParams())
	require.NoError(t, err)
	restored := chain.New(big.NewInt(1337), registry, chain.Genesis{Time: icoStart})
	require.NoError(t, restored.Load(path))

	token := chain.Bind(restored, registry[crowdfund.TokenName], f.token.Address)
	cf := chain.Bind(restored, registry[crowdfund.CrowdfundName], f.crowdfund.Address)

	out, err := token.Call(context.Background(), f.owner, "balanceOf", f.investors[0])
	require.NoError(t, err)
	assert.Equal(t, red(5500), out[0])

	out, err = cf.Call(context.Background(), f.owner, "whitelisted", f.investors[0])
	require.NoError(t, err)
	assert.Equal(t, true, out[0])

	_, err = cf.TransactValue(context.Background(), f.investors[0], units.Ether(1), "buy")
	require.NoError(t, err)
	out, err = token.Call(context.Background(), f.owner, "balanceOf", f.investors[0])
	require.NoError(t, err)
	assert.Equal(t, red(8250), out[0])
}

func TestContracts_PhaseGaugeFollowsRevert(t *testing.T) {
	f := newFixture(t)
	o := crowdfund.NewMetricsObserver(crowdfund.NotStarted, crowdfund.TokenPhase(f.token), zap.NewNop())
	f.chain.AddObserver(o)

	snap := f.chain.Snapshot()
	f.mustSend(t, f.owner, f.crowdfund, "openCrowdfund")
	require.Equal(t, crowdfund.EarlyBirds, o.Phase())
	require.Equal(t, float64(crowdfund.EarlyBirds), testutil.ToFloat64(metrics.CrowdfundPhase))

	require.True(t, f.chain.Revert(snap))
	assert.Equal(t, crowdfund.NotStarted, o.Phase())
	assert.Equal(t, float64(crowdfund.NotStarted), testutil.ToFloat64(metrics.CrowdfundPhase))
}
