package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"github.com/chainsafe/red-crowdfund/internal/metrics"
)

// Observer is notified after every mined transaction, successful or not.
// Observers run outside the chain lock and must not block for long.
type Observer interface {
	TransactionMined(ctx context.Context, tx *Transaction, receipt *Receipt)
}

// RevertObserver is an Observer that also hears about snapshot reverts, which
// undo mined transactions without emitting anything.
type RevertObserver interface {
	Reverted(ctx context.Context, id uint64)
}

// Genesis describes the initial chain state.
type Genesis struct {
	Time  time.Time
	Alloc map[common.Address]*big.Int
}

// LogQuery filters logs. Nil block bounds mean the first and latest block.
// Topics match by position; an empty position matches anything.
type LogQuery struct {
	FromBlock *uint64
	ToBlock   *uint64
	Addresses []common.Address
	Topics    [][]common.Hash
}

type snapshot struct {
	state  *State
	offset time.Duration
	height uint64
}

// Chain is a single node development chain that mines one block per
// transaction. All mutations are serialized; each transaction executes against
// a private copy of the state that replaces the live state only on success.
type Chain struct {
	mu sync.RWMutex

	chainID       *big.Int
	registry      Registry
	clock         *Clock
	gasPrice      *big.Int
	blockGasLimit uint64
	observers     []Observer
	logger        *zap.Logger

	state     *State
	blocks    []*Block
	txs       map[common.Hash]*Transaction
	receipts  map[common.Hash]*Receipt
	snapshots []snapshot

	revision atomic.Uint64
}

// New creates a chain with a genesis block funded according to genesis.Alloc.
func New(chainID *big.Int, registry Registry, genesis Genesis, opts ...Option) *Chain {
	s := applyOptions(opts)
	clock := s.clock
	if clock == nil {
		start := genesis.Time
		if start.IsZero() {
			start = time.Now()
		}
		clock = NewClock(start)
	}

	state := NewState()
	for addr, amount := range genesis.Alloc {
		state.AddBalance(addr, amount)
	}

	c := &Chain{
		chainID:       new(big.Int).Set(chainID),
		registry:      registry,
		clock:         clock,
		gasPrice:      s.gasPrice,
		blockGasLimit: s.blockGasLimit,
		observers:     s.observers,
		logger:        s.logger,
		state:         state,
		txs:           make(map[common.Hash]*Transaction),
		receipts:      make(map[common.Hash]*Receipt),
	}
	c.blocks = []*Block{c.newBlock(common.Hash{}, 0, clock.Genesis(), nil, 0)}
	metrics.BlockHeight.Set(0)
	return c
}

// AddObserver registers o for transactions mined from now on.
func (c *Chain) AddObserver(o Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, o)
}

// ChainID returns the EIP-155 chain id.
func (c *Chain) ChainID() *big.Int {
	return new(big.Int).Set(c.chainID)
}

// Registry returns the deployable artifacts.
func (c *Chain) Registry() Registry {
	return c.registry
}

// Clock returns the chain clock.
func (c *Chain) Clock() *Clock {
	return c.clock
}

// Now returns the timestamp the next block would be mined at.
func (c *Chain) Now() time.Time {
	return c.clock.Now()
}

// GasPrice returns the default gas price.
func (c *Chain) GasPrice() *big.Int {
	return new(big.Int).Set(c.gasPrice)
}

// BlockNumber returns the latest block number.
func (c *Chain) BlockNumber() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.head().Number
}

// BlockByNumber returns a mined block.
func (c *Chain) BlockByNumber(number uint64) (*Block, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if number >= uint64(len(c.blocks)) {
		return nil, false
	}
	return c.blocks[number], true
}

// BlockByHash returns a mined block.
func (c *Chain) BlockByHash(hash common.Hash) (*Block, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, b := range c.blocks {
		if b.Hash == hash {
			return b, true
		}
	}
	return nil, false
}

// LatestBlock returns the head of the chain.
func (c *Chain) LatestBlock() *Block {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.head()
}

// BalanceAt returns the ether balance of addr.
func (c *Chain) BalanceAt(addr common.Address) *big.Int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Balance(addr)
}

// NonceAt returns the number of transactions sent from addr.
func (c *Chain) NonceAt(addr common.Address) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Nonce(addr)
}

// CodeAt returns the creation code of the contract at addr, or nil for
// plain accounts.
func (c *Chain) CodeAt(addr common.Address) []byte {
	c.mu.RLock()
	defer c.mu.RUnlock()
	contract, ok := c.state.Contract(addr)
	if !ok {
		return nil
	}
	art, err := c.registry.Lookup(contract.Artifact())
	if err != nil {
		return nil
	}
	return art.Bytecode
}

// ArtifactAt returns the artifact of the contract deployed at addr.
func (c *Chain) ArtifactAt(addr common.Address) (*Artifact, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	contract, ok := c.state.Contract(addr)
	if !ok {
		return nil, false
	}
	art, err := c.registry.Lookup(contract.Artifact())
	return art, err == nil
}

// TransactionByHash returns a mined transaction.
func (c *Chain) TransactionByHash(hash common.Hash) (*Transaction, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tx, ok := c.txs[hash]
	return tx, ok
}

// ReceiptByHash returns the receipt of a mined transaction.
func (c *Chain) ReceiptByHash(hash common.Hash) (*Receipt, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.receipts[hash]
	return r, ok
}

// SendMessage executes msg as a transaction from an unlocked account and mines
// it in a new block.
//
// Messages that cannot be mined (bad nonce, insufficient funds for gas) are
// rejected with no receipt. A transaction that fails during execution is still
// mined: the receipt has a failed status, the sender pays for the gas, and the
// returned error is a *RevertError.
func (c *Chain) SendMessage(ctx context.Context, msg Message) (*Receipt, error) {
	return c.send(ctx, msg, nil)
}

// SendTransaction mines a signed transaction.
func (c *Chain) SendTransaction(ctx context.Context, tx *types.Transaction) (*Receipt, error) {
	signer := types.LatestSignerForChainID(c.chainID)
	from, err := types.Sender(signer, tx)
	if err != nil {
		return nil, fmt.Errorf("recover sender: %w", err)
	}
	nonce := tx.Nonce()
	msg := Message{
		From:     from,
		To:       tx.To(),
		Value:    tx.Value(),
		Data:     tx.Data(),
		Gas:      tx.Gas(),
		GasPrice: tx.GasPrice(),
		Nonce:    &nonce,
	}
	return c.send(ctx, msg, tx)
}

func (c *Chain) send(ctx context.Context, msg Message, signed *types.Transaction) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	tx, receipt, err := c.apply(msg, signed)
	observers := c.observers
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}
	c.revision.Add(1)

	kind := txKind(msg)
	status := "success"
	if receipt.Status == StatusFailed {
		status = "failed"
	}
	metrics.TransactionsTotal.WithLabelValues(kind, status).Inc()
	metrics.GasUsed.WithLabelValues(kind).Observe(float64(receipt.GasUsed))
	metrics.BlockHeight.Set(float64(receipt.BlockNumber))

	c.logger.Debug("transaction mined",
		zap.String("tx_hash", tx.Hash.Hex()),
		zap.String("from", tx.From.Hex()),
		zap.Uint64("block", receipt.BlockNumber),
		zap.Uint64("gas_used", receipt.GasUsed),
		zap.String("status", status))

	for _, o := range observers {
		o.TransactionMined(ctx, tx, receipt)
	}
	return receipt, receipt.Err
}

type execPlan struct {
	artifact  *Artifact
	ctorArgs  []byte
	call      bool
	intrinsic uint64
	gas       uint64
}

// plan resolves what msg targets and what it costs, without executing it.
func (c *Chain) plan(state *State, msg Message) (*execPlan, error) {
	p := &execPlan{intrinsic: IntrinsicGas(msg.Data, msg.To == nil)}
	p.gas = p.intrinsic
	if msg.To == nil {
		art, args, err := c.registry.byCode(msg.Data)
		if err != nil {
			return nil, err
		}
		p.artifact, p.ctorArgs = art, args
		p.gas += art.DeployGas
		return p, nil
	}
	contract, ok := state.Contract(*msg.To)
	if !ok {
		return p, nil
	}
	art, err := c.registry.Lookup(contract.Artifact())
	if err != nil {
		return nil, err
	}
	p.artifact, p.call = art, true
	p.gas += art.CallGas
	return p, nil
}

func (c *Chain) apply(msg Message, signed *types.Transaction) (*Transaction, *Receipt, error) {
	if msg.Value == nil {
		msg.Value = new(big.Int)
	}
	gasPrice := c.gasPrice
	if msg.GasPrice != nil {
		gasPrice = msg.GasPrice
	}

	nonce := c.state.Nonce(msg.From)
	if msg.Nonce != nil {
		switch {
		case *msg.Nonce < nonce:
			return nil, nil, fmt.Errorf("%w: address %s, tx: %d state: %d", ErrNonceTooLow, msg.From.Hex(), *msg.Nonce, nonce)
		case *msg.Nonce > nonce:
			return nil, nil, fmt.Errorf("%w: address %s, tx: %d state: %d", ErrNonceTooHigh, msg.From.Hex(), *msg.Nonce, nonce)
		}
	}

	p, err := c.plan(c.state, msg)
	if err != nil {
		return nil, nil, err
	}
	if msg.Gas != 0 && msg.Gas < p.intrinsic {
		return nil, nil, fmt.Errorf("%w: have %d, want %d", ErrIntrinsicGas, msg.Gas, p.intrinsic)
	}

	gasUsed := p.gas
	var execErr error
	if msg.Gas != 0 && msg.Gas < p.gas {
		gasUsed, execErr = msg.Gas, ErrOutOfGas
	}
	charge := fee(gasUsed, gasPrice)
	if c.state.Balance(msg.From).Cmp(new(big.Int).Add(charge, msg.Value)) < 0 {
		return nil, nil, fmt.Errorf("%w: address %s", ErrInsufficientFunds, msg.From.Hex())
	}

	parent := c.head()
	number := parent.Number + 1
	now := c.clock.Now()
	hash := messageHash(msg, nonce)
	if signed != nil {
		hash = signed.Hash()
	}

	var (
		logs    []*types.Log
		created *common.Address
	)
	if execErr == nil {
		exec := c.state.Clone()
		env := &Env{Sender: msg.From, Value: msg.Value, state: exec, now: now, block: number, logs: &logs}
		created, execErr = c.execute(env, msg, p, nonce)
		if execErr == nil {
			c.state = exec
		}
	}
	if execErr != nil {
		logs, created = nil, nil
	}
	// Funds were checked above, the fee cannot fail.
	_ = c.state.SubBalance(msg.From, charge)
	c.state.incrementNonce(msg.From)

	block := c.newBlock(parent.Hash, number, now, []common.Hash{hash}, gasUsed)
	c.blocks = append(c.blocks, block)
	for i, l := range logs {
		l.BlockNumber = number
		l.BlockHash = block.Hash
		l.TxHash = hash
		l.Index = uint(i)
	}

	tx := &Transaction{
		Hash:        hash,
		From:        msg.From,
		To:          msg.To,
		Nonce:       nonce,
		Value:       new(big.Int).Set(msg.Value),
		Data:        msg.Data,
		Gas:         msg.Gas,
		GasPrice:    new(big.Int).Set(gasPrice),
		BlockNumber: number,
		BlockHash:   block.Hash,
		Signed:      signed,
	}
	if tx.Gas == 0 {
		tx.Gas = gasUsed
	}
	receipt := &Receipt{
		TxHash:          hash,
		BlockNumber:     number,
		BlockHash:       block.Hash,
		From:            msg.From,
		To:              msg.To,
		ContractAddress: created,
		GasUsed:         gasUsed,
		GasPrice:        tx.GasPrice,
		Status:          StatusSuccess,
		Logs:            logs,
	}
	if execErr != nil {
		receipt.Status = StatusFailed
		receipt.Err = revert(execErr)
	}
	c.txs[hash] = tx
	c.receipts[hash] = receipt
	return tx, receipt, nil
}

// execute runs msg against env.state. env.Self is filled in here.
func (c *Chain) execute(env *Env, msg Message, p *execPlan, nonce uint64) (*common.Address, error) {
	state := env.state
	if msg.To == nil {
		addr := crypto.CreateAddress(msg.From, nonce)
		if _, exists := state.Contract(addr); exists {
			return nil, ErrAddressInUse
		}
		if msg.Value.Sign() > 0 && !p.artifact.ABI.Constructor.IsPayable() {
			return nil, ErrNotPayable
		}
		args, err := p.artifact.ABI.Constructor.Inputs.Unpack(p.ctorArgs)
		if err != nil {
			return nil, fmt.Errorf("decode %s constructor args: %w", p.artifact.Name, err)
		}
		if err := state.TransferEther(msg.From, addr, msg.Value); err != nil {
			return nil, err
		}
		env.Self = addr
		contract, err := p.artifact.New(env, args)
		if err != nil {
			return nil, err
		}
		state.setContract(addr, contract)
		return &addr, nil
	}

	env.Self = *msg.To
	if !p.call {
		return nil, state.TransferEther(msg.From, *msg.To, msg.Value)
	}
	contract, _ := state.Contract(*msg.To)
	if len(msg.Data) > 0 && msg.Value.Sign() > 0 {
		if err := checkPayable(p.artifact, msg.Data); err != nil {
			return nil, err
		}
	}
	if err := state.TransferEther(msg.From, *msg.To, msg.Value); err != nil {
		return nil, err
	}
	_, err := invoke(env, p.artifact, contract, msg.Data)
	return nil, err
}

func checkPayable(art *Artifact, data []byte) error {
	if len(data) < 4 {
		return nil
	}
	method, err := art.ABI.MethodById(data[:4])
	if err != nil {
		return nil
	}
	if !method.IsPayable() {
		return fmt.Errorf("%w: %s", ErrNotPayable, method.Name)
	}
	return nil
}

// invoke dispatches ABI calldata to a native contract and encodes its results.
func invoke(env *Env, art *Artifact, contract Contract, data []byte) ([]byte, error) {
	if len(data) == 0 {
		r, ok := contract.(Receiver)
		if !ok {
			return nil, ErrNoFallback
		}
		return nil, r.Receive(env)
	}
	if len(data) < 4 {
		return nil, errors.New("calldata shorter than a function selector")
	}
	method, err := art.ABI.MethodById(data[:4])
	if err != nil {
		return nil, fmt.Errorf("%s: unknown function selector %x", art.Name, data[:4])
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, fmt.Errorf("decode %s args: %w", method.Name, err)
	}
	outs, err := contract.Invoke(env, method.Name, args)
	if err != nil {
		return nil, err
	}
	return packOutputs(method, outs)
}

func packOutputs(method *abi.Method, outs []any) ([]byte, error) {
	if len(method.Outputs) == 0 {
		return nil, nil
	}
	packed, err := method.Outputs.Pack(outs...)
	if err != nil {
		return nil, fmt.Errorf("encode %s results: %w", method.Name, err)
	}
	return packed, nil
}

// Call executes msg against a copy of the latest state and returns the
// ABI-encoded result. Nothing is mined and no gas is charged.
func (c *Chain) Call(ctx context.Context, msg Message) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if msg.To == nil {
		return nil, errors.New("call requires a destination address")
	}
	if msg.Value == nil {
		msg.Value = new(big.Int)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	contract, ok := c.state.Contract(*msg.To)
	if !ok {
		return nil, nil
	}
	art, err := c.registry.Lookup(contract.Artifact())
	if err != nil {
		return nil, err
	}
	exec := c.state.Clone()
	if err := exec.TransferEther(msg.From, *msg.To, msg.Value); err != nil {
		return nil, err
	}
	contract, _ = exec.Contract(*msg.To)
	var logs []*types.Log
	env := &Env{
		Sender: msg.From,
		Self:   *msg.To,
		Value:  msg.Value,
		state:  exec,
		now:    c.clock.Now(),
		block:  c.head().Number + 1,
		logs:   &logs,
	}
	out, err := invoke(env, art, contract, msg.Data)
	if err != nil {
		return nil, revert(err)
	}
	return out, nil
}

// EstimateGas returns the gas msg would use if mined now. It fails with a
// *RevertError when execution would fail.
func (c *Chain) EstimateGas(ctx context.Context, msg Message) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if msg.Value == nil {
		msg.Value = new(big.Int)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	p, err := c.plan(c.state, msg)
	if err != nil {
		return 0, err
	}
	var logs []*types.Log
	env := &Env{
		Sender: msg.From,
		Value:  msg.Value,
		state:  c.state.Clone(),
		now:    c.clock.Now(),
		block:  c.head().Number + 1,
		logs:   &logs,
	}
	if _, err := c.execute(env, msg, p, c.state.Nonce(msg.From)); err != nil {
		return 0, revert(err)
	}
	return p.gas, nil
}

// Logs returns the logs of mined transactions matching q, in chain order.
func (c *Chain) Logs(q LogQuery) []*types.Log {
	c.mu.RLock()
	defer c.mu.RUnlock()

	from, to := uint64(0), c.head().Number
	if q.FromBlock != nil {
		from = *q.FromBlock
	}
	if q.ToBlock != nil && *q.ToBlock < to {
		to = *q.ToBlock
	}
	var out []*types.Log
	for n := from; n <= to && n < uint64(len(c.blocks)); n++ {
		for _, h := range c.blocks[n].Transactions {
			r, ok := c.receipts[h]
			if !ok {
				continue
			}
			for _, l := range r.Logs {
				if matchLog(l, q) {
					out = append(out, l)
				}
			}
		}
	}
	return out
}

func matchLog(l *types.Log, q LogQuery) bool {
	if len(q.Addresses) > 0 {
		found := false
		for _, a := range q.Addresses {
			if a == l.Address {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(q.Topics) > len(l.Topics) {
		return false
	}
	for i, options := range q.Topics {
		if len(options) == 0 {
			continue
		}
		found := false
		for _, t := range options {
			if t == l.Topics[i] {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Snapshot records the current state and returns its id. Ids start at 1.
func (c *Chain) Snapshot() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshots = append(c.snapshots, snapshot{
		state:  c.state.Clone(),
		offset: c.clock.Offset(),
		height: c.head().Number,
	})
	metrics.SnapshotsTotal.WithLabelValues("snapshot").Inc()
	return uint64(len(c.snapshots))
}

// Revert restores the state recorded by snapshot id, including the clock
// adjustment and block height. The snapshot and every later one are consumed.
// It reports false for unknown ids.
func (c *Chain) Revert(id uint64) bool {
	c.mu.Lock()
	if id == 0 || id > uint64(len(c.snapshots)) {
		c.mu.Unlock()
		return false
	}
	s := c.snapshots[id-1]
	c.snapshots = c.snapshots[:id-1]
	c.state = s.state
	c.clock.setOffset(s.offset)
	for _, b := range c.blocks[s.height+1:] {
		for _, h := range b.Transactions {
			delete(c.txs, h)
			delete(c.receipts, h)
		}
	}
	c.blocks = c.blocks[:s.height+1]
	observers := c.observers
	c.mu.Unlock()

	c.revision.Add(1)
	metrics.SnapshotsTotal.WithLabelValues("revert").Inc()
	metrics.BlockHeight.Set(float64(s.height))
	metrics.TimeOffsetSeconds.Set(s.offset.Seconds())
	c.logger.Debug("reverted to snapshot", zap.Uint64("id", id), zap.Uint64("block", s.height))

	for _, o := range observers {
		if ro, ok := o.(RevertObserver); ok {
			ro.Reverted(context.Background(), id)
		}
	}
	return true
}

// IncreaseTime moves the chain clock forward and returns the total adjustment.
func (c *Chain) IncreaseTime(d time.Duration) time.Duration {
	total := c.clock.Increase(d)
	c.revision.Add(1)
	metrics.TimeOffsetSeconds.Set(total.Seconds())
	return total
}

// Mine mines an empty block at the current chain time.
func (c *Chain) Mine() *Block {
	c.mu.Lock()
	defer c.mu.Unlock()
	parent := c.head()
	b := c.newBlock(parent.Hash, parent.Number+1, c.clock.Now(), nil, 0)
	c.blocks = append(c.blocks, b)
	c.revision.Add(1)
	metrics.BlockHeight.Set(float64(b.Number))
	return b
}

// Revision changes whenever the chain state changes. It is used to detect
// unsaved changes.
func (c *Chain) Revision() uint64 {
	return c.revision.Load()
}

func (c *Chain) head() *Block {
	return c.blocks[len(c.blocks)-1]
}

func (c *Chain) newBlock(parent common.Hash, number uint64, ts time.Time, txs []common.Hash, gasUsed uint64) *Block {
	if txs == nil {
		txs = []common.Hash{}
	}
	return &Block{
		Number:       number,
		Hash:         blockHash(parent, number, ts, txs),
		ParentHash:   parent,
		Time:         ts,
		GasLimit:     c.blockGasLimit,
		GasUsed:      gasUsed,
		Transactions: txs,
	}
}

func txKind(msg Message) string {
	switch {
	case msg.To == nil:
		return "deploy"
	case len(msg.Data) == 0:
		return "transfer"
	default:
		return "call"
	}
}
