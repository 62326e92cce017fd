package chain

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"
)

// StateFile is the name of the chain dump inside a data directory.
const StateFile = "chain.json"

type accountDump struct {
	Balance *hexutil.Big   `json:"balance"`
	Nonce   hexutil.Uint64 `json:"nonce"`
}

type contractDump struct {
	Artifact string          `json:"artifact"`
	Storage  json.RawMessage `json:"storage"`
}

type chainDump struct {
	ChainID    *hexutil.Big                    `json:"chainId"`
	Genesis    time.Time                       `json:"genesis"`
	TimeOffset int64                           `json:"timeOffset"`
	Blocks     []*Block                        `json:"blocks"`
	Accounts   map[common.Address]accountDump  `json:"accounts"`
	Contracts  map[common.Address]contractDump `json:"contracts"`
}

// Save writes the world state, the blocks and the clock adjustment to path.
// Transactions, receipts and snapshots are not persisted.
func (c *Chain) Save(path string) error {
	c.mu.RLock()
	d := chainDump{
		ChainID:    (*hexutil.Big)(c.chainID),
		Genesis:    c.clock.Genesis(),
		TimeOffset: int64(c.clock.Offset() / time.Second),
		Blocks:     c.blocks,
		Accounts:   make(map[common.Address]accountDump, len(c.state.accounts)),
		Contracts:  make(map[common.Address]contractDump, len(c.state.contracts)),
	}
	for addr, acc := range c.state.accounts {
		d.Accounts[addr] = accountDump{Balance: (*hexutil.Big)(acc.Balance), Nonce: hexutil.Uint64(acc.Nonce)}
	}
	for addr, contract := range c.state.contracts {
		storage, err := json.Marshal(contract)
		if err != nil {
			c.mu.RUnlock()
			return fmt.Errorf("encode contract %s: %w", addr.Hex(), err)
		}
		d.Contracts[addr] = contractDump{Artifact: contract.Artifact(), Storage: storage}
	}
	raw, err := json.MarshalIndent(d, "", "  ")
	c.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encode chain state: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write chain state: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("write chain state: %w", err)
	}
	c.logger.Debug("chain state saved", zap.String("path", path), zap.Uint64("block", d.Blocks[len(d.Blocks)-1].Number))
	return nil
}

// Load replaces the chain state with the dump at path. A missing file is
// reported with an error matching fs.ErrNotExist.
func (c *Chain) Load(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var d chainDump
	if err := json.Unmarshal(raw, &d); err != nil {
		return fmt.Errorf("decode chain state: %w", err)
	}
	if d.ChainID != nil && d.ChainID.ToInt().Cmp(c.chainID) != 0 {
		return fmt.Errorf("chain state %s belongs to chain id %s, not %s", path, d.ChainID.ToInt(), c.chainID)
	}
	if len(d.Blocks) == 0 {
		return fmt.Errorf("chain state %s has no blocks", path)
	}

	state := NewState()
	for addr, acc := range d.Accounts {
		a := state.account(addr)
		if acc.Balance != nil {
			a.Balance.Set(acc.Balance.ToInt())
		}
		a.Nonce = uint64(acc.Nonce)
	}
	for addr, cd := range d.Contracts {
		art, err := c.registry.Lookup(cd.Artifact)
		if err != nil {
			return fmt.Errorf("restore contract %s: %w", addr.Hex(), err)
		}
		if art.Restore == nil {
			return fmt.Errorf("restore contract %s: artifact %s cannot be restored", addr.Hex(), art.Name)
		}
		contract, err := art.Restore(cd.Storage)
		if err != nil {
			return fmt.Errorf("restore contract %s: %w", addr.Hex(), err)
		}
		state.setContract(addr, contract)
	}

	c.mu.Lock()
	c.state = state
	c.blocks = d.Blocks
	c.txs = make(map[common.Hash]*Transaction)
	c.receipts = make(map[common.Hash]*Receipt)
	c.snapshots = nil
	offset := time.Duration(d.TimeOffset) * time.Second
	if d.Genesis.IsZero() {
		c.clock.setOffset(offset)
	} else {
		c.clock.restore(d.Genesis, offset)
	}
	c.mu.Unlock()
	c.revision.Add(1)

	c.logger.Info("chain state loaded",
		zap.String("path", path),
		zap.Int("accounts", len(d.Accounts)),
		zap.Int("contracts", len(d.Contracts)),
		zap.Uint64("block", d.Blocks[len(d.Blocks)-1].Number))
	return nil
}
