package keys

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Account is a derived account.
type Account struct {
	Index   int
	Address common.Address
	Path    accounts.DerivationPath
	key     *ecdsa.PrivateKey
}

// PrivateKeyHex returns the private key with a 0x prefix, for wallet import.
func (a Account) PrivateKeyHex() string {
	return hexutil.Encode(crypto.FromECDSA(a.key))
}

// Keyring holds the unlocked accounts of the development chain.
type Keyring struct {
	mnemonic string
	basePath string
	accounts []Account
	byAddr   map[common.Address]int
}

// NewKeyring derives count accounts from mnemonic under basePath.
func NewKeyring(mnemonic, basePath string, count int) (*Keyring, error) {
	if count <= 0 {
		return nil, fmt.Errorf("account count must be positive, got %d", count)
	}
	if basePath == "" {
		basePath = DefaultBasePath
	}
	seed := Seed(mnemonic, "")
	kr := &Keyring{
		mnemonic: mnemonic,
		basePath: basePath,
		accounts: make([]Account, 0, count),
		byAddr:   make(map[common.Address]int, count),
	}
	for i := 0; i < count; i++ {
		path, err := accounts.ParseDerivationPath(fmt.Sprintf("%s/%d", basePath, i))
		if err != nil {
			return nil, fmt.Errorf("invalid base path %q: %w", basePath, err)
		}
		key, err := DeriveKey(seed, path)
		if err != nil {
			return nil, err
		}
		addr := crypto.PubkeyToAddress(key.PublicKey)
		kr.accounts = append(kr.accounts, Account{Index: i, Address: addr, Path: path, key: key})
		kr.byAddr[addr] = i
	}
	return kr, nil
}

// Mnemonic returns the mnemonic the accounts were derived from.
func (k *Keyring) Mnemonic() string { return k.mnemonic }

// BasePath returns the derivation path prefix.
func (k *Keyring) BasePath() string { return k.basePath }

// Accounts returns the accounts in derivation order.
func (k *Keyring) Accounts() []Account {
	return append([]Account(nil), k.accounts...)
}

// Addresses returns the account addresses in derivation order.
func (k *Keyring) Addresses() []common.Address {
	out := make([]common.Address, len(k.accounts))
	for i, a := range k.accounts {
		out[i] = a.Address
	}
	return out
}

// Has reports whether addr is an unlocked account.
func (k *Keyring) Has(addr common.Address) bool {
	_, ok := k.byAddr[addr]
	return ok
}

// SignTx signs tx with the key of from.
func (k *Keyring) SignTx(from common.Address, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	i, ok := k.byAddr[from]
	if !ok {
		return nil, fmt.Errorf("account %s is not unlocked", from.Hex())
	}
	return types.SignTx(tx, types.LatestSignerForChainID(chainID), k.accounts[i].key)
}
