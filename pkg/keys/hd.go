// Package keys derives the development chain accounts from a BIP39 mnemonic,
// the same way ganache and truffle do, and signs transactions for them.
package keys

import (
	"crypto/ecdsa"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/pbkdf2"
)

// TruffleMnemonic is the well known development mnemonic used by truffle and ganache.
const TruffleMnemonic = "candy maple cake sugar pudding cream honey rich smooth crumble sweet treat"

// DefaultBasePath is the BIP44 Ethereum path accounts are derived under.
const DefaultBasePath = "m/44'/60'/0'/0"

var errInvalidChildKey = errors.New("derived key is invalid")

// Seed returns the BIP39 seed for mnemonic and passphrase.
func Seed(mnemonic, passphrase string) []byte {
	normalized := strings.Join(strings.Fields(mnemonic), " ")
	return pbkdf2.Key([]byte(normalized), []byte("mnemonic"+passphrase), 2048, 64, sha512.New)
}

type extendedKey struct {
	key       []byte
	chainCode []byte
}

func masterKey(seed []byte) (*extendedKey, error) {
	mac := hmac.New(sha512.New, []byte("Bitcoin seed"))
	mac.Write(seed)
	sum := mac.Sum(nil)
	k := new(big.Int).SetBytes(sum[:32])
	if k.Sign() == 0 || k.Cmp(crypto.S256().Params().N) >= 0 {
		return nil, errInvalidChildKey
	}
	return &extendedKey{key: sum[:32], chainCode: sum[32:]}, nil
}

// child derives the BIP32 private child key at index i.
func (k *extendedKey) child(i uint32) (*extendedKey, error) {
	var data []byte
	if i >= 0x80000000 {
		data = append([]byte{0}, k.key...)
	} else {
		priv, err := crypto.ToECDSA(k.key)
		if err != nil {
			return nil, err
		}
		data = crypto.CompressPubkey(&priv.PublicKey)
	}
	var idx [4]byte
	binary.BigEndian.PutUint32(idx[:], i)
	data = append(data, idx[:]...)

	mac := hmac.New(sha512.New, k.chainCode)
	mac.Write(data)
	sum := mac.Sum(nil)

	n := crypto.S256().Params().N
	il := new(big.Int).SetBytes(sum[:32])
	if il.Cmp(n) >= 0 {
		return nil, errInvalidChildKey
	}
	childKey := il.Add(il, new(big.Int).SetBytes(k.key))
	childKey.Mod(childKey, n)
	if childKey.Sign() == 0 {
		return nil, errInvalidChildKey
	}
	return &extendedKey{key: childKey.FillBytes(make([]byte, 32)), chainCode: sum[32:]}, nil
}

// DeriveKey derives the private key at path from seed.
func DeriveKey(seed []byte, path accounts.DerivationPath) (*ecdsa.PrivateKey, error) {
	k, err := masterKey(seed)
	if err != nil {
		return nil, err
	}
	for _, i := range path {
		if k, err = k.child(i); err != nil {
			return nil, fmt.Errorf("derive %s: %w", path, err)
		}
	}
	return crypto.ToECDSA(k.key)
}
