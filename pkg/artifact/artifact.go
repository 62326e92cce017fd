// Package artifact persists deployed contract descriptors so that tools outside
// the chain process can find the contracts and talk to them.
//
// A descriptor is written to <dir>/<name>.json after deployment and is also
// served over HTTP at /artifacts/<name>.json.
package artifact

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/chainsafe/red-crowdfund/pkg/chain"
)

var (
	// ErrNotFound is returned when no descriptor is stored under a name.
	ErrNotFound    = errors.New("artifact not found")
	ErrInvalidName = errors.New("invalid artifact name")
)

// Descriptor is the persisted form of a deployed contract.
type Descriptor struct {
	Name          string          `json:"name"`
	Address       common.Address  `json:"address"`
	JSONInterface json.RawMessage `json:"jsonInterface"`
	From          common.Address  `json:"from"`
	Gas           uint64          `json:"gas"`
}

// New describes the contract built from art and deployed at addr by from.
func New(art *chain.Artifact, addr, from common.Address, gas uint64) *Descriptor {
	return &Descriptor{
		Name:          art.Name,
		Address:       addr,
		JSONInterface: append(json.RawMessage(nil), art.RawABI...),
		From:          from,
		Gas:           gas,
	}
}

// ABI parses the descriptor's JSON interface.
func (d *Descriptor) ABI() (abi.ABI, error) {
	parsed, err := abi.JSON(bytes.NewReader(d.JSONInterface))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("parse %s interface: %w", d.Name, err)
	}
	return parsed, nil
}

// Validate checks the fields a reader needs.
func (d *Descriptor) Validate() error {
	if d.Name == "" {
		return errors.New("artifact name is required")
	}
	if d.Address == (common.Address{}) {
		return fmt.Errorf("artifact %s has no address", d.Name)
	}
	if len(d.JSONInterface) == 0 {
		return fmt.Errorf("artifact %s has no json interface", d.Name)
	}
	return nil
}
