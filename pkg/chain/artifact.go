package chain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/crypto"
)

// Contract is a native contract instance stored in the world state.
//
// Invoke receives ABI-decoded arguments and returns values matching the
// method outputs. Contracts must be JSON serializable so that the chain
// can be persisted to its data directory.
type Contract interface {
	// Artifact is the name of the artifact the contract was created from.
	Artifact() string
	Invoke(env *Env, method string, args []any) ([]any, error)
	Clone() Contract
}

// Receiver is implemented by contracts that accept plain ether transfers.
type Receiver interface {
	Receive(env *Env) error
}

// Constructor creates a contract instance during deployment. env.Self is the
// address the contract is being deployed at.
type Constructor func(env *Env, args []any) (Contract, error)

// Restorer rebuilds a contract from its persisted JSON state.
type Restorer func(state json.RawMessage) (Contract, error)

// Artifact is the deployable form of a contract: its ABI, the creation code
// that identifies it in deployment transactions, and its native implementation.
type Artifact struct {
	Name     string
	ABI      abi.ABI
	RawABI   json.RawMessage
	Bytecode []byte

	// DeployGas and CallGas are the flat execution costs charged on top of
	// intrinsic gas.
	DeployGas uint64
	CallGas   uint64

	New     Constructor
	Restore Restorer
}

// NewArtifact parses rawABI and derives the artifact's creation code from its name.
func NewArtifact(name, rawABI string, ctor Constructor, restore Restorer) (*Artifact, error) {
	parsed, err := abi.JSON(strings.NewReader(rawABI))
	if err != nil {
		return nil, fmt.Errorf("parse %s abi: %w", name, err)
	}
	return &Artifact{
		Name:      name,
		ABI:       parsed,
		RawABI:    json.RawMessage(rawABI),
		Bytecode:  CreationCode(name),
		DeployGas: defaultDeployGas,
		CallGas:   defaultCallGas,
		New:       ctor,
		Restore:   restore,
	}, nil
}

// CreationCode is the 32 byte marker deployment transactions start with for
// the named artifact.
func CreationCode(name string) []byte {
	return crypto.Keccak256([]byte("native-contract:" + name))
}

// DeployData returns the deployment payload: creation code followed by the
// ABI-encoded constructor arguments.
func (a *Artifact) DeployData(args ...any) ([]byte, error) {
	packed, err := a.ABI.Pack("", args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s constructor: %w", a.Name, err)
	}
	return append(append([]byte{}, a.Bytecode...), packed...), nil
}

// Registry holds the artifacts the chain can deploy, keyed by contract name.
type Registry map[string]*Artifact

// NewRegistry indexes artifacts by name.
func NewRegistry(artifacts ...*Artifact) Registry {
	r := make(Registry, len(artifacts))
	for _, a := range artifacts {
		r[a.Name] = a
	}
	return r
}

// Lookup returns the named artifact.
func (r Registry) Lookup(name string) (*Artifact, error) {
	a, ok := r[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownArtifact, name)
	}
	return a, nil
}

// Names lists the registered artifact names in sorted order.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// byCode resolves a deployment payload to its artifact and constructor arguments.
func (r Registry) byCode(data []byte) (*Artifact, []byte, error) {
	for _, a := range r {
		if bytes.HasPrefix(data, a.Bytecode) {
			return a, data[len(a.Bytecode):], nil
		}
	}
	return nil, nil, ErrUnknownArtifact
}
