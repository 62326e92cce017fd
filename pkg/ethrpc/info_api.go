package ethrpc

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// NetAPI serves net_*. A development chain has one node and no peers, and
// its network id is the chain id, as on ganache.
type NetAPI struct {
	server *Server
}

// NewNetAPI creates a new NetAPI instance
func NewNetAPI(server *Server) *NetAPI {
	return &NetAPI{server: server}
}

func (api *NetAPI) Version() string {
	return api.server.chain.ChainID().String()
}

func (api *NetAPI) Listening() bool { return true }

func (api *NetAPI) PeerCount() hexutil.Uint { return 0 }

// Web3API serves web3_*.
type Web3API struct{}

// NewWeb3API creates a new Web3API instance
func NewWeb3API() *Web3API {
	return &Web3API{}
}

func (api *Web3API) ClientVersion() string { return ClientVersion }

// Sha3 returns keccak256(input), which web3 libraries use to derive
// selectors and topics.
func (api *Web3API) Sha3(input hexutil.Bytes) hexutil.Bytes {
	return crypto.Keccak256(input)
}
