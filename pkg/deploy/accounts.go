package deploy

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// MinAccounts is the number of accounts the deployment cast needs.
const MinAccounts = 10

// Accounts is the fixed cast of the deployment, taken from the chain's
// accounts in order: deployer, wallet, team, foundation, biz (marketing),
// three investors and two angels.
type Accounts struct {
	Deployer   common.Address
	Wallet     common.Address
	Team       common.Address
	Foundation common.Address
	Biz        common.Address
	Investors  [3]common.Address
	Angels     [2]common.Address
}

// AccountsFrom assigns roles to addrs in chain order.
func AccountsFrom(addrs []common.Address) (Accounts, error) {
	if len(addrs) < MinAccounts {
		return Accounts{}, fmt.Errorf("deployment needs %d accounts, got %d", MinAccounts, len(addrs))
	}
	return Accounts{
		Deployer:   addrs[0],
		Wallet:     addrs[1],
		Team:       addrs[2],
		Foundation: addrs[3],
		Biz:        addrs[4],
		Investors:  [3]common.Address{addrs[5], addrs[6], addrs[7]},
		Angels:     [2]common.Address{addrs[8], addrs[9]},
	}, nil
}

// Roles returns the accounts keyed by role name, for logging.
func (a Accounts) Roles() []Role {
	return []Role{
		{"DEPLOYER", a.Deployer},
		{"WALLET", a.Wallet},
		{"TEAM", a.Team},
		{"FOUNDATION", a.Foundation},
		{"BIZ", a.Biz},
		{"INVESTOR1", a.Investors[0]},
		{"INVESTOR2", a.Investors[1]},
		{"INVESTOR3", a.Investors[2]},
		{"ANGEL1", a.Angels[0]},
		{"ANGEL2", a.Angels[1]},
	}
}

// Role names an account of the deployment cast.
type Role struct {
	Name    string
	Address common.Address
}
