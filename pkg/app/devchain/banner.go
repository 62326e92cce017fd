package devchain

import (
	"fmt"
	"io"

	"github.com/chainsafe/red-crowdfund/pkg/deploy"
	"github.com/chainsafe/red-crowdfund/pkg/keys"
	"github.com/chainsafe/red-crowdfund/pkg/units"
)

// PrintAccounts writes the funded accounts, their roles in the deployment and
// their private keys, followed by the HD wallet mnemonic.
func PrintAccounts(w io.Writer, kr *keys.Keyring, roles []deploy.Role, balance string) {
	role := make(map[string]string, len(roles))
	for _, r := range roles {
		role[r.Address.Hex()] = r.Name
	}

	fmt.Fprintln(w, "Available Accounts")
	fmt.Fprintln(w, "==================")
	for _, a := range kr.Accounts() {
		name := role[a.Address.Hex()]
		if name != "" {
			name = " " + name
		}
		fmt.Fprintf(w, "(%d) %s (%s ETH)%s\n", a.Index, a.Address.Hex(), balance, name)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Private Keys")
	fmt.Fprintln(w, "==================")
	for _, a := range kr.Accounts() {
		fmt.Fprintf(w, "(%d) %s\n", a.Index, a.PrivateKeyHex())
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "HD Wallet")
	fmt.Fprintln(w, "==================")
	fmt.Fprintf(w, "Mnemonic:      %s\n", kr.Mnemonic())
	fmt.Fprintf(w, "Base HD Path:  %s/{account_index}\n", kr.BasePath())
}

// PrintDeployment writes the deployed contract addresses and the deployment
// cost.
func PrintDeployment(w io.Writer, res *deploy.Result) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Contracts")
	fmt.Fprintln(w, "==================")
	fmt.Fprintf(w, "REDToken:      %s\n", res.Token.Address.Hex())
	fmt.Fprintf(w, "REDCrowdfund:  %s\n", res.Crowdfund.Address.Hex())
	fmt.Fprintf(w, "ICO start:     %s\n", res.ICOStart.UTC().Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "Gas used:      %d (%s ETH)\n", res.GasUsed(), units.FromWei(res.Cost()))
}
