package crowdfund

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Contract names, also used as artifact file names.
const (
	TokenName     = "REDToken"
	CrowdfundName = "REDCrowdfund"
)

// TokenABI is the JSON interface of the RED token contract.
const TokenABI = `[
	{"type":"constructor","inputs":[],"stateMutability":"nonpayable"},
	{"type":"function","name":"name","inputs":[],"outputs":[{"name":"","type":"string"}],"stateMutability":"view"},
	{"type":"function","name":"symbol","inputs":[],"outputs":[{"name":"","type":"string"}],"stateMutability":"view"},
	{"type":"function","name":"decimals","inputs":[],"outputs":[{"name":"","type":"uint8"}],"stateMutability":"view"},
	{"type":"function","name":"totalSupply","inputs":[],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
	{"type":"function","name":"maxSupply","inputs":[],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
	{"type":"function","name":"owner","inputs":[],"outputs":[{"name":"","type":"address"}],"stateMutability":"view"},
	{"type":"function","name":"balanceOf","inputs":[{"name":"_owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
	{"type":"function","name":"allowance","inputs":[{"name":"_owner","type":"address"},{"name":"_spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
	{"type":"function","name":"lockedBalanceOf","inputs":[{"name":"_owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
	{"type":"function","name":"angelAmountRemaining","inputs":[],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
	{"type":"function","name":"angelAmountOf","inputs":[{"name":"_angel","type":"address"}],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
	{"type":"function","name":"phase","inputs":[],"outputs":[{"name":"","type":"uint8"}],"stateMutability":"view"},
	{"type":"function","name":"isEarlyBirdsStage","inputs":[],"outputs":[{"name":"","type":"bool"}],"stateMutability":"view"},
	{"type":"function","name":"isOpen","inputs":[],"outputs":[{"name":"","type":"bool"}],"stateMutability":"view"},
	{"type":"function","name":"isClosed","inputs":[],"outputs":[{"name":"","type":"bool"}],"stateMutability":"view"},
	{"type":"function","name":"crowdfundAddress","inputs":[],"outputs":[{"name":"","type":"address"}],"stateMutability":"view"},
	{"type":"function","name":"foundationAddress","inputs":[],"outputs":[{"name":"","type":"address"}],"stateMutability":"view"},
	{"type":"function","name":"marketingAddress","inputs":[],"outputs":[{"name":"","type":"address"}],"stateMutability":"view"},
	{"type":"function","name":"redTeamAddress","inputs":[],"outputs":[{"name":"","type":"address"}],"stateMutability":"view"},
	{"type":"function","name":"setCrowdfundAddress","inputs":[{"name":"_crowdfund","type":"address"}],"outputs":[],"stateMutability":"nonpayable"},
	{"type":"function","name":"setFoundationAddress","inputs":[{"name":"_foundation","type":"address"}],"outputs":[],"stateMutability":"nonpayable"},
	{"type":"function","name":"setMarketingAddress","inputs":[{"name":"_marketing","type":"address"}],"outputs":[],"stateMutability":"nonpayable"},
	{"type":"function","name":"changeRedTeamAddress","inputs":[{"name":"_team","type":"address"}],"outputs":[],"stateMutability":"nonpayable"},
	{"type":"function","name":"deliverAngelsREDAccounts","inputs":[{"name":"_angels","type":"address[]"},{"name":"_amounts","type":"uint256[]"}],"outputs":[],"stateMutability":"nonpayable"},
	{"type":"function","name":"finalizeEarlyBirds","inputs":[],"outputs":[],"stateMutability":"nonpayable"},
	{"type":"function","name":"releaseMarketingTokens","inputs":[],"outputs":[],"stateMutability":"nonpayable"},
	{"type":"function","name":"releaseRedTeamTokens","inputs":[],"outputs":[],"stateMutability":"nonpayable"},
	{"type":"function","name":"partialUnlockAngelsAccounts","inputs":[{"name":"_angels","type":"address[]"}],"outputs":[],"stateMutability":"nonpayable"},
	{"type":"function","name":"fullUnlockAngelsAccounts","inputs":[{"name":"_angels","type":"address[]"}],"outputs":[],"stateMutability":"nonpayable"},
	{"type":"function","name":"transfer","inputs":[{"name":"_to","type":"address"},{"name":"_value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable"},
	{"type":"function","name":"transferFrom","inputs":[{"name":"_from","type":"address"},{"name":"_to","type":"address"},{"name":"_value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable"},
	{"type":"function","name":"approve","inputs":[{"name":"_spender","type":"address"},{"name":"_value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable"},
	{"type":"function","name":"startCrowdfund","inputs":[],"outputs":[],"stateMutability":"nonpayable"},
	{"type":"function","name":"transferFromCrowdfund","inputs":[{"name":"_to","type":"address"},{"name":"_value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable"},
	{"type":"function","name":"finalizeCrowdfund","inputs":[],"outputs":[],"stateMutability":"nonpayable"},
	{"type":"event","name":"Transfer","inputs":[{"name":"from","type":"address","indexed":true},{"name":"to","type":"address","indexed":true},{"name":"value","type":"uint256","indexed":false}],"anonymous":false},
	{"type":"event","name":"Approval","inputs":[{"name":"owner","type":"address","indexed":true},{"name":"spender","type":"address","indexed":true},{"name":"value","type":"uint256","indexed":false}],"anonymous":false},
	{"type":"event","name":"PhaseChanged","inputs":[{"name":"phase","type":"uint8","indexed":false}],"anonymous":false},
	{"type":"event","name":"AngelDelivered","inputs":[{"name":"angel","type":"address","indexed":true},{"name":"amount","type":"uint256","indexed":false}],"anonymous":false}
]`

// CrowdfundABI is the JSON interface of the RED crowdfund contract.
const CrowdfundABI = `[
	{"type":"constructor","inputs":[{"name":"_token","type":"address"}],"stateMutability":"nonpayable"},
	{"type":"receive","stateMutability":"payable"},
	{"type":"function","name":"RED","inputs":[],"outputs":[{"name":"","type":"address"}],"stateMutability":"view"},
	{"type":"function","name":"owner","inputs":[],"outputs":[{"name":"","type":"address"}],"stateMutability":"view"},
	{"type":"function","name":"wallet","inputs":[],"outputs":[{"name":"","type":"address"}],"stateMutability":"view"},
	{"type":"function","name":"isOpen","inputs":[],"outputs":[{"name":"","type":"bool"}],"stateMutability":"view"},
	{"type":"function","name":"isEarlyBirdsStage","inputs":[],"outputs":[{"name":"","type":"bool"}],"stateMutability":"view"},
	{"type":"function","name":"isPreSaleStage","inputs":[],"outputs":[{"name":"","type":"bool"}],"stateMutability":"view"},
	{"type":"function","name":"whitelisted","inputs":[{"name":"_account","type":"address"}],"outputs":[{"name":"","type":"bool"}],"stateMutability":"view"},
	{"type":"function","name":"startsAt","inputs":[],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
	{"type":"function","name":"openedAt","inputs":[],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
	{"type":"function","name":"endsAt","inputs":[],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
	{"type":"function","name":"icoDuration","inputs":[],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
	{"type":"function","name":"earlyBirdsRate","inputs":[],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
	{"type":"function","name":"openRate","inputs":[],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
	{"type":"function","name":"openCrowdfund","inputs":[],"outputs":[],"stateMutability":"nonpayable"},
	{"type":"function","name":"closeCrowdfund","inputs":[],"outputs":[],"stateMutability":"nonpayable"},
	{"type":"function","name":"whitelistAccounts","inputs":[{"name":"_accounts","type":"address[]"}],"outputs":[],"stateMutability":"nonpayable"},
	{"type":"function","name":"changeWalletAddress","inputs":[{"name":"_wallet","type":"address"}],"outputs":[],"stateMutability":"nonpayable"},
	{"type":"function","name":"setICOPeriod","inputs":[{"name":"_startsAt","type":"uint256"}],"outputs":[],"stateMutability":"nonpayable"},
	{"type":"function","name":"buy","inputs":[],"outputs":[],"stateMutability":"payable"},
	{"type":"event","name":"Purchase","inputs":[{"name":"buyer","type":"address","indexed":true},{"name":"value","type":"uint256","indexed":false},{"name":"tokens","type":"uint256","indexed":false}],"anonymous":false}
]`

var (
	tokenABI     = mustParseABI(TokenABI)
	crowdfundABI = mustParseABI(CrowdfundABI)
)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}
