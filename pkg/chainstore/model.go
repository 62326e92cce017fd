package chainstore

import (
	"encoding/json"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/chainsafe/red-crowdfund/pkg/artifact"
)

// DeploymentDao is a data access object that maps directly to the 'deployments' table in PostgreSQL.
type DeploymentDao struct {
	bun.BaseModel    `bun:"table:deployments,alias:d"`
	ID               uuid.UUID      `bun:"id,pk,type:uuid"`
	ChainID          int64          `bun:"chain_id,notnull"`
	Deployer         string         `bun:"deployer,notnull,type:varchar(42)"`
	TokenAddress     string         `bun:"token_address,notnull,type:varchar(42)"`
	CrowdfundAddress string         `bun:"crowdfund_address,notnull,type:varchar(42)"`
	ICOStart         time.Time      `bun:"ico_start,notnull"`
	GasUsed          int64          `bun:"gas_used,notnull"`
	CostWei          string         `bun:"cost_wei,notnull,type:numeric(78,0)"`
	CreatedAt        time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	Artifacts        []*ArtifactDao `bun:"rel:has-many,join:id=deployment_id"`
}

// ArtifactDao is a data access object that maps directly to the 'artifacts' table in PostgreSQL.
type ArtifactDao struct {
	bun.BaseModel `bun:"table:artifacts,alias:a"`
	DeploymentID  uuid.UUID       `bun:"deployment_id,pk,type:uuid"`
	Name          string          `bun:"name,pk,type:varchar(64)"`
	Address       string          `bun:"address,notnull,type:varchar(42)"`
	JSONInterface json.RawMessage `bun:"json_interface,notnull,type:jsonb"`
	FromAddress   string          `bun:"from_address,notnull,type:varchar(42)"`
	Gas           int64           `bun:"gas,notnull"`
}

// TransactionDao is a data access object that maps directly to the 'transactions' table in PostgreSQL.
type TransactionDao struct {
	bun.BaseModel   `bun:"table:transactions,alias:t"`
	TxHash          string    `bun:"tx_hash,pk,type:varchar(66)"`
	BlockNumber     int64     `bun:"block_number,notnull"`
	BlockHash       string    `bun:"block_hash,notnull,type:varchar(66)"`
	FromAddress     string    `bun:"from_address,notnull,type:varchar(42)"`
	ToAddress       *string   `bun:"to_address,type:varchar(42)"`
	ContractAddress *string   `bun:"contract_address,type:varchar(42)"`
	Nonce           int64     `bun:"nonce,notnull"`
	ValueWei        string    `bun:"value_wei,notnull,type:numeric(78,0)"`
	Method          string    `bun:"method,notnull,type:varchar(64)"`
	GasUsed         int64     `bun:"gas_used,notnull"`
	Status          int16     `bun:"status,notnull"`
	ErrorMessage    *string   `bun:"error_message,type:text"`
	LogCount        int       `bun:"log_count,notnull"`
	MinedAt         time.Time `bun:"mined_at,notnull"`
}

func toDeploymentDao(d *Deployment) *DeploymentDao {
	dao := &DeploymentDao{
		ID:               d.ID,
		ChainID:          int64(d.ChainID),
		Deployer:         d.Deployer.Hex(),
		TokenAddress:     d.Token.Hex(),
		CrowdfundAddress: d.Crowdfund.Hex(),
		ICOStart:         d.ICOStart.UTC(),
		GasUsed:          int64(d.GasUsed),
		CostWei:          d.CostWei,
	}
	for _, a := range d.Artifacts {
		dao.Artifacts = append(dao.Artifacts, &ArtifactDao{
			DeploymentID:  d.ID,
			Name:          a.Name,
			Address:       a.Address.Hex(),
			JSONInterface: a.JSONInterface,
			FromAddress:   a.From.Hex(),
			Gas:           int64(a.Gas),
		})
	}
	return dao
}

func toDeployment(dao *DeploymentDao) *Deployment {
	d := &Deployment{
		ID:        dao.ID,
		ChainID:   uint64(dao.ChainID),
		Deployer:  common.HexToAddress(dao.Deployer),
		Token:     common.HexToAddress(dao.TokenAddress),
		Crowdfund: common.HexToAddress(dao.CrowdfundAddress),
		ICOStart:  dao.ICOStart.UTC(),
		GasUsed:   uint64(dao.GasUsed),
		CostWei:   dao.CostWei,
		CreatedAt: dao.CreatedAt,
	}
	for _, a := range dao.Artifacts {
		d.Artifacts = append(d.Artifacts, &artifact.Descriptor{
			Name:          a.Name,
			Address:       common.HexToAddress(a.Address),
			JSONInterface: a.JSONInterface,
			From:          common.HexToAddress(a.FromAddress),
			Gas:           uint64(a.Gas),
		})
	}
	return d
}

func toTransactionDao(tx *TxRecord) *TransactionDao {
	dao := &TransactionDao{
		TxHash:      tx.Hash.Hex(),
		BlockNumber: int64(tx.BlockNumber),
		BlockHash:   tx.BlockHash.Hex(),
		FromAddress: tx.From.Hex(),
		Nonce:       int64(tx.Nonce),
		ValueWei:    tx.ValueWei,
		Method:      tx.Method,
		GasUsed:     int64(tx.GasUsed),
		Status:      int16(tx.Status),
		LogCount:    tx.LogCount,
		MinedAt:     tx.MinedAt.UTC(),
	}
	if dao.ValueWei == "" {
		dao.ValueWei = "0"
	}
	if tx.To != nil {
		to := tx.To.Hex()
		dao.ToAddress = &to
	}
	if tx.ContractAddress != nil {
		created := tx.ContractAddress.Hex()
		dao.ContractAddress = &created
	}
	if tx.Error != "" {
		dao.ErrorMessage = &tx.Error
	}
	return dao
}

func toTxRecord(dao *TransactionDao) *TxRecord {
	tx := &TxRecord{
		Hash:        common.HexToHash(dao.TxHash),
		BlockNumber: uint64(dao.BlockNumber),
		BlockHash:   common.HexToHash(dao.BlockHash),
		From:        common.HexToAddress(dao.FromAddress),
		Nonce:       uint64(dao.Nonce),
		ValueWei:    dao.ValueWei,
		Method:      dao.Method,
		GasUsed:     uint64(dao.GasUsed),
		Status:      uint64(dao.Status),
		LogCount:    dao.LogCount,
		MinedAt:     dao.MinedAt.UTC(),
	}
	if dao.ToAddress != nil {
		to := common.HexToAddress(*dao.ToAddress)
		tx.To = &to
	}
	if dao.ContractAddress != nil {
		created := common.HexToAddress(*dao.ContractAddress)
		tx.ContractAddress = &created
	}
	if dao.ErrorMessage != nil {
		tx.Error = *dao.ErrorMessage
	}
	return tx
}
