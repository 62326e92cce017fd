package service

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/chainsafe/red-crowdfund/pkg/auth"
)

const serviceName = "CrowdfundService"

// logService wraps Service with automatic logging of all method calls
type logService struct {
	svc    Service
	logger *zap.Logger
}

// NewLog creates a logging decorator for the crowdfund Service.
// Queries are logged at debug level, admin operations at info level with the caller.
func NewLog(svc Service, logger *zap.Logger) Service {
	return &logService{
		svc:    svc,
		logger: logger,
	}
}

// query logs a read-only call when it fails or, at debug level, when it completes.
func (ls *logService) query(method string, start time.Time, err error, fields ...zap.Field) {
	fields = append([]zap.Field{
		zap.String("service", serviceName),
		zap.String("method", method),
		zap.Duration("duration", time.Since(start)),
	}, fields...)
	if err != nil {
		ls.logger.Error(method+" failed", append(fields, zap.Error(err))...)
		return
	}
	ls.logger.Debug(method+" completed", fields...)
}

// admin logs a state changing call together with who made it.
func (ls *logService) admin(ctx context.Context, method string, start time.Time, err error, fields ...zap.Field) {
	fields = append([]zap.Field{
		zap.String("service", serviceName),
		zap.String("method", method),
		zap.String("caller", auth.Caller(ctx)),
		zap.Duration("duration", time.Since(start)),
	}, fields...)
	if err != nil {
		ls.logger.Error(method+" failed", append(fields, zap.Error(err))...)
		return
	}
	ls.logger.Info(method+" completed", fields...)
}

func (ls *logService) Status(ctx context.Context) (resp *Status, err error) {
	start := time.Now()
	defer func() {
		if err != nil {
			ls.query("Status", start, err)
			return
		}
		ls.query("Status", start, nil,
			zap.String("phase", resp.Phase),
			zap.Uint64("block", resp.BlockNumber),
		)
	}()
	return ls.svc.Status(ctx)
}

func (ls *logService) Holder(ctx context.Context, addr common.Address) (resp *Holder, err error) {
	start := time.Now()
	defer func() {
		ls.query("Holder", start, err, zap.String("address", addr.Hex()))
	}()
	return ls.svc.Holder(ctx, addr)
}

func (ls *logService) Allowance(ctx context.Context, owner, spender common.Address) (resp *Allowance, err error) {
	start := time.Now()
	defer func() {
		ls.query("Allowance", start, err,
			zap.String("owner", owner.Hex()),
			zap.String("spender", spender.Hex()),
		)
	}()
	return ls.svc.Allowance(ctx, owner, spender)
}

func (ls *logService) Snapshot(ctx context.Context) (resp *SnapshotResponse, err error) {
	start := time.Now()
	defer func() {
		if err != nil {
			ls.admin(ctx, "Snapshot", start, err)
			return
		}
		ls.admin(ctx, "Snapshot", start, nil, zap.Uint64("snapshot_id", resp.ID))
	}()
	return ls.svc.Snapshot(ctx)
}

func (ls *logService) Revert(ctx context.Context, id uint64) (resp *RevertResponse, err error) {
	start := time.Now()
	defer func() {
		if err != nil {
			ls.admin(ctx, "Revert", start, err, zap.Uint64("snapshot_id", id))
			return
		}
		ls.admin(ctx, "Revert", start, nil,
			zap.Uint64("snapshot_id", id),
			zap.Bool("reverted", resp.Reverted),
		)
	}()
	return ls.svc.Revert(ctx, id)
}

func (ls *logService) IncreaseTime(ctx context.Context, d time.Duration) (resp *TimeResponse, err error) {
	start := time.Now()
	defer func() {
		if err != nil {
			ls.admin(ctx, "IncreaseTime", start, err, zap.Duration("by", d))
			return
		}
		ls.admin(ctx, "IncreaseTime", start, nil,
			zap.Duration("by", d),
			zap.Int64("offset_seconds", resp.OffsetSeconds),
		)
	}()
	return ls.svc.IncreaseTime(ctx, d)
}

func (ls *logService) Mine(ctx context.Context) (resp *MineResponse, err error) {
	start := time.Now()
	defer func() {
		if err != nil {
			ls.admin(ctx, "Mine", start, err)
			return
		}
		ls.admin(ctx, "Mine", start, nil, zap.Uint64("block", resp.BlockNumber))
	}()
	return ls.svc.Mine(ctx)
}
