package service

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/chainsafe/red-crowdfund/pkg/app/errors"
	apphttp "github.com/chainsafe/red-crowdfund/pkg/app/http"
	"github.com/chainsafe/red-crowdfund/pkg/auth"
	"github.com/chainsafe/red-crowdfund/pkg/chain"
)

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service Service
	logger  *zap.Logger
}

// RegisterRoutes registers the crowdfund endpoints on the given chi router.
// Admin endpoints are only registered when adminAuth is not nil.
func RegisterRoutes(r chi.Router, service Service, adminAuth func(http.Handler) http.Handler, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Get("/status", apphttp.HandleError(h.status))
	r.Get("/holders/{address}", apphttp.HandleError(h.holder))
	r.Get("/allowances/{owner}/{spender}", apphttp.HandleError(h.allowance))

	if adminAuth == nil {
		return
	}
	r.Route("/admin", func(r chi.Router) {
		r.Use(adminAuth)
		r.Post("/snapshot", apphttp.HandleError(h.snapshot))
		r.Post("/revert", apphttp.HandleError(h.revert))
		r.Post("/increase-time", apphttp.HandleError(h.increaseTime))
		r.Post("/mine", apphttp.HandleError(h.mine))
	})
}

// RevertRequest selects the snapshot to revert to.
type RevertRequest struct {
	ID uint64 `json:"id"`
}

// IncreaseTimeRequest moves the chain clock forward by Seconds.
type IncreaseTimeRequest struct {
	Seconds int64 `json:"seconds"`
}

func (h *HTTP) status(w http.ResponseWriter, r *http.Request) error {
	resp, err := h.service.Status(r.Context())
	if err != nil {
		return err
	}
	h.writeJSON(w, http.StatusOK, resp)
	return nil
}

func (h *HTTP) holder(w http.ResponseWriter, r *http.Request) error {
	addr, err := addressParam(r, "address")
	if err != nil {
		return err
	}
	resp, err := h.service.Holder(r.Context(), addr)
	if err != nil {
		return err
	}
	h.writeJSON(w, http.StatusOK, resp)
	return nil
}

func (h *HTTP) allowance(w http.ResponseWriter, r *http.Request) error {
	owner, err := addressParam(r, "owner")
	if err != nil {
		return err
	}
	spender, err := addressParam(r, "spender")
	if err != nil {
		return err
	}
	resp, err := h.service.Allowance(r.Context(), owner, spender)
	if err != nil {
		return err
	}
	h.writeJSON(w, http.StatusOK, resp)
	return nil
}

func (h *HTTP) snapshot(w http.ResponseWriter, r *http.Request) error {
	resp, err := h.service.Snapshot(r.Context())
	if err != nil {
		return err
	}
	h.writeJSON(w, http.StatusOK, resp)
	return nil
}

func (h *HTTP) revert(w http.ResponseWriter, r *http.Request) error {
	var req RevertRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	if req.ID == 0 {
		return apperrors.BadRequestError(nil, "snapshot id required")
	}
	resp, err := h.service.Revert(r.Context(), req.ID)
	if err != nil {
		return err
	}
	if !resp.Reverted {
		return apperrors.ResourceNotFoundError(nil, "unknown snapshot")
	}
	h.writeJSON(w, http.StatusOK, resp)
	return nil
}

func (h *HTTP) increaseTime(w http.ResponseWriter, r *http.Request) error {
	var req IncreaseTimeRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	if req.Seconds <= 0 {
		return apperrors.BadRequestError(nil, "seconds must be positive")
	}
	d, err := chain.SecondsToDuration(uint64(req.Seconds))
	if err != nil {
		return apperrors.BadRequestError(err, "seconds out of range")
	}
	resp, err := h.service.IncreaseTime(r.Context(), d)
	if err != nil {
		return err
	}
	h.writeJSON(w, http.StatusOK, resp)
	return nil
}

func (h *HTTP) mine(w http.ResponseWriter, r *http.Request) error {
	resp, err := h.service.Mine(r.Context())
	if err != nil {
		return err
	}
	h.writeJSON(w, http.StatusOK, resp)
	return nil
}

func addressParam(r *http.Request, name string) (common.Address, error) {
	raw := chi.URLParam(r, name)
	if !auth.ValidateEVMAddress(raw) {
		return common.Address{}, apperrors.BadRequestError(nil, "invalid "+name)
	}
	return common.HexToAddress(raw), nil
}

func decodeBody(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20)) // 1MB limit
	if err != nil {
		return apperrors.BadRequestError(err, "failed to read request")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return apperrors.BadRequestError(err, "invalid JSON")
	}
	return nil
}

func (h *HTTP) writeJSON(w http.ResponseWriter, status int, data any) {
	if err := apphttp.WriteJSON(w, status, data); err != nil {
		h.logger.Warn("failed to write response", zap.Error(err))
	}
}
