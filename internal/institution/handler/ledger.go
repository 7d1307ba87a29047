package handler

import (
	"net/http"

	"bursar/pkg/platform/httputil"
	"bursar/pkg/token"
)

func (h *Handler) HandleDeposit(w http.ResponseWriter, r *http.Request) {
	instID, ok := institutionID(w, r)
	if !ok {
		return
	}
	req, ok := decodeJSON[AmountRequest](h, w, r)
	if !ok {
		return
	}
	inst, err := h.service.Deposit(r.Context(), credentials(r), instID, token.Mint(req.Amount))
	if err != nil {
		h.fail(w, r, "deposit", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, inst)
}

// HandleWithdraw drains the whole institution balance.
func (h *Handler) HandleWithdraw(w http.ResponseWriter, r *http.Request) {
	instID, ok := institutionID(w, r)
	if !ok {
		return
	}
	funds, err := h.service.Withdraw(r.Context(), credentials(r), instID)
	if err != nil {
		h.fail(w, r, "withdraw", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FundsResponse{Amount: funds.Value()})
}

func (h *Handler) HandleRefund(w http.ResponseWriter, r *http.Request) {
	instID, ok := institutionID(w, r)
	if !ok {
		return
	}
	req, ok := decodeJSON[AmountRequest](h, w, r)
	if !ok {
		return
	}
	funds, err := h.service.Refund(r.Context(), credentials(r), instID, req.Amount)
	if err != nil {
		h.fail(w, r, "refund", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FundsResponse{Amount: funds.Value()})
}

func (h *Handler) HandlePayMember(w http.ResponseWriter, r *http.Request) {
	instID, ok := institutionID(w, r)
	if !ok {
		return
	}
	memberID, ok := memberID(w, r)
	if !ok {
		return
	}
	req, ok := decodeJSON[AmountRequest](h, w, r)
	if !ok {
		return
	}
	member, err := h.service.PayMember(r.Context(), credentials(r), instID, memberID, req.Amount)
	if err != nil {
		h.fail(w, r, "pay member", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, member)
}

func (h *Handler) HandleWithdrawMember(w http.ResponseWriter, r *http.Request) {
	instID, ok := institutionID(w, r)
	if !ok {
		return
	}
	memberID, ok := memberID(w, r)
	if !ok {
		return
	}
	funds, err := h.service.WithdrawMember(r.Context(), credentials(r), instID, memberID)
	if err != nil {
		h.fail(w, r, "withdraw member", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FundsResponse{Amount: funds.Value()})
}
