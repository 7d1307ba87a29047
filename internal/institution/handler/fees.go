package handler

import (
	"net/http"

	"bursar/internal/institution/models"
	id "bursar/pkg/domain"
	"bursar/pkg/platform/httputil"
	"bursar/pkg/token"
)

func (h *Handler) HandleGenerateFee(w http.ResponseWriter, r *http.Request) {
	instID, ok := institutionID(w, r)
	if !ok {
		return
	}
	req, ok := decodeJSON[GenerateFeeRequest](h, w, r)
	if !ok {
		return
	}
	memberID, dueIn, err := req.Validate()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	fee, err := h.service.GenerateFee(r.Context(), credentials(r), instID, memberID, req.Amount, req.Description, dueIn)
	if err != nil {
		h.fail(w, r, "generate fee", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, fee)
}

// HandlePayFee settles a fee. The body amount must equal the fee exactly.
func (h *Handler) HandlePayFee(w http.ResponseWriter, r *http.Request) {
	instID, ok := institutionID(w, r)
	if !ok {
		return
	}
	feeID, ok := feeID(w, r)
	if !ok {
		return
	}
	req, ok := decodeJSON[AmountRequest](h, w, r)
	if !ok {
		return
	}
	member, err := h.service.PayFee(r.Context(), credentials(r), instID, feeID, token.Mint(req.Amount))
	if err != nil {
		h.fail(w, r, "pay fee", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, member)
}

func (h *Handler) HandleGetFee(w http.ResponseWriter, r *http.Request) {
	instID, ok := institutionID(w, r)
	if !ok {
		return
	}
	feeID, ok := feeID(w, r)
	if !ok {
		return
	}
	fee, err := h.service.GetFee(r.Context(), instID, feeID)
	if err != nil {
		h.fail(w, r, "get fee", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fee)
}

// HandleListFees lists unpaid fees, optionally for one ?member_id=.
func (h *Handler) HandleListFees(w http.ResponseWriter, r *http.Request) {
	instID, ok := institutionID(w, r)
	if !ok {
		return
	}
	var member *id.MemberID
	if raw := r.URL.Query().Get("member_id"); raw != "" {
		parsed, err := id.ParseMemberID(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		member = &parsed
	}
	fees, err := h.service.ListFees(r.Context(), instID, member)
	if err != nil {
		h.fail(w, r, "list fees", err)
		return
	}
	if fees == nil {
		fees = []*models.Fee{}
	}
	httputil.WriteJSON(w, http.StatusOK, FeesResponse{Fees: fees})
}
