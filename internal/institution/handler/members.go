package handler

import (
	"net/http"

	"bursar/internal/institution/models"
	"bursar/pkg/platform/httputil"
)

func (h *Handler) HandleAddMember(w http.ResponseWriter, r *http.Request) {
	instID, ok := institutionID(w, r)
	if !ok {
		return
	}
	req, ok := decodeJSON[AddMemberRequest](h, w, r)
	if !ok {
		return
	}
	member, err := h.service.AddMember(r.Context(), credentials(r), instID, req.Fields())
	if err != nil {
		h.fail(w, r, "add member", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, member)
}

func (h *Handler) HandleGetMember(w http.ResponseWriter, r *http.Request) {
	instID, ok := institutionID(w, r)
	if !ok {
		return
	}
	memberID, ok := memberID(w, r)
	if !ok {
		return
	}
	member, err := h.service.GetMember(r.Context(), instID, memberID)
	if err != nil {
		h.fail(w, r, "get member", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, member)
}

// HandleListMembers accepts repeated ?kind= filters.
func (h *Handler) HandleListMembers(w http.ResponseWriter, r *http.Request) {
	instID, ok := institutionID(w, r)
	if !ok {
		return
	}
	var kinds []models.MemberKind
	for _, raw := range r.URL.Query()["kind"] {
		kind, err := models.ParseMemberKind(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		kinds = append(kinds, kind)
	}
	members, err := h.service.ListMembers(r.Context(), instID, kinds...)
	if err != nil {
		h.fail(w, r, "list members", err)
		return
	}
	if members == nil {
		members = []*models.Member{}
	}
	httputil.WriteJSON(w, http.StatusOK, MembersResponse{Members: members})
}

func (h *Handler) HandleUpdateMember(w http.ResponseWriter, r *http.Request) {
	instID, ok := institutionID(w, r)
	if !ok {
		return
	}
	memberID, ok := memberID(w, r)
	if !ok {
		return
	}
	req, ok := decodeJSON[UpdateMemberRequest](h, w, r)
	if !ok {
		return
	}
	member, err := h.service.UpdateMember(r.Context(), credentials(r), instID, memberID, req.Patch())
	if err != nil {
		h.fail(w, r, "update member", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, member)
}

func (h *Handler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	instID, ok := institutionID(w, r)
	if !ok {
		return
	}
	memberID, ok := memberID(w, r)
	if !ok {
		return
	}
	if err := h.service.RemoveMember(r.Context(), credentials(r), instID, memberID); err != nil {
		h.fail(w, r, "remove member", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
