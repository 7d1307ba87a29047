package handler

import (
	"net/http"

	id "bursar/pkg/domain"
	dErrors "bursar/pkg/domain-errors"
	"bursar/pkg/platform/httputil"
	"bursar/pkg/requestcontext"
)

// HandleCreateInstitution registers an institution owned by the caller and
// returns its capability token.
func (h *Handler) HandleCreateInstitution(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[CreateInstitutionRequest](h, w, r)
	if !ok {
		return
	}
	inst, capability, err := h.service.CreateInstitution(r.Context(), credentials(r), req.Fields())
	if err != nil {
		h.fail(w, r, "create institution", err)
		return
	}
	h.logger.InfoContext(r.Context(), "institution created",
		"institution_id", inst.ID.String(),
		"request_id", requestcontext.RequestID(r.Context()),
	)
	httputil.WriteJSON(w, http.StatusCreated, CreateInstitutionResponse{Institution: inst, Capability: capability})
}

func (h *Handler) HandleGetInstitution(w http.ResponseWriter, r *http.Request) {
	instID, ok := institutionID(w, r)
	if !ok {
		return
	}
	inst, err := h.service.GetInstitution(r.Context(), instID)
	if err != nil {
		h.fail(w, r, "get institution", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, inst)
}

// HandleGetInstitutionByOwner resolves ?owner= through the owner index.
func (h *Handler) HandleGetInstitutionByOwner(w http.ResponseWriter, r *http.Request) {
	owner := id.NormalizePrincipal(r.URL.Query().Get("owner"))
	if owner.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "owner query parameter is required"))
		return
	}
	inst, err := h.service.GetInstitutionByOwner(r.Context(), owner)
	if err != nil {
		h.fail(w, r, "get institution by owner", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, inst)
}

func (h *Handler) HandleUpdateInstitution(w http.ResponseWriter, r *http.Request) {
	instID, ok := institutionID(w, r)
	if !ok {
		return
	}
	req, ok := decodeJSON[UpdateInstitutionRequest](h, w, r)
	if !ok {
		return
	}
	inst, err := h.service.UpdateInstitution(r.Context(), credentials(r), instID, req.Patch())
	if err != nil {
		h.fail(w, r, "update institution", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, inst)
}
