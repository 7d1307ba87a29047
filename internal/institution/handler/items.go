package handler

import (
	"net/http"

	"bursar/internal/institution/models"
	"bursar/pkg/platform/httputil"
)

func (h *Handler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	instID, ok := institutionID(w, r)
	if !ok {
		return
	}
	req, ok := decodeJSON[AddItemRequest](h, w, r)
	if !ok {
		return
	}
	fields, err := req.Fields()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	item, err := h.service.AddItem(r.Context(), credentials(r), instID, fields)
	if err != nil {
		h.fail(w, r, "add item", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, item)
}

func (h *Handler) HandleGetItem(w http.ResponseWriter, r *http.Request) {
	instID, ok := institutionID(w, r)
	if !ok {
		return
	}
	itemID, ok := itemID(w, r)
	if !ok {
		return
	}
	item, err := h.service.GetItem(r.Context(), instID, itemID)
	if err != nil {
		h.fail(w, r, "get item", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) HandleListItems(w http.ResponseWriter, r *http.Request) {
	instID, ok := institutionID(w, r)
	if !ok {
		return
	}
	var kinds []models.ItemKind
	for _, raw := range r.URL.Query()["kind"] {
		kind, err := models.ParseItemKind(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		kinds = append(kinds, kind)
	}
	items, err := h.service.ListItems(r.Context(), instID, kinds...)
	if err != nil {
		h.fail(w, r, "list items", err)
		return
	}
	if items == nil {
		items = []*models.Item{}
	}
	httputil.WriteJSON(w, http.StatusOK, ItemsResponse{Items: items})
}

func (h *Handler) HandleUpdateItem(w http.ResponseWriter, r *http.Request) {
	instID, ok := institutionID(w, r)
	if !ok {
		return
	}
	itemID, ok := itemID(w, r)
	if !ok {
		return
	}
	req, ok := decodeJSON[UpdateItemRequest](h, w, r)
	if !ok {
		return
	}
	item, err := h.service.UpdateItem(r.Context(), credentials(r), instID, itemID, req.Patch())
	if err != nil {
		h.fail(w, r, "update item", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) HandleAssignItem(w http.ResponseWriter, r *http.Request) {
	instID, ok := institutionID(w, r)
	if !ok {
		return
	}
	itemID, ok := itemID(w, r)
	if !ok {
		return
	}
	req, ok := decodeJSON[AssignItemRequest](h, w, r)
	if !ok {
		return
	}
	member, err := req.Member()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	item, err := h.service.AssignItem(r.Context(), credentials(r), instID, itemID, member)
	if err != nil {
		h.fail(w, r, "assign item", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) HandleRemoveItem(w http.ResponseWriter, r *http.Request) {
	instID, ok := institutionID(w, r)
	if !ok {
		return
	}
	itemID, ok := itemID(w, r)
	if !ok {
		return
	}
	if err := h.service.RemoveItem(r.Context(), credentials(r), instID, itemID); err != nil {
		h.fail(w, r, "remove item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleInventoryValue reports Σ quantity × unit price over inventory items.
func (h *Handler) HandleInventoryValue(w http.ResponseWriter, r *http.Request) {
	instID, ok := institutionID(w, r)
	if !ok {
		return
	}
	value, err := h.service.InventoryValue(r.Context(), instID)
	if err != nil {
		h.fail(w, r, "inventory value", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, InventoryValueResponse{Value: value})
}
