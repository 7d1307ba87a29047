package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"bursar/internal/institution/access"
	"bursar/internal/institution/models"
	id "bursar/pkg/domain"
	dErrors "bursar/pkg/domain-errors"
	"bursar/pkg/platform/httputil"
	"bursar/pkg/platform/middleware/auth"
	"bursar/pkg/requestcontext"
	"bursar/pkg/token"
)

// HeaderCapability carries the institution capability token.
const HeaderCapability = "X-Capability"

// Service defines the institution operations exposed over HTTP.
type Service interface {
	CreateInstitution(ctx context.Context, creds access.Credentials, fields models.InstitutionFields) (*models.Institution, string, error)
	GetInstitution(ctx context.Context, instID id.InstitutionID) (*models.Institution, error)
	GetInstitutionByOwner(ctx context.Context, owner id.Principal) (*models.Institution, error)
	UpdateInstitution(ctx context.Context, creds access.Credentials, instID id.InstitutionID, patch models.InstitutionPatch) (*models.Institution, error)

	AddMember(ctx context.Context, creds access.Credentials, instID id.InstitutionID, fields models.MemberFields) (*models.Member, error)
	UpdateMember(ctx context.Context, creds access.Credentials, instID id.InstitutionID, memberID id.MemberID, patch models.MemberPatch) (*models.Member, error)
	RemoveMember(ctx context.Context, creds access.Credentials, instID id.InstitutionID, memberID id.MemberID) error
	GetMember(ctx context.Context, instID id.InstitutionID, memberID id.MemberID) (*models.Member, error)
	ListMembers(ctx context.Context, instID id.InstitutionID, kinds ...models.MemberKind) ([]*models.Member, error)

	Deposit(ctx context.Context, creds access.Credentials, instID id.InstitutionID, funds token.Funds) (*models.Institution, error)
	PayMember(ctx context.Context, creds access.Credentials, instID id.InstitutionID, memberID id.MemberID, amount token.Amount) (*models.Member, error)
	Withdraw(ctx context.Context, creds access.Credentials, instID id.InstitutionID) (token.Funds, error)
	Refund(ctx context.Context, creds access.Credentials, instID id.InstitutionID, amount token.Amount) (token.Funds, error)
	WithdrawMember(ctx context.Context, creds access.Credentials, instID id.InstitutionID, memberID id.MemberID) (token.Funds, error)

	GenerateFee(ctx context.Context, creds access.Credentials, instID id.InstitutionID, memberID id.MemberID, amount token.Amount, description string, dueIn time.Duration) (*models.Fee, error)
	PayFee(ctx context.Context, creds access.Credentials, instID id.InstitutionID, feeID id.FeeID, payment token.Funds) (*models.Member, error)
	GetFee(ctx context.Context, instID id.InstitutionID, feeID id.FeeID) (*models.Fee, error)
	ListFees(ctx context.Context, instID id.InstitutionID, memberID *id.MemberID) ([]*models.Fee, error)

	AddItem(ctx context.Context, creds access.Credentials, instID id.InstitutionID, fields models.ItemFields) (*models.Item, error)
	UpdateItem(ctx context.Context, creds access.Credentials, instID id.InstitutionID, itemID id.ItemID, patch models.ItemPatch) (*models.Item, error)
	AssignItem(ctx context.Context, creds access.Credentials, instID id.InstitutionID, itemID id.ItemID, memberID *id.MemberID) (*models.Item, error)
	RemoveItem(ctx context.Context, creds access.Credentials, instID id.InstitutionID, itemID id.ItemID) error
	GetItem(ctx context.Context, instID id.InstitutionID, itemID id.ItemID) (*models.Item, error)
	ListItems(ctx context.Context, instID id.InstitutionID, kinds ...models.ItemKind) ([]*models.Item, error)
	InventoryValue(ctx context.Context, instID id.InstitutionID) (token.Amount, error)
}

// Handler serves the institution API.
type Handler struct {
	service   Service
	logger    *slog.Logger
	validator auth.JWTValidator
}

// New creates an institution Handler. Mutating routes require a bearer
// token checked by validator.
func New(service Service, logger *slog.Logger, validator auth.JWTValidator) *Handler {
	return &Handler{
		service:   service,
		logger:    logger,
		validator: validator,
	}
}

// Register mounts the institution routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Route("/institutions", func(r chi.Router) {
		r.Get("/", h.HandleGetInstitutionByOwner)
		r.Get("/{institutionID}", h.HandleGetInstitution)
		r.Get("/{institutionID}/members", h.HandleListMembers)
		r.Get("/{institutionID}/members/{memberID}", h.HandleGetMember)
		r.Get("/{institutionID}/fees", h.HandleListFees)
		r.Get("/{institutionID}/fees/{feeID}", h.HandleGetFee)
		r.Get("/{institutionID}/items", h.HandleListItems)
		r.Get("/{institutionID}/items/{itemID}", h.HandleGetItem)
		r.Get("/{institutionID}/inventory/value", h.HandleInventoryValue)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(h.validator, h.logger))

			r.Post("/", h.HandleCreateInstitution)
			r.Patch("/{institutionID}", h.HandleUpdateInstitution)
			r.Post("/{institutionID}/deposits", h.HandleDeposit)
			r.Post("/{institutionID}/withdrawals", h.HandleWithdraw)
			r.Post("/{institutionID}/refunds", h.HandleRefund)

			r.Post("/{institutionID}/members", h.HandleAddMember)
			r.Patch("/{institutionID}/members/{memberID}", h.HandleUpdateMember)
			r.Delete("/{institutionID}/members/{memberID}", h.HandleRemoveMember)
			r.Post("/{institutionID}/members/{memberID}/payments", h.HandlePayMember)
			r.Post("/{institutionID}/members/{memberID}/withdrawals", h.HandleWithdrawMember)

			r.Post("/{institutionID}/fees", h.HandleGenerateFee)
			r.Post("/{institutionID}/fees/{feeID}/payments", h.HandlePayFee)

			r.Post("/{institutionID}/items", h.HandleAddItem)
			r.Patch("/{institutionID}/items/{itemID}", h.HandleUpdateItem)
			r.Put("/{institutionID}/items/{itemID}/assignee", h.HandleAssignItem)
			r.Delete("/{institutionID}/items/{itemID}", h.HandleRemoveItem)
		})
	})
}

// credentials combines the authenticated principal with any presented capability.
func credentials(r *http.Request) access.Credentials {
	return access.Credentials{
		Principal:  requestcontext.Principal(r.Context()),
		Capability: strings.TrimSpace(r.Header.Get(HeaderCapability)),
	}
}

// decodeJSON reads the body into T and normalizes it.
func decodeJSON[T any, PT interface {
	*T
	Normalize()
}](h *Handler, w http.ResponseWriter, r *http.Request) (*T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(r.Context(), "failed to decode request",
			"error", err,
			"request_id", requestcontext.RequestID(r.Context()),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON input"))
		return nil, false
	}
	PT(&req).Normalize()
	return &req, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, op+" failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	} else {
		h.logger.WarnContext(ctx, op+" rejected",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	httputil.WriteError(w, err)
}

func institutionID(w http.ResponseWriter, r *http.Request) (id.InstitutionID, bool) {
	instID, err := id.ParseInstitutionID(chi.URLParam(r, "institutionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.InstitutionID{}, false
	}
	return instID, true
}

func memberID(w http.ResponseWriter, r *http.Request) (id.MemberID, bool) {
	memberID, err := id.ParseMemberID(chi.URLParam(r, "memberID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.MemberID{}, false
	}
	return memberID, true
}

func feeID(w http.ResponseWriter, r *http.Request) (id.FeeID, bool) {
	feeID, err := id.ParseFeeID(chi.URLParam(r, "feeID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.FeeID{}, false
	}
	return feeID, true
}

func itemID(w http.ResponseWriter, r *http.Request) (id.ItemID, bool) {
	itemID, err := id.ParseItemID(chi.URLParam(r, "itemID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.ItemID{}, false
	}
	return itemID, true
}
