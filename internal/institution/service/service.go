package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"bursar/internal/audit"
	"bursar/internal/institution/access"
	"bursar/internal/institution/metrics"
	"bursar/internal/institution/models"
	"bursar/internal/institution/secrets"
	id "bursar/pkg/domain"
	dErrors "bursar/pkg/domain-errors"
	"bursar/pkg/platform/sentinel"
	"bursar/pkg/requestcontext"
	"bursar/pkg/token"
)

type InstitutionStore interface {
	Create(ctx context.Context, inst *models.Institution) error
	CreateIfOwnerAvailable(ctx context.Context, inst *models.Institution) error
	FindByID(ctx context.Context, instID id.InstitutionID) (*models.Institution, error)
	FindByOwner(ctx context.Context, owner id.Principal) (*models.Institution, error)
	Update(ctx context.Context, inst *models.Institution) error
}

type CapabilityStore interface {
	Create(ctx context.Context, c *models.Capability) error
	FindByID(ctx context.Context, capID id.CapabilityID) (*models.Capability, error)
}

type MemberStore interface {
	Create(ctx context.Context, m *models.Member) error
	FindByID(ctx context.Context, instID id.InstitutionID, memberID id.MemberID) (*models.Member, error)
	ListByInstitution(ctx context.Context, instID id.InstitutionID, kinds []models.MemberKind) ([]*models.Member, error)
	Update(ctx context.Context, m *models.Member) error
	Delete(ctx context.Context, instID id.InstitutionID, memberID id.MemberID) error
}

type FeeStore interface {
	Create(ctx context.Context, f *models.Fee) error
	FindByID(ctx context.Context, instID id.InstitutionID, feeID id.FeeID) (*models.Fee, error)
	ListByInstitution(ctx context.Context, instID id.InstitutionID, memberID *id.MemberID) ([]*models.Fee, error)
	CountByMember(ctx context.Context, instID id.InstitutionID, memberID id.MemberID) (int, error)
	Delete(ctx context.Context, instID id.InstitutionID, feeID id.FeeID) error
}

type ItemStore interface {
	Create(ctx context.Context, it *models.Item) error
	FindByID(ctx context.Context, instID id.InstitutionID, itemID id.ItemID) (*models.Item, error)
	ListByInstitution(ctx context.Context, instID id.InstitutionID, kinds []models.ItemKind) ([]*models.Item, error)
	Update(ctx context.Context, it *models.Item) error
	Delete(ctx context.Context, instID id.InstitutionID, itemID id.ItemID) error
	UnassignMember(ctx context.Context, instID id.InstitutionID, memberID id.MemberID, now time.Time) (int, error)
}

// Stores groups the stores a transaction may touch.
type Stores struct {
	Institutions InstitutionStore
	Capabilities CapabilityStore
	Members      MemberStore
	Fees         FeeStore
	Items        ItemStore
}

// InstitutionCache caches institution lookups. Get returns
// sentinel.ErrNotFound on a miss. Set replaces the cached value and is used
// for committed writes; Add fills a miss and never replaces a value.
type InstitutionCache interface {
	Get(ctx context.Context, instID id.InstitutionID) (*models.Institution, error)
	Set(ctx context.Context, inst *models.Institution) error
	Add(ctx context.Context, inst *models.Institution) error
	Invalidate(ctx context.Context, instID id.InstitutionID) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// DepositPolicy decides who may fund an institution.
type DepositPolicy string

const (
	// DepositOpen lets any caller deposit.
	DepositOpen DepositPolicy = "open"
	// DepositOwner requires the institution capability.
	DepositOwner DepositPolicy = "owner"
)

// Service implements the registry and the ledger for institutions.
//
// Every mutation runs inside exactly one StoreTx.RunInTx call keyed by the
// institution, and performs all of its checks before its first write. Audit
// events, cache invalidation and metrics happen after commit.
type Service struct {
	stores         Stores
	tx             StoreTx
	access         *access.Controller
	hasher         secrets.Hasher
	cache          InstitutionCache
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer

	depositPolicy          DepositPolicy
	oneInstitutionPerOwner bool
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithCache(c InstitutionCache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithTx replaces the default in-memory transaction runner.
func WithTx(tx StoreTx) Option {
	return func(s *Service) {
		s.tx = tx
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

func WithDepositPolicy(p DepositPolicy) Option {
	return func(s *Service) {
		s.depositPolicy = p
	}
}

// WithOneInstitutionPerOwner toggles the owner uniqueness rule (default on).
func WithOneInstitutionPerOwner(enabled bool) Option {
	return func(s *Service) {
		s.oneInstitutionPerOwner = enabled
	}
}

// WithCapabilityHashCost sets the bcrypt cost for capability secrets.
func WithCapabilityHashCost(cost int) Option {
	return func(s *Service) {
		s.hasher = secrets.NewHasher(cost)
	}
}

// New constructs a Service over stores.
func New(stores Stores, opts ...Option) *Service {
	s := &Service{
		stores:                 stores,
		access:                 access.NewController(stores.Capabilities),
		hasher:                 secrets.NewHasher(0),
		depositPolicy:          DepositOpen,
		oneInstitutionPerOwner: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		s.tx = NewShardedTx(stores)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer("bursar/institution")
	}
	return s
}

// begin opens a span and returns a finisher that records the outcome.
func (s *Service) begin(ctx context.Context, op string) (context.Context, func(*error)) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "institution."+op)
	return ctx, func(errp *error) {
		if err := *errp; err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
		}
		span.End()
		if s.metrics != nil {
			s.metrics.ObserveDuration(op, start)
		}
	}
}

// committed runs the post-commit side effects of a mutation. inst is the
// committed institution when the mutation changed it, nil otherwise.
func (s *Service) committed(ctx context.Context, event audit.Event, inst *models.Institution) {
	if inst != nil {
		s.writeThrough(ctx, inst)
	}

	event.RequestID = requestcontext.RequestID(ctx)
	event.Timestamp = requestcontext.Now(ctx)
	s.logger.InfoContext(ctx, string(event.Action),
		"event", string(event.Action),
		"log_type", "audit",
		"institution_id", event.InstitutionID.String(),
		"actor", event.Actor.String(),
		"request_id", event.RequestID,
	)
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish audit event",
			"action", string(event.Action),
			"institution_id", event.InstitutionID.String(),
			"error", err,
		)
	}
}

// writeThrough caches the committed institution. When the write fails the
// entry is dropped so readers go back to the store.
func (s *Service) writeThrough(ctx context.Context, inst *models.Institution) {
	if s.cache == nil {
		return
	}
	err := s.cache.Set(ctx, inst)
	if err == nil {
		return
	}
	s.logger.WarnContext(ctx, "institution cache write failed",
		"institution_id", inst.ID.String(),
		"error", err,
	)
	if err := s.cache.Invalidate(ctx, inst.ID); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate institution cache",
			"institution_id", inst.ID.String(),
			"error", err,
		)
	}
}

func (s *Service) observeMovement(op string, amount token.Amount) {
	if s.metrics != nil {
		s.metrics.ObserveMovement(op, amount)
	}
}

// loadInstitution reads through the store handed to a transaction.
func loadInstitution(ctx context.Context, st Stores, instID id.InstitutionID) (*models.Institution, error) {
	inst, err := st.Institutions.FindByID(ctx, instID)
	if err != nil {
		return nil, translateStoreErr(err, "institution not found", "failed to load institution")
	}
	return inst, nil
}

func loadMember(ctx context.Context, st Stores, instID id.InstitutionID, memberID id.MemberID) (*models.Member, error) {
	m, err := st.Members.FindByID(ctx, instID, memberID)
	if err != nil {
		return nil, translateStoreErr(err, "member not found", "failed to load member")
	}
	return m, nil
}

// translateStoreErr maps store sentinels onto domain errors.
func translateStoreErr(err error, notFound, internal string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, notFound)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, internal)
}

// validationErr converts model invariant violations into validation errors
// for the API, passing other errors through.
func validationErr(err error) error {
	var de *dErrors.Error
	if errors.As(err, &de) && (de.Code == dErrors.CodeInvariantViolation || de.Code == dErrors.CodeInvalidInput) {
		return dErrors.New(dErrors.CodeValidation, de.Message)
	}
	return err
}

// internalErr wraps unexpected failures while keeping coded domain errors.
func internalErr(err error, msg string) error {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}
