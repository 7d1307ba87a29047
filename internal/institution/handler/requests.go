package handler

import (
	"math"
	"strings"
	"time"

	"bursar/internal/institution/models"
	id "bursar/pkg/domain"
	dErrors "bursar/pkg/domain-errors"
	"bursar/pkg/token"
)

type CreateInstitutionRequest struct {
	Kind     string `json:"kind"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Contact  string `json:"contact"`
	Category string `json:"category"`
}

func (r *CreateInstitutionRequest) Normalize() {
	r.Kind = strings.ToLower(strings.TrimSpace(r.Kind))
	r.Name = strings.TrimSpace(r.Name)
	r.Location = strings.TrimSpace(r.Location)
	r.Contact = strings.TrimSpace(r.Contact)
	r.Category = strings.TrimSpace(r.Category)
}

func (r *CreateInstitutionRequest) Fields() models.InstitutionFields {
	return models.InstitutionFields{
		Kind:     models.InstitutionKind(r.Kind),
		Name:     r.Name,
		Location: r.Location,
		Contact:  r.Contact,
		Category: r.Category,
	}
}

// UpdateInstitutionRequest replaces only the fields that are present.
type UpdateInstitutionRequest struct {
	Name     *string `json:"name"`
	Location *string `json:"location"`
	Contact  *string `json:"contact"`
	Category *string `json:"category"`
}

func (r *UpdateInstitutionRequest) Normalize() {
	trimPtr(r.Name)
	trimPtr(r.Location)
	trimPtr(r.Contact)
	trimPtr(r.Category)
}

func (r *UpdateInstitutionRequest) Patch() models.InstitutionPatch {
	return models.InstitutionPatch{
		Name:     r.Name,
		Location: r.Location,
		Contact:  r.Contact,
		Category: r.Category,
	}
}

type AddMemberRequest struct {
	Kind      string `json:"kind"`
	Principal string `json:"principal"`
	Name      string `json:"name"`
	Gender    string `json:"gender"`
	Age       int    `json:"age"`
	Contact   string `json:"contact"`
	Address   string `json:"address"`
	Role      string `json:"role"`
}

func (r *AddMemberRequest) Normalize() {
	r.Kind = strings.ToLower(strings.TrimSpace(r.Kind))
	r.Principal = strings.TrimSpace(r.Principal)
	r.Name = strings.TrimSpace(r.Name)
	r.Gender = strings.ToLower(strings.TrimSpace(r.Gender))
	r.Contact = strings.TrimSpace(r.Contact)
	r.Address = strings.TrimSpace(r.Address)
	r.Role = strings.TrimSpace(r.Role)
}

func (r *AddMemberRequest) Fields() models.MemberFields {
	return models.MemberFields{
		Kind:      models.MemberKind(r.Kind),
		Principal: id.Principal(r.Principal),
		Name:      r.Name,
		Gender:    models.Gender(r.Gender),
		Age:       r.Age,
		Contact:   r.Contact,
		Address:   r.Address,
		Role:      r.Role,
	}
}

// UpdateMemberRequest mixes contact fields, which the member may change, with
// status fields reserved to the owner.
type UpdateMemberRequest struct {
	Name    *string `json:"name"`
	Contact *string `json:"contact"`
	Address *string `json:"address"`
	Status  *string `json:"status"`
	Role    *string `json:"role"`
	Gender  *string `json:"gender"`
	Age     *int    `json:"age"`
}

func (r *UpdateMemberRequest) Normalize() {
	trimPtr(r.Name)
	trimPtr(r.Contact)
	trimPtr(r.Address)
	trimPtr(r.Role)
	lowerPtr(r.Status)
	lowerPtr(r.Gender)
}

func (r *UpdateMemberRequest) Patch() models.MemberPatch {
	p := models.MemberPatch{
		Name:    r.Name,
		Contact: r.Contact,
		Address: r.Address,
		Role:    r.Role,
		Age:     r.Age,
	}
	if r.Status != nil {
		status := models.MemberStatus(*r.Status)
		p.Status = &status
	}
	if r.Gender != nil {
		gender := models.Gender(*r.Gender)
		p.Gender = &gender
	}
	return p
}

// AmountRequest is the body of every balance movement.
type AmountRequest struct {
	Amount token.Amount `json:"amount"`
}

func (r *AmountRequest) Normalize() {}

// maxDueInSeconds is the largest due offset a time.Duration can hold.
const maxDueInSeconds = math.MaxInt64 / int64(time.Second)

type GenerateFeeRequest struct {
	MemberID     string       `json:"member_id"`
	Amount       token.Amount `json:"amount"`
	Description  string       `json:"description"`
	DueInSeconds int64        `json:"due_in_seconds"`
}

func (r *GenerateFeeRequest) Normalize() {
	r.MemberID = strings.TrimSpace(r.MemberID)
	r.Description = strings.TrimSpace(r.Description)
}

func (r *GenerateFeeRequest) Validate() (id.MemberID, time.Duration, error) {
	memberID, err := id.ParseMemberID(r.MemberID)
	if err != nil {
		return id.MemberID{}, 0, err
	}
	if r.DueInSeconds <= 0 {
		return id.MemberID{}, 0, dErrors.New(dErrors.CodeValidation, "due_in_seconds must be positive")
	}
	if r.DueInSeconds > maxDueInSeconds {
		return id.MemberID{}, 0, dErrors.New(dErrors.CodeValidation, "due_in_seconds is too large")
	}
	return memberID, time.Duration(r.DueInSeconds) * time.Second, nil
}

type AddItemRequest struct {
	Kind        string       `json:"kind"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Quantity    uint64       `json:"quantity"`
	UnitPrice   token.Amount `json:"unit_price"`
	ScheduledAt *time.Time   `json:"scheduled_at"`
	AssigneeID  *string      `json:"assignee_id"`
}

func (r *AddItemRequest) Normalize() {
	r.Kind = strings.ToLower(strings.TrimSpace(r.Kind))
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
	trimPtr(r.AssigneeID)
}

func (r *AddItemRequest) Fields() (models.ItemFields, error) {
	assignee, err := parseOptionalMember(r.AssigneeID)
	if err != nil {
		return models.ItemFields{}, err
	}
	return models.ItemFields{
		Kind:        models.ItemKind(r.Kind),
		Name:        r.Name,
		Description: r.Description,
		Quantity:    r.Quantity,
		UnitPrice:   r.UnitPrice,
		ScheduledAt: r.ScheduledAt,
		AssigneeID:  assignee,
	}, nil
}

type UpdateItemRequest struct {
	Name        *string       `json:"name"`
	Description *string       `json:"description"`
	Quantity    *uint64       `json:"quantity"`
	UnitPrice   *token.Amount `json:"unit_price"`
	ScheduledAt *time.Time    `json:"scheduled_at"`
}

func (r *UpdateItemRequest) Normalize() {
	trimPtr(r.Name)
	trimPtr(r.Description)
}

func (r *UpdateItemRequest) Patch() models.ItemPatch {
	return models.ItemPatch{
		Name:        r.Name,
		Description: r.Description,
		Quantity:    r.Quantity,
		UnitPrice:   r.UnitPrice,
		ScheduledAt: r.ScheduledAt,
	}
}

// AssignItemRequest clears the assignee when member_id is null.
type AssignItemRequest struct {
	MemberID *string `json:"member_id"`
}

func (r *AssignItemRequest) Normalize() {
	trimPtr(r.MemberID)
}

func (r *AssignItemRequest) Member() (*id.MemberID, error) {
	return parseOptionalMember(r.MemberID)
}

func parseOptionalMember(s *string) (*id.MemberID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	memberID, err := id.ParseMemberID(*s)
	if err != nil {
		return nil, err
	}
	return &memberID, nil
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

func lowerPtr(s *string) {
	if s != nil {
		*s = strings.ToLower(strings.TrimSpace(*s))
	}
}
