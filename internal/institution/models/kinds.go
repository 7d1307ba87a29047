package models

import (
	"slices"
	"strings"
	"unicode/utf8"

	dErrors "bursar/pkg/domain-errors"
)

const (
	maxNameLength = 128
	maxTextLength = 256
)

type InstitutionKind string

const (
	InstitutionKindSchool   InstitutionKind = "school"
	InstitutionKindHospital InstitutionKind = "hospital"
)

var institutionKinds = []InstitutionKind{InstitutionKindSchool, InstitutionKindHospital}

func (k InstitutionKind) IsValid() bool {
	return slices.Contains(institutionKinds, k)
}

// Allows reports whether a member kind belongs to this institution kind.
// Schools hold students, lecturers and staff; hospitals hold patients and staff.
func (k InstitutionKind) Allows(m MemberKind) bool {
	switch k {
	case InstitutionKindSchool:
		return m == MemberKindStudent || m == MemberKindLecturer || m == MemberKindStaff
	case InstitutionKindHospital:
		return m == MemberKindPatient || m == MemberKindStaff
	default:
		return false
	}
}

type MemberKind string

const (
	MemberKindStudent  MemberKind = "student"
	MemberKindLecturer MemberKind = "lecturer"
	MemberKindStaff    MemberKind = "staff"
	MemberKindPatient  MemberKind = "patient"
)

var memberKinds = []MemberKind{MemberKindStudent, MemberKindLecturer, MemberKindStaff, MemberKindPatient}

func (k MemberKind) IsValid() bool {
	return slices.Contains(memberKinds, k)
}

// ParseMemberKind normalizes and validates a member kind filter value.
func ParseMemberKind(s string) (MemberKind, error) {
	k := MemberKind(normalizeEnum(s))
	if !k.IsValid() {
		return "", dErrors.Newf(dErrors.CodeValidation, "member kind must be one of %s", joinKinds(memberKinds))
	}
	return k, nil
}

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

var genders = []Gender{GenderMale, GenderFemale, GenderOther}

func (g Gender) IsValid() bool {
	return slices.Contains(genders, g)
}

type MemberStatus string

const (
	MemberStatusActive     MemberStatus = "active"
	MemberStatusSuspended  MemberStatus = "suspended"
	MemberStatusGraduated  MemberStatus = "graduated"
	MemberStatusDischarged MemberStatus = "discharged"
)

var memberStatuses = []MemberStatus{MemberStatusActive, MemberStatusSuspended, MemberStatusGraduated, MemberStatusDischarged}

func (s MemberStatus) IsValid() bool {
	return slices.Contains(memberStatuses, s)
}

type ItemKind string

const (
	ItemKindSubject     ItemKind = "subject"
	ItemKindInventory   ItemKind = "inventory"
	ItemKindAppointment ItemKind = "appointment"
	ItemKindRoom        ItemKind = "room"
)

var itemKinds = []ItemKind{ItemKindSubject, ItemKindInventory, ItemKindAppointment, ItemKindRoom}

func (k ItemKind) IsValid() bool {
	return slices.Contains(itemKinds, k)
}

// ParseItemKind normalizes and validates an item kind filter value.
func ParseItemKind(s string) (ItemKind, error) {
	k := ItemKind(normalizeEnum(s))
	if !k.IsValid() {
		return "", dErrors.Newf(dErrors.CodeValidation, "item kind must be one of %s", joinKinds(itemKinds))
	}
	return k, nil
}

func joinKinds[T ~string](kinds []T) string {
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = string(k)
	}
	return strings.Join(parts, ", ")
}

func normalizeEnum(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func trim(s string) string {
	return strings.TrimSpace(s)
}

func requireText(field, value string, limit int) error {
	if value == "" {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "%s cannot be empty", field)
	}
	if utf8.RuneCountInString(value) > limit {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "%s must be %d characters or less", field, limit)
	}
	return nil
}

func limitText(field, value string, limit int) error {
	if utf8.RuneCountInString(value) > limit {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "%s must be %d characters or less", field, limit)
	}
	return nil
}
