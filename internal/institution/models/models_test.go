package models

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "bursar/pkg/domain"
	dErrors "bursar/pkg/domain-errors"
	"bursar/pkg/token"
)

var now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func school(t *testing.T) *Institution {
	t.Helper()
	inst, err := NewInstitution(id.NewInstitutionID(), "owner-1", InstitutionFields{
		Kind:     InstitutionKindSchool,
		Name:     "Riverside School",
		Location: "12 River Rd",
		Contact:  "office@riverside.test",
		Category: "secondary",
	}, now)
	require.NoError(t, err)
	return inst
}

func student(t *testing.T, inst *Institution) *Member {
	t.Helper()
	m, err := NewMember(id.NewMemberID(), inst, MemberFields{
		Kind:      MemberKindStudent,
		Principal: "student-1",
		Name:      "Ada",
		Gender:    GenderFemale,
		Age:       15,
		Contact:   "ada@riverside.test",
		Address:   "3 Mill Lane",
	}, now)
	require.NoError(t, err)
	return m
}

func TestNewInstitution(t *testing.T) {
	valid := InstitutionFields{Kind: InstitutionKindHospital, Name: "St Mary", Location: "x", Contact: "y", Category: "general"}

	t.Run("starts with zero balance", func(t *testing.T) {
		inst, err := NewInstitution(id.NewInstitutionID(), "owner", valid, now)
		require.NoError(t, err)
		assert.Equal(t, token.Amount(0), inst.Balance)
		assert.Equal(t, now, inst.CreatedAt)
	})

	tests := []struct {
		name   string
		owner  id.Principal
		mutate func(f *InstitutionFields)
	}{
		{"empty owner", "", func(*InstitutionFields) {}},
		{"empty name", "o", func(f *InstitutionFields) { f.Name = "" }},
		{"long name", "o", func(f *InstitutionFields) { f.Name = string(make([]rune, 129)) }},
		{"unknown kind", "o", func(f *InstitutionFields) { f.Kind = "prison" }},
		{"empty location", "o", func(f *InstitutionFields) { f.Location = "" }},
		{"empty contact", "o", func(f *InstitutionFields) { f.Contact = "" }},
		{"empty category", "o", func(f *InstitutionFields) { f.Category = "" }},
	}
	for _, tt := range tests {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			f := valid
			tt.mutate(&f)
			_, err := NewInstitution(id.NewInstitutionID(), tt.owner, f, now)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		})
	}
}

func TestInstitutionFieldsNormalize(t *testing.T) {
	f := InstitutionFields{Kind: " School ", Name: "  A  ", Location: " b", Contact: "c ", Category: " d "}
	f.Normalize()
	assert.Equal(t, InstitutionFields{Kind: InstitutionKindSchool, Name: "A", Location: "b", Contact: "c", Category: "d"}, f)
}

func TestInstitutionWithPatch(t *testing.T) {
	inst := school(t)

	t.Run("applies to a copy", func(t *testing.T) {
		name := "Riverside Academy"
		later := now.Add(time.Hour)
		next, err := inst.WithPatch(InstitutionPatch{Name: &name}, later)
		require.NoError(t, err)
		assert.Equal(t, "Riverside Academy", next.Name)
		assert.Equal(t, later, next.UpdatedAt)
		assert.Equal(t, "Riverside School", inst.Name)
	})

	t.Run("invalid patch leaves original untouched", func(t *testing.T) {
		empty := " "
		_, err := inst.WithPatch(InstitutionPatch{Contact: &empty}, now)
		require.Error(t, err)
		assert.Equal(t, "office@riverside.test", inst.Contact)
	})
}

func TestInstitutionBalance(t *testing.T) {
	inst := school(t)
	require.NoError(t, inst.Credit(token.Mint(700), now))
	require.NoError(t, inst.Credit(token.Mint(300), now))
	assert.Equal(t, token.Amount(1000), inst.Balance)

	t.Run("debit beyond balance fails without effect", func(t *testing.T) {
		_, err := inst.Debit(1001, now)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInsufficientBalance))
		assert.Equal(t, token.Amount(1000), inst.Balance)
	})

	t.Run("debit returns the taken funds", func(t *testing.T) {
		f, err := inst.Debit(400, now)
		require.NoError(t, err)
		assert.Equal(t, token.Amount(400), f.Value())
		assert.Equal(t, token.Amount(600), inst.Balance)
	})

	t.Run("credit overflow is rejected", func(t *testing.T) {
		err := inst.Credit(token.Mint(token.MaxAmount), now)
		require.Error(t, err)
		assert.Equal(t, token.Amount(600), inst.Balance)
	})
}

func TestMemberKindCompatibility(t *testing.T) {
	tests := []struct {
		inst InstitutionKind
		kind MemberKind
		ok   bool
	}{
		{InstitutionKindSchool, MemberKindStudent, true},
		{InstitutionKindSchool, MemberKindLecturer, true},
		{InstitutionKindSchool, MemberKindStaff, true},
		{InstitutionKindSchool, MemberKindPatient, false},
		{InstitutionKindHospital, MemberKindPatient, true},
		{InstitutionKindHospital, MemberKindStaff, true},
		{InstitutionKindHospital, MemberKindStudent, false},
		{InstitutionKindHospital, MemberKindLecturer, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.ok, tt.inst.Allows(tt.kind), "%s/%s", tt.inst, tt.kind)
	}
}

func TestNewMember(t *testing.T) {
	inst := school(t)
	valid := MemberFields{Kind: MemberKindStudent, Principal: "p", Name: "n", Gender: GenderMale, Age: 20, Contact: "c", Address: "a"}

	t.Run("defaults to active and unpaid", func(t *testing.T) {
		m, err := NewMember(id.NewMemberID(), inst, valid, now)
		require.NoError(t, err)
		assert.Equal(t, MemberStatusActive, m.Status)
		assert.False(t, m.Paid)
		assert.Equal(t, inst.ID, m.InstitutionID)
	})

	tests := []struct {
		name   string
		mutate func(f *MemberFields)
	}{
		{"patient in a school", func(f *MemberFields) { f.Kind = MemberKindPatient }},
		{"unknown kind", func(f *MemberFields) { f.Kind = "janitor" }},
		{"empty principal", func(f *MemberFields) { f.Principal = "" }},
		{"empty name", func(f *MemberFields) { f.Name = "" }},
		{"unknown gender", func(f *MemberFields) { f.Gender = "x" }},
		{"zero age", func(f *MemberFields) { f.Age = 0 }},
		{"age above range", func(f *MemberFields) { f.Age = 151 }},
		{"empty contact", func(f *MemberFields) { f.Contact = "" }},
		{"empty address", func(f *MemberFields) { f.Address = "" }},
	}
	for _, tt := range tests {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			f := valid
			tt.mutate(&f)
			_, err := NewMember(id.NewMemberID(), inst, f, now)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		})
	}
}

func TestMemberWithPatch(t *testing.T) {
	m := student(t, school(t))

	t.Run("classifies owner fields", func(t *testing.T) {
		name := "x"
		assert.False(t, MemberPatch{Name: &name}.TouchesOwnerFields())
		status := MemberStatusGraduated
		assert.True(t, MemberPatch{Status: &status}.TouchesOwnerFields())
		age := 3
		assert.True(t, MemberPatch{Age: &age}.TouchesOwnerFields())
		assert.True(t, MemberPatch{}.IsEmpty())
	})

	t.Run("validates the whole record", func(t *testing.T) {
		age := 200
		contact := "new"
		_, err := m.WithPatch(MemberPatch{Age: &age, Contact: &contact}, now)
		require.Error(t, err)
		assert.Equal(t, "ada@riverside.test", m.Contact)
	})

	t.Run("normalizes enums", func(t *testing.T) {
		status := MemberStatus(" Graduated ")
		next, err := m.WithPatch(MemberPatch{Status: &status}, now)
		require.NoError(t, err)
		assert.Equal(t, MemberStatusGraduated, next.Status)
	})
}

func TestMemberBalance(t *testing.T) {
	m := student(t, school(t))
	require.NoError(t, m.Credit(token.Mint(25), now))
	require.NoError(t, m.Credit(token.Mint(5), now))

	out := m.Drain(now)
	assert.Equal(t, token.Amount(30), out.Value())
	assert.Equal(t, token.Amount(0), m.Balance)
	assert.True(t, m.Drain(now).IsZero())
}

func TestFee(t *testing.T) {
	m := student(t, school(t))

	t.Run("due date is creation time plus interval", func(t *testing.T) {
		f, err := NewFee(id.NewFeeID(), m, 500, "term 1", 30*24*time.Hour, now)
		require.NoError(t, err)
		assert.Equal(t, now.Add(30*24*time.Hour), f.DueAt)
		assert.Equal(t, m.ID, f.MemberID)
		assert.Equal(t, m.InstitutionID, f.InstitutionID)
	})

	t.Run("rejects zero amount and non-positive interval", func(t *testing.T) {
		_, err := NewFee(id.NewFeeID(), m, 0, "", time.Hour, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		_, err = NewFee(id.NewFeeID(), m, 1, "", 0, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("payment checks amount before deadline", func(t *testing.T) {
		f, err := NewFee(id.NewFeeID(), m, 500, "", time.Hour, now)
		require.NoError(t, err)

		late := now.Add(2 * time.Hour)
		assert.True(t, dErrors.HasCode(f.CheckPayment(499, late), dErrors.CodeAmountMismatch))
		assert.True(t, dErrors.HasCode(f.CheckPayment(500, late), dErrors.CodeExpired))
		assert.NoError(t, f.CheckPayment(500, now.Add(time.Hour)), "paying at the deadline is allowed")
		assert.True(t, dErrors.HasCode(f.CheckPayment(501, now), dErrors.CodeAmountMismatch))
	})
}

func TestItem(t *testing.T) {
	instID := id.NewInstitutionID()
	at := now.Add(24 * time.Hour)

	tests := []struct {
		name   string
		fields ItemFields
		ok     bool
	}{
		{"subject", ItemFields{Kind: ItemKindSubject, Name: "Maths"}, true},
		{"room", ItemFields{Kind: ItemKindRoom, Name: "Ward 3", Quantity: 12}, true},
		{"inventory", ItemFields{Kind: ItemKindInventory, Name: "Gloves", Quantity: 100, UnitPrice: 3}, true},
		{"inventory without quantity", ItemFields{Kind: ItemKindInventory, Name: "Gloves", UnitPrice: 3}, false},
		{"appointment", ItemFields{Kind: ItemKindAppointment, Name: "Checkup", ScheduledAt: &at}, true},
		{"appointment without time", ItemFields{Kind: ItemKindAppointment, Name: "Checkup"}, false},
		{"overflowing value", ItemFields{Kind: ItemKindInventory, Name: "x", Quantity: math.MaxUint64, UnitPrice: 2}, false},
		{"unknown kind", ItemFields{Kind: "vehicle", Name: "x"}, false},
		{"empty name", ItemFields{Kind: ItemKindSubject}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewItem(id.NewItemID(), instID, tt.fields, now)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		})
	}
}

func TestItemAssignAndValue(t *testing.T) {
	item, err := NewItem(id.NewItemID(), id.NewInstitutionID(), ItemFields{Kind: ItemKindInventory, Name: "Beds", Quantity: 4, UnitPrice: 250}, now)
	require.NoError(t, err)

	memberID := id.NewMemberID()
	item.Assign(&memberID, now)
	require.NotNil(t, item.AssigneeID)
	assert.Equal(t, memberID, *item.AssigneeID)
	item.Assign(nil, now)
	assert.Nil(t, item.AssigneeID)

	other, err := NewItem(id.NewItemID(), item.InstitutionID, ItemFields{Kind: ItemKindInventory, Name: "Masks", Quantity: 10, UnitPrice: 1}, now)
	require.NoError(t, err)
	total, err := InventoryValue([]*Item{item, other})
	require.NoError(t, err)
	assert.Equal(t, token.Amount(1010), total)

	t.Run("sum overflow is rejected", func(t *testing.T) {
		big, err := NewItem(id.NewItemID(), item.InstitutionID, ItemFields{Kind: ItemKindInventory, Name: "Gold", Quantity: 1, UnitPrice: token.MaxAmount}, now)
		require.NoError(t, err)
		_, err = InventoryValue([]*Item{big, other})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func TestCapabilityToken(t *testing.T) {
	capID := id.NewCapabilityID()
	tok := FormatCapabilityToken(capID, "s3cr.et")

	gotID, secret, err := ParseCapabilityToken(tok)
	require.NoError(t, err)
	assert.Equal(t, capID, gotID)
	assert.Equal(t, "s3cr.et", secret)

	for _, bad := range []string{"", "nodot", capID.String() + ".", "not-a-uuid.secret"} {
		_, _, err := ParseCapabilityToken(bad)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized), bad)
	}
}
