package handler

import (
	"bursar/internal/institution/models"
	"bursar/pkg/token"
)

// CreateInstitutionResponse returns the capability token once. It is not
// retrievable later.
type CreateInstitutionResponse struct {
	Institution *models.Institution `json:"institution"`
	Capability  string              `json:"capability"`
}

type FundsResponse struct {
	Amount token.Amount `json:"amount"`
}

type MembersResponse struct {
	Members []*models.Member `json:"members"`
}

type FeesResponse struct {
	Fees []*models.Fee `json:"fees"`
}

type ItemsResponse struct {
	Items []*models.Item `json:"items"`
}

type InventoryValueResponse struct {
	Value token.Amount `json:"value"`
}
