package app

import (
	"giftbox-manager/internal/core"
	"giftbox-manager/internal/lookup"
)

// DashboardResult is returned by Dashboard.
type DashboardResult struct {
	Summary *core.Summary
}

// MaterialListResult is returned by ListMaterials.
type MaterialListResult struct {
	Materials []core.Material
}

// PurchaseListResult is returned by ListPurchases.
type PurchaseListResult struct {
	Purchases []core.Purchase
}

// InstallmentListResult is returned by the installment listings.
type InstallmentListResult struct {
	Installments []core.Installment
}

// SaleListResult is returned by ListSales.
type SaleListResult struct {
	Sales []core.Sale
}

// DeliveryCostListResult is returned by ListDeliveryCosts.
type DeliveryCostListResult struct {
	Costs []core.DeliveryCost
}

// LookupCEPResult is returned by LookupCEP.
type LookupCEPResult struct {
	Success bool
	Message string
	Address *lookup.Address
}

// FetchDocumentResult is returned by FetchDocumentByKey. Document holds the
// raw XML when the fetch succeeded.
type FetchDocumentResult struct {
	Success  bool
	Message  string
	Document []byte
}
