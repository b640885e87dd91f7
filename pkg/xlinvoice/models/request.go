// Package models defines data structures for invoice rendering.
package models

// RenderRequest is the order data rendered into a template.
type RenderRequest struct {
	// OrderNo is the business order number; the output filename derives from it.
	OrderNo string `json:"orderNo" validate:"required,max=64"`
	// InvoiceDate is the display date, expected as D/M/YYYY.
	InvoiceDate string `json:"invoiceDate" validate:"max=32"`
	// InvoiceNo is substituted into the invoice-number anchors.
	InvoiceNo string `json:"invoiceNo" validate:"required,max=64"`
	// DestinationCountry is written to the destination anchors.
	DestinationCountry string `json:"destinationCountry" validate:"max=128"`
	// Consignee identifies the receiving party.
	Consignee Consignee `json:"consignee"`
	// Items is the ordered list of line items.
	Items []LineItem `json:"items" validate:"dive"`
}

// Consignee holds the consignee identity fields.
type Consignee struct {
	Name    string `json:"name" validate:"max=256"`
	Address string `json:"address" validate:"max=512"`
	Tel     string `json:"tel" validate:"max=64"`
	TaxID   string `json:"taxId" validate:"max=64"`
}

// LineItem is a single order line.
type LineItem struct {
	PartNo    string  `json:"partNo" validate:"max=128"`
	PartName  string  `json:"partName" validate:"max=512"`
	PONo      string  `json:"poNo" validate:"max=128"`
	Unit      string  `json:"unit" validate:"max=32"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	// Packaging is the per-box quantity; nil leaves the packing cell blank.
	Packaging   *float64 `json:"packaging,omitempty"`
	PalletCount *float64 `json:"palletCount,omitempty"`
	TotalWeight *float64 `json:"totalWeight,omitempty"`
}
