package model

// LineItem is a sealed variant: either a catalog-backed line referencing a
// known Shopify variant, or a free-text line with an explicit price.
// Trials always use CustomLine; a bare variant reference would bill the
// catalog list price instead of the zero trial amount.
type LineItem interface {
	lineItem()
}

// CatalogLine references a purchasable variant in the commerce catalog.
// PriceOverride carries the amount the processor actually charged so the
// order matches the charge even when it differs from list price.
type CatalogLine struct {
	VariantID     int64
	Quantity      int
	PriceOverride string
}

// CustomLine is the free-text fallback, used for trials and for shops with
// no catalog mapping configured.
type CustomLine struct {
	Title    string
	Quantity int
	Price    string
}

func (CatalogLine) lineItem() {}
func (CustomLine) lineItem()  {}

// NoteAttribute is one structured key/value pair attached to an order.
// Keys are unique per order.
type NoteAttribute struct {
	Key   string
	Value string
}

// OrderDraftPayload is the normalized request sent to the commerce backend.
type OrderDraftPayload struct {
	LineItems      []LineItem
	Email          string
	Note           string
	NoteAttributes []NoteAttribute
	Tags           string
	SourceName     string
}

// OrderResult reports the outcome of the two-phase order write. OrderID and
// CustomerID may be empty even when Ok; the backend does not always echo
// them and callers must treat both as optional.
type OrderResult struct {
	Ok         bool
	OrderID    string
	CustomerID string
	Error      string
}

// SyncResult reports a subscription-sync call. Callers log failures and
// never propagate them to the webhook response.
type SyncResult struct {
	Ok    bool
	Error string
}
