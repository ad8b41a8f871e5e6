package domain

// VariantRecord is a product variant as resolved by the fetch collaborator.
// Option values are opaque descriptors and are never interpreted here.
type VariantRecord struct {
	ID           string   `json:"id"`
	OptionValues []string `json:"option_values"`
}

// VariantImport is the transport representation of a variant sent to the
// storefront variants service. It is immutable once built.
type VariantImport struct {
	id           string
	optionValues []string
}

// ID returns the variant identifier.
func (v VariantImport) ID() string {
	return v.id
}

// OptionValues returns a copy of the variant option values.
func (v VariantImport) OptionValues() []string {
	if v.optionValues == nil {
		return nil
	}
	out := make([]string, len(v.optionValues))
	copy(out, v.optionValues)
	return out
}

// VariantImportBuilder assembles VariantImport values field by field.
type VariantImportBuilder struct {
	data VariantRecord
}

// NewVariantImportBuilder returns an empty builder.
func NewVariantImportBuilder() *VariantImportBuilder {
	return &VariantImportBuilder{}
}

// SetData replaces the builder fields with the given record.
func (b *VariantImportBuilder) SetData(record VariantRecord) *VariantImportBuilder {
	b.data = record
	return b
}

// Build returns the VariantImport and resets the builder.
func (b *VariantImportBuilder) Build() VariantImport {
	v := VariantImport{id: b.data.ID}
	if b.data.OptionValues != nil {
		v.optionValues = make([]string, len(b.data.OptionValues))
		copy(v.optionValues, b.data.OptionValues)
	}
	b.data = VariantRecord{}
	return v
}

// ImportVariantsRequest carries every variant of one batch to the
// storefront variants service.
type ImportVariantsRequest struct {
	variants []VariantImport
}

// NewImportVariantsRequest returns an empty request.
func NewImportVariantsRequest() *ImportVariantsRequest {
	return &ImportVariantsRequest{}
}

// SetVariants replaces the variants carried by the request.
func (r *ImportVariantsRequest) SetVariants(variants []VariantImport) {
	r.variants = variants
}

// Variants returns the variants in submission order.
func (r *ImportVariantsRequest) Variants() []VariantImport {
	return r.variants
}

// ImportResult is the outcome reported by the storefront variants service.
// Status false is an application-level rejection described by Message.
type ImportResult struct {
	Status  bool
	Message string
}
