package category

import "github.com/google/uuid"

// Mapping translates provider categories into taxonomy category names.
// Detailed is consulted first, Primary is the fallback.
type Mapping struct {
	Detailed map[string]string
	Primary  map[string]string
}

// Empty reports whether neither table could be loaded.
func (m Mapping) Empty() bool {
	return m.Detailed == nil && m.Primary == nil
}

// Input is the part of a transaction the classifier looks at.
type Input struct {
	CategoryID       *uuid.UUID
	ProviderDetailed string
	ProviderPrimary  string
}

// Classify resolves the effective category of a transaction. A user-assigned
// category id wins over the provider category. The second return is false
// when the transaction stays uncategorized.
func Classify(in Input, taxonomy *Taxonomy, mapping Mapping) (Ref, bool) {
	if in.CategoryID != nil {
		return taxonomy.ByID(*in.CategoryID)
	}

	if name, ok := mapping.Detailed[in.ProviderDetailed]; ok && in.ProviderDetailed != "" {
		if ref, ok := taxonomy.ByName(name); ok {
			return ref, true
		}
	}

	if name, ok := mapping.Primary[in.ProviderPrimary]; ok && in.ProviderPrimary != "" {
		if ref, ok := taxonomy.ByName(name); ok {
			return ref, true
		}
	}

	return Ref{}, false
}
