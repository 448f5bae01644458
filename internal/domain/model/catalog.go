package model

// ID identifies an upstream model.
type ID = string

const (
	MistralLarge  ID = "mistral-large-latest"
	MistralMedium ID = "mistral-medium-latest"
	MistralSmall  ID = "mistral-small-latest"
	PixtralLarge  ID = "pixtral-large-latest"
	Codestral     ID = "codestral-latest"

	// DefaultChatModel is selected when a client has no preference.
	DefaultChatModel = MistralLarge
	// DefaultVisionModel handles images and the OCR pass of documents.
	DefaultVisionModel = PixtralLarge
	// DefaultDocumentModel answers questions about extracted document text.
	DefaultDocumentModel = MistralLarge
)

// Info is an immutable catalog entry.
type Info struct {
	ID                ID     `json:"id"`
	Name              string `json:"name"`
	Description       string `json:"description"`
	SupportsVision    bool   `json:"supportsVision"`
	SupportsDocuments bool   `json:"supportsDocuments"`
}

var catalog = []Info{
	{
		ID:                MistralLarge,
		Name:              "Mistral Large",
		Description:       "Most capable model for complex reasoning",
		SupportsDocuments: true,
	},
	{
		ID:                MistralMedium,
		Name:              "Mistral Medium",
		Description:       "Balanced performance and speed",
		SupportsDocuments: true,
	},
	{
		ID:          MistralSmall,
		Name:        "Mistral Small",
		Description: "Fast responses for simpler tasks",
	},
	{
		ID:                PixtralLarge,
		Name:              "Pixtral Large",
		Description:       "Vision-enabled for image analysis",
		SupportsVision:    true,
		SupportsDocuments: true,
	},
	{
		ID:          Codestral,
		Name:        "Codestral",
		Description: "Specialized for code generation",
	},
}

// All returns a copy of the catalog in display order.
func All() []Info {
	out := make([]Info, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup finds a catalog entry by id.
func Lookup(id ID) (Info, bool) {
	for _, info := range catalog {
		if info.ID == id {
			return info, true
		}
	}
	return Info{}, false
}

// Known reports whether id is in the catalog.
func Known(id ID) bool {
	_, ok := Lookup(id)
	return ok
}

// VisionModelFor returns id when it can read images, otherwise the default vision model.
func VisionModelFor(id ID) ID {
	if info, ok := Lookup(id); ok && info.SupportsVision {
		return info.ID
	}
	return DefaultVisionModel
}
