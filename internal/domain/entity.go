package domain

type EntityCategory string

const (
	EntityOrganization EntityCategory = "organization"
	EntityPlace        EntityCategory = "place"
	EntityPerson       EntityCategory = "person"
	EntityProduct      EntityCategory = "product"
)

// nerLabels maps spaCy/OntoNotes style labels onto the categories we keep.
var nerLabels = map[string]EntityCategory{
	"ORG":          EntityOrganization,
	"ORGANIZATION": EntityOrganization,
	"GPE":          EntityPlace,
	"PLACE":        EntityPlace,
	"PERSON":       EntityPerson,
	"PER":          EntityPerson,
	"PRODUCT":      EntityProduct,
}

// CategoryForLabel resolves a raw NER label. ok is false for labels outside the allowlist.
func CategoryForLabel(label string) (EntityCategory, bool) {
	c, ok := nerLabels[label]
	return c, ok
}

// RecognizedEntity is a raw span as returned by an NER model, before filtering.
type RecognizedEntity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

type Entity struct {
	Name     string         `json:"name"`
	Category EntityCategory `json:"category"`
}

func EntityNames(entities []Entity) []string {
	names := make([]string, len(entities))
	for i, e := range entities {
		names[i] = e.Name
	}
	return names
}
