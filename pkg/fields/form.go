package fields

import "github.com/mesh-intelligence/vellum/pkg/types"

// DefaultGrid is the layout width of a field whose FieldDef sets none.
const DefaultGrid = types.MaxGrid

// FormField is the render descriptor for one FieldDef: the widget to use,
// the presentation metadata, and the current value when there is one.
type FormField struct {
	Key         string          `json:"key"`
	Name        string          `json:"name"`
	Type        types.FieldType `json:"type"`
	Widget      Widget          `json:"widget"`
	Value       *types.Value    `json:"value"`
	Options     []string        `json:"options"`
	Helper      string          `json:"helper,omitempty"`
	HelperImage string          `json:"helper_image,omitempty"`
	Grid        int             `json:"grid"`
}

// Form returns one FormField per FieldDef in def order. current may be nil
// for a blank form.
func Form(schema *types.Schema, current types.Fields) []FormField {
	out := make([]FormField, 0, len(schema.Def))
	for _, def := range schema.Def {
		h := Lookup(def.Type)
		f := FormField{
			Key:         def.Key,
			Name:        def.Name,
			Type:        h.Type,
			Widget:      h.Widget,
			Options:     def.Options,
			Helper:      def.Helper,
			HelperImage: def.HelperImage,
			Grid:        def.Grid,
		}
		if f.Options == nil {
			f.Options = []string{}
		}
		if f.Grid == 0 {
			f.Grid = DefaultGrid
		}
		if v, ok := current[def.Key]; ok {
			f.Value = &v
		}
		out = append(out, f)
	}
	return out
}
