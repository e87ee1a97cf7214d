package config

import (
	"fmt"

	"git.home.luguber.info/inful/contentforge/internal/schema"
)

// FieldSpec is the YAML declaration of one schema field.
type FieldSpec struct {
	Type        string               `yaml:"type"`
	Required    bool                 `yaml:"required"`
	Min         int                  `yaml:"min"`
	Max         int                  `yaml:"max"`
	Namespace   string               `yaml:"namespace"`
	Reserved    []string             `yaml:"reserved"`
	Limit       int                  `yaml:"limit"`
	AllowRemote *bool                `yaml:"allow_remote"`
	Of          *FieldSpec           `yaml:"of"`
	Fields      map[string]FieldSpec `yaml:"fields"`
}

// Build translates the declaration into a schema field.
func (f FieldSpec) Build() (schema.Field, error) {
	switch f.Type {
	case "string":
		return schema.String{Required: f.Required, MinLen: f.Min, MaxLen: f.Max}, nil
	case "slug":
		return schema.Slug{Namespace: f.Namespace, Reserved: f.Reserved}, nil
	case "date", "isodate":
		return schema.Date{}, nil
	case "excerpt":
		return schema.Excerpt{Limit: f.Limit}, nil
	case "file":
		disallow := false
		if f.AllowRemote != nil {
			disallow = !*f.AllowRemote
		}
		return schema.File{DisallowRemote: disallow}, nil
	case "image":
		allow := false
		if f.AllowRemote != nil {
			allow = *f.AllowRemote
		}
		return schema.Image{AllowRemote: allow}, nil
	case "list":
		if f.Of == nil {
			return nil, fmt.Errorf("list field needs an 'of' element spec")
		}
		of, err := f.Of.Build()
		if err != nil {
			return nil, err
		}
		return schema.List{Of: of}, nil
	case "object":
		fields, err := BuildShape(f.Fields)
		if err != nil {
			return nil, err
		}
		return schema.Object{Fields: fields}, nil
	default:
		return nil, fmt.Errorf("unknown field type %q", f.Type)
	}
}

// BuildShape translates a declared field map into schema fields.
func BuildShape(specs map[string]FieldSpec) (map[string]schema.Field, error) {
	shape := make(map[string]schema.Field, len(specs))
	for name, spec := range specs {
		field, err := spec.Build()
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		shape[name] = field
	}
	return shape, nil
}
