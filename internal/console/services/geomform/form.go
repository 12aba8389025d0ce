// Package geomform collects the attributes of a freshly drawn geometry.
package geomform

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Leopold1975/gis_console/internal/console/domain/models"
)

var (
	ErrNameRequired = errors.New("name is required")
	ErrNoSuchField  = errors.New("no such metadata field")
)

type Field struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type Form struct {
	GeometryType models.GeometryType `json:"geometry_type"` //nolint:tagliatelle
	Name         string              `json:"name"`
	Description  string              `json:"description"`
	Fields       []Field             `json:"fields"`
}

// Submission is what the form hands back on save.
type Submission struct {
	Name        string
	Description string
	Metadata    map[string]string
}

func New(t models.GeometryType) *Form {
	return &Form{ //nolint:exhaustruct
		GeometryType: t,
		Fields:       []Field{},
	}
}

func (f *Form) Title() string {
	return fmt.Sprintf("Add %s Details", f.GeometryType)
}

func (f *Form) AddField() {
	f.Fields = append(f.Fields, Field{})
}

func (f *Form) SetField(i int, key, value string) error {
	if i < 0 || i >= len(f.Fields) {
		return fmt.Errorf("%w: %d", ErrNoSuchField, i)
	}

	f.Fields[i] = Field{Key: key, Value: value}

	return nil
}

func (f *Form) RemoveField(i int) error {
	if i < 0 || i >= len(f.Fields) {
		return fmt.Errorf("%w: %d", ErrNoSuchField, i)
	}

	f.Fields = append(f.Fields[:i], f.Fields[i+1:]...)

	return nil
}

// Submit folds the rows into a mapping. Rows with an empty key are dropped and
// a repeated key keeps its last value.
func (f *Form) Submit() (Submission, error) {
	if strings.TrimSpace(f.Name) == "" {
		return Submission{}, ErrNameRequired
	}

	metadata := make(map[string]string, len(f.Fields))

	for _, field := range f.Fields {
		if field.Key != "" {
			metadata[field.Key] = field.Value
		}
	}

	return Submission{
		Name:        f.Name,
		Description: f.Description,
		Metadata:    metadata,
	}, nil
}
