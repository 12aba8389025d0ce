package mapservice

import (
	"slices"

	"github.com/Leopold1975/gis_console/internal/console/domain/models"
	"github.com/Leopold1975/gis_console/internal/console/mapwidget"
	"github.com/Leopold1975/gis_console/internal/console/services/geomform"
)

type FormView struct {
	Title string        `json:"title"`
	Form  geomform.Form `json:"form"`
}

type View struct {
	Mode       DrawMode          `json:"mode"`
	Geometries []models.Geometry `json:"geometries"`
	FormOpen   bool              `json:"form_open"` //nolint:tagliatelle
	Form       *FormView         `json:"form,omitempty"`
	Features   int               `json:"features"`
	Scratch    int               `json:"scratch"`
}

func (d *Dashboard) View() View {
	d.mu.Lock()
	defer d.mu.Unlock()

	v := View{ //nolint:exhaustruct
		Mode:       d.mode,
		Geometries: slices.Clone(d.geometries),
		FormOpen:   d.form != nil,
		Features:   d.persisted.Len(),
		Scratch:    d.scratch.Len(),
	}

	if v.Geometries == nil {
		v.Geometries = []models.Geometry{}
	}

	if d.form != nil {
		f := *d.form
		f.Fields = slices.Clone(d.form.Fields)
		v.Form = &FormView{Title: d.form.Title(), Form: f}
	}

	return v
}

// Features returns persisted features followed by unconfirmed ones.
func (d *Dashboard) Features() []*mapwidget.Feature {
	return append(d.persisted.Features(), d.scratch.Features()...)
}

func (d *Dashboard) Mode() DrawMode {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.mode
}
