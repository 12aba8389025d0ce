package mapwidget

type Layer interface {
	Name() string
}

type TileLayer struct {
	URL string
}

func (TileLayer) Name() string { return "tiles" }

type VectorLayer struct {
	LayerName string
	Source    *VectorSource
}

func (vl VectorLayer) Name() string { return vl.LayerName }
