package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

// actionTile is one grid cell: an icon and label that taps like a button
// and drags for reordering. The grid owns all behavior; the tile only
// reports gestures and draws its state.
type actionTile struct {
	widget.BaseWidget

	id    string
	label string
	icon  fyne.Resource

	disabled    bool
	highlighted bool
	editing     bool

	onTapped  func(id string)
	onDragged func(id string, event *fyne.DragEvent)
	onDragEnd func(id string)
}

func newActionTile(id, label string, icon fyne.Resource) *actionTile {
	tile := &actionTile{
		id:    id,
		label: label,
		icon:  icon,
	}
	tile.ExtendBaseWidget(tile)
	return tile
}

func (t *actionTile) SetIcon(icon fyne.Resource) {
	if t.icon == icon {
		return
	}
	t.icon = icon
	t.Refresh()
}

func (t *actionTile) SetDisabled(disabled bool) {
	if t.disabled == disabled {
		return
	}
	t.disabled = disabled
	t.Refresh()
}

func (t *actionTile) SetHighlighted(highlighted bool) {
	if t.highlighted == highlighted {
		return
	}
	t.highlighted = highlighted
	t.Refresh()
}

func (t *actionTile) SetEditing(editing bool) {
	if t.editing == editing {
		return
	}
	t.editing = editing
	t.Refresh()
}

func (t *actionTile) Tapped(*fyne.PointEvent) {
	if t.onTapped != nil {
		t.onTapped(t.id)
	}
}

func (t *actionTile) Dragged(event *fyne.DragEvent) {
	if t.onDragged != nil {
		t.onDragged(t.id, event)
	}
}

func (t *actionTile) DragEnd() {
	if t.onDragEnd != nil {
		t.onDragEnd(t.id)
	}
}

func (t *actionTile) CreateRenderer() fyne.WidgetRenderer {
	background := canvas.NewRectangle(ctpSurface0)
	background.CornerRadius = 8
	icon := widget.NewIcon(t.icon)
	label := widget.NewLabel(t.label)
	label.Alignment = fyne.TextAlignCenter
	return &actionTileRenderer{
		tile:       t,
		background: background,
		icon:       icon,
		label:      label,
	}
}

type actionTileRenderer struct {
	tile       *actionTile
	background *canvas.Rectangle
	icon       *widget.Icon
	label      *widget.Label
}

func (r *actionTileRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)

	labelMin := r.label.MinSize()
	iconSide := size.Height - labelMin.Height - 12
	if iconSide > 48 {
		iconSide = 48
	}
	if iconSide < 16 {
		iconSide = 16
	}
	r.icon.Resize(fyne.NewSize(iconSide, iconSide))
	r.icon.Move(fyne.NewPos((size.Width-iconSide)/2, (size.Height-labelMin.Height-iconSide)/2))

	r.label.Resize(fyne.NewSize(size.Width, labelMin.Height))
	r.label.Move(fyne.NewPos(0, size.Height-labelMin.Height-4))
}

func (r *actionTileRenderer) MinSize() fyne.Size {
	return fyne.NewSize(96, 88)
}

func (r *actionTileRenderer) Refresh() {
	switch {
	case r.tile.highlighted:
		r.background.FillColor = ctpSurface2
		r.background.StrokeColor = ctpBlue
		r.background.StrokeWidth = 2
	case r.tile.editing:
		r.background.FillColor = ctpSurface0
		r.background.StrokeColor = ctpOverlay0
		r.background.StrokeWidth = 1
	case r.tile.disabled:
		r.background.FillColor = ctpMantle
		r.background.StrokeWidth = 0
	default:
		r.background.FillColor = ctpSurface0
		r.background.StrokeWidth = 0
	}
	r.background.Refresh()

	r.icon.SetResource(r.tile.icon)
	r.label.SetText(r.tile.label)
}

func (r *actionTileRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.background, r.icon, r.label}
}

func (r *actionTileRenderer) Destroy() {}
