package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"

	"github.com/007king700/FOSS-Deck/actions"
	"github.com/007king700/FOSS-Deck/layout"
	"github.com/007king700/FOSS-Deck/session"
)

// tileGrid renders the ordered action tiles and owns the reorder gesture
// plumbing. Taps invoke actions; in edit mode drags rearrange tiles instead.
type tileGrid struct {
	session *session.Session
	manager *layout.Manager

	tracker  *layout.PointerTracker
	dragDrop *layout.DragDrop

	// needsPairing fires when a tile is tapped without a live session.
	needsPairing func()

	box     *fyne.Container
	tiles   map[string]*actionTile
	hoverID string
	editing bool
}

func newTileGrid(sess *session.Session, manager *layout.Manager, needsPairing func()) *tileGrid {
	g := &tileGrid{
		session:      sess,
		manager:      manager,
		needsPairing: needsPairing,
		tiles:        make(map[string]*actionTile),
	}

	g.dragDrop = &layout.DragDrop{Apply: func(intent layout.Intent) bool {
		if !g.manager.Apply(intent) {
			return false
		}
		g.rebuild()
		return true
	}}
	g.tracker = &layout.PointerTracker{
		Tap:   g.tapTile,
		Hover: g.setHover,
		Drop: func(intent layout.Intent) {
			g.dragDrop.Drop(intent.DraggedID, intent.TargetID)
		},
	}

	g.box = container.NewGridWrap(fyne.NewSize(110, 100))
	for _, id := range g.manager.IDs() {
		action, ok := actions.ByID(id)
		if !ok {
			continue
		}
		tile := newActionTile(action.ID, action.Label, action.Icon(sess.Remote()))
		tile.onTapped = g.tileTapped
		tile.onDragged = g.tileDragged
		tile.onDragEnd = g.tileDragEnd
		g.tiles[id] = tile
		g.box.Add(tile)
	}
	g.RefreshState()
	return g
}

// Object returns the grid's canvas object.
func (g *tileGrid) Object() fyne.CanvasObject {
	return g.box
}

// SetEditing toggles edit mode: reordering on, action taps off.
func (g *tileGrid) SetEditing(editing bool) {
	g.editing = editing
	g.dragDrop.SetEnabled(editing)
	if !editing {
		g.tracker.Cancel()
	}
	for _, tile := range g.tiles {
		tile.SetEditing(editing)
	}
}

// RefreshState redraws every tile from the mirrored host state.
func (g *tileGrid) RefreshState() {
	remote := g.session.Remote()
	paired := g.session.IsPaired()
	for id, tile := range g.tiles {
		action, ok := actions.ByID(id)
		if !ok {
			continue
		}
		tile.SetIcon(action.Icon(remote))
		tile.SetDisabled(!paired && !g.editing)
	}
}

func (g *tileGrid) tileTapped(id string) {
	// Route taps through the tracker so a finished drag's release can
	// never double as an action tap.
	g.tracker.Press(id, 0, 0)
	g.tracker.Release("")
}

func (g *tileGrid) tileDragged(id string, event *fyne.DragEvent) {
	if !g.editing {
		return
	}
	// Press once per gesture, at the reconstructed pointer-down point.
	// Re-pressing on later events would reset the origin and measure each
	// event's delta in isolation, so a slow drag could never cross the
	// threshold.
	abs := event.AbsolutePosition
	if !g.tracker.Active() {
		g.tracker.Press(id, abs.X-event.Dragged.DX, abs.Y-event.Dragged.DY)
	}
	g.tracker.Move(abs.X, abs.Y, g.tileAt(abs))
}

func (g *tileGrid) tileDragEnd(string) {
	g.tracker.Release(g.hoverID)
}

func (g *tileGrid) tapTile(id string) {
	if g.editing {
		return
	}
	action, ok := actions.ByID(id)
	if !ok {
		return
	}
	if !action.Invoke(g.session) && g.needsPairing != nil {
		g.needsPairing()
	}
}

func (g *tileGrid) setHover(targetID string) {
	if g.hoverID == targetID {
		return
	}
	if previous, ok := g.tiles[g.hoverID]; ok {
		previous.SetHighlighted(false)
	}
	g.hoverID = targetID
	if next, ok := g.tiles[targetID]; ok {
		next.SetHighlighted(true)
	}
}

// tileAt maps an absolute canvas position to the tile under it, "" when
// over none.
func (g *tileGrid) tileAt(position fyne.Position) string {
	app := fyne.CurrentApp()
	if app == nil {
		return ""
	}
	driver := app.Driver()
	for id, tile := range g.tiles {
		origin := driver.AbsolutePositionForObject(tile)
		size := tile.Size()
		if position.X >= origin.X && position.X <= origin.X+size.Width &&
			position.Y >= origin.Y && position.Y <= origin.Y+size.Height {
			return id
		}
	}
	return ""
}

// rebuild reorders the grid's objects to match the manager's order.
func (g *tileGrid) rebuild() {
	g.box.RemoveAll()
	for _, id := range g.manager.IDs() {
		if tile, ok := g.tiles[id]; ok {
			g.box.Add(tile)
		}
	}
	g.box.Refresh()
}
