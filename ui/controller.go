package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	fynelayout "fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/007king700/FOSS-Deck/actions"
	"github.com/007king700/FOSS-Deck/config"
	"github.com/007king700/FOSS-Deck/discovery"
	"github.com/007king700/FOSS-Deck/layout"
	"github.com/007king700/FOSS-Deck/session"
	"github.com/007king700/FOSS-Deck/storage"
)

// RunOptions configures the GUI runtime.
type RunOptions struct {
	Config *config.DeviceConfig
	// ConfigPath is where device-name edits are written back.
	ConfigPath string
	Store      *storage.Store
}

func (o RunOptions) validate() error {
	if o.Config == nil {
		return errors.New("config is required")
	}
	if o.ConfigPath == "" {
		return errors.New("config path is required")
	}
	if o.Store == nil {
		return errors.New("store is required")
	}
	return nil
}

type controller struct {
	app    fyne.App
	window fyne.Window

	cfg     *config.DeviceConfig
	cfgPath string
	store   *storage.Store

	sess      *session.Session
	layoutMgr *layout.Manager
	grid      *tileGrid

	ctx          context.Context
	cancel       context.CancelFunc
	shutdownOnce sync.Once
	loopsWg      sync.WaitGroup

	// Entry surface.
	entrySurface    fyne.CanvasObject
	addressEntry    *widget.Entry
	nameEntry       *widget.Entry
	deviceNameEntry *widget.Entry
	entryError      *widget.Label
	recentsList     *widget.List

	recentsMu sync.RWMutex
	recents   []storage.RecentHost

	// Session surface.
	sessionSurface fyne.CanvasObject
	hostLabel      *widget.Label
	statusLabel    *widget.Label
	volumeSlider   *widget.Slider
	editButton     *widget.Button

	// Guards the slider against echoing status pushes back as commands.
	applyingStatus bool

	pairingOpen   bool
	pairingDialog dialog.Dialog

	discoverMu      sync.Mutex
	discoverRunning bool
}

// Run starts the GUI and blocks until the window closes.
func Run(options RunOptions) error {
	if err := options.validate(); err != nil {
		return err
	}

	app := fyneapp.NewWithID("foss-deck")
	app.Settings().SetTheme(newDeckTheme())

	ctrl, err := newController(app, options)
	if err != nil {
		return err
	}
	return ctrl.run()
}

func newController(app fyne.App, options RunOptions) (*controller, error) {
	ctx, cancel := context.WithCancel(context.Background())

	ctrl := &controller{
		app:     app,
		window:  app.NewWindow("FOSS-Deck"),
		cfg:     options.Config,
		cfgPath: options.ConfigPath,
		store:   options.Store,
		ctx:     ctx,
		cancel:  cancel,
	}
	ctrl.window.Resize(fyne.NewSize(420, 640))

	ctrl.sess = session.New(session.Config{
		DeviceID:   options.Config.DeviceID,
		DeviceName: options.Config.DeviceName,
		Credentials: &storage.TokenVault{
			Store:  options.Store,
			Secret: options.Config.TokenSecret,
		},
		Recents: options.Store,
	})

	manager, err := layout.NewManager(options.Store, actions.DefaultLayout())
	if err != nil {
		cancel()
		return nil, fmt.Errorf("load tile layout: %w", err)
	}
	ctrl.layoutMgr = manager

	ctrl.buildEntrySurface()
	ctrl.buildSessionSurface()
	ctrl.refreshRecents()
	ctrl.window.SetContent(ctrl.entrySurface)

	ctrl.loopsWg.Add(1)
	go ctrl.sessionEventLoop()

	return ctrl, nil
}

func (c *controller) run() error {
	c.window.SetCloseIntercept(func() {
		// No waiting here: the event loop may be queued behind this very
		// callback on the UI thread, so blocking on it would wedge both.
		c.beginShutdown()
		c.window.SetCloseIntercept(nil)
		c.window.Close()
	})
	c.window.ShowAndRun()
	return c.finishShutdown()
}

// beginShutdown starts teardown without waiting for the event loop.
func (c *controller) beginShutdown() {
	c.shutdownOnce.Do(func() {
		c.cancel()
		c.sess.Disconnect()
	})
}

// finishShutdown reaps the event loop and releases the store. It must run
// once the toolkit's main loop is no longer pumping window events, when
// queued UI work can no longer pin the loop.
func (c *controller) finishShutdown() error {
	c.beginShutdown()
	c.loopsWg.Wait()
	if c.store != nil {
		return c.store.Close()
	}
	return nil
}

func (c *controller) buildEntrySurface() {
	c.addressEntry = widget.NewEntry()
	c.addressEntry.SetPlaceHolder("10.0.0.5 or ws://host:3030/ws")
	c.nameEntry = widget.NewEntry()
	c.nameEntry.SetPlaceHolder("Name (optional)")

	c.deviceNameEntry = widget.NewEntry()
	c.deviceNameEntry.SetText(c.cfg.DeviceName)
	c.deviceNameEntry.OnSubmitted = func(string) {
		c.applyDeviceName()
	}

	c.entryError = widget.NewLabel("")
	c.entryError.Importance = widget.DangerImportance
	c.entryError.Wrapping = fyne.TextWrapWord
	c.entryError.Hide()

	connectBtn := widget.NewButtonWithIcon("Connect", theme.ConfirmIcon(), func() {
		c.connect(c.addressEntry.Text, c.nameEntry.Text)
	})
	connectBtn.Importance = widget.HighImportance
	c.addressEntry.OnSubmitted = func(string) {
		c.connect(c.addressEntry.Text, c.nameEntry.Text)
	}

	discoverBtn := widget.NewButtonWithIcon("Find PCs", theme.SearchIcon(), func() {
		go c.runDiscovery()
	})

	c.recentsList = widget.NewList(
		func() int {
			c.recentsMu.RLock()
			defer c.recentsMu.RUnlock()
			return len(c.recents)
		},
		func() fyne.CanvasObject {
			name := widget.NewLabel("name")
			address := widget.NewLabel("address")
			address.Importance = widget.LowImportance
			remove := widget.NewButtonWithIcon("", theme.DeleteIcon(), nil)
			return container.NewBorder(nil, nil, nil, remove, container.NewVBox(name, address))
		},
		func(id widget.ListItemID, item fyne.CanvasObject) {
			host, ok := c.recentAt(id)
			if !ok {
				return
			}
			border := item.(*fyne.Container)
			labels := border.Objects[0].(*fyne.Container)
			labels.Objects[0].(*widget.Label).SetText(displayName(host))
			labels.Objects[1].(*widget.Label).SetText(host.Address)
			remove := border.Objects[1].(*widget.Button)
			remove.OnTapped = func() {
				c.deleteRecent(host.Address)
			}
		},
	)
	c.recentsList.OnSelected = func(id widget.ListItemID) {
		c.recentsList.Unselect(id)
		if host, ok := c.recentAt(id); ok {
			c.connect(host.Address, host.Name)
		}
	}

	form := container.NewVBox(
		widget.NewLabelWithStyle("Connect to a PC", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		c.addressEntry,
		c.nameEntry,
		container.NewHBox(connectBtn, discoverBtn, fynelayout.NewSpacer()),
		c.entryError,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("This device", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		c.deviceNameEntry,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Recent", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
	)
	c.entrySurface = container.NewBorder(form, nil, nil, nil, c.recentsList)
}

func (c *controller) buildSessionSurface() {
	c.grid = newTileGrid(c.sess, c.layoutMgr, func() {
		c.showPairingDialog("")
	})

	c.hostLabel = widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	c.statusLabel = widget.NewLabel("")

	c.volumeSlider = widget.NewSlider(0, 1)
	c.volumeSlider.Step = 0.01
	c.volumeSlider.OnChanged = func(value float64) {
		if c.applyingStatus {
			return
		}
		c.sess.SetVolume(value)
		c.sess.UpdateRemote(func(r *session.RemoteState) {
			r.Volume = value
		})
	}

	c.editButton = widget.NewButtonWithIcon("Edit", theme.SettingsIcon(), c.toggleEditMode)
	disconnectBtn := widget.NewButtonWithIcon("Disconnect", theme.LogoutIcon(), func() {
		c.sess.Disconnect()
	})

	header := container.NewBorder(nil, nil, c.hostLabel, container.NewHBox(c.editButton, disconnectBtn))
	footer := container.NewVBox(
		container.NewBorder(nil, nil, widget.NewIcon(theme.VolumeDownIcon()), widget.NewIcon(theme.VolumeUpIcon()), c.volumeSlider),
		c.statusLabel,
	)
	c.sessionSurface = container.NewBorder(header, footer, nil, nil, container.NewVScroll(c.grid.Object()))
}

func (c *controller) toggleEditMode() {
	editing := !c.grid.editing
	c.grid.SetEditing(editing)
	c.grid.RefreshState()
	if editing {
		c.editButton.SetText("Done")
		c.statusLabel.SetText("Drag tiles to rearrange them")
	} else {
		c.editButton.SetText("Edit")
		c.refreshStatusLine()
	}
}

// applyDeviceName persists an edited device name and feeds it into the
// session, so the next pairing request introduces this device by the new
// name. A blanked-out field reverts to the current name.
func (c *controller) applyDeviceName() {
	name := strings.TrimSpace(c.deviceNameEntry.Text)
	if name == "" || name == c.cfg.DeviceName {
		c.deviceNameEntry.SetText(c.cfg.DeviceName)
		return
	}

	c.cfg.DeviceName = name
	c.deviceNameEntry.SetText(name)
	c.sess.SetDeviceName(name)
	if err := config.Save(c.cfgPath, c.cfg); err != nil {
		c.showEntryError("Could not save the device name: " + err.Error())
	}
}

// connect kicks off a session. Invalid addresses never leave the entry
// surface; the error shows inline.
func (c *controller) connect(address, name string) {
	c.applyDeviceName()
	if err := c.sess.Connect(address, name); err != nil {
		c.showEntryError("Enter the PC's IP address, or a full ws:// address.")
		return
	}
	c.hideEntryError()
	c.setStatus("Connecting to " + strings.TrimSpace(address) + "...")
}

func (c *controller) sessionEventLoop() {
	defer c.loopsWg.Done()
	for {
		select {
		case <-c.ctx.Done():
			return
		case event := <-c.sess.Events():
			c.handleSessionEvent(event)
		}
	}
}

func (c *controller) handleSessionEvent(event session.Event) {
	switch event.Type {
	case session.EventStateChanged:
		c.handleStateChanged(event.State)

	case session.EventStatusUpdated:
		fyne.Do(func() {
			c.applyingStatus = true
			c.volumeSlider.SetValue(event.Status.Volume)
			c.applyingStatus = false
			c.grid.RefreshState()
			c.refreshStatusLine()
		})

	case session.EventPairingRequired:
		c.showPairingDialog("")

	case session.EventPairingFailed:
		c.showPairingDialog(pairingFailureText(event.Reason))

	case session.EventRateLimited:
		c.showPairingDialog(rateLimitText(event.RetryAfter))

	case session.EventConnectFailed:
		fyne.Do(func() {
			c.window.SetContent(c.entrySurface)
			c.showEntryError(connectFailureText(event.Reason))
		})

	case session.EventSessionEnded:
		fyne.Do(func() {
			c.window.SetContent(c.entrySurface)
			if event.Reason != "" {
				c.showEntryError(event.Reason)
			}
		})
	}
}

func (c *controller) handleStateChanged(state session.State) {
	switch state {
	case session.StatePaired:
		fyne.Do(func() {
			// A late auth_ok can land while the code prompt is open.
			c.closePairingPrompt()
			c.hostLabel.SetText(displayName(storage.RecentHost{
				Address: c.sess.Address(),
				Name:    c.sess.HostName(),
			}))
			c.grid.RefreshState()
			c.refreshStatusLine()
			c.window.SetContent(c.sessionSurface)
		})
		c.refreshRecents()
	case session.StateIdle:
		fyne.Do(func() {
			c.closePairingPrompt()
			c.grid.SetEditing(false)
			c.editButton.SetText("Edit")
			c.window.SetContent(c.entrySurface)
		})
	}
}

// closePairingPrompt force-closes an open code prompt without running its
// cancel path. UI thread only.
func (c *controller) closePairingPrompt() {
	if dlg := c.pairingDialog; dlg != nil {
		c.pairingOpen = false
		c.pairingDialog = nil
		dlg.Hide()
	}
}

func (c *controller) refreshStatusLine() {
	remote := c.sess.Remote()
	parts := []string{fmt.Sprintf("Volume %d%%", int(remote.Volume*100+0.5))}
	if remote.Muted {
		parts = append(parts, "muted")
	}
	if remote.Playing {
		parts = append(parts, "playing")
	}
	if remote.MicMuted {
		parts = append(parts, "mic off")
	}
	c.statusLabel.SetText(strings.Join(parts, " · "))
}

func (c *controller) setStatus(message string) {
	fyne.Do(func() {
		if c.window.Content() == c.entrySurface {
			return
		}
		c.statusLabel.SetText(message)
	})
}

// showPairingDialog surfaces the code prompt, with an inline error from the
// previous attempt when there was one. Only one prompt is ever open.
func (c *controller) showPairingDialog(errorText string) {
	fyne.Do(func() {
		if c.pairingOpen {
			return
		}
		c.pairingOpen = true

		codeEntry := widget.NewEntry()
		codeEntry.SetPlaceHolder("Pairing code")

		inlineError := widget.NewLabel(errorText)
		inlineError.Importance = widget.DangerImportance
		inlineError.Wrapping = fyne.TextWrapWord
		if errorText == "" {
			inlineError.Hide()
		}

		host := c.sess.HostName()
		if host == "" {
			host = c.sess.Address()
		}
		content := container.NewVBox(
			widget.NewLabel(fmt.Sprintf("Enter the code shown on %s.", host)),
			codeEntry,
			inlineError,
		)

		dlg := dialog.NewCustomConfirm("Pair with PC", "Pair", "Cancel", content, func(confirmed bool) {
			// Hiding a confirm dialog fires this with false; a prompt
			// force-closed by a successful auth must not disconnect.
			if !c.pairingOpen {
				return
			}
			c.pairingOpen = false
			c.pairingDialog = nil
			if !confirmed {
				c.sess.Disconnect()
				return
			}
			if err := c.sess.SubmitPairingCode(codeEntry.Text); err != nil {
				c.showPairingDialog("A pairing code is required.")
			}
		}, c.window)
		dlg.Resize(fyne.NewSize(340, 220))
		c.pairingDialog = dlg
		dlg.Show()
	})
}

func (c *controller) runDiscovery() {
	c.discoverMu.Lock()
	if c.discoverRunning {
		c.discoverMu.Unlock()
		return
	}
	c.discoverRunning = true
	c.discoverMu.Unlock()
	defer func() {
		c.discoverMu.Lock()
		c.discoverRunning = false
		c.discoverMu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(c.ctx, 10*time.Second)
	defer cancel()

	hosts, err := discovery.Discover(ctx, discovery.Config{})
	if err != nil {
		fyne.Do(func() {
			c.showEntryError("Could not scan the network: " + err.Error())
		})
		return
	}
	if len(hosts) == 0 {
		fyne.Do(func() {
			c.showEntryError("No PCs found. Make sure the server is running on the same network.")
		})
		return
	}

	fyne.Do(func() {
		c.hideEntryError()
		c.showDiscoveryPicker(hosts)
	})
}

func (c *controller) showDiscoveryPicker(hosts []discovery.Host) {
	var dlg dialog.Dialog
	list := widget.NewList(
		func() int { return len(hosts) },
		func() fyne.CanvasObject {
			name := widget.NewLabel("name")
			address := widget.NewLabel("address")
			address.Importance = widget.LowImportance
			return container.NewVBox(name, address)
		},
		func(id widget.ListItemID, item fyne.CanvasObject) {
			host := hosts[id]
			detail := host.Address
			if host.Version != "" {
				detail += " · v" + host.Version
			}
			box := item.(*fyne.Container)
			box.Objects[0].(*widget.Label).SetText(host.Name)
			box.Objects[1].(*widget.Label).SetText(detail)
		},
	)
	list.OnSelected = func(id widget.ListItemID) {
		host := hosts[id]
		dlg.Hide()
		c.connect(host.Address, host.Name)
	}

	content := container.NewStack(list)
	dlg = dialog.NewCustom("PCs on your network", "Close", content, c.window)
	dlg.Resize(fyne.NewSize(360, 320))
	dlg.Show()
}

func (c *controller) refreshRecents() {
	hosts, err := c.store.ListRecentHosts()
	if err != nil {
		fyne.Do(func() {
			c.showEntryError("Could not load recent connections: " + err.Error())
		})
		return
	}
	c.recentsMu.Lock()
	c.recents = hosts
	c.recentsMu.Unlock()
	fyne.Do(func() {
		c.recentsList.Refresh()
	})
}

func (c *controller) recentAt(id widget.ListItemID) (storage.RecentHost, bool) {
	c.recentsMu.RLock()
	defer c.recentsMu.RUnlock()
	if id < 0 || id >= len(c.recents) {
		return storage.RecentHost{}, false
	}
	return c.recents[id], true
}

func (c *controller) deleteRecent(address string) {
	if err := c.store.DeleteRecentHost(address); err != nil {
		c.showEntryError("Could not remove the entry: " + err.Error())
		return
	}
	c.refreshRecents()
}

func (c *controller) showEntryError(message string) {
	c.entryError.SetText(message)
	c.entryError.Show()
}

func (c *controller) hideEntryError() {
	c.entryError.SetText("")
	c.entryError.Hide()
}

func displayName(host storage.RecentHost) string {
	if strings.TrimSpace(host.Name) != "" {
		return host.Name
	}
	return host.Address
}

func pairingFailureText(reason string) string {
	switch reason {
	case "invalid_code":
		return "That code didn't match. Check the code on the PC and try again."
	case "expired_code":
		return "That code has expired. Ask the PC for a new one."
	case "":
		return "Pairing failed. Try again."
	default:
		return "Pairing failed: " + reason
	}
}

func rateLimitText(retryAfter time.Duration) string {
	if retryAfter > 0 {
		return fmt.Sprintf("Too many attempts. Wait %d seconds and try again.", int(retryAfter.Seconds()))
	}
	return "Too many attempts. Wait a moment and try again."
}

func connectFailureText(reason string) string {
	if reason == "" {
		return "Could not reach the PC."
	}
	return "Could not reach the PC: " + reason
}
