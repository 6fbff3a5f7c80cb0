package actions

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"

	"github.com/007king700/FOSS-Deck/session"
)

// Controller is the slice of the session an action needs: liveness, the
// mirrored host state, and the command channel. *session.Session satisfies
// it.
type Controller interface {
	IsPaired() bool
	Remote() session.RemoteState
	SendCommand(name string)
	StepVolume(name string, delta *float64)
	UpdateRemote(mutate func(*session.RemoteState))
}

// Action is one invocable tile. Icon is state-dependent for toggles whose
// look mirrors the host (mute shows the muted icon while muted).
type Action struct {
	ID    string
	Label string
	Icon  func(session.RemoteState) fyne.Resource

	run func(Controller)
}

// Invoke runs the action against a live session. It reports false without
// sending anything when the session is not paired; the caller decides how to
// surface that (the grid reopens the pairing prompt).
func (a Action) Invoke(c Controller) bool {
	if !c.IsPaired() {
		return false
	}
	a.run(c)
	return true
}

func staticIcon(resource fyne.Resource) func(session.RemoteState) fyne.Resource {
	return func(session.RemoteState) fyne.Resource {
		return resource
	}
}

func fireAndForget(cmd string) func(Controller) {
	return func(c Controller) {
		c.SendCommand(cmd)
	}
}

// Volume tiles use the host's default step; a delta override is for
// callers that want a different increment.
func volumeStep(cmd string) func(Controller) {
	return func(c Controller) {
		c.StepVolume(cmd, nil)
	}
}

// Toggles apply their guess to the mirrored state immediately so the tile
// flips without waiting a round trip; the next status push corrects any
// wrong guess.
func toggle(cmd string, flip func(*session.RemoteState)) func(Controller) {
	return func(c Controller) {
		c.UpdateRemote(flip)
		c.SendCommand(cmd)
	}
}

// registry is the full action set in presentation order. Layout
// customization reorders references into this set; it never invents new
// actions.
var registry = []Action{
	{
		ID:    session.CmdToggleMute,
		Label: "Mute",
		Icon: func(r session.RemoteState) fyne.Resource {
			if r.Muted {
				return theme.VolumeMuteIcon()
			}
			return theme.VolumeUpIcon()
		},
		run: toggle(session.CmdToggleMute, func(r *session.RemoteState) {
			r.Muted = !r.Muted
		}),
	},
	{
		ID:    session.CmdVolumeUp,
		Label: "Volume Up",
		Icon:  staticIcon(theme.VolumeUpIcon()),
		run:   volumeStep(session.CmdVolumeUp),
	},
	{
		ID:    session.CmdVolumeDown,
		Label: "Volume Down",
		Icon:  staticIcon(theme.VolumeDownIcon()),
		run:   volumeStep(session.CmdVolumeDown),
	},
	{
		ID:    session.CmdTogglePlayPause,
		Label: "Play/Pause",
		Icon: func(r session.RemoteState) fyne.Resource {
			if r.Playing {
				return theme.MediaPauseIcon()
			}
			return theme.MediaPlayIcon()
		},
		run: toggle(session.CmdTogglePlayPause, func(r *session.RemoteState) {
			r.Playing = !r.Playing
		}),
	},
	{
		ID:    session.CmdPreviousTrack,
		Label: "Previous",
		Icon:  staticIcon(theme.MediaSkipPreviousIcon()),
		run:   fireAndForget(session.CmdPreviousTrack),
	},
	{
		ID:    session.CmdNextTrack,
		Label: "Next",
		Icon:  staticIcon(theme.MediaSkipNextIcon()),
		run:   fireAndForget(session.CmdNextTrack),
	},
	{
		ID:    session.CmdToggleMicMute,
		Label: "Microphone",
		Icon: func(r session.RemoteState) fyne.Resource {
			if r.MicMuted {
				return theme.CancelIcon()
			}
			return theme.MediaRecordIcon()
		},
		run: toggle(session.CmdToggleMicMute, func(r *session.RemoteState) {
			r.MicMuted = !r.MicMuted
		}),
	},
	{
		ID:    session.CmdTakeScreenshot,
		Label: "Screenshot",
		Icon:  staticIcon(theme.MediaPhotoIcon()),
		run:   fireAndForget(session.CmdTakeScreenshot),
	},
	{
		ID:    session.CmdOpenCalculator,
		Label: "Calculator",
		Icon:  staticIcon(theme.GridIcon()),
		run:   fireAndForget(session.CmdOpenCalculator),
	},
}

// All returns the full action set in default order.
func All() []Action {
	return append([]Action(nil), registry...)
}

// ByID looks an action up by its stable identifier.
func ByID(id string) (Action, bool) {
	for _, action := range registry {
		if action.ID == id {
			return action, true
		}
	}
	return Action{}, false
}

// DefaultLayout returns the default tile ordering: every known action, in
// registry order.
func DefaultLayout() []string {
	ids := make([]string, len(registry))
	for i, action := range registry {
		ids[i] = action.ID
	}
	return ids
}
