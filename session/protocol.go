package session

import (
	"encoding/json"
)

// Outbound command names, matching the host's command set.
const (
	CmdGetStatus       = "get_status"
	CmdSetVolume       = "set_volume"
	CmdVolumeUp        = "volume_up"
	CmdVolumeDown      = "volume_down"
	CmdToggleMute      = "toggle_mute"
	CmdMute            = "mute"
	CmdUnmute          = "unmute"
	CmdTogglePlayPause = "toggle_play_pause"
	CmdPreviousTrack   = "previous_track"
	CmdNextTrack       = "next_track"
	CmdToggleMicMute   = "toggle_mic_mute"
	CmdTakeScreenshot  = "take_screenshot"
	CmdOpenCalculator  = "open_calculator"
	CmdAuth            = "auth"
	CmdPair            = "pair"
)

// Inbound message type discriminants.
const (
	TypeHello        = "hello"
	TypeStatus       = "status"
	TypeOK           = "ok"
	TypeAuthOK       = "auth_ok"
	TypeAuthError    = "auth_error"
	TypePairingOK    = "pairing_ok"
	TypePairingError = "pairing_error"
	TypeRateLimited  = "rate_limited"
	TypeError        = "error"
	TypeShutdown     = "shutdown"
)

type namedCommand struct {
	Cmd string `json:"cmd"`
}

type setVolumeCommand struct {
	Cmd   string  `json:"cmd"`
	Level float64 `json:"level"`
}

type volumeStepCommand struct {
	Cmd   string   `json:"cmd"`
	Delta *float64 `json:"delta,omitempty"`
}

type authCommand struct {
	Cmd      string `json:"cmd"`
	DeviceID string `json:"device_id"`
	Token    string `json:"token"`
}

type pairCommand struct {
	Cmd        string `json:"cmd"`
	Code       string `json:"code"`
	DeviceID   string `json:"device_id"`
	DeviceName string `json:"device_name"`
}

// Inbound is one decoded host message. Exactly one concrete type exists per
// wire discriminant, plus Unrecognized for anything the client cannot place.
type Inbound interface {
	inbound()
}

// Hello is the informational greeting sent on connection open.
type Hello struct {
	Server  string `json:"server"`
	Version string `json:"version"`
}

// Status carries a partial snapshot of host audio/media state. Absent
// fields are nil and must leave the mirrored value untouched.
type Status struct {
	Muted    *bool    `json:"muted"`
	Volume   *float64 `json:"volume"`
	MicMuted *bool    `json:"mic_muted"`
	Playing  *bool    `json:"playing"`
}

// OK acknowledges a command.
type OK struct {
	Action string   `json:"action"`
	Volume *float64 `json:"volume"`
}

// AuthOK confirms token authentication.
type AuthOK struct{}

// AuthError rejects the presented token.
type AuthError struct {
	Reason string `json:"reason"`
}

// PairingOK confirms a pairing code; Token is the newly issued credential.
type PairingOK struct {
	Token string `json:"token"`
}

// PairingError rejects a pairing code.
type PairingError struct {
	Reason string `json:"reason"`
}

// RateLimited reports temporary lockout of auth/pair attempts.
type RateLimited struct {
	Reason         string `json:"reason"`
	RetryAfterSecs int    `json:"retry_after_secs"`
}

// ServerError reports a host-side failure. Hosts differ on the field name.
type ServerError struct {
	Message string `json:"message"`
	Reason  string `json:"reason"`
}

// Text returns whichever description the host supplied.
func (e ServerError) Text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Reason
}

// Shutdown announces a host-initiated shutdown.
type Shutdown struct{}

// Unrecognized wraps payloads with an unknown or missing type discriminant.
type Unrecognized struct {
	Raw []byte
}

func (Hello) inbound()        {}
func (Status) inbound()       {}
func (OK) inbound()           {}
func (AuthOK) inbound()       {}
func (AuthError) inbound()    {}
func (PairingOK) inbound()    {}
func (PairingError) inbound() {}
func (RateLimited) inbound()  {}
func (ServerError) inbound()  {}
func (Shutdown) inbound()     {}
func (Unrecognized) inbound() {}

type inboundEnvelope struct {
	Type string `json:"type"`
}

// DecodeInbound parses one host message. It never fails: malformed payloads
// and unknown discriminants decode to Unrecognized so callers (and tests)
// can observe them without special-casing parse errors.
func DecodeInbound(payload []byte) Inbound {
	var envelope inboundEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return Unrecognized{Raw: payload}
	}

	switch envelope.Type {
	case TypeHello:
		var msg Hello
		if err := json.Unmarshal(payload, &msg); err != nil {
			return Unrecognized{Raw: payload}
		}
		return msg
	case TypeStatus:
		var msg Status
		if err := json.Unmarshal(payload, &msg); err != nil {
			return Unrecognized{Raw: payload}
		}
		return msg
	case TypeOK:
		var msg OK
		if err := json.Unmarshal(payload, &msg); err != nil {
			return Unrecognized{Raw: payload}
		}
		return msg
	case TypeAuthOK:
		return AuthOK{}
	case TypeAuthError:
		var msg AuthError
		if err := json.Unmarshal(payload, &msg); err != nil {
			return Unrecognized{Raw: payload}
		}
		return msg
	case TypePairingOK:
		var msg PairingOK
		if err := json.Unmarshal(payload, &msg); err != nil {
			return Unrecognized{Raw: payload}
		}
		return msg
	case TypePairingError:
		var msg PairingError
		if err := json.Unmarshal(payload, &msg); err != nil {
			return Unrecognized{Raw: payload}
		}
		return msg
	case TypeRateLimited:
		var msg RateLimited
		if err := json.Unmarshal(payload, &msg); err != nil {
			return Unrecognized{Raw: payload}
		}
		return msg
	case TypeError:
		var msg ServerError
		if err := json.Unmarshal(payload, &msg); err != nil {
			return Unrecognized{Raw: payload}
		}
		return msg
	case TypeShutdown:
		return Shutdown{}
	default:
		return Unrecognized{Raw: payload}
	}
}
