package session

import "testing"

func TestDecodeInboundStatus(t *testing.T) {
	msg := DecodeInbound([]byte(`{"type":"status","muted":true,"volume":0.55}`))
	status, ok := msg.(Status)
	if !ok {
		t.Fatalf("expected Status, got %T", msg)
	}
	if status.Muted == nil || !*status.Muted {
		t.Fatalf("expected muted=true, got %+v", status)
	}
	if status.Volume == nil || *status.Volume != 0.55 {
		t.Fatalf("expected volume=0.55, got %+v", status)
	}
	if status.Playing != nil || status.MicMuted != nil {
		t.Fatalf("absent fields must decode to nil, got %+v", status)
	}
}

func TestDecodeInboundKnownTypes(t *testing.T) {
	cases := []struct {
		payload string
		check   func(Inbound) bool
	}{
		{`{"type":"hello","server":"foss-deck","version":"1.2.0"}`, func(m Inbound) bool {
			hello, ok := m.(Hello)
			return ok && hello.Server == "foss-deck" && hello.Version == "1.2.0"
		}},
		{`{"type":"ok","action":"set_volume","volume":0.4}`, func(m Inbound) bool {
			ack, ok := m.(OK)
			return ok && ack.Action == "set_volume" && ack.Volume != nil && *ack.Volume == 0.4
		}},
		{`{"type":"auth_ok"}`, func(m Inbound) bool {
			_, ok := m.(AuthOK)
			return ok
		}},
		{`{"type":"auth_error","reason":"invalid_token"}`, func(m Inbound) bool {
			e, ok := m.(AuthError)
			return ok && e.Reason == "invalid_token"
		}},
		{`{"type":"pairing_ok","token":"abc"}`, func(m Inbound) bool {
			p, ok := m.(PairingOK)
			return ok && p.Token == "abc"
		}},
		{`{"type":"pairing_error","reason":"invalid_code"}`, func(m Inbound) bool {
			p, ok := m.(PairingError)
			return ok && p.Reason == "invalid_code"
		}},
		{`{"type":"rate_limited","reason":"pair","retry_after_secs":30}`, func(m Inbound) bool {
			r, ok := m.(RateLimited)
			return ok && r.Reason == "pair" && r.RetryAfterSecs == 30
		}},
		{`{"type":"shutdown"}`, func(m Inbound) bool {
			_, ok := m.(Shutdown)
			return ok
		}},
	}
	for _, tc := range cases {
		if msg := DecodeInbound([]byte(tc.payload)); !tc.check(msg) {
			t.Fatalf("payload %s decoded to unexpected %T %+v", tc.payload, msg, msg)
		}
	}
}

func TestDecodeInboundServerErrorFieldVariants(t *testing.T) {
	msg := DecodeInbound([]byte(`{"type":"error","message":"something broke"}`))
	e, ok := msg.(ServerError)
	if !ok || e.Text() != "something broke" {
		t.Fatalf("expected message-form error, got %T %+v", msg, msg)
	}

	msg = DecodeInbound([]byte(`{"type":"error","reason":"unauthorized"}`))
	e, ok = msg.(ServerError)
	if !ok || e.Text() != "unauthorized" {
		t.Fatalf("expected reason-form error, got %T %+v", msg, msg)
	}
}

func TestDecodeInboundNeverFails(t *testing.T) {
	cases := []string{
		`not json at all`,
		`{"type":"brand_new_thing"}`,
		`{"no_type":true}`,
		``,
	}
	for _, payload := range cases {
		msg := DecodeInbound([]byte(payload))
		if _, ok := msg.(Unrecognized); !ok {
			t.Fatalf("payload %q: expected Unrecognized, got %T", payload, msg)
		}
	}
}
