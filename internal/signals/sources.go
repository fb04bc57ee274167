// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package signals

// Source is a read-only observable value.
type Source[T any] interface {
	Get() T
	Subscribe(fn func(T)) Disposer
}

// IdentitySource yields the signed-in user id, empty when nobody is signed in.
type IdentitySource = Source[string]

// PreferenceSource yields the sync-enabled preference.
type PreferenceSource = Source[bool]

// ConnectivitySource yields the online flag and fires OnRestored on every
// offline to online transition.
type ConnectivitySource interface {
	Source[bool]
	OnRestored(fn func()) Disposer
}

// Identity is the writable identity signal owned by the auth layer.
type Identity struct {
	*Value[string]
}

// NewIdentity returns an identity signal with nobody signed in.
func NewIdentity() *Identity {
	return &Identity{Value: NewValue("")}
}

// Present reports whether a user is signed in.
func (i *Identity) Present() bool {
	return i.Get() != ""
}

// Preference is a writable boolean preference.
type Preference struct {
	*Value[bool]
}

// NewPreference returns a preference holding initial.
func NewPreference(initial bool) *Preference {
	return &Preference{Value: NewValue(initial)}
}

// Connectivity is the writable online/offline signal.
type Connectivity struct {
	online   *Value[bool]
	restored *Signal[struct{}]
}

// NewConnectivity returns a connectivity signal in the given state.
func NewConnectivity(online bool) *Connectivity {
	return &Connectivity{
		online:   NewValue(online),
		restored: NewSignal[struct{}](),
	}
}

func (c *Connectivity) Get() bool {
	return c.online.Get()
}

// SetOnline updates the flag. Going from offline to online also fires the
// restored event, after the value subscribers ran.
func (c *Connectivity) SetOnline(online bool) {
	if c.online.Set(online) && online {
		c.restored.Emit(struct{}{})
	}
}

func (c *Connectivity) Subscribe(fn func(bool)) Disposer {
	return c.online.Subscribe(fn)
}

func (c *Connectivity) OnRestored(fn func()) Disposer {
	return c.restored.Subscribe(func(struct{}) { fn() })
}

var (
	_ IdentitySource     = (*Identity)(nil)
	_ PreferenceSource   = (*Preference)(nil)
	_ ConnectivitySource = (*Connectivity)(nil)
)
