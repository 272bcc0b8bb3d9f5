package rig

// Index resolves controls, channels and mirror partners by identity.
//
// An Index is a snapshot: it is replaced, never updated, by Graph.Rebuild.
type Index struct {
	controls map[string]*Control
	channels map[ChannelKey]*Channel
	mirrors  map[string]*Control
}

func buildIndex(controls []*Control) *Index {
	ix := &Index{
		controls: make(map[string]*Control, len(controls)),
		channels: make(map[ChannelKey]*Channel),
		mirrors:  make(map[string]*Control, len(controls)),
	}
	for _, c := range controls {
		name := NormalizeName(c.Name)
		if _, dup := ix.controls[name]; dup {
			continue
		}
		ix.controls[name] = c
		for _, ch := range c.Channels {
			k := ChannelKey{Control: name, Type: ch.Type, Axis: ch.Axis}
			if _, dup := ix.channels[k]; !dup {
				ix.channels[k] = ch
			}
		}
	}
	for name, c := range ix.controls {
		if partner, ok := ix.controls[NormalizeName(MirrorName(name))]; ok {
			ix.mirrors[name] = partner
		} else {
			ix.mirrors[name] = c
		}
	}
	return ix
}

// Control looks up a control by name.
func (ix *Index) Control(name string) (*Control, bool) {
	c, ok := ix.controls[NormalizeName(name)]
	return c, ok
}

// Channel looks up a channel by key.
func (ix *Index) Channel(key ChannelKey) (*Channel, bool) {
	key.Control = NormalizeName(key.Control)
	ch, ok := ix.channels[key]
	return ch, ok
}

// MirrorControl returns the partner of a control, or the control itself when
// it has none.
func (ix *Index) MirrorControl(name string) (*Control, bool) {
	c, ok := ix.mirrors[NormalizeName(name)]
	return c, ok
}

// MirrorChannel returns the channel with the same type and axis on the
// control's mirror target.
func (ix *Index) MirrorChannel(key ChannelKey) (ChannelKey, *Channel, bool) {
	partner, ok := ix.MirrorControl(key.Control)
	if !ok {
		return ChannelKey{}, nil, false
	}
	mk := ChannelKey{Control: NormalizeName(partner.Name), Type: key.Type, Axis: key.Axis}
	ch, ok := ix.channels[mk]
	if !ok {
		return ChannelKey{}, nil, false
	}
	return mk, ch, true
}

// Len returns the number of indexed channels.
func (ix *Index) Len() int {
	return len(ix.channels)
}
