package sensor

import "time"

// Channel is the live state of one sensor kind in one room: its current
// value, the accumulated history and any active comfort warnings.
type Channel struct {
	Kind     Kind     `json:"kind"`
	Unit     string   `json:"unit"`
	Current  Value    `json:"current"`
	History  Series   `json:"history"`
	Warnings []string `json:"warnings,omitempty"`
}

// Room groups the channels of one multisensor device together with the
// room metadata needed for occupancy estimation. Volume may be 0 for
// volumeless spaces (hallways); estimators must not divide by it blindly.
type Room struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Volume   float64           `json:"volume"`
	Channels map[Kind]*Channel `json:"channels"`
}

// Channel returns the named channel, or nil when the room does not track
// that kind.
func (r *Room) Channel(k Kind) *Channel {
	if r == nil {
		return nil
	}
	return r.Channels[k]
}

func (r *Room) clone() *Room {
	out := &Room{
		ID:       r.ID,
		Name:     r.Name,
		Volume:   r.Volume,
		Channels: make(map[Kind]*Channel, len(r.Channels)),
	}
	for k, ch := range r.Channels {
		cloned := &Channel{
			Kind:    ch.Kind,
			Unit:    ch.Unit,
			Current: ch.Current,
			History: ch.History.clone(),
		}
		if ch.Warnings != nil {
			cloned.Warnings = append([]string(nil), ch.Warnings...)
		}
		out.Channels[k] = cloned
	}
	return out
}

// Snapshot is an immutable point-in-time view of every room. The store
// publishes a fresh snapshot per refresh tick; readers must treat it as
// read-only.
type Snapshot struct {
	TakenAt time.Time        `json:"takenAt"`
	Rooms   map[string]*Room `json:"rooms"`
}

// Room looks a room up by device ID.
func (s *Snapshot) Room(id string) (*Room, bool) {
	if s == nil {
		return nil, false
	}
	r, ok := s.Rooms[id]
	return r, ok
}

// SnapshotOf deep-copies the given rooms into a new snapshot so later
// store mutations cannot leak into published state.
func SnapshotOf(takenAt time.Time, rooms map[string]*Room) *Snapshot {
	out := &Snapshot{TakenAt: takenAt, Rooms: make(map[string]*Room, len(rooms))}
	for id, r := range rooms {
		out.Rooms[id] = r.clone()
	}
	return out
}
