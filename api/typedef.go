package api

import (
	"time"

	"lumina/typedef"
)

// WebSocket message types
type MessageType string

const (
	// Outgoing message types (server to client)
	MessageTypeStateData MessageType = "state_data"
	MessageTypePlayback  MessageType = "playback"
	MessageTypeError     MessageType = "error"
	MessageTypeAck       MessageType = "ack"

	// Incoming message types (client to server)
	MessageTypeUpdateEffectTimeRange MessageType = "update_effect_time_range"
	MessageTypeMoveEffect            MessageType = "move_effect"
	MessageTypeAddEffect             MessageType = "add_effect"
	MessageTypeDeleteEffects         MessageType = "delete_effects"
	MessageTypeSeek                  MessageType = "seek"
	MessageTypePlay                  MessageType = "play"
	MessageTypePause                 MessageType = "pause"
	MessageTypeSetRegion             MessageType = "set_region"
	MessageTypeSetLooping            MessageType = "set_looping"
	MessageTypeGetState              MessageType = "get_state"
	MessageTypeGetPlayback           MessageType = "get_playback"
	MessageTypeSaveShow              MessageType = "save_show"
	MessageTypeLoadShow              MessageType = "load_show"
)

// WSMessage is the wire envelope in both directions.
type WSMessage struct {
	Type      MessageType `json:"type"`
	RequestID string      `json:"request_id,omitempty"` // For correlating responses
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// StateData is pushed after every successful store mutation.
type StateData struct {
	Show          typedef.Show `json:"show"`
	SequenceIndex int          `json:"sequence_index"`
}

// Incoming payloads

type UpdateEffectTimeRangeData struct {
	SequenceIndex int     `json:"sequence_index"`
	TrackIndex    int     `json:"track_index"`
	EffectIndex   int     `json:"effect_index"`
	Start         float64 `json:"start"`
	End           float64 `json:"end"`
}

type MoveEffectData struct {
	SequenceIndex int               `json:"sequence_index"`
	TrackIndex    int               `json:"track_index"`
	EffectIndex   int               `json:"effect_index"`
	TargetFixture typedef.FixtureID `json:"target_fixture"`
	Start         float64           `json:"start"`
	End           float64           `json:"end"`
}

type MoveEffectResult struct {
	TrackIndex  int `json:"track_index"`
	EffectIndex int `json:"effect_index"`
}

type AddEffectData struct {
	SequenceIndex int     `json:"sequence_index"`
	TrackIndex    int     `json:"track_index"`
	Kind          string  `json:"kind"`
	Start         float64 `json:"start"`
	End           float64 `json:"end"`
}

type DeleteEffectsData struct {
	SequenceIndex int      `json:"sequence_index"`
	Targets       [][2]int `json:"targets"` // (track, effect) pairs
}

type SeekData struct {
	Time float64 `json:"time"`
}

type SetRegionData struct {
	Region *[2]float64 `json:"region"` // null clears
}

type SetLoopingData struct {
	Looping bool `json:"looping"`
}

type LoadShowData struct {
	Path string `json:"path"`
}
