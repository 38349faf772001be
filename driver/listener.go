package driver

import (
	"context"
	"encoding/json"
)

// Notification is a PostgreSQL NOTIFY message (or its in-process
// equivalent).
type Notification struct {
	Channel string
	Payload string
}

// Listener receives notifications on a dedicated connection.
type Listener interface {
	// Listen subscribes to channel. It may be called more than once.
	Listen(ctx context.Context, channel string) error

	// WaitForNotification blocks until a notification arrives or ctx ends.
	WaitForNotification(ctx context.Context) (*Notification, error)

	// Close releases the connection. A closed listener cannot be reused.
	Close(ctx context.Context) error
}

// ChannelArtifactCreated is notified once per saved artifact, after the
// saving transaction commits. The payload is an ArtifactEvent in JSON.
const ChannelArtifactCreated = "artifactpg_artifact_created"

// ArtifactEvent is the payload of ChannelArtifactCreated.
type ArtifactEvent struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
	Kind      string `json:"kind"`
	Title     string `json:"title"`
}

// Encode returns the event as a notification payload.
func (e ArtifactEvent) Encode() string {
	data, _ := json.Marshal(e)
	return string(data)
}

// DecodeArtifactEvent parses a ChannelArtifactCreated payload.
func DecodeArtifactEvent(payload string) (ArtifactEvent, error) {
	var e ArtifactEvent
	err := json.Unmarshal([]byte(payload), &e)
	return e, err
}
