package retention

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// SnapshotTag versions the serialized parameter format.
const SnapshotTag = "retention-v1"

type snapshot struct {
	Tag    string
	Params parameters
}

// Snapshot serializes the model's parameters as an opaque versioned blob.
func (m *Model) Snapshot() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snapshot{Tag: SnapshotTag, Params: m.p}); err != nil {
		return nil, fmt.Errorf("encode retention snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// Restore replaces the model's parameters from a snapshot blob. An empty blob
// is a no-op: the model keeps its fresh initialization, matching the
// degrade-gracefully contract for a missing trained model. A malformed blob
// or a tag mismatch is reported but leaves the parameters untouched.
func (m *Model) Restore(blob []byte) error {
	if len(blob) == 0 {
		return nil
	}
	var snap snapshot
	if err := gob.NewDecoder(bytes.NewReader(blob)).Decode(&snap); err != nil {
		return fmt.Errorf("decode retention snapshot: %w", err)
	}
	if snap.Tag != SnapshotTag {
		return fmt.Errorf("retention snapshot tag %q, want %q", snap.Tag, SnapshotTag)
	}
	m.p = snap.Params
	return nil
}
