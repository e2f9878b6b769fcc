package policy

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// SnapshotTag versions the serialized weight format.
const SnapshotTag = "policy-v1"

type snapshot struct {
	Tag           string
	L1W, L2W, L3W [][]float64
	L1B, L2B, L3B []float64
	Epsilon       float64
}

// Snapshot serializes the value network's weights and the exploration rate
// as an opaque versioned blob. The replay buffer is deliberately excluded:
// experience is transient.
func (a *Agent) Snapshot() ([]byte, error) {
	var buf bytes.Buffer
	snap := snapshot{
		Tag: SnapshotTag,
		L1W: a.net.l1.W, L1B: a.net.l1.B,
		L2W: a.net.l2.W, L2B: a.net.l2.B,
		L3W: a.net.l3.W, L3B: a.net.l3.B,
		Epsilon: a.epsilon,
	}
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return nil, fmt.Errorf("encode policy snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// Restore replaces the network weights from a snapshot blob. An empty blob is
// a no-op: missing snapshots mean fresh initialization, never an error. A
// malformed or mismatched blob is reported and leaves the agent untouched.
func (a *Agent) Restore(blob []byte) error {
	if len(blob) == 0 {
		return nil
	}
	var snap snapshot
	if err := gob.NewDecoder(bytes.NewReader(blob)).Decode(&snap); err != nil {
		return fmt.Errorf("decode policy snapshot: %w", err)
	}
	if snap.Tag != SnapshotTag {
		return fmt.Errorf("policy snapshot tag %q, want %q", snap.Tag, SnapshotTag)
	}
	if len(snap.L1W) != hiddenDim || len(snap.L3W) != ActionDim {
		return fmt.Errorf("policy snapshot shape mismatch")
	}
	a.net.l1.W, a.net.l1.B = snap.L1W, snap.L1B
	a.net.l2.W, a.net.l2.B = snap.L2W, snap.L2B
	a.net.l3.W, a.net.l3.B = snap.L3W, snap.L3B
	if snap.Epsilon >= epsilonMin && snap.Epsilon <= epsilonStart {
		a.epsilon = snap.Epsilon
	}
	return nil
}
