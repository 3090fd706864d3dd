// Package wire implements the multipart-frame wire format described in §6
// of the spec: symbolic-ID bytes, READY/HEARTBEAT tags, and the frame
// shapes exchanged between actors. The concrete point-to-point transport
// itself lives in internal/transport and is treated, per §1, as an external
// collaborator — this package only knows about frame content.
package wire

// SymbolicID is the one-byte token identifying a node kind on the wire.
type SymbolicID byte

// The 0x08-series symbolic IDs, pinned per the Open Question in §9: the
// original source carried two conflicting constants headers (0x08-series
// vs 0x28-series vs 0xF8-series); spec.md resolves this in favor of the
// 0x08-series as used by the most recent role sources, and that is what
// ships here.
const (
	Line         SymbolicID = 0x08
	Thermoformer SymbolicID = 0x09
	RobotCell    SymbolicID = 0x0A
	QAS          SymbolicID = 0x0B
	Ceiling      SymbolicID = 0x0C
	Printing     SymbolicID = 0x0D
)

// String renders the symbolic ID as a short human-readable name. Any byte
// value outside the table above renders as "unknown", per §6.
func (id SymbolicID) String() string {
	switch id {
	case Line:
		return "Line"
	case Thermoformer:
		return "Thermoformer"
	case RobotCell:
		return "Robot Cell"
	case QAS:
		return "QAS"
	case Ceiling:
		return "Ceiling"
	case Printing:
		return "Printing"
	default:
		return "unknown"
	}
}

// Ready and Heartbeat are the non-lifecycle-state wire tags used in the
// 2-frame announce and downstream-heartbeat messages (§6).
const (
	ReadyTag     byte = 0x01
	HeartbeatTag byte = 0x02
)
