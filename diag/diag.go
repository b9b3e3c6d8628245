// Package diag accumulates per-phase diagnostic counters and a bounded ring
// of the most recent diagnostic messages produced while processing a file.
// It holds no file handle or stream of its own: consumers pull a Snapshot
// and decide what, if anything, to print.
package diag

import "fmt"

// Level is the severity of a diagnostic message.
type Level uint8

const (
	Info Level = iota
	Warning
	Error
)

func (l Level) String() string {
	switch l {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Phase identifies which stage of the pipeline produced a message.
type Phase uint8

const (
	PhaseParse Phase = iota
	PhasePrepare
	PhaseGeometry
	PhaseVoid
	PhaseStream
)

func (p Phase) String() string {
	switch p {
	case PhaseParse:
		return "parse"
	case PhasePrepare:
		return "prepare"
	case PhaseGeometry:
		return "geometry"
	case PhaseVoid:
		return "void"
	case PhaseStream:
		return "stream"
	default:
		return "unknown"
	}
}

// DiagMessage is a single diagnostic event: a level and phase, the entity
// (if any) it concerns, and a human-readable message.
type DiagMessage struct {
	Level     Level
	Phase     Phase
	EntityID  int64
	HasEntity bool
	Message   string
}

// Error implements the error interface so a DiagMessage can be wrapped or
// compared with errors.As like any other error type.
func (d DiagMessage) Error() string {
	if d.HasEntity {
		return fmt.Sprintf("%s[%s] #%d: %s", d.Level, d.Phase, d.EntityID, d.Message)
	}
	return fmt.Sprintf("%s[%s]: %s", d.Level, d.Phase, d.Message)
}

// defaultRingSize bounds memory use on files with millions of recoverable
// faults; only the most recent messages are kept, since a long tail of
// identical per-entity warnings adds nothing past the first few hundred.
const defaultRingSize = 500

// Collector accumulates counters and a bounded ring of recent messages. It
// is not safe for concurrent use by multiple goroutines without external
// synchronization — mirrors decode.Decoder and placement.Resolver, whose
// per-instance caches carry the same restriction, so a Collector is owned
// by a single caller (corepipe.ProcessFile, or the stream scheduler's single
// run goroutine) rather than shared across worker goroutines.
type Collector struct {
	ringSize int
	ring     []DiagMessage
	next     int
	dropped  int

	counts map[Phase][3]int // indexed by Level
}

// NewCollector returns an empty Collector with the default ring capacity.
func NewCollector() *Collector {
	return &Collector{
		ringSize: defaultRingSize,
		counts:   make(map[Phase][3]int),
	}
}

// Record appends msg, incrementing msg.Phase's counter for msg.Level and
// keeping the ring's most recent defaultRingSize messages.
func (c *Collector) Record(msg DiagMessage) {
	counts := c.counts[msg.Phase]
	counts[msg.Level]++
	c.counts[msg.Phase] = counts

	if len(c.ring) < c.ringSize {
		c.ring = append(c.ring, msg)
		return
	}
	c.ring[c.next%c.ringSize] = msg
	c.next++
	c.dropped++
}

// Warnf records a Warning-level message for phase, with no associated
// entity.
func (c *Collector) Warnf(phase Phase, format string, args ...any) {
	c.Record(DiagMessage{Level: Warning, Phase: phase, Message: fmt.Sprintf(format, args...)})
}

// WarnEntityf records a Warning-level message for phase concerning
// entityID.
func (c *Collector) WarnEntityf(phase Phase, entityID int64, format string, args ...any) {
	c.Record(DiagMessage{Level: Warning, Phase: phase, EntityID: entityID, HasEntity: true, Message: fmt.Sprintf(format, args...)})
}

// Errorf records an Error-level message for phase, with no associated
// entity.
func (c *Collector) Errorf(phase Phase, format string, args ...any) {
	c.Record(DiagMessage{Level: Error, Phase: phase, Message: fmt.Sprintf(format, args...)})
}

// ErrorEntityf records an Error-level message for phase concerning
// entityID.
func (c *Collector) ErrorEntityf(phase Phase, entityID int64, format string, args ...any) {
	c.Record(DiagMessage{Level: Error, Phase: phase, EntityID: entityID, HasEntity: true, Message: fmt.Sprintf(format, args...)})
}

// Merge folds another Collector's counters and messages into c, in the
// order other's messages were recorded. Used to combine the per-worker
// diagnostics a streaming batch accumulates back into the scheduler's
// single Collector once the batch's fork-join completes.
func (c *Collector) Merge(other *Collector) {
	if other == nil {
		return
	}
	for phase, counts := range other.counts {
		existing := c.counts[phase]
		for lvl := range counts {
			existing[lvl] += counts[lvl]
		}
		c.counts[phase] = existing
	}
	for _, msg := range other.Messages() {
		if len(c.ring) < c.ringSize {
			c.ring = append(c.ring, msg)
			continue
		}
		c.ring[c.next%c.ringSize] = msg
		c.next++
		c.dropped++
	}
}

// Messages returns the ring's contents in the order they were recorded.
func (c *Collector) Messages() []DiagMessage {
	if len(c.ring) < c.ringSize {
		out := make([]DiagMessage, len(c.ring))
		copy(out, c.ring)
		return out
	}
	out := make([]DiagMessage, c.ringSize)
	for i := 0; i < c.ringSize; i++ {
		out[i] = c.ring[(c.next+i)%c.ringSize]
	}
	return out
}

// Count returns how many messages of level have been recorded for phase,
// including ones no longer present in the ring.
func (c *Collector) Count(phase Phase, level Level) int {
	return c.counts[phase][level]
}

// Snapshot is an immutable view of a Collector's state at a point in time,
// the shape handed to a consumer (cmd/ifcgeomc's stderr adapter, or a
// corepipe.Summary field) instead of the live, mutable Collector.
type Snapshot struct {
	Messages      []DiagMessage
	DroppedCount  int
	CountsByPhase map[Phase]PhaseCounts
}

// PhaseCounts is a phase's message counts broken out by level.
type PhaseCounts struct {
	Info    int
	Warning int
	Error   int
}

// Snapshot captures c's current state. The returned value shares no
// mutable state with c; recording further messages on c does not affect an
// already-taken Snapshot.
func (c *Collector) Snapshot() Snapshot {
	byPhase := make(map[Phase]PhaseCounts, len(c.counts))
	for phase, counts := range c.counts {
		byPhase[phase] = PhaseCounts{Info: counts[Info], Warning: counts[Warning], Error: counts[Error]}
	}
	return Snapshot{
		Messages:      c.Messages(),
		DroppedCount:  c.dropped,
		CountsByPhase: byPhase,
	}
}

// HasErrors reports whether any Error-level message has been recorded in
// any phase.
func (s Snapshot) HasErrors() bool {
	for _, counts := range s.CountsByPhase {
		if counts.Error > 0 {
			return true
		}
	}
	return false
}
