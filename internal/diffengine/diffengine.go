// Package diffengine implements the two-pointer sorted merge over two
// already-consolidated rule sequences (spec.md §4.7). Each side is a
// BufferSink produced by a prior dedup pass; the engine reparses every
// entry's rule bytes through the LineParser (ruleline.Classify) to
// recover its DomainView, since the sink only stores raw rule bytes and
// a byte-offset/length index, not parsed domains.
package diffengine

import (
	"blockfold/internal/domainview"
	"blockfold/internal/invariant"
	"blockfold/internal/ruleline"
	"blockfold/internal/sink"
)

// Marker bytes, exactly two per spec.md §4.7. The B-side winner marker
// (" b") deliberately omits the `+` another implementation would expect;
// carried forward from the prior implementation's core_write_DV, which
// special-cased the 'b' marker the same way, not a bug here.
var (
	markerNeutral  = []byte("  ")
	markerWinnerA  = []byte("+a")
	markerWinnerB  = []byte(" b")
	markerLoserA   = []byte("-a")
	markerLoserB   = []byte("-b")
)

// side walks one BufferSink's line index left to right, tracking the
// written flag a blk comparison needs to avoid re-emitting the same
// entry while the other side advances past several dominated entries.
type side struct {
	buf     *sink.BufferSink
	lines   []sink.LiteLine
	idx     int
	written bool
}

func newSide(buf *sink.BufferSink) *side {
	return &side{buf: buf, lines: buf.Lines()}
}

func (s *side) done() bool { return s.idx >= len(s.lines) }

func (s *side) ruleBytes() []byte { return s.buf.Slice(s.lines[s.idx]) }

// view reparses the current entry's rule bytes into a DomainView.
// A parse failure here is an assertion violation: the engine assumes
// its inputs are already-pruned, already-sorted consolidator output.
func (s *side) view() *domainview.View {
	rule := s.ruleBytes()
	line := ruleline.Classify(rule, 0, len(rule))
	invariant.Check(line.Kind == ruleline.KindBlock,
		"diffengine: non-block rule in consolidated input: %q", rule)

	v, err := domainview.Parse(line.Domain)
	invariant.Check(err == nil,
		"diffengine: invalid domain in consolidated input: %v", err)
	return v
}

func (s *side) advance() {
	s.idx++
	s.written = false
}

// Run merges a and b into out, writing one two-byte-marker-prefixed line
// per rule per spec.md §4.7's five-way comparison outcome.
func Run(out sink.Sink, a, b *sink.BufferSink) error {
	sideA := newSide(a)
	sideB := newSide(b)

	for !sideA.done() && !sideB.done() {
		switch domainview.Compare(sideA.view(), sideB.view()) {
		case domainview.Equal:
			if err := write(out, markerNeutral, sideA.ruleBytes()); err != nil {
				return err
			}
			sideA.advance()
			sideB.advance()

		case domainview.Less:
			if err := write(out, markerWinnerA, sideA.ruleBytes()); err != nil {
				return err
			}
			sideA.advance()

		case domainview.Greater:
			if err := write(out, markerWinnerB, sideB.ruleBytes()); err != nil {
				return err
			}
			sideB.advance()

		case domainview.ASuffixOfB:
			// A blk B: A dominates B's entry. A may dominate several
			// consecutive B entries before B catches up or overtakes,
			// so A is written at most once across those repeats.
			if !sideA.written {
				if err := write(out, markerWinnerA, sideA.ruleBytes()); err != nil {
					return err
				}
				sideA.written = true
			}
			if err := write(out, markerLoserB, sideB.ruleBytes()); err != nil {
				return err
			}
			sideB.advance()

		case domainview.BSuffixOfA:
			// B blk A: symmetric case, B fixed, A advances and loses.
			if !sideB.written {
				if err := write(out, markerWinnerB, sideB.ruleBytes()); err != nil {
					return err
				}
				sideB.written = true
			}
			if err := write(out, markerLoserA, sideA.ruleBytes()); err != nil {
				return err
			}
			sideA.advance()
		}
	}

	// Drain whichever side still has entries. A side's current entry may
	// already have been written as a blk winner before the other side
	// ran out (written stays set until that side itself advances), so
	// skip re-emitting it but still advance past it.
	for !sideA.done() {
		if !sideA.written {
			if err := write(out, markerWinnerA, sideA.ruleBytes()); err != nil {
				return err
			}
		}
		sideA.advance()
	}
	for !sideB.done() {
		if !sideB.written {
			if err := write(out, markerWinnerB, sideB.ruleBytes()); err != nil {
				return err
			}
		}
		sideB.advance()
	}

	return nil
}

func write(out sink.Sink, marker, rule []byte) error {
	payload := make([]byte, 0, len(marker)+len(rule))
	payload = append(payload, marker...)
	payload = append(payload, rule...)
	return out.WriteLine(payload)
}
