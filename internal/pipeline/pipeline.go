// Package pipeline wires the component chain spec.md §2 describes:
// files → LineParser → DomainView → DomainTree (via TLDIndex) →
// Consolidator → OutputSink, run once for dedupe mode and twice (into
// temporary buffers) before DiffEngine for diff mode.
package pipeline

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"blockfold/internal/audit"
	"blockfold/internal/config"
	"blockfold/internal/consolidator"
	"blockfold/internal/diffengine"
	"blockfold/internal/domaintree"
	"blockfold/internal/domainview"
	"blockfold/internal/progress"
	"blockfold/internal/ruleline"
	"blockfold/internal/sink"
	"blockfold/internal/source"
	"blockfold/internal/tldindex"
	"blockfold/internal/utils"
)

// ingestInto reads one file's lines into idx, inserting every block
// rule and collecting header/comment lines for carry-over. Lines over
// limits.MaxLineLength are dropped with a warning rather than aborting
// the whole read, per spec.md §6/§7. The whole stream is capped at
// limits.MaxFileBytes (0 means unbounded): exceeding it aborts the read
// with utils.ErrFileTooLarge rather than silently ingesting a prefix.
func ingestInto(idx tldindex.Index, r io.Reader, limits config.LimitsConfig, sourceName string, reporter *progress.Server) ([][]byte, error) {
	var carryOver [][]byte
	reader := bufio.NewReaderSize(utils.BoundedReader(r, limits.MaxFileBytes), 64*1024)

	var offset int64
	var linesProcessed int
	for {
		raw, readErr := reader.ReadBytes('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			if errors.Is(readErr, utils.ErrFileTooLarge) {
				logrus.WithFields(logrus.Fields{"source": sourceName, "limit": limits.MaxFileBytes}).
					Error("pipeline: source exceeds maximum file size")
			}
			return nil, readErr
		}
		if len(raw) == 0 && errors.Is(readErr, io.EOF) {
			break
		}

		rawLen := len(raw)
		trimmed := bytes.TrimRight(raw, "\r\n")

		if len(trimmed) > limits.MaxLineLength {
			logrus.WithFields(logrus.Fields{"source": sourceName, "length": len(trimmed)}).
				Warn("pipeline: line exceeds maximum length, dropping")
		} else {
			line := ruleline.Classify(trimmed, offset, rawLen)
			switch line.Kind {
			case ruleline.KindHeader, ruleline.KindComment:
				cp := make([]byte, len(trimmed))
				copy(cp, trimmed)
				carryOver = append(carryOver, cp)

			case ruleline.KindBlock:
				view, err := domainview.Parse(line.Domain)
				if err != nil {
					logrus.WithFields(logrus.Fields{"source": sourceName, "domain": string(line.Domain)}).
						WithError(err).Warn("pipeline: rejecting malformed domain")
				} else {
					labels := make([][]byte, 0, view.NumLabels()-1)
					for i := 1; i < view.NumLabels(); i++ {
						labels = append(labels, view.LabelAt(i))
					}
					root := idx.InsertOrGet(view.TLD())
					for _, dom := range domaintree.Insert(root, view.TLD(), labels, line.Strength, line.Info, sourceName) {
						audit.LogRuleDominated(dom.Dominated, dom.Dominator)
						if reporter != nil {
							reporter.BroadcastDomination(dom.Dominated, dom.Dominator)
						}
					}
				}

			case ruleline.KindBogus:
				logrus.WithFields(logrus.Fields{"source": sourceName, "offset": offset}).
					Warn("pipeline: dropping bogus line")
			}
		}

		linesProcessed++
		offset += int64(rawLen)
		if errors.Is(readErr, io.EOF) {
			break
		}
	}

	if reporter != nil {
		reporter.BroadcastStage(progress.Stage{Name: "parsing:" + sourceName, LinesProcessed: linesProcessed})
	}

	return carryOver, nil
}

// ConsolidateFiles ingests every file in srcs into a single shared
// DomainTree/TLDIndex (so domination prunes across file boundaries too)
// and consolidates it into out. Carry-over header/comment lines are
// preserved only when exactly one file is given; a synthesized generic
// header replaces them for a multi-file merge (spec.md §4.6).
func ConsolidateFiles(ctx context.Context, srcs []source.Source, limits config.LimitsConfig, out sink.Sink, reporter *progress.Server) (int, error) {
	return consolidate(ctx, srcs, limits, out, reporter, true)
}

// consolidate is ConsolidateFiles with the carry-over/header output made
// optional: Diff passes false so its buffers hold block rules only.
func consolidate(ctx context.Context, srcs []source.Source, limits config.LimitsConfig, out sink.Sink, reporter *progress.Server, withHeaders bool) (int, error) {
	idx := tldindex.New()
	var soleCarryOver [][]byte

	for i, src := range srcs {
		rc, err := src.Open(ctx)
		if err != nil {
			return 0, err
		}
		carryOver, err := ingestInto(idx, rc, limits, src.Name(), reporter)
		closeErr := rc.Close()
		if err != nil {
			return 0, err
		}
		if closeErr != nil {
			return 0, closeErr
		}
		if i == 0 {
			soleCarryOver = carryOver
		}
	}

	if withHeaders && len(srcs) == 1 {
		for _, line := range soleCarryOver {
			if err := out.WriteLine(line); err != nil {
				return 0, err
			}
		}
	} else if withHeaders && len(srcs) > 1 {
		if err := out.WriteLine(consolidator.SynthesizeHeader(len(srcs))); err != nil {
			return 0, err
		}
	}

	emitted := 0
	var writeErr error
	consolidator.Consolidate(idx, func(domain []byte, info *domaintree.Info) {
		if writeErr != nil {
			return
		}
		rule := make([]byte, 0, len(domain)+3)
		rule = append(rule, '|', '|')
		rule = append(rule, domain...)
		rule = append(rule, '^')
		if err := out.WriteLine(rule); err != nil {
			writeErr = err
			return
		}
		emitted++
		if reporter != nil {
			reporter.BroadcastStage(progress.Stage{Name: "consolidating", RulesEmitted: emitted})
		}
	})
	if writeErr != nil {
		return emitted, writeErr
	}

	return emitted, nil
}

// Dedupe runs the full dedupe pipeline for srcs and writes the result
// to out, emitting audit events around the run.
func Dedupe(ctx context.Context, srcs []source.Source, limits config.LimitsConfig, out sink.Sink, reporter *progress.Server) error {
	start := timeNow()
	audit.LogRunStarted("dedupe", len(srcs))

	emitted, err := ConsolidateFiles(ctx, srcs, limits, out, reporter)
	if err != nil {
		audit.LogRunFailed("dedupe", err)
		return err
	}

	audit.LogRunCompleted("dedupe", emitted, timeNow().Sub(start))
	return nil
}

// Diff runs the dedupe pipeline independently for sides A and B into
// temporary in-memory buffers, then merges them through DiffEngine into
// out. Carry-over is intentionally discarded on both sides: it is not
// exercised by the diff engine (spec.md §4.6).
func Diff(ctx context.Context, srcsA, srcsB []source.Source, limits config.LimitsConfig, out sink.Sink, reporter *progress.Server) error {
	start := timeNow()
	audit.LogRunStarted("diff", len(srcsA)+len(srcsB))

	bufA := sink.NewBufferSink()
	if _, err := consolidate(ctx, srcsA, limits, bufA, reporter, false); err != nil {
		audit.LogRunFailed("diff", err)
		return err
	}
	bufB := sink.NewBufferSink()
	if _, err := consolidate(ctx, srcsB, limits, bufB, reporter, false); err != nil {
		audit.LogRunFailed("diff", err)
		return err
	}

	if err := diffengine.Run(out, bufA, bufB); err != nil {
		audit.LogRunFailed("diff", err)
		return err
	}

	audit.LogRunCompleted("diff", len(bufA.Lines())+len(bufB.Lines()), timeNow().Sub(start))
	return nil
}

// timeNow is a single indirection point so tests could substitute a
// fixed clock; production always uses wall-clock time.
var timeNow = time.Now
