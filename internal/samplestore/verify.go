package samplestore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MeKo-Tech/noiseparams/internal/ndarray"
	"github.com/MeKo-Tech/noiseparams/internal/param"
)

// Report summarises a verification run.
type Report struct {
	Checked    int
	Matched    int
	Mismatched []Key // redraw differs from the stored array
	Missing    []Key // no parameter of that name is configured
	Changed    []Key // parameter rendering differs from the recorded one
}

// OK reports whether every checked record reproduced.
func (r Report) OK() bool {
	return len(r.Mismatched) == 0 && len(r.Missing) == 0
}

// Verifier redraws archived records and compares them bit for bit.
type Verifier struct {
	Params map[string]param.Parameter
	Logger *slog.Logger
}

func (v *Verifier) log() *slog.Logger {
	if v.Logger != nil {
		return v.Logger
	}
	return slog.Default()
}

// Verify checks every record of r. A changed parameter rendering is logged
// but only a differing redraw counts as a mismatch.
func (v *Verifier) Verify(ctx context.Context, r *Reader) (Report, error) {
	var report Report

	entries, err := r.Entries()
	if err != nil {
		return report, err
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Checked++

		p, ok := v.Params[e.Name]
		if !ok {
			v.log().Warn("No parameter configured for record", "record", e.Key.String())
			report.Missing = append(report.Missing, e.Key)
			continue
		}
		if got := p.String(); got != e.Param {
			v.log().Info("Parameter definition changed since recording",
				"record", e.Key.String(), "recorded", e.Param, "current", got)
			report.Changed = append(report.Changed, e.Key)
		}

		want, err := r.ReadSample(e.Key)
		if err != nil {
			return report, err
		}
		got, err := param.DrawSeeded(p, want.Shape(), e.Seed)
		if err != nil {
			return report, fmt.Errorf("failed to redraw %s: %w", e.Key, err)
		}

		if !got.Equal(want) {
			v.log().Warn("Sample does not reproduce", "record", e.Key.String(),
				"recorded", want.String(), "drawn", got.String())
			report.Mismatched = append(report.Mismatched, e.Key)
			continue
		}
		report.Matched++
		v.log().Debug("Sample reproduced", "record", e.Key.String(), "shape", ndarray.FormatShape(got.Shape()))
	}

	return report, nil
}
