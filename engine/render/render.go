// Package render implements the three-stage renderer: iteration
// expansion first, then scalar substitution, then aggregation
// substitution. The order is never negotiable, since iteration
// duplicates surrounding text (and the scalar/aggregation tags embedded
// in it), and aggregations must run last so line duplication can't
// disturb their numeric results.
package render

import (
	"context"
	"strings"

	"docweave/engine/ast"
	"docweave/engine/eval"
	"docweave/engine/format"
	"docweave/engine/resolve"
)

func fullText(tag *ast.Tag) string {
	return "{" + tag.Raw + "}"
}

// Render executes the three stages over raw using tags (in byte-position
// order) and returns the final bytes plus a structured report.
//
// Cancellation is cooperative: ctx is checked before each stage and
// between lines of iteration expansion; a canceled render returns
// ctx.Err() without producing partial output.
func Render(ctx context.Context, raw string, tags []*ast.Tag, reg *format.Registry, rc resolve.Context, strict bool) (string, *Report, error) {
	report := &Report{}

	if err := validateTags(tags, reg, strict, report); err != nil {
		return "", nil, err
	}

	if err := ctx.Err(); err != nil {
		return "", nil, err
	}
	stage1, err := expandIteration(ctx, raw, tags, reg, rc, strict, report)
	if err != nil {
		return "", nil, err
	}

	if err := ctx.Err(); err != nil {
		return "", nil, err
	}
	stage2 := substituteScalars(stage1, tags, reg, rc, strict, report)

	if err := ctx.Err(); err != nil {
		return "", nil, err
	}
	stage3 := substituteAggregations(stage2, tags, reg, rc, strict, report)

	report.Bytes = len(stage3)
	report.Lines = strings.Count(stage3, "\n") + 1
	return stage3, report, nil
}

// validateTags runs the registry validator over every tag's formatter
// chain before any substitution happens. In strict mode the first
// validation failure (UNKNOWN_FORMATTER, INVALID_PARAMETERS, misplaced
// post-aggregation formatter) is fatal; otherwise failures accumulate as
// report warnings.
func validateTags(tags []*ast.Tag, reg *format.Registry, strict bool, report *Report) error {
	for _, t := range tags {
		errs, warnings := reg.ValidateChain(t.Formatters, strict)
		if len(errs) > 0 {
			return errs[0]
		}
		report.Warnings = append(report.Warnings, warnings...)
	}
	return nil
}

// expandIteration is stage 1: partition into lines, expand every line
// carrying an iteration-marked tag into one copy per array element.
func expandIteration(ctx context.Context, raw string, tags []*ast.Tag, reg *format.Registry, rc resolve.Context, strict bool, report *Report) (string, error) {
	lines := splitLines(raw)
	tagsByLine := groupTagsByLine(lines, tags)

	var out strings.Builder
	for i, line := range lines {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		iterTags := filterTags(tagsByLine[i], func(t *ast.Tag) bool { return t.IsIteration() })
		if len(iterTags) == 0 {
			out.WriteString(line.Text)
			continue
		}

		specs := make(map[string]*resolve.IterationSpec, len(iterTags))
		for _, t := range iterTags {
			spec, err := resolve.ResolveIteration(t.Path, rc)
			if err != nil {
				report.fail(t.ID, err.Error())
				specs[t.ID] = &resolve.IterationSpec{}
				continue
			}
			specs[t.ID] = spec
		}

		primary := iterTags[0]
		primarySpec := specs[primary.ID]
		n := len(primarySpec.Array)

		for _, t := range iterTags[1:] {
			if specs[t.ID].BaseKey != primarySpec.BaseKey {
				report.warn("MIXED_ITERATION_SOURCES: line mixes iteration tags over " +
					primarySpec.BaseKey + " and " + specs[t.ID].BaseKey)
			}
		}

		// A line's Text carries its own trailing '\n' when one exists in
		// the source (see splitLines). The final, unterminated line of a
		// template carries none, but its n copies must still land on
		// separate output lines, so such copies are newline-joined here
		// rather than concatenated.
		hasTerminator := strings.HasSuffix(line.Text, "\n")

		plan := ExpansionPlan{TagID: primary.ID, Length: n, Rows: make([]map[string]string, n)}
		for k := 0; k < n; k++ {
			if !hasTerminator && k > 0 {
				out.WriteString("\n")
			}
			rowText := line.Text
			plan.Rows[k] = make(map[string]string, len(iterTags))
			for _, t := range iterTags {
				spec := specs[t.ID]
				idx := k + spec.Offset
				var value string
				if idx < 0 || idx >= len(spec.Array) {
					report.fail(t.ID, "iteration offset out of range")
				} else {
					v, warnings, err := eval.EvaluateRow(t, reg, spec.Array[idx], spec.Tail, rc, strict)
					report.Warnings = append(report.Warnings, warnings...)
					if err != nil {
						report.fail(t.ID, err.Error())
					} else {
						report.ok(t.ID)
						value = stringify(v)
					}
				}
				plan.Rows[k][t.ID] = value
				rowText = strings.ReplaceAll(rowText, fullText(t), value)
			}
			out.WriteString(rowText)
		}
		report.Expansions = append(report.Expansions, plan)
	}
	return out.String(), nil
}

// substituteScalars is stage 2: every non-iteration, non-aggregation tag's
// raw span is replaced everywhere it occurs with its resolved value.
func substituteScalars(text string, tags []*ast.Tag, reg *format.Registry, rc resolve.Context, strict bool, report *Report) string {
	for _, t := range tags {
		if t.IsIteration() || t.IsAggregation() {
			continue
		}
		value, warnings, err := eval.EvaluateScalar(t, reg, rc, strict)
		report.Warnings = append(report.Warnings, warnings...)
		if err != nil {
			report.fail(t.ID, err.Error())
			value = ""
		} else {
			report.ok(t.ID)
		}
		text = strings.ReplaceAll(text, fullText(t), stringify(value))
	}
	return text
}

// substituteAggregations is stage 3: every aggregation tag's raw span is
// replaced everywhere it occurs with its reduced, stringified value.
func substituteAggregations(text string, tags []*ast.Tag, reg *format.Registry, rc resolve.Context, strict bool, report *Report) string {
	for _, t := range tags {
		if !t.IsAggregation() {
			continue
		}
		value, warnings, err := eval.EvaluateAggregation(t, reg, rc, strict)
		report.Warnings = append(report.Warnings, warnings...)
		if err != nil {
			report.fail(t.ID, err.Error())
			value = ""
		} else {
			report.ok(t.ID)
		}
		text = strings.ReplaceAll(text, fullText(t), stringify(value))
	}
	return text
}

func groupTagsByLine(lines []lineSpan, tags []*ast.Tag) map[int][]*ast.Tag {
	byLine := make(map[int][]*ast.Tag, len(lines))
	li := 0
	for _, t := range tags {
		for li < len(lines)-1 && t.Start >= lines[li].End {
			li++
		}
		byLine[li] = append(byLine[li], t)
	}
	return byLine
}

func filterTags(tags []*ast.Tag, pred func(*ast.Tag) bool) []*ast.Tag {
	var out []*ast.Tag
	for _, t := range tags {
		if pred(t) {
			out = append(out, t)
		}
	}
	return out
}
