package fusion

import (
	"fmt"
	"strings"

	"WaveFuse/internal/domain/models"
)

// namedSignal pairs a signal with its name and adjusted weight for the
// rationale trace. Iteration order is fixed (pattern, technical,
// sentiment, macro) so ties resolve deterministically.
type namedSignal struct {
	name   string
	score  float64
	weight float64
}

// rationale builds the deterministic natural-language trace of what drove
// the decision. It is derived output only and has no effect on the
// decision itself.
func (e *Engine) rationale(in models.FusionInput, out models.FusionOutput, spread, meanConf float64, conflicting, lowConfidence bool) string {
	sigs := []namedSignal{
		{"pattern", in.Signals.Pattern.Score, out.AdjustedWeights.Pattern},
		{"technical", in.Signals.Technical.Score, out.AdjustedWeights.Technical},
		{"sentiment", in.Signals.Sentiment.Score, out.AdjustedWeights.Sentiment},
		{"macro", in.Signals.Macro.Score, out.AdjustedWeights.Macro},
	}
	top, bottom := sigs[0], sigs[0]
	for _, s := range sigs[1:] {
		if s.score > top.score {
			top = s
		}
		if s.score < bottom.score {
			bottom = s
		}
	}

	var b strings.Builder
	if out.Recommendation == models.RecommendAvoid {
		b.WriteString("AVOID: ")
		switch {
		case conflicting && lowConfidence:
			fmt.Fprintf(&b, "signals conflict (%s %.0f vs %s %.0f, spread %.0f points) and mean confidence %.0f is below the %.0f floor",
				top.name, top.score, bottom.name, bottom.score, spread, meanConf, e.cfg.MinMeanConfidence)
		case conflicting:
			fmt.Fprintf(&b, "signals conflict: %s reads %.0f while %s reads %.0f, a %.0f-point spread beyond the %.0f limit",
				top.name, top.score, bottom.name, bottom.score, spread, e.cfg.ConflictSpread)
		default:
			fmt.Fprintf(&b, "mean signal confidence %.0f is below the %.0f floor; the evidence is too weak to act on",
				meanConf, e.cfg.MinMeanConfidence)
		}
		b.WriteString(". Standing aside rather than forcing a directional call.")
		if out.CriticalFlag {
			b.WriteString(" A critical risk condition is also active.")
		}
		return b.String()
	}

	fmt.Fprintf(&b, "%s at composite %.1f", out.Recommendation, out.FinalComposite)
	if out.CriticalFlag && out.CompositeScore > out.FinalComposite {
		fmt.Fprintf(&b, " (capped from %.1f by an active critical risk)", out.CompositeScore)
	}
	fmt.Fprintf(&b, ". Strongest input: %s at %.0f (weight %.2f). Weakest: %s at %.0f (weight %.2f).",
		top.name, top.score, top.weight, bottom.name, bottom.score, bottom.weight)
	if spread <= 15 {
		b.WriteString(" Signals broadly agree.")
	} else {
		fmt.Fprintf(&b, " Signals diverge by %.0f points but remain within the conflict limit.", spread)
	}
	if out.CriticalFlag {
		b.WriteString(" Critical risk active: upside capped and confidence reduced.")
	}
	if out.PositionSizeMultiplier < 1 {
		b.WriteString(" Macro and sentiment are both weak; position size halved.")
	}
	return b.String()
}
