package classify

import "slices"

// Confidence is diagnostic metadata; it never gates a write
type Confidence string

// Confidence levels
const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Source says which signal produced the inference
type Source string

// Sources; SourceNone when nothing matched
const (
	SourceNone        Source = ""
	SourceCurrentGame Source = "currentGame"
	SourceTopGames    Source = "topGames"
	SourceBoth        Source = "both"
)

// Signals are the per-record inputs. CurrentGame holds the live signals
// (current game plus fetched platform strings); TopGames the historical list
type Signals struct {
	CurrentGame []string
	TopGames    []string
	Existing    []string
}

// Inference is the classifier's proposal for one record.
// Candidates are every matched tag; Tags drops those already in Existing
type Inference struct {
	Tags       []string
	Candidates []string
	Confidence Confidence
	Source     Source
}

// Infer classifies both signal groups and annotates the result
func (c *Classifier) Infer(s Signals) Inference {
	cur := c.classifyAll(s.CurrentGame)
	top := c.classifyAll(s.TopGames)

	cand := slices.Clone(cur)
	for _, t := range top {
		if !slices.Contains(cand, t) {
			cand = append(cand, t)
		}
	}

	var inf Inference
	inf.Candidates = cand
	switch {
	case len(cur) > 0 && len(top) > 0:
		inf.Source = SourceBoth
	case len(cur) > 0:
		inf.Source = SourceCurrentGame
	case len(top) > 0:
		inf.Source = SourceTopGames
	}
	switch {
	case inf.Source == SourceBoth || len(cand) >= 2:
		inf.Confidence = ConfidenceHigh
	case inf.Source != SourceNone:
		inf.Confidence = ConfidenceMedium
	default:
		inf.Confidence = ConfidenceLow
	}
	inf.Tags = Missing(s.Existing, cand)
	return inf
}

func (c *Classifier) classifyAll(texts []string) []string {
	var out []string
	for _, t := range texts {
		for _, tag := range c.Classify(t) {
			if !slices.Contains(out, tag) {
				out = append(out, tag)
			}
		}
	}
	return out
}

// Missing returns the members of proposed not present in existing
// (case-sensitive), in proposed order without repeats
func Missing(existing, proposed []string) []string {
	if len(proposed) == 0 {
		return nil
	}
	have := make(map[string]struct{}, len(existing)+len(proposed))
	for _, e := range existing {
		have[e] = struct{}{}
	}
	var out []string
	for _, p := range proposed {
		if _, ok := have[p]; ok {
			continue
		}
		have[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
