package remote

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/okian/briefmatch/internal/domain/model"
)

// extractJSON strips code fences and returns the outermost JSON object in s.
func extractJSON(s string) (string, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return "", fmt.Errorf("%w: no JSON object", ErrBadResponse)
	}
	return s[start : end+1], nil
}

// coerceFloat accepts numbers and numeric strings.
func coerceFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, !math.IsNaN(t) && !math.IsInf(t, 0)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(t), "%"), 64)
		return f, err == nil && !math.IsNaN(f) && !math.IsInf(f, 0)
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func clampScore(f float64) float64 {
	return math.Max(0, math.Min(100, f))
}

// parseQuick reads either {"scores":[{"id":..,"score":..}]} or
// {"scores":{"<id>":<score>}}. Unknown ids and unparseable scores are
// dropped; an empty result is ErrBadResponse.
func parseQuick(raw string, known map[string]struct{}) (map[string]float64, error) {
	obj, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}
	var envelope struct {
		Scores json.RawMessage `json:"scores"`
	}
	if err := json.Unmarshal([]byte(obj), &envelope); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadResponse, err)
	}

	out := make(map[string]float64)
	add := func(id string, v any) {
		if _, ok := known[id]; !ok {
			return
		}
		if f, ok := coerceFloat(v); ok {
			out[id] = clampScore(f)
		}
	}

	var list []struct {
		ID    string `json:"id"`
		Score any    `json:"score"`
	}
	if err := json.Unmarshal(envelope.Scores, &list); err == nil {
		for _, item := range list {
			add(item.ID, item.Score)
		}
	} else {
		var byID map[string]any
		if err := json.Unmarshal(envelope.Scores, &byID); err != nil {
			return nil, fmt.Errorf("%w: scores: %w", ErrBadResponse, err)
		}
		for id, v := range byID {
			add(id, v)
		}
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no usable scores", ErrBadResponse)
	}
	return out, nil
}

func parseConfidence(s string) model.Confidence {
	switch c := model.Confidence(strings.ToLower(strings.TrimSpace(s))); c {
	case model.ConfidenceLow, model.ConfidenceMedium, model.ConfidenceHigh:
		return c
	default:
		return model.ConfidenceMedium
	}
}

func parseDeep(raw string) (model.Analysis, error) {
	obj, err := extractJSON(raw)
	if err != nil {
		return model.Analysis{}, err
	}
	var payload struct {
		Score       any      `json:"score"`
		Confidence  string   `json:"confidence"`
		Explanation string   `json:"explanation"`
		Strengths   []string `json:"strengths"`
		Risks       []string `json:"risks"`
	}
	if err := json.Unmarshal([]byte(obj), &payload); err != nil {
		return model.Analysis{}, fmt.Errorf("%w: %w", ErrBadResponse, err)
	}
	score, ok := coerceFloat(payload.Score)
	if !ok {
		return model.Analysis{}, fmt.Errorf("%w: missing score", ErrBadResponse)
	}
	return model.Analysis{
		Score:       clampScore(score),
		Confidence:  parseConfidence(payload.Confidence),
		Explanation: strings.TrimSpace(payload.Explanation),
		Strengths:   payload.Strengths,
		Risks:       payload.Risks,
	}, nil
}
