// Package extract pulls named values out of JSON reports for display next to
// QC results.
package extract

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
)

// Apply evaluates every rule (name -> JSONPath) against report. A failing rule
// is reported and the rest still run; an unparsable report fails them all.
func Apply(report []byte, rules domain.ExtractSpec) (domain.Vars, []domain.ExtractResult) {
	values := domain.Vars{}
	results := make([]domain.ExtractResult, 0, len(rules))
	if len(rules) == 0 {
		return values, results
	}

	names := make([]string, 0, len(rules))
	for n := range rules {
		names = append(names, n)
	}
	sort.Strings(names)

	var doc any
	parseErr := json.Unmarshal(report, &doc)

	for _, name := range names {
		expr := strings.TrimSpace(rules[name])
		v, err := value(doc, parseErr, expr)
		if err != nil {
			results = append(results, domain.ExtractResult{
				Name:    name,
				Message: fmt.Sprintf("extract %q (%s): %v", name, expr, err),
			})
			continue
		}
		values[name] = v
		results = append(results, domain.ExtractResult{
			Name:    name,
			Success: true,
			Message: fmt.Sprintf("%s = %s", name, v),
		})
	}
	return values, results
}

func value(doc any, parseErr error, expr string) (string, error) {
	switch {
	case parseErr != nil:
		return "", fmt.Errorf("report is not valid JSON")
	case expr == "":
		return "", fmt.Errorf("empty jsonpath expression")
	}

	v, err := jsonpath.Get(expr, doc)
	if err != nil {
		return "", fmt.Errorf("jsonpath error: %v", err)
	}
	switch t := v.(type) {
	case nil:
		return "", fmt.Errorf("no value found")
	case string:
		if t == "" {
			return "", fmt.Errorf("no value found")
		}
	case []any:
		if len(t) == 0 {
			return "", fmt.Errorf("no value found")
		}
		if len(t) == 1 {
			return stringify(t[0])
		}
	case map[string]any:
		if len(t) == 0 {
			return "", fmt.Errorf("no value found")
		}
	}
	return stringify(v)
}

func stringify(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case []any, map[string]any:
		b, err := json.Marshal(t)
		if err != nil {
			return "", fmt.Errorf("cannot convert value to string: %v", err)
		}
		return string(b), nil
	default:
		return fmt.Sprint(t), nil
	}
}
