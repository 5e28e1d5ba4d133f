// Package assert evaluates JSONPath gates against JSON report documents.
package assert

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
)

// Evaluate applies every assertion to the report. Expressions are visited in
// sorted order; within one expression the order is exists, eq, contains,
// matches, gt, lt.
func Evaluate(gates map[string]domain.JSONPathAssertion, report []byte) []domain.AssertionResult {
	if len(gates) == 0 {
		return []domain.AssertionResult{}
	}

	exprs := make([]string, 0, len(gates))
	for e := range gates {
		exprs = append(exprs, e)
	}
	sort.Strings(exprs)

	var doc any
	parseErr := json.Unmarshal(report, &doc)

	out := make([]domain.AssertionResult, 0, len(gates))
	for _, expr := range exprs {
		var (
			val any
			err error
		)
		if parseErr != nil {
			err = fmt.Errorf("report is not valid JSON")
		} else {
			val, err = jsonpath.Get(expr, doc)
		}
		for _, c := range checksFor(gates[expr]) {
			out = append(out, c.run(expr, val, err))
		}
	}
	return out
}

type check struct {
	name string
	test func(val any) (passed bool, detail string, err error)
}

func (c check) run(expr string, val any, getErr error) domain.AssertionResult {
	res := domain.AssertionResult{Name: "jsonpath." + c.name}
	if getErr != nil {
		res.Message = fmt.Sprintf("jsonpath %q: %v", expr, getErr)
		return res
	}
	passed, detail, err := c.test(val)
	if err != nil {
		res.Message = fmt.Sprintf("jsonpath %q: %v", expr, err)
		return res
	}
	res.Passed = passed
	res.Message = fmt.Sprintf("jsonpath %q: %s", expr, detail)
	return res
}

func checksFor(a domain.JSONPathAssertion) []check {
	var out []check

	if a.Exists {
		out = append(out, check{"exists", func(v any) (bool, string, error) {
			if isEmpty(v) {
				return false, "expected value to exist, got empty", nil
			}
			return true, "exists", nil
		}})
	}
	if a.Eq != nil {
		want := *a.Eq
		out = append(out, stringCheck("eq", func(s string) (bool, string) {
			if s == want {
				return true, fmt.Sprintf("eq %q", want)
			}
			return false, fmt.Sprintf("expected %q, got %q", want, s)
		}))
	}
	if a.Contains != nil {
		sub := *a.Contains
		out = append(out, stringCheck("contains", func(s string) (bool, string) {
			if strings.Contains(s, sub) {
				return true, fmt.Sprintf("contains %q", sub)
			}
			return false, fmt.Sprintf("%q does not contain %q", s, sub)
		}))
	}
	if a.Matches != nil {
		pattern := *a.Matches
		out = append(out, check{"matches", func(v any) (bool, string, error) {
			re, err := regexp.Compile(pattern)
			if err != nil {
				return false, "", fmt.Errorf("invalid regex %q: %v", pattern, err)
			}
			s, err := toString(v)
			if err != nil {
				return false, "", err
			}
			if re.MatchString(s) {
				return true, fmt.Sprintf("matches %q", pattern), nil
			}
			return false, fmt.Sprintf("%q does not match %q", s, pattern), nil
		}})
	}
	if a.Gt != nil {
		limit := *a.Gt
		out = append(out, numberCheck("gt", func(f float64) (bool, string) {
			if f > limit {
				return true, fmt.Sprintf("%v > %v", f, limit)
			}
			return false, fmt.Sprintf("expected > %v, got %v", limit, f)
		}))
	}
	if a.Lt != nil {
		limit := *a.Lt
		out = append(out, numberCheck("lt", func(f float64) (bool, string) {
			if f < limit {
				return true, fmt.Sprintf("%v < %v", f, limit)
			}
			return false, fmt.Sprintf("expected < %v, got %v", limit, f)
		}))
	}
	return out
}

func stringCheck(name string, fn func(string) (bool, string)) check {
	return check{name, func(v any) (bool, string, error) {
		s, err := toString(v)
		if err != nil {
			return false, "", err
		}
		ok, detail := fn(s)
		return ok, detail, nil
	}}
}

func numberCheck(name string, fn func(float64) (bool, string)) check {
	return check{name, func(v any) (bool, string, error) {
		f, err := toFloat(v)
		if err != nil {
			return false, "", err
		}
		ok, detail := fn(f)
		return ok, detail, nil
	}}
}

func toString(val any) (string, error) {
	switch v := val.(type) {
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	case nil:
		return "", fmt.Errorf("value is null")
	default:
		return fmt.Sprint(v), nil
	}
}

func toFloat(val any) (float64, error) {
	switch v := val.(type) {
	case float64:
		return v, nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("value %q is not numeric", v)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("value of type %T is not numeric", val)
	}
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}
