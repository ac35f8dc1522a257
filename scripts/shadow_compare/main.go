// Shadow-compares the Go gateway against the legacy portal dashboard
// during the migration window. For each student id it fetches the dashboard
// from both sides, strips fields that can never match (response meta,
// generation timestamps), and reports every JSON path whose value differs.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"
)

var volatileKeys = map[string]bool{
	"meta":               true,
	"generatedAt":        true,
	"generated_at":       true,
	"processing_time_ms": true,
}

type sideResult struct {
	status   int
	body     any
	duration time.Duration
	err      error
}

type studentReport struct {
	studentID string
	gateway   sideResult
	legacy    sideResult
	diffs     []string
}

func main() {
	var (
		gatewayBase string
		legacyBase  string
		students    string
		timeout     time.Duration
		maxDiffs    int
	)
	flag.StringVar(&gatewayBase, "gateway", "http://localhost:8080", "Go gateway base URL")
	flag.StringVar(&legacyBase, "legacy", "http://localhost:3000", "legacy portal base URL")
	flag.StringVar(&students, "students", "", "comma-separated student ids")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "per-request timeout")
	flag.IntVar(&maxDiffs, "max-diffs", 25, "diff paths to print per student")
	flag.Parse()

	ids := splitIDs(students)
	if len(ids) == 0 {
		log.Fatal("provide -students, e.g. -students stu-1,stu-2")
	}

	client := &http.Client{Timeout: timeout}
	failed := 0
	for _, id := range ids {
		report := compareStudent(client, gatewayBase, legacyBase, id, maxDiffs)
		printReport(report)
		if report.gateway.err != nil || report.legacy.err != nil || len(report.diffs) > 0 ||
			report.gateway.status != report.legacy.status {
			failed++
		}
	}

	fmt.Printf("\n%d/%d students match\n", len(ids)-failed, len(ids))
	if failed > 0 {
		os.Exit(1)
	}
}

func splitIDs(raw string) []string {
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	return ids
}

func compareStudent(client *http.Client, gatewayBase, legacyBase, studentID string, maxDiffs int) studentReport {
	path := fmt.Sprintf("/api/v1/students/%s/dashboard", studentID)
	report := studentReport{
		studentID: studentID,
		gateway:   fetch(client, gatewayBase, path),
		legacy:    fetch(client, legacyBase, path),
	}
	if report.gateway.err != nil || report.legacy.err != nil {
		return report
	}
	diffValues("$", report.gateway.body, report.legacy.body, &report.diffs, maxDiffs)
	return report
}

// fetch reads one side and leaves a comparable JSON document: envelope
// unwrapped, volatile keys pruned, numbers canonicalized.
func fetch(client *http.Client, base, path string) sideResult {
	url := strings.TrimRight(base, "/") + path
	start := time.Now()
	resp, err := client.Get(url)
	if err != nil {
		return sideResult{err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	result := sideResult{status: resp.StatusCode, duration: time.Since(start)}
	if err != nil {
		result.err = fmt.Errorf("read body: %w", err)
		return result
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		result.err = fmt.Errorf("parse body: %w", err)
		return result
	}
	result.body = scrub(unwrap(doc))
	return result
}

// unwrap peels the {data, error, meta} envelope when present; the legacy
// portal returns some dashboards bare and some wrapped.
func unwrap(doc any) any {
	obj, ok := doc.(map[string]any)
	if !ok {
		return doc
	}
	data, hasData := obj["data"]
	if !hasData {
		return doc
	}
	for _, marker := range []string{"meta", "error", "success", "status"} {
		if _, found := obj[marker]; found {
			return data
		}
	}
	return doc
}

// scrub removes volatile keys everywhere and folds whole-valued floats to
// integers so 90 and 90.0 compare equal.
func scrub(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k := range val {
			if volatileKeys[k] {
				delete(val, k)
			}
		}
		for k, nested := range val {
			val[k] = scrub(nested)
		}
		return val
	case []any:
		for i, nested := range val {
			val[i] = scrub(nested)
		}
		return val
	case float64:
		if val == float64(int64(val)) {
			return int64(val)
		}
		return val
	default:
		return v
	}
}

// diffValues walks both documents in lockstep and records the JSON path of
// every mismatch, capped at maxDiffs.
func diffValues(path string, gateway, legacy any, diffs *[]string, maxDiffs int) {
	if len(*diffs) >= maxDiffs {
		return
	}
	switch g := gateway.(type) {
	case map[string]any:
		l, ok := legacy.(map[string]any)
		if !ok {
			record(diffs, path, gateway, legacy)
			return
		}
		for _, key := range unionKeys(g, l) {
			gv, inG := g[key]
			lv, inL := l[key]
			childPath := path + "." + key
			switch {
			case !inG:
				record(diffs, childPath, "<absent>", lv)
			case !inL:
				record(diffs, childPath, gv, "<absent>")
			default:
				diffValues(childPath, gv, lv, diffs, maxDiffs)
			}
			if len(*diffs) >= maxDiffs {
				return
			}
		}
	case []any:
		l, ok := legacy.([]any)
		if !ok {
			record(diffs, path, gateway, legacy)
			return
		}
		if len(g) != len(l) {
			record(diffs, path+".length", len(g), len(l))
		}
		for i := 0; i < len(g) && i < len(l); i++ {
			diffValues(fmt.Sprintf("%s[%d]", path, i), g[i], l[i], diffs, maxDiffs)
			if len(*diffs) >= maxDiffs {
				return
			}
		}
	default:
		if gateway != legacy {
			record(diffs, path, gateway, legacy)
		}
	}
}

func unionKeys(a, b map[string]any) []string {
	seen := make(map[string]bool, len(a)+len(b))
	for k := range a {
		seen[k] = true
	}
	for k := range b {
		seen[k] = true
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func record(diffs *[]string, path string, gateway, legacy any) {
	*diffs = append(*diffs, fmt.Sprintf("%s: gateway=%v legacy=%v", path, gateway, legacy))
}

func printReport(report studentReport) {
	switch {
	case report.gateway.err != nil:
		fmt.Printf("[ERROR] %s gateway: %v\n", report.studentID, report.gateway.err)
	case report.legacy.err != nil:
		fmt.Printf("[ERROR] %s legacy: %v\n", report.studentID, report.legacy.err)
	case report.gateway.status != report.legacy.status:
		fmt.Printf("[DIFF]  %s status gateway=%d legacy=%d\n",
			report.studentID, report.gateway.status, report.legacy.status)
	case len(report.diffs) > 0:
		fmt.Printf("[DIFF]  %s %d path(s) differ (gateway %s, legacy %s)\n",
			report.studentID, len(report.diffs), report.gateway.duration.Round(time.Millisecond),
			report.legacy.duration.Round(time.Millisecond))
		for _, d := range report.diffs {
			fmt.Printf("        %s\n", d)
		}
	default:
		fmt.Printf("[MATCH] %s (gateway %s, legacy %s)\n",
			report.studentID, report.gateway.duration.Round(time.Millisecond),
			report.legacy.duration.Round(time.Millisecond))
	}
}
