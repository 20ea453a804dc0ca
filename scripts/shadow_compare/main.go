// Command shadow_compare replays read-only requests against the legacy
// Python API and this service, and reports contract drift. Volatile fields
// (timestamps, run durations) are stripped before comparing bodies.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"
)

type probe struct {
	Method   string `json:"method"`
	Path     string `json:"path"`
	Critical bool   `json:"critical"`
}

type probeFile struct {
	Probes []probe `json:"probes"`
}

// volatileFields differ legitimately between the two backends.
var volatileFields = map[string]bool{
	"created_at":    true,
	"updated_at":    true,
	"tempo_geracao": true,
}

type outcome struct {
	probe         probe
	newStatus     int
	legacyStatus  int
	statusMatch   bool
	bodyMatch     bool
	err           error
	newLatency    time.Duration
	legacyLatency time.Duration
}

func main() {
	var (
		newBase    string
		legacyBase string
		probesPath string
		timeout    time.Duration
	)

	flag.StringVar(&newBase, "new-base", "http://localhost:8080/api/v1", "Go API base URL")
	flag.StringVar(&legacyBase, "legacy-base", "http://localhost:8000/api/v1", "Legacy Python API base URL")
	flag.StringVar(&probesPath, "probes", filepath.Join("scripts", "shadow_compare", "probes.json"), "Path to JSON probe file")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "HTTP client timeout")
	flag.Parse()

	probes, err := loadProbes(probesPath)
	if err != nil {
		log.Fatalf("failed to load probes: %v", err)
	}

	client := &http.Client{Timeout: timeout}
	breaking := 0
	tolerated := 0
	var outcomes []outcome

	for _, p := range probes {
		out := compare(client, newBase, legacyBase, p)
		if out.err != nil || !out.statusMatch || !out.bodyMatch {
			if p.Critical {
				breaking++
			} else {
				tolerated++
			}
		}
		outcomes = append(outcomes, out)
	}

	report(outcomes)
	fmt.Printf("breaking diffs: %d, tolerated diffs: %d\n", breaking, tolerated)
	if breaking > 0 {
		os.Exit(1)
	}
}

func loadProbes(path string) ([]probe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file probeFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Probes) == 0 {
		return nil, fmt.Errorf("no probes defined in %s", path)
	}
	return file.Probes, nil
}

func compare(client *http.Client, newBase, legacyBase string, p probe) outcome {
	out := outcome{probe: p}

	newStatus, newBody, newLatency, err := fetch(client, newBase, p)
	if err != nil {
		out.err = fmt.Errorf("new api: %w", err)
		return out
	}
	legacyStatus, legacyBody, legacyLatency, err := fetch(client, legacyBase, p)
	if err != nil {
		out.err = fmt.Errorf("legacy api: %w", err)
		return out
	}

	out.newStatus = newStatus
	out.legacyStatus = legacyStatus
	out.newLatency = newLatency
	out.legacyLatency = legacyLatency
	out.statusMatch = newStatus == legacyStatus
	out.bodyMatch = bodiesEqual(newBody, legacyBody)
	return out
}

func fetch(client *http.Client, base string, p probe) (int, []byte, time.Duration, error) {
	method := strings.ToUpper(strings.TrimSpace(p.Method))
	if method == "" {
		method = http.MethodGet
	}
	url := strings.TrimRight(base, "/") + "/" + strings.TrimLeft(p.Path, "/")

	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		return 0, nil, 0, err
	}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, 0, err
	}
	return resp.StatusCode, body, time.Since(start), nil
}

func bodiesEqual(a, b []byte) bool {
	if bytes.Equal(bytes.TrimSpace(a), bytes.TrimSpace(b)) {
		return true
	}

	var aj, bj interface{}
	if err := json.Unmarshal(a, &aj); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &bj); err != nil {
		return false
	}
	scrub(&aj)
	scrub(&bj)
	return reflect.DeepEqual(aj, bj)
}

// scrub drops volatile fields and collapses whole-number floats so both
// backends' JSON normalises to the same shape.
func scrub(v *interface{}) {
	switch val := (*v).(type) {
	case map[string]interface{}:
		for k := range val {
			if volatileFields[k] {
				delete(val, k)
			}
		}
		for k, v2 := range val {
			scrub(&v2)
			val[k] = v2
		}
	case []interface{}:
		for i, v2 := range val {
			scrub(&v2)
			val[i] = v2
		}
	case float64:
		if val == float64(int64(val)) {
			*v = int64(val)
		}
	}
}

func report(outcomes []outcome) {
	fmt.Println("Shadow Compare Report")
	fmt.Println("=====================")
	for _, out := range outcomes {
		status := "OK"
		switch {
		case out.err != nil:
			status = "ERROR"
		case !out.statusMatch || !out.bodyMatch:
			status = "DIFF"
		}
		fmt.Printf("[%s] %s %s\n", status, out.probe.Method, out.probe.Path)
		if out.err != nil {
			fmt.Printf("  error: %v\n", out.err)
			continue
		}
		fmt.Printf("  new: %d (%s) | legacy: %d (%s)\n", out.newStatus, out.newLatency, out.legacyStatus, out.legacyLatency)
		fmt.Printf("  status match: %t | body match: %t | critical: %t\n", out.statusMatch, out.bodyMatch, out.probe.Critical)
	}
}
