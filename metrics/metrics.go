package metrics

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Webhook outcome labels.
const (
	ResultSecretMissing    = "secret_missing"
	ResultInvalidSignature = "invalid_signature"
	ResultValidationError  = "validation_error"
	ResultUnknown          = "unknown"
)

type httpKey struct {
	path   string
	status string
}

// Registry is a process-wide counter set. Counters only grow and reset
// on process restart.
type Registry struct {
	mu      sync.Mutex
	http    map[httpKey]int
	webhook map[string]int
}

func NewRegistry() *Registry {
	return &Registry{
		http:    make(map[httpKey]int),
		webhook: make(map[string]int),
	}
}

func (r *Registry) IncHTTP(path string, status int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.http[httpKey{path: path, status: strconv.Itoa(status)}]++
}

func (r *Registry) IncWebhook(result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.webhook[result]++
}

// Render returns the counters as a Prometheus-style text report.
// Lines are sorted so the output is deterministic.
func (r *Registry) Render() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var b strings.Builder
	b.WriteString("# TYPE http_requests_total counter\n")

	httpKeys := make([]httpKey, 0, len(r.http))
	for k := range r.http {
		httpKeys = append(httpKeys, k)
	}
	sort.Slice(httpKeys, func(i, j int) bool {
		if httpKeys[i].path != httpKeys[j].path {
			return httpKeys[i].path < httpKeys[j].path
		}
		return httpKeys[i].status < httpKeys[j].status
	})
	for _, k := range httpKeys {
		fmt.Fprintf(&b, "http_requests_total{path=%q,status=%q} %d\n", k.path, k.status, r.http[k])
	}

	b.WriteString("# TYPE webhook_requests_total counter\n")

	results := make([]string, 0, len(r.webhook))
	for k := range r.webhook {
		results = append(results, k)
	}
	sort.Strings(results)
	for _, k := range results {
		fmt.Fprintf(&b, "webhook_requests_total{result=%q} %d\n", k, r.webhook[k])
	}

	return b.String()
}
