// Package doctor runs readiness checks against a book daemon configuration
// and, optionally, a running daemon.
package doctor

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"

	"github.com/zegnus/graph-ql-end-to-end-android/internal/catalog"
)

const defaultProbeTimeout = 3 * time.Second

var hostnamePattern = regexp.MustCompile(`^[a-zA-Z0-9.-]+$`)

type Input struct {
	// Addr is the daemon listen address.
	Addr string
	// CheckListen also verifies that Addr can be bound right now.
	CheckListen bool
	Catalog     catalog.Source
	// HealthURL is probed when set; see HealthURL.
	HealthURL string
	MinBooks  int
}

type Check struct {
	Name   string `json:"name"`
	Pass   bool   `json:"pass"`
	Reason string `json:"reason,omitempty"`
}

type Report struct {
	Ready     bool      `json:"ready"`
	Checks    []Check   `json:"checks"`
	CheckedAt time.Time `json:"checked_at"`
}

type Doctor struct {
	httpClient  *http.Client
	now         func() time.Time
	loadCatalog func(context.Context, catalog.Source) (*catalog.Store, error)
}

func New() *Doctor {
	return &Doctor{
		httpClient:  cleanhttp.DefaultClient(),
		now:         func() time.Time { return time.Now().UTC() },
		loadCatalog: catalog.Load,
	}
}

func (d *Doctor) Run(ctx context.Context, in Input) Report {
	if in.MinBooks <= 0 {
		in.MinBooks = 1
	}
	report := Report{Ready: true, Checks: make([]Check, 0, 6), CheckedAt: d.now()}
	appendCheck := func(name string, pass bool, reason string) {
		report.Checks = append(report.Checks, Check{Name: name, Pass: pass, Reason: failReason(!pass, reason)})
		if !pass {
			report.Ready = false
		}
	}

	addrErr := validateListenAddr(in.Addr)
	appendCheck("listen_addr_valid", addrErr == nil, errText(addrErr))
	if in.CheckListen && addrErr == nil {
		err := checkAddrAvailable(in.Addr)
		appendCheck("listen_addr_available", err == nil, errText(err))
	}

	store, err := d.loadCatalog(ctx, in.Catalog)
	appendCheck("catalog_loadable", err == nil, errText(err))
	if err == nil {
		n := store.Len()
		appendCheck("catalog_min_books", n >= in.MinBooks, fmt.Sprintf("books=%d < min_books=%d", n, in.MinBooks))
	}

	if strings.TrimSpace(in.HealthURL) != "" {
		books, err := d.probeHealth(ctx, in.HealthURL)
		appendCheck("endpoint_reachable", err == nil, errText(err))
		if err == nil {
			appendCheck("endpoint_min_books", books >= in.MinBooks, fmt.Sprintf("books=%d < min_books=%d", books, in.MinBooks))
		}
	}
	return report
}

// HealthURL derives the /healthz address served next to a GraphQL endpoint.
func HealthURL(graphqlURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(graphqlURL))
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("endpoint %q must be an absolute URL", graphqlURL)
	}
	u.Path = "/healthz"
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}

func (d *Doctor) probeHealth(ctx context.Context, healthURL string) (books int, retErr error) {
	ctx, cancel := context.WithTimeout(ctx, defaultProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL, nil)
	if err != nil {
		return 0, err
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && retErr == nil {
			retErr = closeErr
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("health status %d", resp.StatusCode)
	}
	var decoded struct {
		Status string `json:"status"`
		Books  int    `json:"books"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return 0, fmt.Errorf("decode health: %w", err)
	}
	if decoded.Status != "ok" {
		return 0, fmt.Errorf("health status %q", decoded.Status)
	}
	return decoded.Books, nil
}

func validateListenAddr(raw string) error {
	host, port, err := net.SplitHostPort(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("listen address is invalid: %w", err)
	}
	p, err := strconv.Atoi(port)
	if err != nil || p < 0 || p > 65535 {
		return fmt.Errorf("listen port is invalid: %q", port)
	}
	if host == "" || net.ParseIP(host) != nil {
		return nil
	}
	if !hostnamePattern.MatchString(host) {
		return fmt.Errorf("listen host is invalid: %q", host)
	}
	return nil
}

func checkAddrAvailable(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("%s is unavailable: %w", addr, err)
	}
	_ = ln.Close()
	return nil
}

func failReason(failed bool, reason string) string {
	if !failed {
		return ""
	}
	return reason
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
