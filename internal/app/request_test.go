package app

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"testing"

	"github.com/mpz/devops/tools/value-distribution/internal/config"
	"github.com/mpz/devops/tools/value-distribution/internal/machine"
	"github.com/mpz/devops/tools/value-distribution/internal/types"
)

// testApp creates a minimal App for testing HTTP routing.
func testApp(t *testing.T) *App {
	t.Helper()

	cfg := &config.Config{
		Locale:     "id",
		AdminToken: "test-admin-token",
	}

	return NewWithStore(cfg, machine.NewStore(machine.StoreConfig{}))
}

func decodeView(t *testing.T, resp Response) View {
	t.Helper()

	var view View
	if err := json.Unmarshal(resp.Body, &view); err != nil {
		t.Fatalf("failed to decode view: %v. Body: %s", err, string(resp.Body))
	}
	return view
}

func TestHandleRequest_HTTPRouting(t *testing.T) {
	app := testApp(t)
	ctx := context.Background()

	tests := []struct {
		name           string
		method         string
		path           string
		body           []byte
		headers        map[string]string
		wantStatus     int
		wantBodySubstr string
	}{
		{
			name:           "GET / returns HTML",
			method:         "GET",
			path:           "/",
			wantStatus:     200,
			wantBodySubstr: "Value Distribution Calculator",
		},
		{
			name:           "GET /api/state returns view",
			method:         "GET",
			path:           "/api/state",
			wantStatus:     200,
			wantBodySubstr: `"total_percentage":"100"`,
		},
		{
			name:       "GET /api/events returns list",
			method:     "GET",
			path:       "/api/events",
			wantStatus: 200,
		},
		{
			name:           "GET /api/config returns locale",
			method:         "GET",
			path:           "/api/config",
			wantStatus:     200,
			wantBodySubstr: `"locale":"id"`,
		},
		{
			name:       "GET unknown path returns 404",
			method:     "GET",
			path:       "/api/unknown",
			wantStatus: 404,
		},
		{
			name:       "POST /api/actions with invalid body returns 400",
			method:     "POST",
			path:       "/api/actions",
			body:       []byte("not json"),
			wantStatus: 400,
		},
		{
			name:           "POST /api/actions with unknown type returns 400",
			method:         "POST",
			path:           "/api/actions",
			body:           []byte(`{"type":"divide"}`),
			wantStatus:     400,
			wantBodySubstr: "unknown action type",
		},
		{
			name:           "POST /api/actions remove without index returns 400",
			method:         "POST",
			path:           "/api/actions",
			body:           []byte(`{"type":"remove_distribution"}`),
			wantStatus:     400,
			wantBodySubstr: "index is required",
		},
		{
			name:           "POST /api/actions with index beyond the limit returns 400",
			method:         "POST",
			path:           "/api/actions",
			body:           []byte(`{"type":"change_distribution_percentage","index":5000,"new_value":"10"}`),
			wantStatus:     400,
			wantBodySubstr: "out of range",
		},
		{
			name:       "POST /api/actions with misspelled field returns 400",
			method:     "POST",
			path:       "/api/actions",
			body:       []byte(`{"type":"change_distribution_percentage","index":0,"newValue":"10"}`),
			wantStatus: 400,
		},
		{
			name:       "POST /actions with unknown form action returns 400",
			method:     "POST",
			path:       "/actions",
			body:       []byte("action=explode"),
			wantStatus: 400,
		},
		{
			name:       "GET /server/status without auth returns 401",
			method:     "GET",
			path:       "/server/status",
			wantStatus: 401,
		},
		{
			name:       "GET /server/status with wrong token returns 401",
			method:     "GET",
			path:       "/server/status",
			headers:    map[string]string{"authorization": "Bearer nope"},
			wantStatus: 401,
		},
		{
			name:           "GET /server/status with auth returns 200",
			method:         "GET",
			path:           "/server/status",
			headers:        map[string]string{"authorization": "Bearer test-admin-token"},
			wantStatus:     200,
			wantBodySubstr: `"status":"ok"`,
		},
		{
			name:           "GET /server/config with auth redacts token",
			method:         "GET",
			path:           "/server/config",
			headers:        map[string]string{"authorization": "Bearer test-admin-token"},
			wantStatus:     200,
			wantBodySubstr: `"admin_token":"test***oken"`,
		},
		{
			name:       "GET /static/styles.css returns CSS",
			method:     "GET",
			path:       "/static/styles.css",
			wantStatus: 200,
		},
		{
			name:           "GET /static/main.js returns JS",
			method:         "GET",
			path:           "/static/main.js",
			wantStatus:     200,
			wantBodySubstr: "seq < rendered",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := Request{
				Type:    RequestTypeHTTP,
				Method:  tt.method,
				Path:    tt.path,
				Body:    tt.body,
				Headers: tt.headers,
			}

			resp := app.HandleRequest(ctx, req)

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("got status %d, want %d. Body: %s", resp.StatusCode, tt.wantStatus, string(resp.Body))
			}

			if tt.wantBodySubstr != "" && !strings.Contains(string(resp.Body), tt.wantBodySubstr) {
				t.Errorf("body %q does not contain %q", string(resp.Body), tt.wantBodySubstr)
			}

			if resp.Headers["X-Request-Id"] == "" {
				t.Error("expected X-Request-Id header")
			}
		})
	}
}

func TestHandleRequest_DispatchActions(t *testing.T) {
	app := testApp(t)
	ctx := context.Background()

	post := func(body string) Response {
		t.Helper()
		resp := app.HandleRequest(ctx, Request{Method: "POST", Path: "/api/actions", Body: []byte(body)})
		if resp.StatusCode != 200 {
			t.Fatalf("dispatch %s: got status %d. Body: %s", body, resp.StatusCode, string(resp.Body))
		}
		return resp
	}

	post(`{"type":"change_total_value","value":1000}`)
	post(`{"type":"change_distribution_percentage","index":0,"new_value":"40"}`)
	post(`{"type":"add_distribution"}`)
	post(`{"type":"change_distribution_percentage","index":1,"new_value":"40"}`)
	view := decodeView(t, post(`{"type":"add_distribution"}`))

	if len(view.Distributions) != 3 {
		t.Fatalf("expected 3 distributions, got %d", len(view.Distributions))
	}
	if got := view.Distributions[2].Percentage; got != "20" {
		t.Errorf("added percentage = %q, want 20", got)
	}
	if got := view.Distributions[2].FormattedAmount; got != "200" {
		t.Errorf("added amount = %q, want 200", got)
	}
	if view.TotalPercentage != "100" || view.OverLimit {
		t.Errorf("total = %s over=%v, want 100 and not over", view.TotalPercentage, view.OverLimit)
	}

	view = decodeView(t, post(`{"type":"change_distribution_percentage","index":2,"new_value":"50"}`))
	if view.TotalPercentage != "130" || !view.OverLimit {
		t.Errorf("total = %s over=%v, want 130 and over", view.TotalPercentage, view.OverLimit)
	}

	view = decodeView(t, post(`{"type":"reset"}`))
	if view.TotalValue != "" || len(view.Distributions) != 1 || view.ShowDistributions {
		t.Errorf("unexpected view after reset: %+v", view)
	}

	resp := app.HandleRequest(ctx, Request{Method: "GET", Path: "/api/events"})
	var events []types.Event
	if err := json.Unmarshal(resp.Body, &events); err != nil {
		t.Fatalf("failed to decode events: %v", err)
	}
	if len(events) != 7 {
		t.Errorf("expected 7 events, got %d", len(events))
	}
}

func TestHandleRequest_FormSubmit(t *testing.T) {
	app := testApp(t)
	ctx := context.Background()

	submit := func(body string) {
		t.Helper()
		resp := app.HandleRequest(ctx, Request{Method: "POST", Path: "/actions", Body: []byte(body)})
		if resp.StatusCode != 303 {
			t.Fatalf("submit %s: got status %d. Body: %s", body, resp.StatusCode, string(resp.Body))
		}
		if resp.Headers["Location"] != "/" {
			t.Errorf("Location = %q, want /", resp.Headers["Location"])
		}
	}

	submit("total_value=1000&distribution=40&action=add")
	state := app.Store.State()
	if state.TotalValue != "1000" {
		t.Errorf("TotalValue = %q, want 1000", state.TotalValue)
	}
	if strings.Join(state.Distributions, ",") != "40,60" {
		t.Errorf("Distributions = %v, want [40 60]", state.Distributions)
	}

	submit("total_value=1000&distribution=40&distribution=30&action=remove:0")
	state = app.Store.State()
	if strings.Join(state.Distributions, ",") != "30" {
		t.Errorf("Distributions = %v, want [30]", state.Distributions)
	}

	eventsBefore := len(app.Store.Events())
	submit("total_value=1000&distribution=30&action=update")
	if got := len(app.Store.Events()); got != eventsBefore {
		t.Errorf("unchanged form dispatched %d actions", got-eventsBefore)
	}

	submit("total_value=1000&distribution=30&action=reset")
	state = app.Store.State()
	if state.TotalValue != "" || strings.Join(state.Distributions, ",") != "100" {
		t.Errorf("unexpected state after reset: %+v", state)
	}
}

func TestHandleRequest_FormSubmitInvalidRemove(t *testing.T) {
	app := testApp(t)
	ctx := context.Background()

	resp := app.HandleRequest(ctx, Request{Method: "POST", Path: "/actions", Body: []byte("total_value=5&action=remove:x")})
	if resp.StatusCode != 400 {
		t.Fatalf("got status %d, want 400", resp.StatusCode)
	}
	if got := app.Store.State().TotalValue; got != "" {
		t.Errorf("rejected form applied total %q", got)
	}
}

func TestHandleRequest_BasePath(t *testing.T) {
	cfg := &config.Config{
		Locale:   "id",
		BasePath: "/calc",
	}

	app := NewWithStore(cfg, machine.NewStore(machine.StoreConfig{}))
	ctx := context.Background()

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{
			name:       "base path stripped - root",
			path:       "/calc/",
			wantStatus: 200,
		},
		{
			name:       "base path stripped - bare",
			path:       "/calc",
			wantStatus: 200,
		},
		{
			name:       "base path stripped - api",
			path:       "/calc/api/state",
			wantStatus: 200,
		},
		{
			name:       "base path stripped - static",
			path:       "/calc/static/styles.css",
			wantStatus: 200,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := Request{
				Method: "GET",
				Path:   tt.path,
			}

			resp := app.HandleRequest(ctx, req)

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("got status %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}

	resp := app.HandleRequest(ctx, Request{Method: "POST", Path: "/calc/actions", Body: []byte("action=add")})
	if resp.Headers["Location"] != "/calc/" {
		t.Errorf("Location = %q, want /calc/", resp.Headers["Location"])
	}
}

func TestIsStaticPath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/static/main.js", true},
		{"/static/styles.css", true},
		{"/favicon.ico", true},
		{"/", false},
		{"/api/state", false},
		{"/api/actions", false},
		{"/server/status", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := isStaticPath(tt.path)
			if got != tt.want {
				t.Errorf("isStaticPath(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestSubmitForm_SparseRows(t *testing.T) {
	app := testApp(t)
	ctx := context.Background()

	for _, action := range []types.Action{
		types.ChangeTotalValue("1000"),
		types.ChangeDistributionPercentage(3, "5"),
	} {
		if _, err := app.Dispatch(ctx, action); err != nil {
			t.Fatalf("Dispatch(%s) failed: %v", action.Type, err)
		}
	}

	// Two rows are rendered, for entries 0 and 3.
	form := url.Values{
		"total_value":  {"1000"},
		"distribution": {"100", "7"},
		"action":       {"update"},
	}
	if err := app.SubmitForm(ctx, form); err != nil {
		t.Fatalf("SubmitForm failed: %v", err)
	}

	want := []string{"100", types.Unset, types.Unset, "7"}
	if got := app.Store.State().Distributions; strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Distributions = %q, want %q", got, want)
	}
}
