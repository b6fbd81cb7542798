package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"okrplan/internal/app/server"
	"okrplan/internal/platform/config"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error any             `json:"error"`
}

func testConfig(dbURL string) config.Config {
	return config.Config{
		DatabaseURL:       dbURL,
		JWTSecret:         "test-secret",
		Environment:       "test",
		SeedAdminEmail:    "admin@test.local",
		SeedAdminPassword: "ChangeMe123!",
		RunMigrations:     true,
		RunSeed:           true,
		MaxBodyBytes:      1048576,
		DefaultWeeklyHrs:  40,
	}
}

func TestCheckinCascadeJourney(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := testConfig(dbURL)
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()

	client := ts.Client()
	token := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)

	memberID := createMember(t, client, ts.URL, token, fmt.Sprintf("Journey Tester %d", time.Now().UnixNano()))

	goalID := createID(t, client, ts.URL+"/api/v1/goals", token, map[string]any{
		"title":   fmt.Sprintf("Ship reporting %d", time.Now().UnixNano()),
		"quarter": "Q1 2027",
		"status":  "active",
	})

	krAID := createID(t, client, ts.URL+"/api/v1/key-results", token, map[string]any{
		"goalId": goalID,
		"title":  "Dashboards adopted",
		"status": "active",
	})
	krBID := createID(t, client, ts.URL+"/api/v1/key-results", token, map[string]any{
		"goalId":       goalID,
		"title":        "Integrations shipped",
		"status":       "active",
		"currentValue": 5,
		"targetValue":  20,
	})

	initiativeID := createID(t, client, ts.URL+"/api/v1/initiatives", token, map[string]any{
		"keyResultId": krAID,
		"name":        "Build dashboard widgets",
		"status":      "active",
	})
	postJSON(t, client, ts.URL+"/api/v1/initiatives/"+initiativeID+"/assignees", token, map[string]any{
		"memberId": memberID,
	})

	checkinID := createID(t, client, ts.URL+"/api/v1/checkins", token, map[string]any{
		"memberId": memberID,
		"week":     "2027-01-04",
		"items": []map[string]any{
			{
				"kind":                    "initiative",
				"initiativeId":            initiativeID,
				"timeAllocationPct":       50,
				"progressContributionPct": 40,
			},
			{
				"kind":                  "key_result",
				"keyResultId":           krBID,
				"timeAllocationPct":     30,
				"currentValueIncrement": 5,
			},
		},
	})

	resp := postJSON(t, client, ts.URL+"/api/v1/checkins/"+checkinID+"/submit", token, map[string]any{})
	var result struct {
		AffectedKeyResultIDs []string `json:"affectedKeyResultIds"`
		AffectedGoalIDs      []string `json:"affectedGoalIds"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		t.Fatalf("failed to decode submit result: %v", err)
	}
	if len(result.AffectedKeyResultIDs) != 2 {
		t.Fatalf("expected 2 affected key results, got %v", result.AffectedKeyResultIDs)
	}

	// one assignee, 40% contribution lands in full on the initiative
	var initiativeProgress float64
	if err := app.Pool.QueryRow(context.Background(), "SELECT progress FROM initiatives WHERE id = $1", initiativeID).Scan(&initiativeProgress); err != nil {
		t.Fatalf("failed to read initiative: %v", err)
	}
	if initiativeProgress != 40 {
		t.Fatalf("expected initiative progress 40, got %v", initiativeProgress)
	}

	// value path: 5 + 5 of 20 gives 50
	var krBProgress int
	if err := app.Pool.QueryRow(context.Background(), "SELECT progress FROM key_results WHERE id = $1", krBID).Scan(&krBProgress); err != nil {
		t.Fatalf("failed to read key result: %v", err)
	}
	if krBProgress != 50 {
		t.Fatalf("expected key result progress 50, got %d", krBProgress)
	}

	var krAProgress int
	if err := app.Pool.QueryRow(context.Background(), "SELECT progress FROM key_results WHERE id = $1", krAID).Scan(&krAProgress); err != nil {
		t.Fatalf("failed to read key result: %v", err)
	}
	if krAProgress != 40 {
		t.Fatalf("expected key result progress 40, got %d", krAProgress)
	}

	// goal is the rounded mean of its key results
	var goalProgress int
	if err := app.Pool.QueryRow(context.Background(), "SELECT progress FROM goals WHERE id = $1", goalID).Scan(&goalProgress); err != nil {
		t.Fatalf("failed to read goal: %v", err)
	}
	if goalProgress != 45 {
		t.Fatalf("expected goal progress 45, got %d", goalProgress)
	}

	// resubmission is rejected
	status := postJSONStatus(t, client, ts.URL+"/api/v1/checkins/"+checkinID+"/submit", token, map[string]any{})
	if status != http.StatusConflict {
		t.Fatalf("expected conflict on resubmit, got %d", status)
	}
}

func TestDraftRejectionLeavesStoredDraftIntact(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := testConfig(dbURL)
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()

	client := ts.Client()
	token := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)

	memberID := createMember(t, client, ts.URL, token, fmt.Sprintf("Draft Tester %d", time.Now().UnixNano()))

	checkinID := createID(t, client, ts.URL+"/api/v1/checkins", token, map[string]any{
		"memberId": memberID,
		"week":     "2027-02-01",
		"items": []map[string]any{
			{"kind": "bau", "note": "Support rotation", "timeAllocationPct": 30},
		},
	})

	// an item pointing at both targets fails validation; the saved draft
	// must come through the rejected replace untouched
	status := postJSONStatus(t, client, ts.URL+"/api/v1/checkins", token, map[string]any{
		"memberId": memberID,
		"week":     "2027-02-01",
		"items": []map[string]any{
			{"kind": "bau", "note": "Incident follow-up", "timeAllocationPct": 20},
			{
				"kind":              "initiative",
				"initiativeId":      "00000000-0000-0000-0000-000000000001",
				"keyResultId":       "00000000-0000-0000-0000-000000000002",
				"timeAllocationPct": 40,
			},
		},
	})
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("expected unprocessable entity for ambiguous item, got %d", status)
	}

	resp := getJSON(t, client, ts.URL+"/api/v1/checkins/"+checkinID, token)
	var saved struct {
		TotalAllocationPct float64 `json:"totalAllocationPct"`
		Items              []struct {
			Note string `json:"note"`
		} `json:"items"`
	}
	if err := json.Unmarshal(resp.Data, &saved); err != nil {
		t.Fatalf("failed to decode check-in: %v", err)
	}
	if len(saved.Items) != 1 || saved.Items[0].Note != "Support rotation" {
		t.Fatalf("expected original draft items, got %+v", saved.Items)
	}
	if saved.TotalAllocationPct != 30 {
		t.Fatalf("expected allocation 30, got %v", saved.TotalAllocationPct)
	}
}

func TestUtilizationJourney(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := testConfig(dbURL)
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()

	client := ts.Client()
	token := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)

	memberID := createMember(t, client, ts.URL, token, fmt.Sprintf("Util Tester %d", time.Now().UnixNano()))

	resp := getJSON(t, client, ts.URL+"/api/v1/utilization/members/"+memberID+"?quarter=Q2+2027", token)
	var summary struct {
		UtilizationPct float64 `json:"utilizationPct"`
		Status         string  `json:"status"`
	}
	if err := json.Unmarshal(resp.Data, &summary); err != nil {
		t.Fatalf("failed to decode summary: %v", err)
	}
	if summary.UtilizationPct != 0 {
		t.Fatalf("expected zero utilization for fresh member, got %v", summary.UtilizationPct)
	}

	status := getJSONStatus(t, client, ts.URL+"/api/v1/utilization/members/"+memberID+"?quarter=All", token)
	if status != http.StatusBadRequest {
		t.Fatalf("expected bad request for sentinel quarter, got %d", status)
	}
}

func login(t *testing.T, client *http.Client, baseURL, email, password string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	})
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	token, _ := payload["token"].(string)
	if token == "" {
		t.Fatal("expected token")
	}
	return token
}

func createMember(t *testing.T, client *http.Client, baseURL, token, name string) string {
	t.Helper()
	return createID(t, client, baseURL+"/api/v1/team/members", token, map[string]any{
		"name":        name,
		"weeklyHours": 40,
	})
}

func createID(t *testing.T, client *http.Client, url, token string, body map[string]any) string {
	t.Helper()
	resp := postJSON(t, client, url, token, body)
	var payload map[string]string
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode create response from %s: %v", url, err)
	}
	if payload["id"] == "" {
		t.Fatalf("expected id from %s", url)
	}
	return payload["id"]
}

func postJSON(t *testing.T, client *http.Client, url, token string, body map[string]any) envelope {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := client.Do(req)
	if err != nil {
		t.Fatalf("request to %s failed: %v", url, err)
	}
	defer res.Body.Close()
	data, _ := io.ReadAll(res.Body)
	if res.StatusCode >= 400 {
		t.Fatalf("request to %s returned %d: %s", url, res.StatusCode, data)
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("failed to decode envelope from %s: %v", url, err)
	}
	return env
}

func postJSONStatus(t *testing.T, client *http.Client, url, token string, body map[string]any) int {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := client.Do(req)
	if err != nil {
		t.Fatalf("request to %s failed: %v", url, err)
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)
	return res.StatusCode
}

func getJSON(t *testing.T, client *http.Client, url, token string) envelope {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := client.Do(req)
	if err != nil {
		t.Fatalf("request to %s failed: %v", url, err)
	}
	defer res.Body.Close()
	data, _ := io.ReadAll(res.Body)
	if res.StatusCode >= 400 {
		t.Fatalf("request to %s returned %d: %s", url, res.StatusCode, data)
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("failed to decode envelope from %s: %v", url, err)
	}
	return env
}

func getJSONStatus(t *testing.T, client *http.Client, url, token string) int {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := client.Do(req)
	if err != nil {
		t.Fatalf("request to %s failed: %v", url, err)
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)
	return res.StatusCode
}
