package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/studymate/studymate-backend/internal/handlers"
	"github.com/studymate/studymate-backend/internal/middleware"
	"github.com/studymate/studymate-backend/internal/repos"
	"github.com/studymate/studymate-backend/internal/repos/testutil"
	"github.com/studymate/studymate-backend/internal/services"
)

func newTestRouter(tb testing.TB) *gin.Engine {
	tb.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.DB(tb)
	log := testutil.Logger(tb)

	userRepo := repos.NewUserRepo(db, log)
	userTokenRepo := repos.NewUserTokenRepo(db, log)
	studyPlanRepo := repos.NewStudyPlanRepo(db, log)
	planTaskRepo := repos.NewPlanTaskRepo(db, log)
	userEventRepo := repos.NewUserEventRepo(db, log)

	authService := services.NewAuthService(db, log, userRepo, userTokenRepo, "test-secret", 15*time.Minute, 24*time.Hour)
	userService := services.NewUserService(db, log, userRepo)
	planService := services.NewPlanService(db, log, userRepo, studyPlanRepo, planTaskRepo, userEventRepo, nil, 0)
	dashboardService := services.NewDashboardService(db, log, userRepo, studyPlanRepo, planTaskRepo, userEventRepo, nil)

	return NewRouter(RouterConfig{
		StaticDir:        tb.TempDir(),
		AuthMiddleware:   middleware.NewAuthMiddleware(log, authService),
		AuthHandler:      handlers.NewAuthHandler(authService),
		UserHandler:      handlers.NewUserHandler(userService),
		PlanHandler:      handlers.NewPlanHandler(planService),
		DashboardHandler: handlers.NewDashboardHandler(dashboardService),
		HealthHandler:    handlers.NewHealthHandler(nil),
	})
}

func doJSON(tb testing.TB, router *gin.Engine, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	tb.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			tb.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var payload map[string]any
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &payload)
	}
	return rec, payload
}

func registerTestUser(tb testing.TB, router *gin.Engine, email string) string {
	tb.Helper()
	rec, payload := doJSON(tb, router, http.MethodPost, "/api/register", "", gin.H{
		"name":     "Router Test",
		"email":    email,
		"password": "secret123",
	})
	if rec.Code != http.StatusCreated {
		tb.Fatalf("register status %d: %s", rec.Code, rec.Body.String())
	}
	token, _ := payload["access_token"].(string)
	if token == "" {
		tb.Fatal("registration returned no access token")
	}
	return token
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rec, _ := doJSON(t, router, http.MethodGet, "/healthcheck", "", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthcheck: %d %q", rec.Code, rec.Body.String())
	}

	rec, payload := doJSON(t, router, http.MethodGet, "/api/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("api health status %d", rec.Code)
	}
	if payload["database"] != "postgresql" {
		t.Errorf("unexpected health payload: %v", payload)
	}
}

func TestRegisterLoginFlow(t *testing.T) {
	router := newTestRouter(t)
	registerTestUser(t, router, "flow@example.com")

	rec, payload := doJSON(t, router, http.MethodPost, "/api/register", "", gin.H{
		"name": "Dup", "email": "flow@example.com", "password": "secret123",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d", rec.Code)
	}
	envelope, _ := payload["error"].(map[string]any)
	if envelope["code"] != "email_in_use" || envelope["message"] == "" {
		t.Fatalf("expected error envelope with email_in_use code, got %v", payload)
	}

	rec, payload = doJSON(t, router, http.MethodPost, "/api/login", "", gin.H{
		"email": "flow@example.com", "password": "secret123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status %d: %s", rec.Code, rec.Body.String())
	}
	if token, _ := payload["access_token"].(string); token == "" {
		t.Error("login returned no access token")
	}

	rec, _ = doJSON(t, router, http.MethodPost, "/api/login", "", gin.H{
		"email": "flow@example.com", "password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password, got %d", rec.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/api/user", "/api/user-plans", "/api/dashboard"} {
		rec, _ := doJSON(t, router, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s without token: expected 401, got %d", path, rec.Code)
		}
	}

	rec, _ := doJSON(t, router, http.MethodGet, "/api/user", "garbage-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for garbage token, got %d", rec.Code)
	}
}

func TestPlanLifecycle(t *testing.T) {
	router := newTestRouter(t)
	token := registerTestUser(t, router, "lifecycle@example.com")

	rec, payload := doJSON(t, router, http.MethodPost, "/api/generate-plan", token, gin.H{
		"student_name": "Alice",
		"exam_date":    "2026-10-01",
		"daily_hours":  "2",
		"topics": []gin.H{
			{"course": "Math", "topic": "Algebra", "difficulty": "easy"},
			{"course": "Physics", "topic": "Optics", "difficulty": "hard"},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("generate-plan status %d: %s", rec.Code, rec.Body.String())
	}
	planID, _ := payload["plan_id"].(string)
	if planID == "" {
		t.Fatal("generate-plan returned no plan_id")
	}
	tasks, _ := payload["plan"].([]any)
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks in response, got %d", len(tasks))
	}
	first, _ := tasks[0].(map[string]any)
	if first["day"] != "Day 1" {
		t.Errorf("expected day label %q, got %v", "Day 1", first["day"])
	}

	rec, payload = doJSON(t, router, http.MethodGet, "/api/plan/"+planID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get plan status %d", rec.Code)
	}
	if payload["student_name"] != "Alice" {
		t.Errorf("unexpected plan payload: %v", payload["student_name"])
	}

	rec, payload = doJSON(t, router, http.MethodGet, "/api/user-plans", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("user-plans status %d", rec.Code)
	}
	if count, _ := payload["count"].(float64); count != 1 {
		t.Errorf("expected 1 plan listed, got %v", payload["count"])
	}

	rec, payload = doJSON(t, router, http.MethodPost, "/api/update-progress", token, gin.H{
		"plan_id":    planID,
		"task_index": 0,
		"completed":  true,
		"time_spent": 30,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update-progress status %d: %s", rec.Code, rec.Body.String())
	}
	task, _ := payload["task"].(map[string]any)
	if task["completed"] != true {
		t.Errorf("expected completed task, got %v", task)
	}

	rec, payload = doJSON(t, router, http.MethodPost, "/api/update-progress", token, gin.H{
		"plan_id":    planID,
		"task_index": 99,
		"completed":  true,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad task index, got %d", rec.Code)
	}
	if envelope, _ := payload["error"].(map[string]any); envelope["code"] != "invalid_task_index" {
		t.Fatalf("expected invalid_task_index error envelope, got %v", payload)
	}

	rec, payload = doJSON(t, router, http.MethodGet, "/api/dashboard", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard status %d", rec.Code)
	}
	stats, _ := payload["stats"].(map[string]any)
	if stats["total_plans"].(float64) != 1 || stats["completed_tasks"].(float64) != 1 {
		t.Errorf("unexpected dashboard stats: %v", stats)
	}
}

func TestPlanOwnershipAcrossUsers(t *testing.T) {
	router := newTestRouter(t)
	tokenA := registerTestUser(t, router, "owner-a@example.com")
	tokenB := registerTestUser(t, router, "owner-b@example.com")

	_, payload := doJSON(t, router, http.MethodPost, "/api/generate-plan", tokenA, gin.H{
		"topics": []gin.H{{"course": "Math", "topic": "Algebra"}},
	})
	planID, _ := payload["plan_id"].(string)
	if planID == "" {
		t.Fatal("no plan_id returned")
	}

	rec, _ := doJSON(t, router, http.MethodGet, "/api/plan/"+planID, tokenB, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for another user's plan, got %d", rec.Code)
	}
}

func TestLogoutInvalidatesToken(t *testing.T) {
	router := newTestRouter(t)
	token := registerTestUser(t, router, "bye@example.com")

	rec, _ := doJSON(t, router, http.MethodPost, "/api/logout", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout status %d: %s", rec.Code, rec.Body.String())
	}

	rec, _ = doJSON(t, router, http.MethodGet, "/api/user", token, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", rec.Code)
	}
}

func TestStaticFallbackMissingBuild(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/some/client/route", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without a frontend build, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown api route, got %d", rec.Code)
	}
}
