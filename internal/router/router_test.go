package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"reforco-escolar/internal/config"
	"reforco-escolar/internal/database"
	"reforco-escolar/internal/logger"
	"reforco-escolar/internal/models"
	"reforco-escolar/internal/session"
	"reforco-escolar/internal/testutil"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	adminEmail   = "admin@reforcoescolar.com"
	teacherEmail = "professor@reforcoescolar.com"
)

type testServer struct {
	t      *testing.T
	db     *gorm.DB
	engine *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger.Log.SetOutput(io.Discard)

	cfg := &config.Config{
		Server:   config.ServerConfig{Mode: gin.TestMode},
		JWT:      config.JWTConfig{Secret: "test-secret", Issuer: "reforco-escolar", ExpireHours: 1},
		Security: config.SecurityConfig{BcryptCost: bcrypt.MinCost, HashWorkers: 4},
		App:      config.AppSubConfig{PageSize: 20},
	}
	db := testutil.NewDB(t)
	deps := NewDeps(cfg, db, session.NewGormStore(db))
	if err := database.SeedDemo(context.Background(), db, deps.Hasher); err != nil {
		t.Fatalf("SeedDemo() error = %v", err)
	}
	return &testServer{t: t, db: db, engine: SetupRouter(cfg, deps)}
}

// call sends body as JSON and decodes the JSON response into a generic map.
func (s *testServer) call(method, path, token string, body interface{}) (int, map[string]interface{}) {
	s.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			s.t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	out := map[string]interface{}{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w.Code, out
}

func (s *testServer) login(email, password string) (string, map[string]interface{}) {
	s.t.Helper()
	code, body := s.call(http.MethodPost, "/api/auth/login", "", gin.H{"email": email, "password": password})
	if code != http.StatusOK {
		s.t.Fatalf("login %s = %d %v", email, code, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		s.t.Fatalf("login %s returned no token", email)
	}
	user, _ := body["user"].(map[string]interface{})
	return token, user
}

// register creates a staff account through the admin API and logs it in.
func (s *testServer) register(adminToken, email, role string) string {
	s.t.Helper()
	code, body := s.call(http.MethodPost, "/api/auth/register", adminToken, gin.H{
		"name": email, "email": email, "password": "teacher123", "role": role,
	})
	if code != http.StatusCreated {
		s.t.Fatalf("register %s = %d %v", email, code, body)
	}
	token, _ := s.login(email, "teacher123")
	return token
}

func (s *testServer) createStudent(token string, body gin.H) uint {
	s.t.Helper()
	code, resp := s.call(http.MethodPost, "/api/students", token, body)
	if code != http.StatusCreated {
		s.t.Fatalf("create student = %d %v", code, resp)
	}
	return uint(resp["id"].(float64))
}

func TestLogin_SeededAdmin(t *testing.T) {
	s := newTestServer(t)

	code, body := s.call(http.MethodPost, "/api/auth/login", "", gin.H{
		"email": adminEmail, "password": database.DemoPassword,
	})
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%v)", code, body)
	}
	if tok, _ := body["token"].(string); tok == "" {
		t.Error("response has no token")
	}
	if body["expiresAt"] == nil {
		t.Error("response has no expiresAt")
	}
	user, _ := body["user"].(map[string]interface{})
	if user["role"] != "ADMIN" {
		t.Errorf("user.role = %v, want ADMIN", user["role"])
	}
	if _, leaked := user["passwordHash"]; leaked {
		t.Error("user leaks passwordHash")
	}
}

func TestLogin_TokensDiffer(t *testing.T) {
	s := newTestServer(t)
	first, _ := s.login(adminEmail, database.DemoPassword)
	second, _ := s.login(adminEmail, database.DemoPassword)
	if first == second {
		t.Error("two logins returned the same token")
	}

	// both sessions stay usable
	for _, tok := range []string{first, second} {
		if code, _ := s.call(http.MethodGet, "/api/auth/me", tok, nil); code != http.StatusOK {
			t.Errorf("me = %d, want 200", code)
		}
	}
}

func TestLogin_Failures(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body gin.H
		want int
	}{
		{"wrong password", gin.H{"email": adminEmail, "password": "nope"}, http.StatusUnauthorized},
		{"unknown email", gin.H{"email": "ghost@example.com", "password": "123456"}, http.StatusUnauthorized},
		{"missing password", gin.H{"email": adminEmail}, http.StatusBadRequest},
		{"bad email", gin.H{"email": "not-an-email", "password": "123456"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := s.call(http.MethodPost, "/api/auth/login", "", tt.body)
			if code != tt.want {
				t.Errorf("status = %d, want %d (%v)", code, tt.want, body)
			}
			if _, ok := body["token"]; ok {
				t.Error("failed login returned a token")
			}
		})
	}
}

func TestLogin_StudentRole(t *testing.T) {
	s := newTestServer(t)
	teacher, _ := s.login(teacherEmail, database.DemoPassword)
	s.createStudent(teacher, gin.H{"name": "Ana", "email": "ana@example.com", "password": "aluno123"})

	token, user := s.login("ana@example.com", "aluno123")
	if user["role"] != "STUDENT" {
		t.Errorf("user.role = %v, want STUDENT", user["role"])
	}

	code, body := s.call(http.MethodGet, "/api/auth/me", token, nil)
	me, _ := body["user"].(map[string]interface{})
	if code != http.StatusOK || me["role"] != "STUDENT" {
		t.Errorf("me = %d %v, want STUDENT", code, body)
	}
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	s := newTestServer(t)

	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/auth/me"},
		{http.MethodPost, "/api/auth/logout"},
		{http.MethodGet, "/api/students"},
		{http.MethodGet, "/api/students/1"},
		{http.MethodGet, "/api/tutorings"},
		{http.MethodGet, "/api/payments"},
		{http.MethodGet, "/api/payments/export"},
		{http.MethodGet, "/api/evaluations"},
		{http.MethodGet, "/api/materials"},
		{http.MethodGet, "/api/audit-logs"},
	}
	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			code, body := s.call(rt.method, rt.path, "", nil)
			if code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", code)
			}
			if body["error"] != "authentication required" {
				t.Errorf("error = %v", body["error"])
			}
			if _, ok := body["data"]; ok {
				t.Error("unauthenticated request returned data")
			}
		})
	}
}

func TestLogout_InvalidatesToken(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.login(adminEmail, database.DemoPassword)

	if code, body := s.call(http.MethodPost, "/api/auth/logout", token, nil); code != http.StatusOK {
		t.Fatalf("logout = %d %v", code, body)
	}
	for i := 0; i < 2; i++ {
		code, body := s.call(http.MethodGet, "/api/auth/me", token, nil)
		if code != http.StatusUnauthorized || body["error"] != "session not found" {
			t.Errorf("reuse #%d = %d %v, want 401 session not found", i, code, body)
		}
	}
}

func TestStudentOwnership(t *testing.T) {
	s := newTestServer(t)
	admin, _ := s.login(adminEmail, database.DemoPassword)
	teacherA, _ := s.login(teacherEmail, database.DemoPassword)
	teacherB := s.register(admin, "outro@example.com", "TEACHER")

	id := s.createStudent(teacherA, gin.H{"name": "Carla", "grade": "7º ano"})
	path := fmt.Sprintf("/api/students/%d", id)

	checks := []struct {
		method string
		body   interface{}
	}{
		{http.MethodGet, nil},
		{http.MethodPut, gin.H{"name": "Hijacked"}},
		{http.MethodDelete, nil},
	}
	for _, ck := range checks {
		code, body := s.call(ck.method, path, teacherB, ck.body)
		if code != http.StatusForbidden && code != http.StatusNotFound {
			t.Errorf("%s as teacher B = %d, want 403/404", ck.method, code)
		}
		if _, leaked := body["name"]; leaked {
			t.Errorf("%s as teacher B leaked the student: %v", ck.method, body)
		}
	}

	// teacher B's listing does not count the hidden student
	code, body := s.call(http.MethodGet, "/api/students", teacherB, nil)
	page, _ := body["pagination"].(map[string]interface{})
	if code != http.StatusOK || page["total"] != float64(0) {
		t.Errorf("teacher B list = %d %v, want total 0", code, body)
	}

	// owner and admin still see the untouched student
	for _, tok := range []string{teacherA, admin} {
		code, body := s.call(http.MethodGet, path, tok, nil)
		if code != http.StatusOK || body["name"] != "Carla" {
			t.Errorf("get = %d %v, want Carla", code, body)
		}
	}

	if code, _ := s.call(http.MethodGet, "/api/students/9999", admin, nil); code != http.StatusNotFound {
		t.Errorf("admin get missing = %d, want 404", code)
	}
}

// created posts body and returns the new row's id.
func (s *testServer) created(token, path string, body gin.H) uint {
	s.t.Helper()
	code, resp := s.call(http.MethodPost, path, token, body)
	if code != http.StatusCreated {
		s.t.Fatalf("POST %s = %d %v", path, code, resp)
	}
	return uint(resp["id"].(float64))
}

func TestRecordOwnership(t *testing.T) {
	s := newTestServer(t)
	admin, _ := s.login(adminEmail, database.DemoPassword)
	teacherA, _ := s.login(teacherEmail, database.DemoPassword)
	teacherB := s.register(admin, "outro@example.com", "TEACHER")

	student := s.createStudent(teacherA, gin.H{"name": "Carla"})
	paths := []string{
		fmt.Sprintf("/api/tutorings/%d", s.created(teacherA, "/api/tutorings", gin.H{
			"studentId": student, "subject": "Matemática", "scheduledAt": "2024-06-01T14:00",
		})),
		fmt.Sprintf("/api/payments/%d", s.created(teacherA, "/api/payments", gin.H{
			"studentId": student, "amount": 150.5, "dueDate": "2024-06-10",
		})),
		fmt.Sprintf("/api/evaluations/%d", s.created(teacherA, "/api/evaluations", gin.H{
			"studentId": student, "subject": "Matemática", "score": 8.5,
		})),
	}

	for _, path := range paths {
		checks := []struct {
			method string
			body   interface{}
		}{
			{http.MethodGet, nil},
			{http.MethodPut, gin.H{"subject": "Hijacked", "amount": 1}},
			{http.MethodDelete, nil},
		}
		for _, ck := range checks {
			code, body := s.call(ck.method, path, teacherB, ck.body)
			if code != http.StatusForbidden {
				t.Errorf("%s %s as teacher B = %d, want 403", ck.method, path, code)
			}
			for _, field := range []string{"studentId", "subject", "amount"} {
				if _, leaked := body[field]; leaked {
					t.Errorf("%s %s as teacher B leaked %s: %v", ck.method, path, field, body)
				}
			}
		}

		// the owner still reads the untouched row
		code, body := s.call(http.MethodGet, path, teacherA, nil)
		if code != http.StatusOK || body["studentId"] != float64(student) {
			t.Errorf("GET %s as owner = %d %v, want student %d", path, code, body, student)
		}
		if body["subject"] == "Hijacked" {
			t.Errorf("GET %s as owner shows teacher B's update", path)
		}
	}
}

func TestStudentCannotReadOtherTutoring(t *testing.T) {
	s := newTestServer(t)
	teacher, _ := s.login(teacherEmail, database.DemoPassword)
	s.createStudent(teacher, gin.H{"name": "Ana", "email": "ana@example.com", "password": "aluno123"})
	bia := s.createStudent(teacher, gin.H{"name": "Bia"})
	tutoring := s.created(teacher, "/api/tutorings", gin.H{
		"studentId": bia, "subject": "Português", "scheduledAt": "2024-06-01T14:00",
	})

	ana, _ := s.login("ana@example.com", "aluno123")
	code, body := s.call(http.MethodGet, fmt.Sprintf("/api/tutorings/%d", tutoring), ana, nil)
	if code != http.StatusForbidden {
		t.Errorf("student reading another student's tutoring = %d, want 403", code)
	}
	if _, leaked := body["subject"]; leaked {
		t.Errorf("response leaked the tutoring: %v", body)
	}
}

func TestReassignStudentMovesTutorings(t *testing.T) {
	s := newTestServer(t)
	admin, _ := s.login(adminEmail, database.DemoPassword)
	teacherA, _ := s.login(teacherEmail, database.DemoPassword)
	teacherB := s.register(admin, "outro@example.com", "TEACHER")

	_, me := s.call(http.MethodGet, "/api/auth/me", teacherB, nil)
	user, _ := me["user"].(map[string]interface{})
	teacherBID, _ := user["id"].(float64)
	if teacherBID == 0 {
		t.Fatalf("/api/auth/me as teacher B = %v, want an id", me)
	}

	student := s.createStudent(teacherA, gin.H{"name": "Carla"})
	path := fmt.Sprintf("/api/tutorings/%d", s.created(teacherA, "/api/tutorings", gin.H{
		"studentId": student, "subject": "Matemática", "scheduledAt": "2024-06-01T14:00",
	}))

	code, body := s.call(http.MethodPut, fmt.Sprintf("/api/students/%d", student), admin, gin.H{"teacherId": teacherBID})
	if code != http.StatusOK || body["teacherId"] != teacherBID {
		t.Fatalf("reassign student = %d %v, want teacherId %v", code, body, teacherBID)
	}

	code, body = s.call(http.MethodGet, path, teacherB, nil)
	if code != http.StatusOK {
		t.Fatalf("GET tutoring as new teacher = %d %v, want 200", code, body)
	}
	if body["teacherId"] != teacherBID {
		t.Errorf("tutoring teacherId = %v, want %v", body["teacherId"], teacherBID)
	}

	if code, _ := s.call(http.MethodGet, path, teacherA, nil); code != http.StatusForbidden {
		t.Errorf("GET tutoring as previous teacher = %d, want 403", code)
	}

	// a plain update leaves the tutoring where it is
	code, _ = s.call(http.MethodPut, fmt.Sprintf("/api/students/%d", student), teacherB, gin.H{"name": "Carla Souza"})
	if code != http.StatusOK {
		t.Fatalf("rename student = %d, want 200", code)
	}
	if _, body := s.call(http.MethodGet, path, teacherB, nil); body["teacherId"] != teacherBID {
		t.Errorf("tutoring teacherId after rename = %v, want %v", body["teacherId"], teacherBID)
	}
}

func TestAdminCreatesStudentForTeacher(t *testing.T) {
	s := newTestServer(t)
	admin, _ := s.login(adminEmail, database.DemoPassword)
	teacher, user := s.login(teacherEmail, database.DemoPassword)
	teacherID := user["id"].(float64)

	code, body := s.call(http.MethodPost, "/api/students", admin, gin.H{"name": "Sem professor"})
	if code != http.StatusBadRequest {
		t.Errorf("create without teacherId = %d %v, want 400", code, body)
	}

	s.createStudent(admin, gin.H{"name": "Davi", "teacherId": teacherID})
	code, body = s.call(http.MethodGet, "/api/students", teacher, nil)
	page, _ := body["pagination"].(map[string]interface{})
	if code != http.StatusOK || page["total"] != float64(1) {
		t.Errorf("teacher list = %d %v, want total 1", code, body)
	}
}

func TestEmailUniqueAcrossTables(t *testing.T) {
	s := newTestServer(t)
	teacher, _ := s.login(teacherEmail, database.DemoPassword)

	code, body := s.call(http.MethodPost, "/api/students", teacher, gin.H{
		"name": "Eva", "email": strings.ToUpper(adminEmail), "password": "aluno123",
	})
	if code != http.StatusBadRequest || body["error"] != "email already in use" {
		t.Errorf("create with staff email = %d %v, want 400 email already in use", code, body)
	}
}

func TestRegister_AdminOnly(t *testing.T) {
	s := newTestServer(t)
	teacher, _ := s.login(teacherEmail, database.DemoPassword)

	code, _ := s.call(http.MethodPost, "/api/auth/register", teacher, gin.H{
		"name": "X", "email": "x@example.com", "password": "123456",
	})
	if code != http.StatusForbidden {
		t.Errorf("register as teacher = %d, want 403", code)
	}

	admin, _ := s.login(adminEmail, database.DemoPassword)
	code, body := s.call(http.MethodPost, "/api/auth/register", admin, gin.H{
		"name": "X", "email": teacherEmail, "password": "123456",
	})
	if code != http.StatusBadRequest {
		t.Errorf("register duplicate = %d %v, want 400", code, body)
	}
}

func TestChangePassword(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.login(teacherEmail, database.DemoPassword)

	code, body := s.call(http.MethodPut, "/api/auth/change-password", token, gin.H{
		"currentPassword": "wrong", "newPassword": "novasenha",
	})
	if code != http.StatusBadRequest || body["error"] != "current password is incorrect" {
		t.Errorf("wrong current = %d %v", code, body)
	}

	code, body = s.call(http.MethodPut, "/api/auth/change-password", token, gin.H{
		"currentPassword": database.DemoPassword, "newPassword": "novasenha",
	})
	if code != http.StatusOK {
		t.Fatalf("change = %d %v", code, body)
	}

	code, _ = s.call(http.MethodPost, "/api/auth/login", "", gin.H{"email": teacherEmail, "password": database.DemoPassword})
	if code != http.StatusUnauthorized {
		t.Errorf("login with old password = %d, want 401", code)
	}
	s.login(teacherEmail, "novasenha")
}

func TestUpdateProfile(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.login(teacherEmail, database.DemoPassword)

	code, body := s.call(http.MethodPut, "/api/auth/profile", token, gin.H{
		"name": "Profa. Maria", "themeColor": "#1e40af", "logoUrl": "/uploads/logo.png",
	})
	if code != http.StatusOK {
		t.Fatalf("update = %d %v", code, body)
	}
	user, _ := body["user"].(map[string]interface{})
	if user["name"] != "Profa. Maria" || user["themeColor"] != "#1e40af" {
		t.Errorf("user = %v", user)
	}

	code, _ = s.call(http.MethodPut, "/api/auth/profile", token, gin.H{"themeColor": "blue"})
	if code != http.StatusBadRequest {
		t.Errorf("bad color = %d, want 400", code)
	}
	code, _ = s.call(http.MethodPut, "/api/auth/profile", token, gin.H{"email": adminEmail})
	if code != http.StatusBadRequest {
		t.Errorf("taken email = %d, want 400", code)
	}
}

func TestStudentSeesOwnRecords(t *testing.T) {
	s := newTestServer(t)
	teacher, _ := s.login(teacherEmail, database.DemoPassword)
	ana := s.createStudent(teacher, gin.H{"name": "Ana", "email": "ana@example.com", "password": "aluno123"})
	bia := s.createStudent(teacher, gin.H{"name": "Bia"})

	for _, id := range []uint{ana, bia} {
		code, body := s.call(http.MethodPost, "/api/payments", teacher, gin.H{
			"studentId": id, "amount": 150.5, "dueDate": "2024-06-10",
		})
		if code != http.StatusCreated {
			t.Fatalf("create payment = %d %v", code, body)
		}
		code, body = s.call(http.MethodPost, "/api/tutorings", teacher, gin.H{
			"studentId": id, "subject": "Matemática", "scheduledAt": "2024-06-01T14:00",
		})
		if code != http.StatusCreated {
			t.Fatalf("create tutoring = %d %v", code, body)
		}
	}

	student, _ := s.login("ana@example.com", "aluno123")
	for _, path := range []string{"/api/payments", "/api/tutorings", "/api/students"} {
		code, body := s.call(http.MethodGet, path, student, nil)
		page, _ := body["pagination"].(map[string]interface{})
		if code != http.StatusOK || page["total"] != float64(1) {
			t.Errorf("GET %s as student = %d %v, want total 1", path, code, body)
		}
	}

	code, _ := s.call(http.MethodGet, fmt.Sprintf("/api/students/%d", bia), student, nil)
	if code != http.StatusForbidden {
		t.Errorf("student reading another student = %d, want 403", code)
	}
	code, _ = s.call(http.MethodPost, "/api/payments", student, gin.H{"studentId": ana, "amount": 1, "dueDate": "2024-06-10"})
	if code != http.StatusForbidden {
		t.Errorf("student creating payment = %d, want 403", code)
	}
	code, _ = s.call(http.MethodGet, "/api/materials", student, nil)
	if code != http.StatusForbidden {
		t.Errorf("student listing materials = %d, want 403", code)
	}
}

func TestPaymentExportCSV(t *testing.T) {
	s := newTestServer(t)
	teacher, _ := s.login(teacherEmail, database.DemoPassword)
	id := s.createStudent(teacher, gin.H{"name": "Ana"})
	if code, body := s.call(http.MethodPost, "/api/payments", teacher, gin.H{
		"studentId": id, "amount": 99.9, "dueDate": "2024-06-10", "status": models.PaymentPaid,
	}); code != http.StatusCreated {
		t.Fatalf("create payment = %d %v", code, body)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/payments/export?format=csv", nil)
	req.Header.Set("Authorization", "Bearer "+teacher)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("export = %d %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q", ct)
	}
	out := w.Body.String()
	if !strings.Contains(out, "Ana") || !strings.Contains(out, "99,90") {
		t.Errorf("csv = %q, want Ana and 99,90", out)
	}
}

func TestAuditLogs(t *testing.T) {
	s := newTestServer(t)
	admin, _ := s.login(adminEmail, database.DemoPassword)
	teacher, _ := s.login(teacherEmail, database.DemoPassword)
	s.createStudent(teacher, gin.H{"name": "Ana"})

	if code, _ := s.call(http.MethodGet, "/api/audit-logs", teacher, nil); code != http.StatusForbidden {
		t.Errorf("teacher audit logs = %d, want 403", code)
	}

	code, body := s.call(http.MethodGet, "/api/audit-logs?method=POST", admin, nil)
	page, _ := body["pagination"].(map[string]interface{})
	if code != http.StatusOK || page["total"] != float64(1) {
		t.Errorf("admin audit logs = %d %v, want total 1", code, body)
	}
}

func TestHealthAndNoRoute(t *testing.T) {
	s := newTestServer(t)
	if code, body := s.call(http.MethodGet, "/health", "", nil); code != http.StatusOK || body["status"] != "ok" {
		t.Errorf("health = %d %v", code, body)
	}
	if code, _ := s.call(http.MethodGet, "/nope", "", nil); code != http.StatusNotFound {
		t.Errorf("unknown route = %d, want 404", code)
	}
}

func TestMaterialsScope(t *testing.T) {
	s := newTestServer(t)
	admin, _ := s.login(adminEmail, database.DemoPassword)
	teacherA, _ := s.login(teacherEmail, database.DemoPassword)
	teacherB := s.register(admin, "outro@example.com", "TEACHER")

	code, body := s.call(http.MethodPost, "/api/materials", teacherA, gin.H{"name": "Apostila", "quantity": 3, "unitPrice": 12.5})
	if code != http.StatusCreated {
		t.Fatalf("create own material = %d %v", code, body)
	}
	own := uint(body["id"].(float64))

	code, body = s.call(http.MethodPost, "/api/materials", admin, gin.H{"name": "Lápis", "quantity": 100, "shared": true})
	if code != http.StatusCreated {
		t.Fatalf("create shared material = %d %v", code, body)
	}
	shared := uint(body["id"].(float64))

	code, body = s.call(http.MethodGet, "/api/materials", teacherB, nil)
	page, _ := body["pagination"].(map[string]interface{})
	if code != http.StatusOK || page["total"] != float64(1) {
		t.Errorf("teacher B materials = %d %v, want only the shared item", code, body)
	}

	if code, _ := s.call(http.MethodGet, fmt.Sprintf("/api/materials/%d", own), teacherB, nil); code != http.StatusForbidden {
		t.Errorf("teacher B reading A's material = %d, want 403", code)
	}
	if code, _ := s.call(http.MethodPut, fmt.Sprintf("/api/materials/%d", shared), teacherA, gin.H{"quantity": 0}); code != http.StatusForbidden {
		t.Errorf("teacher updating shared stock = %d, want 403", code)
	}
	if code, _ := s.call(http.MethodPut, fmt.Sprintf("/api/materials/%d", shared), admin, gin.H{"quantity": 90}); code != http.StatusOK {
		t.Errorf("admin updating shared stock = %d, want 200", code)
	}
}
