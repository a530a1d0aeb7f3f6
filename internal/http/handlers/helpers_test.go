package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/atharvsharma432199/phone-api/internal/domain"
	"github.com/atharvsharma432199/phone-api/internal/http/middleware"
	"github.com/atharvsharma432199/phone-api/internal/lookup"
	"github.com/atharvsharma432199/phone-api/internal/repo"
	"github.com/atharvsharma432199/phone-api/internal/services"
)

const (
	adminUser = "admin"
	adminPass = "admin123"
)

func quietLogger() gormlogger.Interface { return repo.NewGormLogger(gormlogger.Silent) }

// writePhoneStore builds a record store file with the ingestion job's schema.
func writePhoneStore(t *testing.T, path string, rows [][3]string) {
	t.Helper()
	db, err := repo.OpenSQLite(path, repo.WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer func() { _ = repo.Close(db) }()
	if err := db.Exec(`CREATE TABLE phone_data (
		name TEXT, fathersName TEXT, phoneNumber TEXT UNIQUE, otherNumber TEXT,
		passportNumber TEXT, aadharNumber TEXT, age TEXT, gender TEXT,
		address TEXT, district TEXT, pincode TEXT, state TEXT, town TEXT)`).Error; err != nil {
		t.Fatalf("create phone_data: %v", err)
	}
	for _, r := range rows {
		if err := db.Exec(`INSERT INTO phone_data (name, phoneNumber, otherNumber, state) VALUES (?, ?, ?, 'KA')`, r[0], r[1], r[2]).Error; err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	if err := db.Exec("PRAGMA journal_mode=DELETE").Error; err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
}

// fakeInit records Reinitialize calls and returns err.
type fakeInit struct {
	mu    sync.Mutex
	err   error
	calls int
	ctx   context.Context
}

func (f *fakeInit) Reinitialize(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.ctx = ctx
	return f.err
}

type fixture struct {
	db      *gorm.DB
	records *repo.RecordStore
	cache   *lookup.Cache
	init    *fakeInit
	r       *gin.Engine
}

// newFixture wires real services over temp SQLite stores and mounts the
// routes the same way the router does, minus global middleware.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()

	db, err := repo.OpenSQLite(filepath.Join(dir, "api_keys.db"), repo.WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close(db) })
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}

	phonePath := filepath.Join(dir, "phone_data.db")
	writePhoneStore(t, phonePath, [][3]string{
		{"Asha", "9876543210", ""},
		{"Ravi", "9000000001", "9123456780"},
	})
	records := repo.NewRecordStore(phonePath, true, repo.WithLogger(quietLogger()))
	t.Cleanup(func() { _ = records.Close() })

	hash, err := services.HashPassword(adminPass)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if _, err := repo.EnsureAdminUser(context.Background(), db, &domain.AdminUser{
		Username: adminUser, PasswordHash: hash, CreatedAt: time.Now().UTC(), IsActive: true,
	}); err != nil {
		t.Fatalf("EnsureAdminUser: %v", err)
	}

	cache := lookup.NewCache(16)
	ledger := &services.Ledger{DB: db}
	keys := &services.KeyService{DB: db, DefaultMaxUsage: 1000, DefaultValidDays: 30}
	auth := &services.AdminAuth{DB: db}
	fi := &fakeInit{}

	h := New(Deps{
		Lookup: &services.LookupService{
			Admission: &services.Admission{DB: db},
			Ledger:    ledger,
			Records:   records,
			Cache:     cache,
		},
		Keys:        keys,
		Status:      &services.StatusService{Keys: keys, Ledger: ledger, Records: records, Cache: cache},
		Init:        fi,
		Admins:      auth,
		InitTimeout: time.Minute,
	})

	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/", h.Lookup)
	r.GET("/health", Health)
	api := r.Group("/api")
	api.GET("/status", h.Status)
	api.GET("/admin/initdb", h.InitDB)
	admin := api.Group("/admin", middleware.AdminBasicAuth(auth, ""))
	admin.POST("/keys", h.CreateKey)
	admin.GET("/keys", h.ListKeys)
	admin.GET("/keys/:key", h.GetKey)
	admin.DELETE("/keys/:key", h.DeleteKey)
	admin.POST("/keys/:key/activate", h.ActivateKey)
	admin.POST("/keys/:key/deactivate", h.DeactivateKey)
	admin.GET("/keys/:key/usage", h.KeyUsage)
	admin.GET("/stats", h.Stats)

	return &fixture{db: db, records: records, cache: cache, init: fi, r: r}
}

func (f *fixture) addKey(t *testing.T, k domain.APIKey) {
	t.Helper()
	if k.CreatedAt.IsZero() {
		k.CreatedAt = time.Now().UTC()
	}
	if err := repo.CreateAPIKey(context.Background(), f.db, &k); err != nil {
		t.Fatalf("CreateAPIKey: %v", err)
	}
}

func (f *fixture) do(t *testing.T, method, target, body string, admin bool) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if admin {
		req.SetBasicAuth(adminUser, adminPass)
	}
	w := httptest.NewRecorder()
	f.r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %T from %q: %v", v, w.Body.String(), err)
	}
	return v
}

func expectError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) ErrorResponse {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status = %d; want %d (body %s)", w.Code, status, w.Body.String())
	}
	er := decode[ErrorResponse](t, w)
	if er.Status != "error" || er.Code != code || er.RequestID == "" {
		t.Fatalf("envelope = %+v; want code %q", er, code)
	}
	return er
}

func usageRows(t *testing.T, db *gorm.DB) []domain.UsageLog {
	t.Helper()
	var out []domain.UsageLog
	if err := db.Order("id asc").Find(&out).Error; err != nil {
		t.Fatalf("read usage_logs: %v", err)
	}
	return out
}

func newGet(target string) *http.Request { return httptest.NewRequest(http.MethodGet, target, nil) }

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}
