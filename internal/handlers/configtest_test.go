package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kondarsoft/marketplace/internal/cache"
	"github.com/kondarsoft/marketplace/internal/handlers"
	"github.com/kondarsoft/marketplace/internal/identity"
	"github.com/kondarsoft/marketplace/internal/mail"
	"github.com/kondarsoft/marketplace/internal/models"
	"github.com/kondarsoft/marketplace/internal/store"
)

type setCall struct {
	Key   string
	Value string
	TTL   time.Duration
}

// fakeCache is an in-memory Cache that records every Get and Set.
type fakeCache struct {
	mu     sync.Mutex
	data   map[string]string
	Gets   []string
	Sets   []setCall
	SetErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string]string{}}
}

func (f *fakeCache) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Gets = append(f.Gets, key)
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", cache.ErrMiss
}

func (f *fakeCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Sets = append(f.Sets, setCall{Key: key, Value: value, TTL: ttl})
	if f.SetErr != nil {
		return f.SetErr
	}
	f.data[key] = value
	return nil
}

func (f *fakeCache) Preset(key, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
}

type publishedEvent struct {
	Topic string
	Key   string
	Event map[string]any
}

type fakeProducer struct {
	mu     sync.Mutex
	Events []publishedEvent
	Err    error
}

func (f *fakeProducer) Publish(_ context.Context, topic, key string, event map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Events = append(f.Events, publishedEvent{Topic: topic, Key: key, Event: event})
	return f.Err
}

type fakeSender struct {
	Messages []mail.Message
	Err      error
}

func (f *fakeSender) Send(_ context.Context, msg mail.Message) error {
	f.Messages = append(f.Messages, msg)
	return f.Err
}

type fakeMatcher struct {
	Category string
	Err      error
}

func (f *fakeMatcher) Categorize(_ context.Context, _ string) (string, error) {
	return f.Category, f.Err
}

type testEnv struct {
	T         *testing.T
	E         *echo.Echo
	DB        *gorm.DB
	Cache     *fakeCache
	Producer  *fakeProducer
	W         *handlers.WishlistHandler
	C         *handlers.CartHandler
	P         *handlers.ProductHandler
	A         *handlers.AccountHandler
	JWTSecret []byte
}

func initTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Wishlist{},
		&models.WishlistItem{},
		&models.Business{},
		&models.Individual{},
	); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	db := initTestDB(t)
	c := newFakeCache()
	prod := &fakeProducer{}
	secret := []byte("test-secret")

	env := &testEnv{
		T:         t,
		E:         echo.New(),
		DB:        db,
		Cache:     c,
		Producer:  prod,
		JWTSecret: secret,
	}

	env.W = &handlers.WishlistHandler{
		Store: &store.WishlistStore{DB: db},
		Resolver: &identity.Resolver{
			CookieName: "sessionId",
			Salt:       "test-salt",
			TTL:        30 * 24 * time.Hour,
		},
		Producer: prod,
	}
	env.C = &handlers.CartHandler{
		Store: &store.CartStore{DB: db},
		Cache: c,
		Resolver: &identity.Resolver{
			CookieName: "cartSessionId",
			Salt:       "test-salt",
			TTL:        30 * 24 * time.Hour,
		},
		Producer:  prod,
		JWTSecret: secret,
	}
	env.P = &handlers.ProductHandler{DB: db}
	env.A = &handlers.AccountHandler{DB: db, Producer: prod}

	return env
}

func (env *testEnv) doJSONRequest(method, path string, body interface{}, cookies ...*http.Cookie) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	return rec, env.E.NewContext(req, rec)
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	t.Fatalf("no %q cookie on response", name)
	return nil
}
