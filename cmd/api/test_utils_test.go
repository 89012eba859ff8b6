package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"celflicks/internal/auth"
	"celflicks/internal/catalog"
	"celflicks/internal/domain/ledger"
	"celflicks/internal/domain/videos"
	"celflicks/internal/payments"
	"celflicks/internal/purchases"
	"celflicks/internal/ratelimiter"
	"celflicks/internal/snapshot"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	testSecret    = "test-secret"
	testBasicUser = "ops"
	testBasicPass = "hunter2"
)

type testApp struct {
	*application
	remote *memRemote
	ledger *memLedger
	mux    http.Handler
}

func newTestApplication(t *testing.T, cfg config) *testApp {
	t.Helper()

	logger := zap.NewNop().Sugar()
	remote := newMemRemote()
	l := newMemLedger()

	svc, err := purchases.NewService(l, payments.NewPaymentManager(), nil, "test-salt", logger)
	if err != nil {
		t.Fatal(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(testBasicPass), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	cfg.auth.basic = basicConfig{user: testBasicUser, passHash: string(hash)}

	app := &application{
		config:        cfg,
		logger:        logger,
		catalog:       catalog.New(remote, &snapshot.Memory{}, logger),
		purchases:     svc,
		authenticator: auth.NewJWTAuthenticator(testSecret, "", ""),
		rateLimiter:   ratelimiter.NewFixedWindowLimiter(cfg.rateLimiter.RequestsPerTimeFrame, time.Minute),
	}

	return &testApp{application: app, remote: remote, ledger: l, mux: app.mount()}
}

func (ta *testApp) token(t *testing.T, userID string, admin bool) string {
	t.Helper()
	tok, err := ta.authenticator.GenerateToken(userID, userID+"@example.com", admin, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func (ta *testApp) refresh(t *testing.T) {
	t.Helper()
	if err := ta.catalog.FetchAll(context.Background()); err != nil {
		t.Fatalf("fetch: %v", err)
	}
}

func executeRequest(req *http.Request, mux http.Handler) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func checkResponseCode(t *testing.T, expected, actual int) {
	t.Helper()
	if expected != actual {
		t.Errorf("expected the response code to be %d and we got %d", expected, actual)
	}
}

// memRemote is a minimal in-memory data service.
type memRemote struct {
	mu      sync.Mutex
	videos  []videos.Video
	entries []videos.FeaturedEntry
	nextID  int64
}

func newMemRemote() *memRemote { return &memRemote{} }

func (m *memRemote) seed(title, url string, categories ...videos.Category) videos.Video {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := videos.Video{ID: uuid.NewString(), Title: title, SourceURL: url}.Normalize()
	v.CreatedAt = time.Now().Add(time.Duration(len(m.videos)) * time.Millisecond)
	m.videos = append(m.videos, v)
	for _, c := range categories {
		m.nextID++
		pos := 0
		for _, e := range m.entries {
			if e.Category == c {
				pos++
			}
		}
		m.entries = append(m.entries, videos.FeaturedEntry{ID: m.nextID, VideoID: v.ID, Category: c, Position: pos})
	}
	return v
}

func (m *memRemote) ListVideos(ctx context.Context) ([]videos.Video, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]videos.Video{}, m.videos...), nil
}

func (m *memRemote) CreateVideo(ctx context.Context, v videos.Video) (*videos.Video, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v.ID = uuid.NewString()
	v.CreatedAt = time.Now()
	m.videos = append(m.videos, v)
	return &v, nil
}

func (m *memRemote) UpdateVideo(ctx context.Context, id string, v videos.Video) (*videos.Video, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.videos {
		if m.videos[i].ID == id {
			v.ID = id
			m.videos[i] = v
			return &v, nil
		}
	}
	return nil, videos.ErrNotFound
}

func (m *memRemote) DeleteVideo(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.videos {
		if m.videos[i].ID == id {
			m.videos = append(m.videos[:i], m.videos[i+1:]...)
			return nil
		}
	}
	return videos.ErrNotFound
}

func (m *memRemote) ListFeatured(ctx context.Context) ([]videos.FeaturedEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]videos.FeaturedEntry{}, m.entries...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (m *memRemote) ListFeaturedByCategory(ctx context.Context, c videos.Category) ([]videos.FeaturedEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []videos.FeaturedEntry
	for _, e := range m.entries {
		if e.Category == c {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memRemote) CreateFeatured(ctx context.Context, e videos.FeaturedEntry) (*videos.FeaturedEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.entries {
		if x.VideoID == e.VideoID && x.Category == e.Category {
			return nil, videos.ErrDuplicateFeatured
		}
	}
	m.nextID++
	e.ID = m.nextID
	m.entries = append(m.entries, e)
	return &e, nil
}

func (m *memRemote) deleteWhere(match func(videos.FeaturedEntry) bool) {
	for i := len(m.entries) - 1; i >= 0; i-- {
		gone := m.entries[i]
		if !match(gone) {
			continue
		}
		m.entries = append(m.entries[:i], m.entries[i+1:]...)
		for k := range m.entries {
			if m.entries[k].Category == gone.Category && m.entries[k].Position > gone.Position {
				m.entries[k].Position--
			}
		}
	}
}

func (m *memRemote) DeleteFeatured(ctx context.Context, videoID string, c videos.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteWhere(func(e videos.FeaturedEntry) bool { return e.VideoID == videoID && e.Category == c })
	return nil
}

func (m *memRemote) DeleteFeaturedByVideo(ctx context.Context, videoID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteWhere(func(e videos.FeaturedEntry) bool { return e.VideoID == videoID })
	return nil
}

func (m *memRemote) SwapPositions(ctx context.Context, a, b videos.FeaturedEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ia, ib := -1, -1
	for i, e := range m.entries {
		switch e.ID {
		case a.ID:
			ia = i
		case b.ID:
			ib = i
		}
	}
	if ia < 0 || ib < 0 {
		return videos.ErrNotFound
	}
	m.entries[ia].Position, m.entries[ib].Position = b.Position, a.Position
	return nil
}

// memLedger serves packages and wallets; no purchase ever settles in these
// tests because no gateway is registered.
type memLedger struct {
	packages []ledger.Package
}

func newMemLedger() *memLedger {
	return &memLedger{packages: []ledger.Package{
		{ID: "p1", Name: "Starter", PriceUSD: 4.99, XCEAmount: 500},
		{ID: "p2", Name: "Binge", PriceUSD: 19.99, XCEAmount: 2200},
	}}
}

func (l *memLedger) GetPackage(ctx context.Context, id string) (*ledger.Package, error) {
	for _, p := range l.packages {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, ledger.ErrPackageNotFound
}

func (l *memLedger) ListPackages(ctx context.Context) ([]ledger.Package, error) {
	return append([]ledger.Package{}, l.packages...), nil
}

func (l *memLedger) RecordStripePayment(ctx context.Context, p *ledger.StripePayment) (*ledger.StripePayment, error) {
	return p, nil
}

func (l *memLedger) SetStripePaymentStatus(ctx context.Context, intentID, status string) error {
	return nil
}

func (l *memLedger) CompletePurchase(ctx context.Context, userID, packageID, paymentID string, amount int64) (int64, error) {
	return 1, nil
}

func (l *memLedger) Balance(ctx context.Context, userID string) (*ledger.Wallet, error) {
	return &ledger.Wallet{UserID: userID}, nil
}
