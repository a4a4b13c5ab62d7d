package stats

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wekezahq/coopledger-backend/pkg/enums"
	"github.com/wekezahq/coopledger-backend/pkg/logger"
)

type stubStatsRepo struct {
	fundCount    int64
	totalBalance decimal.Decimal
	members      MemberTotals
	projects     map[enums.ProjectStatus]int64
	allProjects  int64
	txnTotals    map[enums.TransactionType]decimal.Decimal
	txnCount     int64
}

func (r *stubStatsRepo) FundTotals(ctx context.Context) (int64, decimal.Decimal, error) {
	return r.fundCount, r.totalBalance, nil
}

func (r *stubStatsRepo) MemberTotals(ctx context.Context) (MemberTotals, error) {
	return r.members, nil
}

func (r *stubStatsRepo) CountProjects(ctx context.Context, status enums.ProjectStatus) (int64, error) {
	if status == "" {
		return r.allProjects, nil
	}
	return r.projects[status], nil
}

func (r *stubStatsRepo) TransactionTotals(ctx context.Context) (map[enums.TransactionType]decimal.Decimal, int64, error) {
	return r.txnTotals, r.txnCount, nil
}

type memoryStore struct {
	values map[string]string
	ttls   map[string]time.Duration
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (s *memoryStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	switch v := value.(type) {
	case []byte:
		s.values[key] = string(v)
	case string:
		s.values[key] = v
	}
	s.ttls[key] = ttl
	return nil
}

func (s *memoryStore) Get(ctx context.Context, key string) (string, error) {
	return s.values[key], nil
}

func (s *memoryStore) SummaryKey(name string) string { return "summary:" + name }

func TestRecomputeStoresDashboardSummary(t *testing.T) {
	t.Parallel()

	repo := &stubStatsRepo{
		fundCount:    3,
		totalBalance: decimal.RequireFromString("1250.50"),
		members: MemberTotals{
			Total:            12,
			Active:           10,
			TotalShares:      600,
			TotalContributed: decimal.RequireFromString("9000.00"),
		},
		allProjects: 4,
		projects:    map[enums.ProjectStatus]int64{enums.ProjectStatusActive: 2},
		txnTotals: map[enums.TransactionType]decimal.Decimal{
			enums.TransactionTypeDeposit: decimal.RequireFromString("9000.00"),
			enums.TransactionTypeExpense: decimal.RequireFromString("300.00"),
		},
		txnCount: 57,
	}
	store := newMemoryStore()
	svc, err := NewService(repo, store, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
	if err != nil {
		t.Fatalf("building service: %v", err)
	}

	summary, err := svc.Recompute(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.ActiveFunds != 3 || summary.Members != 12 || summary.ActiveMembers != 10 {
		t.Fatalf("unexpected counts: %+v", summary)
	}
	if !summary.TotalBalance.Equal(decimal.RequireFromString("1250.50")) {
		t.Fatalf("unexpected total balance %s", summary.TotalBalance)
	}
	if summary.ActiveProjects != 2 || summary.Projects != 4 {
		t.Fatalf("unexpected project counts: %+v", summary)
	}
	if !summary.TotalDeposits.Equal(decimal.RequireFromString("9000.00")) {
		t.Fatalf("unexpected deposits %s", summary.TotalDeposits)
	}
	// Types with no completed rows report zero.
	if !summary.TotalDividends.IsZero() {
		t.Fatalf("expected zero dividends, got %s", summary.TotalDividends)
	}

	raw, ok := store.values["summary:dashboard"]
	if !ok {
		t.Fatal("summary must be written under the dashboard key")
	}
	var stored Summary
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		t.Fatalf("stored summary must be valid json: %v", err)
	}
	if stored.Transactions != 57 {
		t.Fatalf("unexpected stored transaction count %d", stored.Transactions)
	}
	if store.ttls["summary:dashboard"] != summaryTTL {
		t.Fatalf("unexpected ttl %s", store.ttls["summary:dashboard"])
	}
}

func TestLatestRoundtrips(t *testing.T) {
	t.Parallel()

	repo := &stubStatsRepo{totalBalance: decimal.Zero, members: MemberTotals{TotalContributed: decimal.Zero}}
	store := newMemoryStore()
	svc, err := NewService(repo, store, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
	if err != nil {
		t.Fatalf("building service: %v", err)
	}

	written, err := svc.Recompute(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	read, err := svc.Latest(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !read.GeneratedAt.Equal(written.GeneratedAt) {
		t.Fatalf("expected the stored summary back, got %+v", read)
	}
}

func TestInlineNotifierRecomputes(t *testing.T) {
	t.Parallel()

	repo := &stubStatsRepo{totalBalance: decimal.Zero, members: MemberTotals{TotalContributed: decimal.Zero}}
	store := newMemoryStore()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(repo, store, logg)
	if err != nil {
		t.Fatalf("building service: %v", err)
	}

	notifier := NewInlineNotifier(svc, logg)
	notifier.NotifyChanged(context.Background())

	if _, ok := store.values["summary:dashboard"]; !ok {
		t.Fatal("notification must trigger a recompute")
	}
}
