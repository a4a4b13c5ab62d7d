package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/wekezahq/coopledger-backend/internal/archive"
	"github.com/wekezahq/coopledger-backend/internal/audit"
	"github.com/wekezahq/coopledger-backend/pkg/db/models"
	"github.com/wekezahq/coopledger-backend/pkg/enums"
	pkgerrors "github.com/wekezahq/coopledger-backend/pkg/errors"
	"github.com/wekezahq/coopledger-backend/pkg/identity"
	"github.com/wekezahq/coopledger-backend/pkg/logger"
	"github.com/wekezahq/coopledger-backend/pkg/pagination"
)

var testActor = identity.Actor{ID: "usr-1", Name: "Treasurer", Role: "admin"}

func dec(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return d
}

// stubRepo keeps all ledger state in value maps so the tx runner can
// snapshot and restore it, mimicking rollback.
type stubRepo struct {
	funds       map[uuid.UUID]models.Fund
	members     map[uuid.UUID]models.Member
	projects    map[uuid.UUID]models.Project
	txns        map[uuid.UUID]models.Transaction
	updates     []models.ProjectUpdate
	memberOrder []uuid.UUID

	memberUpdateErr error
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		funds:    map[uuid.UUID]models.Fund{},
		members:  map[uuid.UUID]models.Member{},
		projects: map[uuid.UUID]models.Project{},
		txns:     map[uuid.UUID]models.Transaction{},
	}
}

func (r *stubRepo) addFund(fund models.Fund) models.Fund {
	if fund.ID == uuid.Nil {
		fund.ID = uuid.New()
	}
	if fund.Status == "" {
		fund.Status = enums.FundStatusActive
	}
	if fund.Type == "" {
		fund.Type = enums.FundTypeGeneral
	}
	r.funds[fund.ID] = fund
	return fund
}

func (r *stubRepo) addMember(member models.Member) models.Member {
	if member.ID == uuid.Nil {
		member.ID = uuid.New()
	}
	if member.Status == "" {
		member.Status = enums.MemberStatusActive
	}
	r.members[member.ID] = member
	r.memberOrder = append(r.memberOrder, member.ID)
	return member
}

func (r *stubRepo) addProject(project models.Project) models.Project {
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	r.projects[project.ID] = project
	return project
}

type stubSnapshot struct {
	funds       map[uuid.UUID]models.Fund
	members     map[uuid.UUID]models.Member
	projects    map[uuid.UUID]models.Project
	txns        map[uuid.UUID]models.Transaction
	updates     []models.ProjectUpdate
	memberOrder []uuid.UUID
}

func (r *stubRepo) snapshot() stubSnapshot {
	snap := stubSnapshot{
		funds:       make(map[uuid.UUID]models.Fund, len(r.funds)),
		members:     make(map[uuid.UUID]models.Member, len(r.members)),
		projects:    make(map[uuid.UUID]models.Project, len(r.projects)),
		txns:        make(map[uuid.UUID]models.Transaction, len(r.txns)),
		updates:     append([]models.ProjectUpdate(nil), r.updates...),
		memberOrder: append([]uuid.UUID(nil), r.memberOrder...),
	}
	for k, v := range r.funds {
		snap.funds[k] = v
	}
	for k, v := range r.members {
		snap.members[k] = v
	}
	for k, v := range r.projects {
		snap.projects[k] = v
	}
	for k, v := range r.txns {
		snap.txns[k] = v
	}
	return snap
}

func (r *stubRepo) restore(snap stubSnapshot) {
	r.funds = snap.funds
	r.members = snap.members
	r.projects = snap.projects
	r.txns = snap.txns
	r.updates = snap.updates
	r.memberOrder = snap.memberOrder
}

func (r *stubRepo) WithTx(tx *gorm.DB) Repository { return r }

func (r *stubRepo) FindFund(ctx context.Context, id uuid.UUID) (*models.Fund, error) {
	fund, ok := r.funds[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &fund, nil
}

func (r *stubRepo) FindMember(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	member, ok := r.members[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &member, nil
}

func (r *stubRepo) FindProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	project, ok := r.projects[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &project, nil
}

func (r *stubRepo) FindTransaction(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	txn, ok := r.txns[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &txn, nil
}

func (r *stubRepo) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	r.txns[txn.ID] = *txn
	return nil
}

func (r *stubRepo) CreateTransactions(ctx context.Context, txns []models.Transaction) error {
	for i := range txns {
		if err := r.CreateTransaction(ctx, &txns[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *stubRepo) UpdateTransaction(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	txn, ok := r.txns[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for key, value := range updates {
		switch key {
		case "status":
			txn.Status = value.(enums.TransactionStatus)
		case "authorized_by":
			txn.AuthorizedBy = value.(string)
		case "balance_before":
			txn.BalanceBefore = value.(decimal.Decimal)
		case "balance_after":
			txn.BalanceAfter = value.(decimal.Decimal)
		case "member_id":
			id := value.(uuid.UUID)
			txn.MemberID = &id
		case "fund_id":
			id := value.(uuid.UUID)
			txn.FundID = &id
		case "amount":
			txn.Amount = value.(decimal.Decimal)
		case "method":
			method := value.(enums.DepositMethod)
			txn.Method = &method
		case "description":
			txn.Description = value.(string)
		case "metadata":
			txn.Metadata = value.(json.RawMessage)
		default:
			panic(fmt.Sprintf("unhandled transaction update key %q", key))
		}
	}
	r.txns[id] = txn
	return nil
}

func (r *stubRepo) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	delete(r.txns, id)
	return nil
}

func (r *stubRepo) UpdateFund(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	fund, ok := r.funds[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for key, value := range updates {
		switch key {
		case "balance":
			fund.Balance = value.(decimal.Decimal)
		case "reconciliation_status":
			fund.ReconciliationStatus = value.(enums.ReconciliationStatus)
		case "reconciled_at":
			at := value.(time.Time)
			fund.ReconciledAt = &at
		default:
			panic(fmt.Sprintf("unhandled fund update key %q", key))
		}
	}
	r.funds[id] = fund
	return nil
}

func (r *stubRepo) UpdateMember(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if r.memberUpdateErr != nil {
		return r.memberUpdateErr
	}
	member, ok := r.members[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for key, value := range updates {
		switch key {
		case "total_contributed":
			member.TotalContributed = value.(decimal.Decimal)
		case "shares":
			member.Shares = value.(int64)
		case "status":
			member.Status = value.(enums.MemberStatus)
		default:
			panic(fmt.Sprintf("unhandled member update key %q", key))
		}
	}
	r.members[id] = member
	return nil
}

func (r *stubRepo) UpdateProject(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	project, ok := r.projects[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for key, value := range updates {
		switch key {
		case "current_fund_balance":
			project.CurrentFundBalance = value.(decimal.Decimal)
		case "total_earnings":
			project.TotalEarnings = value.(decimal.Decimal)
		case "total_expenses":
			project.TotalExpenses = value.(decimal.Decimal)
		default:
			panic(fmt.Sprintf("unhandled project update key %q", key))
		}
	}
	r.projects[id] = project
	return nil
}

func (r *stubRepo) NextProjectUpdateSequence(ctx context.Context, projectID uuid.UUID) (int64, error) {
	var max int64
	for _, update := range r.updates {
		if update.ProjectID == projectID && update.Sequence > max {
			max = update.Sequence
		}
	}
	return max + 1, nil
}

func (r *stubRepo) CreateProjectUpdate(ctx context.Context, update *models.ProjectUpdate) error {
	if update.ID == uuid.Nil {
		update.ID = uuid.New()
	}
	r.updates = append(r.updates, *update)
	return nil
}

func (r *stubRepo) ListActiveShareholders(ctx context.Context) ([]models.Member, error) {
	var members []models.Member
	for _, id := range r.memberOrder {
		member := r.members[id]
		if member.Status == enums.MemberStatusActive && member.Shares > 0 {
			members = append(members, member)
		}
	}
	return members, nil
}

func (r *stubRepo) ListTransactions(ctx context.Context, filter TransactionFilter, params pagination.Params) ([]models.Transaction, error) {
	var out []models.Transaction
	for _, txn := range r.txns {
		if filter.FundID != nil && (txn.FundID == nil || *txn.FundID != *filter.FundID) {
			continue
		}
		if filter.MemberID != nil && (txn.MemberID == nil || *txn.MemberID != *filter.MemberID) {
			continue
		}
		if filter.Type != "" && txn.Type != filter.Type {
			continue
		}
		if filter.Status != "" && txn.Status != filter.Status {
			continue
		}
		out = append(out, txn)
	}
	return out, nil
}

func (r *stubRepo) SumCompletedByFund(ctx context.Context, fundID uuid.UUID) (FundFlows, error) {
	flows := FundFlows{TotalIn: decimal.Zero, TotalOut: decimal.Zero}
	for _, txn := range r.txns {
		if txn.FundID == nil || *txn.FundID != fundID || txn.Status != enums.TransactionStatusCompleted {
			continue
		}
		switch {
		case txn.Type.IsFundInflow():
			flows.TotalIn = flows.TotalIn.Add(txn.Amount)
		case txn.Type.IsFundOutflow():
			flows.TotalOut = flows.TotalOut.Add(txn.Amount)
		case txn.Type == enums.TransactionTypeAdjustment:
			flows.TotalIn = flows.TotalIn.Add(txn.BalanceAfter.Sub(txn.BalanceBefore))
		}
	}
	return flows, nil
}

// stubTx snapshots the stub repo before the unit of work and restores it
// when the body fails, matching the rollback behavior of the real runner.
type stubTx struct{ repo *stubRepo }

func (s stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	snap := s.repo.snapshot()
	if err := fn(nil); err != nil {
		s.repo.restore(snap)
		return err
	}
	return nil
}

type stubAuditor struct{ entries []audit.Entry }

func (a *stubAuditor) Record(ctx context.Context, entry audit.Entry) (*models.AuditLog, error) {
	a.entries = append(a.entries, entry)
	return &models.AuditLog{}, nil
}

type stubArchive struct{ inputs []archive.Input }

func (a *stubArchive) Archive(ctx context.Context, tx *gorm.DB, input archive.Input) (*models.DeletedRecord, error) {
	a.inputs = append(a.inputs, input)
	return &models.DeletedRecord{}, nil
}

type stubStats struct{ notified int }

func (s *stubStats) NotifyChanged(ctx context.Context) { s.notified++ }

type fixture struct {
	repo    *stubRepo
	auditor *stubAuditor
	archive *stubArchive
	stats   *stubStats
	svc     Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := newStubRepo()
	auditor := &stubAuditor{}
	arch := &stubArchive{}
	stats := &stubStats{}
	svc, err := NewService(ServiceParams{
		Repo:             repo,
		Tx:               stubTx{repo: repo},
		Auditor:          auditor,
		Archive:          arch,
		Stats:            stats,
		Logger:           logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		ReconcileEpsilon: "0.01",
	})
	if err != nil {
		t.Fatalf("building service: %v", err)
	}
	return &fixture{repo: repo, auditor: auditor, archive: arch, stats: stats, svc: svc}
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != code {
		t.Fatalf("expected %s error, got %v", code, err)
	}
}

func TestDepositCompletedCreditsFundAndMember(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	fund := fx.repo.addFund(models.Fund{Name: "General", Balance: dec("500.00")})
	member := fx.repo.addMember(models.Member{Name: "Amina", Shares: 5, TotalContributed: dec("200.00")})

	txn, err := fx.svc.Deposit(context.Background(), DepositInput{
		Actor:    testActor,
		MemberID: member.ID,
		FundID:   fund.ID,
		Amount:   dec("150.00"),
		Method:   enums.DepositMethodMobileMoney,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if txn.Status != enums.TransactionStatusCompleted {
		t.Fatalf("expected completed status, got %s", txn.Status)
	}
	if !txn.BalanceBefore.Equal(dec("500.00")) || !txn.BalanceAfter.Equal(dec("650.00")) {
		t.Fatalf("unexpected snapshots: %s -> %s", txn.BalanceBefore, txn.BalanceAfter)
	}
	if got := fx.repo.funds[fund.ID].Balance; !got.Equal(dec("650.00")) {
		t.Fatalf("expected fund balance 650.00, got %s", got)
	}
	updated := fx.repo.members[member.ID]
	if !updated.TotalContributed.Equal(dec("350.00")) {
		t.Fatalf("expected contribution 350.00, got %s", updated.TotalContributed)
	}
	if updated.Shares != 5 {
		t.Fatalf("deposit must not mint shares, got %d", updated.Shares)
	}
	if len(fx.auditor.entries) != 1 || fx.auditor.entries[0].Action != enums.AuditActionDepositCreated {
		t.Fatalf("expected one deposit_created audit entry, got %+v", fx.auditor.entries)
	}
	if fx.stats.notified != 1 {
		t.Fatalf("expected one stats notification, got %d", fx.stats.notified)
	}
}

func TestDepositPendingRecordsWithoutBalanceImpact(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	fund := fx.repo.addFund(models.Fund{Name: "General", Balance: dec("500.00")})
	member := fx.repo.addMember(models.Member{Name: "Amina"})

	txn, err := fx.svc.Deposit(context.Background(), DepositInput{
		Actor:    testActor,
		MemberID: member.ID,
		FundID:   fund.ID,
		Amount:   dec("75.00"),
		Status:   enums.TransactionStatusPending,
		Method:   enums.DepositMethodCash,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := fx.repo.funds[fund.ID].Balance; !got.Equal(dec("500.00")) {
		t.Fatalf("pending deposit must not move the balance, got %s", got)
	}
	if !txn.BalanceBefore.Equal(txn.BalanceAfter) {
		t.Fatalf("pending snapshots must be equal, got %s -> %s", txn.BalanceBefore, txn.BalanceAfter)
	}
}

func TestDepositMissingFund(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	member := fx.repo.addMember(models.Member{Name: "Amina"})

	_, err := fx.svc.Deposit(context.Background(), DepositInput{
		Actor:    testActor,
		MemberID: member.ID,
		FundID:   uuid.New(),
		Amount:   dec("10.00"),
		Method:   enums.DepositMethodCash,
	})
	assertCode(t, err, pkgerrors.CodeNotFound)

	if len(fx.repo.txns) != 0 {
		t.Fatalf("no transaction may be written on failure, got %d", len(fx.repo.txns))
	}
}

func TestDepositRollsBackOnMemberUpdateFailure(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	fund := fx.repo.addFund(models.Fund{Name: "General", Balance: dec("500.00")})
	member := fx.repo.addMember(models.Member{Name: "Amina"})
	fx.repo.memberUpdateErr = fmt.Errorf("connection reset")

	_, err := fx.svc.Deposit(context.Background(), DepositInput{
		Actor:    testActor,
		MemberID: member.ID,
		FundID:   fund.ID,
		Amount:   dec("100.00"),
		Method:   enums.DepositMethodCash,
	})
	if err == nil {
		t.Fatal("expected failure")
	}

	if got := fx.repo.funds[fund.ID].Balance; !got.Equal(dec("500.00")) {
		t.Fatalf("fund balance must roll back, got %s", got)
	}
	if len(fx.repo.txns) != 0 {
		t.Fatalf("transaction must roll back, got %d", len(fx.repo.txns))
	}
	if fx.stats.notified != 0 {
		t.Fatalf("no stats notification on failure, got %d", fx.stats.notified)
	}
}

func TestApproveDepositAppliesDeferredDeltas(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	fund := fx.repo.addFund(models.Fund{Name: "General", Balance: dec("500.00")})
	member := fx.repo.addMember(models.Member{Name: "Amina", TotalContributed: dec("0.00")})

	pending, err := fx.svc.Deposit(context.Background(), DepositInput{
		Actor:    testActor,
		MemberID: member.ID,
		FundID:   fund.ID,
		Amount:   dec("120.00"),
		Status:   enums.TransactionStatusPending,
		Method:   enums.DepositMethodBankTransfer,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	approver := identity.Actor{ID: "usr-2", Name: "Chair"}
	approved, err := fx.svc.ApproveDeposit(context.Background(), ApproveDepositInput{
		Actor:         approver,
		TransactionID: pending.ID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if approved.Status != enums.TransactionStatusCompleted {
		t.Fatalf("expected completed, got %s", approved.Status)
	}
	if approved.AuthorizedBy != "Chair" {
		t.Fatalf("expected approving actor stamped, got %q", approved.AuthorizedBy)
	}
	if got := fx.repo.funds[fund.ID].Balance; !got.Equal(dec("620.00")) {
		t.Fatalf("expected fund balance 620.00, got %s", got)
	}
	if got := fx.repo.members[member.ID].TotalContributed; !got.Equal(dec("120.00")) {
		t.Fatalf("expected contribution 120.00, got %s", got)
	}

	_, err = fx.svc.ApproveDeposit(context.Background(), ApproveDepositInput{
		Actor:         approver,
		TransactionID: pending.ID,
	})
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestEditDepositMovesImpactBetweenFunds(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	fundA := fx.repo.addFund(models.Fund{Name: "A", Balance: dec("0.00")})
	fundB := fx.repo.addFund(models.Fund{Name: "B", Balance: dec("50.00")})
	member := fx.repo.addMember(models.Member{Name: "Amina"})

	original, err := fx.svc.Deposit(context.Background(), DepositInput{
		Actor:    testActor,
		MemberID: member.ID,
		FundID:   fundA.ID,
		Amount:   dec("100.00"),
		Method:   enums.DepositMethodCash,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	edited, err := fx.svc.EditDeposit(context.Background(), EditDepositInput{
		Actor:         testActor,
		TransactionID: original.ID,
		MemberID:      member.ID,
		FundID:        fundB.ID,
		Amount:        dec("80.00"),
		Status:        enums.TransactionStatusCompleted,
		Method:        enums.DepositMethodCash,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := fx.repo.funds[fundA.ID].Balance; !got.Equal(dec("0.00")) {
		t.Fatalf("old fund must be restored, got %s", got)
	}
	if got := fx.repo.funds[fundB.ID].Balance; !got.Equal(dec("130.00")) {
		t.Fatalf("new fund must carry the new amount, got %s", got)
	}
	if got := fx.repo.members[member.ID].TotalContributed; !got.Equal(dec("80.00")) {
		t.Fatalf("contribution must equal the new amount, got %s", got)
	}
	if !edited.Amount.Equal(dec("80.00")) || *edited.FundID != fundB.ID {
		t.Fatalf("transaction must carry the new values, got %+v", edited)
	}
}

func TestEditDepositLayersPriorStateIntoMetadata(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	fund := fx.repo.addFund(models.Fund{Name: "General", Balance: dec("0.00")})
	member := fx.repo.addMember(models.Member{Name: "Amina"})

	original, err := fx.svc.Deposit(context.Background(), DepositInput{
		Actor:    testActor,
		MemberID: member.ID,
		FundID:   fund.ID,
		Amount:   dec("100.00"),
		Method:   enums.DepositMethodCash,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	edited, err := fx.svc.EditDeposit(context.Background(), EditDepositInput{
		Actor:         testActor,
		TransactionID: original.ID,
		MemberID:      member.ID,
		FundID:        fund.ID,
		Amount:        dec("80.00"),
		Status:        enums.TransactionStatusCompleted,
		Method:        enums.DepositMethodCash,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var meta map[string]map[string]any
	if err := json.Unmarshal(edited.Metadata, &meta); err != nil {
		t.Fatalf("decoding metadata: %v", err)
	}
	lastEdit := meta["last_edit"]
	if lastEdit == nil {
		t.Fatalf("expected a last_edit entry, got %s", edited.Metadata)
	}
	prior, err := decimal.NewFromString(lastEdit["amount"].(string))
	if err != nil || !prior.Equal(dec("100.00")) {
		t.Fatalf("expected prior amount 100.00, got %v", lastEdit["amount"])
	}
	if lastEdit["status"] != string(enums.TransactionStatusCompleted) {
		t.Fatalf("expected prior status completed, got %v", lastEdit["status"])
	}
	if lastEdit["edited_by"] != testActor.ID {
		t.Fatalf("expected editing actor %s, got %v", testActor.ID, lastEdit["edited_by"])
	}
	if stored := fx.repo.txns[original.ID]; len(stored.Metadata) == 0 {
		t.Fatalf("metadata must be persisted on the row")
	}
}

func TestEditDepositSameFundDoesNotStackDeltas(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	fund := fx.repo.addFund(models.Fund{Name: "General", Balance: dec("0.00")})
	member := fx.repo.addMember(models.Member{Name: "Amina"})

	original, err := fx.svc.Deposit(context.Background(), DepositInput{
		Actor:    testActor,
		MemberID: member.ID,
		FundID:   fund.ID,
		Amount:   dec("100.00"),
		Method:   enums.DepositMethodCash,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, amount := range []string{"60.00", "90.00"} {
		_, err := fx.svc.EditDeposit(context.Background(), EditDepositInput{
			Actor:         testActor,
			TransactionID: original.ID,
			MemberID:      member.ID,
			FundID:        fund.ID,
			Amount:        dec(amount),
			Status:        enums.TransactionStatusCompleted,
			Method:        enums.DepositMethodCash,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := fx.repo.funds[fund.ID].Balance; !got.Equal(dec(amount)) {
			t.Fatalf("expected balance %s after edit, got %s", amount, got)
		}
	}
}

func TestExpenseInsufficientBalance(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	fund := fx.repo.addFund(models.Fund{Name: "General", Balance: dec("30.00")})
	fundID := fund.ID

	_, err := fx.svc.Expense(context.Background(), ExpenseInput{
		Actor:       testActor,
		FundID:      &fundID,
		Amount:      dec("45.00"),
		Description: "venue hire",
	})
	assertCode(t, err, pkgerrors.CodeInsufficientFunds)

	if got := fx.repo.funds[fund.ID].Balance; !got.Equal(dec("30.00")) {
		t.Fatalf("balance must be untouched, got %s", got)
	}
}

func TestExpenseOnProjectUpdatesTotalsAndSequence(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	fund := fx.repo.addFund(models.Fund{Name: "Poultry fund", Type: enums.FundTypeProject, Balance: dec("400.00")})
	project := fx.repo.addProject(models.Project{Title: "Poultry", FundID: fund.ID, CurrentFundBalance: dec("400.00")})
	fund.ProjectID = &project.ID
	fx.repo.funds[fund.ID] = fund
	projectID := project.ID

	txn, err := fx.svc.Expense(context.Background(), ExpenseInput{
		Actor:       testActor,
		ProjectID:   &projectID,
		Amount:      dec("120.00"),
		Description: "feed",
		Category:    "supplies",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := fx.repo.funds[fund.ID].Balance; !got.Equal(dec("280.00")) {
		t.Fatalf("expected fund balance 280.00, got %s", got)
	}
	updated := fx.repo.projects[project.ID]
	if !updated.CurrentFundBalance.Equal(dec("280.00")) {
		t.Fatalf("expected mirrored balance 280.00, got %s", updated.CurrentFundBalance)
	}
	if !updated.TotalExpenses.Equal(dec("120.00")) {
		t.Fatalf("expected total expenses 120.00, got %s", updated.TotalExpenses)
	}
	if len(fx.repo.updates) != 1 {
		t.Fatalf("expected one project update, got %d", len(fx.repo.updates))
	}
	update := fx.repo.updates[0]
	if update.Sequence != 1 || update.Type != enums.ProjectUpdateTypeExpense {
		t.Fatalf("unexpected project update: %+v", update)
	}
	if update.TransactionID == nil || *update.TransactionID != txn.ID {
		t.Fatalf("project update must reference the transaction")
	}

	_, err = fx.svc.Earning(context.Background(), EarningInput{
		Actor:       testActor,
		ProjectID:   &projectID,
		Amount:      dec("200.00"),
		Description: "egg sales",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := fx.repo.updates[1].Sequence; got != 2 {
		t.Fatalf("expected sequence 2, got %d", got)
	}
	if got := fx.repo.projects[project.ID].TotalEarnings; !got.Equal(dec("200.00")) {
		t.Fatalf("expected total earnings 200.00, got %s", got)
	}
}

func TestGeneralExpenseRefusesProjectFund(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	fund := fx.repo.addFund(models.Fund{Name: "Poultry fund", Type: enums.FundTypeProject, Balance: dec("400.00")})
	fundID := fund.ID

	_, err := fx.svc.Expense(context.Background(), ExpenseInput{
		Actor:       testActor,
		FundID:      &fundID,
		Amount:      dec("10.00"),
		Description: "misc",
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestTransferWritesPairedTransactions(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	fundA := fx.repo.addFund(models.Fund{Name: "A", Balance: dec("1000.00")})
	fundB := fx.repo.addFund(models.Fund{Name: "B", Balance: dec("0.00")})

	result, err := fx.svc.Transfer(context.Background(), TransferInput{
		Actor:        testActor,
		SourceFundID: fundA.ID,
		TargetFundID: fundB.ID,
		Amount:       dec("400.00"),
		Description:  "seed capital",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := fx.repo.funds[fundA.ID].Balance; !got.Equal(dec("600.00")) {
		t.Fatalf("expected source balance 600.00, got %s", got)
	}
	if got := fx.repo.funds[fundB.ID].Balance; !got.Equal(dec("400.00")) {
		t.Fatalf("expected target balance 400.00, got %s", got)
	}
	if result.Outflow.Type != enums.TransactionTypeWithdrawal {
		t.Fatalf("expected withdrawal on source, got %s", result.Outflow.Type)
	}
	if result.Inflow.Type != enums.TransactionTypeInvestment {
		t.Fatalf("expected investment on target, got %s", result.Inflow.Type)
	}
	if result.Outflow.Reference == "" || result.Outflow.Reference != result.Inflow.Reference {
		t.Fatalf("legs must share a reference: %q vs %q", result.Outflow.Reference, result.Inflow.Reference)
	}
	if len(fx.repo.txns) != 2 {
		t.Fatalf("expected two transactions, got %d", len(fx.repo.txns))
	}
}

func TestTransferRejectsSameFund(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	fund := fx.repo.addFund(models.Fund{Name: "A", Balance: dec("100.00")})

	_, err := fx.svc.Transfer(context.Background(), TransferInput{
		Actor:        testActor,
		SourceFundID: fund.ID,
		TargetFundID: fund.ID,
		Amount:       dec("10.00"),
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestTransferInsufficientSourceBalance(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	fundA := fx.repo.addFund(models.Fund{Name: "A", Balance: dec("100.00")})
	fundB := fx.repo.addFund(models.Fund{Name: "B", Balance: dec("0.00")})

	_, err := fx.svc.Transfer(context.Background(), TransferInput{
		Actor:        testActor,
		SourceFundID: fundA.ID,
		TargetFundID: fundB.ID,
		Amount:       dec("100.01"),
	})
	assertCode(t, err, pkgerrors.CodeInsufficientFunds)

	if got := fx.repo.funds[fundA.ID].Balance; !got.Equal(dec("100.00")) {
		t.Fatalf("source must be untouched, got %s", got)
	}
}

func TestDividendDistributionTruncatesPerMember(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	pool := fx.repo.addFund(models.Fund{Name: "Dividend pool", Balance: dec("100.00")})
	poolID := pool.ID
	a := fx.repo.addMember(models.Member{Name: "A", Shares: 10})
	b := fx.repo.addMember(models.Member{Name: "B", Shares: 20})
	c := fx.repo.addMember(models.Member{Name: "C", Shares: 30})

	result, err := fx.svc.DistributeDividends(context.Background(), DividendInput{
		Actor:       testActor,
		FundID:      &poolID,
		Amount:      dec("100.00"),
		Description: "annual dividend",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Recipients != 3 || len(result.Transactions) != 3 {
		t.Fatalf("expected three recipients, got %d", result.Recipients)
	}
	if !result.TotalDisbursed.Equal(dec("99.99")) {
		t.Fatalf("expected total disbursed 99.99, got %s", result.TotalDisbursed)
	}
	if !result.Residual.Equal(dec("0.01")) {
		t.Fatalf("expected residual 0.01, got %s", result.Residual)
	}
	if got := fx.repo.funds[pool.ID].Balance; !got.Equal(dec("0.01")) {
		t.Fatalf("pool must be debited by the disbursed total only, got %s", got)
	}

	expected := map[uuid.UUID]decimal.Decimal{
		a.ID: dec("16.66"),
		b.ID: dec("33.33"),
		c.ID: dec("50.00"),
	}
	for _, txn := range result.Transactions {
		want := expected[*txn.MemberID]
		if !txn.Amount.Equal(want) {
			t.Fatalf("expected reward %s for member %s, got %s", want, txn.MemberID, txn.Amount)
		}
		if txn.Reference != result.Reference {
			t.Fatalf("rewards must share the batch reference")
		}
	}
}

func TestDividendWithoutShareholders(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	pool := fx.repo.addFund(models.Fund{Name: "Pool", Balance: dec("100.00")})
	poolID := pool.ID
	fx.repo.addMember(models.Member{Name: "A", Shares: 0})
	fx.repo.addMember(models.Member{Name: "B", Shares: 10, Status: enums.MemberStatusSuspended})

	_, err := fx.svc.DistributeDividends(context.Background(), DividendInput{
		Actor:  testActor,
		FundID: &poolID,
		Amount: dec("100.00"),
	})
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestDividendInsufficientPoolBalance(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	pool := fx.repo.addFund(models.Fund{Name: "Pool", Balance: dec("50.00")})
	poolID := pool.ID
	fx.repo.addMember(models.Member{Name: "A", Shares: 10})

	_, err := fx.svc.DistributeDividends(context.Background(), DividendInput{
		Actor:  testActor,
		FundID: &poolID,
		Amount: dec("100.00"),
	})
	assertCode(t, err, pkgerrors.CodeInsufficientFunds)

	if got := fx.repo.funds[pool.ID].Balance; !got.Equal(dec("50.00")) {
		t.Fatalf("pool must be untouched, got %s", got)
	}
}

func TestDividendTooSmallToDistribute(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	pool := fx.repo.addFund(models.Fund{Name: "Pool", Balance: dec("100.00")})
	poolID := pool.ID
	fx.repo.addMember(models.Member{Name: "A", Shares: 4})
	fx.repo.addMember(models.Member{Name: "B", Shares: 6})

	// 0.001 over 10 shares truncates every reward to zero
	_, err := fx.svc.DistributeDividends(context.Background(), DividendInput{
		Actor:  testActor,
		FundID: &poolID,
		Amount: dec("0.001"),
	})
	assertCode(t, err, pkgerrors.CodeValidation)

	if got := fx.repo.funds[pool.ID].Balance; !got.Equal(dec("100.00")) {
		t.Fatalf("pool must be untouched, got %s", got)
	}
}

func TestEquityTransferIsZeroSum(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	source := fx.repo.addMember(models.Member{Name: "Founder", Shares: 30, TotalContributed: dec("300.00")})
	target := fx.repo.addMember(models.Member{Name: "Heir", Shares: 5, TotalContributed: dec("50.00")})

	result, err := fx.svc.TransferEquity(context.Background(), EquityTransferInput{
		Actor:          testActor,
		SourceMemberID: source.ID,
		Allocations: []EquityAllocation{
			{TargetMemberID: target.ID, Amount: dec("100.00"), Shares: 10},
		},
		Description: "succession",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updatedSource := fx.repo.members[source.ID]
	updatedTarget := fx.repo.members[target.ID]
	if !updatedSource.TotalContributed.Equal(dec("200.00")) || updatedSource.Shares != 20 {
		t.Fatalf("unexpected source holdings: %s / %d", updatedSource.TotalContributed, updatedSource.Shares)
	}
	if !updatedTarget.TotalContributed.Equal(dec("150.00")) || updatedTarget.Shares != 15 {
		t.Fatalf("unexpected target holdings: %s / %d", updatedTarget.TotalContributed, updatedTarget.Shares)
	}
	if updatedSource.Status != enums.MemberStatusActive {
		t.Fatalf("partial transfer must not deactivate the source")
	}
	if result.SourceDeactivated {
		t.Fatalf("partial transfer must not report deactivation")
	}
	if len(result.TargetTransactions) != 1 || result.SourceTransaction == nil {
		t.Fatalf("expected one target and one source transaction")
	}
	if result.SourceTransaction.Reference != result.TargetTransactions[0].Reference {
		t.Fatalf("batch must share a reference")
	}
}

func TestEquityTransferDeactivatesEmptiedSource(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	source := fx.repo.addMember(models.Member{Name: "Founder", Shares: 10, TotalContributed: dec("100.00")})
	target := fx.repo.addMember(models.Member{Name: "Heir"})

	result, err := fx.svc.TransferEquity(context.Background(), EquityTransferInput{
		Actor:          testActor,
		SourceMemberID: source.ID,
		Allocations: []EquityAllocation{
			{TargetMemberID: target.ID, Amount: dec("100.00"), Shares: 10},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.SourceDeactivated {
		t.Fatalf("expected source deactivation")
	}
	if got := fx.repo.members[source.ID].Status; got != enums.MemberStatusInactive {
		t.Fatalf("expected inactive source, got %s", got)
	}
}

func TestEquityTransferRejectsOverdraw(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	source := fx.repo.addMember(models.Member{Name: "Founder", Shares: 5, TotalContributed: dec("100.00")})
	target := fx.repo.addMember(models.Member{Name: "Heir"})

	_, err := fx.svc.TransferEquity(context.Background(), EquityTransferInput{
		Actor:          testActor,
		SourceMemberID: source.ID,
		Allocations: []EquityAllocation{
			{TargetMemberID: target.ID, Amount: dec("10.00"), Shares: 6},
		},
	})
	assertCode(t, err, pkgerrors.CodeStateConflict)

	if got := fx.repo.members[source.ID].Shares; got != 5 {
		t.Fatalf("source shares must be untouched, got %d", got)
	}
}

func TestEquityTransferRejectsSelfTarget(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	source := fx.repo.addMember(models.Member{Name: "Founder", Shares: 5, TotalContributed: dec("100.00")})

	_, err := fx.svc.TransferEquity(context.Background(), EquityTransferInput{
		Actor:          testActor,
		SourceMemberID: source.ID,
		Allocations: []EquityAllocation{
			{TargetMemberID: source.ID, Amount: dec("10.00"), Shares: 1},
		},
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestEquityTransferRejectsSuspendedTarget(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	source := fx.repo.addMember(models.Member{Name: "Founder", Shares: 10, TotalContributed: dec("100.00")})
	target := fx.repo.addMember(models.Member{Name: "Heir", Status: enums.MemberStatusSuspended})

	_, err := fx.svc.TransferEquity(context.Background(), EquityTransferInput{
		Actor:          testActor,
		SourceMemberID: source.ID,
		Allocations: []EquityAllocation{
			{TargetMemberID: target.ID, Amount: dec("50.00"), Shares: 5},
		},
	})
	assertCode(t, err, pkgerrors.CodeStateConflict)

	kept := fx.repo.members[source.ID]
	if kept.Shares != 10 || !kept.TotalContributed.Equal(dec("100.00")) {
		t.Fatalf("source holdings must be untouched, got %s / %d", kept.TotalContributed, kept.Shares)
	}
	if got := fx.repo.members[target.ID].Shares; got != 0 {
		t.Fatalf("suspended target must receive nothing, got %d shares", got)
	}
}

func TestDeleteCompletedDepositRestoresBalances(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	fund := fx.repo.addFund(models.Fund{Name: "General", Balance: dec("500.00")})
	member := fx.repo.addMember(models.Member{Name: "Amina", Shares: 7, TotalContributed: dec("200.00")})

	txn, err := fx.svc.Deposit(context.Background(), DepositInput{
		Actor:    testActor,
		MemberID: member.ID,
		FundID:   fund.ID,
		Amount:   dec("150.00"),
		Method:   enums.DepositMethodCash,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = fx.svc.DeleteTransaction(context.Background(), DeleteTransactionInput{
		Actor:         testActor,
		TransactionID: txn.ID,
		Reason:        "duplicate entry",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := fx.repo.funds[fund.ID].Balance; !got.Equal(dec("500.00")) {
		t.Fatalf("fund must return to its pre-apply value, got %s", got)
	}
	restored := fx.repo.members[member.ID]
	if !restored.TotalContributed.Equal(dec("200.00")) {
		t.Fatalf("contribution must be restored, got %s", restored.TotalContributed)
	}
	if restored.Shares != 7 {
		t.Fatalf("deletion must never touch shares, got %d", restored.Shares)
	}
	if _, ok := fx.repo.txns[txn.ID]; ok {
		t.Fatalf("transaction must be removed")
	}
	if len(fx.archive.inputs) != 1 {
		t.Fatalf("expected one archived snapshot, got %d", len(fx.archive.inputs))
	}
	if fx.archive.inputs[0].OriginalID != txn.ID || fx.archive.inputs[0].Reason != "duplicate entry" {
		t.Fatalf("unexpected archive input: %+v", fx.archive.inputs[0])
	}
}

func TestDeleteProjectExpenseRestoresTotals(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	fund := fx.repo.addFund(models.Fund{Name: "Poultry fund", Type: enums.FundTypeProject, Balance: dec("400.00")})
	project := fx.repo.addProject(models.Project{Title: "Poultry", FundID: fund.ID, CurrentFundBalance: dec("400.00")})
	fund.ProjectID = &project.ID
	fx.repo.funds[fund.ID] = fund
	projectID := project.ID

	txn, err := fx.svc.Expense(context.Background(), ExpenseInput{
		Actor:       testActor,
		ProjectID:   &projectID,
		Amount:      dec("120.00"),
		Description: "feed",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = fx.svc.DeleteTransaction(context.Background(), DeleteTransactionInput{
		Actor:         testActor,
		TransactionID: txn.ID,
		Reason:        "entered twice",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := fx.repo.funds[fund.ID].Balance; !got.Equal(dec("400.00")) {
		t.Fatalf("fund must be restored, got %s", got)
	}
	restored := fx.repo.projects[project.ID]
	if !restored.CurrentFundBalance.Equal(dec("400.00")) {
		t.Fatalf("mirrored balance must be restored, got %s", restored.CurrentFundBalance)
	}
	if !restored.TotalExpenses.Equal(dec("0.00")) {
		t.Fatalf("total expenses must be restored, got %s", restored.TotalExpenses)
	}
}

func TestDeletePendingTransactionSkipsReversal(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	fund := fx.repo.addFund(models.Fund{Name: "General", Balance: dec("500.00")})
	member := fx.repo.addMember(models.Member{Name: "Amina"})

	txn, err := fx.svc.Deposit(context.Background(), DepositInput{
		Actor:    testActor,
		MemberID: member.ID,
		FundID:   fund.ID,
		Amount:   dec("75.00"),
		Status:   enums.TransactionStatusPending,
		Method:   enums.DepositMethodCash,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = fx.svc.DeleteTransaction(context.Background(), DeleteTransactionInput{
		Actor:         testActor,
		TransactionID: txn.ID,
		Reason:        "withdrawn by member",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := fx.repo.funds[fund.ID].Balance; !got.Equal(dec("500.00")) {
		t.Fatalf("pending deletion must not move the balance, got %s", got)
	}
	if len(fx.archive.inputs) != 1 {
		t.Fatalf("pending deletions are archived too, got %d", len(fx.archive.inputs))
	}
}

func TestDeleteEquityTransferRefused(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	source := fx.repo.addMember(models.Member{Name: "Founder", Shares: 10, TotalContributed: dec("100.00")})
	target := fx.repo.addMember(models.Member{Name: "Heir"})

	result, err := fx.svc.TransferEquity(context.Background(), EquityTransferInput{
		Actor:          testActor,
		SourceMemberID: source.ID,
		Allocations: []EquityAllocation{
			{TargetMemberID: target.ID, Amount: dec("50.00"), Shares: 5},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = fx.svc.DeleteTransaction(context.Background(), DeleteTransactionInput{
		Actor:         testActor,
		TransactionID: result.SourceTransaction.ID,
		Reason:        "mistake",
	})
	assertCode(t, err, pkgerrors.CodeStateConflict)

	if _, ok := fx.repo.txns[result.SourceTransaction.ID]; !ok {
		t.Fatalf("refused deletion must keep the transaction")
	}
}

func TestReconcileFundVerifiesMatchingHistory(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	fund := fx.repo.addFund(models.Fund{Name: "General", Balance: dec("0.00")})
	member := fx.repo.addMember(models.Member{Name: "Amina"})
	fundID := fund.ID

	if _, err := fx.svc.Deposit(context.Background(), DepositInput{
		Actor:    testActor,
		MemberID: member.ID,
		FundID:   fund.ID,
		Amount:   dec("300.00"),
		Method:   enums.DepositMethodCash,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := fx.svc.Expense(context.Background(), ExpenseInput{
		Actor:       testActor,
		FundID:      &fundID,
		Amount:      dec("80.00"),
		Description: "rent",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, err := fx.svc.ReconcileFund(context.Background(), ReconcileFundInput{Actor: testActor, FundID: fund.ID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Status != enums.ReconciliationStatusVerified {
		t.Fatalf("expected verified, got %s (delta %s)", first.Status, first.Delta)
	}
	if !first.TotalIn.Equal(dec("300.00")) || !first.TotalOut.Equal(dec("80.00")) {
		t.Fatalf("unexpected flows: in %s out %s", first.TotalIn, first.TotalOut)
	}
	if !first.CalculatedBalance.Equal(dec("220.00")) {
		t.Fatalf("expected calculated balance 220.00, got %s", first.CalculatedBalance)
	}

	// Idempotent and read-only.
	second, err := fx.svc.ReconcileFund(context.Background(), ReconcileFundInput{Actor: testActor, FundID: fund.ID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !second.CalculatedBalance.Equal(first.CalculatedBalance) {
		t.Fatalf("reconciliation must be idempotent")
	}
	if got := fx.repo.funds[fund.ID].Balance; !got.Equal(dec("220.00")) {
		t.Fatalf("reconciliation must never change the balance, got %s", got)
	}
}

func TestReconcileFundFlagsDiscrepancy(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	// Balance drifted from an empty history by more than the epsilon.
	fund := fx.repo.addFund(models.Fund{Name: "General", Balance: dec("5.00")})

	result, err := fx.svc.ReconcileFund(context.Background(), ReconcileFundInput{Actor: testActor, FundID: fund.ID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != enums.ReconciliationStatusDiscrepant {
		t.Fatalf("expected discrepant, got %s", result.Status)
	}
	if !result.Delta.Equal(dec("5.00")) {
		t.Fatalf("expected delta 5.00, got %s", result.Delta)
	}
	if got := fx.repo.funds[fund.ID].ReconciliationStatus; got != enums.ReconciliationStatusDiscrepant {
		t.Fatalf("status must be stamped on the fund, got %s", got)
	}
	if fx.repo.funds[fund.ID].ReconciledAt == nil {
		t.Fatalf("reconciled_at must be stamped")
	}
}

func TestOperationsRequireActor(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	_, err := fx.svc.Deposit(context.Background(), DepositInput{
		MemberID: uuid.New(),
		FundID:   uuid.New(),
		Amount:   dec("10.00"),
		Method:   enums.DepositMethodCash,
	})
	assertCode(t, err, pkgerrors.CodeUnauthorized)
}
