package escrow

import (
	"context"
	"errors"
	"testing"
	"time"

	"kolo/internal/ledger"
	"kolo/internal/models"
	"kolo/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePendingRepo struct {
	byID        map[string]*models.PendingTransfer
	byToken     map[string]*models.PendingTransfer
	createErrs  []error // consumed per Create call
	claimErr    error
	reopened    []string
	expired     []models.PendingTransfer
	expireErr   error
	createCount int
}

func newFakePendingRepo() *fakePendingRepo {
	return &fakePendingRepo{
		byID:    make(map[string]*models.PendingTransfer),
		byToken: make(map[string]*models.PendingTransfer),
	}
}

func (f *fakePendingRepo) Create(ctx context.Context, p *models.PendingTransfer) error {
	f.createCount++
	if len(f.createErrs) > 0 {
		err := f.createErrs[0]
		f.createErrs = f.createErrs[1:]
		if err != nil {
			return err
		}
	}
	f.byID[p.ID] = p
	f.byToken[p.ClaimToken] = p
	return nil
}

func (f *fakePendingRepo) GetByID(ctx context.Context, id string) (*models.PendingTransfer, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, repositories.ErrPendingNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePendingRepo) GetByClaimToken(ctx context.Context, token string) (*models.PendingTransfer, error) {
	p, ok := f.byToken[token]
	if !ok {
		return nil, repositories.ErrPendingNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePendingRepo) Claim(ctx context.Context, id string, claimantID uint, ledgerTxRef string, at time.Time) error {
	if f.claimErr != nil {
		return f.claimErr
	}
	p := f.byID[id]
	if p.Status != models.PendingStatusClaimable {
		return repositories.ErrPendingAlreadySettled
	}
	p.Status = models.PendingStatusClaimed
	p.ClaimedByID = &claimantID
	p.ClaimedAt = &at
	if ledgerTxRef != "" {
		p.LedgerTxRef = &ledgerTxRef
	}
	return nil
}

func (f *fakePendingRepo) Reopen(ctx context.Context, id string) error {
	p := f.byID[id]
	if p.Status == models.PendingStatusClaimed && p.LedgerTxRef == nil {
		p.Status = models.PendingStatusClaimable
		p.ClaimedByID = nil
		p.ClaimedAt = nil
	}
	f.reopened = append(f.reopened, id)
	return nil
}

func (f *fakePendingRepo) SetLedgerTxRef(ctx context.Context, id, ledgerTxRef string) error {
	f.byID[id].LedgerTxRef = &ledgerTxRef
	return nil
}

func (f *fakePendingRepo) ExpireDue(ctx context.Context, now time.Time) ([]models.PendingTransfer, error) {
	if f.expireErr != nil {
		return nil, f.expireErr
	}
	out := f.expired
	// A second sweep finds nothing newly transitioned.
	f.expired = nil
	return out, nil
}

func (f *fakePendingRepo) ListBySender(ctx context.Context, senderID uint, limit, offset int) ([]models.PendingTransfer, error) {
	return nil, nil
}

type fakeUserRepo struct {
	users map[uint]*models.User
}

func (f *fakeUserRepo) Create(u *models.User) error                   { return nil }
func (f *fakeUserRepo) Update(u *models.User) error                   { return nil }
func (f *fakeUserRepo) IncrementTokenVersion(userID uint) error       { return nil }
func (f *fakeUserRepo) UpdateStatus(userID uint, status string) error { return nil }
func (f *fakeUserRepo) GetByEmail(email string) (*models.User, error) {
	return nil, repositories.ErrUserNotFound
}
func (f *fakeUserRepo) GetByPhone(phone string) (*models.User, error) {
	return nil, repositories.ErrUserNotFound
}
func (f *fakeUserRepo) GetByUsername(username string) (*models.User, error) {
	return nil, repositories.ErrUserNotFound
}
func (f *fakeUserRepo) GetByWalletAddress(address string) (*models.User, error) {
	return nil, repositories.ErrUserNotFound
}
func (f *fakeUserRepo) GetByID(id uint) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return u, nil
}

type fakeSettler struct {
	txRef string
	err   error
	calls int
}

func (f *fakeSettler) Settle(ctx context.Context, senderWallet, recipientWallet string, ledgerAmount int64) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.txRef, nil
}

type fakeNotifier struct {
	created int
	claimed int
	expired int
}

func (f *fakeNotifier) EscrowCreated(ctx context.Context, sender *models.User, p *models.PendingTransfer) {
	f.created++
}
func (f *fakeNotifier) EscrowClaimed(ctx context.Context, p *models.PendingTransfer) { f.claimed++ }
func (f *fakeNotifier) EscrowExpired(ctx context.Context, p *models.PendingTransfer) { f.expired++ }

func member(id uint, wallet string) *models.User {
	u := &models.User{WalletAddress: wallet, Status: "active"}
	u.ID = id
	return u
}

func newService(repo *fakePendingRepo, users *fakeUserRepo, settler *fakeSettler, notifier *fakeNotifier) Service {
	return NewService(repo, users, settler, notifier, 7*24*time.Hour)
}

func TestCreate_GeneratesUniqueClaimToken(t *testing.T) {
	repo := newFakePendingRepo()
	svc := newService(repo, &fakeUserRepo{}, &fakeSettler{}, &fakeNotifier{})

	p1, err := svc.Create(context.Background(), member(1, "0xa"), "+15550001111", 20, models.FundingSourceBalance, nil, "rent")
	require.NoError(t, err)
	p2, err := svc.Create(context.Background(), member(1, "0xa"), "+15550002222", 30, models.FundingSourceBalance, nil, "")
	require.NoError(t, err)

	assert.NotEmpty(t, p1.ClaimToken)
	assert.NotEqual(t, p1.ClaimToken, p2.ClaimToken)
	assert.Equal(t, models.PendingStatusClaimable, p1.Status)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), p1.ExpiresAt, time.Minute)
}

func TestCreate_RetriesOnTokenCollision(t *testing.T) {
	repo := newFakePendingRepo()
	repo.createErrs = []error{repositories.ErrDuplicateClaimToken}
	notifier := &fakeNotifier{}
	svc := newService(repo, &fakeUserRepo{}, &fakeSettler{}, notifier)

	p, err := svc.Create(context.Background(), member(1, "0xa"), "+15550001111", 20, models.FundingSourceBalance, nil, "")
	require.NoError(t, err)
	assert.NotNil(t, p)
	assert.Equal(t, 2, repo.createCount)
	assert.Equal(t, 1, notifier.created)
}

func claimableFixture(repo *fakePendingRepo) *models.PendingTransfer {
	p := &models.PendingTransfer{
		ID:               "pt_1",
		SenderID:         1,
		RecipientContact: "+15550001111",
		AmountRequested:  20,
		FundingSource:    models.FundingSourceBalance,
		ClaimToken:       "tok_1",
		Status:           models.PendingStatusClaimable,
		ExpiresAt:        time.Now().Add(24 * time.Hour),
	}
	repo.byID[p.ID] = p
	repo.byToken[p.ClaimToken] = p
	return p
}

func TestClaim_SettlesToClaimant(t *testing.T) {
	repo := newFakePendingRepo()
	claimableFixture(repo)
	users := &fakeUserRepo{users: map[uint]*models.User{1: member(1, "0xsender")}}
	settler := &fakeSettler{txRef: "ledger_tx_9"}
	notifier := &fakeNotifier{}
	svc := newService(repo, users, settler, notifier)

	claimed, err := svc.Claim(context.Background(), "tok_1", member(2, "0xclaimant"))
	require.NoError(t, err)

	assert.Equal(t, models.PendingStatusClaimed, claimed.Status)
	require.NotNil(t, claimed.ClaimedByID)
	assert.Equal(t, uint(2), *claimed.ClaimedByID)
	require.NotNil(t, claimed.LedgerTxRef)
	assert.Equal(t, "ledger_tx_9", *claimed.LedgerTxRef)
	assert.Equal(t, 1, settler.calls)
	assert.Equal(t, 1, notifier.claimed)
}

func TestClaim_SingleUse(t *testing.T) {
	repo := newFakePendingRepo()
	claimableFixture(repo)
	users := &fakeUserRepo{users: map[uint]*models.User{1: member(1, "0xsender")}}
	settler := &fakeSettler{txRef: "ledger_tx_9"}
	svc := newService(repo, users, settler, &fakeNotifier{})

	_, err := svc.Claim(context.Background(), "tok_1", member(2, "0xclaimant"))
	require.NoError(t, err)

	_, err = svc.Claim(context.Background(), "tok_1", member(3, "0xother"))
	assert.ErrorIs(t, err, ErrAlreadyClaimed)
	assert.Equal(t, 1, settler.calls, "second claim must never reach settlement")
}

func TestClaim_RaceLoserNeverSettles(t *testing.T) {
	repo := newFakePendingRepo()
	claimableFixture(repo)
	repo.claimErr = repositories.ErrPendingAlreadySettled
	users := &fakeUserRepo{users: map[uint]*models.User{1: member(1, "0xsender")}}
	settler := &fakeSettler{txRef: "ledger_tx_9"}
	svc := newService(repo, users, settler, &fakeNotifier{})

	_, err := svc.Claim(context.Background(), "tok_1", member(2, "0xclaimant"))
	assert.ErrorIs(t, err, ErrAlreadyClaimed)
	assert.Equal(t, 0, settler.calls)
}

func TestClaim_Errors(t *testing.T) {
	users := &fakeUserRepo{users: map[uint]*models.User{1: member(1, "0xsender")}}

	t.Run("unknown token", func(t *testing.T) {
		repo := newFakePendingRepo()
		svc := newService(repo, users, &fakeSettler{}, &fakeNotifier{})
		_, err := svc.Claim(context.Background(), "nope", member(2, "0xb"))
		assert.ErrorIs(t, err, ErrTokenNotFound)
	})

	t.Run("expired window", func(t *testing.T) {
		repo := newFakePendingRepo()
		p := claimableFixture(repo)
		p.ExpiresAt = time.Now().Add(-time.Hour)
		svc := newService(repo, users, &fakeSettler{}, &fakeNotifier{})
		_, err := svc.Claim(context.Background(), "tok_1", member(2, "0xb"))
		assert.ErrorIs(t, err, ErrEscrowExpired)
	})

	t.Run("already swept", func(t *testing.T) {
		repo := newFakePendingRepo()
		p := claimableFixture(repo)
		p.Status = models.PendingStatusExpired
		svc := newService(repo, users, &fakeSettler{}, &fakeNotifier{})
		_, err := svc.Claim(context.Background(), "tok_1", member(2, "0xb"))
		assert.ErrorIs(t, err, ErrEscrowExpired)
	})

	t.Run("sender claiming own transfer", func(t *testing.T) {
		repo := newFakePendingRepo()
		claimableFixture(repo)
		svc := newService(repo, users, &fakeSettler{}, &fakeNotifier{})
		_, err := svc.Claim(context.Background(), "tok_1", member(1, "0xsender"))
		assert.ErrorIs(t, err, ErrClaimantIsSender)
	})
}

func TestClaim_CleanSettlementFailureReopens(t *testing.T) {
	repo := newFakePendingRepo()
	claimableFixture(repo)
	users := &fakeUserRepo{users: map[uint]*models.User{1: member(1, "0xsender")}}
	settler := &fakeSettler{err: ledger.ErrSettlementRejected}
	svc := newService(repo, users, settler, &fakeNotifier{})

	_, err := svc.Claim(context.Background(), "tok_1", member(2, "0xclaimant"))
	require.Error(t, err)
	assert.Contains(t, repo.reopened, "pt_1")
	assert.Equal(t, models.PendingStatusClaimable, repo.byID["pt_1"].Status)
}

func TestClaim_AmbiguousSettlementStaysClaimed(t *testing.T) {
	repo := newFakePendingRepo()
	claimableFixture(repo)
	users := &fakeUserRepo{users: map[uint]*models.User{1: member(1, "0xsender")}}
	settler := &fakeSettler{err: ledger.ErrSettlementAmbiguous}
	svc := newService(repo, users, settler, &fakeNotifier{})

	_, err := svc.Claim(context.Background(), "tok_1", member(2, "0xclaimant"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrSettlementAmbiguous)
	assert.Empty(t, repo.reopened, "ambiguous outcome must not reopen the escrow")
	assert.Equal(t, models.PendingStatusClaimed, repo.byID["pt_1"].Status)
}

func TestSweep_NotifiesOncePerExpiredRow(t *testing.T) {
	repo := newFakePendingRepo()
	repo.expired = []models.PendingTransfer{
		{ID: "pt_1", SenderID: 1, Status: models.PendingStatusExpired},
		{ID: "pt_2", SenderID: 2, Status: models.PendingStatusExpired},
	}
	notifier := &fakeNotifier{}
	svc := newService(repo, &fakeUserRepo{}, &fakeSettler{}, notifier)

	n, err := svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, notifier.expired)

	// A second sweep transitions nothing and stays silent.
	n, err = svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 2, notifier.expired)
}

func TestSweep_PropagatesRepositoryError(t *testing.T) {
	repo := newFakePendingRepo()
	repo.expireErr = errors.New("db down")
	svc := newService(repo, &fakeUserRepo{}, &fakeSettler{}, &fakeNotifier{})

	_, err := svc.Sweep(context.Background())
	assert.Error(t, err)
}
