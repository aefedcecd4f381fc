package biz

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfsdasilva237/pipomarket-assistant/internal/ambassador/types"
	apperrors "github.com/nfsdasilva237/pipomarket-assistant/internal/pkg/errors"
	"github.com/nfsdasilva237/pipomarket-assistant/internal/pkg/logger"
)

type fakeRepo struct {
	codes    map[string]*types.InviteCode
	earnings []*types.Earning

	getCalls   int
	increments int
	created    []*types.Earning
}

func (r *fakeRepo) GetInviteCode(_ context.Context, code string) (*types.InviteCode, error) {
	r.getCalls++
	return r.codes[code], nil
}

func (r *fakeRepo) IncrementUses(_ context.Context, _ string) error {
	r.increments++
	return nil
}

func (r *fakeRepo) ListEarnings(_ context.Context, _ string) ([]*types.Earning, error) {
	return r.earnings, nil
}

func (r *fakeRepo) CreateEarning(_ context.Context, e *types.Earning) error {
	r.created = append(r.created, e)
	return nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "console", Output: "console"})
	require.NoError(t, err)
	return log
}

func TestValidateCodeFormat(t *testing.T) {
	valid := []string{"AMB-A23BC", "AMB-00000", "AMB-ZZZZZ"}
	for _, code := range valid {
		assert.True(t, ValidateCodeFormat(code), code)
	}

	invalid := []string{
		"",
		"AMB-abcde",
		"AMB-A23B",
		"AMB-A23BCD",
		"amb-A23BC",
		"XYZ-A23BC",
		" AMB-A23BC",
		"AMB-A23BC ",
		"AMB_A23BC",
	}
	for _, code := range invalid {
		assert.False(t, ValidateCodeFormat(code), code)
	}
}

// Malformed codes are rejected before the repository is ever consulted
func TestVerifyCodeFormatGate(t *testing.T) {
	repo := &fakeRepo{codes: map[string]*types.InviteCode{}}
	uc := NewAmbassadorUseCase(repo, testLogger(t))

	_, err := uc.VerifyCode(context.Background(), "amb-bad")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInviteCodeInvalid))
	assert.Zero(t, repo.getCalls)
}

func TestVerifyCode(t *testing.T) {
	repo := &fakeRepo{codes: map[string]*types.InviteCode{
		"AMB-OK123": {Code: "AMB-OK123", AmbassadorID: "a1", Active: true, Uses: 4},
		"AMB-OFF99": {Code: "AMB-OFF99", AmbassadorID: "a2", Active: false},
	}}
	uc := NewAmbassadorUseCase(repo, testLogger(t))
	ctx := context.Background()

	invite, err := uc.VerifyCode(ctx, "AMB-OK123")
	require.NoError(t, err)
	assert.Equal(t, "a1", invite.AmbassadorID)
	assert.Equal(t, 5, invite.Uses)
	assert.Equal(t, 1, repo.increments)

	_, err = uc.VerifyCode(ctx, "AMB-NOPE1")
	assert.True(t, apperrors.Is(err, apperrors.ErrInviteCodeNotFound))

	_, err = uc.VerifyCode(ctx, "AMB-OFF99")
	assert.True(t, apperrors.Is(err, apperrors.ErrInviteCodeInactive))
}

func TestEarningsSummary(t *testing.T) {
	repo := &fakeRepo{earnings: []*types.Earning{
		{Amount: 1000, Status: types.EarningPaid},
		{Amount: 2500, Status: types.EarningPending},
		{Amount: 500, Status: types.EarningPending},
	}}
	uc := NewAmbassadorUseCase(repo, testLogger(t))

	summary, err := uc.Earnings(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, 4000.0, summary.Total)
	assert.Equal(t, 3, summary.Count)
	assert.Equal(t, 1000.0, summary.Paid)
	assert.Equal(t, 3000.0, summary.Pending)
}

func TestRecordReferral(t *testing.T) {
	repo := &fakeRepo{codes: map[string]*types.InviteCode{
		"AMB-OK123": {Code: "AMB-OK123", AmbassadorID: "a1", Active: true},
	}}
	uc := NewAmbassadorUseCase(repo, testLogger(t))

	require.NoError(t, uc.RecordReferral(context.Background(), "AMB-OK123", 1500))
	require.Len(t, repo.created, 1)

	earning := repo.created[0]
	assert.Equal(t, "a1", earning.AmbassadorID)
	assert.Equal(t, 1500.0, earning.Amount)
	assert.Equal(t, types.SourceReferral, earning.Source)
	assert.Equal(t, types.EarningPending, earning.Status)
	assert.NotEmpty(t, earning.ID)
	assert.WithinDuration(t, time.Now(), earning.CreatedAt, time.Second)

	err := uc.RecordReferral(context.Background(), "AMB-GONE1", 1500)
	assert.True(t, apperrors.Is(err, apperrors.ErrInviteCodeNotFound))
}
