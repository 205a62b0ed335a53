package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/inkpress/royalty-engine/rights"
	"github.com/inkpress/royalty-engine/store/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(id string) rights.AgreementRecord {
	return rights.AgreementRecord{
		ID:      id,
		Name:    "test deal",
		Advance: decimal.RequireFromString("1500"),
		Rights:  []rights.RightConfig{{Kind: rights.KindTradeVolume, Scale: "7-5000,8-10000,9-0"}},
	}
}

func stmt(id, agreementID string, date rights.Date, copies int) rights.StatementRecord {
	return rights.StatementRecord{
		ID:          id,
		AgreementID: agreementID,
		Date:        date,
		Kind:        rights.KindTradeVolume,
		Copies:      copies,
		Price:       decimal.RequireFromString("10.00"),
	}
}

func TestMemory_Agreements(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	require.NoError(t, store.SaveAgreement(ctx, record("a")))
	require.NoError(t, store.SaveAgreement(ctx, record("b")))

	assert.ErrorIs(t, store.SaveAgreement(ctx, record("a")), rights.ErrDuplicateAgreement)

	got, err := store.GetAgreement(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", got.ID)

	_, err = store.GetAgreement(ctx, "missing")
	assert.ErrorIs(t, err, rights.ErrAgreementNotFound)

	recs, err := store.ListAgreements(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "a", recs[0].ID)
	assert.Equal(t, "b", recs[1].ID)
}

func TestMemory_Statements_DateOrderedStable(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	require.NoError(t, store.SaveAgreement(ctx, record("a")))

	june := rights.NewDate(2016, time.June, 30)
	december := rights.NewDate(2016, time.December, 31)

	require.NoError(t, store.AppendStatement(ctx, stmt("s-dec", "a", december, 512)))
	require.NoError(t, store.AppendStatement(ctx, stmt("s-jun-1", "a", june, 143)))
	require.NoError(t, store.AppendStatement(ctx, stmt("s-jun-2", "a", june, 7)))

	recs, err := store.Statements(ctx, "a")
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "s-jun-1", recs[0].ID)
	assert.Equal(t, "s-jun-2", recs[1].ID, "same-date statements keep append order")
	assert.Equal(t, "s-dec", recs[2].ID)
}

func TestMemory_AppendStatements_Atomic(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	require.NoError(t, store.SaveAgreement(ctx, record("a")))

	june := rights.NewDate(2016, time.June, 30)
	require.NoError(t, store.AppendStatement(ctx, stmt("dup", "a", june, 1)))

	err := store.AppendStatements(ctx, []rights.StatementRecord{
		stmt("fresh", "a", june, 2),
		stmt("dup", "a", june, 3),
	})
	require.ErrorIs(t, err, rights.ErrDuplicateStatement)

	recs, err := store.Statements(ctx, "a")
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestMemory_AppendStatement_MissingAgreement(t *testing.T) {
	store := memory.New()
	err := store.AppendStatement(context.Background(),
		stmt("s", "missing", rights.NewDate(2016, time.June, 30), 1))
	assert.ErrorIs(t, err, rights.ErrAgreementNotFound)
}
