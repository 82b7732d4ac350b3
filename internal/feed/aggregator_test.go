package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/sellerdesk/payout-reconciler/internal/domain"
)

type fakeFeed struct {
	ops  map[string][]domain.SettlementOperation
	errs map[string]error
}

func (f *fakeFeed) FetchOperations(_ context.Context, orderID string, _, _ time.Time) ([]domain.SettlementOperation, error) {
	if err := f.errs[orderID]; err != nil {
		return nil, err
	}
	return f.ops[orderID], nil
}

func feedOp(id int64, typ domain.OperationType, day int) domain.SettlementOperation {
	return domain.SettlementOperation{
		ID:   id,
		Type: typ,
		Date: time.Date(2025, time.June, day, 0, 0, 0, 0, time.UTC),
	}
}

func TestParentOrderID(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"0087345-0412-2", "0087345-0412"},
		{"0087345-0412", "0087345"},
		{"87345", ""},
		{"ABC-12X", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParentOrderID(tt.in), tt.in)
	}
}

func TestCollectMergesParentOperations(t *testing.T) {
	f := &fakeFeed{ops: map[string][]domain.SettlementOperation{
		"0087345-0412-2": {feedOp(1, domain.OpDeliveredToCustomer, 10)},
		"0087345-0412":   {feedOp(2, domain.OpAgencyFee, 12)},
	}}
	a := NewAggregator(f, zap.NewNop())

	ops := a.Collect(context.Background(), "0087345-0412-2", time.Time{}, time.Now())

	assert.Len(t, ops, 2, "fee operations attached at the parent level are included")
}

func TestCollectDeduplicatesByOperationID(t *testing.T) {
	shared := feedOp(7, domain.OpAcquiringFee, 11)
	f := &fakeFeed{ops: map[string][]domain.SettlementOperation{
		"0087345-0412-2": {feedOp(1, domain.OpDeliveredToCustomer, 10), shared},
		"0087345-0412":   {shared},
	}}
	a := NewAggregator(f, zap.NewNop())

	ops := a.Collect(context.Background(), "0087345-0412-2", time.Time{}, time.Now())

	assert.Len(t, ops, 2, "an operation returned for both identifiers appears once")
}

func TestCollectSortsByDate(t *testing.T) {
	f := &fakeFeed{ops: map[string][]domain.SettlementOperation{
		"87345": {feedOp(2, domain.OpAgencyFee, 15), feedOp(1, domain.OpDeliveredToCustomer, 10)},
	}}
	a := NewAggregator(f, zap.NewNop())

	ops := a.Collect(context.Background(), "87345", time.Time{}, time.Now())

	assert.Equal(t, int64(1), ops[0].ID)
	assert.Equal(t, int64(2), ops[1].ID)
}

func TestCollectFeedFailureYieldsEmptyList(t *testing.T) {
	f := &fakeFeed{errs: map[string]error{"87345": errors.New("connection refused")}}
	a := NewAggregator(f, zap.NewNop())

	ops := a.Collect(context.Background(), "87345", time.Time{}, time.Now())

	assert.Empty(t, ops, "feed failure reads as data not yet available, not as an error")
}

func TestCollectPartialFeedFailureKeepsChildOps(t *testing.T) {
	f := &fakeFeed{
		ops:  map[string][]domain.SettlementOperation{"0087345-0412-2": {feedOp(1, domain.OpDeliveredToCustomer, 10)}},
		errs: map[string]error{"0087345-0412": errors.New("timeout")},
	}
	a := NewAggregator(f, zap.NewNop())

	ops := a.Collect(context.Background(), "0087345-0412-2", time.Time{}, time.Now())

	assert.Len(t, ops, 1, "a parent-level failure does not discard the child's operations")
}
