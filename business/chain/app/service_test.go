package app_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/meridianfi/arbengine/business/chain/app"
	"github.com/meridianfi/arbengine/business/chain/domain"
)

type fakeSubscriber struct {
	block *domain.Block
	state domain.ConnectionState
	ch    chan *domain.Block
}

func (f *fakeSubscriber) Subscribe(ctx context.Context) (<-chan *domain.Block, error) {
	return f.ch, nil
}
func (f *fakeSubscriber) LatestBlock(ctx context.Context) (*domain.Block, error) {
	return f.block, nil
}
func (f *fakeSubscriber) State() domain.ConnectionState {
	return f.state
}

type fakeGasOracle struct {
	price *domain.GasPrice
}

func (f *fakeGasOracle) GetGasPrice(ctx context.Context) (*domain.GasPrice, error) {
	return f.price, nil
}
func (f *fakeGasOracle) GetGasTipCap(ctx context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}
func (f *fakeGasOracle) EstimateGas(ctx context.Context, data []byte, to string) (uint64, error) {
	return 21000, nil
}

func TestBlockchainService_DelegatesToSubscriberAndOracle(t *testing.T) {
	ctx := context.Background()
	block := &domain.Block{Number: 42}
	sub := &fakeSubscriber{block: block, state: domain.StateConnected, ch: make(chan *domain.Block, 1)}
	oracle := &fakeGasOracle{price: domain.NewGasPrice(big.NewInt(30_000_000_000))}

	svc := app.NewBlockchainService(sub, oracle)

	if got := svc.ConnectionState(); got != domain.StateConnected {
		t.Errorf("expected connected, got %s", got)
	}

	price, err := svc.GetGasPrice(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if price.PricePerUnit.Raw().Cmp(big.NewInt(30_000_000_000)) != 0 {
		t.Errorf("expected 30 gwei, got %s", price.PricePerUnit.Raw().String())
	}

	blockCh, err := svc.SubscribeBlocks(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if blockCh != sub.ch {
		t.Error("expected SubscribeBlocks to return the subscriber's own channel")
	}
}
