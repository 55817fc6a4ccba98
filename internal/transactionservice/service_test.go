package transactionservice

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	gomock "github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// memRepo keeps balances in memory and serializes updates like the row lock does.
type memRepo struct {
	mu       sync.Mutex
	balances map[int64]decimal.Decimal
}

func newMemRepo(balances map[int64]decimal.Decimal) *memRepo {
	return &memRepo{balances: balances}
}

func (r *memRepo) GetBalance(_ context.Context, number int64) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.balances[number]
	if !ok {
		return decimal.Zero, domain.ErrAccountNotFound
	}

	return b, nil
}

func (r *memRepo) UpdateBalance(ctx context.Context, number int64, fn domain.BalanceFunc) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.balances[number]
	if !ok {
		return decimal.Zero, domain.ErrAccountNotFound
	}

	next, err := fn(current)
	if err != nil {
		return decimal.Zero, err
	}

	if err := ctx.Err(); err != nil {
		return decimal.Zero, err
	}

	r.balances[number] = next

	return next, nil
}

// applyAt stubs UpdateBalance by running fn against current.
func applyAt(current string) func(context.Context, int64, domain.BalanceFunc) (decimal.Decimal, error) {
	return func(_ context.Context, _ int64, fn domain.BalanceFunc) (decimal.Decimal, error) {
		return fn(decimal.RequireFromString(current))
	}
}

func TestDeposit(t *testing.T) {
	t.Parallel()

	const number = int64(1)

	testCases := []struct {
		name       string
		amount     string
		buildStubs func(repo *MockRepo)
		want       string
		wantError  error
	}{
		{
			name:   "OK",
			amount: "50",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					UpdateBalance(gomock.Any(), number, gomock.Any()).
					Times(1).
					DoAndReturn(applyAt("100"))
			},
			want: "150",
		},
		{
			name:   "Cents",
			amount: "0.05",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					UpdateBalance(gomock.Any(), number, gomock.Any()).
					Times(1).
					DoAndReturn(applyAt("10.10"))
			},
			want: "10.15",
		},
		{
			name:   "Zero",
			amount: "0",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					UpdateBalance(gomock.Any(), number, gomock.Any()).
					Times(1).
					DoAndReturn(applyAt("100"))
			},
			want: "100",
		},
		{
			name:   "NegativeAmount",
			amount: "-1",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().UpdateBalance(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantError: domain.ErrNegativeAmount,
		},
		{
			name:   "SubCentAmount",
			amount: "1.005",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().UpdateBalance(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantError: domain.ErrInvalidAmount,
		},
		{
			name:   "AccountNotFound",
			amount: "10",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					UpdateBalance(gomock.Any(), number, gomock.Any()).
					Times(1).
					Return(decimal.Zero, domain.ErrAccountNotFound)
			},
			wantError: domain.ErrAccountNotFound,
		},
		{
			name:   "ExponentAmount",
			amount: "1e20",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().UpdateBalance(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantError: domain.ErrInvalidAmount,
		},
		{
			name:   "UpToBalanceLimit",
			amount: "0.01",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					UpdateBalance(gomock.Any(), number, gomock.Any()).
					Times(1).
					DoAndReturn(applyAt("9999999999999999.98"))
			},
			want: "9999999999999999.99",
		},
		{
			name:   "PastBalanceLimit",
			amount: "0.01",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					UpdateBalance(gomock.Any(), number, gomock.Any()).
					Times(1).
					DoAndReturn(applyAt("9999999999999999.99"))
			},
			wantError: domain.ErrBalanceLimit,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			service := New(repo, nil)

			tc.buildStubs(repo)

			got, err := service.Deposit(context.Background(), number, tc.amount)
			if tc.wantError != nil {
				require.ErrorIs(t, err, tc.wantError)
				return
			}

			require.NoError(t, err)
			require.True(t, decimal.RequireFromString(tc.want).Equal(got), "balance %v, want %v", got, tc.want)
		})
	}
}

func TestWithdraw(t *testing.T) {
	t.Parallel()

	const number = int64(1)

	testCases := []struct {
		name       string
		amount     string
		buildStubs func(repo *MockRepo)
		want       string
		wantError  error
	}{
		{
			name:   "OK",
			amount: "40.25",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					UpdateBalance(gomock.Any(), number, gomock.Any()).
					Times(1).
					DoAndReturn(applyAt("100"))
			},
			want: "59.75",
		},
		{
			name:   "WholeBalance",
			amount: "100",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					UpdateBalance(gomock.Any(), number, gomock.Any()).
					Times(1).
					DoAndReturn(applyAt("100"))
			},
			want: "0",
		},
		{
			name:   "InsufficientFunds",
			amount: "150",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					UpdateBalance(gomock.Any(), number, gomock.Any()).
					Times(1).
					DoAndReturn(applyAt("100"))
			},
			wantError: domain.ErrInsufficientFunds,
		},
		{
			name:   "InvalidAmount",
			amount: "abc",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().UpdateBalance(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantError: domain.ErrInvalidAmount,
		},
		{
			name:   "NegativeAmount",
			amount: "-0.01",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().UpdateBalance(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantError: domain.ErrNegativeAmount,
		},
		{
			name:   "StorageFailure",
			amount: "10",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					UpdateBalance(gomock.Any(), number, gomock.Any()).
					Times(1).
					Return(decimal.Zero, errorspkg.ErrInternal)
			},
			wantError: errorspkg.ErrInternal,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			service := New(repo, nil)

			tc.buildStubs(repo)

			got, err := service.Withdraw(context.Background(), number, tc.amount)
			if tc.wantError != nil {
				require.ErrorIs(t, err, tc.wantError)
				return
			}

			require.NoError(t, err)
			require.True(t, decimal.RequireFromString(tc.want).Equal(got), "balance %v, want %v", got, tc.want)
		})
	}
}

func TestCheckBalance(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := NewMockRepo(ctrl)
	service := New(repo, nil)

	want := decimal.RequireFromString("321.09")

	repo.EXPECT().GetBalance(gomock.Any(), int64(7)).Times(1).Return(want, nil)
	repo.EXPECT().GetBalance(gomock.Any(), int64(8)).Times(1).Return(decimal.Zero, domain.ErrAccountNotFound)

	got, err := service.CheckBalance(context.Background(), 7)
	require.NoError(t, err)
	require.True(t, want.Equal(got))

	_, err = service.CheckBalance(context.Background(), 8)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestScenario(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service := New(newMemRepo(map[int64]decimal.Decimal{1: decimal.NewFromInt(100)}), nil)

	_, err := service.Withdraw(ctx, 1, "150")
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	balance, err := service.CheckBalance(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "100", balance.String())

	balance, err = service.Deposit(ctx, 1, "50")
	require.NoError(t, err)
	require.Equal(t, "150", balance.String())

	balance, err = service.Withdraw(ctx, 1, "150")
	require.NoError(t, err)
	require.True(t, balance.IsZero())
}

func TestDepositThenWithdrawRestoresBalance(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	for _, x := range []string{"0", "0.01", "12.34", "999999.99"} {
		start := decimal.RequireFromString("73.21")
		service := New(newMemRepo(map[int64]decimal.Decimal{1: start}), nil)

		_, err := service.Deposit(ctx, 1, x)
		require.NoError(t, err)

		got, err := service.Withdraw(ctx, 1, x)
		require.NoError(t, err)
		require.True(t, start.Equal(got), "deposit then withdraw %v: balance %v, want %v", x, got, start)
	}
}

func TestConcurrentDeposits(t *testing.T) {
	t.Parallel()

	const n = 100

	repo := newMemRepo(map[int64]decimal.Decimal{1: decimal.NewFromInt(5)})
	service := New(repo, nil)

	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if _, err := service.Deposit(context.Background(), 1, "2.50"); err != nil {
				t.Errorf("service.Deposit() returned error: %v", err)
			}
		}()
	}

	wg.Wait()

	got, err := service.CheckBalance(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "255", got.String())
}

func TestWithdrawCancelled(t *testing.T) {
	t.Parallel()

	repo := newMemRepo(map[int64]decimal.Decimal{1: decimal.NewFromInt(100)})
	service := New(repo, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := service.Withdraw(ctx, 1, "10")
	require.True(t, errors.Is(err, context.Canceled))

	got, err := service.CheckBalance(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "100", got.String())
}

func TestHistory(t *testing.T) {
	entries := []domain.Entry{
		{ID: 3, AccountNumber: 1, Amount: decimal.NewFromInt(50)},
		{ID: 4, AccountNumber: 1, Amount: decimal.NewFromInt(-150)},
	}

	testCases := []struct {
		name       string
		pageID     int32
		pageSize   int32
		buildStubs func(er *MockEntryRepo)
		want       []domain.Entry
		wantErr    error
	}{
		{
			name:     "SecondPage",
			pageID:   2,
			pageSize: 2,
			buildStubs: func(er *MockEntryRepo) {
				er.EXPECT().List(gomock.Any(), int64(1), int32(2), int32(2)).Times(1).Return(entries, nil)
			},
			want: entries,
		},
		{
			name:     "FirstPage",
			pageID:   1,
			pageSize: 10,
			buildStubs: func(er *MockEntryRepo) {
				er.EXPECT().List(gomock.Any(), int64(1), int32(10), int32(0)).Times(1).Return([]domain.Entry{}, nil)
			},
			want: []domain.Entry{},
		},
		{
			name:     "ZeroPage",
			pageID:   0,
			pageSize: 10,
			buildStubs: func(er *MockEntryRepo) {
				er.EXPECT().List(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr: domain.ErrInvalidPage,
		},
		{
			name:     "ZeroPageSize",
			pageID:   1,
			pageSize: 0,
			buildStubs: func(er *MockEntryRepo) {
				er.EXPECT().List(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr: domain.ErrInvalidPage,
		},
		{
			name:     "OffsetOverflow",
			pageID:   math.MaxInt32,
			pageSize: 50,
			buildStubs: func(er *MockEntryRepo) {
				er.EXPECT().List(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr: domain.ErrInvalidPage,
		},
		{
			name:     "LastAddressablePage",
			pageID:   math.MaxInt32/50 + 1,
			pageSize: 50,
			buildStubs: func(er *MockEntryRepo) {
				er.EXPECT().
					List(gomock.Any(), int64(1), int32(50), int32(math.MaxInt32/50*50)).
					Times(1).
					Return([]domain.Entry{}, nil)
			},
			want: []domain.Entry{},
		},
		{
			name:     "RepoError",
			pageID:   1,
			pageSize: 5,
			buildStubs: func(er *MockEntryRepo) {
				er.EXPECT().List(gomock.Any(), int64(1), int32(5), int32(0)).Times(1).Return(nil, errorspkg.ErrInternal)
			},
			wantErr: errorspkg.ErrInternal,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			entryRepo := NewMockEntryRepo(ctrl)
			tc.buildStubs(entryRepo)

			service := New(NewMockRepo(ctrl), entryRepo)

			got, err := service.History(context.Background(), 1, tc.pageID, tc.pageSize)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}
