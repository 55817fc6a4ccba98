package accountservice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/test"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/passpkg"
	"github.com/go-petr/pet-ledger/pkg/randompkg"
	gomock "github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

type eqHashMatcher struct {
	password string
}

func (e eqHashMatcher) Matches(x interface{}) bool {
	hashed, ok := x.(string)
	if !ok {
		return false
	}

	return passpkg.Check(e.password, hashed) == nil
}

func (e eqHashMatcher) String() string {
	return fmt.Sprintf("is bcrypt hash of %q", e.password)
}

// EqHash matches a bcrypt hash of the password.
func EqHash(password string) gomock.Matcher {
	return eqHashMatcher{password}
}

type eqDecimalMatcher struct {
	want decimal.Decimal
}

func (e eqDecimalMatcher) Matches(x interface{}) bool {
	got, ok := x.(decimal.Decimal)
	if !ok {
		return false
	}

	return e.want.Equal(got)
}

func (e eqDecimalMatcher) String() string {
	return fmt.Sprintf("equals %v", e.want)
}

// EqDecimal matches a decimal numerically equal to want.
func EqDecimal(want string) gomock.Matcher {
	return eqDecimalMatcher{decimal.RequireFromString(want)}
}

func TestArtifactPayload(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		number  int64
		holder  string
		balance string
		want    string
	}{
		{
			name:    "WholeAmount",
			number:  1,
			holder:  "Asha",
			balance: "100",
			want:    "Account Number: 1\nName: Asha\nBalance: 100 Rs.",
		},
		{
			name:    "TrailingZeroKept",
			number:  42,
			holder:  "Ravi Kumar",
			balance: "100.50",
			want:    "Account Number: 42\nName: Ravi Kumar\nBalance: 100.50 Rs.",
		},
		{
			name:    "Zero",
			number:  7,
			holder:  "Meera",
			balance: "0.00",
			want:    "Account Number: 7\nName: Meera\nBalance: 0.00 Rs.",
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := ArtifactPayload(tc.number, tc.holder, tc.balance)
			if got != tc.want {
				t.Errorf("ArtifactPayload(%v, %q, %q) = %q, want %q", tc.number, tc.holder, tc.balance, got, tc.want)
			}
		})
	}
}

func TestRegister(t *testing.T) {
	t.Parallel()

	account := domain.Account{
		Number:  1,
		Name:    "Asha",
		Balance: decimal.NewFromInt(100),
	}

	type input struct {
		name           string
		password       string
		initialBalance string
	}

	testCases := []struct {
		name        string
		input       input
		buildStubs  func(repo *MockRepo)
		wantAccount domain.Account
		wantPayload string
		wantError   error
	}{
		{
			name:  "OK",
			input: input{"Asha", "p1", "100"},
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					Create(gomock.Any(), "Asha", EqHash("p1"), EqDecimal("100")).
					Times(1).
					Return(account, nil)
			},
			wantAccount: account,
			wantPayload: "Account Number: 1\nName: Asha\nBalance: 100 Rs.",
		},
		{
			name:  "PayloadKeepsInputFormat",
			input: input{"Ravi", "p2", "0.50"},
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					Create(gomock.Any(), "Ravi", EqHash("p2"), EqDecimal("0.5")).
					Times(1).
					Return(domain.Account{Number: 2, Name: "Ravi", Balance: decimal.RequireFromString("0.5")}, nil)
			},
			wantAccount: domain.Account{Number: 2, Name: "Ravi", Balance: decimal.RequireFromString("0.5")},
			wantPayload: "Account Number: 2\nName: Ravi\nBalance: 0.50 Rs.",
		},
		{
			name:  "EmptyName",
			input: input{"", "p1", "100"},
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantError: domain.ErrEmptyName,
		},
		{
			name:  "EmptyPassword",
			input: input{"Asha", "", "100"},
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantError: domain.ErrEmptyCredential,
		},
		{
			name:  "PasswordTooLong",
			input: input{"Asha", strings.Repeat("long", 100), "100"},
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantError: domain.ErrCredentialTooLong,
		},
		{
			name:  "NegativeInitialBalance",
			input: input{"Asha", "p1", "-5"},
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantError: domain.ErrNegativeAmount,
		},
		{
			name:  "InvalidInitialBalance",
			input: input{"Asha", "p1", "ten"},
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantError: domain.ErrInvalidAmount,
		},
		{
			name:  "RepoErr",
			input: input{"Asha", "p1", "100"},
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					Create(gomock.Any(), "Asha", EqHash("p1"), EqDecimal("100")).
					Times(1).
					Return(domain.Account{}, errorspkg.ErrInternal)
			},
			wantError: domain.ErrRegistration,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			service := New(repo)

			tc.buildStubs(repo)

			got, payload, err := service.Register(context.Background(),
				tc.input.name,
				tc.input.password,
				tc.input.initialBalance,
			)
			if tc.wantError != nil {
				if !errors.Is(err, tc.wantError) {
					t.Fatalf("service.Register(context.Background(), %q, %q, %q) got error %v, want %v",
						tc.input.name, tc.input.password, tc.input.initialBalance, err, tc.wantError)
				}

				return
			}

			if err != nil {
				t.Fatalf("service.Register(context.Background(), %q, %q, %q) returned error: %v",
					tc.input.name, tc.input.password, tc.input.initialBalance, err)
			}

			if diff := cmp.Diff(tc.wantAccount, got); diff != "" {
				t.Errorf("service.Register() account mismatch (-want +got):\n%s", diff)
			}

			if payload != tc.wantPayload {
				t.Errorf("service.Register() payload = %q, want %q", payload, tc.wantPayload)
			}
		})
	}
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	account := test.RandomAccount()
	password := randompkg.Password()

	testCases := []struct {
		name       string
		number     int64
		password   string
		buildStubs func(repo *MockRepo)
		want       domain.Account
		wantError  error
	}{
		{
			name:     "OK",
			number:   account.Number,
			password: password,
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					FindByCredentials(gomock.Any(), account.Number, password).
					Times(1).
					Return(account, nil)
			},
			want: account,
		},
		{
			name:     "UnknownOrMismatch",
			number:   account.Number,
			password: "wrong",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					FindByCredentials(gomock.Any(), account.Number, "wrong").
					Times(1).
					Return(domain.Account{}, domain.ErrAccountNotFound)
			},
			wantError: domain.ErrAuthFailure,
		},
		{
			name:     "NonPositiveNumber",
			number:   0,
			password: password,
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().FindByCredentials(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantError: domain.ErrAuthFailure,
		},
		{
			name:     "EmptyPassword",
			number:   account.Number,
			password: "",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().FindByCredentials(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantError: domain.ErrAuthFailure,
		},
		{
			name:     "StorageFailure",
			number:   account.Number,
			password: password,
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					FindByCredentials(gomock.Any(), account.Number, password).
					Times(1).
					Return(domain.Account{}, errorspkg.ErrInternal)
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
			service := New(repo)

			tc.buildStubs(repo)

			got, err := service.Authenticate(context.Background(), tc.number, tc.password)
			if err != tc.wantError {
				t.Fatalf("service.Authenticate(context.Background(), %v, %q) got error %v, want %v",
					tc.number, tc.password, err, tc.wantError)
			}

			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("service.Authenticate() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGetProfile(t *testing.T) {
	t.Parallel()

	account := test.RandomAccount()
	profile := domain.Profile{
		Number:  account.Number,
		Name:    account.Name,
		Balance: account.Balance,
	}

	testCases := []struct {
		name       string
		buildStubs func(repo *MockRepo)
		want       domain.Profile
		wantError  error
	}{
		{
			name: "OK",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					GetProfile(gomock.Any(), account.Number).
					Times(1).
					Return(profile, nil)
			},
			want: profile,
		},
		{
			name: "NotFound",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					GetProfile(gomock.Any(), account.Number).
					Times(1).
					Return(domain.Profile{}, domain.ErrAccountNotFound)
			},
			wantError: domain.ErrAccountNotFound,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			service := New(repo)

			tc.buildStubs(repo)

			got, err := service.GetProfile(context.Background(), account.Number)
			if err != tc.wantError {
				t.Fatalf("service.GetProfile(context.Background(), %v) got error %v, want %v",
					account.Number, err, tc.wantError)
			}

			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("service.GetProfile() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
