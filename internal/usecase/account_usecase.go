package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iho/bookkeeper/internal/domain"
)

// AccountUseCase handles the account registry.
type AccountUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	metrics     MetricsRecorder
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
) *AccountUseCase {
	return &AccountUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		metrics:     noopMetrics{},
	}
}

// WithMetrics sets the business metrics recorder.
func (uc *AccountUseCase) WithMetrics(m MetricsRecorder) *AccountUseCase {
	uc.metrics = m
	return uc
}

// RegisterAccountInput represents input for registering an account.
type RegisterAccountInput struct {
	Name           string
	Classification domain.Classification
	// ContraOf makes the account a contra account of the named regular account.
	// Classification may be left empty and is then inherited.
	ContraOf         string
	RetainedEarnings bool
}

// RegisterAccount adds an account to the registry.
func (uc *AccountUseCase) RegisterAccount(ctx context.Context, input RegisterAccountInput) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	account, err := uc.register(ctx, tx, input)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	uc.metrics.AccountRegistered(account.Classification)
	return account, nil
}

// register validates and stores an account inside an open transaction.
func (uc *AccountUseCase) register(ctx context.Context, tx Transaction, input RegisterAccountInput) (*domain.Account, error) {
	now := time.Now().UTC()

	account := &domain.Account{
		ID:               uc.idGen.Generate(),
		Name:             input.Name,
		Classification:   input.Classification,
		ContraOf:         input.ContraOf,
		Contra:           input.ContraOf != "",
		RetainedEarnings: input.RetainedEarnings,
		Active:           true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if account.Contra {
		parents, err := uc.accountRepo.GetByNamesForUpdate(ctx, tx, []string{input.ContraOf})
		if err != nil {
			return nil, err
		}
		if len(parents) == 0 {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnknownAccount, input.ContraOf)
		}

		parent := parents[0]
		if parent.Contra {
			return nil, fmt.Errorf("%w: %s is a contra account", domain.ErrContraParentNotRegular, parent.Name)
		}
		if account.Classification == "" {
			account.Classification = parent.Classification
		}
		if account.Classification != parent.Classification {
			return nil, fmt.Errorf("%w: %s is %s, contra account is %s",
				domain.ErrInvalidClassification, parent.Name, parent.Classification, account.Classification)
		}
	}

	if err := account.Validate(); err != nil {
		return nil, err
	}

	if account.RetainedEarnings {
		existing, err := uc.accountRepo.FindRetainedEarnings(ctx, tx)
		switch {
		case err == nil:
			return nil, fmt.Errorf("%w: %s", domain.ErrRetainedEarningsExists, existing.Name)
		case !errors.Is(err, domain.ErrNoRetainedEarnings):
			return nil, err
		}
	}

	if err := uc.accountRepo.Create(ctx, tx, account); err != nil {
		return nil, err
	}

	if err := uc.outboxRepo.Create(ctx, tx, domain.AccountRegisteredEvent(uc.idGen.Generate(), account)); err != nil {
		return nil, err
	}

	return account, nil
}

// GetAccount retrieves an account by name.
func (uc *AccountUseCase) GetAccount(ctx context.Context, name string) (*domain.Account, error) {
	return uc.accountRepo.GetByName(ctx, name)
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	Limit  int
	Offset int
}

// ListAccounts lists accounts with pagination, ordered by name.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	limit, offset := domain.NormalizePage(input.Limit, input.Offset)
	return uc.accountRepo.List(ctx, limit, offset)
}

// DeactivateAccount marks an account inactive. Its history is kept and it
// still appears in balances and reports.
func (uc *AccountUseCase) DeactivateAccount(ctx context.Context, name string) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	accounts, err := uc.accountRepo.GetByNamesForUpdate(ctx, tx, []string{name})
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownAccount, name)
	}

	account := accounts[0]
	if !account.Active {
		return account, nil
	}

	now := time.Now().UTC()
	if err := uc.accountRepo.SetActive(ctx, tx, name, false, now); err != nil {
		return nil, err
	}

	if err := uc.outboxRepo.Create(ctx, tx, domain.AccountDeactivatedEvent(uc.idGen.Generate(), account, now)); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	updated := *account
	updated.Active = false
	updated.UpdatedAt = now
	return &updated, nil
}
