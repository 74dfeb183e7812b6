// Service layer of the internal package account.

package account

import (
	"Gatepass/internal/entity"
	"Gatepass/internal/errors"
	"Gatepass/pkg/log"
	"context"

	"github.com/asaskevich/govalidator"
)

// Service layer of internal package account which encapsulates account CRUD logic of Gatepass.
type Service interface {
	// Fetches an account in Gatepass, password stripped.
	getaccount(ctx context.Context, username string) (entity.Account, error)
	// Searches accounts by username prefix.
	searchaccount(ctx context.Context, query entity.AccountSearch) ([]entity.Account, uint64, error)
}

// Object of this will be passed around from main to routers to API.
// Helps to access the service layer interface and call methods.
// Also helps to pass objects to be used from outer layer.
type service struct {
	accountRepo Repository
	logger      log.Logger
}

// Helps to access the service layer interface and call methods. Service object is passed from main.
func NewService(accountRepo Repository, logger log.Logger) Service {
	return service{accountRepo, logger}
}

func (s service) getaccount(ctx context.Context, username string) (entity.Account, error) {
	acc, dberr := s.accountRepo.GetAccount(ctx, s.logger, username)
	if dberr != nil {
		// Error occured in GetAccount()
		return entity.Account{}, dberr
	}
	// Hide password
	acc.Password = ""
	return acc, nil
}

func (s service) searchaccount(ctx context.Context, query entity.AccountSearch) ([]entity.Account, uint64, error) {
	valerr := s.validateSearchQuery(ctx, query)
	if valerr != nil {
		// Error occured during validation
		return []entity.Account{}, uint64(0), valerr
	}
	return s.accountRepo.SearchAccount(ctx, s.logger, query)
}

// Helper to validate the search query against validation-tags mentioned in its entity.
func (s service) validateSearchQuery(ctx context.Context, query entity.AccountSearch) error {
	_, valerr := govalidator.ValidateStruct(query)
	if valerr != nil {
		valerr := valerr.(govalidator.Errors).Errors()
		return errors.GenerateValidationErrorResponse(valerr)
	}
	return nil
}
