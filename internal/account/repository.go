// Account repository encapsulates the data access logic (interactions with the DB) related to Accounts in Gatepass.

package account

import (
	"Gatepass/internal/entity"
	"Gatepass/internal/errors"
	"Gatepass/pkg/db"
	"Gatepass/pkg/log"
	"context"

	"github.com/go-redis/redis/v8"
)

type Repository interface {
	// GetAccount returns the account with username if exists.
	GetAccount(ctx context.Context, logger log.Logger, username string) (entity.Account, error)
	// SetOrUpdateAccount adds the account with credentials saved in acc into the DB.
	SetOrUpdateAccount(ctx context.Context, logger log.Logger, acc entity.Account, accountExistCheck bool) (bool, error)
	// HasAccount returns a boolean depending on account's availability.
	HasAccount(ctx context.Context, logger log.Logger, username string) (bool, error)
	// SearchAccount returns paginated account data depending on the query.
	SearchAccount(ctx context.Context, logger log.Logger, query entity.AccountSearch) ([]entity.Account, uint64, error)
}

// repository struct of account Repository.
// Object of this will be passed around from main to internal.
// Helps to access the repository layer interface and call methods.
type repository struct {
	db *db.RedisDB
}

// Returns a new instance of account repository for other packages to access its interface.
func NewRepository(dbwrp *db.RedisDB) Repository {
	return repository{db: dbwrp}
}

// Returns the account data object if account with the given username is found in the DB.
func (r repository) GetAccount(ctx context.Context, logger log.Logger, username string) (entity.Account, error) {
	acc := entity.Account{}
	available, dberr := r.db.Client().Exists(ctx, "account:"+username).Result()
	if dberr != nil && dberr != redis.Nil {
		// Error during interacting with DB
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.Exists() in account.GetAccount")
		return acc, errors.InternalServerError("")
	} else if available == 0 {
		// Account not available
		return acc, errors.NotFound("Account not available")
	}
	if dberr := r.db.Client().HGetAll(ctx, "account:"+username).Scan(&acc); dberr != nil {
		// Error during interacting with DB
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.HGetAll() in account.GetAccount")
		return acc, errors.InternalServerError("")
	}
	return acc, nil
}

// Returns true if account got successfully added or updated into the DB.
func (r repository) SetOrUpdateAccount(ctx context.Context, logger log.Logger, acc entity.Account, accountExistCheck bool) (bool, error) {
	if !accountExistCheck {
		// Checking if an account with username acc.Username exists in the DB
		available, dberr := r.HasAccount(ctx, logger, acc.Username)
		if dberr != nil {
			// Issues in HasAccount()
			return false, dberr
		} else if available {
			return false, errors.BadRequest("Account already exists")
		}
	}
	// Transaction to set account data
	key := "account:" + acc.Username
	txferr := func(key string) error {
		txf := func(tx *redis.Tx) error {
			// Operation is commited only if the watched keys remain unchanged
			_, dberr := r.db.Client().TxPipelined(ctx, func(client redis.Pipeliner) error {
				client.HSet(ctx, key, "username", acc.Username)
				client.HSet(ctx, key, "full_name", acc.FullName)
				client.HSet(ctx, key, "password", acc.Password)
				client.HSet(ctx, key, "role", acc.Role)
				return nil
			})
			return dberr
		}
		for i := 0; i < r.db.GetMaxRetries(); i++ {
			dberr := r.db.Client().Watch(ctx, txf, key)
			if dberr == nil {
				return nil
			} else if dberr == redis.TxFailedErr {
				// Optimistic lock lost. Retry.
				continue
			}
			// Return any other error.
			return dberr
		}
		return errors.New("SetOrUpdateAccount reached maximum number of retries")
	}(key)
	if txferr != nil {
		logger.WithCtx(ctx).Error().Err(txferr).Msg("Error occured in SetOrUpdateAccount transaction")
		return false, errors.InternalServerError("")
	}

	// Add account to account:index for faster searches
	_, dberr := r.db.Client().SAdd(ctx, "account:index", acc.Username).Result()
	if dberr != nil {
		// Issues in SAdd()
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during setting account index")
		return false, errors.InternalServerError("")
	}
	return true, nil
}

// Returns true if account with the given username exists in Gatepass.
func (r repository) HasAccount(ctx context.Context, logger log.Logger, username string) (bool, error) {
	available, dberr := r.db.Client().Exists(ctx, "account:"+username).Result()
	if dberr != nil && dberr != redis.Nil {
		// Error during interacting with DB
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.Exists() in account.HasAccount")
		return false, errors.InternalServerError("")
	} else if available == 0 {
		// Account not available
		return false, nil
	}
	return true, nil
}

// Returns account data matching incoming query in DB.
func (r repository) SearchAccount(ctx context.Context, logger log.Logger, query entity.AccountSearch) ([]entity.Account, uint64, error) {
	searchBy := query.Username + "*"
	initialResult, newCursor, dberr := r.db.Client().SScan(ctx, "account:index", uint64(query.Cursor), searchBy, 10).Result()
	if dberr != nil && dberr != redis.Nil {
		// Error during interacting with DB
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.SScan() in account.SearchAccount")
		return []entity.Account{}, uint64(0), errors.InternalServerError("")
	}
	resultSet := make(map[string]struct{}) // Empty set
	// Helper to add values from SScan() into resultSet
	addIntoResultSet := func(resultList []string) {
		for _, u := range resultList {
			resultSet[u] = struct{}{}
		}
	}
	addIntoResultSet(initialResult)
	// Have to repeat SScan() until we get 10 results or cursor returned by the server is 0 again
	// Else unpredictable searchResult will be returned to the client
	for len(resultSet) <= 10 && newCursor != 0 {
		freshList, freshCursor, dberr := r.db.Client().SScan(ctx, "account:index", newCursor, searchBy, 10).Result()
		if dberr != nil && dberr != redis.Nil {
			// Error during interacting with DB
			logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.SScan() in account.SearchAccount")
			return []entity.Account{}, uint64(0), errors.InternalServerError("")
		}
		newCursor = freshCursor
		addIntoResultSet(freshList)
	}

	searchResult := []entity.Account{}
	for username := range resultSet {
		accData, err := r.GetAccount(ctx, logger, username)
		if err != nil {
			// Issues in GetAccount()
			return searchResult, uint64(0), err
		}
		// Hide password
		accData.Password = ""
		searchResult = append(searchResult, accData)
	}
	return searchResult, newCursor, nil
}
