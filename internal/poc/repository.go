// Poc repository encapsulates the data access logic (interactions with the DB) related to Point-of-checkin CRUD in Gatepass.

package poc

import (
	"Gatepass/internal/entity"
	"Gatepass/internal/errors"
	"Gatepass/pkg/db"
	"Gatepass/pkg/log"
	"context"

	"github.com/go-redis/redis/v8"
)

type Repository interface {
	// HasPoc returns a boolean depending on poc's availability under an event.
	HasPoc(ctx context.Context, logger log.Logger, eventCode string, pointCode string) (bool, error)
	// SetPoc adds the poc data into the DB under its event.
	SetPoc(ctx context.Context, logger log.Logger, poc *entity.Poc, pocExistCheck bool) (bool, error)
	// GetPoc fetches poc data from DB.
	GetPoc(ctx context.Context, logger log.Logger, eventCode string, pointCode string) (entity.Poc, error)
	// GetEventPocs fetches all point codes under an event.
	GetEventPocs(ctx context.Context, logger log.Logger, eventCode string) ([]string, error)
}

// repository struct of poc Repository.
// Object of this will be passed around from main to internal.
// Helps to access the repository layer interface and call methods.
type repository struct {
	db *db.RedisDB
}

// Returns a new instance of poc repository for other packages to access its interface.
func NewRepository(dbwrp *db.RedisDB) Repository {
	return repository{db: dbwrp}
}

// Returns true if poc:<event_code>:<point_code> exists in Gatepass.
func (r repository) HasPoc(ctx context.Context, logger log.Logger, eventCode string, pointCode string) (bool, error) {
	available, dberr := r.db.Client().Exists(ctx, "poc:"+eventCode+":"+pointCode).Result()
	if dberr != nil && dberr != redis.Nil {
		// Error during interacting with DB
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.Exists() in poc.HasPoc")
		return false, errors.InternalServerError("")
	} else if available == 0 {
		// Poc not available
		return false, nil
	}
	return true, nil
}

// Returns true if poc got successfully added into the DB.
func (r repository) SetPoc(ctx context.Context, logger log.Logger, poc *entity.Poc, pocExistCheck bool) (bool, error) {
	if !pocExistCheck {
		// Checking if a poc with this code exists under the event in the DB
		available, dberr := r.HasPoc(ctx, logger, poc.EventCode, poc.Code)
		if dberr != nil {
			// Issues in HasPoc()
			return false, dberr
		} else if available {
			return false, errors.BadRequest("Point of check-in already exists")
		}
	}
	key := "poc:" + poc.EventCode + ":" + poc.Code
	if _, dberr := r.db.Client().Pipelined(ctx, func(client redis.Pipeliner) error {
		client.HSet(ctx, key, "point_code", poc.Code)
		client.HSet(ctx, key, "point_name", poc.Name)
		client.HSet(ctx, key, "event_code", poc.EventCode)
		client.HSet(ctx, key, "staff", poc.Staff)
		client.HSet(ctx, key, "created", poc.Created)
		return nil
	}); dberr != nil {
		// Error during interacting with DB
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.Pipelined() in poc.SetPoc")
		return false, errors.InternalServerError("")
	}
	// Index the poc under its event
	_, dberr := r.db.Client().SAdd(ctx, "event-pocs:"+poc.EventCode, poc.Code).Result()
	if dberr != nil {
		// Issue in SAdd()
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.SAdd() in poc.SetPoc")
		return false, errors.InternalServerError("")
	}
	return true, nil
}

// Returns poc data for the given event and point code.
func (r repository) GetPoc(ctx context.Context, logger log.Logger, eventCode string, pointCode string) (entity.Poc, error) {
	var poc entity.Poc
	available, dberr := r.HasPoc(ctx, logger, eventCode, pointCode)
	if dberr != nil {
		// Issues in HasPoc()
		return poc, dberr
	} else if !available {
		return poc, errors.NotFound("Point of check-in not available")
	}
	if dberr := r.db.Client().HGetAll(ctx, "poc:"+eventCode+":"+pointCode).Scan(&poc); dberr != nil {
		// Error during interacting with DB
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.HGetAll() in poc.GetPoc")
		return poc, errors.InternalServerError("")
	}
	return poc, nil
}

// Returns all point codes registered under an event.
func (r repository) GetEventPocs(ctx context.Context, logger log.Logger, eventCode string) ([]string, error) {
	codes, dberr := r.db.Client().SMembers(ctx, "event-pocs:"+eventCode).Result()
	if dberr != nil && dberr != redis.Nil {
		// Error during interacting with DB
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.SMembers() in poc.GetEventPocs")
		return []string{}, errors.InternalServerError("")
	}
	return codes, nil
}
