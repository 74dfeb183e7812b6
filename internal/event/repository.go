// Event repository encapsulates the data access logic (interactions with the DB) related to Event CRUD in Gatepass.

package event

import (
	"Gatepass/internal/entity"
	"Gatepass/internal/errors"
	"Gatepass/pkg/db"
	"Gatepass/pkg/log"
	"context"

	"github.com/go-redis/redis/v8"
)

type Repository interface {
	// HasEvent returns a boolean depending on event's availability.
	HasEvent(ctx context.Context, logger log.Logger, eventCode string) (bool, error)
	// SetEvent adds the event data into the DB.
	SetEvent(ctx context.Context, logger log.Logger, event *entity.Event, eventExistCheck bool) (bool, error)
	// GetEvent fetches created event data from DB.
	GetEvent(ctx context.Context, logger log.Logger, eventCode string) (entity.Event, error)
	// GetAdminEvents fetches the event codes created by an admin account.
	GetAdminEvents(ctx context.Context, logger log.Logger, admin string) ([]string, error)
}

// repository struct of event Repository.
// Object of this will be passed around from main to internal.
// Helps to access the repository layer interface and call methods.
type repository struct {
	db *db.RedisDB
}

// Returns a new instance of event repository for other packages to access its interface.
func NewRepository(dbwrp *db.RedisDB) Repository {
	return repository{db: dbwrp}
}

// Returns true if event:<event_code> exists in Gatepass.
func (r repository) HasEvent(ctx context.Context, logger log.Logger, eventCode string) (bool, error) {
	available, dberr := r.db.Client().Exists(ctx, "event:"+eventCode).Result()
	if dberr != nil && dberr != redis.Nil {
		// Error during interacting with DB
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.Exists() in event.HasEvent")
		return false, errors.InternalServerError("")
	} else if available == 0 {
		// Event not available
		return false, nil
	}
	return true, nil
}

// Returns true if event got successfully added into the DB.
func (r repository) SetEvent(ctx context.Context, logger log.Logger, event *entity.Event, eventExistCheck bool) (bool, error) {
	if !eventExistCheck {
		// Checking if an event with code event.Code exists in the DB
		available, dberr := r.HasEvent(ctx, logger, event.Code)
		if dberr != nil {
			// Issues in HasEvent()
			return false, dberr
		} else if available {
			return false, errors.BadRequest("Event already exists")
		}
	}
	key := "event:" + event.Code
	if _, dberr := r.db.Client().Pipelined(ctx, func(client redis.Pipeliner) error {
		client.HSet(ctx, key, "event_code", event.Code)
		client.HSet(ctx, key, "event_name", event.Name)
		client.HSet(ctx, key, "event_admin", event.Admin)
		client.HSet(ctx, key, "starts_at", event.StartsAt)
		client.HSet(ctx, key, "ends_at", event.EndsAt)
		client.HSet(ctx, key, "created", event.Created)
		client.HSet(ctx, key, "pocs_list_key", event.PocsListKey)
		client.HSet(ctx, key, "guests_list_key", event.GuestsListKey)
		return nil
	}); dberr != nil {
		// Error during interacting with DB
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.Pipelined() in event.SetEvent")
		return false, errors.InternalServerError("")
	}
	// Index the event under its admin for dashboard listings
	_, dberr := r.db.Client().SAdd(ctx, "admin-events:"+event.Admin, event.Code).Result()
	if dberr != nil {
		// Issue in SAdd()
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.SAdd() in event.SetEvent")
		return false, errors.InternalServerError("")
	}
	return true, nil
}

// Returns event data for the given event code.
func (r repository) GetEvent(ctx context.Context, logger log.Logger, eventCode string) (entity.Event, error) {
	var event entity.Event
	available, dberr := r.HasEvent(ctx, logger, eventCode)
	if dberr != nil {
		// Issues in HasEvent()
		return event, dberr
	} else if !available {
		return event, errors.NotFound("Event not available")
	}
	if dberr := r.db.Client().HGetAll(ctx, "event:"+eventCode).Scan(&event); dberr != nil {
		// Error during interacting with DB
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.HGetAll() in event.GetEvent")
		return event, errors.InternalServerError("")
	}
	return event, nil
}

// Returns the event codes created by an admin account.
func (r repository) GetAdminEvents(ctx context.Context, logger log.Logger, admin string) ([]string, error) {
	codes, dberr := r.db.Client().SMembers(ctx, "admin-events:"+admin).Result()
	if dberr != nil && dberr != redis.Nil {
		// Error during interacting with DB
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.SMembers() in event.GetAdminEvents")
		return []string{}, errors.InternalServerError("")
	}
	return codes, nil
}
