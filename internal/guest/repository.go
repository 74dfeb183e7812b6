// Guest repository encapsulates the data access logic (interactions with the DB) related to Guest CRUD in Gatepass.

package guest

import (
	"Gatepass/internal/entity"
	"Gatepass/internal/errors"
	"Gatepass/pkg/db"
	"Gatepass/pkg/log"
	"context"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

type Repository interface {
	// HasGuest returns a boolean depending on guest's availability under an event.
	HasGuest(ctx context.Context, logger log.Logger, eventCode string, guestCode string) (bool, error)
	// SetGuest adds the guest data into the DB under its event.
	SetGuest(ctx context.Context, logger log.Logger, guest *entity.Guest, guestExistCheck bool) (bool, error)
	// GetGuest fetches guest data from DB.
	GetGuest(ctx context.Context, logger log.Logger, eventCode string, guestCode string) (entity.Guest, error)
	// GetEventGuests fetches all guest codes under an event.
	GetEventGuests(ctx context.Context, logger log.Logger, eventCode string) ([]string, error)
	// SetCheckin stamps check-in info on the guest hash.
	SetCheckin(ctx context.Context, logger log.Logger, checkin entity.GuestCheckin, checkinTime int64) error
	// IncrCheckinBucket bumps the hourly check-in counter for an event.
	IncrCheckinBucket(ctx context.Context, logger log.Logger, eventCode string, checkinTime int64) error
	// GetCheckinStats returns the hourly check-in counters for an event.
	GetCheckinStats(ctx context.Context, logger log.Logger, eventCode string) (map[string]int64, error)
}

// repository struct of guest Repository.
// Object of this will be passed around from main to internal.
// Helps to access the repository layer interface and call methods.
type repository struct {
	db *db.RedisDB
}

// Returns a new instance of guest repository for other packages to access its interface.
func NewRepository(dbwrp *db.RedisDB) Repository {
	return repository{db: dbwrp}
}

// Returns true if guest:<event_code>:<guest_code> exists in Gatepass.
func (r repository) HasGuest(ctx context.Context, logger log.Logger, eventCode string, guestCode string) (bool, error) {
	available, dberr := r.db.Client().Exists(ctx, "guest:"+eventCode+":"+guestCode).Result()
	if dberr != nil && dberr != redis.Nil {
		// Error during interacting with DB
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.Exists() in guest.HasGuest")
		return false, errors.InternalServerError("")
	} else if available == 0 {
		// Guest not available
		return false, nil
	}
	return true, nil
}

// Returns true if guest got successfully added into the DB.
func (r repository) SetGuest(ctx context.Context, logger log.Logger, guest *entity.Guest, guestExistCheck bool) (bool, error) {
	if !guestExistCheck {
		// Checking if a guest with this code exists under the event in the DB
		available, dberr := r.HasGuest(ctx, logger, guest.EventCode, guest.Code)
		if dberr != nil {
			// Issues in HasGuest()
			return false, dberr
		} else if available {
			return false, errors.BadRequest("Guest already exists")
		}
	}
	key := "guest:" + guest.EventCode + ":" + guest.Code
	if _, dberr := r.db.Client().Pipelined(ctx, func(client redis.Pipeliner) error {
		client.HSet(ctx, key, "guest_code", guest.Code)
		client.HSet(ctx, key, "event_code", guest.EventCode)
		client.HSet(ctx, key, "description", guest.Description)
		client.HSet(ctx, key, "image_url", guest.ImageURL)
		client.HSet(ctx, key, "point_code", guest.PointCode)
		client.HSet(ctx, key, "checkin_time", guest.CheckinTime)
		client.HSet(ctx, key, "active", guest.Active)
		return nil
	}); dberr != nil {
		// Error during interacting with DB
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.Pipelined() in guest.SetGuest")
		return false, errors.InternalServerError("")
	}
	// Index the guest under its event
	_, dberr := r.db.Client().SAdd(ctx, "event-guests:"+guest.EventCode, guest.Code).Result()
	if dberr != nil {
		// Issue in SAdd()
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.SAdd() in guest.SetGuest")
		return false, errors.InternalServerError("")
	}
	return true, nil
}

// Returns guest data for the given event and guest code.
func (r repository) GetGuest(ctx context.Context, logger log.Logger, eventCode string, guestCode string) (entity.Guest, error) {
	var guest entity.Guest
	available, dberr := r.HasGuest(ctx, logger, eventCode, guestCode)
	if dberr != nil {
		// Issues in HasGuest()
		return guest, dberr
	} else if !available {
		return guest, errors.NotFound("Guest not available")
	}
	if dberr := r.db.Client().HGetAll(ctx, "guest:"+eventCode+":"+guestCode).Scan(&guest); dberr != nil {
		// Error during interacting with DB
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.HGetAll() in guest.GetGuest")
		return guest, errors.InternalServerError("")
	}
	return guest, nil
}

// Returns all guest codes registered under an event.
func (r repository) GetEventGuests(ctx context.Context, logger log.Logger, eventCode string) ([]string, error) {
	codes, dberr := r.db.Client().SMembers(ctx, "event-guests:"+eventCode).Result()
	if dberr != nil && dberr != redis.Nil {
		// Error during interacting with DB
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.SMembers() in guest.GetEventGuests")
		return []string{}, errors.InternalServerError("")
	}
	return codes, nil
}

// Stamps check-in info on the guest hash.
func (r repository) SetCheckin(ctx context.Context, logger log.Logger, checkin entity.GuestCheckin, checkinTime int64) error {
	key := "guest:" + checkin.EventCode + ":" + checkin.GuestCode
	if _, dberr := r.db.Client().Pipelined(ctx, func(client redis.Pipeliner) error {
		client.HSet(ctx, key, "point_code", checkin.PointCode)
		client.HSet(ctx, key, "checkin_time", checkinTime)
		client.HSet(ctx, key, "active", true)
		return nil
	}); dberr != nil {
		// Error during interacting with DB
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.Pipelined() in guest.SetCheckin")
		return errors.InternalServerError("")
	}
	return nil
}

// Bumps the hourly check-in counter bucket for an event.
// Buckets are hash fields keyed by hour in yyyymmddhh format.
func (r repository) IncrCheckinBucket(ctx context.Context, logger log.Logger, eventCode string, checkinTime int64) error {
	bucket := time.Unix(checkinTime, 0).UTC().Format("2006010215")
	_, dberr := r.db.Client().HIncrBy(ctx, "checkins:"+eventCode, bucket, 1).Result()
	if dberr != nil {
		// Error during interacting with DB
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.HIncrBy() in guest.IncrCheckinBucket")
		return errors.InternalServerError("")
	}
	return nil
}

// Returns the hourly check-in counters for an event, keyed by yyyymmddhh bucket.
func (r repository) GetCheckinStats(ctx context.Context, logger log.Logger, eventCode string) (map[string]int64, error) {
	stats := make(map[string]int64)
	raw, dberr := r.db.Client().HGetAll(ctx, "checkins:"+eventCode).Result()
	if dberr != nil && dberr != redis.Nil {
		// Error during interacting with DB
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.HGetAll() in guest.GetCheckinStats")
		return stats, errors.InternalServerError("")
	}
	for bucket, count := range raw {
		parsed, prserr := strconv.ParseInt(count, 10, 64)
		if prserr != nil {
			// Malformed counter, skip it
			logger.WithCtx(ctx).Error().Err(prserr).Msg("Parsing error in guest.GetCheckinStats")
			continue
		}
		stats[bucket] = parsed
	}
	return stats, nil
}
