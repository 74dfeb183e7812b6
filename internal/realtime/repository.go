// Realtime repository encapsulates the heartbeat store (interactions with the DB) of the Gatepass realtime gateway.

package realtime

import (
	"Gatepass/internal/errors"
	"Gatepass/pkg/db"
	"Gatepass/pkg/log"
	"context"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// Heartbeats live in one hash per event so multiple gateway instances can share
// point liveness through the DB. Fields are point codes, values are unix expiry
// timestamps. Every write refreshes a key-level TTL so heartbeat hashes of
// events nobody sweeps still disappear eventually.
type Repository interface {
	// SetField writes or refreshes the expiry timestamp of (event, point).
	SetField(ctx context.Context, logger log.Logger, eventCode string, pointCode string, expiry int64) error
	// GetField fetches the expiry timestamp of (event, point) if present.
	GetField(ctx context.Context, logger log.Logger, eventCode string, pointCode string) (int64, bool, error)
	// DeleteFields removes the given points from the event's heartbeat hash.
	DeleteFields(ctx context.Context, logger log.Logger, eventCode string, pointCodes ...string) error
	// ListFields returns every point with a heartbeat entry under the event, with expiry.
	ListFields(ctx context.Context, logger log.Logger, eventCode string) (map[string]int64, error)
}

// repository struct of realtime Repository.
// Object of this will be passed around from main to internal.
// Helps to access the repository layer interface and call methods.
type repository struct {
	db     *db.RedisDB
	keyTTL time.Duration
}

// Returns a new instance of realtime repository for other packages to access its interface.
// keyTTL bounds how long an unswept heartbeat hash survives without any writes.
func NewRepository(dbwrp *db.RedisDB, keyTTL time.Duration) Repository {
	return repository{db: dbwrp, keyTTL: keyTTL}
}

func heartbeatKey(eventCode string) string {
	return "heartbeat:" + eventCode
}

// Writes the expiry timestamp of (event, point) and refreshes the hash TTL.
func (r repository) SetField(ctx context.Context, logger log.Logger, eventCode string, pointCode string, expiry int64) error {
	key := heartbeatKey(eventCode)
	if _, dberr := r.db.Client().Pipelined(ctx, func(client redis.Pipeliner) error {
		client.HSet(ctx, key, pointCode, expiry)
		client.Expire(ctx, key, r.keyTTL)
		return nil
	}); dberr != nil {
		// Error during interacting with DB
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.Pipelined() in realtime.SetField")
		return errors.InternalServerError("")
	}
	return nil
}

// Returns the expiry timestamp of (event, point), false if no entry exists.
func (r repository) GetField(ctx context.Context, logger log.Logger, eventCode string, pointCode string) (int64, bool, error) {
	val, dberr := r.db.Client().HGet(ctx, heartbeatKey(eventCode), pointCode).Result()
	if dberr == redis.Nil {
		// No heartbeat entry for this point
		return 0, false, nil
	} else if dberr != nil {
		// Error during interacting with DB
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.HGet() in realtime.GetField")
		return 0, false, errors.InternalServerError("")
	}
	expiry, prserr := strconv.ParseInt(val, 10, 64)
	if prserr != nil {
		// Parsing error
		logger.WithCtx(ctx).Error().Err(prserr).Msg("Parsing error in realtime.GetField")
		return 0, false, errors.InternalServerError("")
	}
	return expiry, true, nil
}

// Removes the given points from the event's heartbeat hash.
func (r repository) DeleteFields(ctx context.Context, logger log.Logger, eventCode string, pointCodes ...string) error {
	if len(pointCodes) == 0 {
		return nil
	}
	_, dberr := r.db.Client().HDel(ctx, heartbeatKey(eventCode), pointCodes...).Result()
	if dberr != nil && dberr != redis.Nil {
		// Error during interacting with DB
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.HDel() in realtime.DeleteFields")
		return errors.InternalServerError("")
	}
	return nil
}

// Returns every point with a heartbeat entry under the event along with its expiry.
func (r repository) ListFields(ctx context.Context, logger log.Logger, eventCode string) (map[string]int64, error) {
	entries := make(map[string]int64)
	raw, dberr := r.db.Client().HGetAll(ctx, heartbeatKey(eventCode)).Result()
	if dberr != nil && dberr != redis.Nil {
		// Error during interacting with DB
		logger.WithCtx(ctx).Error().Err(dberr).Msg("Error occured during execution of redis.HGetAll() in realtime.ListFields")
		return entries, errors.InternalServerError("")
	}
	for pointCode, val := range raw {
		expiry, prserr := strconv.ParseInt(val, 10, 64)
		if prserr != nil {
			// Malformed entry, skip it
			logger.WithCtx(ctx).Error().Err(prserr).Msg("Parsing error in realtime.ListFields")
			continue
		}
		entries[pointCode] = expiry
	}
	return entries, nil
}
