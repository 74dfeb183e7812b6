// Service layer of the internal package guest.

package guest

import (
	"Gatepass/internal/entity"
	"Gatepass/internal/errors"
	"Gatepass/internal/event"
	"Gatepass/internal/poc"
	"Gatepass/pkg/log"
	"context"
	"time"

	"github.com/asaskevich/govalidator"
)

// Service layer of internal package guest which encapsulates guest CRUD and check-in logic of Gatepass.
// Check-in persistence here is independent of the realtime relay: the POC client
// calls this REST operation to record the check-in and separately emits a
// new_checkin websocket message so the watching admin sees it live.
type Service interface {
	// Registers a guest under an event owned by the calling admin.
	registerguest(ctx context.Context, guest *entity.Guest, username string) error
	// Checks a guest in at a point of check-in, recording time and hourly stats.
	checkinguest(ctx context.Context, checkin entity.GuestCheckin) (entity.Guest, error)
	// Lists all guests under an event.
	getguests(ctx context.Context, eventCode string) ([]entity.Guest, error)
	// Returns hourly check-in counters for an event.
	getcheckinstats(ctx context.Context, eventCode string, username string) (map[string]int64, error)
}

// Object of this will be passed around from main to routers to API.
// Helps to access the service layer interface and call methods.
// Also helps to pass objects to be used from outer layer.
type service struct {
	guestRepo Repository
	eventRepo event.Repository
	pocRepo   poc.Repository
	logger    log.Logger
}

// Helps to access the service layer interface and call methods. Service object is passed from main.
func NewService(guestRepo Repository, eventRepo event.Repository, pocRepo poc.Repository, logger log.Logger) Service {
	return service{guestRepo, eventRepo, pocRepo, logger}
}

func (s service) registerguest(ctx context.Context, guest *entity.Guest, username string) error {
	valerr := s.validateData(ctx, guest)
	if valerr != nil {
		// Error occured during validation
		return valerr
	}
	// The parent event must exist and be owned by the caller
	parent, dberr := s.eventRepo.GetEvent(ctx, s.logger, guest.EventCode)
	if dberr != nil {
		// Error occured in GetEvent()
		return dberr
	}
	if parent.Admin != username {
		return errors.Forbidden("Only the event admin can register guests")
	}
	// Check if a guest with this code already exists under the event
	available, dberr := s.guestRepo.HasGuest(ctx, s.logger, guest.EventCode, guest.Code)
	if dberr != nil {
		// Error occured in HasGuest()
		return dberr
	} else if available {
		valerr := errors.New("guest_code:Guest code is already taken for this event")
		return errors.GenerateValidationErrorResponse([]error{valerr})
	}

	// Save guest details in the DB
	_, dberr = s.guestRepo.SetGuest(ctx, s.logger, guest, true)
	if dberr != nil {
		return dberr
	}

	return nil
}

func (s service) checkinguest(ctx context.Context, checkin entity.GuestCheckin) (entity.Guest, error) {
	valerr := s.validateData(ctx, &checkin)
	if valerr != nil {
		// Error occured during validation
		return entity.Guest{}, valerr
	}
	// Guest and point must both exist under the event
	available, dberr := s.guestRepo.HasGuest(ctx, s.logger, checkin.EventCode, checkin.GuestCode)
	if dberr != nil {
		// Error occured in HasGuest()
		return entity.Guest{}, dberr
	} else if !available {
		return entity.Guest{}, errors.NotFound("Guest not available")
	}
	available, dberr = s.pocRepo.HasPoc(ctx, s.logger, checkin.EventCode, checkin.PointCode)
	if dberr != nil {
		// Error occured in HasPoc()
		return entity.Guest{}, dberr
	} else if !available {
		return entity.Guest{}, errors.NotFound("Point of check-in not available")
	}

	checkinTime := time.Now().Unix()
	dberr = s.guestRepo.SetCheckin(ctx, s.logger, checkin, checkinTime)
	if dberr != nil {
		// Error occured in SetCheckin()
		return entity.Guest{}, dberr
	}
	// Hourly stats bucket, failure here shouldn't fail the check-in itself
	if dberr = s.guestRepo.IncrCheckinBucket(ctx, s.logger, checkin.EventCode, checkinTime); dberr != nil {
		s.logger.WithCtx(ctx).Error().Err(dberr).Msg("Couldn't bump hourly check-in bucket")
	}

	return s.guestRepo.GetGuest(ctx, s.logger, checkin.EventCode, checkin.GuestCode)
}

func (s service) getguests(ctx context.Context, eventCode string) ([]entity.Guest, error) {
	// The parent event must exist
	available, dberr := s.eventRepo.HasEvent(ctx, s.logger, eventCode)
	if dberr != nil {
		// Error occured in HasEvent()
		return []entity.Guest{}, dberr
	} else if !available {
		return []entity.Guest{}, errors.NotFound("Event not available")
	}
	codes, dberr := s.guestRepo.GetEventGuests(ctx, s.logger, eventCode)
	if dberr != nil {
		// Error occured in GetEventGuests()
		return []entity.Guest{}, dberr
	}
	guests := []entity.Guest{}
	for _, code := range codes {
		guest, dberr := s.guestRepo.GetGuest(ctx, s.logger, eventCode, code)
		if dberr != nil {
			// Issues in GetGuest()
			return guests, dberr
		}
		guests = append(guests, guest)
	}
	return guests, nil
}

func (s service) getcheckinstats(ctx context.Context, eventCode string, username string) (map[string]int64, error) {
	// The parent event must exist and be owned by the caller
	parent, dberr := s.eventRepo.GetEvent(ctx, s.logger, eventCode)
	if dberr != nil {
		// Error occured in GetEvent()
		return map[string]int64{}, dberr
	}
	if parent.Admin != username {
		return map[string]int64{}, errors.Forbidden("Only the event admin can view check-in stats")
	}
	return s.guestRepo.GetCheckinStats(ctx, s.logger, eventCode)
}

// Helper to validate incoming data against validation-tags mentioned in its entity.
func (s service) validateData(ctx context.Context, data interface{}) error {
	_, valerr := govalidator.ValidateStruct(data)
	if valerr != nil {
		valerr := valerr.(govalidator.Errors).Errors()
		return errors.GenerateValidationErrorResponse(valerr)
	}
	return nil
}
