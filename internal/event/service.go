// Service layer of the internal package event.

package event

import (
	"Gatepass/internal/entity"
	"Gatepass/internal/errors"
	"Gatepass/pkg/log"
	"context"
	"time"

	"github.com/asaskevich/govalidator"
)

// Service layer of internal package event which encapsulates event CRUD logic of Gatepass.
type Service interface {
	// Creates an event in Gatepass owned by the calling admin.
	createevent(ctx context.Context, event *entity.Event) error
	// Fetches event data along with ownership info for the caller.
	getevent(ctx context.Context, eventCode string, username string) (map[string]any, error)
	// Lists events created by the calling admin.
	getadminevents(ctx context.Context, admin string) ([]entity.Event, error)
}

// Object of this will be passed around from main to routers to API.
// Helps to access the service layer interface and call methods.
// Also helps to pass objects to be used from outer layer.
type service struct {
	eventRepo Repository
	logger    log.Logger
}

// Helps to access the service layer interface and call methods. Service object is passed from main.
func NewService(eventRepo Repository, logger log.Logger) Service {
	return service{eventRepo, logger}
}

func (s service) createevent(ctx context.Context, event *entity.Event) error {
	valerr := s.validateEventData(ctx, event)
	if valerr != nil {
		// Error occured during validation
		return valerr
	}
	// Check if an event with this code already exists in Gatepass
	available, dberr := s.eventRepo.HasEvent(ctx, s.logger, event.Code)
	if dberr != nil {
		// Error occured in HasEvent()
		return dberr
	} else if available {
		valerr := errors.New("event_code:Event code is already taken")
		return errors.GenerateValidationErrorResponse([]error{valerr})
	}

	// Set event creation timestamp
	event.Created = time.Now().Unix()
	// Set poc and guest list foreign keys
	event.PocsListKey = "event-pocs:" + event.Code
	event.GuestsListKey = "event-guests:" + event.Code

	// Save event details in the DB
	_, dberr = s.eventRepo.SetEvent(ctx, s.logger, event, true)
	if dberr != nil {
		return dberr
	}

	return nil
}

func (s service) getevent(ctx context.Context, eventCode string, username string) (map[string]any, error) {
	response := make(map[string]any)
	event, dberr := s.eventRepo.GetEvent(ctx, s.logger, eventCode)
	if dberr != nil {
		// Error occured in GetEvent()
		return response, dberr
	}
	response["event"] = event
	response["isAdmin"] = username == event.Admin
	return response, nil
}

func (s service) getadminevents(ctx context.Context, admin string) ([]entity.Event, error) {
	codes, dberr := s.eventRepo.GetAdminEvents(ctx, s.logger, admin)
	if dberr != nil {
		// Error occured in GetAdminEvents()
		return []entity.Event{}, dberr
	}
	events := []entity.Event{}
	for _, code := range codes {
		event, dberr := s.eventRepo.GetEvent(ctx, s.logger, code)
		if dberr != nil {
			// Issues in GetEvent()
			return events, dberr
		}
		events = append(events, event)
	}
	return events, nil
}

// Helper to validate the event data against validation-tags mentioned in its entity.
func (s service) validateEventData(ctx context.Context, event *entity.Event) error {
	_, valerr := govalidator.ValidateStruct(event)
	if valerr != nil {
		valerr := valerr.(govalidator.Errors).Errors()
		return errors.GenerateValidationErrorResponse(valerr)
	}
	return nil
}
