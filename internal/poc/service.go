// Service layer of the internal package poc.

package poc

import (
	"Gatepass/internal/entity"
	"Gatepass/internal/errors"
	"Gatepass/internal/event"
	"Gatepass/pkg/log"
	"context"
	"time"

	"github.com/asaskevich/govalidator"
)

// Service layer of internal package poc which encapsulates point-of-checkin CRUD logic of Gatepass.
type Service interface {
	// Creates a point of check-in under an event owned by the calling admin.
	createpoc(ctx context.Context, poc *entity.Poc, username string) error
	// Lists all points of check-in under an event.
	getpocs(ctx context.Context, eventCode string) ([]entity.Poc, error)
}

// Object of this will be passed around from main to routers to API.
// Helps to access the service layer interface and call methods.
// Also helps to pass objects to be used from outer layer.
type service struct {
	pocRepo   Repository
	eventRepo event.Repository
	logger    log.Logger
}

// Helps to access the service layer interface and call methods. Service object is passed from main.
func NewService(pocRepo Repository, eventRepo event.Repository, logger log.Logger) Service {
	return service{pocRepo, eventRepo, logger}
}

func (s service) createpoc(ctx context.Context, poc *entity.Poc, username string) error {
	valerr := s.validatePocData(ctx, poc)
	if valerr != nil {
		// Error occured during validation
		return valerr
	}
	// The parent event must exist and be owned by the caller
	parent, dberr := s.eventRepo.GetEvent(ctx, s.logger, poc.EventCode)
	if dberr != nil {
		// Error occured in GetEvent()
		return dberr
	}
	if parent.Admin != username {
		return errors.Forbidden("Only the event admin can add points of check-in")
	}
	// Check if a poc with this code already exists under the event
	available, dberr := s.pocRepo.HasPoc(ctx, s.logger, poc.EventCode, poc.Code)
	if dberr != nil {
		// Error occured in HasPoc()
		return dberr
	} else if available {
		valerr := errors.New("point_code:Point code is already taken for this event")
		return errors.GenerateValidationErrorResponse([]error{valerr})
	}

	// Set poc creation timestamp
	poc.Created = time.Now().Unix()

	// Save poc details in the DB
	_, dberr = s.pocRepo.SetPoc(ctx, s.logger, poc, true)
	if dberr != nil {
		return dberr
	}

	return nil
}

func (s service) getpocs(ctx context.Context, eventCode string) ([]entity.Poc, error) {
	// The parent event must exist
	available, dberr := s.eventRepo.HasEvent(ctx, s.logger, eventCode)
	if dberr != nil {
		// Error occured in HasEvent()
		return []entity.Poc{}, dberr
	} else if !available {
		return []entity.Poc{}, errors.NotFound("Event not available")
	}
	codes, dberr := s.pocRepo.GetEventPocs(ctx, s.logger, eventCode)
	if dberr != nil {
		// Error occured in GetEventPocs()
		return []entity.Poc{}, dberr
	}
	pocs := []entity.Poc{}
	for _, code := range codes {
		poc, dberr := s.pocRepo.GetPoc(ctx, s.logger, eventCode, code)
		if dberr != nil {
			// Issues in GetPoc()
			return pocs, dberr
		}
		pocs = append(pocs, poc)
	}
	return pocs, nil
}

// Helper to validate the poc data against validation-tags mentioned in its entity.
func (s service) validatePocData(ctx context.Context, poc *entity.Poc) error {
	_, valerr := govalidator.ValidateStruct(poc)
	if valerr != nil {
		valerr := valerr.(govalidator.Errors).Errors()
		return errors.GenerateValidationErrorResponse(valerr)
	}
	return nil
}
