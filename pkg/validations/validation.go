// All global custom validations in Gatepass are defined here.
// These validations are allowed to be used anywhere in the application.

package validations

import (
	"Gatepass/pkg/log"
	"context"

	"github.com/asaskevich/govalidator"
)

func RegisterCustomValidations(ctx context.Context, logger log.Logger) {
	// This global validation doesn't allow whitespace in input.
	govalidator.TagMap["nospace"] = govalidator.Validator(func(str string) bool {
		return !govalidator.HasWhitespace(str)
	})
	// Event, point and guest codes are short, URL-safe identifiers.
	govalidator.TagMap["codeformat"] = govalidator.Validator(func(str string) bool {
		return govalidator.Matches(str, `^[A-Za-z0-9-]{2,20}$`)
	})
	logger.WithCtx(ctx).Info().Msg("Registered custom validations.")
}
