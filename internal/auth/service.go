// Service layer of the internal package authentication.

package auth

import (
	"Gatepass/internal/account"
	"Gatepass/internal/entity"
	"Gatepass/internal/errors"
	"Gatepass/pkg/log"
	"context"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"golang.org/x/crypto/bcrypt"
)

// Service layer of internal package auth which encapsulates authentication logic of Gatepass.
type Service interface {
	// Registers an account in Gatepass with valid credentials and an admin or poc role
	register(ctx context.Context, acc entity.Account) (map[string]string, error)
	// Verifies credentials of an existing account and issues a fresh token pair
	login(ctx context.Context, acc entity.Account) (map[string]string, error)
	// Deletes the access token of the calling account
	logout(ctx context.Context, accessTokenUUID string) error
	// Generates a fresh token pair for an account, used after refresh-token rotation
	refreshToken(ctx context.Context, username string, role string) (map[string]string, error)
}

// Object of this will be passed around from main to routers to API.
// Helps to access the service layer interface and call methods.
// Also helps to pass objects to be used from outer layer.
type service struct {
	accSigningKey string
	refSigningKey string
	accountRepo   account.Repository
	authRepo      Repository
	logger        log.Logger
}

// Helps to access the service layer interface and call methods. Service object is passed from main.
func NewService(accSigningKey string, refSigningKey string, accountRepo account.Repository, authRepo Repository, logger log.Logger) Service {
	return service{accSigningKey, refSigningKey, accountRepo, authRepo, logger}
}

func (s service) register(ctx context.Context, acc entity.Account) (map[string]string, error) {
	token := make(map[string]string)

	// Validate the received account data which is serialized to entity.Account struct
	valerr := s.validateAccountData(ctx, acc)
	if valerr != nil {
		// Error occured during validation
		return token, valerr
	}

	// Check for account availability against acc.Username
	available, dberr := s.accountRepo.HasAccount(ctx, s.logger, acc.Username)
	if dberr != nil {
		// Error occured in HasAccount()
		return token, errors.InternalServerError("")
	} else if available {
		// Account by the received username is already available in the platform
		valerr := errors.New("username:username is already taken")
		return token, errors.GenerateValidationErrorResponse([]error{valerr})
	}

	// Hash account password and save the credentials in the account object
	hashedpwd, hasherr := s.generatePwDHash(ctx, acc.Password)
	if hasherr != nil {
		return token, errors.InternalServerError("")
	}
	acc.Password = hashedpwd

	// Save the account in the DB
	_, dberr = s.accountRepo.SetOrUpdateAccount(ctx, s.logger, acc, true)
	if dberr != nil {
		// Error occured in SetOrUpdateAccount()
		return token, dberr
	}

	return s.issueTokenPair(ctx, acc.Username, acc.Role)
}

func (s service) login(ctx context.Context, acc entity.Account) (map[string]string, error) {
	token := make(map[string]string)

	// Fetch the stored account to compare credentials
	stored, dberr := s.accountRepo.GetAccount(ctx, s.logger, acc.Username)
	if dberr != nil {
		// GetAccount returns NotFound if the account is absent; report both
		// absence and a wrong password the same way to the client
		err, ok := dberr.(errors.ErrorResponse)
		if ok && err.Status == 404 {
			return token, errors.Unauthorized("Invalid username or password")
		}
		return token, dberr
	}
	if !s.verifyPwDHash(acc.Password, stored.Password) {
		return token, errors.Unauthorized("Invalid username or password")
	}

	return s.issueTokenPair(ctx, stored.Username, stored.Role)
}

func (s service) logout(ctx context.Context, accessTokenUUID string) error {
	dberr := s.authRepo.DelToken(ctx, s.logger, accessTokenUUID)
	if dberr != nil {
		err, ok := dberr.(errors.ErrorResponse)
		if ok && err.Status == 404 {
			// Token already expired, logout is still a success
			return nil
		}
		return dberr
	}
	return nil
}

func (s service) refreshToken(ctx context.Context, username string, role string) (map[string]string, error) {
	// The used refresh token was already deleted by the auth middleware (rotation)
	return s.issueTokenPair(ctx, username, role)
}

// Helper to generate and persist a fresh access + refresh token pair for an account.
func (s service) issueTokenPair(ctx context.Context, username string, role string) (map[string]string, error) {
	token := make(map[string]string)

	jwtData, jwterr := s.createToken(ctx, username, role)
	if jwterr != nil {
		// Error during generating account's jwtData
		return token, errors.InternalServerError("")
	}
	// Save generated tokens with expiration into the DB
	dberr := s.authRepo.SetToken(ctx, s.logger, jwtData)
	if dberr != nil {
		// Error during saving account's JWT
		return token, errors.InternalServerError("")
	}

	token["access_token"] = jwtData.AccessToken
	token["refresh_token"] = jwtData.RefreshToken
	return token, nil
}

// Helper to validate the account data against validation-tags mentioned in its entity.
func (s service) validateAccountData(ctx context.Context, acc entity.Account) error {
	_, valerr := govalidator.ValidateStruct(acc)
	if valerr != nil {
		valerr := valerr.(govalidator.Errors).Errors()
		return errors.GenerateValidationErrorResponse(valerr)
	}
	return nil
}

// Helper to generate password hash and return in string type.
// Uses external package "bcrypt" and its function GenerateFromPassword.
func (s service) generatePwDHash(ctx context.Context, password string) (string, error) {
	pwdbyte, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.WithCtx(ctx).Error().Err(err).Msg("Error occured during Password encryption.")
		return "", errors.InternalServerError("")
	}
	return string(pwdbyte), nil
}

// Helper to verify incoming password with the actual hash of account's set password.
// Helpful during login verification of an account in Gatepass.
func (s service) verifyPwDHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

type JWTdata struct {
	Username        string `json:"username"`
	Role            string `json:"role"`
	AccessToken     string `json:"access_token"`
	AccTokenExp     int64  `json:"access_token_expiry"`
	AccessTokenUUID string `json:"access_token_uuid"`
	RefreshToken    string `json:"refresh_token"`
	RefTokenExp     int64  `json:"refresh_token_expiry"`
	RefTokenUUID    string `json:"refresh_token_uuid"`
}

// Helper to generate a JWT for an account given the claims data.
func (s service) generateJWT(ctx context.Context, claims jwt.Claims, signingKey string) (string, error) {
	token, jwterr := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(signingKey))
	if jwterr != nil {
		s.logger.Error().Err(jwterr).Msg("Error occured during JWT generation")
		return "", jwterr
	}
	return token, nil
}

// Helper to create a fresh access + refresh JWT pair carrying username and role claims.
func (s service) createToken(ctx context.Context, username string, role string) (*JWTdata, error) {
	jwtData := &JWTdata{Username: username, Role: role}

	// Access token is short-lived, bearer credential for REST and websocket handshakes
	jwtData.AccTokenExp = time.Now().Add(time.Minute * 30).Unix()
	jwtData.AccessTokenUUID = uuid.NewString()
	accClaims := jwt.MapClaims{
		"access_token_uuid": jwtData.AccessTokenUUID,
		"username":          username,
		"role":              role,
		"exp":               jwtData.AccTokenExp,
	}
	accessToken, jwterr := s.generateJWT(ctx, accClaims, s.accSigningKey)
	if jwterr != nil {
		return nil, jwterr
	}
	jwtData.AccessToken = accessToken

	// Refresh token is long-lived and rotated on every use
	jwtData.RefTokenExp = time.Now().Add(time.Hour * 24 * 7).Unix()
	jwtData.RefTokenUUID = uuid.NewString()
	refClaims := jwt.MapClaims{
		"refresh_token_uuid": jwtData.RefTokenUUID,
		"username":           username,
		"role":               role,
		"exp":                jwtData.RefTokenExp,
	}
	refreshToken, jwterr := s.generateJWT(ctx, refClaims, s.refSigningKey)
	if jwterr != nil {
		return nil, jwterr
	}
	jwtData.RefreshToken = refreshToken

	return jwtData, nil
}
