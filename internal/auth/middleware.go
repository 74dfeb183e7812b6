// Auth middleware is used to validate JWT token sent via the Authorization header or cookie.
// This verification is needed for endpoints which needs authenticated accounts,
// including the websocket handshake of the realtime gateway.

package auth

import (
	"Gatepass/internal/errors"
	"Gatepass/pkg/log"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

// This middleware is used to verify and validate incoming JWT, TokenType can either be "access_token" or "refresh_token".
// Access-Secret and Refresh-Secret will be used to parse access_token and refresh_token respectively.
// Blocks the request to go further into other handlers if token is invalid.
func AuthMiddleware(logger log.Logger, authRepo Repository, tokenType string, secret string) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		// Extract token from Authorization header or cookie
		token := fetchToken(gctx, tokenType)
		// Parse the token with secret if the token is valid
		vrftoken, valerr := parseIntoJWT(gctx, logger, secret, token)
		if valerr != nil {
			// Abort the call chain for the request here as the account is unauthenticated
			gctx.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		// Check the parsed token for validity
		if !vrftoken.Valid {
			gctx.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		// Extract tokenUUID, username and role from token claims
		tokenclaims, ok := vrftoken.Claims.(jwt.MapClaims)
		if !ok {
			// Type assertion error
			gctx.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		tokenUUID, ok := tokenclaims[tokenType+"_uuid"].(string)
		if !ok {
			// Type assertion error
			logger.WithCtx(gctx).Error().Msg("Type assertion error in AuthMiddleware")
			gctx.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		username, ok := tokenclaims["username"].(string)
		if !ok {
			// Type assertion error
			gctx.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		role, ok := tokenclaims["role"].(string)
		if !ok {
			// Type assertion error
			gctx.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		// Verify if tokenUUID:username is available in DB
		valid, dberr := authRepo.TokenExists(gctx, logger, tokenUUID, username)
		if dberr != nil {
			// Error in TokenExists
			gctx.AbortWithStatus(http.StatusInternalServerError)
			return
		} else if !valid {
			// token missing in DB or mismatch with username
			gctx.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		// In case of tokenType = "refresh_token", delete the previous refresh_token first (rotation)
		if tokenType == "refresh_token" {
			dberr = authRepo.DelToken(gctx, logger, tokenUUID)
			if dberr != nil {
				err, ok := dberr.(errors.ErrorResponse)
				if !ok || err.Status != 404 {
					// Error during DB interaction
					gctx.AbortWithStatus(http.StatusInternalServerError)
					return
				}
				// Maybe the key wasn't present in the DB at all
				gctx.AbortWithStatus(http.StatusUnauthorized)
				return
			}
		}
		// Set username and role in request's context
		// This pair will be used further down in the handler chain
		gctx.Set("Username", username)
		gctx.Set("Role", role)
		// Set account's accessToken uuid which might be useful during logout
		if tokenType == "access_token" {
			gctx.Set("access_token", tokenUUID)
		}
		gctx.Next()
	}
}

// RoleMiddleware gates a route group to accounts holding the required role.
// Expects AuthMiddleware to have populated "Role" in the request context already.
func RoleMiddleware(logger log.Logger, requiredRole string) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		role, ok := gctx.Value("Role").(string)
		if !ok {
			// Type assertion error
			logger.WithCtx(gctx).Error().Msg("Type assertion error in RoleMiddleware")
			gctx.AbortWithStatusJSON(http.StatusInternalServerError, errors.InternalServerError(""))
			return
		}
		if role != requiredRole {
			gctx.AbortWithStatusJSON(http.StatusForbidden, errors.Forbidden(""))
			return
		}
		gctx.Next()
	}
}

// Helper to fetch token string from the Authorization header, falling back to cookie.
// Websocket and REST clients send "Authorization: Bearer <token>", browser clients rely on cookies.
func fetchToken(gctx *gin.Context, tokenType string) string {
	if tokenType == "access_token" {
		header := gctx.GetHeader("Authorization")
		if strings.HasPrefix(header, "Bearer ") {
			return strings.TrimPrefix(header, "Bearer ")
		}
	}
	token, err := gctx.Request.Cookie(tokenType)
	if err != nil {
		return ""
	}
	return token.Value
}

// Helper to parse and return token string fetched from header or cookie.
// secret can be either Access-Secret for accessToken parsing or Refresh-Secret for refreshToken.
func parseIntoJWT(gctx *gin.Context, logger log.Logger, secret string, token string) (*jwt.Token, error) {
	return jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		// Check the signing method
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			err := errors.New(fmt.Sprintf("Unexpected signing method found: %s", t.Header["alg"]))
			logger.WithCtx(gctx).Error().Err(err)
			return nil, err
		}
		return []byte(secret), nil
	})
}
