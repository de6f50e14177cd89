package api

import (
	"errors"
	"net/http"

	"github.com/andrebq/shop/auth"
	"github.com/andrebq/shop/internal/httpserver"
	"github.com/andrebq/shop/internal/logutil"
	"github.com/julienschmidt/httprouter"
)

type (
	// Realm connects the auth package to http handlers
	Realm struct {
		tokens        auth.TokenVerifier
		authenticator *auth.Authenticator
	}

	loginRequest struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	loginResponse struct {
		Token string `json:"token"`
	}
)

const (
	invalidTokenMsg = "Expired or invalid JWT token"
)

func NewRealm(tokens auth.TokenVerifier, authenticator *auth.Authenticator) *Realm {
	return &Realm{
		tokens:        tokens,
		authenticator: authenticator,
	}
}

// Register adds the login endpoint to router
func (s *Realm) Register(router *httprouter.Router) {
	router.POST("/authentication/login", s.Login)
}

// Authenticate attaches the identity from the bearer token to the request context.
//
// Requests without a token are forwarded without an identity, requests with
// an invalid token never reach next.
func (s *Realm) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, found, err := auth.AuthenticateRequest(s.tokens, r)
		if err != nil {
			log := logutil.GetOrDefault(r.Context())
			var invalid auth.TokenInvalid
			errors.As(err, &invalid)
			log.Warn().Err(err).Bool("token.expired", invalid.Expired).Msg("Rejected bearer token")
			httpserver.Error(w, http.StatusUnauthorized, invalidTokenMsg)
			return
		}
		if found {
			r = r.WithContext(auth.WithIdentity(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// Require only calls h if the request identity holds role
func (s *Realm) Require(role auth.Role, h httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		_, err := auth.Require(r.Context(), role)
		switch {
		case errors.Is(err, auth.Unauthenticated{}):
			httpserver.Error(w, http.StatusUnauthorized, err.Error())
			return
		case errors.As(err, &auth.Forbidden{}):
			httpserver.Error(w, http.StatusForbidden, err.Error())
			return
		case err != nil:
			httpserver.Error(w, http.StatusInternalServerError, "unable to authorize request")
			return
		}
		h(w, r, p)
	}
}

func (s *Realm) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	log := logutil.GetOrDefault(r.Context())
	var req loginRequest
	err := httpserver.DecodeJSON(w, r, &req)
	if err != nil {
		httpserver.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	password := auth.PlainText(req.Password)
	req.Password = ""
	defer password.Zero()
	token, err := s.authenticator.Login(r.Context(), req.Username, password)
	if errors.Is(err, auth.InvalidCredentials{}) {
		log.Warn().Str("username", req.Username).Msg("Invalid login attempt")
		httpserver.Error(w, http.StatusUnauthorized, err.Error())
		return
	} else if err != nil {
		log.Error().Err(err).Str("username", req.Username).Msg("Unable to perform login")
		httpserver.Error(w, http.StatusInternalServerError, "unable to perform login, check server logs")
		return
	}
	httpserver.JSON(w, http.StatusOK, loginResponse{Token: token})
}
