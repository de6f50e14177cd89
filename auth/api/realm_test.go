package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andrebq/shop/auth"
	"github.com/andrebq/shop/internal/testutil"
	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"
)

func acquireRealm(t *testing.T) (*Realm, *auth.Codec, func()) {
	ctx := context.Background()
	db, cleanup := testutil.AcquireStore(ctx, t)
	testutil.SeedUser(ctx, t, db, "bob", "bob-pwd", auth.RoleUser)
	testutil.SeedUser(ctx, t, db, "alice", "alice-pwd", auth.RoleAdmin, auth.RoleUser)
	codec := testutil.AcquireCodec(t, time.Hour)
	return NewRealm(codec, auth.NewAuthenticator(db, testutil.FastPasswords, codec)), codec, cleanup
}

func TestLogin(t *testing.T) {
	realm, codec, cleanup := acquireRealm(t)
	defer cleanup()
	router := httprouter.New()
	realm.Register(router)

	apitest.Handler(router).
		Post("/authentication/login").
		JSON(`{"username":"bob","password":"bob-pwd"}`).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Present("$.token")).
		Assert(func(res *http.Response, _ *http.Request) error {
			var body loginResponse
			if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
				return err
			}
			id, err := codec.Verify(body.Token)
			if err != nil {
				return err
			}
			if id.Username != "bob" || !id.Has(auth.RoleUser) || id.Has(auth.RoleAdmin) {
				return fmt.Errorf("unexpected identity %v", id)
			}
			return nil
		}).
		End()

	for _, body := range []string{
		`{"username":"bob","password":"wrong"}`,
		`{"username":"nobody","password":"bob-pwd"}`,
		`{"username":"","password":""}`,
	} {
		apitest.Handler(router).
			Post("/authentication/login").
			JSON(body).
			Expect(t).
			Status(http.StatusUnauthorized).
			Assert(jsonpath.Equal("$.error", "invalid username/password provided")).
			Assert(jsonpath.NotPresent("$.token")).
			End()
	}

	apitest.Handler(router).
		Post("/authentication/login").
		Body(`{"username":`).
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Present("$.error")).
		End()
}

func TestAuthenticate(t *testing.T) {
	realm, codec, cleanup := acquireRealm(t)
	defer cleanup()

	var count uint32
	router := httprouter.New()
	router.GET("/customers", realm.Require(auth.RoleUser, func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		atomic.AddUint32(&count, 1)
		id, _ := auth.IdentityFrom(r.Context())
		w.Write([]byte(id.Username))
	}))
	router.GET("/users", realm.Require(auth.RoleAdmin, func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		atomic.AddUint32(&count, 1)
	}))
	router.GET("/public", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		_, found := auth.IdentityFrom(r.Context())
		fmt.Fprintf(w, "%v", found)
	})
	protected := realm.Authenticate(router)

	bobToken := testutil.Token(t, codec, "bob", auth.RoleUser)
	aliceToken := testutil.Token(t, codec, "alice", auth.RoleAdmin, auth.RoleUser)
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "bob",
		"auth": []string{"USER"},
		"iat":  time.Now().Add(-2 * time.Hour).Unix(),
		"exp":  time.Now().Add(-time.Hour).Unix(),
	}).SignedString(testutil.Secret)
	if err != nil {
		t.Fatal(err)
	}

	apitest.Handler(protected).Get("/public").Expect(t).Status(http.StatusOK).Body("false").End()
	apitest.Handler(protected).Get("/public").Header("Authorization", "Bearer "+bobToken).Expect(t).Status(http.StatusOK).Body("true").End()

	apitest.Handler(protected).Get("/customers").Expect(t).Status(http.StatusUnauthorized).End()
	for _, header := range []string{
		"Bearer " + bobToken + "x",
		"Bearer " + expired,
		"Bearer not-a-token",
	} {
		apitest.Handler(protected).Get("/customers").
			Header("Authorization", header).
			Expect(t).
			Status(http.StatusUnauthorized).
			Assert(jsonpath.Equal("$.error", "Expired or invalid JWT token")).
			End()
		// an invalid token is rejected even on routes that don't require one
		apitest.Handler(protected).Get("/public").
			Header("Authorization", header).
			Expect(t).
			Status(http.StatusUnauthorized).
			End()
	}
	if atomic.LoadUint32(&count) != 0 {
		t.Fatal("Protected endpoint should not have been called")
	}

	apitest.Handler(protected).Get("/customers").Header("Authorization", "Bearer "+bobToken).Expect(t).Status(http.StatusOK).Body("bob").End()
	apitest.Handler(protected).Get("/users").Header("Authorization", "Bearer "+bobToken).
		Expect(t).
		Status(http.StatusForbidden).
		Assert(jsonpath.Equal("$.error", "role ADMIN required")).
		End()
	apitest.Handler(protected).Get("/users").Header("Authorization", "Bearer "+aliceToken).Expect(t).Status(http.StatusOK).End()
	apitest.Handler(protected).Get("/customers").Header("Authorization", "Bearer "+aliceToken).Expect(t).Status(http.StatusOK).Body("alice").End()

	if atomic.LoadUint32(&count) != 3 {
		t.Fatalf("Protected endpoints should have been called 3 times, got %v", count)
	}
}
