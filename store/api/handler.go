package api

import (
	"context"
	"net/http"
	"time"

	"github.com/andrebq/shop/auth"
	authapi "github.com/andrebq/shop/auth/api"
	"github.com/andrebq/shop/internal/httpserver"
	"github.com/andrebq/shop/internal/logutil"
	"github.com/andrebq/shop/store"
	"github.com/julienschmidt/httprouter"
)

type (
	handler struct {
		db       *store.DB
		pictures *store.PictureCache
	}
)

// AsHandler exposes db over http, every route except login and
// health checks requires a bearer token accepted by realm
func AsHandler(db *store.DB, pictures *store.PictureCache, realm *authapi.Realm) http.Handler {
	h := &handler{db: db, pictures: pictures}
	router := httprouter.New()
	realm.Register(router)

	router.GET("/healthz", h.health)

	admin := func(fn httprouter.Handle) httprouter.Handle { return realm.Require(auth.RoleAdmin, fn) }
	router.POST("/users", admin(h.createUser))
	router.GET("/users", admin(h.listUsers))
	router.PUT("/users/:id", admin(h.updateUser))
	router.DELETE("/users/:id", admin(h.deleteUser))

	user := func(fn httprouter.Handle) httprouter.Handle { return realm.Require(auth.RoleUser, fn) }
	router.POST("/customers", user(h.createCustomer))
	router.GET("/customers", user(h.listCustomers))
	router.GET("/customers/:id", user(h.getCustomer))
	router.PUT("/customers/:id", user(h.updateCustomer))
	router.DELETE("/customers/:id", user(h.deleteCustomer))
	router.GET("/customers/:id/picture", user(h.customerPicture))
	router.POST("/pictures", user(h.uploadPicture))

	router.PanicHandler = func(w http.ResponseWriter, r *http.Request, v interface{}) {
		log := logutil.GetOrDefault(r.Context())
		log.Error().Interface("panic", v).Msg("Handler panic")
		httpserver.Error(w, http.StatusInternalServerError, "unexpected error, check server logs")
	}
	return realm.Authenticate(router)
}

func (h *handler) health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		httpserver.Error(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	httpserver.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) createUser(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req createUserRequest
	if err := httpserver.DecodeJSON(w, r, &req); err != nil {
		httpserver.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	in, err := req.input()
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer in.Password.Zero()
	u, err := h.db.CreateUser(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusCreated, toUser(u))
}

func (h *handler) listUsers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	users, err := h.db.ListActiveUsers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, listDTO{Items: toUsers(users)})
}

func (h *handler) updateUser(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var req updateUserRequest
	if err := httpserver.DecodeJSON(w, r, &req); err != nil {
		httpserver.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	in, err := req.input()
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer in.Password.Zero()
	u, err := h.db.UpdateUser(r.Context(), p.ByName("id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, toUser(u))
}

func (h *handler) deleteUser(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	u, err := h.db.MarkInactive(r.Context(), p.ByName("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, toUser(u))
}

func (h *handler) createCustomer(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req customerRequest
	if err := httpserver.DecodeJSON(w, r, &req); err != nil {
		httpserver.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	c, err := h.db.CreateCustomer(r.Context(), req.input(), requester(r))
	if err != nil {
		writeRequesterError(w, r, err)
		return
	}
	w.Header().Set("Location", "/customers/"+c.ID)
	httpserver.JSON(w, http.StatusCreated, toCustomer(c))
}

func (h *handler) listCustomers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	customers, err := h.db.ListCustomers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, listDTO{Items: toCustomers(customers)})
}

func (h *handler) getCustomer(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	c, err := h.db.CustomerByID(r.Context(), p.ByName("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, toCustomer(c))
}

func (h *handler) updateCustomer(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var req customerRequest
	if err := httpserver.DecodeJSON(w, r, &req); err != nil {
		httpserver.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	c, err := h.db.UpdateCustomer(r.Context(), p.ByName("id"), req.input(), requester(r))
	if err != nil {
		writeRequesterError(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusOK, toCustomer(c))
}

func (h *handler) deleteCustomer(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	err := h.db.DeleteCustomer(r.Context(), p.ByName("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) customerPicture(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	pic, err := h.pictures.CustomerPicture(r.Context(), p.ByName("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	tag := etag(pic)
	w.Header().Set("ETag", tag)
	if r.Header.Get("If-None-Match") == tag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	httpserver.JSON(w, http.StatusOK, toPicture(pic))
}

func (h *handler) uploadPicture(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req pictureRequest
	if err := httpserver.DecodeJSON(w, r, &req); err != nil {
		httpserver.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	pic, err := h.db.StorePicture(r.Context(), req.ImageBase64)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpserver.JSON(w, http.StatusCreated, toPicture(pic))
}

// requester is only called after realm.Require accepted the request
func requester(r *http.Request) string {
	id, _ := auth.IdentityFrom(r.Context())
	return id.Username
}
