package httpx

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/logging"
	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
	"github.com/dmitrijs2005/shopkeeper/internal/server/services"
)

const (
	msgDuplicateUser   = "Existing user found with same email id or email Address"
	msgWrongPassword   = "Wrong Password"
	msgWrongEmail      = "Wrong Email Id"
	msgWrongCredential = "Wrong Email Id or Password"
	msgUserNotFound    = "User not found"
	msgInvalidRequest  = "Invalid request"
	msgInternal        = "Internal server error"
)

// writeServiceError maps service failures to status codes and bodies.
func (r *Router) writeServiceError(w http.ResponseWriter, req *http.Request, op string, err error) {
	switch {
	case errors.Is(err, common.ErrIdentityNotFound):
		writeFailure(w, http.StatusNotFound, msgUserNotFound)
	case errors.Is(err, common.ErrInvalidSlot), errors.Is(err, common.ErrInvalidInput):
		writeFailure(w, http.StatusBadRequest, msgInvalidRequest)
	default:
		logging.FromContext(req.Context(), r.logger).Error(req.Context(), "request failed", "op", op, "error", err)
		writeFailure(w, http.StatusInternalServerError, msgInternal)
	}
}

func (r *Router) handleSignup(w http.ResponseWriter, req *http.Request) {
	var body signupRequest
	if err := decodeJSON(w, req, &body); err != nil {
		writeFailure(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	token, err := r.identity.Register(req.Context(), body.Username, body.Email, body.Password)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateIdentity) {
			writeFailure(w, http.StatusBadRequest, msgDuplicateUser)
			return
		}
		r.writeServiceError(w, req, "signup", err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Success: true, Token: token})
}

func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) {
	var body loginRequest
	if err := decodeJSON(w, req, &body); err != nil {
		writeFailure(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	token, err := r.identity.Authenticate(req.Context(), body.Email, body.Password)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, tokenResponse{Success: true, Token: token})
	case r.collapseLoginErrors && (errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrInvalidCredential)):
		writeFailure(w, http.StatusOK, msgWrongCredential)
	case errors.Is(err, common.ErrorNotFound):
		writeFailure(w, http.StatusOK, msgWrongEmail)
	case errors.Is(err, common.ErrInvalidCredential):
		writeFailure(w, http.StatusOK, msgWrongPassword)
	default:
		r.writeServiceError(w, req, "login", err)
	}
}

func (r *Router) handleAddToCart(w http.ResponseWriter, req *http.Request) {
	r.mutateCart(w, req, "increment", r.cart.Increment, "Added")
}

func (r *Router) handleRemoveFromCart(w http.ResponseWriter, req *http.Request) {
	r.mutateCart(w, req, "decrement", r.cart.Decrement, "Removed")
}

func (r *Router) mutateCart(w http.ResponseWriter, req *http.Request, op string, fn func(context.Context, services.Principal, int) error, ack string) {
	p, ok := principalFromContext(req.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, authFailure{Errors: msgInvalidToken})
		return
	}

	var body cartItemRequest
	if err := decodeJSON(w, req, &body); err != nil || !body.ItemID.set {
		writeFailure(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	err := fn(req.Context(), p, body.ItemID.value)
	r.metrics.CartOperation(op, err)
	if err != nil {
		r.writeServiceError(w, req, op, err)
		return
	}
	writeText(w, http.StatusOK, ack)
}

func (r *Router) handleGetCartItems(w http.ResponseWriter, req *http.Request) {
	p, ok := principalFromContext(req.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, authFailure{Errors: msgInvalidToken})
		return
	}

	cart, err := r.cart.Read(req.Context(), p)
	r.metrics.CartOperation("read", err)
	if err != nil {
		r.writeServiceError(w, req, "read", err)
		return
	}
	writeJSON(w, http.StatusOK, cartBody(cart))
}

// cartBody renders a cart as a JSON object keyed by slot.
func cartBody(c models.Cart) map[string]int {
	out := make(map[string]int, len(c))
	for slot, qty := range c {
		out[strconv.Itoa(slot)] = qty
	}
	return out
}

func (r *Router) handleAddProduct(w http.ResponseWriter, req *http.Request) {
	var body addProductRequest
	if err := decodeJSON(w, req, &body); err != nil {
		writeFailure(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	p, err := r.catalog.AddProduct(req.Context(), services.NewProduct{
		Name:     body.Name,
		Image:    body.Image,
		Category: body.Category,
		NewPrice: float64(body.NewPrice),
		OldPrice: float64(body.OldPrice),
	})
	if err != nil {
		r.writeServiceError(w, req, "addproduct", err)
		return
	}
	logging.FromContext(req.Context(), r.logger).Info(req.Context(), "product added", "id", p.ID, "name", p.Name)
	writeJSON(w, http.StatusOK, productAck{Success: true, Name: p.Name})
}

func (r *Router) handleRemoveProduct(w http.ResponseWriter, req *http.Request) {
	var body removeProductRequest
	if err := decodeJSON(w, req, &body); err != nil || !body.ID.set {
		writeFailure(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	if err := r.catalog.RemoveProduct(req.Context(), body.ID.value); err != nil {
		r.writeServiceError(w, req, "removeproduct", err)
		return
	}
	logging.FromContext(req.Context(), r.logger).Info(req.Context(), "product removed", "id", body.ID.value)
	writeJSON(w, http.StatusOK, productAck{Success: true, Name: body.Name})
}

func (r *Router) handleAllProducts(w http.ResponseWriter, req *http.Request) {
	r.writeProducts(w, req, "allproducts", r.catalog.AllProducts)
}

func (r *Router) handleNewCollections(w http.ResponseWriter, req *http.Request) {
	r.writeProducts(w, req, "newcollections", r.catalog.NewCollections)
}

func (r *Router) handlePopularInWomen(w http.ResponseWriter, req *http.Request) {
	r.writeProducts(w, req, "popularinwomen", r.catalog.PopularInWomen)
}

func (r *Router) writeProducts(w http.ResponseWriter, req *http.Request, op string, list func(context.Context) ([]models.Product, error)) {
	products, err := list(req.Context())
	if err != nil {
		r.writeServiceError(w, req, op, err)
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

func (r *Router) handleUpload(w http.ResponseWriter, req *http.Request) {
	req.Body = http.MaxBytesReader(w, req.Body, maxImageBytes)
	if err := req.ParseMultipartForm(maxImageBytes); err != nil {
		writeFailure(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	file, header, err := req.FormFile("product")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	url, err := r.images.Upload(req.Context(), header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		r.writeServiceError(w, req, "upload", err)
		return
	}
	writeJSON(w, http.StatusOK, uploadResponse{Success: 1, ImageURL: url})
}

func (r *Router) handleImage(w http.ResponseWriter, req *http.Request) {
	url, err := r.images.PresignedURL(req.Context(), req.PathValue("key"))
	if err != nil {
		r.writeServiceError(w, req, "image", err)
		return
	}
	http.Redirect(w, req, url, http.StatusFound)
}
