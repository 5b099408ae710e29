package handler

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/listapp/internal/apperror"
	"github.com/vyrodovalexey/listapp/internal/model"
	"github.com/vyrodovalexey/listapp/internal/store"
)

// Response messages.
const (
	msgItemNotFound      = "Item not found"
	msgRouteNotFound     = "Not Found"
	msgDeleted           = "Deleted"
	msgInvalidBody       = "invalid request body"
	msgBodyTooLarge      = "request body too large"
	msgPriceNotNumber    = "price must be a number"
	contentTypeForm      = "application/x-www-form-urlencoded"
	itemNamePathVariable = "name"
)

// EventPublisher receives item change events.
type EventPublisher interface {
	Publish(event model.ItemEvent)
}

// result is the success outcome of an item operation.
type result struct {
	status int
	body   any
}

// itemFunc performs one item operation and returns either a result or a classified error.
type itemFunc func(r *http.Request) (result, error)

// ItemHandler maps the /items endpoints onto the item store.
type ItemHandler struct {
	store  store.Store
	events EventPublisher
	logger *zap.Logger
}

// NewItemHandler creates a new ItemHandler. events may be nil.
func NewItemHandler(s store.Store, events EventPublisher, logger *zap.Logger) *ItemHandler {
	return &ItemHandler{
		store:  s,
		events: events,
		logger: logger,
	}
}

// RegisterRoutes registers the item routes and the catch-all 404 with the router.
// A known path with an unsupported method is treated as an unknown route.
//
// The router matches on the escaped path without cleaning it, so a name may
// contain "/" or "." when the client percent-encodes it. A trailing slash is
// accepted on every item route.
func (h *ItemHandler) RegisterRoutes(router *mux.Router) {
	router.UseEncodedPath()
	router.SkipClean(true)

	for _, path := range []string{"/items", "/items/"} {
		router.HandleFunc(path, h.ListItems).Methods(http.MethodGet, http.MethodHead)
		router.HandleFunc(path, h.CreateItem).Methods(http.MethodPost)
	}
	for _, path := range []string{"/items/{name}", "/items/{name}/"} {
		router.HandleFunc(path, h.GetItem).Methods(http.MethodGet, http.MethodHead)
		router.HandleFunc(path, h.UpdateItem).Methods(http.MethodPatch)
		router.HandleFunc(path, h.DeleteItem).Methods(http.MethodDelete)
	}

	router.NotFoundHandler = http.HandlerFunc(h.NotFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(h.NotFound)
}

// ListItems handles GET /items requests.
func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.listItems)
}

// GetItem handles GET /items/{name} requests.
func (h *ItemHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.getItem)
}

// CreateItem handles POST /items requests.
func (h *ItemHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.createItem)
}

// UpdateItem handles PATCH /items/{name} requests.
func (h *ItemHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.updateItem)
}

// DeleteItem handles DELETE /items/{name} requests.
func (h *ItemHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.deleteItem)
}

// NotFound handles requests that match no route.
func (h *ItemHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(h.logger, w, r, apperror.NotFound(msgRouteNotFound))
}

// serve runs fn and writes its result, or the error envelope when it fails.
func (h *ItemHandler) serve(w http.ResponseWriter, r *http.Request, fn itemFunc) {
	res, err := fn(r)
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}

	writeJSON(h.logger, w, res.status, res.body)
}

func (h *ItemHandler) listItems(r *http.Request) (result, error) {
	items, err := h.store.List(r.Context())
	if err != nil {
		return result{}, storeError(err)
	}

	return result{status: http.StatusOK, body: items}, nil
}

func (h *ItemHandler) getItem(r *http.Request) (result, error) {
	name, err := itemName(r)
	if err != nil {
		return result{}, err
	}

	item, err := h.store.FindByName(r.Context(), name)
	if err != nil {
		return result{}, storeError(err)
	}

	return result{status: http.StatusOK, body: item}, nil
}

func (h *ItemHandler) createItem(r *http.Request) (result, error) {
	input, err := decodeItem(r)
	if err != nil {
		return result{}, err
	}

	if err := input.Validate(); err != nil {
		return result{}, apperror.Validation(err.Error())
	}

	created, err := h.store.Create(r.Context(), input)
	if err != nil {
		return result{}, storeError(err)
	}

	h.publish(model.EventItemCreated, created.Name, created)

	return result{status: http.StatusCreated, body: model.AddedResponse{Added: *created}}, nil
}

// updateItem checks that the target exists before looking at the body, so a
// missing target is reported as 404 whatever the body holds.
func (h *ItemHandler) updateItem(r *http.Request) (result, error) {
	ctx := r.Context()
	name, err := itemName(r)
	if err != nil {
		return result{}, err
	}

	if _, err := h.store.FindByName(ctx, name); err != nil {
		return result{}, storeError(err)
	}

	input, err := decodeItem(r)
	if err != nil {
		return result{}, err
	}

	if err := input.Validate(); err != nil {
		return result{}, apperror.Validation(err.Error())
	}

	updated, err := h.store.UpdateByName(ctx, name, input)
	if err != nil {
		return result{}, storeError(err)
	}

	h.publish(model.EventItemUpdated, name, updated)

	return result{status: http.StatusOK, body: model.UpdatedResponse{Updated: *updated}}, nil
}

func (h *ItemHandler) deleteItem(r *http.Request) (result, error) {
	name, err := itemName(r)
	if err != nil {
		return result{}, err
	}

	if err := h.store.DeleteByName(r.Context(), name); err != nil {
		return result{}, storeError(err)
	}

	h.publish(model.EventItemDeleted, name, nil)

	return result{status: http.StatusOK, body: model.MessageResponse{Message: msgDeleted}}, nil
}

func (h *ItemHandler) publish(eventType, name string, item *model.Item) {
	if h.events == nil {
		return
	}
	h.events.Publish(model.NewItemEvent(eventType, name, item))
}

// storeError classifies a store error.
func storeError(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperror.Wrap(err, http.StatusNotFound, msgItemNotFound)
	}
	return apperror.From(err)
}

// itemName decodes the {name} path variable. A name that does not decode
// cannot belong to any item.
func itemName(r *http.Request) (string, error) {
	name, err := url.PathUnescape(mux.Vars(r)[itemNamePathVariable])
	if err != nil {
		return "", apperror.Wrap(err, http.StatusNotFound, msgItemNotFound)
	}
	return name, nil
}

// decodeItem reads an item from a JSON or urlencoded form body.
// An absent body decodes to an empty item.
func decodeItem(r *http.Request) (*model.Item, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == contentTypeForm {
		return decodeFormItem(r)
	}

	var input model.Item
	if r.Body == nil {
		return &input, nil
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		if errors.Is(err, io.EOF) {
			return &input, nil
		}
		return nil, bodyError(err)
	}

	return &input, nil
}

func decodeFormItem(r *http.Request) (*model.Item, error) {
	if err := r.ParseForm(); err != nil {
		return nil, bodyError(err)
	}

	input := model.Item{Name: r.PostForm.Get("name")}

	if raw := r.PostForm.Get("price"); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, apperror.Wrap(err, http.StatusBadRequest, msgPriceNotNumber)
		}
		input.Price = price
	}

	return &input, nil
}

func bodyError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apperror.Wrap(err, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
	}
	return apperror.Wrap(err, http.StatusBadRequest, msgInvalidBody)
}
