package orders

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/shopfront/storefront/api/responses"
	"github.com/shopfront/storefront/api/validators"
	internalorders "github.com/shopfront/storefront/internal/orders"
	pkgerrors "github.com/shopfront/storefront/pkg/errors"
	"github.com/shopfront/storefront/pkg/logger"
)

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

// AdminList returns every order, optionally filtered by ?status=.
func AdminList(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), actor, internalorders.ListInput{
			All:        true,
			Status:     strings.TrimSpace(r.URL.Query().Get("status")),
			Pagination: params,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// Approve confirms a pending order.
func Approve(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return orderAction(svc, logg, func(ctx context.Context, actor internalorders.Actor, orderID uuid.UUID) (*internalorders.OrderDTO, error) {
		return svc.Approve(ctx, actor, orderID)
	})
}

// AdminCancel refunds a paid order to the wallet. Stock is not restored.
func AdminCancel(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return orderAction(svc, logg, func(ctx context.Context, actor internalorders.Actor, orderID uuid.UUID) (*internalorders.OrderDTO, error) {
		return svc.CancelByAdmin(ctx, actor, orderID)
	})
}

func UpdateStatus(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload statusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderAction(svc, logg, func(ctx context.Context, actor internalorders.Actor, orderID uuid.UUID) (*internalorders.OrderDTO, error) {
			return svc.UpdateStatus(ctx, actor, orderID, payload.Status)
		}).ServeHTTP(w, r)
	}
}

// AddTimeline appends a delivery checkpoint without changing the status.
func AddTimeline(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload internalorders.TimelineInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderAction(svc, logg, func(ctx context.Context, actor internalorders.Actor, orderID uuid.UUID) (*internalorders.OrderDTO, error) {
			return svc.AddTimelineEntry(ctx, actor, orderID, payload)
		}).ServeHTTP(w, r)
	}
}
