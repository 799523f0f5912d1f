package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/imrishuroy/royal-pizza/internal/idempotency"
	"github.com/imrishuroy/royal-pizza/internal/validation"
)

const idempotencyHeader = "Idempotency-Key"

// RegisterOrdersRoutes registers routes for the order API. idem may be nil,
// in which case the Idempotency-Key header is ignored.
func RegisterOrdersRoutes(r gin.IRouter, svc OrderService, idem IdempotencyStore) {
	h := &ordersHandler{svc: svc, idem: idem}
	r.POST("/orders", h.create)
	r.GET("/orders/:id", h.get)
}

type ordersHandler struct {
	svc  OrderService
	idem IdempotencyStore
}

func (h *ordersHandler) create(c *gin.Context) {
	ctx := c.Request.Context()
	log := zerolog.Ctx(ctx)

	var req validation.CreateOrderRequest
	if err := validation.BindJSON(c, &req); err != nil {
		// BindJSON already wrote a 400
		return
	}

	key := c.GetHeader(idempotencyHeader)
	if key != "" && h.idem != nil {
		if done := h.claim(c, key, idempotency.Fingerprint(validation.RawBody(c))); done {
			return
		}
	} else {
		key = ""
	}

	resp, err := h.svc.CreateOrder(ctx, req)
	if err != nil {
		if key != "" {
			if merr := h.idem.MarkFailed(ctx, key, err.Error()); merr != nil {
				log.Error().Err(merr).Str("idempotency_key", key).Msg("mark idempotency failed")
			}
		}
		writeError(c, err)
		return
	}

	body, err := json.Marshal(resp)
	if err != nil {
		writeError(c, err)
		return
	}
	if key != "" {
		if err := h.idem.MarkDone(ctx, key, resp.OrderID, string(body), http.StatusCreated); err != nil {
			// the order exists; a retry will see IN_PROGRESS rather than a duplicate
			log.Error().Err(err).Str("idempotency_key", key).Msg("mark idempotency done")
		}
	}

	c.Header("Location", fmt.Sprintf("/api/orders/%s", resp.OrderID))
	c.Data(http.StatusCreated, "application/json; charset=utf-8", body)
}

// claim takes ownership of key or answers the request from the existing
// record. It returns true when a response has been written.
func (h *ordersHandler) claim(c *gin.Context, key, fingerprint string) bool {
	ctx := c.Request.Context()

	claimed, err := h.idem.Claim(ctx, key, fingerprint)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return true
	}
	if claimed {
		return false
	}

	rec, err := h.idem.Get(ctx, key)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return true
	}
	switch {
	case rec == nil:
		// expired between the claim and the read
		c.JSON(http.StatusConflict, gin.H{"error": "Request with this Idempotency-Key is in progress"})
	case rec.Fingerprint != fingerprint:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Idempotency-Key was used with a different request"})
	case rec.Replayable():
		c.Header("Idempotent-Replayed", "true")
		if rec.OrderID != "" {
			c.Header("Location", fmt.Sprintf("/api/orders/%s", rec.OrderID))
		}
		c.Data(rec.ResponseStatus, "application/json; charset=utf-8", []byte(rec.ResponseBody))
	default:
		c.JSON(http.StatusConflict, gin.H{"error": "Request with this Idempotency-Key is in progress"})
	}
	return true
}

func (h *ordersHandler) get(c *gin.Context) {
	o, err := h.svc.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}
