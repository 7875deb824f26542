package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"subscription-credit-sync/internal/domain"
	"subscription-credit-sync/internal/domain/model"
	"subscription-credit-sync/internal/infra/metrics"
	red "subscription-credit-sync/internal/infra/redis"
	"subscription-credit-sync/internal/infra/worker"
)

const (
	notificationKindEntitlements = "entitlements"
	notificationKindPurchases    = "purchases"
)

// notificationRequest is one provider change notification: the uid it applies
// to plus the before/after snapshot pair for one collection.
type notificationRequest struct {
	UID    string          `json:"uid"`
	Kind   string          `json:"kind"` // entitlements|purchases
	Before json.RawMessage `json:"before"`
	After  json.RawMessage `json:"after"`
}

// notificationsHandler validates and enqueues a change notification. The diff
// and ledger work happen on the worker pool; the provider only needs to know
// the notification was accepted. A saturated queue answers 503 so the
// provider redelivers later.
func (s *Server) notificationsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req notificationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			metrics.IncNotification("unknown", "invalid")
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.UID == "" {
			metrics.IncNotification(req.Kind, "invalid")
			http.Error(w, "uid is required", http.StatusBadRequest)
			return
		}
		if req.Kind != notificationKindEntitlements && req.Kind != notificationKindPurchases {
			metrics.IncNotification(req.Kind, "invalid")
			http.Error(w, "unknown notification kind", http.StatusBadRequest)
			return
		}

		allowed, err := s.limiter.Allow(r.Context(), red.NotificationKey(req.UID),
			s.cfg.Webhook.RateLimit, s.cfg.Webhook.RateWindow)
		if err != nil {
			// Limiter outage must not drop provider traffic.
			s.log.Warn().Err(err).Msg("rate limiter unavailable; admitting notification")
			allowed = true
		}
		if !allowed {
			metrics.IncNotification(req.Kind, "rate_limited")
			http.Error(w, "Too many notifications", http.StatusTooManyRequests)
			return
		}

		task, err := s.buildTask(&req)
		if err != nil {
			metrics.IncNotification(req.Kind, "invalid")
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if err := s.pool.Submit(task); err != nil {
			if errors.Is(err, worker.ErrQueueFull) {
				metrics.IncNotification(req.Kind, "queue_full")
				http.Error(w, "Busy, retry later", http.StatusServiceUnavailable)
				return
			}
			http.Error(w, "Failed to enqueue", http.StatusInternalServerError)
			return
		}

		metrics.IncNotification(req.Kind, "accepted")
		w.WriteHeader(http.StatusAccepted)
	}
}

// buildTask decodes the snapshot pair eagerly so malformed payloads are
// rejected in the request cycle, not on a worker.
func (s *Server) buildTask(req *notificationRequest) (worker.Task, error) {
	uid := req.UID
	switch req.Kind {
	case notificationKindEntitlements:
		var before, after model.EntitlementSnapshot
		if err := decodeSnapshot(req.Before, &before); err != nil {
			return nil, errors.New("malformed before snapshot")
		}
		if err := decodeSnapshot(req.After, &after); err != nil {
			return nil, errors.New("malformed after snapshot")
		}
		return func(ctx context.Context) error {
			return s.lifecycleUC.ProcessEntitlementUpdate(ctx, uid, before, after)
		}, nil
	case notificationKindPurchases:
		var before, after model.PurchaseHistorySnapshot
		if err := decodeSnapshot(req.Before, &before); err != nil {
			return nil, errors.New("malformed before snapshot")
		}
		if err := decodeSnapshot(req.After, &after); err != nil {
			return nil, errors.New("malformed after snapshot")
		}
		return func(ctx context.Context) error {
			return s.lifecycleUC.ProcessPurchaseUpdate(ctx, uid, before, after)
		}, nil
	}
	return nil, errors.New("unknown notification kind")
}

// decodeSnapshot treats an absent snapshot as empty.
func decodeSnapshot(raw json.RawMessage, dst any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

type balanceResponse struct {
	UID        string `json:"uid"`
	GiftCredit int    `json:"gift_credit"`
	PaidCredit int    `json:"paid_credit"`
	Total      int    `json:"total"`
}

func toBalanceResponse(b *model.CreditBalance) balanceResponse {
	return balanceResponse{
		UID:        b.UID,
		GiftCredit: b.GiftCredit,
		PaidCredit: b.PaidCredit,
		Total:      b.Total(),
	}
}

func (s *Server) balanceGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := chi.URLParam(r, "uid")
		bal, err := s.ledgerUC.GetOrCreate(r.Context(), uid)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidArgument) {
				http.Error(w, "uid is required", http.StatusBadRequest)
				return
			}
			http.Error(w, "Failed to get balance", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, toBalanceResponse(bal))
	}
}

type consumeRequest struct {
	Amount    int    `json:"amount"`
	UsageType string `json:"usage_type"`
	UsageID   string `json:"usage_id"`
}

func (s *Server) consumeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := chi.URLParam(r, "uid")

		var req consumeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.Amount == 0 {
			req.Amount = model.UseCreditsAmount
		}

		res, err := s.ledgerUC.Consume(r.Context(), uid, req.Amount, req.UsageType, req.UsageID)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrInsufficientCredit):
				http.Error(w, "Insufficient credit", http.StatusUnprocessableEntity)
			case errors.Is(err, domain.ErrInvalidArgument):
				http.Error(w, "Invalid consume request", http.StatusBadRequest)
			default:
				http.Error(w, "Failed to consume", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, struct {
			UsedGift int `json:"used_gift"`
			UsedPaid int `json:"used_paid"`
		}{res.UsedGift, res.UsedPaid})
	}
}

type refundRequest struct {
	Amount int `json:"amount"`
}

func (s *Server) refundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := chi.URLParam(r, "uid")

		var req refundRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if err := s.ledgerUC.Refund(r.Context(), uid, req.Amount); err != nil {
			switch {
			case errors.Is(err, domain.ErrNotFound):
				http.NotFound(w, r)
			case errors.Is(err, domain.ErrInvalidArgument):
				http.Error(w, "Invalid refund request", http.StatusBadRequest)
			default:
				http.Error(w, "Failed to refund", http.StatusInternalServerError)
			}
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) statsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		balances, gift, paid, err := s.statsUC.Totals(r.Context())
		if err != nil {
			http.Error(w, "Failed to get totals", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, struct {
			TotalBalances   int   `json:"total_balances"`
			OutstandingGift int64 `json:"outstanding_gift"`
			OutstandingPaid int64 `json:"outstanding_paid"`
		}{balances, gift, paid})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
