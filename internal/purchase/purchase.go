// Package purchase buys subscription plans through the platform store when
// one is available.
package purchase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shhac/mipo/internal/domain"
	apperrors "github.com/shhac/mipo/internal/errors"
	"github.com/shhac/mipo/internal/storage"
)

// Receipt identifies a completed store transaction.
type Receipt struct {
	TransactionID string
}

// Store is the platform in-app purchase capability.
type Store interface {
	// Available reports whether purchases can be made at all.
	Available() bool
	// Products returns the subset of ids the store knows about.
	Products(ctx context.Context, ids []string) ([]string, error)
	// Buy starts a purchase. A user cancellation should wrap
	// apperrors.ErrPurchaseCancelled.
	Buy(ctx context.Context, productID string) (Receipt, error)
}

// Unavailable is the Store used where no purchase capability exists.
func Unavailable() Store { return unavailable{} }

type unavailable struct{}

func (unavailable) Available() bool { return false }

func (unavailable) Products(context.Context, []string) ([]string, error) {
	return nil, apperrors.ErrPurchaseUnavailable
}

func (unavailable) Buy(context.Context, string) (Receipt, error) {
	return Receipt{}, apperrors.ErrPurchaseUnavailable
}

// Failure is a purchase that did not go through. Message is displayable.
type Failure struct {
	Message string
	Cause   error
}

func (f *Failure) Error() string       { return f.Message }
func (f *Failure) UserMessage() string { return f.Message }
func (f *Failure) Unwrap() error       { return f.Cause }

// Service runs the purchase flow and records a paid plan locally.
type Service struct {
	store  Store
	repo   storage.Repository
	logger *slog.Logger
}

// NewService returns a Service. A nil store means purchases are unavailable.
func NewService(store Store, repo storage.Repository, logger *slog.Logger) *Service {
	if store == nil {
		store = Unavailable()
	}
	return &Service{store: store, repo: repo, logger: logger}
}

// Available reports whether the store can take purchases.
func (s *Service) Available() bool { return s.store.Available() }

// PurchasePlan buys plan id. On success the paid-plan flag is set.
func (s *Service) PurchasePlan(ctx context.Context, id domain.PlanID) error {
	if id == domain.PlanFree {
		return &Failure{Message: "No purchase required"}
	}
	if !s.store.Available() {
		return &Failure{Message: "IAP not available", Cause: apperrors.ErrPurchaseUnavailable}
	}
	plan, ok := domain.FindPlan(id)
	if !ok || plan.ProductID == "" {
		return &Failure{Message: "Invalid plan"}
	}

	log := s.logger.With(slog.String("plan", string(id)), slog.String("product", plan.ProductID))

	products, err := s.store.Products(ctx, []string{plan.ProductID})
	if err != nil {
		return s.buyFailure(log, err)
	}
	if len(products) == 0 {
		log.Warn("store does not list product")
		return &Failure{Message: "Product not found"}
	}

	receipt, err := s.store.Buy(ctx, plan.ProductID)
	if err != nil {
		return s.buyFailure(log, err)
	}
	if receipt.TransactionID == "" {
		return &Failure{Message: "Purchase was cancelled or failed"}
	}

	if _, err := s.repo.UpdatePreferences(func(p *storage.Preferences) { p.HasPaidPlan = true }); err != nil {
		log.Error("purchase succeeded but paid flag was not saved", slog.Any("error", err))
		return err
	}
	log.Info("plan purchased", slog.String("transaction", receipt.TransactionID))
	return nil
}

func (s *Service) buyFailure(log *slog.Logger, err error) error {
	if isCancellation(err) {
		log.Info("purchase cancelled")
		return &Failure{Message: "Cancelled", Cause: apperrors.ErrPurchaseCancelled}
	}
	log.Warn("purchase failed", slog.Any("error", err))
	msg := err.Error()
	if msg == "" {
		msg = "Purchase failed"
	}
	return &Failure{Message: msg, Cause: err}
}

func isCancellation(err error) bool {
	if errors.Is(err, apperrors.ErrPurchaseCancelled) || errors.Is(err, context.Canceled) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "cancel") || strings.Contains(msg, "user")
}
