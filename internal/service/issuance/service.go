// Package issuance implements the loan workflow between the two parties.
// A record moves Issued -> Received exactly once; the store provides the
// atomicity, this service provides the rules around it.
package issuance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/harshg28/stockroom/internal/domain/models"
	"github.com/harshg28/stockroom/internal/repository"
)

// Notifier delivers outbound events. Delivery is best-effort: a send failure
// is logged and never affects committed state.
type Notifier interface {
	Send(ctx context.Context, n models.Notification) error
}

// OpenRequest carries the caller input for opening a loan.
type OpenRequest struct {
	ItemID    string
	Quantity  int64
	User      string
	Issuer    string
	Receiver  string
	Condition models.IssueCondition
	Remark    string
}

// Service implements the issuance workflow.
type Service struct {
	store    repository.Store
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires an issuance service instance. A nil notifier disables
// outbound events.
func NewService(store repository.Store, notifier Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Open validates the request and opens a loan. All validation happens before
// any mutation; the store then couples the stock decrement, the issuance
// record and the OUT ledger entry in one atomic unit. The stock pre-check
// here is advisory only — the decrement inside the store is the
// authoritative guard under concurrency.
func (s *Service) Open(ctx context.Context, req OpenRequest) (models.Issuance, error) {
	issuer, receiver, err := resolveParties(req.Issuer, req.Receiver)
	if err != nil {
		return models.Issuance{}, err
	}
	if err := models.ValidateQuantity(req.Quantity); err != nil {
		return models.Issuance{}, err
	}

	item, err := s.store.GetItem(ctx, req.ItemID)
	if err != nil {
		return models.Issuance{}, err
	}
	if item.Quantity < req.Quantity {
		return models.Issuance{}, fmt.Errorf("only %d units available in stock: %w",
			item.Quantity, repository.ErrInsufficientStock)
	}

	condition := req.Condition
	if condition == "" {
		condition = models.ConditionReturnable
	}

	iss := models.Issuance{
		ItemID:          req.ItemID,
		Quantity:        req.Quantity,
		Issuer:          issuer,
		Receiver:        receiver,
		User:            req.User,
		IssueDate:       s.now().UTC(),
		ComponentStatus: models.ComponentOK,
		IssueCondition:  condition,
		Remark:          req.Remark,
		Received:        false,
	}

	if err := s.store.OpenIssuance(ctx, &iss); err != nil {
		if errors.Is(err, repository.ErrInsufficientStock) {
			// Stock moved between the advisory check and the commit; report
			// the fresh count when we can still read it.
			if current, getErr := s.store.GetItem(ctx, req.ItemID); getErr == nil {
				return models.Issuance{}, fmt.Errorf("only %d units available in stock: %w",
					current.Quantity, repository.ErrInsufficientStock)
			}
		}
		return models.Issuance{}, err
	}

	s.logger.Info("issuance opened",
		zap.String("issuance_id", iss.ID),
		zap.String("item_id", iss.ItemID),
		zap.Int64("qty", iss.Quantity),
		zap.String("issuer", string(iss.Issuer)),
		zap.String("receiver", string(iss.Receiver)))

	s.notify(models.Notification{
		Subject:       fmt.Sprintf("Issued: %s x%d", item.Name, iss.Quantity),
		RecipientRole: iss.Receiver,
		Body: fmt.Sprintf("%s issued %d x %s (serial %d) to %s for %s.",
			iss.Issuer, iss.Quantity, item.Name, item.SerialNumber, iss.Receiver, iss.User),
	})

	return iss, nil
}

// Close marks a loan as received. The call is idempotent: closing an
// already-received issuance reports changed=false and performs no stock
// mutation and no ledger write. Stock is restored for ok and faulty
// components; a lost unit is written off.
func (s *Service) Close(ctx context.Context, id string, status models.ComponentStatus, remark string) (models.Issuance, bool, error) {
	closed, err := s.store.CloseIssuance(ctx, id, status, remark, s.now().UTC())
	if errors.Is(err, repository.ErrAlreadyReceived) {
		existing, getErr := s.store.GetIssuance(ctx, id)
		if getErr != nil {
			return models.Issuance{}, false, getErr
		}
		s.logger.Info("issuance already received, close is a no-op", zap.String("issuance_id", id))
		return existing, false, nil
	}
	if err != nil {
		return models.Issuance{}, false, err
	}

	s.logger.Info("issuance closed",
		zap.String("issuance_id", closed.ID),
		zap.String("item_id", closed.ItemID),
		zap.String("status", string(closed.ComponentStatus)),
		zap.Bool("restocked", closed.ComponentStatus.RestoresStock()))

	item, err := s.store.GetItem(ctx, closed.ItemID)
	itemName := closed.ItemID
	if err == nil {
		itemName = item.Name
	}

	s.notify(models.Notification{
		Subject:       fmt.Sprintf("Received back: %s x%d (%s)", itemName, closed.Quantity, closed.ComponentStatus),
		RecipientRole: closed.Issuer,
		Body: fmt.Sprintf("%s returned %d x %s in condition %q.",
			closed.Receiver, closed.Quantity, itemName, closed.ComponentStatus),
	})

	return closed, true, nil
}

// Get fetches one issuance.
func (s *Service) Get(ctx context.Context, id string) (models.Issuance, error) {
	return s.store.GetIssuance(ctx, id)
}

// List returns all issuances, newest first.
func (s *Service) List(ctx context.Context) ([]models.Issuance, error) {
	return s.store.ListIssuances(ctx)
}

// notify emits the event in the background, detached from the request
// context: the state is already committed and must not be affected by
// delivery, so the send gets its own deadline and failures only log.
func (s *Service) notify(n models.Notification) {
	if s.notifier == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := s.notifier.Send(ctx, n); err != nil {
			s.logger.Warn("notification delivery failed",
				zap.String("subject", n.Subject),
				zap.Error(err))
		}
	}()
}

// resolveParties parses both names case-insensitively and enforces the
// two-party pairing. An unrecognized name breaks the pairing by definition.
func resolveParties(issuerName, receiverName string) (models.Party, models.Party, error) {
	issuer, err := models.ParseParty(issuerName)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", models.ErrInvalidPairing, err)
	}

	receiver, err := models.ParseParty(receiverName)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", models.ErrInvalidPairing, err)
	}

	if err := models.ValidatePairing(issuer, receiver); err != nil {
		return "", "", err
	}
	return issuer, receiver, nil
}
