package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/dukandar/khata/internal/clock"
	"github.com/dukandar/khata/internal/config"
	drawerdomain "github.com/dukandar/khata/internal/drawer/domain"
	obsmetrics "github.com/dukandar/khata/internal/observability/metrics"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Repo    drawerdomain.Repository
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Config  config.Config
	Metrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	repo        drawerdomain.Repository
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	countPolicy drawerdomain.CountPolicy
	metrics     *obsmetrics.Metrics

	// locks serializes the read-modify-append cycle per drawer. Distinct
	// drawers proceed in parallel.
	locks sync.Map
}

func NewService(p Params) drawerdomain.Service {
	policy := drawerdomain.CountPolicy(p.Config.DrawerCountPolicy)
	if policy != drawerdomain.CountPolicyRecordOnly {
		policy = drawerdomain.CountPolicyOverwrite
	}
	return &Service{
		repo:        p.Repo,
		log:         p.Log.Named("drawer.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		countPolicy: policy,
		metrics:     p.Metrics,
	}
}

func (s *Service) RecordOperation(ctx context.Context, req drawerdomain.OperationRequest) (*drawerdomain.Transaction, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	unlock := s.lockDrawer(req.OrgID, req.DrawerID)
	defer unlock()

	head, err := s.repo.Latest(ctx, req.OrgID, req.DrawerID)
	if err != nil {
		return nil, err
	}

	if err := checkState(head, req.Operation); err != nil {
		return nil, err
	}

	previous := decimal.Zero
	var prevID snowflake.ID
	if head != nil {
		previous = head.Balance
		prevID = head.ID
	}

	notes := req.Notes
	amount := req.Amount
	balance := drawerdomain.NextBalance(req.Operation, previous, amount)
	if req.Operation == drawerdomain.OperationCount {
		discrepancy := amount.Sub(previous)
		if s.countPolicy == drawerdomain.CountPolicyRecordOnly {
			balance = previous
		}
		note := fmt.Sprintf("counted=%s discrepancy=%s", amount.String(), discrepancy.String())
		if notes != "" {
			notes = notes + "; " + note
		} else {
			notes = note
		}
	}

	txn := &drawerdomain.Transaction{
		ID:              s.genID.Generate(),
		OrgID:           req.OrgID,
		DrawerID:        req.DrawerID,
		ActorID:         req.ActorID,
		Operation:       req.Operation,
		PreviousBalance: previous,
		Amount:          amount,
		Balance:         balance,
		Reference:       req.Reference,
		Notes:           notes,
		CreatedAt:       s.clock.Now().UTC(),
	}

	if err := s.repo.Append(ctx, txn, prevID); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordDrawerOperation(string(req.Operation))
	}
	s.log.Info("drawer operation recorded",
		zap.String("drawer_id", req.DrawerID),
		zap.String("operation", string(req.Operation)),
		zap.String("amount", amount.String()),
		zap.String("balance", balance.String()),
	)
	return txn, nil
}

func (s *Service) Balance(ctx context.Context, orgID snowflake.ID, drawerID string) (decimal.Decimal, error) {
	if orgID == 0 {
		return decimal.Zero, drawerdomain.ErrInvalidOrganization
	}
	if strings.TrimSpace(drawerID) == "" {
		return decimal.Zero, drawerdomain.ErrInvalidDrawer
	}
	head, err := s.repo.Latest(ctx, orgID, drawerID)
	if err != nil {
		return decimal.Zero, err
	}
	if head == nil {
		return decimal.Zero, nil
	}
	return head.Balance, nil
}

func (s *Service) History(ctx context.Context, orgID snowflake.ID, drawerID string, filter drawerdomain.HistoryFilter) ([]drawerdomain.Transaction, error) {
	if orgID == 0 {
		return nil, drawerdomain.ErrInvalidOrganization
	}
	if strings.TrimSpace(drawerID) == "" {
		return nil, drawerdomain.ErrInvalidDrawer
	}
	return s.repo.History(ctx, orgID, drawerID, filter)
}

func (s *Service) Close(ctx context.Context, orgID snowflake.ID, drawerID, actorID string, amount decimal.Decimal, notes string) (*drawerdomain.Transaction, error) {
	return s.RecordOperation(ctx, drawerdomain.OperationRequest{
		OrgID:     orgID,
		DrawerID:  drawerID,
		ActorID:   actorID,
		Operation: drawerdomain.OperationClose,
		Amount:    amount,
		Notes:     notes,
	})
}

func (s *Service) lockDrawer(orgID snowflake.ID, drawerID string) func() {
	key := orgID.String() + "/" + drawerID
	value, _ := s.locks.LoadOrStore(key, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func validateRequest(req drawerdomain.OperationRequest) error {
	if req.OrgID == 0 {
		return drawerdomain.ErrInvalidOrganization
	}
	if strings.TrimSpace(req.DrawerID) == "" {
		return drawerdomain.ErrInvalidDrawer
	}
	if strings.TrimSpace(req.ActorID) == "" {
		return drawerdomain.ErrInvalidActor
	}
	if !req.Operation.Valid() {
		return drawerdomain.ErrInvalidOperation
	}
	if req.Amount.IsNegative() {
		return drawerdomain.ErrNegativeAmount
	}
	return nil
}

// checkState enforces the two-state drawer session: an empty or closed
// drawer accepts only initialization, an open drawer accepts everything
// except a second initialization.
func checkState(head *drawerdomain.Transaction, op drawerdomain.Operation) error {
	if head == nil || head.Operation == drawerdomain.OperationClose {
		if op != drawerdomain.OperationInitialization {
			if head == nil {
				return drawerdomain.ErrDrawerNotInitialized
			}
			return drawerdomain.ErrDrawerClosed
		}
		return nil
	}
	if op == drawerdomain.OperationInitialization {
		return drawerdomain.ErrDrawerAlreadyOpen
	}
	return nil
}
