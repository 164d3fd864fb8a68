package services

import (
	"context"
	"strings"
	"time"

	"github.com/joshua-takyi/gatherly/internal/errdef"
	"github.com/joshua-takyi/gatherly/internal/helpers"
	"github.com/joshua-takyi/gatherly/internal/payments"
)

type ArchiveRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	PriceID   string `json:"price_id" binding:"required"`
	Account   string `json:"account" binding:"required"`
}

type ArchiveResult struct {
	Archived         bool   `json:"archived"`
	PriceDeactivated bool   `json:"price_deactivated"`
	Error            string `json:"error,omitempty"`
}

type RevenueRequest struct {
	Account string    `json:"account" binding:"required"`
	From    time.Time `json:"from"`
	To      time.Time `json:"to"`
}

type RevenueReport struct {
	Account string             `json:"account"`
	Totals  []payments.Revenue `json:"totals"`
	Charges int                `json:"charges"`
}

type PaymentsService struct {
	processor payments.Processor
	groups    groupReader
}

func NewPaymentsService(processor payments.Processor, groups groupReader) *PaymentsService {
	return &PaymentsService{processor: processor, groups: groups}
}

// authorizeAccount allows an account only when it is the payment account of a group the
// caller owns.
func (ps *PaymentsService) authorizeAccount(ctx context.Context, session *helpers.Session, account string) error {
	if !session.IsGroupOwner() {
		return errdef.NewForbidden("only group owners can manage payments")
	}
	account = strings.TrimSpace(account)
	if account == "" {
		return errdef.NewBadRequest("account is required")
	}

	for _, id := range session.OwnedGroupIDs {
		group, err := ps.groups.GetGroup(ctx, id)
		if err != nil {
			if errdef.IsNotFound(err) {
				continue
			}
			return err
		}
		if group.OwnerID == session.UserID && group.PaymentAccount == account {
			return nil
		}
	}
	return errdef.NewForbidden("account does not belong to any of your groups")
}

// Archive deactivates the price and then archives the product. When only the second step
// fails the result says so instead of returning an error, because the price is already off
// sale.
func (ps *PaymentsService) Archive(ctx context.Context, session *helpers.Session, req ArchiveRequest) (*ArchiveResult, error) {
	if err := ps.authorizeAccount(ctx, session, req.Account); err != nil {
		return nil, err
	}

	if err := ps.processor.DeactivatePrice(ctx, req.PriceID, req.Account); err != nil {
		return nil, errdef.NewUpstream("%v", err)
	}

	if err := ps.processor.ArchiveProduct(ctx, req.ProductID, req.Account); err != nil {
		return &ArchiveResult{PriceDeactivated: true, Error: err.Error()}, nil
	}
	return &ArchiveResult{Archived: true, PriceDeactivated: true}, nil
}

func (ps *PaymentsService) Revenue(ctx context.Context, session *helpers.Session, req RevenueRequest) (*RevenueReport, error) {
	if !req.From.IsZero() && !req.To.IsZero() && !req.To.After(req.From) {
		return nil, errdef.NewBadRequest("to must be after from")
	}
	if err := ps.authorizeAccount(ctx, session, req.Account); err != nil {
		return nil, err
	}

	charges, err := ps.processor.ListCharges(ctx, req.Account, req.From, req.To)
	if err != nil {
		return nil, errdef.NewUpstream("%v", err)
	}

	totals := payments.SumRevenue(charges)
	report := &RevenueReport{Account: req.Account, Totals: totals}
	for _, t := range totals {
		report.Charges += t.Charges
	}
	return report, nil
}
