package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joshua-takyi/gatherly/internal/errdef"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CheckoutSessionsColName = "checkout_sessions"

type CheckoutStatus string

const (
	CheckoutPending   CheckoutStatus = "pending"
	CheckoutCompleted CheckoutStatus = "completed"
	CheckoutFailed    CheckoutStatus = "failed"
)

type CheckoutSession struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID             string             `bson:"user_id" json:"user_id" validate:"required"`
	EventID            string             `bson:"event_id" json:"event_id" validate:"required"`
	ProcessorSessionID string             `bson:"processor_session_id" json:"processor_session_id" validate:"required"`
	Account            string             `bson:"account" json:"account"`
	Status             CheckoutStatus     `bson:"status" json:"status"`
	PaymentIntentID    string             `bson:"payment_intent_id,omitempty" json:"payment_intent_id,omitempty"`
	Amount             int64              `bson:"amount" json:"amount"`
	Currency           string             `bson:"currency,omitempty" json:"currency,omitempty"`
	CreatedAt          time.Time          `bson:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt          time.Time          `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// CheckoutResult is what the processor reported when the session was verified.
type CheckoutResult struct {
	Status          CheckoutStatus
	PaymentIntentID string
	Amount          int64
	Currency        string
}

type CheckoutRepo interface {
	SaveCheckoutSession(ctx context.Context, session *CheckoutSession) (*CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, processorSessionID string) (*CheckoutSession, error)
	UpdateCheckoutStatus(ctx context.Context, processorSessionID string, result CheckoutResult) (*CheckoutSession, error)
}

// SaveCheckoutSession upserts by processor session id so a retried start does not create a
// second record.
func (mdb *MongodbRepo) SaveCheckoutSession(ctx context.Context, session *CheckoutSession) (*CheckoutSession, error) {
	if err := Validate.Struct(session); err != nil {
		return nil, errdef.NewBadRequest("invalid checkout session: %v", err)
	}

	col, err := mdb.GetCollection(DBName, CheckoutSessionsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	now := time.Now().UTC()
	filter := bson.M{"processor_session_id": session.ProcessorSessionID}
	update := bson.M{
		"$set": bson.M{
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"user_id":    session.UserID,
			"event_id":   session.EventID,
			"account":    session.Account,
			"status":     CheckoutPending,
			"amount":     session.Amount,
			"currency":   session.Currency,
			"created_at": now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var result CheckoutSession
	if err := col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&result); err != nil {
		return nil, fmt.Errorf("error upserting checkout session: %v", err)
	}
	return &result, nil
}

func (mdb *MongodbRepo) GetCheckoutSession(ctx context.Context, processorSessionID string) (*CheckoutSession, error) {
	col, err := mdb.GetCollection(DBName, CheckoutSessionsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var result CheckoutSession
	err = col.FindOne(ctx, bson.M{"processor_session_id": processorSessionID}).Decode(&result)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errdef.NewNotFound("checkout session %s not found", processorSessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("error finding checkout session: %v", err)
	}
	return &result, nil
}

// UpdateCheckoutStatus only moves a session out of pending. A session that already reached a
// final status is returned unchanged.
func (mdb *MongodbRepo) UpdateCheckoutStatus(ctx context.Context, processorSessionID string, result CheckoutResult) (*CheckoutSession, error) {
	col, err := mdb.GetCollection(DBName, CheckoutSessionsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	filter := bson.M{
		"processor_session_id": processorSessionID,
		"status":               CheckoutPending,
	}
	update := bson.M{
		"$set": bson.M{
			"status":            result.Status,
			"payment_intent_id": result.PaymentIntentID,
			"amount":            result.Amount,
			"currency":          result.Currency,
			"updated_at":        time.Now().UTC(),
		},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated CheckoutSession
	err = col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return mdb.GetCheckoutSession(ctx, processorSessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("error updating checkout session: %v", err)
	}
	return &updated, nil
}
