package payment

import (
	"context"
	"fmt"
	"strconv"

	"app/internal/usecase"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripeProvider はStripeのhosted checkoutを使うCheckoutProvider実装。
type StripeProvider struct {
	api        *client.API
	siteDomain string
}

func NewStripeProvider(secretKey string, siteDomain string) *StripeProvider {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeProvider{api: api, siteDomain: siteDomain}
}

func (p *StripeProvider) CreateSession(ctx context.Context, in usecase.CheckoutSessionInput) (usecase.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Params: stripe.Params{Context: ctx},
		Mode:   stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(in.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(in.ProductTitle),
					},
					UnitAmount: stripe.Int64(in.Amount),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(fmt.Sprintf("%s/payment-success?session_id={CHECKOUT_SESSION_ID}", p.siteDomain)),
		CancelURL:  stripe.String(fmt.Sprintf("%s/payment-cancelled", p.siteDomain)),
	}
	if in.Email != "" {
		params.CustomerEmail = stripe.String(in.Email)
	}

	//注文の識別子はopaqueなmetadataとして持たせる
	params.AddMetadata("orderId", in.OrderID)
	params.AddMetadata("productId", strconv.FormatInt(in.ProductID, 10))
	params.AddMetadata("trackingId", in.TrackingID)

	s, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return usecase.CheckoutSession{}, err
	}

	return fromStripeSession(s), nil
}

func (p *StripeProvider) GetSession(ctx context.Context, sessionID string) (usecase.CheckoutSession, error) {
	s, err := p.api.CheckoutSessions.Get(sessionID, &stripe.CheckoutSessionParams{
		Params: stripe.Params{Context: ctx},
	})
	if err != nil {
		return usecase.CheckoutSession{}, err
	}
	return fromStripeSession(s), nil
}

func fromStripeSession(s *stripe.CheckoutSession) usecase.CheckoutSession {
	out := usecase.CheckoutSession{
		ID:       s.ID,
		URL:      s.URL,
		Paid:     s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		Amount:   s.AmountTotal,
		Currency: string(s.Currency),
		Metadata: s.Metadata,
	}
	if s.PaymentIntent != nil {
		out.TransactionID = s.PaymentIntent.ID
	}
	if s.CustomerDetails != nil {
		out.Email = s.CustomerDetails.Email
	} else if s.CustomerEmail != "" {
		out.Email = s.CustomerEmail
	}
	return out
}
