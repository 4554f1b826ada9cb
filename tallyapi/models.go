package tallyapi

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/jrsteele09/tally-client/token"
	"github.com/shopspring/decimal"
)

// Amount is a money value. It is sent as a bare JSON number so the backend
// reads it as a BigDecimal without rounding.
type Amount struct {
	decimal.Decimal
}

func NewAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, err
	}
	return Amount{d}, nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

// Timestamp accepts the epoch seconds (with optional fraction) that the
// backend writes for instants, or an RFC 3339 string.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		return t.Time.UnmarshalJSON(b)
	}
	secs, err := decimal.NewFromString(string(b))
	if err != nil {
		return err
	}
	whole := secs.IntPart()
	nanos := secs.Sub(decimal.NewFromInt(whole)).Shift(9).IntPart()
	t.Time = time.Unix(whole, nanos).UTC()
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	secs := decimal.New(t.UnixNano(), -9)
	return []byte(secs.String()), nil
}

// LoginResponse is returned by /login. Secure tells the client whether the
// session cookie must be restricted to HTTPS.
type LoginResponse struct {
	JWT    string `json:"jwt"`
	Secure bool   `json:"secure"`
}

type User struct {
	Email                string       `json:"email"`
	RegistrationOn       Timestamp    `json:"registrationOn"`
	RegistrationComplete bool         `json:"registrationComplete"`
	Roles                []token.Role `json:"roles"`
	AccountBalance       Amount       `json:"accountBalance"`
}

type Product struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Price Amount `json:"price"`
}

type Purchase struct {
	PurchaseID        int64     `json:"purchaseId"`
	PurchaseTimestamp Timestamp `json:"purchaseTimestamp"`
	ProductName       string    `json:"productName"`
	ProductPrice      Amount    `json:"productPrice"`
}

type Payment struct {
	ID        int64     `json:"id"`
	Amount    Amount    `json:"amount"`
	Timestamp Timestamp `json:"timestamp"`
}

type AccountBalance struct {
	AmountPayments  Amount `json:"amountPayments"`
	AmountPurchases Amount `json:"amountPurchases"`
	AmountTotal     Amount `json:"amountTotal"`
}

// Request bodies

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerConfirmRequest struct {
	Email              string `json:"email"`
	RegistrationSecret string `json:"registrationSecret"`
}

type productIDRequest struct {
	ID int64 `json:"id"`
}

type createProductRequest struct {
	Name  string `json:"name"`
	Price Amount `json:"price"`
}

type updateProductRequest struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type updateProductPriceRequest struct {
	ID    int64  `json:"id"`
	Price Amount `json:"price"`
}

type createPurchaseRequest struct {
	ProductID int64 `json:"productId"`
}

type deletePurchaseRequest struct {
	PurchaseID int64 `json:"purchaseId"`
}

type createPaymentRequest struct {
	Amount Amount `json:"amount"`
}

type deletePaymentRequest struct {
	PaymentID int64 `json:"paymentId"`
}

var _ json.Marshaler = Amount{}
