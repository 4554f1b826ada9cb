package tallyapi

import (
	"context"
	"net/http"
)

// Login exchanges email and password for a session token. The
// X-Requested-With header stops browser clients from prompting on 401.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	h := http.Header{}
	h.Set(headerRequestedWith, requestedWithXHR)
	h.Set("Authorization", basicAuth(email, password))
	h.Set(headerUserID, email)

	var out LoginResponse
	if err := c.do(ctx, request{method: http.MethodPost, path: "/login", headers: h}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account. The invitation code authenticates the call.
func (c *Client) Register(ctx context.Context, email, password, invitationCode string) error {
	body, ctype, err := jsonBody(registerRequest{Email: email, Password: password})
	if err != nil {
		return err
	}
	h := http.Header{}
	h.Set(headerRequestedWith, requestedWithXHR)
	h.Set("Authorization", basicAuth(invitationCodeUser, invitationCode))
	h.Set(headerUserID, email)
	return c.do(ctx, request{method: http.MethodPost, path: "/register", body: body, ctype: ctype, headers: h}, nil)
}

func (c *Client) RegisterConfirm(ctx context.Context, email, secret string) error {
	body, ctype, err := jsonBody(registerConfirmRequest{Email: email, RegistrationSecret: secret})
	if err != nil {
		return err
	}
	h := http.Header{}
	h.Set(headerUserID, email)
	return c.do(ctx, request{method: http.MethodPost, path: "/register/confirm", body: body, ctype: ctype, headers: h}, nil)
}

func (c *Client) ResetPassword(ctx context.Context, email string) error {
	body, ctype := textBody(email)
	h := http.Header{}
	h.Set(headerUserID, email)
	return c.do(ctx, request{method: http.MethodPost, path: "/reset-password", body: body, ctype: ctype, headers: h}, nil)
}

func (c *Client) ChangePassword(ctx context.Context, password string) error {
	body, ctype := textBody(password)
	return c.authed(ctx, http.MethodPost, "/settings/change-password", body, ctype, nil)
}

// ChangeInvitationCode is admin only
func (c *Client) ChangeInvitationCode(ctx context.Context, code string) error {
	body, ctype := textBody(code)
	return c.authed(ctx, http.MethodPost, "/settings/change-invitation-code", body, ctype, nil)
}

func (c *Client) Users(ctx context.Context) ([]User, error) {
	var out []User
	if err := c.authed(ctx, http.MethodGet, "/users", nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Products(ctx context.Context) ([]Product, error) {
	var out []Product
	if err := c.authed(ctx, http.MethodGet, "/products", nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Product(ctx context.Context, id int64) (*Product, error) {
	body, ctype, err := jsonBody(productIDRequest{ID: id})
	if err != nil {
		return nil, err
	}
	var out Product
	if err := c.authed(ctx, http.MethodPost, "/products/read-product", body, ctype, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateProduct(ctx context.Context, name string, price Amount) error {
	return c.authedJSON(ctx, "/products/create-product", createProductRequest{Name: name, Price: price})
}

func (c *Client) UpdateProduct(ctx context.Context, id int64, name string) error {
	return c.authedJSON(ctx, "/products/update-product", updateProductRequest{ID: id, Name: name})
}

// DeleteProduct sends the bare id as the body
func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.authedJSON(ctx, "/products/delete-product", id)
}

func (c *Client) UpdateProductPrice(ctx context.Context, id int64, price Amount) error {
	return c.authedJSON(ctx, "/products/update-price", updateProductPriceRequest{ID: id, Price: price})
}

func (c *Client) Purchases(ctx context.Context) ([]Purchase, error) {
	var out []Purchase
	if err := c.authed(ctx, http.MethodGet, "/purchases", nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreatePurchase(ctx context.Context, productID int64) error {
	return c.authedJSON(ctx, "/purchases/create-purchase", createPurchaseRequest{ProductID: productID})
}

func (c *Client) DeletePurchase(ctx context.Context, purchaseID int64) error {
	return c.authedJSON(ctx, "/purchases/delete-purchase", deletePurchaseRequest{PurchaseID: purchaseID})
}

func (c *Client) Payments(ctx context.Context) ([]Payment, error) {
	var out []Payment
	if err := c.authed(ctx, http.MethodGet, "/payments", nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreatePayment(ctx context.Context, amount Amount) error {
	return c.authedJSON(ctx, "/payments/create-payment", createPaymentRequest{Amount: amount})
}

func (c *Client) DeletePayment(ctx context.Context, paymentID int64) error {
	return c.authedJSON(ctx, "/payments/delete-payment", deletePaymentRequest{PaymentID: paymentID})
}

func (c *Client) AccountBalance(ctx context.Context) (*AccountBalance, error) {
	var out AccountBalance
	if err := c.authed(ctx, http.MethodGet, "/account-balance", nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
