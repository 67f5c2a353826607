// Package payment wraps the Snap payment gateway's HTTP API. The
// wrapper stays thin on purpose: three calls, no retries, errors
// propagate to the caller (downstream decides what a failed charge
// means).
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lordfalah/wasshoes-sub000/internal/usecase"
)

type Config struct {
	SnapBaseURL string // e.g. https://app.sandbox.midtrans.com
	APIBaseURL  string // e.g. https://api.sandbox.midtrans.com
	ServerKey   string
	Timeout     time.Duration
}

type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

var _ usecase.PaymentGateway = (*Client)(nil)

type snapItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

type snapRequest struct {
	TransactionDetails struct {
		OrderID     string `json:"order_id"`
		GrossAmount int64  `json:"gross_amount"`
	} `json:"transaction_details"`
	ItemDetails     []snapItem `json:"item_details"`
	CustomerDetails struct {
		FirstName string `json:"first_name"`
		Email     string `json:"email"`
		Phone     string `json:"phone"`
	} `json:"customer_details"`
}

type snapResponse struct {
	Token         string   `json:"token"`
	RedirectURL   string   `json:"redirect_url"`
	ErrorMessages []string `json:"error_messages"`
}

// CreateTransaction registers the order with the gateway and returns
// the client-side payment token plus the hosted-page redirect URL.
func (c *Client) CreateTransaction(ctx context.Context, tx usecase.GatewayTransaction) (string, string, error) {
	var req snapRequest
	req.TransactionDetails.OrderID = tx.OrderID
	req.TransactionDetails.GrossAmount = tx.GrossAmount
	for _, it := range tx.Items {
		req.ItemDetails = append(req.ItemDetails, snapItem{
			ID: it.ID, Name: it.Name, Price: it.Price, Quantity: it.Quantity,
		})
	}
	req.CustomerDetails.FirstName = tx.Customer.Name
	req.CustomerDetails.Email = tx.Customer.Email
	req.CustomerDetails.Phone = tx.Customer.Phone

	var resp snapResponse
	if err := c.do(ctx, http.MethodPost, c.cfg.SnapBaseURL+"/snap/v1/transactions", req, &resp); err != nil {
		return "", "", err
	}
	if len(resp.ErrorMessages) > 0 {
		return "", "", fmt.Errorf("gateway rejected transaction: %v", resp.ErrorMessages)
	}
	return resp.Token, resp.RedirectURL, nil
}

// statusResponse mirrors the gateway's status body; gross_amount is a
// decimal string.
type statusResponse struct {
	OrderID           string `json:"order_id"`
	TransactionID     string `json:"transaction_id"`
	TransactionStatus string `json:"transaction_status"`
	StatusCode        string `json:"status_code"`
	StatusMessage     string `json:"status_message"`
	GrossAmount       string `json:"gross_amount"`
	PaymentType       string `json:"payment_type"`
	FraudStatus       string `json:"fraud_status"`
	TransactionTime   string `json:"transaction_time"`
}

// TransactionStatus asks the gateway for its current view of the
// transaction; webhook handling calls this instead of trusting the
// callback body.
func (c *Client) TransactionStatus(ctx context.Context, orderID string) (*usecase.GatewayStatus, error) {
	var resp statusResponse
	url := fmt.Sprintf("%s/v2/%s/status", c.cfg.APIBaseURL, orderID)
	if err := c.do(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return nil, err
	}
	gross, err := decimal.NewFromString(resp.GrossAmount)
	if err != nil {
		gross = decimal.Zero
	}
	return &usecase.GatewayStatus{
		OrderID:           resp.OrderID,
		TransactionID:     resp.TransactionID,
		TransactionStatus: resp.TransactionStatus,
		StatusCode:        resp.StatusCode,
		GrossAmount:       gross,
		PaymentType:       resp.PaymentType,
		FraudStatus:       resp.FraudStatus,
		TransactionTime:   resp.TransactionTime,
	}, nil
}

// Cancel invalidates a pending transaction at the gateway.
func (c *Client) Cancel(ctx context.Context, orderID string) error {
	url := fmt.Sprintf("%s/v2/%s/cancel", c.cfg.APIBaseURL, orderID)
	return c.do(ctx, http.MethodPost, url, nil, &struct{}{})
}

func (c *Client) do(ctx context.Context, method, url string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.cfg.ServerKey, "")
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("gateway %s %s: status %d: %s", method, url, resp.StatusCode, raw)
	}
	return json.Unmarshal(raw, out)
}
