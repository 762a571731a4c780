package lightning

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// LNDRest talks to lnd's REST proxy. Amount fields come back as decimal
// strings and r_hash as base64; both are normalized here.
type LNDRest struct {
	baseURL  string
	macaroon string
	http     *http.Client
}

func NewLNDRest(baseURL, macaroonHex string) *LNDRest {
	return &LNDRest{
		baseURL:  strings.TrimRight(baseURL, "/"),
		macaroon: macaroonHex,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *LNDRest) do(ctx context.Context, method, path string, body, out any) error {
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Grpc-Metadata-macaroon", c.macaroon)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrInvoiceUnknown
	}
	if resp.StatusCode >= 400 {
		var e struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return fmt.Errorf("lnd: %s %s: %d %s", method, path, resp.StatusCode, e.Message)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *LNDRest) CreateInvoice(ctx context.Context, amountSats int64, memo string) (Invoice, error) {
	req := map[string]any{"value": strconv.FormatInt(amountSats, 10), "memo": memo}
	var resp struct {
		RHash          string `json:"r_hash"`
		PaymentRequest string `json:"payment_request"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/invoices", req, &resp); err != nil {
		return Invoice{}, err
	}
	hash, err := base64.StdEncoding.DecodeString(resp.RHash)
	if err != nil {
		return Invoice{}, fmt.Errorf("decode r_hash: %w", err)
	}
	return Invoice{
		PaymentHash:    hex.EncodeToString(hash),
		PaymentRequest: resp.PaymentRequest,
		AmountSats:     amountSats,
		Memo:           memo,
	}, nil
}

func (c *LNDRest) DecodeInvoice(ctx context.Context, bolt11 string) (Invoice, error) {
	var resp struct {
		PaymentHash string `json:"payment_hash"`
		NumSatoshis string `json:"num_satoshis"`
		Description string `json:"description"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/payreq/"+url.PathEscape(bolt11), nil, &resp); err != nil {
		return Invoice{}, err
	}
	sats, _ := strconv.ParseInt(resp.NumSatoshis, 10, 64)
	return Invoice{
		PaymentHash:    resp.PaymentHash,
		PaymentRequest: bolt11,
		AmountSats:     sats,
		Memo:           resp.Description,
	}, nil
}

func (c *LNDRest) LookupInvoice(ctx context.Context, paymentHash string) (Invoice, error) {
	var resp struct {
		RHash          string `json:"r_hash"`
		PaymentRequest string `json:"payment_request"`
		Value          string `json:"value"`
		Memo           string `json:"memo"`
		Settled        bool   `json:"settled"`
		SettleDate     string `json:"settle_date"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/invoice/"+paymentHash, nil, &resp); err != nil {
		return Invoice{}, err
	}
	sats, _ := strconv.ParseInt(resp.Value, 10, 64)
	inv := Invoice{
		PaymentHash:    paymentHash,
		PaymentRequest: resp.PaymentRequest,
		AmountSats:     sats,
		Memo:           resp.Memo,
		Settled:        resp.Settled,
	}
	if unix, err := strconv.ParseInt(resp.SettleDate, 10, 64); err == nil && unix > 0 {
		inv.SettledAt = time.Unix(unix, 0)
	}
	return inv, nil
}

func (c *LNDRest) PayInvoice(ctx context.Context, bolt11 string, maxFeeSats int64) (Payment, error) {
	req := map[string]any{
		"payment_request": bolt11,
		"fee_limit":       map[string]string{"fixed": strconv.FormatInt(maxFeeSats, 10)},
	}
	var resp struct {
		PaymentError    string `json:"payment_error"`
		PaymentPreimage string `json:"payment_preimage"`
		PaymentHashB64  string `json:"payment_hash"`
		PaymentRoute    struct {
			TotalFees string `json:"total_fees"`
		} `json:"payment_route"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/channels/transactions", req, &resp); err != nil {
		return Payment{}, err
	}
	if resp.PaymentError != "" {
		return Payment{}, fmt.Errorf("%w: %s", ErrPaymentFailed, resp.PaymentError)
	}
	fees, _ := strconv.ParseInt(resp.PaymentRoute.TotalFees, 10, 64)
	hash, _ := base64.StdEncoding.DecodeString(resp.PaymentHashB64)
	return Payment{
		PaymentHash: hex.EncodeToString(hash),
		Preimage:    resp.PaymentPreimage,
		FeeSats:     fees,
	}, nil
}
