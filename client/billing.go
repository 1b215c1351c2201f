package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/medisync/clinic-client/types"
)

// Invoices returns the patient's billing documents.
func (c *Client) Invoices(ctx context.Context) ([]types.Invoice, error) {
	var invoices []types.Invoice
	if err := c.Call(ctx, CallSpec{Method: http.MethodGet, Path: "/financial/invoices/me"}, &invoices); err != nil {
		return nil, err
	}
	return invoices, nil
}

// Invoice returns one invoice with full detail.
func (c *Client) Invoice(ctx context.Context, invoiceID int64) (*types.Invoice, error) {
	var invoice types.Invoice
	err := c.Call(ctx, CallSpec{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/financial/invoices/%d", invoiceID),
	}, &invoice)
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}
