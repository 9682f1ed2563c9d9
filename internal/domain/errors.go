package domain

import "errors"

var (
	ErrBarcodeRequired      = errors.New("barcode is required")
	ErrNameRequired         = errors.New("name is required")
	ErrNegativeAmount       = errors.New("price and cost must be greater than or equal to 0")
	ErrNegativeMinStock     = errors.New("minimum stock must be greater than or equal to 0")
	ErrInvalidPaymentMethod = errors.New("payment method must be one of cash, credit, debit, pix")
	ErrProductNotFound      = errors.New("product not found")
)
