package dto

import (
	"github.com/subledger/subledger/internal/domain/payment"
)

type ReceiptResponse struct {
	*payment.Receipt
}

type ListReceiptsResponse struct {
	Items []*ReceiptResponse `json:"items"`
	Total int                `json:"total"`
}
