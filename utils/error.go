package utils

import "errors"

var (
	ErrorRecordNotFound    = errors.New("record not found")
	ErrorInsufficientFunds = errors.New("not enough balance in bank to pay this amount")
	ErrorOverpayment       = errors.New("cannot pay more than the remaining amount")
)
