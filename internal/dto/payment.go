package dto

type DepositRequestDTO struct {
	Amount int64 `json:"amount" example:"1000"`
}

type DepositResponseDTO struct {
	TransactionUUID string `json:"transaction_uuid" example:"7f9c24e5-2f2c-4b5a-9fd1-2d715f6a3a88"`
	ConfirmationURL string `json:"confirmation_url" example:"https://gateway.example/pay/abc"`
}

// CallbackDTO is the payment gateway webhook payload.
type CallbackDTO struct {
	Event  string            `json:"event" example:"payment.succeeded"`
	Object CallbackObjectDTO `json:"object"`
}

type CallbackObjectDTO struct {
	Metadata     CallbackMetadataDTO `json:"metadata"`
	IncomeAmount int64               `json:"income_amount" example:"1000"`
}

type CallbackMetadataDTO struct {
	TransactionUUID string `json:"transaction_uuid"`
	CardUUID        string `json:"card_uuid"`
}

type TransactionResponseDTO struct {
	UUID      string `json:"uuid"`
	Type      string `json:"type" example:"Deposit"`
	Amount    int64  `json:"amount" example:"1000"`
	Status    string `json:"status" example:"Success"`
	CreatedAt string `json:"created_at"`
}

type CardResponseDTO struct {
	UUID         string                   `json:"uuid"`
	CardNumber   string                   `json:"card_number" example:"4561261212345467"`
	Balance      int64                    `json:"balance" example:"5000"`
	Transactions []TransactionResponseDTO `json:"transactions"`
}
