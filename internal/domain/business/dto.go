package business

type CreateBusinessInput struct {
	Name      string `json:"name" binding:"required"`
	KRAPin    string `json:"kra_pin"`
	VATNumber string `json:"vat_number"`
	Industry  string `json:"industry"`
	Phone     string `json:"phone"`
	Email     string `json:"email" binding:"omitempty,email"`
	Address   string `json:"address"`
}

type UpdateBusinessInput struct {
	Name      *string `json:"name"`
	KRAPin    *string `json:"kra_pin"`
	VATNumber *string `json:"vat_number"`
	Industry  *string `json:"industry"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Address   *string `json:"address"`
}
