package transport

type RegisterForm struct {
	Username string `form:"username" validate:"required,max=80"`
	Email    string `form:"email"    validate:"required,email,max=120"`
	Password string `form:"password" validate:"required"`
}

type LoginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
	Next     string `form:"next"`
}

type ProductForm struct {
	Name        string `form:"name"        validate:"required,max=100"`
	Price       string `form:"price"       validate:"required"`
	Description string `form:"description" validate:"required"`
	Category    string `form:"category"    validate:"required,oneof=drink food"`
}

type PaymentForm struct {
	PaymentMethod string `form:"payment_method"`
}

type UpdateCartRequest struct {
	Quantity Quantity `json:"quantity" form:"quantity"`
}

type AddToCartResponse struct {
	Status    string `json:"status"`
	Success   bool   `json:"success"`
	CartCount int    `json:"cart_count"`
}

type UpdateCartResponse struct {
	Status    string `json:"status"`
	Success   bool   `json:"success"`
	Deleted   bool   `json:"deleted"`
	Total     string `json:"total"`
	ItemTotal string `json:"item_total"`
	CartCount int    `json:"cart_count"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
