package commerce

// Order is the storefront's view of a purchase, trimmed to what the return
// flow needs.
type Order struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	CreatedAt   string     `json:"created_at"`
	Customer    Customer   `json:"customer"`
	ShippingTo  *Address   `json:"shipping_address"`
	LineItems   []LineItem `json:"line_items"`
}

type Customer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type Address struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Address1 string `json:"address1"`
	Address2 string `json:"address2"`
	City     string `json:"city"`
	Province string `json:"province"`
	Zip      string `json:"zip"`
	Country  string `json:"country"`
}

type LineItem struct {
	ProductID    int64   `json:"product_id"`
	VariantID    int64   `json:"variant_id"`
	Title        string  `json:"title"`
	VariantTitle string  `json:"variant_title"`
	Quantity     int     `json:"quantity"`
	Price        string  `json:"price"`
}

type Variant struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Option1 string `json:"option1"`
	SKU     string `json:"sku"`
}

// ReplacementItem describes one line of a replacement order.
type ReplacementItem struct {
	VariantID int64
	Quantity  int
}

type ordersResponse struct {
	Orders []Order `json:"orders"`
}

type productResponse struct {
	Product struct {
		Variants []Variant `json:"variants"`
	} `json:"product"`
}

type createOrderResponse struct {
	Order struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"order"`
}
